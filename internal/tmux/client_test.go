package tmux

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAgentCommand_MatchesDottedNumericWithAtLeastThreeSegments(t *testing.T) {
	assert.True(t, IsAgentCommand("123.45.6"))
	assert.True(t, IsAgentCommand("1.2.3.4"))
	assert.False(t, IsAgentCommand("bash"))
	assert.False(t, IsAgentCommand("12.34"))
	assert.False(t, IsAgentCommand(""))
}

func fakeTmuxClient(t *testing.T, body string) *Client {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tmux")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return New(time.Second)
}

func TestListPanes_ParsesPipeDelimitedRows(t *testing.T) {
	c := fakeTmuxClient(t, `printf '%%1|harold:0.3|123.45.6\n%%2|alir-app main:0.1|98.7.6\n'`)
	panes, err := c.ListPanes(context.Background())
	require.NoError(t, err)
	require.Len(t, panes, 2)
	assert.Equal(t, Pane{ID: "%1", Session: "harold:0.3", Command: "123.45.6"}, panes[0])
	assert.Equal(t, Pane{ID: "%2", Session: "alir-app main:0.1", Command: "98.7.6"}, panes[1])
}

func TestListPanes_SkipsBlankLines(t *testing.T) {
	c := fakeTmuxClient(t, `printf '\n%%1|a:0.0|1.2.3\n\n'`)
	panes, err := c.ListPanes(context.Background())
	require.NoError(t, err)
	require.Len(t, panes, 1)
}

func TestRelay_IssuesLiteralThenEnter(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "log.txt")
	require.NoError(t, os.WriteFile(logPath, nil, 0o644))
	c := fakeTmuxClient(t, `shift; printf '%s\n' "$*" >> '`+logPath+`'`)

	require.NoError(t, c.Relay(context.Background(), "%4", "📱 hi"))

	got, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "-t %4 -l 📱 hi\n-t %4 Enter\n", string(got))
}

func TestHasSession_TrueOnZeroExit(t *testing.T) {
	c := fakeTmuxClient(t, `exit 0`)
	assert.True(t, c.HasSession(context.Background(), "harold"))
}

func TestHasSession_FalseOnNonZeroExit(t *testing.T) {
	c := fakeTmuxClient(t, `exit 1`)
	assert.False(t, c.HasSession(context.Background(), "missing"))
}
