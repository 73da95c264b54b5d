package summarize

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_FallsBackOnSubprocessFailure(t *testing.T) {
	s := &Summarizer{ModelDir: t.TempDir(), Timeout: 50 * time.Millisecond}
	got := s.Summarize(context.Background(), "Fixed the race condition.")
	assert.Equal(t, FallbackSummary, got)
}

func TestSummarize_FallsBackOnEmptyOutput(t *testing.T) {
	// A fake summariser whose only output is a think block, which is
	// stripped and leaves nothing.
	dir := t.TempDir()
	script := "#!/bin/sh\ncat > /dev/null\nprintf '<think>pondering</think>\\n'\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "harold-summarize"), []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	s := &Summarizer{ModelDir: t.TempDir(), Timeout: time.Second}
	got := s.Summarize(context.Background(), "")
	assert.Equal(t, FallbackSummary, got)
}
