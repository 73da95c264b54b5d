package lockprobe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeIoreg(t *testing.T, output string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-ioreg.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nprintf '%s' "+quote(output)+"\n"), 0o755))
	return path, nil
}

func quote(s string) string { return "'" + s + "'" }

func TestLocked_TrueWhenConsoleLockedYes(t *testing.T) {
	cmd, args := fakeIoreg(t, `"IOConsoleLocked" = Yes`)
	p := New(cmd, args, time.Second)

	locked, err := p.Locked(context.Background())
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestLocked_FalseWhenConsoleLockedNo(t *testing.T) {
	cmd, args := fakeIoreg(t, `"IOConsoleLocked" = No`)
	p := New(cmd, args, time.Second)

	locked, err := p.Locked(context.Background())
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestLocked_FalseWhenKeyAbsent(t *testing.T) {
	cmd, args := fakeIoreg(t, `some unrelated ioreg dump`)
	p := New(cmd, args, time.Second)

	locked, err := p.Locked(context.Background())
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestLocked_FalseWhenOtherKeysSayYesButConsoleLockedSaysNo(t *testing.T) {
	cmd, args := fakeIoreg(t, "\"SomeOtherFlag\" = Yes\n\"IOConsoleLocked\" = No\n\"AnotherFlag\" = Yes")
	p := New(cmd, args, time.Second)

	locked, err := p.Locked(context.Background())
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestNew_DefaultsToIoreg(t *testing.T) {
	p := New("", nil, time.Second)
	assert.Equal(t, "ioreg", p.Command)
	assert.Contains(t, p.Args, "IOPMrootDomain")
}
