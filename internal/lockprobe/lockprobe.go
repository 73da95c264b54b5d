// Package lockprobe queries whether the macOS screen is currently locked,
// via ioreg, to select the notification delivery path: unlocked -> TTS,
// locked -> iMessage.
package lockprobe

import (
	"context"
	"regexp"
	"time"

	"github.com/kahgeh/harold/internal/subprocess"
)

// ioConsoleLockedRe matches the IOConsoleLocked key's value specifically,
// rather than scanning the whole ioreg dump for "Yes" — that dump carries
// many unrelated Yes/No tokens for other keys, so a bare substring check
// would false-positive.
var ioConsoleLockedRe = regexp.MustCompile(`"IOConsoleLocked"\s*=\s*Yes`)

// Prober invokes the configured lock-state query command.
type Prober struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// New returns a Prober for the given command, defaulting to the standard
// ioreg invocation when command is empty.
func New(command string, args []string, timeout time.Duration) *Prober {
	if command == "" {
		command = "ioreg"
		args = []string{"-n", "Root", "-d", "1", "-c", "IOPMrootDomain"}
	}
	return &Prober{Command: command, Args: args, Timeout: timeout}
}

// Locked reports whether the screen is currently locked. A subprocess
// failure is treated as "not locked" by the caller's choice, since this
// probe has no event type of its own to carry an error outcome; callers
// that need to distinguish failure should inspect the returned error.
func (p *Prober) Locked(ctx context.Context) (bool, error) {
	res, err := subprocess.Run(ctx, p.Timeout, p.Command, p.Args, nil)
	if err != nil {
		return false, err
	}
	return ioConsoleLockedRe.MatchString(res.Stdout), nil
}
