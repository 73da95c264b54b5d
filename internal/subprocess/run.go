// Package subprocess wraps exec.CommandContext with the timeout and
// argv-only discipline used throughout Harold: every external command is
// invoked with an explicit argument vector, never a shell, and every call
// is bounded by a context deadline so a hung multiplexer or AppleScript
// invocation cannot wedge a task forever.
package subprocess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kahgeh/harold/internal/harolderr"
)

// Result carries the captured output of a completed command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes name with args under a deadline of timeout, capturing
// stdout and stderr. It never touches stdin and never goes through a
// shell. env, if non-nil, is appended to the command's environment.
func Run(ctx context.Context, timeout time.Duration, name string, args []string, env []string) (Result, error) {
	return RunWithInput(ctx, timeout, name, args, env, "")
}

// RunWithInput is Run, additionally writing stdin to the command's
// standard input before it runs (used by the summariser, which receives
// the assistant's message on stdin rather than argv).
func RunWithInput(ctx context.Context, timeout time.Duration, name string, args []string, env []string, stdin string) (Result, error) {
	return run(ctx, timeout, name, args, stdin, func(cmd *exec.Cmd) {
		if len(env) > 0 {
			cmd.Env = append(cmd.Environ(), env...)
		}
	})
}

// RunIsolatedEnv runs name with an environment built ONLY from env,
// replacing rather than extending the process's own environment — used
// by the classifier, which must never see unfiltered inherited variables
// alongside untrusted message content.
func RunIsolatedEnv(ctx context.Context, timeout time.Duration, name string, args []string, env []string, stdin string) (Result, error) {
	return run(ctx, timeout, name, args, stdin, func(cmd *exec.Cmd) {
		cmd.Env = env
	})
}

func run(ctx context.Context, timeout time.Duration, name string, args []string, stdin string, configureEnv func(*exec.Cmd)) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	configureEnv(cmd)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctx.Err() == context.DeadlineExceeded {
		return res, fmt.Errorf("%w: %s %v: %w", harolderr.ErrSubprocessTimeout, name, args, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, fmt.Errorf("%w: %s %v exited %d: %s", harolderr.ErrSubprocessFailure, name, args, exitErr.ExitCode(), res.Stderr)
		}
		return res, fmt.Errorf("%w: %s %v: %w", harolderr.ErrSubprocessFailure, name, args, err)
	}
	return res, nil
}
