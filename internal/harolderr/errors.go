// Package harolderr defines the error kinds Harold's components propagate,
// following the taxonomy in the coordination engine's error handling design:
// each kind carries its own recovery policy and the kind itself is matched
// with errors.Is at the boundary that decides what to do about it.
package harolderr

import "errors"

var (
	// ErrConfig indicates a configuration error: missing or invalid option.
	// Fatal before task startup.
	ErrConfig = errors.New("configuration error")

	// ErrStoreWrite indicates an event append failed (I/O error).
	// The gRPC layer returns a server error; the listener retries on the
	// next tick without advancing its cursor.
	ErrStoreWrite = errors.New("store write failed")

	// ErrStoreSchema indicates a stream table is missing and could not be
	// created, or would require an online schema migration the store
	// refuses to perform. Fatal on startup.
	ErrStoreSchema = errors.New("store schema error")

	// ErrSubprocessTimeout indicates an external command did not complete
	// within its allotted timeout.
	ErrSubprocessTimeout = errors.New("subprocess timed out")

	// ErrSubprocessFailure indicates an external command exited non-zero
	// or could not be started.
	ErrSubprocessFailure = errors.New("subprocess failed")

	// ErrNoRoute indicates a tagged reply matched no live agent.
	ErrNoRoute = errors.New("no matching agent for tag")

	// ErrDeadPane indicates the resolved agent was no longer live at
	// relay time.
	ErrDeadPane = errors.New("resolved agent is no longer live")

	// ErrListenerQuery indicates the external message database could not
	// be queried. The listener logs, backs off, and does not advance its
	// cursor.
	ErrListenerQuery = errors.New("listener query failed")

	// ErrBindFailure indicates the gRPC listener could not bind its
	// socket. Fatal on startup.
	ErrBindFailure = errors.New("bind failure")
)

// ConfigError wraps a configuration problem with the option path involved.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return e.Path + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError builds a ConfigError chained to ErrConfig.
func NewConfigError(path string, err error) *ConfigError {
	return &ConfigError{Path: path, Err: errors.Join(ErrConfig, err)}
}
