// Package config implements Harold's layered configuration: built-in
// defaults, overridden by default.toml, overridden by {HAROLD_ENV}.toml,
// overridden by HAROLD__SECTION__KEY environment variables, merged with
// dario.cat/mergo, and validated with go-playground/validator struct
// tags.
package config

import "time"

// Config is the umbrella configuration object, returned ready to use by
// Initialize.
type Config struct {
	GRPC     GRPCConfig     `toml:"grpc"`
	Store    StoreConfig    `toml:"store"`
	IMessage IMessageConfig `toml:"imessage"`
	AI       AIConfig       `toml:"ai"`
	TTS      TTSConfig      `toml:"tts"`
	Notify   NotifyConfig   `toml:"notify"`
	Log      LogConfig      `toml:"log"`
	Timeouts TimeoutsConfig `toml:"timeouts"`
}

// GRPCConfig is the loopback bind address for the TurnComplete ingress.
type GRPCConfig struct {
	Host string `toml:"host" validate:"required"`
	Port int    `toml:"port" validate:"required,min=1,max=65535"`
}

// StoreConfig locates the event store directory.
type StoreConfig struct {
	Path string `toml:"path" validate:"required"`
}

// IMessageConfig describes the outbound recipient and the external
// message database Harold reads for dedup and for inbound/self replies.
type IMessageConfig struct {
	Recipient string   `toml:"recipient" validate:"required"`
	HandleIDs []string `toml:"handle_ids" validate:"required,min=1,dive,numeric"`
	DBPath    string   `toml:"db_path" validate:"required"`
}

// AIConfig points at the general-purpose classifier CLI and the local
// summarisation model directory.
type AIConfig struct {
	CLIPath       string `toml:"cli_path" validate:"required"`
	LocalModelDir string `toml:"local_model_dir" validate:"required"`
}

// TTSConfig composes the speech command invocation.
type TTSConfig struct {
	Command string   `toml:"command" validate:"required"`
	Args    []string `toml:"args"`
	Voice   string   `toml:"voice"`
}

// NotifyConfig holds notification-pipeline behavioral switches.
//
// SkipIfSessionActive is a *bool, not a bool: mergo.WithOverride treats a
// plain false as the zero value and never lets it override an earlier
// true layer, so a later layer could never turn this off. A pointer
// lets a layer that sets the key at all (true or false) override one
// that didn't, the same tri-state idiom builtin.go/loader.go use it with.
type NotifyConfig struct {
	SkipIfSessionActive *bool `toml:"skip_if_session_active"`
}

// SkipSessionActiveGate reports the effective value of
// SkipIfSessionActive, defaulting to true when no layer set it.
func (n NotifyConfig) SkipSessionActiveGate() bool {
	if n.SkipIfSessionActive == nil {
		return true
	}
	return *n.SkipIfSessionActive
}

// LogConfig controls structured log verbosity.
type LogConfig struct {
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// TimeoutsConfig bounds every subprocess invocation.
type TimeoutsConfig struct {
	SubprocessSeconds int `toml:"subprocess_seconds" validate:"required,min=1"`
}

// Subprocess returns the configured subprocess timeout as a time.Duration.
func (t TimeoutsConfig) Subprocess() time.Duration {
	return time.Duration(t.SubprocessSeconds) * time.Second
}
