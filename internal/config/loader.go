package config

import (
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/pelletier/go-toml/v2"

	"github.com/kahgeh/harold/internal/harolderr"
)

// Initialize loads, merges, and validates Harold's configuration: built-in
// defaults, then default.toml, then {HAROLD_ENV}.toml, then HAROLD__
// environment overrides, each layer overriding the previous one via
// dario.cat/mergo.
//
// configDir, if empty, defaults to "config" next to the running
// executable, or to the value of HAROLD_CONFIG_DIR when set.
func Initialize(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = resolveConfigDir()
	}

	cfg := builtin()

	if err := mergeTOMLFile(&cfg, filepath.Join(configDir, "default.toml")); err != nil {
		return nil, err
	}

	env := envString("HAROLD_ENV", "local")
	if err := mergeTOMLFile(&cfg, filepath.Join(configDir, env+".toml")); err != nil {
		return nil, err
	}

	overlay, err := envOverlay(os.Environ())
	if err != nil {
		return nil, harolderr.NewConfigError("env overlay", err)
	}
	if err := mergo.Merge(&cfg, overlay, mergo.WithOverride, mergo.WithoutDereference); err != nil {
		return nil, harolderr.NewConfigError("merge env overlay", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func resolveConfigDir() string {
	if dir, ok := os.LookupEnv("HAROLD_CONFIG_DIR"); ok {
		return dir
	}
	exe, err := os.Executable()
	if err != nil {
		return "config"
	}
	return filepath.Join(filepath.Dir(exe), "config")
}

func mergeTOMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return harolderr.NewConfigError(path, fmt.Errorf("read: %w", err))
	}

	var layer Config
	if err := toml.Unmarshal(data, &layer); err != nil {
		return harolderr.NewConfigError(path, fmt.Errorf("parse: %w", err))
	}

	if err := mergo.Merge(cfg, layer, mergo.WithOverride, mergo.WithoutDereference); err != nil {
		return harolderr.NewConfigError(path, fmt.Errorf("merge: %w", err))
	}
	return nil
}
