package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const envPrefix = "HAROLD__"

// envOverlay builds a Config populated only from HAROLD__SECTION__KEY
// environment variables, so it can be merged over the file-based layers
// with the same dario.cat/mergo call the rest of the chain uses. Building
// a nested map and round-tripping it through the TOML codec lets the
// existing `toml:"..."` struct tags double as the env-key mapping, rather
// than hand-rolling a second reflection-based setter.
//
// Only scalar fields (string, int, bool) are overridable this way; a
// slice field like imessage.handle_ids needs a TOML file layer, since a
// single environment string can't safely guess whether it should become
// one list element or several.
func envOverlay(environ []string) (Config, error) {
	tree := make(map[string]any)

	for _, kv := range environ {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(key, envPrefix), "__")
		if len(parts) < 2 {
			continue
		}
		section := strings.ToLower(parts[0])
		field := strings.ToLower(strings.Join(parts[1:], "_"))

		sub, _ := tree[section].(map[string]any)
		if sub == nil {
			sub = make(map[string]any)
		}
		sub[field] = coerceScalar(val)
		tree[section] = sub
	}

	if len(tree) == 0 {
		return Config{}, nil
	}

	b, err := toml.Marshal(tree)
	if err != nil {
		return Config{}, fmt.Errorf("marshal env overlay: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal env overlay: %w", err)
	}
	return cfg, nil
}

// coerceScalar guesses an environment value's TOML type: bool, then int,
// falling back to string. This is a best-effort guess, adequate for the
// scalar fields env overlay supports; see the Config struct tags for
// which fields those are.
func coerceScalar(val string) any {
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	if n, err := strconv.ParseInt(val, 10, 64); err == nil {
		return n
	}
	return val
}

// envString returns the value of key, or def if unset.
func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
