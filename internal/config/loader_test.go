package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func baseValidTOML() string {
	return `
[grpc]
host = "127.0.0.1"
port = 50060

[store]
path = "store"

[imessage]
recipient = "+15551234567"
handle_ids = ["1"]
db_path = "chat.db"

[ai]
cli_path = "/usr/local/bin/ai-cli"
local_model_dir = "/opt/models"

[tts]
command = "say"

[timeouts]
subprocess_seconds = 10
`
}

func TestInitialize_LoadsDefaultTOML(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "default.toml", baseValidTOML())

	cfg, err := Initialize(dir)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.GRPC.Host)
	assert.Equal(t, 50060, cfg.GRPC.Port)
	assert.Equal(t, []string{"1"}, cfg.IMessage.HandleIDs)
	assert.True(t, cfg.Notify.SkipSessionActiveGate())
}

func TestInitialize_TOMLLayerCanDisableSkipIfSessionActiveOverBuiltinTrue(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "default.toml", baseValidTOML()+"\n[notify]\nskip_if_session_active = false\n")

	cfg, err := Initialize(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg.Notify.SkipIfSessionActive, "an explicit false in a file layer must survive the merge, not be treated as absent")
	assert.False(t, cfg.Notify.SkipSessionActiveGate())
}

func TestInitialize_EnvVarOverlayCanDisableSkipIfSessionActiveOverBuiltinTrue(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "default.toml", baseValidTOML())
	t.Setenv("HAROLD__NOTIFY__SKIP_IF_SESSION_ACTIVE", "false")

	cfg, err := Initialize(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg.Notify.SkipIfSessionActive, "an explicit false from the env overlay must survive the merge, not be treated as absent")
	assert.False(t, cfg.Notify.SkipSessionActiveGate())
}

func TestInitialize_EnvironmentFileOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "default.toml", baseValidTOML())
	writeConfigFile(t, dir, "local.toml", `
[grpc]
port = 60000
`)
	t.Setenv("HAROLD_ENV", "local")

	cfg, err := Initialize(dir)
	require.NoError(t, err)
	assert.Equal(t, 60000, cfg.GRPC.Port)
	assert.Equal(t, "127.0.0.1", cfg.GRPC.Host) // untouched field still carried over
}

func TestInitialize_EnvVarOverlayWinsOverFiles(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "default.toml", baseValidTOML())
	t.Setenv("HAROLD__GRPC__PORT", "12345")

	cfg, err := Initialize(dir)
	require.NoError(t, err)
	assert.Equal(t, 12345, cfg.GRPC.Port)
}

func TestInitialize_RejectsNonLoopbackHost(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "default.toml", baseValidTOML())
	t.Setenv("HAROLD__GRPC__HOST", "0.0.0.0")

	_, err := Initialize(dir)
	assert.Error(t, err)
}

func TestInitialize_RejectsMissingRequiredField(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "default.toml", `
[grpc]
host = "127.0.0.1"
port = 50060
`)
	_, err := Initialize(dir)
	assert.Error(t, err)
}

func TestInitialize_MissingFilesFallsBackToBuiltinDefaults(t *testing.T) {
	dir := t.TempDir() // no default.toml at all
	_, err := Initialize(dir)
	// builtin() alone is missing several required fields (imessage, ai)
	assert.Error(t, err)
}
