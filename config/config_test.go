package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
env:
  serviceName: storefront-test
  log:
    level: debug
storage:
  driver: badger
  dir: /tmp/should-be-overridden
  sync: false
admin:
  username: owner
  passwordHash: "hash"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	return dir
}

func TestLoadWithEnv_File(t *testing.T) {
	dir := writeConfig(t, testYAML)

	cfg, err := LoadWithEnv[Config]("config", dir)
	require.NoError(t, err)

	assert.Equal(t, "storefront-test", cfg.Env.ServiceName)
	assert.Equal(t, "debug", cfg.Env.Log.Level)
	assert.Equal(t, "badger", cfg.Storage.Driver)
	assert.False(t, cfg.Storage.Sync)
	assert.Equal(t, "owner", cfg.Admin.Username)
	assert.Equal(t, "hash", cfg.Admin.PasswordHash)
}

func TestLoadWithEnv_EnvOverride(t *testing.T) {
	dir := writeConfig(t, testYAML)
	t.Setenv("STOREFRONT_STORAGE_DIR", "/var/lib/storefront")
	t.Setenv("STOREFRONT_STORAGE_SYNC", "true")
	t.Setenv("STOREFRONT_ADMIN_PASSWORDHASH", "other")

	cfg, err := LoadWithEnv[Config]("config", dir)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/storefront", cfg.Storage.Dir)
	assert.True(t, cfg.Storage.Sync)
	assert.Equal(t, "other", cfg.Admin.PasswordHash)
}

func TestLoadWithEnv_ExplicitPathBeforeWorkingDir(t *testing.T) {
	// The package directory holds its own config.yaml.
	_, err := os.Stat("config.yaml")
	require.NoError(t, err)

	dir := writeConfig(t, testYAML)
	cfg, err := LoadWithEnv[Config]("config", dir)
	require.NoError(t, err)
	assert.Equal(t, "storefront-test", cfg.Env.ServiceName)
}

func TestLoadWithEnv_FallsBackToWorkingDir(t *testing.T) {
	cfg, err := LoadWithEnv[Config]("config", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "storefront", cfg.Env.ServiceName)
}

func TestLoadWithEnv_Missing(t *testing.T) {
	_, err := LoadWithEnv[Config]("nope", t.TempDir())
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	dir := writeConfig(t, "env:\n  serviceName: x\n")

	cfg, err := New(dir)
	require.NoError(t, err)

	// The explicit directory wins over config.yaml in the working directory.
	assert.Equal(t, "x", cfg.Env.ServiceName)
	assert.Equal(t, defaultDriver, cfg.Storage.Driver)
	assert.Equal(t, defaultStorageDir, cfg.Storage.Dir)
	assert.Equal(t, defaultAdminUser, cfg.Admin.Username)
	assert.Equal(t, defaultReceiptSize, cfg.Receipt.Size)

	var empty Config
	empty.applyDefaults()
	assert.Equal(t, defaultDriver, empty.Storage.Driver)
	assert.Equal(t, defaultStorageDir, empty.Storage.Dir)
	assert.Equal(t, defaultAdminUser, empty.Admin.Username)
	assert.Equal(t, defaultReceiptSize, empty.Receipt.Size)
}

func TestCanonicalizeEnvKey(t *testing.T) {
	existing := map[string]any{
		"admin": map[string]any{"passwordHash": "x"},
	}
	assert.Equal(t, "admin.passwordHash", canonicalizeEnvKey("ADMIN_PASSWORDHASH", existing))
	assert.Equal(t, "unknown.key", canonicalizeEnvKey("UNKNOWN_KEY", existing))
}
