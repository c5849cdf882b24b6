package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadConfig_Defaults(t *testing.T) {
	p := writeConfig(t, "server:\n  http-port: \":9200\"\nlog:\n  level: \"\"\n")

	c, realpath, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, p, realpath)
	assert.Equal(t, ":9200", c.Server.HttpPort)
	assert.Equal(t, "info", c.Log.Level, "empty values are refilled from defaults")
	assert.Equal(t, "sqlite", c.Database.Type)
	assert.Equal(t, "localfs", c.BackupArchive.Type)
	assert.Empty(t, c.User.AdminUIDs)
	assert.Equal(t, 30*24*time.Hour, c.GetBackupRetention())
	assert.Equal(t, time.Hour, c.GetBackupCleanupInterval())
	assert.Equal(t, 30*24*time.Hour, c.GetTokenExpiry())
	assert.Equal(t, 60*time.Second, c.GetContextTimeout())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	p := writeConfig(t, "user:\n  admin-uids: [5]\ndatabase:\n  type: sqlite\n")
	t.Setenv("MURVERSE_USER_ADMIN_UIDS", "1, 2")
	t.Setenv("MURVERSE_SECURITY_AUTH_TOKEN_KEY", "from-env")
	t.Setenv("MURVERSE_DATABASE_TYPE", "postgres")
	t.Setenv("MURVERSE_USER_REGISTER_IS_ENABLE", "false")

	c, _, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, c.User.AdminUIDs)
	assert.Equal(t, "from-env", c.Security.AuthTokenKey)
	assert.Equal(t, "postgres", c.Database.Type)
	assert.False(t, c.User.RegisterIsEnable)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	p := writeConfig(t, "log:\n  level: warn\n")
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(p), ".env"), []byte("MURVERSE_LOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MURVERSE_LOG_LEVEL") })

	c, _, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadConfig_BadEnv(t *testing.T) {
	p := writeConfig(t, "")
	t.Setenv("MURVERSE_USER_ADMIN_UIDS", "one,two")

	_, _, err := LoadConfig(p)
	assert.Error(t, err)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseUIDList(t *testing.T) {
	uids, err := ParseUIDList("3;4 0,5")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 5}, uids)
}

func TestConfigSave(t *testing.T) {
	p := writeConfig(t, "")
	c, _, err := LoadConfig(p)
	require.NoError(t, err)

	c.User.AdminUIDs = []int64{9}
	require.NoError(t, c.Save())

	reloaded, _, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, reloaded.User.AdminUIDs)
}
