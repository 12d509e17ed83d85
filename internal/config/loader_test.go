package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
databases:
  - alias: default
    name: stnl_db
    user: postgres
    password: secret
  - alias: reports
    name: olap
    user: reader
    host: olap.internal
    port: 6432
    schema: reporting
    pool_size: 8
    workers: 2
log:
  level: debug
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yaml", sampleConfig))
	require.NoError(t, err)

	require.Len(t, cfg.Databases, 2)
	def := cfg.Databases[0]
	assert.Equal(t, "stnl_db", def.Name)
	assert.Equal(t, "secret", def.Password)
	assert.Equal(t, DefaultHost, def.Host)
	assert.Equal(t, DefaultPort, def.Port)
	assert.Equal(t, DefaultSchema, def.Schema)
	assert.Equal(t, 4, def.PoolSize)

	reports, ok := cfg.Database("reports")
	require.True(t, ok)
	assert.Equal(t, "olap.internal", reports.Host)
	assert.Equal(t, 6432, reports.Port)
	assert.Equal(t, "reporting", reports.Schema)
	assert.Equal(t, 8, reports.PoolSize)
	assert.Equal(t, 2, reports.Workers)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Databases)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STNL_LOG_FORMAT", "json")
	cfg, err := Load(writeFile(t, "config.yaml", sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(writeFile(t, "config.yaml", "databases: [\n"))
	assert.ErrorContains(t, err, "read config")

	_, err = Load(writeFile(t, "config.yaml", "databases:\n  - alias: x\n"))
	assert.ErrorContains(t, err, "name is required")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := &Config{Log: Log{Level: "warn", Format: "json"}}
	cfg.AddDatabase(Database{Name: "shop", User: "app"})
	cfg.AddDatabase(Database{Alias: "reports", Name: "olap", User: "reader", Password: "pw"})

	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Databases, loaded.Databases)
	assert.Equal(t, cfg.Log, loaded.Log)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "pool_size: 4")
}
