package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
env: "dev"
storage_path: "storage/students.json"
http_server:
  address: "localhost:8082"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "storage/students.json", cfg.StoragePath)
	assert.Equal(t, FormatJSON, cfg.StorageFormat)
	assert.Equal(t, "localhost:8082", cfg.Addr)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
env: "dev"
storage_path: "storage/students.json"
storage_format: "json"
http_server:
  address: "localhost:8082"
`)
	t.Setenv("STORAGE_FORMAT", "sqlite")
	t.Setenv("STORAGE_PATH", "storage/students.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatSQLite, cfg.StorageFormat)
	assert.Equal(t, "storage/students.db", cfg.StoragePath)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorContains(t, err, "does not exist")
	})

	t.Run("missing required value", func(t *testing.T) {
		path := writeConfig(t, `
env: "dev"
http_server:
  address: "localhost:8082"
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("unknown storage format", func(t *testing.T) {
		path := writeConfig(t, `
env: "dev"
storage_path: "x"
storage_format: "csv"
http_server:
  address: "localhost:8082"
`)
		_, err := Load(path)
		assert.ErrorContains(t, err, "unknown storage_format")
	})
}
