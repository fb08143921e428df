package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"database_dsn":           "postgres://json",
		"migrate_on_start":       false,
		"access_token_ttl":       "10s",
		"session_check_interval": 2000000000,
		"storage_driver":         "cloudinary",
		"cloudinary_cloud_name":  "demo",
		"toast_duration":         "1500ms",
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "postgres://json", cfg.DatabaseDSN)
		assert.False(t, cfg.MigrateOnStart)
		assert.Equal(t, 10*time.Second, cfg.AccessTokenTTL)
		assert.Equal(t, 2*time.Second, cfg.SessionCheckInterval)
		assert.Equal(t, "cloudinary", cfg.StorageDriver)
		assert.Equal(t, "demo", cfg.CloudinaryCloudName)
		assert.Equal(t, 1500*time.Millisecond, cfg.ToastDuration)
		assert.Equal(t, "recipe-images", cfg.ImageBucket, "absent keys keep earlier values")
	})

	t.Run("short flag", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", pathFlag}

		cfg := &Config{}
		parseJson(cfg)
		assert.Equal(t, "postgres://json", cfg.DatabaseDSN)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			DatabaseDSN:   "defaults",
			ToastDuration: 42 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults", cfg.DatabaseDSN)
		assert.Equal(t, 42*time.Second, cfg.ToastDuration)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "absent.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
