package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Run("set variables override", func(t *testing.T) {
		t.Setenv("RECIPEBOX_DATABASE_DSN", "postgres://env")
		t.Setenv("RECIPEBOX_MIGRATE_ON_START", "false")
		t.Setenv("RECIPEBOX_ACCESS_TOKEN_TTL", "2m")
		t.Setenv("RECIPEBOX_CLOUDINARY_CLOUD_NAME", "demo")

		cfg := &Config{}
		cfg.LoadDefaults()
		parseEnv(cfg)

		assert.Equal(t, "postgres://env", cfg.DatabaseDSN)
		assert.False(t, cfg.MigrateOnStart)
		assert.Equal(t, 2*time.Minute, cfg.AccessTokenTTL)
		assert.Equal(t, "demo", cfg.CloudinaryCloudName)
		assert.Equal(t, "recipe-images", cfg.ImageBucket, "unset variables keep defaults")
	})

	t.Run("malformed duration panics", func(t *testing.T) {
		t.Setenv("RECIPEBOX_TOAST_DURATION", "soon")
		cfg := &Config{}
		require.Panics(t, func() { parseEnv(cfg) })
	})
}
