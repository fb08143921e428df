package config

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd", "-d", "postgres://x", "-s", "s3", "-b", "img", "-l", "/tmp/r.db", "-v", "debug", "-f", "json", "-m=false"},
			expected: &Config{DatabaseDSN: "postgres://x", StorageDriver: "s3", ImageBucket: "img", LocalDBPath: "/tmp/r.db", LogLevel: "debug", LogFormat: "json"}},
		{name: "Test2 foreign flags ignored", args: []string{"cmd", "-c", "cfg.json", "-x", "1", "-d", "dsn"},
			expected: &Config{DatabaseDSN: "dsn"}},
		{name: "Test3 bad bool", args: []string{"cmd", "-m=maybe"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

func TestParseFlags_KeepsCurrentValuesAsDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd"}

	cfg := &Config{}
	cfg.LoadDefaults()
	want := *cfg

	parseFlags(cfg)
	assert.Empty(t, cmp.Diff(&want, cfg))
}
