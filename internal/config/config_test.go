package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "dense", cfg.Solver)
	assert.Equal(t, 1, cfg.Precision)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 2000, cfg.MaxUnknowns)
	assert.Equal(t, 128, cfg.CacheSize)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "text", cfg.Format)
	assert.Zero(t, cfg.Gmin)
	assert.False(t, cfg.Verbose)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"sparse solver", func(c *Config) { c.Solver = "sparse" }, nil},
		{"unknown solver", func(c *Config) { c.Solver = "qr" }, ErrUnknownSolver},
		{"negative precision", func(c *Config) { c.Precision = -1 }, ErrInvalidPrecision},
		{"precision too high", func(c *Config) { c.Precision = 16 }, ErrInvalidPrecision},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, nil},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrInvalidTimeout},
		{"negative max unknowns", func(c *Config) { c.MaxUnknowns = -1 }, ErrInvalidMaxUnknowns},
		{"cache disabled", func(c *Config) { c.CacheSize = 0 }, nil},
		{"negative cache size", func(c *Config) { c.CacheSize = -1 }, ErrInvalidCacheSize},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"gmin", func(c *Config) { c.Gmin = 1e-12 }, nil},
		{"negative gmin", func(c *Config) { c.Gmin = -1e-12 }, ErrInvalidGmin},
		{"infinite gmin", func(c *Config) { c.Gmin = math.Inf(1) }, ErrInvalidGmin},
		{"markdown format", func(c *Config) { c.Format = "markdown" }, nil},
		{"unknown format", func(c *Config) { c.Format = "xml" }, ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("solver: sparse\ntimeout: 2s\nprecision: 3\ngmin: 1e-12\nfirst_line_title: true\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg := NewConfig()
	require.NoError(t, LoadConfigFile(path, cfg))

	assert.Equal(t, "sparse", cfg.Solver)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.Precision)
	assert.Equal(t, 1e-12, cfg.Gmin)
	assert.True(t, cfg.FirstLineTitle)
	assert.Equal(t, 128, cfg.CacheSize, "keys missing from the file keep their defaults")
}

func TestLoadConfigFileErrors(t *testing.T) {
	dir := t.TempDir()

	err := LoadConfigFile(filepath.Join(dir, "missing.yaml"), NewConfig())
	assert.ErrorIs(t, err, ErrConfigNotFound)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("solver: [unclosed\n"), 0o600))
	err = LoadConfigFile(bad, NewConfig())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("explicit file", func(t *testing.T) {
		path := filepath.Join(dir, "ok.yaml")
		require.NoError(t, os.WriteFile(path, []byte("concurrency: 8\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.Concurrency)
	})

	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.yaml"))
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("solver: qr\n"), 0o600))

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrUnknownSolver)
	})
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o600))

	assert.Equal(t, path, FindConfigFile(path))
	assert.Empty(t, FindConfigFile(filepath.Join(dir, "missing.yaml")))

	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("{}\n"), 0o600))
	found := FindConfigFile("")
	assert.Equal(t, DefaultConfigFile, filepath.Base(found))
}

func TestXDGConfigDir(t *testing.T) {
	assert.Equal(t, AppName, filepath.Base(XDGConfigDir()))
}
