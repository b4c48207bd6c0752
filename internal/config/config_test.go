package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/datasync/internal/core"
)

func validConfig() *Config {
	return &Config{
		Endpoint:       "https://sync.example.com/v1/batches",
		Token:          "secret",
		TokenHeader:    "X-Datasync-Sync-Token",
		RepoPath:       ".",
		DataRoot:       "by_created",
		FilePattern:    "**/*.json",
		MaxBatchSize:   200,
		RequestTimeout: 30 * time.Second,
		RetryBaseDelay: 2 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		wantErr    bool
		validation bool
	}{
		{"valid", func(*Config) {}, false, false},
		{"missing endpoint", func(c *Config) { c.Endpoint = "" }, true, false},
		{"missing token", func(c *Config) { c.Token = "" }, true, false},
		{"zero batch size", func(c *Config) { c.MaxBatchSize = 0 }, true, true},
		{"negative batch size", func(c *Config) { c.MaxBatchSize = -5 }, true, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true, true},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, true, true},
		{"zero retries is fine", func(c *Config) { c.MaxRetries = 0 }, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.validation {
				assert.True(t, errors.Is(err, core.ErrValidation))
			}
		})
	}
}

func TestLoadRepoConfig(t *testing.T) {
	dir := t.TempDir()
	content := "data_root: posts\nfile_pattern: \"20*/**/*.json\"\nmax_batch_size: 50\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".datasync.yml"), []byte(content), 0o644))

	rc, err := LoadRepoConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "posts", rc.DataRoot)
	assert.Equal(t, "20*/**/*.json", rc.FilePattern)
	assert.Equal(t, 50, rc.MaxBatchSize)
}

func TestLoadRepoConfig_NotFound(t *testing.T) {
	rc, err := LoadRepoConfig(t.TempDir())
	require.ErrorIs(t, err, ErrRepoConfigNotFound)
	assert.NotNil(t, rc)
}

func TestLoadRepoConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".datasync.yml"), []byte("data_root: [unclosed"), 0o644))

	_, err := LoadRepoConfig(dir)
	require.ErrorIs(t, err, ErrRepoConfigParsing)
}

func TestRepoConfigApply(t *testing.T) {
	cfg := validConfig()

	rc := &RepoConfig{DataRoot: "posts", MaxBatchSize: 50}
	rc.Apply(cfg)

	assert.Equal(t, "posts", cfg.DataRoot)
	assert.Equal(t, 50, cfg.MaxBatchSize)
	assert.Equal(t, "**/*.json", cfg.FilePattern, "unset override leaves the value alone")

	empty := &RepoConfig{}
	empty.Apply(cfg)
	assert.Equal(t, "posts", cfg.DataRoot)
	assert.Equal(t, 50, cfg.MaxBatchSize)
}
