package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	ErrRepoConfigNotFound = errors.New("repo config file not found")
	ErrRepoConfigParsing  = errors.New("repo config parsing failed")
)

// RepoConfig holds per-repository overrides loaded from a .datasync.yml
// file at the repository root. Every field is optional; zero values leave
// the environment configuration untouched.
type RepoConfig struct {
	DataRoot     string `yaml:"data_root"`
	FilePattern  string `yaml:"file_pattern"`
	MaxBatchSize int    `yaml:"max_batch_size"`
}

// LoadRepoConfig loads and parses the .datasync.yml file from a repository path.
func LoadRepoConfig(repoPath string) (*RepoConfig, error) {
	configPath := filepath.Join(repoPath, ".datasync.yml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &RepoConfig{}, ErrRepoConfigNotFound
		}
		return nil, fmt.Errorf("failed to read .datasync.yml: %w", err)
	}

	rc := &RepoConfig{}
	if err := yaml.Unmarshal(data, rc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepoConfigParsing, err)
	}
	return rc, nil
}

// Apply merges the repo overrides into the environment configuration.
func (rc *RepoConfig) Apply(cfg *Config) {
	if rc.DataRoot != "" {
		cfg.DataRoot = rc.DataRoot
	}
	if rc.FilePattern != "" {
		cfg.FilePattern = rc.FilePattern
	}
	if rc.MaxBatchSize > 0 {
		cfg.MaxBatchSize = rc.MaxBatchSize
	}
}
