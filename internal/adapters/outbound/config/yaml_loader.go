package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abdidvp/skillguard/internal/domain"
)

// YAMLLoader implements domain.ConfigLoader by reading a --config file.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads the YAML file at path. An empty path returns DefaultConfig
// without touching the filesystem; a named file that does not exist is an
// error.
func (l *YAMLLoader) Load(path string) (domain.Config, error) {
	if path == "" {
		return domain.DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg domain.Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return domain.Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	// Validate before merging: catches typos in the user's raw input.
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid %s: %w", path, err)
	}

	return mergeConfig(domain.DefaultConfig(), cfg), nil
}

// mergeConfig overlays explicit values on the defaults. Lists replace the
// default list entirely.
func mergeConfig(base, override domain.Config) domain.Config {
	result := base

	if len(override.SettledOrderStatuses) > 0 {
		result.SettledOrderStatuses = override.SettledOrderStatuses
	}
	if len(override.Redirect.AllowedRedirectURIs) > 0 {
		result.Redirect.AllowedRedirectURIs = override.Redirect.AllowedRedirectURIs
	}
	if len(override.Redirect.LoopbackHosts) > 0 {
		result.Redirect.LoopbackHosts = override.Redirect.LoopbackHosts
	}

	result.OutputSchema = override.OutputSchema
	result.Credentials = override.Credentials
	result.Rules = override.Rules

	return result
}
