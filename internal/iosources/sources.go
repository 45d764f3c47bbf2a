// Package iosources loads the sources.yaml file that points
// avidb at eBird taxonomy releases and observation sync regions.
package iosources

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aviatlas/avidb/pkg/config"
	"github.com/aviatlas/avidb/pkg/sources"
	"gopkg.in/yaml.v3"
)

type iosources struct {
	cfg *config.Config
}

func New(cfg *config.Config) sources.Sources {
	res := iosources{cfg: cfg}
	return &res
}

func (s *iosources) Load() (*sources.SourcesConfig, error) {
	sourcesPath := config.SourcesFilePath(s.cfg.HomeDir)
	sourcesConfig, err := loadSourcesConfig(sourcesPath)
	if err != nil {
		return nil, SourcesConfigError(sourcesPath, err)
	}
	return sourcesConfig, nil
}

// loadSourcesConfig reads and validates sources.yaml from disk.
// It performs data structure validation (via
// sources.SourcesConfig.Validate) and expands ~ in file paths so
// later stages always see absolute paths.
func loadSourcesConfig(path string) (*sources.SourcesConfig, error) {
	// Read file from disk
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to read sources config file: %w", err)
	}

	// Parse YAML
	var config sources.SourcesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"failed to parse sources config: %w", err)
	}

	// Validate data structure (pure validation)
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Expand ~ so convert finds files regardless of cwd
	for i := range config.Taxonomy {
		config.Taxonomy[i].File =
			sources.ExpandHome(config.Taxonomy[i].File)
	}

	// Log configuration warnings
	for _, w := range config.Warnings {
		slog.Warn("Sources configuration warning",
			"version", w.Version,
			"field", w.Field,
			"message", w.Message,
			"suggestion", w.Suggestion)
	}

	return &config, nil
}
