package iosources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aviatlas/avidb/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSourcesConfig_Minimal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	tmpDir := t.TempDir()

	// Create minimal sources.yaml
	yamlContent := `
taxonomy:
  - file: ` + filepath.Join(tmpDir, "eBird_taxonomy_v2024.csv") + `
    default: true
`

	configPath := filepath.Join(tmpDir, "sources.yaml")
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	// Load config
	config, err := loadSourcesConfig(configPath)
	require.NoError(t, err)
	require.Len(t, config.Taxonomy, 1)

	// Version is inferred from the file name
	rel := config.Taxonomy[0]
	assert.Equal(t, "2024", rel.EffectiveVersion())
	assert.True(t, rel.Default)
}

func TestLoadSourcesConfig_FileNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	_, err := loadSourcesConfig("nonexistent.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read sources config file")
}

func TestLoadSourcesConfig_InvalidYAML(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "sources.yaml")
	err := os.WriteFile(configPath,
		[]byte("taxonomy: [unclosed"), 0644)
	require.NoError(t, err)

	_, err = loadSourcesConfig(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse sources config")
}

func TestLoadSourcesConfig_NoReleases(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "sources.yaml")
	err := os.WriteFile(configPath,
		[]byte("taxonomy: []\n"), 0644)
	require.NoError(t, err)

	// Validation rejects a config without taxonomy releases
	_, err = loadSourcesConfig(configPath)
	assert.Error(t, err)
}

func TestLoadSourcesConfig_ExpandsHome(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	tmpDir := t.TempDir()

	yamlContent := `
taxonomy:
  - file: ~/data/eBird_taxonomy_v2024.csv
    default: true
`

	configPath := filepath.Join(tmpDir, "sources.yaml")
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	config, err := loadSourcesConfig(configPath)
	require.NoError(t, err)
	require.Len(t, config.Taxonomy, 1)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t,
		filepath.Join(home, "data", "eBird_taxonomy_v2024.csv"),
		config.Taxonomy[0].File,
		"~ should be expanded to the home directory")
}

func TestLoad_UsesHomeDirFromConfig(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	home := t.TempDir()
	cfgDir := config.ConfigDir(home)
	require.NoError(t, os.MkdirAll(cfgDir, 0755))

	yamlContent := `
taxonomy:
  - file: /data/eBird_taxonomy_v2023.csv
    default: true
regions:
  - code: SG
    name: Singapore
`

	err := os.WriteFile(
		config.SourcesFilePath(home), []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg := config.New()
	cfg.Update([]config.Option{config.OptHomeDir(home)})

	got, err := New(cfg).Load()
	require.NoError(t, err)
	require.Len(t, got.Taxonomy, 1)
	require.Len(t, got.Regions, 1)
	assert.Equal(t, "SG", got.Regions[0].Code)
}

func TestLoad_MissingFileError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	cfg := config.New()
	cfg.Update([]config.Option{config.OptHomeDir(t.TempDir())})

	_, err := New(cfg).Load()
	assert.Error(t, err)
}
