package iofs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnsureDirs_CreatesDirectories verifies all required
// directories are created.
func TestEnsureDirs_CreatesDirectories(t *testing.T) {
	// Create temporary test directory
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	// Verify config directory exists
	configDir := filepath.Join(tmpDir, ".config", "avidb")
	info, err := os.Stat(configDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(),
		"Config directory should exist")

	// Verify cache directory exists
	cacheDir := filepath.Join(tmpDir, ".cache", "avidb")
	info, err = os.Stat(cacheDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(),
		"Cache directory should exist")

	// Verify log directory exists
	logDir := filepath.Join(tmpDir, ".local", "share", "avidb",
		"logs")
	info, err = os.Stat(logDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(),
		"Log directory should exist")
}

// TestEnsureDirs_Idempotent verifies multiple calls work.
func TestEnsureDirs_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	// First call
	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	// Second call should succeed
	err = EnsureDirs(tmpDir)
	require.NoError(t, err)
}

// TestTouchDir_CreatesNewDirectory verifies new directory
// creation.
func TestTouchDir_CreatesNewDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	newDir := filepath.Join(tmpDir, "test", "subdir")

	err := touchDir(newDir)
	require.NoError(t, err)

	info, err := os.Stat(newDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestTouchDir_ExistingDirectory verifies existing directory
// is not modified.
func TestTouchDir_ExistingDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	existingDir := filepath.Join(tmpDir, "existing")

	// Create directory first
	err := os.MkdirAll(existingDir, 0755)
	require.NoError(t, err)

	// Get original info
	originalInfo, err := os.Stat(existingDir)
	require.NoError(t, err)

	// Call touchDir on existing directory
	err = touchDir(existingDir)
	require.NoError(t, err)

	// Verify directory still exists and unchanged
	newInfo, err := os.Stat(existingDir)
	require.NoError(t, err)
	assert.True(t, newInfo.IsDir())
	assert.Equal(t, originalInfo.Mode(), newInfo.Mode())
}

// TestEnsureConfigFile_CreatesFile verifies config file
// is created.
func TestEnsureConfigFile_CreatesFile(t *testing.T) {
	tmpDir := t.TempDir()

	// First ensure directories exist
	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	// Create config file
	err = EnsureConfigFile(tmpDir)
	require.NoError(t, err)

	// Verify file exists and content matches the embedded template
	configPath := filepath.Join(tmpDir, ".config", "avidb",
		"config.yaml")
	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, ConfigYAML, string(content),
		"Config file content should match embedded template")
}

// TestEnsureConfigFile_Idempotent verifies existing file
// is not overwritten.
func TestEnsureConfigFile_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	// Create config file
	err = EnsureConfigFile(tmpDir)
	require.NoError(t, err)

	configPath := filepath.Join(tmpDir, ".config", "avidb",
		"config.yaml")

	// Modify the file
	customContent := "# Custom config\ndatabase:\n  host: myhost"
	err = os.WriteFile(configPath, []byte(customContent),
		0644)
	require.NoError(t, err)

	// Call EnsureConfigFile again
	err = EnsureConfigFile(tmpDir)
	require.NoError(t, err)

	// Verify file still has custom content
	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, customContent, string(content),
		"Existing config file should not be overwritten")
}

// TestConfigYAML_Embedded verifies embedded config is
// not empty.
func TestConfigYAML_Embedded(t *testing.T) {
	assert.NotEmpty(t, ConfigYAML,
		"Embedded ConfigYAML should not be empty")
	assert.Contains(t, ConfigYAML, "database",
		"ConfigYAML should contain database section")
	assert.Contains(t, ConfigYAML, "convert",
		"ConfigYAML should contain convert section")
	assert.Contains(t, ConfigYAML, "enrich",
		"ConfigYAML should contain enrich section")
	assert.Contains(t, ConfigYAML, "sync",
		"ConfigYAML should contain sync section")
	assert.Contains(t, ConfigYAML, "log",
		"ConfigYAML should contain log section")
}

// TestEnsureSourcesFile_CreatesFile verifies sources file
// is created.
func TestEnsureSourcesFile_CreatesFile(t *testing.T) {
	tmpDir := t.TempDir()

	// First ensure directories exist
	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	// Create sources file
	err = EnsureSourcesFile(tmpDir)
	require.NoError(t, err)

	// Verify file exists and content matches the embedded template
	sourcesPath := filepath.Join(tmpDir, ".config", "avidb",
		"sources.yaml")
	content, err := os.ReadFile(sourcesPath)
	require.NoError(t, err)
	assert.Equal(t, SourcesYAML, string(content),
		"Sources file content should match embedded template")
}

// TestEnsureSourcesFile_Idempotent verifies existing file
// is not overwritten.
func TestEnsureSourcesFile_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	// Create sources file
	err = EnsureSourcesFile(tmpDir)
	require.NoError(t, err)

	sourcesPath := filepath.Join(tmpDir, ".config", "avidb",
		"sources.yaml")

	// Modify the file
	customContent := "# Custom sources\ntaxonomy:\n  - file: /data/x.csv"
	err = os.WriteFile(sourcesPath, []byte(customContent),
		0644)
	require.NoError(t, err)

	// Call EnsureSourcesFile again
	err = EnsureSourcesFile(tmpDir)
	require.NoError(t, err)

	// Verify file still has custom content
	content, err := os.ReadFile(sourcesPath)
	require.NoError(t, err)
	assert.Equal(t, customContent, string(content),
		"Existing sources file should not be overwritten")
}

// TestSourcesYAML_Embedded verifies embedded sources is
// not empty.
func TestSourcesYAML_Embedded(t *testing.T) {
	assert.NotEmpty(t, SourcesYAML,
		"Embedded SourcesYAML should not be empty")
	assert.Contains(t, SourcesYAML, "taxonomy",
		"SourcesYAML should contain taxonomy section")
	assert.Contains(t, SourcesYAML, "eBird_taxonomy_v2024.csv",
		"SourcesYAML should contain an example release")
	assert.Contains(t, SourcesYAML, "regions",
		"SourcesYAML should document sync regions")
}

// TestWriteReport_CreatesTimestampedFile verifies report
// writing.
func TestWriteReport_CreatesTimestampedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	path, err := WriteReport(dir, "conversion", "summary body\n")
	require.NoError(t, err)

	assert.Contains(t, path, "conversion_")
	assert.Contains(t, path, ".txt")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "summary body\n", string(content))
}

// TestWriteReport_CreatesMissingDir verifies the reports
// directory is created on demand.
func TestWriteReport_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "reports")

	_, err := WriteReport(dir, "enrichment", "body")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
