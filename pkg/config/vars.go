package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "avidb"

	// EBirdAPIURL is the base URL of the eBird API v2.
	EBirdAPIURL = "https://api.ebird.org/v2"

	// WikipediaRESTURL is the base URL of the Wikipedia REST API used
	// for page summaries.
	WikipediaRESTURL = "https://en.wikipedia.org/api/rest_v1"

	// WikipediaActionURL is the base URL of the MediaWiki action API
	// used as image lookup fallback.
	WikipediaActionURL = "https://en.wikipedia.org/w/api.php"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/avidb by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/avidb by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/avidb/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/avidb/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// SourcesFilePath returns the full path to the sources.yaml file.
// Returns ~/.config/avidb/sources.yaml by default.
func SourcesFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "sources.yaml")
}

// ProgressFilePath returns the path of the enrichment progress file.
// Returns ~/.cache/avidb/enrich_progress.json by default.
func ProgressFilePath(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "enrich_progress.json")
}

// SyncCursorPath returns the path of the observation sync date cursor.
// Returns ~/.cache/avidb/last_successful_date.txt by default.
func SyncCursorPath(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "last_successful_date.txt")
}

// WikiCachePath returns the path of the Wikipedia lookup cache.
// Returns ~/.cache/avidb/wiki_cache.db by default.
func WikiCachePath(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "wiki_cache.db")
}
