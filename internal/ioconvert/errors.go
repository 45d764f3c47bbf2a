package ioconvert

import (
	"fmt"

	"github.com/aviatlas/avidb/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError creates an error for when conversion
// is attempted without database connection.
func NotConnectedError() error {
	msg := "Conversion attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// UnknownVersionError creates an error for when the requested
// taxonomy version is not in sources.yaml.
func UnknownVersionError(version string, err error) error {
	msg := `Taxonomy version <em>%s</em> is not configured

<em>How to fix:</em>
  1. List configured releases:
     <em>cat ~/.config/avidb/sources.yaml</em>
  2. Pass a configured version: <em>avidb convert --version 2024</em>
  3. Or add the release to sources.yaml`

	vars := []any{version}

	return &gn.Error{
		Code: errcode.SourcesUnknownVersionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("unknown taxonomy version %q: %w",
			version, err),
	}
}

// DownloadError creates an error for taxonomy CSV
// download failures.
func DownloadError(url string, err error) error {
	msg := `Cannot download taxonomy file

<em>URL:</em> %s

<em>Possible causes:</em>
  - No network connectivity
  - Release URL has moved
  - Server rejected the request

<em>How to fix:</em>
  1. Check the URL in sources.yaml
  2. Download the file manually and set its path
     in the release's <em>file</em> field`

	vars := []any{url}

	return &gn.Error{
		Code: errcode.SourcesDownloadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to download %s: %w", url, err),
	}
}

// CSVOpenError creates an error for when the taxonomy CSV
// cannot be opened.
func CSVOpenError(path string, err error) error {
	msg := `Cannot open taxonomy file

<em>File:</em> %s

<em>Possible causes:</em>
  - File does not exist at the configured path
  - Release not downloaded yet
  - Permission denied

<em>How to fix:</em>
  1. Check the file: <em>ls -l %s</em>
  2. Review the release paths in sources.yaml
  3. Add a download URL to the release so avidb
     can fetch the file itself`

	vars := []any{path, path}

	return &gn.Error{
		Code: errcode.ConvertCSVOpenError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to open CSV %s: %w", path, err),
	}
}

// CSVHeaderError creates an error for a taxonomy CSV whose
// header row is unusable.
func CSVHeaderError(path string, err error) error {
	msg := `Taxonomy file has an invalid header

<em>File:</em> %s

<em>Expected columns:</em>
  CATEGORY, SPECIES_CODE, PRIMARY_COM_NAME, SCI_NAME,
  ORDER, FAMILY

<em>How to fix:</em>
  1. Check the file is an eBird taxonomy CSV export
  2. Re-download the release`

	vars := []any{path}

	return &gn.Error{
		Code: errcode.ConvertCSVHeaderError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("invalid CSV header in %s: %w",
			path, err),
	}
}

// CSVReadError creates an error for an unrecoverable failure
// while streaming the taxonomy CSV.
func CSVReadError(path string, line int, err error) error {
	msg := "Cannot read taxonomy file <em>%s</em> at line %d"
	vars := []any{path, line}

	return &gn.Error{
		Code: errcode.ConvertCSVReadError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to read CSV %s line %d: %w",
			path, line, err),
	}
}

// EmptyTreeError creates an error for a conversion run where
// no row survived classification.
func EmptyTreeError(path string) error {
	msg := `No species rows found in <em>%s</em>

<em>Possible causes:</em>
  - File is not an eBird taxonomy export
  - Category filter excludes every row

<em>How to fix:</em>
  1. Check the configured convert categories
  2. Inspect the CSV's CATEGORY column`

	vars := []any{path}

	return &gn.Error{
		Code: errcode.ConvertEmptyTreeError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("no convertible rows in %s", path),
	}
}

// UpsertError creates an error for a rank level whose import
// failed entirely.
func UpsertError(rank string, err error) error {
	msg := `Cannot import <em>%s</em> taxa

<em>Possible causes:</em>
  - Database connection lost mid-import
  - Schema out of date (missing natural-key index)

<em>How to fix:</em>
  1. Check the database is reachable
  2. Run <em>avidb migrate</em> and retry`

	vars := []any{rank}

	return &gn.Error{
		Code: errcode.ConvertUpsertError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to import %s level: %w",
			rank, err),
	}
}

// CancelledError creates an error for when a conversion run
// is cancelled.
func CancelledError(err error) error {
	msg := "Conversion was cancelled"

	return &gn.Error{
		Code: errcode.UnknownError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("conversion cancelled: %w", err),
	}
}
