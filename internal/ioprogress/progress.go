// Package ioprogress persists the enrichment cursor as a JSON file in
// the cache directory. This is an impure I/O package that implements
// the progress.Store port.
package ioprogress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gnames/gnfmt"

	"github.com/aviatlas/avidb/pkg/config"
	"github.com/aviatlas/avidb/pkg/progress"
)

type fileStore struct {
	path string
}

// New creates a Store backed by the progress file in the cache
// directory.
func New(cfg *config.Config) progress.Store {
	return &fileStore{path: config.ProgressFilePath(cfg.HomeDir)}
}

// Load reads the saved state. A missing file means no run is in
// progress and returns nil without error; an unreadable or invalid
// file returns an error so the caller can warn before restarting from
// offset zero.
func (s *fileStore) Load(ctx context.Context) (*progress.State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf(
			"failed to read progress file %s: %w", s.path, err)
	}

	enc := gnfmt.GNjson{}
	var st progress.State
	if err := enc.Decode(data, &st); err != nil {
		return nil, fmt.Errorf(
			"failed to parse progress file %s: %w", s.path, err)
	}

	return &st, nil
}

// Save writes the state. The write lands under a temporary name
// first so a crash mid-save never corrupts the cursor.
func (s *fileStore) Save(ctx context.Context, st *progress.State) error {
	enc := gnfmt.GNjson{Pretty: true}
	data, err := enc.Encode(st)
	if err != nil {
		return fmt.Errorf("failed to encode progress state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write progress file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace progress file: %w", err)
	}

	return nil
}

// Clear removes the saved state. Clearing an absent file is a no-op.
func (s *fileStore) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
