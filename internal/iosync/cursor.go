package iosync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// dateCursor persists the last fully ingested day between runs.
type dateCursor interface {
	// Load returns the saved day. found is false when no cursor
	// exists yet.
	Load(ctx context.Context) (day time.Time, found bool, err error)

	// Save records day as the last fully ingested one.
	Save(ctx context.Context, day time.Time) error
}

// fileCursor keeps the cursor as a single YYYY-MM-DD line in the
// cache directory. The file predates avidb, so its format stays
// readable by hand.
type fileCursor struct {
	path string
}

func (c *fileCursor) Load(_ context.Context) (time.Time, bool, error) {
	bs, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false,
			fmt.Errorf("failed to read cursor file %s: %w", c.path, err)
	}

	day, err := time.Parse(dateLayout, strings.TrimSpace(string(bs)))
	if err != nil {
		return time.Time{}, false,
			fmt.Errorf("failed to parse cursor file %s: %w", c.path, err)
	}
	return day, true, nil
}

func (c *fileCursor) Save(_ context.Context, day time.Time) error {
	dir := filepath.Dir(c.path)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data := []byte(day.Format(dateLayout) + "\n")
	err = os.WriteFile(c.path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write cursor file %s: %w", c.path, err)
	}
	return nil
}
