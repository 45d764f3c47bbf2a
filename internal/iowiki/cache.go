package iowiki

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aviatlas/avidb/pkg/wiki"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS wiki_cache (
	title      TEXT PRIMARY KEY,
	page_title TEXT NOT NULL,
	page_url   TEXT NOT NULL,
	image_url  TEXT NOT NULL DEFAULT '',
	fetched_at TEXT NOT NULL
)`

// cache memoizes successful lookups between runs. A resumed run that
// re-processes an un-checkpointed batch answers from here instead of
// hitting the API again. Only successes are stored; misses and
// failures always retry.
type cache struct {
	db *sql.DB
}

// openCache opens or creates the cache database at path.
func openCache(path string) (*cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, err
	}

	return &cache{db: db}, nil
}

// close is safe on a nil cache, clients without one skip caching.
func (k *cache) close() error {
	if k == nil || k.db == nil {
		return nil
	}
	return k.db.Close()
}

// get returns the cached summary for title, if any.
func (k *cache) get(
	ctx context.Context,
	title string,
) (*wiki.Summary, bool) {
	if k == nil || k.db == nil {
		return nil, false
	}

	var sum wiki.Summary
	err := k.db.QueryRowContext(ctx,
		`SELECT page_title, page_url, image_url
		   FROM wiki_cache WHERE title = ?`, title).
		Scan(&sum.Title, &sum.PageURL, &sum.ImageURL)
	if err != nil {
		return nil, false
	}
	return &sum, true
}

// put stores a successful lookup under its query title.
func (k *cache) put(
	ctx context.Context,
	title string,
	sum *wiki.Summary,
) error {
	if k == nil || k.db == nil {
		return nil
	}

	_, err := k.db.ExecContext(ctx,
		`INSERT INTO wiki_cache
		   (title, page_title, page_url, image_url, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (title) DO UPDATE SET
		   page_title = excluded.page_title,
		   page_url   = excluded.page_url,
		   image_url  = excluded.image_url,
		   fetched_at = excluded.fetched_at`,
		title, sum.Title, sum.PageURL, sum.ImageURL,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}
