package iosync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCursor(t *testing.T) *fileCursor {
	t.Helper()
	return &fileCursor{
		path: filepath.Join(t.TempDir(), "last_successful_date.txt"),
	}
}

func TestFileCursor_LoadMissing(t *testing.T) {
	cursor := testCursor(t)

	_, found, err := cursor.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileCursor_RoundTrip(t *testing.T) {
	cursor := testCursor(t)
	day := time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)

	err := cursor.Save(context.Background(), day)
	require.NoError(t, err)

	got, found, err := cursor.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2021-03-04", got.Format(dateLayout))

	bs, err := os.ReadFile(cursor.path)
	require.NoError(t, err)
	assert.Equal(t, "2021-03-04\n", string(bs))
}

func TestFileCursor_LoadWithoutNewline(t *testing.T) {
	cursor := testCursor(t)

	// Files written by earlier tooling carry no trailing newline.
	err := os.WriteFile(cursor.path, []byte("2019-11-30"), 0644)
	require.NoError(t, err)

	got, found, err := cursor.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2019-11-30", got.Format(dateLayout))
}

func TestFileCursor_Corrupt(t *testing.T) {
	cursor := testCursor(t)

	err := os.WriteFile(cursor.path, []byte("last tuesday"), 0644)
	require.NoError(t, err)

	_, _, err = cursor.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse cursor file")
}

func TestFileCursor_SaveCreatesDir(t *testing.T) {
	dir := t.TempDir()
	cursor := &fileCursor{
		path: filepath.Join(
			dir, ".cache", "avidb", "last_successful_date.txt"),
	}
	day := time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)

	err := cursor.Save(context.Background(), day)
	require.NoError(t, err)
	assert.FileExists(t, cursor.path)
}
