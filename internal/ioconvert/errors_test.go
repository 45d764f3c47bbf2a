package ioconvert

import (
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aviatlas/avidb/pkg/errcode"
)

// TestNotConnectedError verifies error structure.
func TestNotConnectedError(t *testing.T) {
	err := NotConnectedError()

	require.NotNil(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Error should be of type *gn.Error")

	assert.Equal(t, errcode.DBNotConnectedError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
	assert.Contains(t, gnErr.Err.Error(), "not connected")
}

// TestUnknownVersionError verifies error structure.
func TestUnknownVersionError(t *testing.T) {
	originalErr := errors.New("no release with version 2030")

	err := UnknownVersionError("2030", originalErr)

	require.NotNil(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Error should be of type *gn.Error")

	assert.Equal(t, errcode.SourcesUnknownVersionError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
	assert.Len(t, gnErr.Vars, 1)
	assert.Equal(t, "2030", gnErr.Vars[0])
	assert.ErrorIs(t, gnErr.Err, originalErr)
}

// TestDownloadError verifies error structure.
func TestDownloadError(t *testing.T) {
	url := "https://example.org/ebird_taxonomy_v2024.csv"
	originalErr := errors.New("connection refused")

	err := DownloadError(url, originalErr)

	require.NotNil(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Error should be of type *gn.Error")

	assert.Equal(t, errcode.SourcesDownloadError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
	assert.Len(t, gnErr.Vars, 1)
	assert.Equal(t, url, gnErr.Vars[0])
	assert.ErrorIs(t, gnErr.Err, originalErr)
}

// TestCSVOpenError verifies error structure.
func TestCSVOpenError(t *testing.T) {
	path := "/data/ebird_taxonomy_v2024.csv"
	originalErr := errors.New("no such file")

	err := CSVOpenError(path, originalErr)

	require.NotNil(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Error should be of type *gn.Error")

	assert.Equal(t, errcode.ConvertCSVOpenError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
	assert.Len(t, gnErr.Vars, 2,
		"Should have vars for the file line and the ls hint")
	assert.Equal(t, path, gnErr.Vars[0])
	assert.ErrorIs(t, gnErr.Err, originalErr)
}

// TestCSVHeaderError verifies error structure.
func TestCSVHeaderError(t *testing.T) {
	path := "/data/broken.csv"
	originalErr := errors.New("missing column FAMILY")

	err := CSVHeaderError(path, originalErr)

	require.NotNil(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Error should be of type *gn.Error")

	assert.Equal(t, errcode.ConvertCSVHeaderError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
	assert.Len(t, gnErr.Vars, 1)
	assert.Equal(t, path, gnErr.Vars[0])
	assert.ErrorIs(t, gnErr.Err, originalErr)
}

// TestCSVReadError verifies error structure.
func TestCSVReadError(t *testing.T) {
	path := "/data/truncated.csv"
	originalErr := errors.New("unexpected EOF")

	err := CSVReadError(path, 4821, originalErr)

	require.NotNil(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Error should be of type *gn.Error")

	assert.Equal(t, errcode.ConvertCSVReadError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
	assert.Len(t, gnErr.Vars, 2)
	assert.Equal(t, path, gnErr.Vars[0])
	assert.Equal(t, 4821, gnErr.Vars[1])
	assert.ErrorIs(t, gnErr.Err, originalErr)
}

// TestEmptyTreeError verifies error structure.
func TestEmptyTreeError(t *testing.T) {
	path := "/data/not_a_taxonomy.csv"

	err := EmptyTreeError(path)

	require.NotNil(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Error should be of type *gn.Error")

	assert.Equal(t, errcode.ConvertEmptyTreeError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
	assert.Len(t, gnErr.Vars, 1)
	assert.Equal(t, path, gnErr.Vars[0])
	assert.Contains(t, gnErr.Err.Error(), "no convertible rows")
}

// TestUpsertError verifies error structure.
func TestUpsertError(t *testing.T) {
	originalErr := errors.New("connection reset")

	err := UpsertError("genus", originalErr)

	require.NotNil(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Error should be of type *gn.Error")

	assert.Equal(t, errcode.ConvertUpsertError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
	assert.Len(t, gnErr.Vars, 1)
	assert.Equal(t, "genus", gnErr.Vars[0])
	assert.ErrorIs(t, gnErr.Err, originalErr)
}

// TestCancelledError verifies error structure.
func TestCancelledError(t *testing.T) {
	originalErr := errors.New("context cancelled")

	err := CancelledError(originalErr)

	require.NotNil(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Error should be of type *gn.Error")

	assert.Equal(t, errcode.UnknownError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
	assert.ErrorIs(t, gnErr.Err, originalErr)
	assert.Contains(t, gnErr.Err.Error(), "cancelled")
}
