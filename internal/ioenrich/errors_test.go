package ioenrich

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aviatlas/avidb/pkg/errcode"
	"github.com/gnames/gn"
)

// TestNotConnectedError verifies error structure.
func TestNotConnectedError(t *testing.T) {
	err := NotConnectedError()
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Should be a gn.Error")
	assert.Equal(t, errcode.DBNotConnectedError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
	assert.Nil(t, gnErr.Vars)
	assert.Contains(t, gnErr.Err.Error(), "not connected")
}

// TestTargetsError verifies error structure.
func TestTargetsError(t *testing.T) {
	original := errors.New("relation does not exist")
	err := TargetsError(original)
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Should be a gn.Error")
	assert.Equal(t, errcode.EnrichTargetsError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
	assert.ErrorIs(t, gnErr.Err, original)
}

// TestUpdateError verifies error structure.
func TestUpdateError(t *testing.T) {
	original := errors.New("connection refused")
	err := UpdateError("t42", original)
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Should be a gn.Error")
	assert.Equal(t, errcode.EnrichUpdateError, gnErr.Code)
	require.Len(t, gnErr.Vars, 1)
	assert.Equal(t, "t42", gnErr.Vars[0])
	assert.ErrorIs(t, gnErr.Err, original)
}

// TestProgressError verifies error structure.
func TestProgressError(t *testing.T) {
	original := errors.New("permission denied")
	err := ProgressError("save", original)
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Should be a gn.Error")
	assert.Equal(t, errcode.EnrichProgressError, gnErr.Code)
	require.Len(t, gnErr.Vars, 1)
	assert.Equal(t, "save", gnErr.Vars[0])
	assert.ErrorIs(t, gnErr.Err, original)
	assert.Contains(t, gnErr.Err.Error(), "progress save failed")
}

// TestStatsError verifies error structure.
func TestStatsError(t *testing.T) {
	original := errors.New("query cancelled")
	err := StatsError(original)
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Should be a gn.Error")
	assert.Equal(t, errcode.EnrichTargetsError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
	assert.ErrorIs(t, gnErr.Err, original)
}

// TestCancelledError verifies error structure.
func TestCancelledError(t *testing.T) {
	original := errors.New("context canceled")
	err := CancelledError(original)
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Should be a gn.Error")
	assert.Equal(t, errcode.UnknownError, gnErr.Code)
	assert.Contains(t, gnErr.Err.Error(), "enrichment cancelled")
	assert.ErrorIs(t, gnErr.Err, original)
}
