package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthWithoutPool(t *testing.T) {
	var db *DB
	require.Error(t, db.Health(context.Background()))
	assert.NotPanics(t, db.Close)
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New(context.Background(), "postgres://%zz", 2, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse DATABASE_URL")
}
