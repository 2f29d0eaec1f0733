package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellojohn-facebook/internal/store/memory"
)

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), "memory", "")
	require.NoError(t, err)
	_, ok := s.(*memory.Store)
	assert.True(t, ok)
	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mongo", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo")
}
