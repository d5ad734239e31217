package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eduregistry/internal/store"
	"eduregistry/pkg/config"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(config.DatabaseConfig{Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ptr[T any](v T) *T {
	return &v
}
