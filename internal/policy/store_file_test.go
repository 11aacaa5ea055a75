package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idverify/pkg/platform/sentinel"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file reports not found", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "settings.json"))
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.json")
		store := NewFileStore(path)

		want := Default()
		want.OCRConfidence.MinimumConfidence = 0.92
		require.NoError(t, store.Save(ctx, want))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, want.OCRConfidence, got.OCRConfidence)
		assert.Equal(t, want.FaceMatchThresholds, got.FaceMatchThresholds)
	})

	t.Run("save replaces previous document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.json")
		store := NewFileStore(path)

		first := Default()
		require.NoError(t, store.Save(ctx, first))

		second := Default()
		second.AgeRestrictions.MinimumAge = 21
		require.NoError(t, store.Save(ctx, second))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 21, got.AgeRestrictions.MinimumAge)
	})

	t.Run("corrupt file is an error, not defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		_, err := NewFileStore(path).Load(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, sentinel.ErrNotFound)
	})
}
