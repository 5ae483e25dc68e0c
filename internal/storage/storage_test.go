package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"sgo/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocal(t *testing.T) {
	ctx := context.Background()
	store := NewLocal(t.TempDir())

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "nota.pdf", strings.NewReader("%PDF-1.4"), "application/pdf", 8))

		rc, contentType, err := store.Get(ctx, "nota.pdf")
		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(body))
		assert.Equal(t, "application/pdf", contentType)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := store.Get(ctx, "nada.png")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "a.png", strings.NewReader("x"), "image/png", 1))
		require.NoError(t, store.Delete(ctx, "a.png"))
		require.NoError(t, store.Delete(ctx, "a.png"))
		_, _, err := store.Get(ctx, "a.png")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"a.JPG":  "image/jpeg",
		"b.webp": "image/webp",
		"c.docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"d.bin":  "application/octet-stream",
	}
	for name, want := range cases {
		assert.Equal(t, want, ContentTypeFor(name), name)
	}
}

func TestNewFallsBackToLocal(t *testing.T) {
	cfg := &config.Config{UploadDir: t.TempDir()}
	p := New(cfg, zap.NewNop())
	assert.Equal(t, "local", p.Name())
}
