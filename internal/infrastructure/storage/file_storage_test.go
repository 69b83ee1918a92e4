package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStorage(t *testing.T) *LocalFileStorage {
	t.Helper()
	s, err := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestLocalFileStorage_SaveAndRead(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	uniqueName, err := s.Save(ctx, 7, "laudo médico.pdf", []byte("conteúdo"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(uniqueName, "7_"))
	assert.True(t, strings.HasSuffix(uniqueName, "_laudo_m_dico.pdf"))
	assert.True(t, s.Exists(ctx, uniqueName))

	content, err := s.Read(ctx, uniqueName)
	require.NoError(t, err)
	assert.Equal(t, []byte("conteúdo"), content)
}

func TestLocalFileStorage_UniqueNamesNeverCollide(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first, err := s.Save(ctx, 1, "foto.jpg", []byte("a"))
	require.NoError(t, err)
	second, err := s.Save(ctx, 1, "foto.jpg", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocalFileStorage_RejectsPathEscape(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.Read(ctx, "../../etc/passwd")
	assert.Error(t, err)
	assert.False(t, s.Exists(ctx, "../secret"))
}

func TestLocalFileStorage_Delete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	uniqueName, err := s.Save(ctx, 3, "nota.txt", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, uniqueName))
	assert.False(t, s.Exists(ctx, uniqueName))

	// Deleting again is a no-op.
	assert.NoError(t, s.Delete(ctx, uniqueName))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"relatório final.pdf", "relat_rio_final.pdf"},
		{"simple.txt", "simple.txt"},
		{"a/b/c.txt", "c.txt"},
		{"", "arquivo"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
