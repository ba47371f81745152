package route

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/mediaclip/internal/storage"
)

func TestService_GetUnconfigured(t *testing.T) {
	t.Parallel()
	svc := NewService(nil, storage.NewMemoryBackend())

	got, err := svc.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, got.IsAbsent())
}

func TestService_SetLastWins(t *testing.T) {
	t.Parallel()
	svc := NewService(nil, storage.NewMemoryBackend())
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "42", "1111"))
	require.NoError(t, svc.Set(ctx, "42", "1234567890123456789"))
	require.NoError(t, svc.Set(ctx, "7", "2222"))

	got, err := svc.Get(ctx, "42")
	require.NoError(t, err)
	id, ok := got.Get()
	require.True(t, ok)
	assert.Equal(t, "1234567890123456789", id)

	got, err = svc.Get(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "2222", got.OrEmpty())
}

func TestService_PersistedLayout(t *testing.T) {
	t.Parallel()
	backend := storage.NewMemoryBackend()
	svc := NewService(nil, backend)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "42", "1234567890123456789"))

	raw, err := backend.Read(ctx, Namespace, DocumentKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"42": {"channel_id": 1234567890123456789}}`, string(raw))
}

func TestService_ReadsExistingDocument(t *testing.T) {
	t.Parallel()
	backend := storage.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, backend.Write(ctx, Namespace, DocumentKey, []byte(`{"42": {"channel_id": 987654321098765432}}`)))

	got, err := NewService(nil, backend).Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "987654321098765432", got.OrEmpty())
}

func TestService_CorruptDocument(t *testing.T) {
	t.Parallel()
	backend := storage.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, backend.Write(ctx, Namespace, DocumentKey, []byte(`{"42": `)))
	svc := NewService(nil, backend)

	_, err := svc.Get(ctx, "42")
	assert.ErrorIs(t, err, storage.ErrCorrupt)
	assert.ErrorIs(t, svc.Set(ctx, "42", "1"), storage.ErrCorrupt)
}

func TestService_SetValidatesInput(t *testing.T) {
	t.Parallel()
	svc := NewService(nil, storage.NewMemoryBackend())
	ctx := context.Background()

	assert.Error(t, svc.Set(ctx, "", "1"))
	assert.Error(t, svc.Set(ctx, "42", ""))
	assert.Error(t, svc.Set(ctx, "42", "general"))
	assert.Error(t, svc.Set(ctx, "42", "-5"))
	assert.Error(t, svc.Set(ctx, "42", "0"))
}
