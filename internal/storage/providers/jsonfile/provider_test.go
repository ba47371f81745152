package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/mediaclip/internal/storage"
)

func TestProvider_HostPath(t *testing.T) {
	t.Parallel()
	p := &Provider{dataRoot: "/srv/data"}

	tests := []struct {
		namespace string
		key       string
		want      string
		wantErr   bool
	}{
		{namespace: "", key: "user_config", want: "/srv/data/user_config.json"},
		{namespace: "collections", key: "1234", want: "/srv/data/collections/1234.json"},
		{namespace: "a/b", key: "k", want: "/srv/data/a/b/k.json"},
		{namespace: "collections", key: "../escape", wantErr: true},
		{namespace: "collections", key: "..", wantErr: true},
		{namespace: "../up", key: "k", wantErr: true},
		{namespace: "collections", key: "/abs", wantErr: true},
		{namespace: "collections", key: "", wantErr: true},
		{namespace: "collections", key: `a\b`, wantErr: true},
	}
	for _, tt := range tests {
		got, err := p.hostPath(tt.namespace, tt.key)
		if tt.wantErr {
			assert.Error(t, err, "hostPath(%q, %q)", tt.namespace, tt.key)
			continue
		}
		require.NoError(t, err, "hostPath(%q, %q)", tt.namespace, tt.key)
		assert.Equal(t, tt.want, got)
	}
}

func TestProvider_ReadMissing(t *testing.T) {
	t.Parallel()
	p, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = p.Read(context.Background(), "collections", "42")
	assert.ErrorIs(t, err, storage.ErrNotExist)
}

func TestProvider_WriteRead(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	p, err := New(tmpDir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, p.Write(ctx, "collections", "42", []byte(`{"a":1}`)))
	require.NoError(t, p.Write(ctx, "collections", "42", []byte(`{"a":2}`)))

	got, err := p.Read(ctx, "collections", "42")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got))

	hostFile := filepath.Join(tmpDir, "collections", "42.json")
	_, err = os.Stat(hostFile)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(tmpDir, "collections"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestProvider_JSONStoreRoundTrip(t *testing.T) {
	t.Parallel()
	p, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	type userChannel struct {
		ChannelID int64 `json:"channel_id"`
	}
	store := storage.NewJSONStore(p, "", func() map[string]userChannel { return map[string]userChannel{} })
	want := map[string]userChannel{"1": {ChannelID: 1234567890123456789}, "2": {ChannelID: 5}}
	require.NoError(t, store.Save(ctx, "user_config", want))

	reopened, err := New(p.Root())
	require.NoError(t, err)
	got, err := storage.NewJSONStore(reopened, "", func() map[string]userChannel { return map[string]userChannel{} }).Load(ctx, "user_config")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestProvider_CanceledContext(t *testing.T) {
	t.Parallel()
	p, err := New(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Write(ctx, "", "k", []byte("{}")), context.Canceled)
	_, err = p.Read(ctx, "", "k")
	assert.ErrorIs(t, err, context.Canceled)
}
