package command

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/mediaclip/internal/collection"
	"github.com/memohai/mediaclip/internal/storage"
)

type stubHandler struct {
	name   string
	resp   Response
	err    error
	panics bool
}

func (h stubHandler) Definition() Definition { return Definition{Name: h.name} }

func (h stubHandler) Handle(context.Context, *Request) (Response, error) {
	if h.panics {
		panic("boom")
	}
	return h.resp, h.err
}

func TestRegistry_RegisterRejectsDuplicatesAndBlankNames(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	require.NoError(t, r.Register(stubHandler{name: "ping"}))
	assert.Error(t, r.Register(stubHandler{name: "ping"}))
	assert.Error(t, r.Register(stubHandler{name: "  "}))
	assert.Error(t, r.Register(nil))
	assert.Panics(t, func() { r.MustRegister(stubHandler{name: "ping"}) })
}

func TestRegistry_DefinitionsKeepRegistrationOrder(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	for _, name := range []string{"b", "a", "c"} {
		r.MustRegister(stubHandler{name: name})
	}
	var names []string
	for _, def := range r.Definitions() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{"b", "a", "c"}, names)
}

func TestRegistry_Dispatch(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	r.MustRegister(stubHandler{name: "ok", resp: Response{Content: "done"}})
	r.MustRegister(stubHandler{name: "unset", err: ErrNotConfigured})
	r.MustRegister(stubHandler{name: "broken", err: errors.New("disk on fire")})
	r.MustRegister(stubHandler{name: "panics", panics: true})

	ctx := context.Background()
	assert.Equal(t, Response{Content: "done"}, r.Dispatch(ctx, &Request{Command: "ok"}))

	resp := r.Dispatch(ctx, &Request{Command: "unset"})
	assert.True(t, resp.Ephemeral)
	assert.Contains(t, resp.Content, "/set_channel")

	for _, name := range []string{"broken", "panics", "missing"} {
		resp := r.Dispatch(ctx, &Request{Command: name})
		assert.True(t, resp.Ephemeral, name)
		assert.Contains(t, resp.Content, "Something went wrong", name)
		assert.NotContains(t, resp.Content, "disk on fire", name)
	}
}

func TestRenderError(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"not configured", ErrNotConfigured, "/set_channel"},
		{"forbidden with name", &ChannelError{ChannelID: "9", ChannelName: "media", Err: ErrSendForbidden}, "**#media**"},
		{"forbidden without name", &ChannelError{ChannelID: "9", Err: ErrSendForbidden}, "channel 9"},
		{"unreachable", &ChannelError{ChannelID: "77", Err: fmt.Errorf("lookup: %w", ErrChannelUnreachable)}, "Channel ID 77"},
		{"not found", collection.ErrNotFound, "Nothing found"},
		{"corrupt", fmt.Errorf("load: %w", storage.ErrCorrupt), "could not be read"},
		{"other", errors.New("x"), "Something went wrong"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			resp := RenderError(tc.err)
			assert.True(t, resp.Ephemeral)
			assert.Contains(t, resp.Content, tc.want)
		})
	}
}

func TestRegistry_CompleteSwallowsErrors(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	r.MustRegister(stubHandler{name: "plain"})
	r.MustRegister(NewSearchEmoji(failingCollections{}))

	ctx := context.Background()
	assert.Nil(t, r.Complete(ctx, &Request{Command: "plain"}, "x"))
	assert.Nil(t, r.Complete(ctx, &Request{Command: "missing"}, "x"))
	assert.Nil(t, r.Complete(ctx, &Request{Command: "search_emoji", User: User{ID: "u1"}}, "x"))
}

type failingCollections struct{}

func (failingCollections) Get(context.Context, string) (collection.Collection, error) {
	return collection.New(), storage.ErrCorrupt
}

func (failingCollections) Search(context.Context, string, collection.Kind, string) (collection.Entry, error) {
	return collection.Entry{}, storage.ErrCorrupt
}

func (failingCollections) Autocomplete(context.Context, string, collection.Kind, string) ([]collection.Entry, error) {
	return nil, storage.ErrCorrupt
}
