package collection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/mediaclip/internal/storage"
)

func boolPtr(v bool) *bool { return &v }

func TestRecords_AddIsFirstWriteWins(t *testing.T) {
	t.Parallel()

	var r Records
	assert.True(t, r.Add("1", Record{Name: "first", URL: "u1"}))
	assert.False(t, r.Add("1", Record{Name: "second", URL: "u2"}))

	rec, ok := r.Get("1")
	require.True(t, ok)
	assert.Equal(t, "first", rec.Name)
	assert.Equal(t, 1, r.Len())
}

func TestRecords_JSONKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	var r Records
	r.Add("30", Record{Name: "c", URL: "u3"})
	r.Add("10", Record{Name: "a", URL: "u1", Animated: boolPtr(true)})
	r.Add("20", Record{Name: "b", URL: "u2"})

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"30":{"name":"c","url":"u3"},"10":{"name":"a","url":"u1","animated":true},"20":{"name":"b","url":"u2"}}`, string(data))

	var decoded Records
	require.NoError(t, json.Unmarshal(data, &decoded))
	ids := make([]string, 0, decoded.Len())
	for _, e := range decoded.Entries() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"30", "10", "20"}, ids)
	assert.Equal(t, r.Entries(), decoded.Entries())
}

func TestRecords_UnmarshalRejectsBadShapes(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{`[]`, `"x"`, `{"1":"name"}`, `{"1":{"name":5}}`} {
		var r Records
		assert.Error(t, json.Unmarshal([]byte(raw), &r), "input %s", raw)
		assert.Zero(t, r.Len())
	}
}

func TestRecords_UnmarshalRepeatedKeyTakesLastValue(t *testing.T) {
	t.Parallel()

	raw := `{"1":{"name":"old","url":"u1"},"2":{"name":"b","url":"u2"},"1":{"name":"new","url":"u1b"}}`
	var r Records
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	require.Equal(t, 2, r.Len())
	entries := r.Entries()
	assert.Equal(t, "1", entries[0].ID)
	assert.Equal(t, "new", entries[0].Name)
	assert.Equal(t, "u1b", entries[0].URL)
	assert.Equal(t, "2", entries[1].ID)
}

func TestRecords_Recent(t *testing.T) {
	t.Parallel()

	var r Records
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		r.Add(id, Record{Name: "n" + id})
	}
	recent := r.Recent(5)
	require.Len(t, recent, 5)
	assert.Equal(t, "3", recent[0].ID)
	assert.Equal(t, "7", recent[4].ID)
	assert.Len(t, r.Recent(50), 7)
	assert.Empty(t, r.Recent(0))
}

func TestCollection_DecodesOriginalLayout(t *testing.T) {
	t.Parallel()

	raw := `{
  "emojis": {
    "222": {"name": "wave", "url": "https://cdn.discordapp.com/emojis/222.gif", "animated": true},
    "111": {"name": "blob", "url": "https://cdn.discordapp.com/emojis/111.png", "animated": false}
  },
  "stickers": {
    "900": {"name": "Cat", "url": "https://cdn.discordapp.com/stickers/900.png"}
  }
}`
	var c Collection
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	emojis := c.Emojis.Entries()
	require.Len(t, emojis, 2)
	assert.Equal(t, "222", emojis[0].ID)
	require.NotNil(t, emojis[1].Animated)
	assert.False(t, *emojis[1].Animated)
	sticker, ok := c.Stickers.Get("900")
	require.True(t, ok)
	assert.Nil(t, sticker.Animated)
}

func TestCollection_MissingMappingsDefaultEmpty(t *testing.T) {
	t.Parallel()

	var c Collection
	require.NoError(t, json.Unmarshal([]byte(`{"emojis": null}`), &c))
	assert.Zero(t, c.Emojis.Len())
	assert.Zero(t, c.Stickers.Len())

	data, err := storage.Encode(New())
	require.NoError(t, err)
	assert.JSONEq(t, `{"emojis":{},"stickers":{}}`, string(data))
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, err := ParseKind("Emojis")
	require.NoError(t, err)
	assert.Equal(t, KindEmoji, k)
	k, err = ParseKind("sticker")
	require.NoError(t, err)
	assert.Equal(t, KindSticker, k)
	_, err = ParseKind("gif")
	assert.Error(t, err)
}
