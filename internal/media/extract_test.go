package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_EmptyMessage(t *testing.T) {
	t.Parallel()

	refs := Extract(Message{Content: "just text"})
	assert.Empty(t, refs)
}

func TestExtract_AnimatedEmoji(t *testing.T) {
	t.Parallel()

	refs := Extract(Message{Content: "hi <a:wave:123456> bye"})
	require.Len(t, refs, 1)
	assert.Equal(t, Reference{
		Kind:     KindEmoji,
		URL:      "https://cdn.discordapp.com/emojis/123456.gif",
		ID:       "123456",
		Name:     "wave",
		Animated: true,
	}, refs[0])
}

func TestExtract_StaticEmojiUsesPNG(t *testing.T) {
	t.Parallel()

	refs := Extract(Message{Content: "<:blob:42>"})
	require.Len(t, refs, 1)
	assert.False(t, refs[0].Animated)
	assert.True(t, strings.HasSuffix(refs[0].URL, "/emojis/42.png"))
}

func TestExtract_SourceOrder(t *testing.T) {
	t.Parallel()

	msg := Message{
		Content: "<:b:2> text <a:a:1>",
		Attachments: []Attachment{
			{URL: "https://files/1.png"},
			{URL: "https://files/2.png"},
		},
		Embeds: []Embed{
			{ImageURL: "https://img/1", ThumbnailURL: "https://thumb/1"},
			{ThumbnailURL: "https://thumb/2"},
			{},
		},
		Stickers: []Sticker{{ID: "900", Name: "cat", URL: "https://cdn/stickers/900.png"}},
	}

	refs := Extract(msg)
	kinds := make([]Kind, 0, len(refs))
	for _, r := range refs {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []Kind{
		KindAttachment, KindAttachment,
		KindEmbedImage, KindEmbedThumbnail, KindEmbedThumbnail,
		KindEmoji, KindEmoji,
		KindSticker,
	}, kinds)
	assert.Equal(t, []string{
		"https://files/1.png",
		"https://files/2.png",
		"https://img/1",
		"https://thumb/1",
		"https://thumb/2",
		"https://cdn.discordapp.com/emojis/2.png",
		"https://cdn.discordapp.com/emojis/1.gif",
		"https://cdn/stickers/900.png",
	}, Links(refs))
	assert.Equal(t, "900", refs[7].ID)
	assert.Equal(t, "cat", refs[7].Name)
}

func TestExtract_AttachmentsLeadInOrder(t *testing.T) {
	t.Parallel()

	for n := 0; n < 6; n++ {
		msg := Message{
			Content: "<:x:1>",
			Embeds:  []Embed{{ImageURL: "https://img"}},
		}
		for i := 0; i < n; i++ {
			msg.Attachments = append(msg.Attachments, Attachment{URL: "https://files/" + string(rune('a'+i))})
		}
		refs := Extract(msg)
		require.Len(t, refs, n+2)
		for i := 0; i < n; i++ {
			assert.Equal(t, KindAttachment, refs[i].Kind)
			assert.Equal(t, msg.Attachments[i].URL, refs[i].URL)
		}
		assert.Equal(t, KindEmbedImage, refs[n].Kind)
	}
}

func TestExtract_RepeatedEmojiNotDeduplicated(t *testing.T) {
	t.Parallel()

	refs := Extract(Message{Content: "<:ok:7><:ok:7>"})
	require.Len(t, refs, 2)
	assert.Equal(t, refs[0], refs[1])
}

func TestExtractEmojis_UnicodeNames(t *testing.T) {
	t.Parallel()

	refs := Extract(Message{Content: "x <:café:123> y <a:名字_2:456>"})
	require.Len(t, refs, 2)
	assert.Equal(t, "café", refs[0].Name)
	assert.Equal(t, CDNBase+"/emojis/123.png", refs[0].URL)
	assert.Equal(t, "名字_2", refs[1].Name)
	assert.True(t, refs[1].Animated)
	assert.Equal(t, CDNBase+"/emojis/456.gif", refs[1].URL)
}

func TestExtractEmojis_RejectsMalformedMarkup(t *testing.T) {
	t.Parallel()

	tests := []string{
		"<:name:>",
		"<:name:abc>",
		"<b:name:1>",
		":name:1",
		"<:na-me:1>",
		"<@123456>",
	}
	for _, text := range tests {
		assert.Empty(t, ExtractEmojis(text), "text %q", text)
	}
}

func TestFilterKind(t *testing.T) {
	t.Parallel()

	refs := []Reference{
		{Kind: KindAttachment, URL: "a"},
		{Kind: KindEmoji, URL: "e"},
		{Kind: KindSticker, URL: "s"},
		{Kind: KindEmoji, URL: "e2"},
	}
	got := FilterKind(refs, KindEmoji, KindSticker)
	assert.Equal(t, []string{"e", "s", "e2"}, Links(got))
	assert.Empty(t, FilterKind(refs, KindEmbedImage))
}

func TestMessage_AuthorMention(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<@99>", Message{Author: Author{ID: "99", Username: "neo"}}.AuthorMention())
	assert.Equal(t, "neo", Message{Author: Author{Username: "neo"}}.AuthorMention())
}
