// Package media extracts media references from decoded chat messages.
package media

import "strings"

// Kind classifies a media reference.
type Kind string

const (
	KindAttachment     Kind = "attachment"
	KindEmbedImage     Kind = "embed_image"
	KindEmbedThumbnail Kind = "embed_thumbnail"
	KindEmoji          Kind = "emoji"
	KindSticker        Kind = "sticker"
)

// Reference is a typed pointer to externally hosted content found in a message.
// ID, Name and Animated are only meaningful for emoji and sticker references.
// URL is always directly fetchable.
type Reference struct {
	Kind     Kind   `json:"kind"`
	URL      string `json:"url"`
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Animated bool   `json:"animated,omitempty"`
}

// Author identifies who wrote a message.
type Author struct {
	ID       string
	Username string
}

// Attachment is a file uploaded with a message.
type Attachment struct {
	URL      string
	Filename string
}

// Embed is a rich embed attached to a message. Empty URLs mean the embed
// carries no image or thumbnail.
type Embed struct {
	ImageURL     string
	ThumbnailURL string
}

// Sticker is a platform sticker attached to a message.
type Sticker struct {
	ID   string
	Name string
	URL  string
}

// Message is the platform-neutral view of a chat message that the extractor
// and the command surface work with.
type Message struct {
	ID          string
	ChannelID   string
	GuildID     string
	Author      Author
	Content     string
	Attachments []Attachment
	Embeds      []Embed
	Stickers    []Sticker
	JumpURL     string
}

// AuthorMention renders a mention of the message author.
func (m Message) AuthorMention() string {
	id := strings.TrimSpace(m.Author.ID)
	if id == "" {
		return m.Author.Username
	}
	return "<@" + id + ">"
}
