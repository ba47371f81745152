package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/memohai/mediaclip/internal/collection"
	"github.com/memohai/mediaclip/internal/media"
)

// Message action names as shown in the platform's context menu.
const (
	ExtractLinksName  = "Extract Media Links"
	SendToChannelName = "Send to My Channel"
)

const (
	// embedLinkLimit is how many links the forwarded embed lists.
	embedLinkLimit = 10

	noMediaMessage = "❌ No images, emoji or stickers found in this message."
)

// Collector records emoji and stickers seen by the send action.
type Collector interface {
	Ingest(ctx context.Context, userID string, refs []media.Reference) (collection.IngestResult, error)
}

// ExtractLinks lists every media link of a message privately to the invoker.
type ExtractLinks struct{}

func (ExtractLinks) Definition() Definition {
	return Definition{Name: ExtractLinksName, Type: TypeMessage}
}

func (ExtractLinks) Handle(ctx context.Context, req *Request) (Response, error) {
	if req.Target == nil {
		return Response{}, errors.New("message action invoked without a target message")
	}
	refs := media.Extract(*req.Target)
	if len(refs) == 0 {
		return Response{Content: noMediaMessage, Ephemeral: true}, nil
	}
	lines := make([]string, 0, len(refs)+1)
	lines = append(lines, "**Media links found:**")
	for _, ref := range refs {
		lines = append(lines, describe(ref))
	}
	return Response{Content: strings.Join(lines, "\n"), Ephemeral: true}, nil
}

func describe(ref media.Reference) string {
	switch ref.Kind {
	case media.KindAttachment:
		return "📎 Attachment: " + ref.URL
	case media.KindEmbedImage:
		return "🖼️ Embedded image: " + ref.URL
	case media.KindEmbedThumbnail:
		return "🖼️ Thumbnail: " + ref.URL
	case media.KindEmoji:
		return fmt.Sprintf("😀 Emoji :%s:: %s", ref.Name, ref.URL)
	case media.KindSticker:
		return fmt.Sprintf("🏷️ Sticker %s: %s", ref.Name, ref.URL)
	}
	return ref.URL
}

// SendToChannel forwards a message's media links to the invoker's
// destination channel and adds its emoji and stickers to their collection.
type SendToChannel struct {
	routes    Routes
	collector Collector
}

func NewSendToChannel(routes Routes, collector Collector) *SendToChannel {
	return &SendToChannel{routes: routes, collector: collector}
}

func (c *SendToChannel) Definition() Definition {
	return Definition{Name: SendToChannelName, Type: TypeMessage}
}

func (c *SendToChannel) Handle(ctx context.Context, req *Request) (Response, error) {
	if req.Target == nil {
		return Response{}, errors.New("message action invoked without a target message")
	}
	dest, err := resolveDestination(ctx, c.routes, req)
	if err != nil {
		return Response{}, err
	}

	refs := media.Extract(*req.Target)
	if len(refs) == 0 {
		return Response{Content: noMediaMessage, Ephemeral: true}, nil
	}

	saved, err := c.collector.Ingest(ctx, req.User.ID, refs)
	if err != nil {
		return Response{}, fmt.Errorf("save collection: %w", err)
	}

	links := media.Links(refs)
	if err := req.Gateway.Send(ctx, dest.ID, Response{Embed: forwardEmbed(*req.Target, links)}); err != nil {
		return Response{}, &ChannelError{ChannelID: dest.ID, ChannelName: dest.Name, Err: err}
	}
	for _, chunk := range chunkLines(links, MaxContentLength) {
		if err := req.Gateway.Send(ctx, dest.ID, Response{Content: chunk}); err != nil {
			return Response{}, &ChannelError{ChannelID: dest.ID, ChannelName: dest.Name, Err: err}
		}
	}

	content := fmt.Sprintf("✅ Sent %d link(s) to **#%s**", len(links), displayName(dest))
	if saved.Added() {
		content += fmt.Sprintf("\n📥 Newly saved: %d emoji, %d sticker(s)", saved.Emojis, saved.Stickers)
	}
	return Response{Content: content, Ephemeral: true}, nil
}

// forwardEmbed lists up to embedLinkLimit whole links, as many as fit in one
// embed field.
func forwardEmbed(msg media.Message, links []string) *Embed {
	shown := links[:min(len(links), embedLinkLimit)]
	if n := fittingLines(shown, MaxFieldLength); n > 0 {
		shown = shown[:n]
	} else if len(shown) > 0 {
		shown = shown[:1]
	}
	embed := &Embed{
		Title:       "📎 Extracted media links",
		Description: "From a message by " + msg.AuthorMention(),
		URL:         msg.JumpURL,
		Color:       ColorGreen,
		Fields: []EmbedField{
			{Name: "Original message", Value: fmt.Sprintf("[Jump to message](%s)", msg.JumpURL)},
			{Name: "Media links", Value: strings.Join(shown, "\n")},
		},
	}
	if len(shown) < len(links) {
		embed.Footer = fmt.Sprintf("%d total, showing %d", len(links), len(shown))
	}
	return embed
}

// fittingLines returns how many leading lines fit in limit runes once joined
// with newlines.
func fittingLines(lines []string, limit int) int {
	size := 0
	for i, line := range lines {
		size += utf8.RuneCountInString(line)
		if i > 0 {
			size++
		}
		if size > limit {
			return i
		}
	}
	return len(lines)
}

// chunkLines joins lines into newline-separated blocks of at most limit runes.
// A line longer than limit becomes a block of its own.
func chunkLines(lines []string, limit int) []string {
	var chunks []string
	for len(lines) > 0 {
		n := max(fittingLines(lines, limit), 1)
		chunks = append(chunks, strings.Join(lines[:n], "\n"))
		lines = lines[n:]
	}
	return chunks
}
