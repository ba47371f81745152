package media

import (
	"regexp"
	"strings"
)

// CDNBase is the root of the platform's content delivery network.
const CDNBase = "https://cdn.discordapp.com"

// emojiPattern matches inline custom emoji markup: <:name:id> or <a:name:id>.
// Names are Unicode word characters.
var emojiPattern = regexp.MustCompile(`<(a?):([\p{L}\p{N}_]+):(\p{Nd}+)>`)

// EmojiURL returns the CDN address of a custom emoji.
func EmojiURL(id string, animated bool) string {
	ext := "png"
	if animated {
		ext = "gif"
	}
	return CDNBase + "/emojis/" + id + "." + ext
}

// Extract returns every media reference in msg, in source order:
// attachments, embed images and thumbnails, inline emoji, stickers.
// Nothing is deduplicated.
func Extract(msg Message) []Reference {
	refs := make([]Reference, 0, len(msg.Attachments)+2*len(msg.Embeds)+len(msg.Stickers))

	for _, att := range msg.Attachments {
		refs = append(refs, Reference{Kind: KindAttachment, URL: att.URL})
	}

	for _, embed := range msg.Embeds {
		if embed.ImageURL != "" {
			refs = append(refs, Reference{Kind: KindEmbedImage, URL: embed.ImageURL})
		}
		if embed.ThumbnailURL != "" {
			refs = append(refs, Reference{Kind: KindEmbedThumbnail, URL: embed.ThumbnailURL})
		}
	}

	refs = append(refs, ExtractEmojis(msg.Content)...)

	for _, sticker := range msg.Stickers {
		refs = append(refs, Reference{
			Kind: KindSticker,
			URL:  sticker.URL,
			ID:   sticker.ID,
			Name: sticker.Name,
		})
	}
	return refs
}

// ExtractEmojis scans text for inline custom emoji markup.
func ExtractEmojis(text string) []Reference {
	if !strings.Contains(text, "<") {
		return nil
	}
	matches := emojiPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]Reference, 0, len(matches))
	for _, m := range matches {
		animated := m[1] == "a"
		refs = append(refs, Reference{
			Kind:     KindEmoji,
			URL:      EmojiURL(m[3], animated),
			ID:       m[3],
			Name:     m[2],
			Animated: animated,
		})
	}
	return refs
}

// Links returns the URLs of refs in order.
func Links(refs []Reference) []string {
	links := make([]string, 0, len(refs))
	for _, ref := range refs {
		links = append(links, ref.URL)
	}
	return links
}

// FilterKind returns the references whose kind is one of kinds, keeping order.
func FilterKind(refs []Reference, kinds ...Kind) []Reference {
	var out []Reference
	for _, ref := range refs {
		for _, k := range kinds {
			if ref.Kind == k {
				out = append(out, ref)
				break
			}
		}
	}
	return out
}
