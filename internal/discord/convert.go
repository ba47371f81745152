package discord

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/memohai/mediaclip/internal/command"
	"github.com/memohai/mediaclip/internal/media"
)

const (
	maxContentLength     = command.MaxContentLength
	maxDescriptionLength = 4096
	maxFieldLength       = command.MaxFieldLength
)

// toMessage converts a platform message into the extractor's view of it.
// guildID is taken from the interaction because resolved messages often
// omit it.
func toMessage(msg *discordgo.Message, guildID string) media.Message {
	if msg.GuildID != "" {
		guildID = msg.GuildID
	}
	out := media.Message{
		ID:        msg.ID,
		ChannelID: msg.ChannelID,
		GuildID:   guildID,
		Content:   msg.Content,
		JumpURL:   jumpURL(guildID, msg.ChannelID, msg.ID),
	}
	if msg.Author != nil {
		out.Author = media.Author{ID: msg.Author.ID, Username: msg.Author.Username}
	}
	for _, att := range msg.Attachments {
		if att == nil {
			continue
		}
		out.Attachments = append(out.Attachments, media.Attachment{URL: att.URL, Filename: att.Filename})
	}
	for _, embed := range msg.Embeds {
		if embed == nil {
			continue
		}
		var e media.Embed
		if embed.Image != nil {
			e.ImageURL = embed.Image.URL
		}
		if embed.Thumbnail != nil {
			e.ThumbnailURL = embed.Thumbnail.URL
		}
		out.Embeds = append(out.Embeds, e)
	}
	for _, item := range msg.StickerItems {
		if item == nil {
			continue
		}
		out.Stickers = append(out.Stickers, media.Sticker{
			ID:   item.ID,
			Name: item.Name,
			URL:  stickerURL(item.ID, item.FormatType),
		})
	}
	return out
}

func jumpURL(guildID, channelID, messageID string) string {
	if guildID == "" {
		guildID = "@me"
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

func stickerURL(id string, format discordgo.StickerFormat) string {
	ext := "png"
	switch format {
	case discordgo.StickerFormatTypeLottie:
		ext = "json"
	case discordgo.StickerFormatTypeGIF:
		ext = "gif"
	}
	return media.CDNBase + "/stickers/" + id + "." + ext
}

func toEmbed(e *command.Embed) *discordgo.MessageEmbed {
	if e == nil {
		return nil
	}
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: truncate(e.Description, maxDescriptionLength),
		URL:         e.URL,
		Color:       e.Color,
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  truncate(f.Value, maxFieldLength),
			Inline: f.Inline,
		})
	}
	if e.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	return out
}

func toMessageSend(resp command.Response) *discordgo.MessageSend {
	send := &discordgo.MessageSend{Content: truncate(resp.Content, maxContentLength)}
	if embed := toEmbed(resp.Embed); embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{embed}
	}
	return send
}

func toResponseData(resp command.Response) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{Content: truncate(resp.Content, maxContentLength)}
	if embed := toEmbed(resp.Embed); embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{embed}
	}
	if resp.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return data
}

func toWebhookParams(resp command.Response) *discordgo.WebhookParams {
	params := &discordgo.WebhookParams{Content: truncate(resp.Content, maxContentLength)}
	if embed := toEmbed(resp.Embed); embed != nil {
		params.Embeds = []*discordgo.MessageEmbed{embed}
	}
	if resp.Ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	return params
}

// truncate shortens text to at most limit runes, marking the cut with "...".
// Multi-line text is cut after its last whole line so links stay intact.
func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:limit-3])
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		return cut[:i] + "\n..."
	}
	return cut + "..."
}
