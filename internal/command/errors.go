package command

import (
	"errors"
	"fmt"

	"github.com/memohai/mediaclip/internal/collection"
	"github.com/memohai/mediaclip/internal/storage"
)

var (
	// ErrNotConfigured indicates the user has no destination channel.
	ErrNotConfigured = errors.New("destination channel not configured")
	// ErrChannelUnreachable indicates a stored channel id no longer resolves.
	ErrChannelUnreachable = errors.New("channel unreachable")
	// ErrSendForbidden indicates the destination rejected an outbound message.
	ErrSendForbidden = errors.New("send forbidden")
)

// ChannelError ties a channel failure to the channel it happened on.
type ChannelError struct {
	ChannelID   string
	ChannelName string
	Err         error
}

func (e *ChannelError) Error() string {
	if e.ChannelName != "" {
		return fmt.Sprintf("channel #%s (%s): %v", e.ChannelName, e.ChannelID, e.Err)
	}
	return fmt.Sprintf("channel %s: %v", e.ChannelID, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// expected reports whether err is a user-correctable condition rather than a fault.
func expected(err error) bool {
	return errors.Is(err, ErrNotConfigured) ||
		errors.Is(err, ErrChannelUnreachable) ||
		errors.Is(err, ErrSendForbidden) ||
		errors.Is(err, collection.ErrNotFound)
}

// RenderError turns a handler error into a private, human-readable reply.
func RenderError(err error) Response {
	var chErr *ChannelError
	errors.As(err, &chErr)

	var content string
	switch {
	case errors.Is(err, ErrNotConfigured):
		content = "❌ No destination channel set yet. Use `/set_channel` to choose one first!"
	case errors.Is(err, ErrSendForbidden):
		name := "that channel"
		if chErr != nil && chErr.ChannelName != "" {
			name = "**#" + chErr.ChannelName + "**"
		} else if chErr != nil {
			name = "channel " + chErr.ChannelID
		}
		content = fmt.Sprintf("❌ I don't have permission to send messages in %s!", name)
	case errors.Is(err, ErrChannelUnreachable):
		id := "unknown"
		if chErr != nil {
			id = chErr.ChannelID
		}
		content = fmt.Sprintf("⚠️ Channel ID %s is configured but cannot be accessed. Check the bot's permissions or run `/set_channel` again.", id)
	case errors.Is(err, collection.ErrNotFound):
		content = "❌ Nothing found. Check the name or collect it first."
	case errors.Is(err, storage.ErrCorrupt):
		content = "⚠️ Your saved data could not be read. Please contact the bot operator."
	default:
		content = "⚠️ Something went wrong while handling this command. Please try again later."
	}
	return Response{Content: content, Ephemeral: true}
}
