package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/memohai/mediaclip/internal/command"
)

// restSession is the part of *discordgo.Session the gateway and the
// interaction handler use.
type restSession interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	HeartbeatLatency() time.Duration
}

// gateway implements command.Gateway on a discordgo session.
type gateway struct {
	session restSession
	state   *discordgo.State
}

func (g *gateway) ResolveChannel(ctx context.Context, channelID string) (command.Channel, error) {
	if g.state != nil {
		if ch, err := g.state.Channel(channelID); err == nil && ch != nil {
			return command.Channel{ID: ch.ID, Name: ch.Name}, nil
		}
	}
	ch, err := g.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return command.Channel{}, fmt.Errorf("%w: %w", command.ErrChannelUnreachable, err)
	}
	if ch == nil {
		return command.Channel{}, command.ErrChannelUnreachable
	}
	return command.Channel{ID: ch.ID, Name: ch.Name}, nil
}

func (g *gateway) Send(ctx context.Context, channelID string, resp command.Response) error {
	_, err := g.session.ChannelMessageSendComplex(channelID, toMessageSend(resp), discordgo.WithContext(ctx))
	if err == nil {
		return nil
	}
	if isForbidden(err) {
		return fmt.Errorf("%w: %w", command.ErrSendForbidden, err)
	}
	if isUnknownChannel(err) {
		return fmt.Errorf("%w: %w", command.ErrChannelUnreachable, err)
	}
	return err
}

func (g *gateway) Latency() time.Duration {
	return g.session.HeartbeatLatency()
}

func (g *gateway) Version() string {
	return "discordgo " + discordgo.VERSION
}

func isForbidden(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
		return true
	}
	return restErr.Message != nil &&
		(restErr.Message.Code == discordgo.ErrCodeMissingAccess || restErr.Message.Code == discordgo.ErrCodeMissingPermissions)
}

func isUnknownChannel(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownChannel {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
