package command

import (
	"context"
	"fmt"

	"github.com/samber/mo"
)

// Routes stores each user's destination channel.
type Routes interface {
	Get(ctx context.Context, userID string) (mo.Option[string], error)
	Set(ctx context.Context, userID, channelID string) error
}

// SetChannel stores the destination used by the send action.
type SetChannel struct {
	routes Routes
}

func NewSetChannel(routes Routes) *SetChannel {
	return &SetChannel{routes: routes}
}

func (c *SetChannel) Definition() Definition {
	return Definition{
		Name:        "set_channel",
		Description: "Set the channel media links are sent to",
		Type:        TypeSlash,
		Options: []Option{{
			Name:        "channel",
			Description: "Channel to send links to",
			Type:        OptionChannel,
			Required:    true,
		}},
	}
}

func (c *SetChannel) Handle(ctx context.Context, req *Request) (Response, error) {
	ch := Channel{ID: req.Option("channel")}
	if req.Channel != nil {
		ch = *req.Channel
	}
	if ch.ID == "" {
		return Response{}, fmt.Errorf("channel option is missing")
	}
	if err := c.routes.Set(ctx, req.User.ID, ch.ID); err != nil {
		return Response{}, err
	}
	return Response{
		Content: fmt.Sprintf("✅ Destination set to **#%s** (ID: %s)\nYou can now use the \"%s\" message action!",
			displayName(ch), ch.ID, SendToChannelName),
		Ephemeral: true,
	}, nil
}

// MyChannel shows the configured destination.
type MyChannel struct {
	routes Routes
}

func NewMyChannel(routes Routes) *MyChannel {
	return &MyChannel{routes: routes}
}

func (c *MyChannel) Definition() Definition {
	return Definition{Name: "my_channel", Description: "Show the current destination channel", Type: TypeSlash}
}

func (c *MyChannel) Handle(ctx context.Context, req *Request) (Response, error) {
	ch, err := resolveDestination(ctx, c.routes, req)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Content:   fmt.Sprintf("📌 Current destination: **#%s** (ID: %s)", displayName(ch), ch.ID),
		Ephemeral: true,
	}, nil
}

// resolveDestination loads the user's destination and checks it still resolves.
func resolveDestination(ctx context.Context, routes Routes, req *Request) (Channel, error) {
	dest, err := routes.Get(ctx, req.User.ID)
	if err != nil {
		return Channel{}, err
	}
	channelID, ok := dest.Get()
	if !ok {
		return Channel{}, ErrNotConfigured
	}
	if req.Gateway == nil {
		return Channel{}, &ChannelError{ChannelID: channelID, Err: ErrChannelUnreachable}
	}
	ch, err := req.Gateway.ResolveChannel(ctx, channelID)
	if err != nil {
		return Channel{}, &ChannelError{ChannelID: channelID, Err: err}
	}
	if ch.ID == "" {
		ch.ID = channelID
	}
	return ch, nil
}

func displayName(ch Channel) string {
	if ch.Name != "" {
		return ch.Name
	}
	return ch.ID
}
