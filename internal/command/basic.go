package command

import (
	"context"
	"fmt"
	"time"
)

// Ping reports gateway latency.
type Ping struct{}

func (Ping) Definition() Definition {
	return Definition{Name: "ping", Description: "Check that the bot responds", Type: TypeSlash}
}

func (Ping) Handle(ctx context.Context, req *Request) (Response, error) {
	return Response{Content: fmt.Sprintf("🏓 Pong! Latency: %dms", latencyMillis(req.Gateway))}, nil
}

// Info shows basic information about the bot.
type Info struct{}

func (Info) Definition() Definition {
	return Definition{Name: "info", Description: "Show bot information", Type: TypeSlash}
}

func (Info) Handle(ctx context.Context, req *Request) (Response, error) {
	version := "unknown"
	if req.Gateway != nil {
		version = req.Gateway.Version()
	}
	return Response{Embed: &Embed{
		Title:       "📌 Bot info",
		Description: "Extracts images, emoji and stickers from messages and keeps a collection of them.",
		Color:       ColorBlue,
		Fields: []EmbedField{
			{Name: "Library", Value: version, Inline: true},
			{Name: "Latency", Value: fmt.Sprintf("%dms", latencyMillis(req.Gateway)), Inline: true},
		},
	}}, nil
}

func latencyMillis(g Gateway) int64 {
	if g == nil {
		return 0
	}
	return g.Latency().Round(time.Millisecond).Milliseconds()
}
