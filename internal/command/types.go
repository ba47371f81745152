// Package command holds the platform-neutral command surface: command
// definitions, an explicit handler registry, and the handlers that tie the
// extractor, the collection and the destination routing together.
package command

import (
	"context"
	"strings"
	"time"

	"github.com/memohai/mediaclip/internal/media"
)

// Type distinguishes typed slash commands from actions on an existing message.
type Type int

const (
	TypeSlash Type = iota
	TypeMessage
)

// OptionType is the value type of a command option.
type OptionType int

const (
	OptionString OptionType = iota
	OptionChannel
)

// Option describes one argument of a slash command.
type Option struct {
	Name         string
	Description  string
	Type         OptionType
	Required     bool
	Autocomplete bool
}

// Definition describes a command to the platform.
type Definition struct {
	Name        string
	Description string
	Type        Type
	Options     []Option
}

// User identifies who invoked a command.
type User struct {
	ID       string
	Username string
}

// Channel is a resolved destination channel.
type Channel struct {
	ID   string
	Name string
}

// Request is one invocation of a command.
type Request struct {
	ID      string
	Command string
	User    User
	// Options holds string and channel option values by option name.
	Options map[string]string
	// Channel is the resolved channel option, if the command takes one.
	Channel *Channel
	// Target is the message a message action was invoked on.
	Target  *media.Message
	Gateway Gateway
}

// Option returns the trimmed value of the named option.
func (r *Request) Option(name string) string {
	if r.Options == nil {
		return ""
	}
	return strings.TrimSpace(r.Options[name])
}

// Size limits of outbound messages, in runes.
const (
	MaxContentLength = 2000
	MaxFieldLength   = 1024
)

// Embed colors.
const (
	ColorBlue   = 0x3498db
	ColorGreen  = 0x2ecc71
	ColorPurple = 0x9b59b6
)

// EmbedField is one name/value block of an embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a structured rich message.
type Embed struct {
	Title       string
	Description string
	URL         string
	Color       int
	Fields      []EmbedField
	Footer      string
}

// Response is what a handler wants sent back. Ephemeral responses are only
// visible to the invoking user.
type Response struct {
	Content   string
	Embed     *Embed
	Ephemeral bool
}

// Choice is an autocomplete candidate.
type Choice struct {
	Name  string
	Value string
}

// Gateway is the outbound side of the chat platform.
type Gateway interface {
	// ResolveChannel looks a channel up by id. Errors wrap ErrChannelUnreachable
	// when the channel does not exist or cannot be seen.
	ResolveChannel(ctx context.Context, channelID string) (Channel, error)
	// Send posts a message to a channel. Errors wrap ErrSendForbidden when the
	// destination rejects the bot.
	Send(ctx context.Context, channelID string, resp Response) error
	// Latency is the current gateway heartbeat latency.
	Latency() time.Duration
	// Version names the platform library in use.
	Version() string
}

// Handler executes one command.
type Handler interface {
	Definition() Definition
	Handle(ctx context.Context, req *Request) (Response, error)
}

// Autocompleter is implemented by handlers offering option suggestions.
type Autocompleter interface {
	Autocomplete(ctx context.Context, req *Request, partial string) ([]Choice, error)
}
