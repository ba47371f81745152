// Package discord connects the command registry to Discord through discordgo.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/memohai/mediaclip/internal/command"
)

const interactionTimeout = 15 * time.Second

// Config holds the connection settings of the bot.
type Config struct {
	Token string
	// GuildID limits command sync to one guild; empty registers globally.
	GuildID      string
	SyncCommands bool
	// ProxyURL routes REST and gateway traffic through an HTTP proxy when set.
	ProxyURL string
}

// Bot owns the discordgo session and turns interactions into registry calls.
type Bot struct {
	logger   *slog.Logger
	cfg      Config
	registry *command.Registry
	session  *discordgo.Session
	api      restSession
	gateway  *gateway

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	removes []func()
}

// New creates a bot session. Nothing is opened until Start.
func New(log *slog.Logger, cfg Config, registry *command.Registry) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentMessageContent
	if cfg.ProxyURL != "" {
		if err := applyProxy(session, cfg.ProxyURL); err != nil {
			return nil, err
		}
	}
	b := newBot(log, cfg, registry, session)
	b.session = session
	return b, nil
}

func newBot(log *slog.Logger, cfg Config, registry *command.Registry, api restSession) *Bot {
	b := &Bot{
		logger:   log.With(slog.String("adapter", "discord")),
		cfg:      cfg,
		registry: registry,
		api:      api,
		gateway:  &gateway{session: api},
	}
	b.ctx, b.cancel = context.WithCancel(context.Background())
	if s, ok := api.(*discordgo.Session); ok {
		b.gateway.state = s.State
	}
	return b
}

// applyProxy sends both the REST client and the gateway websocket through proxyURL.
func applyProxy(session *discordgo.Session, proxyURL string) error {
	u, err := url.Parse(proxyURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid proxy url %q", proxyURL)
	}
	session.Client = &http.Client{
		Timeout:   20 * time.Second,
		Transport: &http.Transport{Proxy: http.ProxyURL(u)},
	}
	dialer := *websocket.DefaultDialer
	dialer.Proxy = http.ProxyURL(u)
	session.Dialer = &dialer
	return nil
}

// Gateway exposes the outbound side used by handlers.
func (b *Bot) Gateway() command.Gateway {
	return b.gateway
}

// Start registers event handlers, opens the gateway connection and syncs
// the command set when enabled.
func (b *Bot) Start(ctx context.Context) error {
	if b.session == nil {
		return fmt.Errorf("discord session is not initialized")
	}
	b.mu.Lock()
	b.removes = append(b.removes,
		b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
			b.logger.Info("connected",
				slog.String("user", r.User.Username),
				slog.Int("guilds", len(r.Guilds)),
			)
		}),
		b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			b.handleInteraction(i.Interaction)
		}),
	)
	b.mu.Unlock()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord open connection: %w", err)
	}
	if !b.cfg.SyncCommands {
		return nil
	}
	return b.syncCommands(ctx)
}

func (b *Bot) syncCommands(ctx context.Context) error {
	if b.session.State == nil || b.session.State.User == nil {
		return fmt.Errorf("discord session has no application user")
	}
	defs := applicationCommands(b.registry.Definitions())
	created, err := b.session.ApplicationCommandBulkOverwrite(
		b.session.State.User.ID, b.cfg.GuildID, defs, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("sync commands: %w", err)
	}
	b.logger.Info("commands synced", slog.Int("count", len(created)), slog.String("guild_id", b.cfg.GuildID))
	return nil
}

// Stop removes handlers and closes the session.
func (b *Bot) Stop(ctx context.Context) error {
	b.cancel()
	b.mu.Lock()
	removes := b.removes
	b.removes = nil
	b.mu.Unlock()
	for _, remove := range removes {
		remove()
	}
	if b.session == nil {
		return nil
	}
	b.logger.Info("stop")
	return b.session.Close()
}

func (b *Bot) handleInteraction(i *discordgo.Interaction) {
	if i == nil {
		return
	}
	switch i.Type {
	case discordgo.InteractionApplicationCommand, discordgo.InteractionApplicationCommandAutocomplete:
	default:
		return
	}
	data, ok := i.Data.(discordgo.ApplicationCommandInteractionData)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, interactionTimeout)
	defer cancel()

	req, partial := b.buildRequest(i, data)
	log := b.logger.With(slog.String("command", req.Command), slog.String("request_id", req.ID))

	var resp *discordgo.InteractionResponse
	switch {
	case i.Type == discordgo.InteractionApplicationCommandAutocomplete:
		resp = &discordgo.InteractionResponse{
			Type: discordgo.InteractionApplicationCommandAutocompleteResult,
			Data: &discordgo.InteractionResponseData{Choices: toChoices(b.registry.Complete(ctx, req, partial))},
		}
	case data.CommandType == discordgo.MessageApplicationCommand:
		b.respondDeferred(ctx, log, i, req)
		return
	default:
		resp = &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: toResponseData(b.registry.Dispatch(ctx, req)),
		}
	}
	if err := b.api.InteractionRespond(i, resp, discordgo.WithContext(ctx)); err != nil {
		log.Error("interaction respond failed", slog.Any("error", err))
	}
}

// respondDeferred acknowledges a message action before running it and posts
// the result as a private followup. Forwarding can outlast the initial
// response window.
func (b *Bot) respondDeferred(ctx context.Context, log *slog.Logger, i *discordgo.Interaction, req *command.Request) {
	ack := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}
	if err := b.api.InteractionRespond(i, ack, discordgo.WithContext(ctx)); err != nil {
		log.Error("interaction defer failed", slog.Any("error", err))
		return
	}
	resp := b.registry.Dispatch(ctx, req)
	resp.Ephemeral = true
	if _, err := b.api.FollowupMessageCreate(i, true, toWebhookParams(resp), discordgo.WithContext(ctx)); err != nil {
		log.Error("interaction followup failed", slog.Any("error", err))
	}
}

// buildRequest maps interaction data onto a command request. partial is the
// focused option value for autocomplete interactions.
func (b *Bot) buildRequest(i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) (*command.Request, string) {
	req := &command.Request{
		ID:      uuid.NewString(),
		Command: data.Name,
		User:    interactionUser(i),
		Options: map[string]string{},
		Gateway: b.gateway,
	}
	var partial string
	for _, opt := range data.Options {
		if opt == nil {
			continue
		}
		value := fmt.Sprint(opt.Value)
		req.Options[opt.Name] = value
		if opt.Focused {
			partial = value
		}
		if opt.Type == discordgo.ApplicationCommandOptionChannel {
			ch := &command.Channel{ID: value}
			if data.Resolved != nil {
				if resolved, ok := data.Resolved.Channels[value]; ok && resolved != nil {
					ch.Name = resolved.Name
				}
			}
			req.Channel = ch
		}
	}
	if data.CommandType == discordgo.MessageApplicationCommand && data.Resolved != nil {
		if msg, ok := data.Resolved.Messages[data.TargetID]; ok && msg != nil {
			target := toMessage(msg, i.GuildID)
			req.Target = &target
		}
	}
	return req, partial
}

func interactionUser(i *discordgo.Interaction) command.User {
	u := i.User
	if i.Member != nil && i.Member.User != nil {
		u = i.Member.User
	}
	if u == nil {
		return command.User{}
	}
	return command.User{ID: u.ID, Username: u.Username}
}

func toChoices(choices []command.Choice) []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(choices))
	for _, c := range choices {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: c.Name, Value: c.Value})
	}
	return out
}

// applicationCommands describes the registry to Discord. Every command is
// installable by users as well as guilds and usable everywhere.
func applicationCommands(defs []command.Definition) []*discordgo.ApplicationCommand {
	integrations := []discordgo.ApplicationIntegrationType{
		discordgo.ApplicationIntegrationGuildInstall,
		discordgo.ApplicationIntegrationUserInstall,
	}
	contexts := []discordgo.InteractionContextType{
		discordgo.InteractionContextGuild,
		discordgo.InteractionContextBotDM,
		discordgo.InteractionContextPrivateChannel,
	}
	out := make([]*discordgo.ApplicationCommand, 0, len(defs))
	for _, def := range defs {
		cmd := &discordgo.ApplicationCommand{
			Name:             def.Name,
			IntegrationTypes: &integrations,
			Contexts:         &contexts,
		}
		if def.Type == command.TypeMessage {
			cmd.Type = discordgo.MessageApplicationCommand
		} else {
			cmd.Type = discordgo.ChatApplicationCommand
			cmd.Description = def.Description
		}
		for _, opt := range def.Options {
			o := &discordgo.ApplicationCommandOption{
				Name:         opt.Name,
				Description:  opt.Description,
				Required:     opt.Required,
				Autocomplete: opt.Autocomplete,
				Type:         discordgo.ApplicationCommandOptionString,
			}
			if opt.Type == command.OptionChannel {
				o.Type = discordgo.ApplicationCommandOptionChannel
				o.ChannelTypes = []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews}
			}
			cmd.Options = append(cmd.Options, o)
		}
		out = append(out, cmd)
	}
	return out
}
