package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/memohai/mediaclip/internal/collection"
	"github.com/memohai/mediaclip/internal/command"
	"github.com/memohai/mediaclip/internal/config"
	"github.com/memohai/mediaclip/internal/discord"
	"github.com/memohai/mediaclip/internal/handlers"
	"github.com/memohai/mediaclip/internal/logger"
	"github.com/memohai/mediaclip/internal/route"
	"github.com/memohai/mediaclip/internal/server"
	"github.com/memohai/mediaclip/internal/storage"
	"github.com/memohai/mediaclip/internal/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var ephemeral bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and handle commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, true)
			if err != nil {
				return err
			}
			if ephemeral {
				cfg.Storage.Backend = config.BackendMemory
			}
			app := fx.New(serveOptions(cfg)...)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "keep all data in memory and discard it on exit")
	return cmd
}

func serveOptions(cfg config.Config) []fx.Option {
	return []fx.Option{
		fx.Supply(cfg),
		fx.Provide(
			provideLogger,
			provideBackend,
			route.NewService,
			collection.NewService,
			provideRegistry,
			provideBot,
			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(handlers.NewCollectionHandler),
			provideServer,
		),
		fx.Invoke(
			startBot,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	}
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideBackend(lc fx.Lifecycle, log *slog.Logger, cfg config.Config) (storage.Backend, error) {
	backend, err := openBackend(context.Background(), cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	log.Info("storage ready", slog.String("backend", cfg.Storage.Backend))
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { return backend.Close() }})
	return backend, nil
}

func provideRegistry(log *slog.Logger, routes *route.Service, collections *collection.Service) *command.Registry {
	registry := command.NewRegistry(log)
	command.RegisterDefaults(registry, routes, collections)
	return registry
}

func provideBot(log *slog.Logger, cfg config.Config, registry *command.Registry) (*discord.Bot, error) {
	return discord.New(log, discord.Config{
		Token:        cfg.Discord.Token,
		GuildID:      cfg.Discord.GuildID,
		SyncCommands: cfg.Discord.SyncCommands,
		ProxyURL:     cfg.Discord.Proxy(),
	}, registry)
}

type serverParams struct {
	fx.In

	Logger   *slog.Logger
	Config   config.Config
	Handlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.Handlers...)
}

func startBot(lc fx.Lifecycle, log *slog.Logger, bot *discord.Bot) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting mediaclip", slog.String("version", version.GetInfo()))
			return bot.Start(ctx)
		},
		OnStop: func(ctx context.Context) error { return bot.Stop(ctx) },
	})
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner, cfg config.Config) {
	if !srv.Enabled() {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("ops server listening", slog.String("addr", cfg.Server.Addr))
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
