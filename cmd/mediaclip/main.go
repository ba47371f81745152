package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/memohai/mediaclip/internal/config"
	"github.com/memohai/mediaclip/internal/storage"
	"github.com/memohai/mediaclip/internal/storage/providers/jsonfile"
	"github.com/memohai/mediaclip/internal/storage/providers/sqlite"
	"github.com/memohai/mediaclip/internal/version"
)

type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "mediaclip",
		Short: "Discord bot that extracts and collects media links",
		Long: `mediaclip pulls image, emoji and sticker links out of Discord messages,
forwards them to a channel of your choice and keeps a per-user collection
of every emoji and sticker it has seen.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config.toml (default $CONFIG_PATH or ./config.toml)")

	root.AddCommand(
		newServeCmd(opts),
		newCollectionCmd(opts),
		newChannelCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mediaclip %s\n", version.GetInfo())
		},
	}
}

func loadConfig(opts *rootOptions, requireToken bool) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(requireToken); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openBackend opens the document backend selected by cfg.
func openBackend(ctx context.Context, cfg config.StorageConfig) (storage.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return storage.NewMemoryBackend(), nil
	case config.BackendSQLite:
		p, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.BackendFile, "":
		p, err := jsonfile.New(cfg.DataRoot)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
