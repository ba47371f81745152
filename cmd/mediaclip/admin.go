package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/memohai/mediaclip/internal/collection"
	"github.com/memohai/mediaclip/internal/handlers"
	"github.com/memohai/mediaclip/internal/logger"
	"github.com/memohai/mediaclip/internal/route"
	"github.com/memohai/mediaclip/internal/storage"
)

// withStore opens the configured backend for an offline command.
func withStore(cmd *cobra.Command, opts *rootOptions, fn func(backend storage.Backend) error) error {
	cfg, err := loadConfig(opts, false)
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	backend, err := openBackend(cmd.Context(), cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer backend.Close()
	return fn(backend)
}

func newCollectionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Inspect saved emoji and stickers",
	}

	var format string
	show := &cobra.Command{
		Use:   "show <user-id>",
		Short: "Print a user's collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(backend storage.Backend) error {
				svc := collection.NewService(logger.L, backend)
				coll, err := svc.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeView(cmd.OutOrStdout(), format, handlers.NewCollectionView(args[0], coll))
			})
		},
	}
	show.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")

	search := &cobra.Command{
		Use:   "search <user-id> <emoji|sticker> <query>",
		Short: "Look up one entry by id or name",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := collection.ParseKind(args[1])
			if err != nil {
				return err
			}
			return withStore(cmd, opts, func(backend storage.Backend) error {
				svc := collection.NewService(logger.L, backend)
				entry, err := svc.Search(cmd.Context(), args[0], kind, args[2])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", entry.ID, entry.Name, entry.URL)
				return nil
			})
		},
	}

	cmd.AddCommand(show, search)
	return cmd
}

func newChannelCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Inspect or change a user's destination channel",
	}

	get := &cobra.Command{
		Use:   "get <user-id>",
		Short: "Print a user's destination channel id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(backend storage.Backend) error {
				dest, err := route.NewService(logger.L, backend).Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), dest.OrElse("(not set)"))
				return nil
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <user-id> <channel-id>",
		Short: "Set a user's destination channel id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(backend storage.Backend) error {
				return route.NewService(logger.L, backend).Set(cmd.Context(), args[0], args[1])
			})
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}

func writeView(w io.Writer, format string, view handlers.CollectionView) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(view)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}
