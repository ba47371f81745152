// Package route stores the destination channel each user forwards media to.
package route

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/mo"

	"github.com/memohai/mediaclip/internal/storage"
)

const (
	// Namespace is the storage namespace of the config document (the data root).
	Namespace = ""
	// DocumentKey names the single document mapping users to channels.
	DocumentKey = "user_config"
)

// UserChannel is the per-user entry of the config document. ChannelID is
// kept as a JSON number.
type UserChannel struct {
	ChannelID json.Number `json:"channel_id"`
}

// Document maps user ids to their destination.
type Document map[string]UserChannel

func newDocument() Document {
	return Document{}
}

// Service reads and writes user destinations. All users share one document,
// so writes are serialized on it.
type Service struct {
	logger *slog.Logger
	store  storage.Store[Document]
	locks  storage.KeyedMutex
}

// NewService creates a route service persisting to backend.
func NewService(log *slog.Logger, backend storage.Backend) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		logger: log.With(slog.String("service", "route")),
		store:  storage.NewJSONStore(backend, Namespace, newDocument),
	}
}

// Get returns the user's destination channel id, if one is set.
func (s *Service) Get(ctx context.Context, userID string) (mo.Option[string], error) {
	doc, err := s.store.Load(ctx, DocumentKey)
	if err != nil {
		return mo.None[string](), err
	}
	entry, ok := doc[strings.TrimSpace(userID)]
	if !ok || entry.ChannelID == "" {
		return mo.None[string](), nil
	}
	return mo.Some(entry.ChannelID.String()), nil
}

// Set overwrites the user's destination. The channel is not checked for
// existence or reachability.
func (s *Service) Set(ctx context.Context, userID, channelID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	id, err := ParseSnowflake(channelID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(DocumentKey)
	defer unlock()

	doc, err := s.store.Load(ctx, DocumentKey)
	if err != nil {
		return err
	}
	if doc == nil {
		doc = newDocument()
	}
	doc[userID] = UserChannel{ChannelID: json.Number(strconv.FormatUint(id, 10))}
	if err := s.store.Save(ctx, DocumentKey, doc); err != nil {
		return err
	}
	s.logger.Info("destination set", slog.String("user_id", userID), slog.String("channel_id", channelID))
	return nil
}

// ParseSnowflake validates a platform identifier: a decimal unsigned 64-bit integer.
func ParseSnowflake(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("channel id is required")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid channel id: %q", raw)
	}
	return id, nil
}
