package collection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/memohai/mediaclip/internal/media"
	"github.com/memohai/mediaclip/internal/storage"
)

// Namespace is the storage namespace holding one document per user.
const Namespace = "collections"

// Service manages user collections on top of a document store.
// Read-modify-write sequences are serialized per user inside the process.
type Service struct {
	logger *slog.Logger
	store  storage.Store[Collection]
	locks  storage.KeyedMutex
}

// NewService creates a collection service persisting to backend.
func NewService(log *slog.Logger, backend storage.Backend) *Service {
	return NewServiceWithStore(log, storage.NewJSONStore(backend, Namespace, New))
}

// NewServiceWithStore creates a collection service over an existing store.
func NewServiceWithStore(log *slog.Logger, store storage.Store[Collection]) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		logger: log.With(slog.String("service", "collection")),
		store:  store,
	}
}

// Get returns the user's collection; an unknown user has an empty one.
func (s *Service) Get(ctx context.Context, userID string) (Collection, error) {
	key, err := userKey(userID)
	if err != nil {
		return New(), err
	}
	return s.store.Load(ctx, key)
}

// AddEmoji saves an emoji unless its id is already collected.
func (s *Service) AddEmoji(ctx context.Context, userID, id, name, url string, animated bool) (bool, error) {
	return s.add(ctx, userID, KindEmoji, id, Record{Name: name, URL: url, Animated: &animated})
}

// AddSticker saves a sticker unless its id is already collected.
func (s *Service) AddSticker(ctx context.Context, userID, id, name, url string) (bool, error) {
	return s.add(ctx, userID, KindSticker, id, Record{Name: name, URL: url})
}

func (s *Service) add(ctx context.Context, userID string, kind Kind, id string, rec Record) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, fmt.Errorf("%s id is required", kind)
	}
	var added bool
	err := s.update(ctx, userID, func(c *Collection) bool {
		added = c.Records(kind).Add(id, rec)
		return added
	})
	if err != nil {
		return false, err
	}
	if added {
		s.logger.Debug("collected", slog.String("user_id", userID), slog.String("kind", string(kind)), slog.String("id", id))
	}
	return added, nil
}

// Ingest saves every emoji and sticker reference in refs with a single
// load and save. References of other kinds are ignored.
func (s *Service) Ingest(ctx context.Context, userID string, refs []media.Reference) (IngestResult, error) {
	var result IngestResult
	candidates := media.FilterKind(refs, media.KindEmoji, media.KindSticker)
	if len(candidates) == 0 {
		return result, nil
	}
	err := s.update(ctx, userID, func(c *Collection) bool {
		for _, ref := range candidates {
			if strings.TrimSpace(ref.ID) == "" {
				continue
			}
			switch ref.Kind {
			case media.KindEmoji:
				animated := ref.Animated
				if c.Emojis.Add(ref.ID, Record{Name: ref.Name, URL: ref.URL, Animated: &animated}) {
					result.Emojis++
				}
			case media.KindSticker:
				if c.Stickers.Add(ref.ID, Record{Name: ref.Name, URL: ref.URL}) {
					result.Stickers++
				}
			}
		}
		return result.Added()
	})
	if err != nil {
		return IngestResult{}, err
	}
	if result.Added() {
		s.logger.Info("collection updated",
			slog.String("user_id", userID),
			slog.Int("emojis", result.Emojis),
			slog.Int("stickers", result.Stickers),
		)
	}
	return result, nil
}

// update loads the user's collection, applies fn and saves when fn reports a change.
func (s *Service) update(ctx context.Context, userID string, fn func(*Collection) bool) error {
	key, err := userKey(userID)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(key)
	defer unlock()

	c, err := s.store.Load(ctx, key)
	if err != nil {
		return err
	}
	if !fn(&c) {
		return nil
	}
	return s.store.Save(ctx, key, c)
}

// Search finds an entry by exact id, then by case-insensitive name in
// insertion order. Emoji queries may be wrapped in colons.
func (s *Service) Search(ctx context.Context, userID string, kind Kind, query string) (Entry, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return Entry{}, err
	}
	return Find(c.Records(kind), kind, query)
}

// Find applies the search rules to a single mapping.
func Find(records *Records, kind Kind, query string) (Entry, error) {
	if rec, ok := records.Get(query); ok {
		return Entry{ID: query, Record: rec}, nil
	}
	name := query
	if kind == KindEmoji {
		name = strings.Trim(name, ":")
	}
	name = strings.ToLower(name)
	for _, e := range records.entries {
		if strings.ToLower(e.Name) == name {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Autocomplete returns up to MaxChoices entries whose name contains partial,
// ignoring case, in insertion order.
func (s *Service) Autocomplete(ctx context.Context, userID string, kind Kind, partial string) ([]Entry, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Match(c.Records(kind), partial, MaxChoices), nil
}

// Match returns up to limit entries whose name contains partial, ignoring case.
func Match(records *Records, partial string, limit int) []Entry {
	if limit <= 0 {
		return nil
	}
	needle := strings.ToLower(partial)
	out := make([]Entry, 0, min(limit, records.Len()))
	for _, e := range records.entries {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(e.Name), needle) {
			out = append(out, e)
		}
	}
	return out
}

func userKey(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}
	return userID, nil
}
