package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/memohai/mediaclip/internal/collection"
	"github.com/memohai/mediaclip/internal/route"
	"github.com/memohai/mediaclip/internal/storage"
)

// CollectionHandler exposes read-only views of user collections and
// destinations for operators.
type CollectionHandler struct {
	collections *collection.Service
	routes      *route.Service
	logger      *slog.Logger
}

// CollectionView is the wire form of a collection. Entries are listed in
// insertion order.
type CollectionView struct {
	UserID   string             `json:"user_id" yaml:"user_id"`
	Emojis   []collection.Entry `json:"emojis" yaml:"emojis"`
	Stickers []collection.Entry `json:"stickers" yaml:"stickers"`
}

// NewCollectionView flattens c for export.
func NewCollectionView(userID string, c collection.Collection) CollectionView {
	return CollectionView{
		UserID:   userID,
		Emojis:   c.Emojis.Entries(),
		Stickers: c.Stickers.Entries(),
	}
}

type channelResponse struct {
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
}

func NewCollectionHandler(log *slog.Logger, collections *collection.Service, routes *route.Service) *CollectionHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CollectionHandler{
		collections: collections,
		routes:      routes,
		logger:      log.With(slog.String("handler", "collection")),
	}
}

func (h *CollectionHandler) Register(e *echo.Echo) {
	g := e.Group("/users/:user_id")
	g.GET("/collection", h.Show)
	g.GET("/collection/:kind/search", h.Search)
	g.GET("/collection/:kind/autocomplete", h.Autocomplete)
	g.GET("/channel", h.Channel)
}

func (h *CollectionHandler) Show(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("user_id"))
	coll, err := h.collections.Get(c.Request().Context(), userID)
	if err != nil {
		return h.storeError(err)
	}
	return c.JSON(http.StatusOK, NewCollectionView(userID, coll))
}

func (h *CollectionHandler) Search(c echo.Context) error {
	kind, err := collection.ParseKind(c.Param("kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	entry, err := h.collections.Search(c.Request().Context(), c.Param("user_id"), kind, query)
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return h.storeError(err)
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *CollectionHandler) Autocomplete(c echo.Context) error {
	kind, err := collection.ParseKind(c.Param("kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entries, err := h.collections.Autocomplete(c.Request().Context(), c.Param("user_id"), kind, c.QueryParam("q"))
	if err != nil {
		return h.storeError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": entries})
}

func (h *CollectionHandler) Channel(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("user_id"))
	dest, err := h.routes.Get(c.Request().Context(), userID)
	if err != nil {
		return h.storeError(err)
	}
	channelID, ok := dest.Get()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "destination channel not configured")
	}
	return c.JSON(http.StatusOK, channelResponse{UserID: userID, ChannelID: channelID})
}

func (h *CollectionHandler) storeError(err error) error {
	if errors.Is(err, storage.ErrCorrupt) {
		h.logger.Error("corrupt document", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "stored document is corrupt")
	}
	h.logger.Error("store failed", slog.Any("error", err))
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
