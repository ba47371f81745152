package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Registry maps command names to handlers. Handlers are registered
// explicitly at startup and dispatched by name.
type Registry struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	handlers map[string]Handler
	order    []string
}

// NewRegistry creates an empty Registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		logger:   log.With(slog.String("component", "commands")),
		handlers: map[string]Handler{},
	}
}

// Register adds a handler under its definition name.
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("handler is nil")
	}
	name := strings.TrimSpace(h.Definition().Name)
	if name == "" {
		return fmt.Errorf("command name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("command already registered: %s", name)
	}
	r.handlers[name] = h
	r.order = append(r.order, name)
	return nil
}

// MustRegister calls Register and panics on error.
func (r *Registry) MustRegister(h Handler) {
	if err := r.Register(h); err != nil {
		panic(err)
	}
}

// Get returns the handler registered under name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[strings.TrimSpace(name)]
	return h, ok
}

// Definitions returns the definitions of all handlers in registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.handlers[name].Definition())
	}
	return defs
}

// Dispatch runs the handler for req.Command. Errors and panics are recovered
// here and rendered as private replies, so the result is always sendable.
func (r *Registry) Dispatch(ctx context.Context, req *Request) (resp Response) {
	log := r.logger.With(
		slog.String("command", req.Command),
		slog.String("user_id", req.User.ID),
		slog.String("request_id", req.ID),
	)
	h, ok := r.Get(req.Command)
	if !ok {
		log.Warn("unknown command")
		return RenderError(fmt.Errorf("unknown command %q", req.Command))
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("command panicked", slog.Any("panic", rec))
			resp = RenderError(fmt.Errorf("panic: %v", rec))
		}
	}()

	resp, err := h.Handle(ctx, req)
	if err != nil {
		if expected(err) {
			log.Info("command rejected", slog.Any("error", err))
		} else {
			log.Error("command failed", slog.Any("error", err))
		}
		return RenderError(err)
	}
	log.Debug("command handled")
	return resp
}

// Complete returns autocomplete candidates for req.Command. Failures yield
// no candidates.
func (r *Registry) Complete(ctx context.Context, req *Request, partial string) []Choice {
	h, ok := r.Get(req.Command)
	if !ok {
		return nil
	}
	ac, ok := h.(Autocompleter)
	if !ok {
		return nil
	}
	choices, err := ac.Autocomplete(ctx, req, partial)
	if err != nil {
		r.logger.Warn("autocomplete failed",
			slog.String("command", req.Command),
			slog.String("user_id", req.User.ID),
			slog.Any("error", err),
		)
		return nil
	}
	return choices
}
