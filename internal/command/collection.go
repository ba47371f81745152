package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/memohai/mediaclip/internal/collection"
)

// recentLimit is how many of the newest entries per kind my_collection lists.
const recentLimit = 5

// Collections reads a user's saved emoji and stickers.
type Collections interface {
	Get(ctx context.Context, userID string) (collection.Collection, error)
	Search(ctx context.Context, userID string, kind collection.Kind, query string) (collection.Entry, error)
	Autocomplete(ctx context.Context, userID string, kind collection.Kind, partial string) ([]collection.Entry, error)
}

// MyCollection summarises a user's collection.
type MyCollection struct {
	collections Collections
}

func NewMyCollection(collections Collections) *MyCollection {
	return &MyCollection{collections: collections}
}

func (c *MyCollection) Definition() Definition {
	return Definition{Name: "my_collection", Description: "Show your saved emoji and stickers", Type: TypeSlash}
}

func (c *MyCollection) Handle(ctx context.Context, req *Request) (Response, error) {
	coll, err := c.collections.Get(ctx, req.User.ID)
	if err != nil {
		return Response{}, err
	}
	embed := &Embed{
		Title: "📦 My collection",
		Color: ColorPurple,
		Fields: []EmbedField{
			{Name: "😀 Emoji", Value: fmt.Sprintf("%d", coll.Emojis.Len()), Inline: true},
			{Name: "🏷️ Stickers", Value: fmt.Sprintf("%d", coll.Stickers.Len()), Inline: true},
		},
		Footer: fmt.Sprintf("Saved in collections/%s.json", req.User.ID),
	}
	if recent := coll.Emojis.Recent(recentLimit); len(recent) > 0 {
		lines := make([]string, 0, len(recent))
		for _, e := range recent {
			lines = append(lines, fmt.Sprintf(":%s: - %s", e.Name, e.URL))
		}
		embed.Fields = append(embed.Fields, EmbedField{Name: "Recent emoji", Value: strings.Join(lines, "\n")})
	}
	if recent := coll.Stickers.Recent(recentLimit); len(recent) > 0 {
		lines := make([]string, 0, len(recent))
		for _, e := range recent {
			lines = append(lines, fmt.Sprintf("%s - %s", e.Name, e.URL))
		}
		embed.Fields = append(embed.Fields, EmbedField{Name: "Recent stickers", Value: strings.Join(lines, "\n")})
	}
	return Response{Embed: embed, Ephemeral: true}, nil
}

// Search looks up one saved emoji or sticker by id or name.
type Search struct {
	kind        collection.Kind
	collections Collections
}

func NewSearchEmoji(collections Collections) *Search {
	return &Search{kind: collection.KindEmoji, collections: collections}
}

func NewSearchSticker(collections Collections) *Search {
	return &Search{kind: collection.KindSticker, collections: collections}
}

func (c *Search) Definition() Definition {
	return Definition{
		Name:        "search_" + string(c.kind),
		Description: fmt.Sprintf("Search your saved %ss", c.kind),
		Type:        TypeSlash,
		Options: []Option{{
			Name:         "name",
			Description:  fmt.Sprintf("Name of the %s", c.kind),
			Type:         OptionString,
			Required:     true,
			Autocomplete: true,
		}},
	}
}

func (c *Search) Handle(ctx context.Context, req *Request) (Response, error) {
	entry, err := c.collections.Search(ctx, req.User.ID, c.kind, req.Option("name"))
	if errors.Is(err, collection.ErrNotFound) {
		return Response{
			Content:   fmt.Sprintf("❌ No such %s found. Check the name or collect it first.", c.kind),
			Ephemeral: true,
		}, nil
	}
	if err != nil {
		return Response{}, err
	}
	return Response{
		Content:   fmt.Sprintf("**%s**\n```\n%s\n```", c.label(entry.Name), entry.URL),
		Ephemeral: true,
	}, nil
}

func (c *Search) Autocomplete(ctx context.Context, req *Request, partial string) ([]Choice, error) {
	entries, err := c.collections.Autocomplete(ctx, req.User.ID, c.kind, partial)
	if err != nil {
		return nil, err
	}
	choices := make([]Choice, 0, len(entries))
	for _, e := range entries {
		choices = append(choices, Choice{Name: c.label(e.Name), Value: e.ID})
	}
	return choices, nil
}

func (c *Search) label(name string) string {
	if c.kind == collection.KindEmoji {
		return ":" + name + ":"
	}
	return name
}

// RegisterDefaults registers the full command set.
func RegisterDefaults(r *Registry, routes Routes, collections *collection.Service) {
	r.MustRegister(Ping{})
	r.MustRegister(Info{})
	r.MustRegister(NewSetChannel(routes))
	r.MustRegister(NewMyChannel(routes))
	r.MustRegister(ExtractLinks{})
	r.MustRegister(NewSendToChannel(routes, collections))
	r.MustRegister(NewMyCollection(collections))
	r.MustRegister(NewSearchEmoji(collections))
	r.MustRegister(NewSearchSticker(collections))
}
