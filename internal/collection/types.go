// Package collection keeps a deduplicated per-user collection of emoji and
// sticker references seen in messages.
package collection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// MaxChoices is the largest number of autocomplete candidates the platform accepts.
const MaxChoices = 25

// ErrNotFound indicates a search matched nothing.
var ErrNotFound = errors.New("collection entry not found")

// Kind selects one of the two mappings of a collection.
type Kind string

const (
	KindEmoji   Kind = "emoji"
	KindSticker Kind = "sticker"
)

// ParseKind accepts singular or plural kind names.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "emoji", "emojis":
		return KindEmoji, nil
	case "sticker", "stickers":
		return KindSticker, nil
	}
	return "", fmt.Errorf("unknown collection kind: %q", raw)
}

// Record is the stored data for one emoji or sticker. Animated is only set
// for emojis.
type Record struct {
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
	Animated *bool  `json:"animated,omitempty" yaml:"animated,omitempty"`
}

// Entry pairs a record with its platform identifier.
type Entry struct {
	ID     string `json:"id" yaml:"id"`
	Record `yaml:",inline"`
}

// Records is an insertion-ordered mapping from identifier to record.
// It encodes as a JSON object whose key order is the insertion order.
// The zero value is an empty mapping ready to use.
type Records struct {
	entries []Entry
	index   map[string]int
}

// Len returns the number of records.
func (r *Records) Len() int {
	return len(r.entries)
}

// Get returns the record stored under id.
func (r *Records) Get(id string) (Record, bool) {
	i, ok := r.index[id]
	if !ok {
		return Record{}, false
	}
	return r.entries[i].Record, true
}

// Add inserts rec under id unless id is already present. It reports whether
// an insertion happened; an existing record is never overwritten.
func (r *Records) Add(id string, rec Record) bool {
	if _, ok := r.index[id]; ok {
		return false
	}
	if r.index == nil {
		r.index = make(map[string]int)
	}
	r.index[id] = len(r.entries)
	r.entries = append(r.entries, Entry{ID: id, Record: rec})
	return true
}

// replace stores rec under id, keeping the position of an existing id.
func (r *Records) replace(id string, rec Record) {
	if i, ok := r.index[id]; ok {
		r.entries[i].Record = rec
		return
	}
	r.Add(id, rec)
}

// Entries returns a copy of all entries in insertion order.
func (r *Records) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Recent returns up to n of the most recently inserted entries, oldest first.
func (r *Records) Recent(n int) []Entry {
	if n <= 0 {
		return nil
	}
	start := len(r.entries) - n
	if start < 0 {
		start = 0
	}
	return append([]Entry(nil), r.entries[start:]...)
}

// MarshalJSON encodes the records as an object keyed by id.
func (r Records) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalPlain(e.ID)
		if err != nil {
			return nil, err
		}
		val, err := marshalPlain(e.Record)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes an object keyed by id, keeping document key order.
// A repeated key keeps its first position and takes the last value, as a
// plain JSON object decode would.
func (r *Records) UnmarshalJSON(data []byte) error {
	*r = Records{}
	if !gjson.ValidBytes(data) {
		return errors.New("records: invalid json")
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("records: expected object, got %s", res.Type)
	}
	var decodeErr error
	res.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			decodeErr = fmt.Errorf("records: entry %q is not an object", key.String())
			return false
		}
		var rec Record
		if err := json.Unmarshal([]byte(value.Raw), &rec); err != nil {
			decodeErr = fmt.Errorf("records: entry %q: %w", key.String(), err)
			return false
		}
		r.replace(key.String(), rec)
		return true
	})
	if decodeErr != nil {
		*r = Records{}
		return decodeErr
	}
	return nil
}

// Collection is one user's saved emojis and stickers.
type Collection struct {
	Emojis   Records `json:"emojis"`
	Stickers Records `json:"stickers"`
}

// New returns an empty collection.
func New() Collection {
	return Collection{}
}

// Records returns the mapping for kind.
func (c *Collection) Records(kind Kind) *Records {
	if kind == KindSticker {
		return &c.Stickers
	}
	return &c.Emojis
}

// IngestResult counts references newly added by an ingest.
type IngestResult struct {
	Emojis   int `json:"emojis"`
	Stickers int `json:"stickers"`
}

// Added reports whether anything new was saved.
func (r IngestResult) Added() bool {
	return r.Emojis > 0 || r.Stickers > 0
}
