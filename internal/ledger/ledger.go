// Package ledger persists which generation units already produced artifacts,
// so a scheduled run only renders courses it has not seen before.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
)

// DocumentName is the ledger file inside the output directory.
const DocumentName = ".processed_courses.json"

// Entry records one completed generation unit.
type Entry struct {
	Key         string    `json:"-"`
	Title       string    `json:"title"`
	Period      string    `json:"period"`
	GeneratedAt Timestamp `json:"generated_at"`
	Files       FileMap   `json:"files"`
	RunID       string    `json:"run_id,omitempty"`
}

// FileMap maps artifact kind to the paths written for it. A nil list is a
// renderer that produced nothing and is stored as null.
type FileMap map[string][]string

// UnmarshalJSON also reads the earlier tooling's shape, where most kinds
// hold a single path string or null and only card news holds a list.
func (f *FileMap) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.Wrap(err, "files")
	}
	if raw == nil {
		*f = nil
		return nil
	}

	out := make(FileMap, len(raw))
	for kind, v := range raw {
		paths, err := decodePaths(v)
		if err != nil {
			return errors.Wrapf(err, "files.%s", kind)
		}
		out[kind] = paths
	}
	*f = out
	return nil
}

func decodePaths(v json.RawMessage) ([]string, error) {
	v = bytes.TrimSpace(v)
	switch {
	case len(v) == 0 || bytes.Equal(v, []byte("null")):
		return nil, nil
	case v[0] == '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		return []string{s}, nil
	}

	var list []string
	if err := json.Unmarshal(v, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// legacyLayouts are zone-less ISO timestamps written by earlier tooling.
var legacyLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// LegacyZone is assumed for timestamps written without an offset.
var LegacyZone = time.FixedZone("KST", 9*60*60)

// Timestamp is a time that also reads zone-less ISO strings.
type Timestamp struct {
	time.Time
}

// At wraps t.
func At(t time.Time) Timestamp { return Timestamp{Time: t} }

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Time.Format(time.RFC3339Nano))
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.Wrap(err, "generated_at")
	}
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		ts.Time = t
		return nil
	}
	for _, layout := range legacyLayouts {
		if t, err := time.ParseInLocation(layout, s, LegacyZone); err == nil {
			ts.Time = t
			return nil
		}
	}
	return errors.Newf("generated_at: unrecognised timestamp %q", s)
}

// Ledger maps identity keys to entries. Entries are only ever added; the
// whole document is cleared by Store.Reset.
type Ledger map[string]Entry

// Has reports whether key was already processed.
func (l Ledger) Has(key string) bool {
	_, ok := l[key]
	return ok
}

// Add inserts e under e.Key. An existing entry is kept and false returned.
func (l Ledger) Add(e Entry) bool {
	if l.Has(e.Key) {
		return false
	}
	l[e.Key] = e
	return true
}

// Entries returns entries sorted by generation time, then key.
func (l Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(l))
	for k, e := range l {
		e.Key = k
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].GeneratedAt.Equal(out[j].GeneratedAt.Time) {
			return out[i].GeneratedAt.Before(out[j].GeneratedAt.Time)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Store loads and saves the ledger document.
type Store interface {
	// Load returns the persisted ledger; a missing document is an empty ledger.
	Load(ctx context.Context) (Ledger, error)

	// Save replaces the persisted document with l.
	Save(ctx context.Context, l Ledger) error

	// Reset removes the persisted document.
	Reset(ctx context.Context) error
}
