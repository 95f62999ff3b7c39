// Package localfile reads pre-fetched course data from a JSON file, used with
// --json instead of calling the listing API.
package localfile

import (
	"bytes"
	"context"
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"course-promo/internal/domain"
	"course-promo/internal/mappers"
	"course-promo/internal/providers/work24"
)

// Provider accepts a JSON array of items, a snapshot document
// ({"data": [...]}) or a saved Work24 listing response.
type Provider struct {
	Path string
	Log  *zap.Logger
}

func New(path string, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{Path: path, Log: log}
}

func (p *Provider) Name() string { return "localfile" }

func (p *Provider) ListCourses(ctx context.Context) ([]domain.CourseRecord, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "read course file %s", p.Path),
			"pass an existing JSON file to --json",
		)
	}

	items, err := decodeItems(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse course file %s", p.Path)
	}

	out := make([]domain.CourseRecord, 0, len(items))
	for i, raw := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := mappers.NormalizeJSON(raw)
		if err == nil {
			err = c.Validate()
		}
		if err != nil {
			p.Log.Warn("skipping course item", zap.String("file", p.Path), zap.Int("item", i), zap.Error(err))
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func decodeItems(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, errors.Wrap(err, "decode item list")
		}
		return list, nil
	}

	var doc struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &doc); err == nil && doc.Data != nil {
		return doc.Data, nil
	}

	rows, err := work24.ParseListing(trimmed)
	if err != nil {
		return nil, err
	}
	list := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		b, err := json.Marshal(r)
		if err != nil {
			return nil, errors.Wrap(err, "re-encode listing row")
		}
		list = append(list, b)
	}
	return list, nil
}
