package work24

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"course-promo/internal/domain"
	"course-promo/internal/mappers"
)

const (
	DefaultDetailInterval = 300 * time.Millisecond
	DefaultListTimeout    = 30 * time.Second
	DefaultDetailTimeout  = 15 * time.Second
	defaultWindow         = 180 * 24 * time.Hour
)

// Provider adapts the Work24 client into providers.CourseProvider: it lists
// the configured window, enriches every row with a paced detail call and
// normalizes the result.
type Provider struct {
	C      *Client
	Params ListParams

	// Enrich turns on the per-course detail call.
	Enrich        bool
	Limiter       *rate.Limiter
	ListTimeout   time.Duration
	DetailTimeout time.Duration

	Log *zap.Logger
	Now func() time.Time
}

// NewProvider builds a provider listing from today over the next six months.
func NewProvider(c *Client, params ListParams, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		C:             c,
		Params:        params,
		Enrich:        true,
		Limiter:       rate.NewLimiter(rate.Every(DefaultDetailInterval), 1),
		ListTimeout:   DefaultListTimeout,
		DetailTimeout: DefaultDetailTimeout,
		Log:           log,
		Now:           time.Now,
	}
}

func (p *Provider) Name() string { return "work24" }

func (p *Provider) ListCourses(ctx context.Context) ([]domain.CourseRecord, error) {
	params := p.Params
	if params.From.IsZero() {
		params.From = p.now()
	}
	if params.To.IsZero() {
		params.To = params.From.Add(defaultWindow)
	}

	listCtx, cancel := context.WithTimeout(ctx, p.listTimeout())
	rows, err := p.C.ListItems(listCtx, params)
	cancel()
	if err != nil {
		return nil, err
	}

	out := make([]domain.CourseRecord, 0, len(rows))
	for i, row := range rows {
		if p.Enrich {
			row = p.enrich(ctx, row)
		}
		c := mappers.Normalize(row)
		if err := c.Validate(); err != nil {
			p.log().Warn("skipping listing row", zap.Int("row", i), zap.String("course_id", c.CourseID), zap.Error(err))
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// enrich merges detail fields under the listing row. Listing values win; any
// failure leaves the row as listed. Identity fields are never taken from the
// detail response.
func (p *Provider) enrich(ctx context.Context, row map[string]any) map[string]any {
	probe := mappers.Normalize(row)
	if probe.CourseID == "" {
		return row
	}

	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return row
		}
	}

	dctx, cancel := context.WithTimeout(ctx, p.detailTimeout())
	defer cancel()
	detail, err := p.C.Detail(dctx, probe.CourseID, probe.SessionNumber, probe.InstitutionID)
	if err != nil {
		p.log().Warn("detail enrichment failed, using listing fields",
			zap.String("course_id", probe.CourseID),
			zap.String("session", probe.SessionNumber),
			zap.Error(err),
		)
		return row
	}

	merged := make(map[string]any, len(row)+len(detail))
	for k, v := range detail {
		merged[k] = v
	}
	for k, v := range row {
		if s, ok := v.(string); ok && s == "" {
			if _, has := merged[k]; has {
				continue
			}
		}
		merged[k] = v
	}

	// The identity key comes from the listing alone, so a course keys the
	// same whether or not its detail call succeeds.
	for _, f := range identityFields {
		for _, k := range f {
			if v, ok := row[k]; ok {
				merged[k] = v
			} else {
				delete(merged, k)
			}
		}
	}
	return merged
}

var identityFields = []mappers.Field{
	mappers.Fields.CourseID,
	mappers.Fields.Session,
	mappers.Fields.Start,
	mappers.Fields.End,
}

func (p *Provider) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Provider) log() *zap.Logger {
	if p.Log != nil {
		return p.Log
	}
	return zap.NewNop()
}

func (p *Provider) listTimeout() time.Duration {
	if p.ListTimeout > 0 {
		return p.ListTimeout
	}
	return DefaultListTimeout
}

func (p *Provider) detailTimeout() time.Duration {
	if p.DetailTimeout > 0 {
		return p.DetailTimeout
	}
	return DefaultDetailTimeout
}
