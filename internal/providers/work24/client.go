// Package work24 reads training courses from the Work24 (고용24) open API.
package work24

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"course-promo/internal/httpx"
)

const (
	DefaultListURL   = "https://www.work24.go.kr/cm/openApi/call/hr/callOpenApiSvcInfo310L01.do"
	DefaultDetailURL = "https://www.work24.go.kr/cm/openApi/call/hr/callOpenApiSvcInfo310L02.do"

	// DefaultArea is Jeju (srchTraArea1).
	DefaultArea = "50"
	// DefaultCategory is the national-tomorrow-learning-card course category.
	DefaultCategory = "C0102"

	defaultPageSize = 100
	sortByStartDate = "2"
)

// ErrHTMLResponse is returned when the API serves a web page instead of data,
// which happens for invalid auth keys and moved endpoints.
var ErrHTMLResponse = errors.New("work24: html response")

// listKeys are the JSON containers the listing has used across API versions.
var listKeys = []string{"srchList", "scn_list", "returnList"}

type Client struct {
	ListURL   string
	DetailURL string
	AuthKey   string
	HTTP      *http.Client
	Retry     httpx.RetryConfig
}

func New(authKey string) *Client {
	return &Client{
		ListURL:   DefaultListURL,
		DetailURL: DefaultDetailURL,
		AuthKey:   authKey,
		HTTP:      &http.Client{Timeout: 30 * time.Second},
		Retry:     httpx.DefaultRetryConfig(),
	}
}

// ListParams selects one listing window.
type ListParams struct {
	Area       string
	Category   string
	From, To   time.Time
	PageSize   int
	MaxPages   int // <=0 means 1
	ReturnType string
}

func (p ListParams) withDefaults() ListParams {
	if p.Area == "" {
		p.Area = DefaultArea
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	if p.MaxPages <= 0 {
		p.MaxPages = 1
	}
	if p.ReturnType == "" {
		p.ReturnType = "JSON"
	}
	return p
}

// ListItems returns raw listing rows, paging until a short page or MaxPages.
func (c *Client) ListItems(ctx context.Context, params ListParams) ([]map[string]any, error) {
	params = params.withDefaults()

	var out []map[string]any
	for page := 1; page <= params.MaxPages; page++ {
		rows, err := c.listPage(ctx, params, page)
		if err != nil {
			return nil, errors.Wrapf(err, "work24: list page %d", page)
		}
		out = append(out, rows...)
		if len(rows) < params.PageSize {
			break
		}
	}
	return out, nil
}

func (c *Client) listPage(ctx context.Context, params ListParams, page int) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("authKey", c.AuthKey)
	q.Set("returnType", params.ReturnType)
	q.Set("outType", "1")
	q.Set("pageNum", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(params.PageSize))
	if !params.From.IsZero() {
		q.Set("srchTraStDt", params.From.Format("20060102"))
	}
	if !params.To.IsZero() {
		q.Set("srchTraEndDt", params.To.Format("20060102"))
	}
	q.Set("srchTraArea1", params.Area)
	if params.Category != "" {
		q.Set("crseTracseSe", params.Category)
	}
	q.Set("sort", "ASC")
	q.Set("sortCol", sortByStartDate)

	body, err := c.get(ctx, c.ListURL, q)
	if err != nil {
		return nil, err
	}
	return ParseListing(body)
}

// Detail fetches the extended attributes of one course session, flattened
// into a single map. Missing fields are normal.
func (c *Client) Detail(ctx context.Context, courseID, session, institutionID string) (map[string]any, error) {
	q := url.Values{}
	q.Set("authKey", c.AuthKey)
	q.Set("returnType", "JSON")
	q.Set("outType", "2")
	q.Set("srchTrprId", courseID)
	q.Set("srchTrprDegr", session)
	if institutionID != "" {
		q.Set("srchTorgId", institutionID)
	}

	body, err := c.get(ctx, c.DetailURL, q)
	if err != nil {
		return nil, errors.Wrapf(err, "work24: detail %s/%s", courseID, session)
	}
	if httpx.LooksLikeHTML(body) {
		return nil, errors.Wrapf(ErrHTMLResponse, "detail %s/%s", courseID, session)
	}

	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(err, "work24: parse detail body=%s", httpx.Snippet(body, 300))
	}
	return Flatten(doc), nil
}

func (c *Client) get(ctx context.Context, base string, q url.Values) ([]byte, error) {
	_, body, err := httpx.DoWithRetry(ctx, c.HTTP, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		r.Header.Set("Accept", "application/json, application/xml;q=0.9")
		r.Header.Set("User-Agent", "course-promo/1.0")
		return r, nil
	}, c.Retry)
	return body, err
}

// ParseListing accepts a JSON or XML listing body and returns its rows.
func ParseListing(body []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("work24: empty listing body")
	}
	if httpx.LooksLikeHTML(trimmed) {
		return nil, errors.Wrapf(ErrHTMLResponse, "listing: %s", httpx.Snippet(trimmed, 300))
	}
	if trimmed[0] == '<' {
		return ParseXMLRows(trimmed)
	}
	return parseJSONRows(trimmed)
}

func parseJSONRows(body []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(err, "work24: parse listing body=%s", httpx.Snippet(body, 300))
	}

	// Some versions wrap the payload once more.
	for _, wrapper := range []string{"HRDNet", "returnData"} {
		if inner, ok := doc[wrapper].(map[string]any); ok {
			doc = inner
		}
	}

	for _, k := range listKeys {
		v, ok := doc[k]
		if !ok || v == nil {
			continue
		}
		rows := rowsOf(v)
		if len(rows) > 0 {
			return rows, nil
		}
	}
	return nil, nil
}

// rowsOf accepts a list of objects, a single object, or an object wrapping a
// list (srchList: {scn_list: [...]}).
func rowsOf(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, it := range t {
			if m, ok := it.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case map[string]any:
		for _, k := range listKeys {
			if inner, ok := t[k]; ok {
				return rowsOf(inner)
			}
		}
		return []map[string]any{t}
	}
	return nil
}

// Flatten lifts the fields of nested objects to the top level. Outer fields
// win over nested ones, nested objects are visited in key order, and lists
// are kept as they are.
func Flatten(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	flattenInto(out, doc)
	return out
}

func flattenInto(out, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var nested []map[string]any
	for _, k := range keys {
		v := m[k]
		if inner, ok := v.(map[string]any); ok {
			nested = append(nested, inner)
			continue
		}
		if _, seen := out[k]; !seen {
			out[k] = v
		}
	}
	for _, inner := range nested {
		flattenInto(out, inner)
	}
}
