package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
)

// HTTPError carries status/body for non-2xx responses.
// It lets callers decide if/when to retry.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, Snippet(e.Body, 900))
}

// Snippet trims and truncates a body for logs and error messages.
func Snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}

// LooksLikeHTML detects gateway/error pages served instead of API payloads.
// Work24 answers an invalid auth key or a moved endpoint with an HTML page and
// status 200.
func LooksLikeHTML(b []byte) bool {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	return strings.HasPrefix(s, "<!doctype html") || strings.HasPrefix(s, "<html") || strings.HasPrefix(s, "<htm")
}

// RetryConfig controls retry behavior.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// Retry5xx retries any 5xx on top of RetryStatuses.
	Retry5xx      bool
	RetryStatuses map[int]bool
}

// DefaultRetryConfig is sized for a scheduled batch run: a handful of attempts
// so an outage degrades the run instead of stalling it.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   700 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Retry5xx:    true,
		RetryStatuses: map[int]bool{
			http.StatusRequestTimeout:     true,
			http.StatusTooEarly:           true,
			http.StatusTooManyRequests:    true,
			http.StatusBadGateway:         true,
			http.StatusServiceUnavailable: true,
			http.StatusGatewayTimeout:     true,
		},
	}
}

func (cfg RetryConfig) withDefaults() RetryConfig {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.RetryStatuses == nil {
		cfg.RetryStatuses = def.RetryStatuses
	}
	return cfg
}

func (cfg RetryConfig) retryStatus(code int) bool {
	return cfg.RetryStatuses[code] || (cfg.Retry5xx && code >= 500 && code <= 599)
}

// delay is exponential from BaseDelay, capped at MaxDelay, plus up to 400ms
// of jitter. A server-sent Retry-After wins.
func (cfg RetryConfig) delay(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}
	d := min(cfg.BaseDelay<<(attempt-1), cfg.MaxDelay)
	return d + time.Duration(rand.IntN(400))*time.Millisecond
}

// outcome is one attempt. retry is set when another attempt may succeed.
type outcome struct {
	resp       *http.Response
	body       []byte
	err        error
	retry      bool
	retryAfter time.Duration
}

// DoWithRetry executes a request (built by buildReq) with retries.
// It always reads the full body (even on error) so the underlying TCP connection
// can be reused by http.Transport. Brotli and gzip bodies are decoded.
func DoWithRetry(
	ctx context.Context,
	client *http.Client,
	buildReq func(context.Context) (*http.Request, error),
	cfg RetryConfig,
) (*http.Response, []byte, error) {
	cfg = cfg.withDefaults()

	for attempt := 1; ; attempt++ {
		req, err := buildReq(ctx)
		if err != nil {
			return nil, nil, errors.Wrap(err, "build request")
		}
		out := do(client, req, cfg)
		if !out.retry || attempt >= cfg.MaxAttempts {
			return out.resp, out.body, out.err
		}
		if err := wait(ctx, cfg.delay(attempt, out.retryAfter)); err != nil {
			return nil, nil, err
		}
	}
}

func do(client *http.Client, req *http.Request, cfg RetryConfig) outcome {
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "br, gzip")
	}

	resp, err := client.Do(req)
	if err != nil {
		return outcome{err: err, retry: isRetryableNetErr(err)}
	}

	body, err := readBody(resp)
	if err != nil {
		if isRetryableNetErr(err) {
			return outcome{err: err, retry: true}
		}
		return outcome{resp: resp, body: body, err: err}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return outcome{resp: resp, body: body}
	}

	return outcome{
		resp: resp,
		body: body,
		err: &HTTPError{
			Method:     req.Method,
			URL:        redactURL(req.URL.String()),
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       body,
		},
		retry:      cfg.retryStatus(resp.StatusCode),
		retryAfter: ParseRetryAfter(resp),
	}
}

// readBody drains and closes the body, undoing any content encoding the
// server applied because we asked for it.
func readBody(resp *http.Response) ([]byte, error) {
	raw, err := readAndClose(resp.Body)
	if err != nil {
		return raw, err
	}
	return decodeBody(resp.Header.Get("Content-Encoding"), raw)
}

func decodeBody(encoding string, raw []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return raw, nil
	case "br":
		out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(raw)))
		if err != nil {
			return nil, errors.Wrap(err, "decode brotli body")
		}
		return out, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, errors.Wrap(err, "open gzip body")
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, errors.Wrap(err, "decode gzip body")
		}
		return out, nil
	}
	return raw, nil
}

func readAndClose(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	return io.ReadAll(rc)
}

// redactURL hides the authKey query parameter so API tokens never reach logs.
func redactURL(u string) string {
	i := strings.Index(u, "authKey=")
	if i < 0 {
		return u
	}
	j := strings.IndexByte(u[i:], '&')
	if j < 0 {
		return u[:i] + "authKey=REDACTED"
	}
	return u[:i] + "authKey=REDACTED" + u[i+j:]
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isRetryableNetErr(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		return nerr.Timeout()
	}

	// common transient I/O errors
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection reset") || strings.Contains(msg, "broken pipe") || strings.Contains(msg, "eof") {
		return true
	}
	return false
}

// ParseRetryAfter parses Retry-After header (seconds or HTTP date).
// Returns 0 when header is missing/invalid.
func ParseRetryAfter(resp *http.Response) time.Duration {
	v := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			return 0
		}
		return d
	}
	return 0
}

// DoJSON is a convenience wrapper over DoWithRetry that unmarshals JSON.
func DoJSON(
	ctx context.Context,
	client *http.Client,
	buildReq func(context.Context) (*http.Request, error),
	out any,
	cfg RetryConfig,
) error {
	_, body, err := DoWithRetry(ctx, client, buildReq, cfg)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if LooksLikeHTML(body) {
		return errors.Newf("expected json, got html: %s", Snippet(body, 300))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "json parse error body=%s", Snippet(body, 900))
	}
	return nil
}
