package httpx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleURL = "https://example.com"

type mockRoundTripper struct {
	responses []*http.Response
	errors    []error
	index     int
	seen      []*http.Request
	mux       sync.Mutex
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mux.Lock()
	defer m.mux.Unlock()

	m.seen = append(m.seen, req)
	if m.index >= len(m.responses) {
		return nil, errors.New("no more responses")
	}
	resp, err := m.responses[m.index], m.errors[m.index]
	m.index++
	return resp, err
}

func newMockClient(responses []*http.Response, errs []error) (*http.Client, *mockRoundTripper) {
	for len(errs) < len(responses) {
		errs = append(errs, nil)
	}
	rt := &mockRoundTripper{responses: responses, errors: errs}
	return &http.Client{Transport: rt}, rt
}

func newMockResponse(statusCode int, body []byte, headers map[string]string) *http.Response {
	header := http.Header{}
	for k, v := range headers {
		header.Set(k, v)
	}
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     header,
	}
}

func getReq(ctx context.Context) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodGet, exampleURL, nil)
}

func fastRetry() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	return cfg
}

func TestSnippet(t *testing.T) {
	testCases := []struct {
		input    string
		max      int
		expected string
	}{
		{"short text", 100, "short text"},
		{"", 100, ""},
		{"  trimmed  ", 100, "trimmed"},
		{"long text that should be truncated", 10, "long text …"},
		{"제주 디지털 훈련", 2, "제주…"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Snippet([]byte(tc.input), tc.max), tc.input)
	}
}

func TestHTTPError(t *testing.T) {
	err := &HTTPError{Method: "GET", URL: exampleURL, StatusCode: 404, Body: []byte("Not Found")}
	assert.Equal(t, "http error: GET https://example.com status=404 body=Not Found", err.Error())
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML([]byte("  <!DOCTYPE html><html></html>")))
	assert.True(t, LooksLikeHTML([]byte("<HTML><body>error</body>")))
	assert.False(t, LooksLikeHTML([]byte(`{"srchList": []}`)))
	assert.False(t, LooksLikeHTML([]byte(`<?xml version="1.0"?><HRDNet/>`)))
}

func TestDoWithRetrySuccess(t *testing.T) {
	client, rt := newMockClient([]*http.Response{newMockResponse(200, []byte("ok"), nil)}, nil)

	resp, body, err := DoWithRetry(context.Background(), client, getReq, fastRetry())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
	require.Len(t, rt.seen, 1)
	assert.Equal(t, "br, gzip", rt.seen[0].Header.Get("Accept-Encoding"))
}

func TestDoWithRetryBuildError(t *testing.T) {
	client, _ := newMockClient(nil, nil)
	build := func(context.Context) (*http.Request, error) { return nil, errors.New("bad url") }

	_, _, err := DoWithRetry(context.Background(), client, build, fastRetry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build request")
}

func TestDoWithRetryNonRetryableStatus(t *testing.T) {
	client, rt := newMockClient([]*http.Response{newMockResponse(400, []byte("bad"), nil)}, nil)

	resp, _, err := DoWithRetry(context.Background(), client, getReq, fastRetry())
	var herr *HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, 400, herr.StatusCode)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Len(t, rt.seen, 1)
}

func TestDoWithRetryRetriesThenSucceeds(t *testing.T) {
	client, rt := newMockClient([]*http.Response{
		newMockResponse(429, nil, map[string]string{"Retry-After": "0"}),
		newMockResponse(503, nil, nil),
		newMockResponse(200, []byte("done"), nil),
	}, nil)

	_, body, err := DoWithRetry(context.Background(), client, getReq, fastRetry())
	require.NoError(t, err)
	assert.Equal(t, "done", string(body))
	assert.Len(t, rt.seen, 3)
}

func TestDoWithRetryGivesUpAfterMaxAttempts(t *testing.T) {
	cfg := fastRetry()
	cfg.MaxAttempts = 2
	client, rt := newMockClient([]*http.Response{
		newMockResponse(502, []byte("gw"), nil),
		newMockResponse(502, []byte("gw"), nil),
	}, nil)

	_, _, err := DoWithRetry(context.Background(), client, getReq, cfg)
	var herr *HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, 502, herr.StatusCode)
	assert.Len(t, rt.seen, 2)
}

func TestDoWithRetryRedactsAuthKey(t *testing.T) {
	client, _ := newMockClient([]*http.Response{newMockResponse(401, nil, nil)}, nil)
	build := func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, exampleURL+"/api?authKey=secret&pageNum=1", nil)
	}

	_, _, err := DoWithRetry(context.Background(), client, build, fastRetry())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
	assert.Contains(t, err.Error(), "authKey=REDACTED&pageNum=1")
}

func TestDoWithRetryDecodesBrotli(t *testing.T) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	_, err := bw.Write([]byte(`{"srchList":[]}`))
	require.NoError(t, err)
	require.NoError(t, bw.Close())

	client, _ := newMockClient([]*http.Response{
		newMockResponse(200, buf.Bytes(), map[string]string{"Content-Encoding": "br"}),
	}, nil)

	_, body, err := DoWithRetry(context.Background(), client, getReq, fastRetry())
	require.NoError(t, err)
	assert.Equal(t, `{"srchList":[]}`, string(body))
}

func TestDoWithRetryDecodesGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("<HRDNet></HRDNet>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	client, _ := newMockClient([]*http.Response{
		newMockResponse(200, buf.Bytes(), map[string]string{"Content-Encoding": "gzip"}),
	}, nil)

	_, body, err := DoWithRetry(context.Background(), client, getReq, fastRetry())
	require.NoError(t, err)
	assert.Equal(t, "<HRDNet></HRDNet>", string(body))
}

func TestDoJSON(t *testing.T) {
	client, _ := newMockClient([]*http.Response{newMockResponse(200, []byte(`{"count": 3}`), nil)}, nil)

	var out struct {
		Count int `json:"count"`
	}
	require.NoError(t, DoJSON(context.Background(), client, getReq, &out, fastRetry()))
	assert.Equal(t, 3, out.Count)
}

func TestDoJSONRejectsHTML(t *testing.T) {
	client, _ := newMockClient([]*http.Response{newMockResponse(200, []byte("<html>login</html>"), nil)}, nil)

	var out map[string]any
	err := DoJSON(context.Background(), client, getReq, &out, fastRetry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got html")
}

func TestWaitHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := wait(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryDelay(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}

	assert.Equal(t, 5*time.Second, cfg.delay(1, 5*time.Second))

	d := cfg.delay(3, 0)
	assert.GreaterOrEqual(t, d, 300*time.Millisecond)
	assert.Less(t, d, 700*time.Millisecond)
}

func TestParseRetryAfter(t *testing.T) {
	resp := newMockResponse(429, nil, map[string]string{"Retry-After": "3"})
	assert.Equal(t, 3*time.Second, ParseRetryAfter(resp))

	resp = newMockResponse(429, nil, map[string]string{"Retry-After": "soon"})
	assert.Zero(t, ParseRetryAfter(resp))

	resp = newMockResponse(429, nil, nil)
	assert.Zero(t, ParseRetryAfter(resp))
}
