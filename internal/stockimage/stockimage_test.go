package stockimage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSearchQuery(t *testing.T) {
	assert.Equal(t, "coffee barista cafe", SearchQuery("바리스타 실무 과정"))
	assert.Equal(t, "drone aerial photography", SearchQuery("드론 항공촬영 전문가"))
	assert.Equal(t, "tour guide travel", SearchQuery("제주 관광가이드 양성"))
	assert.Equal(t, "artificial intelligence technology", SearchQuery("생성형 AI 영상 제작"))

	fallback := SearchQuery("세무 실무")
	assert.Contains(t, fallbackQueries, fallback)
	assert.Equal(t, fallback, SearchQuery("세무 실무"))
}

func TestGradientIsThemedAndDeterministic(t *testing.T) {
	a := Gradient("바리스타", 200, 100)
	b := Gradient("바리스타", 200, 100)

	assert.Equal(t, image.Rect(0, 0, 200, 100), a.Bounds())
	assert.Equal(t, a, b)

	r, g, bl, _ := a.At(0, 0).RGBA()
	assert.InDelta(t, 62, r>>8, 3)
	assert.InDelta(t, 39, g>>8, 3)
	assert.InDelta(t, 35, bl>>8, 3)
}

func TestCropCenter(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for x := 0; x < 400; x++ {
		for y := 0; y < 200; y++ {
			c := color.RGBA{A: 255}
			if x >= 100 && x < 300 {
				c.R = 255
			}
			src.Set(x, y, c)
		}
	}

	out := CropCenter(src, 100, 100)
	assert.Equal(t, image.Rect(0, 0, 100, 100), out.Bounds())

	// the wide image loses its dark sides; the centre stays red
	r, _, _, _ := out.At(50, 50).RGBA()
	assert.Greater(t, r>>8, uint32(200))
}

func TestBackgroundWithoutTokenUsesGradient(t *testing.T) {
	img, credit := NewSource("", nil).Background(context.Background(), "AI 영상", 108, 108)
	assert.Nil(t, credit)
	assert.Equal(t, image.Rect(0, 0, 108, 108), img.Bounds())
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestBackgroundFromPexels(t *testing.T) {
	img := pngBytes(t, 64, 48)
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/search":
			assert.Equal(t, "token-1", r.Header.Get("Authorization"))
			assert.Equal(t, "coffee barista cafe", r.URL.Query().Get("query"))
			assert.Equal(t, "square", r.URL.Query().Get("orientation"))
			fmt.Fprintf(w, `{"photos": [
				{"id": 1, "url": "https://pexels.test/p/1", "photographer": "Kim", "src": {"large": "%[1]s/img/1"}},
				{"id": 2, "url": "https://pexels.test/p/2", "photographer": "Kim", "src": {"large": "%[1]s/img/2"}}
			]}`, srv.URL)
		default:
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(img)
		}
	}))
	defer srv.Close()

	s := NewSource("token-1", zap.NewNop())
	s.Client.BaseURL = srv.URL + "/v1"

	out, credit := s.Background(context.Background(), "바리스타 실무", 32, 32)
	require.NotNil(t, credit)
	assert.Equal(t, "Kim", credit.Photographer)
	assert.Contains(t, []int64{1, 2}, credit.PhotoID)
	assert.Equal(t, image.Rect(0, 0, 32, 32), out.Bounds())

	_, again := s.Background(context.Background(), "바리스타 실무", 32, 32)
	require.NotNil(t, again)
	assert.Equal(t, credit.PhotoID, again.PhotoID)
}

func TestBackgroundFallsBackOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewSource("bad-token", nil)
	s.Client.BaseURL = srv.URL

	img, credit := s.Background(context.Background(), "드론", 50, 50)
	assert.Nil(t, credit)
	assert.Equal(t, image.Rect(0, 0, 50, 50), img.Bounds())
}

func TestBackgroundNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"photos": []}`))
	}))
	defer srv.Close()

	s := NewSource("token", nil)
	s.Client.BaseURL = srv.URL

	_, credit := s.Background(context.Background(), "세무", 20, 20)
	assert.Nil(t, credit)
}
