// Package stockimage supplies card-news background images: a Pexels photo
// matched to the course title, or a themed gradient when none is available.
package stockimage

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/url"
	"strconv"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/cockroachdb/errors"

	"course-promo/internal/httpx"
)

const DefaultPexelsURL = "https://api.pexels.com/v1"

// Photo is the subset of a Pexels search hit we use.
type Photo struct {
	ID              int64  `json:"id"`
	URL             string `json:"url"`
	Photographer    string `json:"photographer"`
	PhotographerURL string `json:"photographer_url"`
	Src             struct {
		Original string `json:"original"`
		Large2x  string `json:"large2x"`
		Large    string `json:"large"`
	} `json:"src"`
}

// DownloadURL prefers the largest web-sized rendition.
func (p Photo) DownloadURL() string {
	switch {
	case p.Src.Large2x != "":
		return p.Src.Large2x
	case p.Src.Large != "":
		return p.Src.Large
	}
	return p.Src.Original
}

type searchResponse struct {
	Photos []Photo `json:"photos"`
}

// Client talks to the Pexels API.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Retry   httpx.RetryConfig
}

func NewClient(token string) *Client {
	retry := httpx.DefaultRetryConfig()
	retry.MaxAttempts = 2
	return &Client{
		BaseURL: DefaultPexelsURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Retry:   retry,
	}
}

// Search returns up to perPage photos for query.
func (c *Client) Search(ctx context.Context, query, orientation string, perPage int) ([]Photo, error) {
	q := url.Values{}
	q.Set("query", query)
	if orientation != "" {
		q.Set("orientation", orientation)
	}
	q.Set("size", "large")
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", "1")

	var out searchResponse
	err := httpx.DoJSON(ctx, c.HTTP, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/search?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		r.Header.Set("Authorization", c.Token)
		r.Header.Set("Accept", "application/json")
		return r, nil
	}, &out, c.Retry)
	if err != nil {
		return nil, errors.Wrapf(err, "pexels: search %q", query)
	}
	return out.Photos, nil
}

// Download fetches and decodes one image.
func (c *Client) Download(ctx context.Context, imageURL string) (image.Image, error) {
	_, body, err := httpx.DoWithRetry(ctx, c.HTTP, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	}, c.Retry)
	if err != nil {
		return nil, errors.Wrap(err, "pexels: download")
	}
	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "pexels: decode image")
	}
	return img, nil
}
