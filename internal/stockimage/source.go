package stockimage

import (
	"context"
	"image"
	"time"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"course-promo/internal/variant"
)

const (
	searchTimeout   = 15 * time.Second
	downloadTimeout = 30 * time.Second
	searchPerPage   = 5
)

// Credit attributes a stock photo.
type Credit struct {
	PhotoID         int64
	Photographer    string
	PhotographerURL string
	PageURL         string
}

// Source resolves a background for a course title. A nil Client means no
// token was configured and every background is a gradient.
type Source struct {
	Client *Client
	Log    *zap.Logger
}

func NewSource(token string, log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Source{Log: log}
	if token != "" {
		s.Client = NewClient(token)
	}
	return s
}

// Background returns a w x h image for title and the photo credit, or a
// gradient and nil when no photo could be used.
func (s *Source) Background(ctx context.Context, title string, w, h int) (image.Image, *Credit) {
	if s == nil || s.Client == nil {
		return Gradient(title, w, h), nil
	}

	query := SearchQuery(title)
	img, credit, err := s.photo(ctx, query, orientation(w, h))
	if err != nil {
		s.Log.Warn("stock photo unavailable, using gradient", zap.String("title", title), zap.String("query", query), zap.Error(err))
		return Gradient(title, w, h), nil
	}
	if img == nil {
		s.Log.Info("no stock photo results, using gradient", zap.String("title", title), zap.String("query", query))
		return Gradient(title, w, h), nil
	}
	return CropCenter(img, w, h), credit
}

func (s *Source) photo(ctx context.Context, query, orient string) (image.Image, *Credit, error) {
	sctx, cancel := context.WithTimeout(ctx, searchTimeout)
	photos, err := s.Client.Search(sctx, query, orient, searchPerPage)
	cancel()
	if err != nil {
		return nil, nil, err
	}
	if len(photos) == 0 {
		return nil, nil, nil
	}

	p := photos[variant.Index(query, len(photos))]
	dctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()
	img, err := s.Client.Download(dctx, p.DownloadURL())
	if err != nil {
		return nil, nil, err
	}
	return img, &Credit{
		PhotoID:         p.ID,
		Photographer:    p.Photographer,
		PhotographerURL: p.PhotographerURL,
		PageURL:         p.URL,
	}, nil
}

func orientation(w, h int) string {
	switch {
	case w > h:
		return "landscape"
	case h > w:
		return "portrait"
	}
	return "square"
}

// CropCenter scales img to cover w x h and crops the overflow evenly.
func CropCenter(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	iw, ih := b.Dx(), b.Dy()
	if iw == 0 || ih == 0 {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}

	var nw, nh int
	if float64(iw)/float64(ih) > float64(w)/float64(h) {
		nh = h
		nw = iw * h / ih
	} else {
		nw = w
		nh = ih * w / iw
	}
	if nw < w {
		nw = w
	}
	if nh < h {
		nh = h
	}

	scaled := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)

	x0, y0 := (nw-w)/2, (nh-h)/2
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), scaled, image.Point{X: x0, Y: y0}, draw.Src)
	return dst
}

// Gradient draws a diagonal two-colour gradient themed by title keywords,
// with a few translucent circles on top.
func Gradient(title string, w, h int) image.Image {
	th := themeFor(title)
	fw, fh := float64(w), float64(h)

	dc := gg.NewContext(w, h)
	grad := gg.NewLinearGradient(0, 0, fw, fh)
	grad.AddColorStop(0, th.from)
	grad.AddColorStop(1, th.to)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, fw, fh)
	dc.Fill()

	for _, c := range []struct{ x, y, r, alpha float64 }{
		{0.8, 0.2, 200, 30},
		{0.1, 0.7, 150, 20},
		{0.6, 0.8, 100, 15},
	} {
		dc.SetRGBA255(255, 255, 255, int(c.alpha))
		dc.DrawCircle(fw*c.x, fh*c.y, c.r*fw/1080)
		dc.Fill()
	}
	return dc.Image()
}
