package render

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fogleman/gg"
	"go.uber.org/zap"

	"course-promo/internal/domain"
	"course-promo/internal/stockimage"
)

const (
	slideSize          = 1080
	slideMargin        = 80
	maxTitleLines      = 3
	maxDetailItems     = 6
	defaultContactDesk = "제주고용센터 ☎ 064-728-7201"
)

var (
	colorPrimary      = color.RGBA{0x1B, 0x4F, 0x72, 0xFF}
	colorPrimaryLight = color.RGBA{0x2E, 0x86, 0xC1, 0xFF}
	colorAccent       = color.RGBA{0xE6, 0x7E, 0x22, 0xFF}
	colorAccentBright = color.RGBA{0xF3, 0x9C, 0x12, 0xFF}
	colorBgLight      = color.RGBA{0xF8, 0xF9, 0xFA, 0xFF}
	colorTextDark     = color.RGBA{0x2C, 0x3E, 0x50, 0xFF}
	colorTextGray     = color.RGBA{0x7F, 0x8C, 0x8D, 0xFF}
	colorSuccess      = color.RGBA{0x27, 0xAE, 0x60, 0xFF}
)

// BackgroundSource supplies the cover image; stockimage.Source is the
// production implementation.
type BackgroundSource interface {
	Background(ctx context.Context, title string, w, h int) (image.Image, *stockimage.Credit)
}

// CardNewsRenderer draws the 1080x1080 Instagram slides: a cover, a
// curriculum slide when the course lists one, and a how-to-apply slide.
type CardNewsRenderer struct {
	Options
	Backgrounds BackgroundSource
	Fonts       *Fonts
	Log         *zap.Logger
}

func NewCardNewsRenderer(opts Options, bg BackgroundSource, fonts *Fonts, log *zap.Logger) *CardNewsRenderer {
	if log == nil {
		log = zap.NewNop()
	}
	if fonts == nil {
		fonts = DefaultFonts()
	}
	return &CardNewsRenderer{Options: opts, Backgrounds: bg, Fonts: fonts, Log: log}
}

func (r *CardNewsRenderer) Kind() string { return KindCardNews }

func (r *CardNewsRenderer) Render(ctx context.Context, c domain.CourseRecord, cls domain.BenefitClassification) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cover := r.path(c.Title, "1_cover.png")
	if err := os.MkdirAll(filepath.Dir(cover), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output dir for %s", cover)
	}
	v := newView(c, cls, r.now())

	var written []string
	if err := r.cover(ctx, v, cover); err != nil {
		return written, errors.Wrap(err, "cover slide")
	}
	written = append(written, cover)

	if len(c.Curriculum) > 0 {
		detail := r.path(c.Title, "2_detail.png")
		if err := r.detail(v, detail); err != nil {
			return written, errors.Wrap(err, "detail slide")
		}
		written = append(written, detail)
	}

	howto := r.path(c.Title, "3_howto.png")
	if err := r.howto(v, howto); err != nil {
		return written, errors.Wrap(err, "howto slide")
	}
	return append(written, howto), nil
}

func (r *CardNewsRenderer) cover(ctx context.Context, v view, path string) error {
	c := v.Course
	dc := gg.NewContext(slideSize, slideSize)

	var bg image.Image
	var credit *stockimage.Credit
	if r.Backgrounds != nil {
		bg, credit = r.Backgrounds.Background(ctx, c.Title, slideSize, slideSize)
	}
	if bg == nil {
		bg = stockimage.Gradient(c.Title, slideSize, slideSize)
	}
	dc.DrawImage(bg, 0, 0)
	dc.SetRGBA255(0, 0, 0, 140)
	dc.DrawRectangle(0, 0, slideSize, slideSize)
	dc.Fill()

	y := float64(slideMargin)

	// tag pill
	if err := r.use(dc, true, 30); err != nil {
		return err
	}
	tag := "제주지역 특화훈련"
	tw, _ := dc.MeasureString(tag)
	dc.SetColor(colorAccent)
	dc.DrawRoundedRectangle(slideMargin, y, tw+40, 54, 27)
	dc.Fill()
	dc.SetColor(color.White)
	dc.DrawStringAnchored(tag, slideMargin+20+tw/2, y+27, 0.5, 0.5)

	// badge
	badge := v.Benefit.BadgeText
	bw, _ := dc.MeasureString(badge)
	dc.SetColor(colorAccentBright)
	dc.DrawRoundedRectangle(slideSize-slideMargin-bw-40, y, bw+40, 54, 27)
	dc.Fill()
	dc.SetColor(colorTextDark)
	dc.DrawStringAnchored(badge, slideSize-slideMargin-20-bw/2, y+27, 0.5, 0.5)
	y += 130

	if err := r.use(dc, true, 68); err != nil {
		return err
	}
	dc.SetColor(color.White)
	for _, line := range wrapLines(dc, c.Title, slideSize-2*slideMargin, maxTitleLines) {
		dc.DrawString(line, slideMargin, y+68)
		y += 88
	}
	y += 20

	if err := r.use(dc, false, 34); err != nil {
		return err
	}
	dc.SetColor(colorBgLight)
	dc.DrawString(v.Institution, slideMargin, y+34)
	y += 80

	for _, item := range coverInfo(v) {
		dc.DrawString(item, slideMargin, y+32)
		y += 52
	}
	y += 20

	// benefit box
	if err := r.use(dc, true, 36); err != nil {
		return err
	}
	dc.SetColor(colorPrimary)
	dc.DrawRoundedRectangle(slideMargin, y, slideSize-2*slideMargin, 110, 20)
	dc.Fill()
	dc.SetColor(color.White)
	dc.DrawStringAnchored(v.Benefit.SummaryText, slideSize/2, y+55, 0.5, 0.5)

	if err := r.use(dc, false, 26); err != nil {
		return err
	}
	dc.SetColor(colorBgLight)
	dc.DrawString("제주지역인적자원개발위원회", slideMargin, slideSize-slideMargin)
	dc.DrawStringAnchored("신청 ▸ hrd.go.kr", slideSize-slideMargin, slideSize-slideMargin, 1, 0)
	if credit != nil {
		if err := r.use(dc, false, 18); err != nil {
			return err
		}
		dc.SetColor(colorTextGray)
		dc.DrawStringAnchored("Photo: "+credit.Photographer+" / Pexels", slideSize-slideMargin, slideSize-slideMargin+30, 1, 0)
		r.Log.Debug("cover photo credit", zap.String("title", c.Title), zap.String("photographer", credit.Photographer), zap.String("page", credit.PageURL))
	}
	return dc.SavePNG(path)
}

func coverInfo(v view) []string {
	items := []string{"🗓 " + v.Period}
	if h := v.Hours(); h != "" {
		items = append(items, "⏱ "+h)
	}
	if v.SelfCost != "" {
		items = append(items, "💰 자부담금 "+v.SelfCost)
	} else if v.CostText != "" {
		items = append(items, "💰 수강비 "+v.CostText)
	}
	return items
}

func (r *CardNewsRenderer) detail(v view, path string) error {
	dc := gg.NewContext(slideSize, slideSize)
	dc.SetColor(colorBgLight)
	dc.Clear()

	dc.SetColor(colorPrimary)
	dc.DrawRectangle(0, 0, slideSize, 200)
	dc.Fill()
	if err := r.use(dc, true, 60); err != nil {
		return err
	}
	dc.SetColor(color.White)
	dc.DrawStringAnchored("이런 걸 배워요", slideSize/2, 100, 0.5, 0.5)

	items := v.Course.Curriculum
	if len(items) > maxDetailItems {
		items = items[:maxDetailItems]
	}
	y := 250.0
	for i, item := range items {
		dc.SetColor(colorPrimaryLight)
		dc.DrawCircle(slideMargin+28, y+28, 28)
		dc.Fill()
		if err := r.use(dc, true, 30); err != nil {
			return err
		}
		dc.SetColor(color.White)
		dc.DrawStringAnchored(itoa(i+1), slideMargin+28, y+28, 0.5, 0.5)

		dc.SetColor(colorTextDark)
		line := wrapLines(dc, item.Title, slideSize-2*slideMargin-90, 1)
		if len(line) > 0 {
			dc.DrawString(line[0], slideMargin+80, y+30)
		}
		if item.Desc != "" {
			if err := r.use(dc, false, 24); err != nil {
				return err
			}
			dc.SetColor(colorTextGray)
			if d := wrapLines(dc, item.Desc, slideSize-2*slideMargin-90, 1); len(d) > 0 {
				dc.DrawString(d[0], slideMargin+80, y+66)
			}
		}
		y += 100
	}

	if out := strings.TrimSpace(v.Course.Outcome); out != "" {
		dc.SetColor(colorSuccess)
		dc.DrawRoundedRectangle(slideMargin, slideSize-230, slideSize-2*slideMargin, 150, 20)
		dc.Fill()
		if err := r.use(dc, true, 28); err != nil {
			return err
		}
		dc.SetColor(color.White)
		dc.DrawString("수료 후에는", slideMargin+30, slideSize-180)
		if err := r.use(dc, false, 26); err != nil {
			return err
		}
		lines := wrapLines(dc, out, slideSize-2*slideMargin-60, 2)
		for i, l := range lines {
			dc.DrawString(l, slideMargin+30, slideSize-135+float64(i)*36)
		}
	}
	return dc.SavePNG(path)
}

func (r *CardNewsRenderer) howto(v view, path string) error {
	dc := gg.NewContext(slideSize, slideSize)
	dc.SetColor(colorBgLight)
	dc.Clear()

	if err := r.use(dc, true, 60); err != nil {
		return err
	}
	dc.SetColor(colorPrimary)
	dc.DrawStringAnchored("신청 방법", slideSize/2, 130, 0.5, 0.5)

	steps := []struct{ title, desc string }{
		{"내일배움카드 발급", "고용24에서 카드 신청"},
		{"과정 검색 후 신청", "고용24에서 과정명 검색"},
		{"훈련기관 상담", v.Institution},
	}
	y := 220.0
	for i, s := range steps {
		dc.SetColor(color.White)
		dc.DrawRoundedRectangle(slideMargin, y, slideSize-2*slideMargin, 150, 20)
		dc.Fill()
		dc.SetColor(colorAccent)
		dc.DrawRoundedRectangle(slideMargin, y, 160, 150, 20)
		dc.Fill()

		if err := r.use(dc, true, 30); err != nil {
			return err
		}
		dc.SetColor(color.White)
		dc.DrawStringAnchored("STEP "+itoa(i+1), slideMargin+80, y+75, 0.5, 0.5)
		dc.SetColor(colorTextDark)
		dc.DrawString(s.title, slideMargin+200, y+65)
		if err := r.use(dc, false, 26); err != nil {
			return err
		}
		dc.SetColor(colorTextGray)
		if d := wrapLines(dc, s.desc, slideSize-2*slideMargin-230, 1); len(d) > 0 {
			dc.DrawString(d[0], slideMargin+200, y+110)
		}
		y += 180
	}

	contact := defaultContactDesk
	if v.Course.Contact != "" {
		contact = v.Course.Contact
	}
	dc.SetColor(colorPrimary)
	dc.DrawRoundedRectangle(slideMargin, slideSize-250, slideSize-2*slideMargin, 150, 20)
	dc.Fill()
	if err := r.use(dc, true, 28); err != nil {
		return err
	}
	dc.SetColor(color.White)
	dc.DrawString("문의", slideMargin+30, slideSize-200)
	if err := r.use(dc, false, 28); err != nil {
		return err
	}
	if lines := wrapLines(dc, contact, slideSize-2*slideMargin-60, 1); len(lines) > 0 {
		dc.DrawString(lines[0], slideMargin+30, slideSize-145)
	}
	return dc.SavePNG(path)
}

func (r *CardNewsRenderer) use(dc *gg.Context, bold bool, size float64) error {
	face, err := r.Fonts.face(bold, size)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	return nil
}

// wrapLines word-wraps s to width and keeps at most max lines, marking a cut
// with an ellipsis. Runs without spaces are broken by rune.
func wrapLines(dc *gg.Context, s string, width float64, max int) []string {
	var lines []string
	for _, l := range dc.WordWrap(strings.TrimSpace(s), width) {
		lines = append(lines, breakRunes(dc, l, width)...)
	}
	if len(lines) <= max {
		return lines
	}
	lines = lines[:max]
	last := []rune(lines[max-1])
	for len(last) > 0 {
		if w, _ := dc.MeasureString(string(last) + "…"); w <= width {
			break
		}
		last = last[:len(last)-1]
	}
	lines[max-1] = string(last) + "…"
	return lines
}

func breakRunes(dc *gg.Context, s string, width float64) []string {
	if w, _ := dc.MeasureString(s); w <= width {
		return []string{s}
	}
	var out []string
	var cur []rune
	for _, r := range s {
		if w, _ := dc.MeasureString(string(append(cur, r))); w > width && len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}
