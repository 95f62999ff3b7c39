package render

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-promo/internal/benefits"
	"course-promo/internal/domain"
	"course-promo/internal/stockimage"
)

var fixedNow = func() time.Time { return time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC) }

func sampleCourse() domain.CourseRecord {
	return domain.CourseRecord{
		CourseID:        "C1",
		SessionNumber:   "1",
		StartDate:       "20260401",
		EndDate:         "20260930",
		Title:           "생성형 AI 영상 콘텐츠 제작",
		InstitutionName: "제주디지털아카데미",
		Period:          "2026.04.01 ~ 2026.09.30",
		TotalHours:      400,
		CostWon:         1_250_000,
		SelfCost:        "125,000원",
		Capacity:        20,
		Contact:         "제주디지털아카데미 Tel: 064-123-4567",
		DetailURL:       "https://www.work24.go.kr/detail?tracseId=C1",
		TrainingGoal:    "생성형 AI 도구로 영상 콘텐츠를 기획하고 제작한다. 포트폴리오를 완성한다.",
		Target:          "내일배움카드 있으면 누구나",
		Outcome:         "영상 콘텐츠 제작 실무 역량",
		Curriculum: []domain.CurriculumItem{
			{Title: "프롬프트 설계", Desc: "이미지와 영상 생성"},
			{Title: "숏폼 편집"},
		},
	}
}

func classify(c domain.CourseRecord) domain.BenefitClassification {
	return benefits.NewClassifier(domain.RegionNonCapital).Classify(c)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "AI_영상_편집", SafeName("AI 영상/편집"))
	long := strings.Repeat("가", 40)
	assert.Len(t, []rune(SafeName(long)), 30)
	assert.Equal(t, filepath.Join("out", "AI_과정_blog.md"), ArtifactPath("out", "AI 과정", "blog.md"))
}

func TestDetectFieldOrder(t *testing.T) {
	assert.Equal(t, FieldAI, DetectField("생성형 AI 영상 편집"))
	assert.Equal(t, FieldVideo, DetectField("영상 디자인 실무"))
	assert.Equal(t, FieldDesign, DetectField("UI/UX 디자인"))
	assert.Equal(t, FieldCoding, DetectField("파이썬 프로그래밍"))
	assert.Equal(t, FieldDefault, DetectField("바리스타 실무"))
	assert.Equal(t, "전문 기술", FieldDefault.Display())
}

func TestInstagramHashtags(t *testing.T) {
	tags := InstagramHashtags(FieldAI, 2026)
	assert.LessOrEqual(t, len(tags), 20)
	assert.Contains(t, tags, "#AI교육")
	assert.Contains(t, tags, "#제주")

	seen := map[string]bool{}
	for _, tag := range tags {
		assert.False(t, seen[tag], tag)
		seen[tag] = true
	}
}

func TestSEOKeywords(t *testing.T) {
	kws := SEOKeywords("바리스타 자격증", "", "", 2026)
	assert.Contains(t, kws, "바리스타자격증")
	assert.Contains(t, kws, "국비지원무료교육")
	assert.Contains(t, kws, "2026국비지원")
	assert.IsIncreasing(t, kws)
}

func TestFormatWon(t *testing.T) {
	assert.Equal(t, "1,250,000원", FormatWon(1_250_000))
	assert.Equal(t, "500원", FormatWon(500))
	assert.Equal(t, "96,000원", FormatWon(96_000))
}

func TestBlogRendererWritesMarkdownAndHTML(t *testing.T) {
	dir := t.TempDir()
	c := sampleCourse()
	r := NewBlogRenderer(Options{OutputDir: dir, Now: fixedNow})
	assert.Equal(t, KindBlog, r.Kind())

	files, err := r.Render(context.Background(), c, classify(c))
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.True(t, strings.HasSuffix(files[0], "_blog.md"))
	assert.True(t, strings.HasSuffix(files[1], "_blog_naver.html"))

	md := readFile(t, files[0])
	assert.Contains(t, md, "| 과정명 | 생성형 AI 영상 콘텐츠 제작 |")
	assert.Contains(t, md, "| 수강비 | 1,250,000원 |")
	assert.Contains(t, md, "**자부담 최대 10%**")
	assert.Contains(t, md, "1. **프롬프트 설계** - 이미지와 영상 생성")
	assert.Contains(t, md, "직업훈련 생계비 대부")
	assert.Contains(t, md, "작성일: 2026년 02월 10일")
	assert.Contains(t, md, "#2026국민내일배움카드")

	html := readFile(t, files[1])
	assert.Contains(t, html, "<strong>자부담 최대 10%</strong>")
	assert.Contains(t, html, "<li><strong>숏폼 편집</strong></li>")
	assert.NotContains(t, html, "**")
}

func TestBlogRendererEscapesHTMLAndSkipsEmptySections(t *testing.T) {
	dir := t.TempDir()
	c := domain.CourseRecord{Title: "AI & 데이터 분석", TotalHours: 80}
	files, err := NewBlogRenderer(Options{OutputDir: dir, Now: fixedNow}).Render(context.Background(), c, classify(c))
	require.NoError(t, err)

	html := readFile(t, files[1])
	assert.Contains(t, html, "AI &amp; 데이터 분석")
	assert.NotContains(t, html, "이런 걸 배워요")

	md := readFile(t, files[0])
	assert.NotContains(t, md, "이런 걸 배워요")
	assert.NotContains(t, md, "생계비 대부")
	assert.Contains(t, md, "| 훈련기관 | 교육기관 |")
}

func TestCaptionRenderer(t *testing.T) {
	dir := t.TempDir()
	c := sampleCourse()
	files, err := NewCaptionRenderer(Options{OutputDir: dir, Now: fixedNow}).Render(context.Background(), c, classify(c))
	require.NoError(t, err)
	require.Len(t, files, 1)

	text := readFile(t, files[0])
	assert.True(t, strings.HasPrefix(text, "🤖 AI 시대"))
	assert.Contains(t, text, "💰 자부담금 125,000원 (수강비 1,250,000원)")
	assert.Contains(t, text, "🎁 400시간 장기과정! 장려금+수당 월 최대 40만원")
	assert.Contains(t, text, "→ 생성형 AI 도구로 영상 콘텐츠를 기획하고 제작한다")
	assert.Contains(t, text, "#2026교육")
}

func TestCaptionUnknownHoursHasNoAmounts(t *testing.T) {
	dir := t.TempDir()
	c := domain.CourseRecord{Title: "바리스타"}
	files, err := NewCaptionRenderer(Options{OutputDir: dir, Now: fixedNow}).Render(context.Background(), c, classify(c))
	require.NoError(t, err)

	text := readFile(t, files[0])
	assert.Contains(t, text, "🎁 특화훈련 혜택으로 부담 없이 배울 수 있어요")
	assert.NotContains(t, text, "만원")
}

func TestReelsScriptIsDeterministic(t *testing.T) {
	c := sampleCourse()
	a := t.TempDir()
	b := t.TempDir()
	fa, err := NewReelsRenderer(Options{OutputDir: a, Now: fixedNow}).Render(context.Background(), c, classify(c))
	require.NoError(t, err)
	fb, err := NewReelsRenderer(Options{OutputDir: b, Now: fixedNow}).Render(context.Background(), c, classify(c))
	require.NoError(t, err)

	script := readFile(t, fa[0])
	assert.Equal(t, script, readFile(t, fb[0]))
	assert.Contains(t, script, "포맷 A")
	assert.Contains(t, script, "포맷 B")
	assert.Contains(t, script, "포맷 C")
	assert.Contains(t, script, "매달 최대 40만원")
}

func TestPostingGuideSchedule(t *testing.T) {
	guide := PostingGuide(domain.CourseRecord{Title: "x", StartDate: "20260401"})
	assert.Contains(t, guide, "1차 (D-21, 03/11)")
	assert.Contains(t, guide, "2차 (D-14, 03/18)")
	assert.Contains(t, guide, "3차 (D-7, 03/25)")
	assert.Contains(t, guide, "4차 (D-3, 03/29)")

	generic := PostingGuide(domain.CourseRecord{Title: "x"})
	assert.Contains(t, generic, "1차: 과정 공개 후 즉시")
	assert.NotContains(t, generic, "D-21")
}

type stubBackground struct{ calls int }

func (s *stubBackground) Background(_ context.Context, title string, w, h int) (image.Image, *stockimage.Credit) {
	s.calls++
	return stockimage.Gradient(title, w, h), &stockimage.Credit{Photographer: "Tester"}
}

func TestCardNewsRendererSlides(t *testing.T) {
	dir := t.TempDir()
	bg := &stubBackground{}
	r := NewCardNewsRenderer(Options{OutputDir: dir, Now: fixedNow}, bg, nil, nil)
	assert.Equal(t, KindCardNews, r.Kind())

	c := sampleCourse()
	files, err := r.Render(context.Background(), c, classify(c))
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.True(t, strings.HasSuffix(files[0], "_1_cover.png"))
	assert.True(t, strings.HasSuffix(files[1], "_2_detail.png"))
	assert.True(t, strings.HasSuffix(files[2], "_3_howto.png"))
	assert.Equal(t, 1, bg.calls)

	f, err := os.Open(files[0])
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, slideSize, cfg.Width)
	assert.Equal(t, slideSize, cfg.Height)
}

func TestCardNewsSkipsDetailWithoutCurriculum(t *testing.T) {
	dir := t.TempDir()
	c := sampleCourse()
	c.Curriculum = nil

	files, err := NewCardNewsRenderer(Options{OutputDir: dir}, nil, nil, nil).Render(context.Background(), c, classify(c))
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.True(t, strings.HasSuffix(files[1], "_3_howto.png"))
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := sampleCourse()
	_, err := NewBlogRenderer(Options{OutputDir: t.TempDir()}).Render(ctx, c, classify(c))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFontsMissingFile(t *testing.T) {
	_, err := LoadFonts(filepath.Join(t.TempDir(), "missing.ttf"), "", nil)
	assert.Error(t, err)
}
