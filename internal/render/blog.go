package render

import (
	"bytes"
	"context"
	"embed"
	htmltemplate "html/template"
	"regexp"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"

	"course-promo/internal/domain"
	"course-promo/internal/variant"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	blogMarkdown = template.Must(template.New("blog.md.tmpl").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/blog.md.tmpl"))

	blogNaver = htmltemplate.Must(htmltemplate.New("blog_naver.html.tmpl").Funcs(htmltemplate.FuncMap{
		"inc":  func(i int) int { return i + 1 },
		"rich": richText,
	}).ParseFS(templateFS, "templates/blog_naver.html.tmpl"))
)

// BlogRenderer writes the SEO blog post as Markdown and as HTML ready to paste
// into the Naver blog editor.
type BlogRenderer struct {
	Options
}

func NewBlogRenderer(opts Options) *BlogRenderer {
	return &BlogRenderer{Options: opts}
}

func (r *BlogRenderer) Kind() string { return KindBlog }

func (r *BlogRenderer) Render(ctx context.Context, c domain.CourseRecord, cls domain.BenefitClassification) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bv := newBlogView(newView(c, cls, r.now()))

	var md bytes.Buffer
	if err := blogMarkdown.Execute(&md, bv); err != nil {
		return nil, errors.Wrap(err, "render blog markdown")
	}
	var html bytes.Buffer
	if err := blogNaver.Execute(&html, bv); err != nil {
		return nil, errors.Wrap(err, "render blog html")
	}

	mdPath := r.path(c.Title, "blog.md")
	htmlPath := r.path(c.Title, "blog_naver.html")
	if err := writeText(mdPath, md.String()); err != nil {
		return nil, err
	}
	if err := writeText(htmlPath, html.String()); err != nil {
		return []string{mdPath}, err
	}
	return []string{mdPath, htmlPath}, nil
}

type blogView struct {
	view
	SEOTitle  string
	Intro     string
	Why       string
	Recommend []string
	Steps     []applyStep
	Keywords  []string
	Hashtags  string
}

type applyStep struct {
	Title string
	Desc  string
}

func newBlogView(v view) blogView {
	c := v.Course
	return blogView{
		view:      v,
		SEOTitle:  seoTitle(v),
		Intro:     variant.Pick(c.Title, empathyIntros(v.Field)...),
		Why:       whyText(v),
		Recommend: recommendList(v),
		Steps: []applyStep{
			{"국민내일배움카드 준비", "카드가 없다면 고용24(work24.go.kr)에서 먼저 발급 신청하세요. 발급까지 1~2주 걸릴 수 있어요."},
			{"고용24에서 과정 검색", "고용24에 로그인한 뒤 '" + c.Title + "'을 검색해 수강 신청을 진행하세요."},
			{"훈련기관 상담", v.Institution + "에 연락해 상담 일정과 선발 절차를 확인하면 신청이 끝나요."},
		},
		Keywords: SEOKeywords(c.Title, c.TrainingGoal, c.NCSName, v.Year),
		Hashtags: BlogHashtags(c.Title, v.Field, v.Year),
	}
}

func seoTitle(v view) string {
	t := v.Course.Title
	return variant.Pick(t,
		"[제주 무료교육] "+t+" | 국민내일배움카드 자부담 10%",
		"제주 국비지원 "+v.Field.Display()+" 교육 "+t+" 모집 ("+itoa(v.Year)+")",
		t+" 후기 전에 꼭 볼 정보: 혜택, 비용, 신청 방법 총정리",
	)
}

func empathyIntros(f Field) []string {
	switch f {
	case FieldAI:
		return []string{
			"요즘 어디서든 AI 이야기가 빠지지 않죠. 배워야 한다는 건 알지만 어디서부터 시작할지 막막하셨다면 이 과정을 눈여겨보세요.",
			"ChatGPT 한 번쯤 써 보셨죠? 이제는 쓰는 것을 넘어 업무에 제대로 활용하는 사람이 기회를 잡는 시대예요.",
		}
	case FieldVideo:
		return []string{
			"영상 편집, 독학으로 시작했다가 중간에 멈춘 적 있으신가요? 체계적으로 배우면 생각보다 금방 늘어요.",
			"유튜브나 릴스를 직접 만들어 보고 싶었다면 지금이 시작하기 좋은 때예요.",
		}
	case FieldDesign:
		return []string{
			"비전공자도 디자이너가 될 수 있을까 고민 중이라면 포트폴리오까지 챙겨주는 과정부터 살펴보세요.",
			"디자인 툴은 많은데 무엇부터 배워야 할지 모르겠다면 이 글이 도움이 될 거예요.",
		}
	case FieldPublishing:
		return []string{"내 책을 직접 만들어 보는 것, 생각보다 멀지 않아요. 출판 실무를 국비로 배울 수 있는 기회를 소개할게요."}
	}
	return []string{
		"새로운 기술을 배우고 싶지만 비용이 부담되셨나요? 국민내일배움카드만 있으면 부담을 크게 덜 수 있어요.",
		"이직이나 커리어 전환을 고민 중이라면 제주에서 국비로 배울 수 있는 이 과정을 확인해 보세요.",
	}
}

func whyText(v view) string {
	c := v.Course
	var b strings.Builder
	b.WriteString("제주지역 특화훈련으로 운영되는 " + v.Field.Display() + " 과정이에요.")
	if c.NCSName != "" {
		b.WriteString(" NCS 직종은 '" + c.NCSName + "'이고,")
		b.WriteString(" 현장에서 바로 쓰는 역량을 중심으로 구성되어 있어요.")
	}
	if v.GoalShort != "" {
		b.WriteString(" 과정의 목표는 \"" + v.GoalShort + "\"입니다.")
	}
	if h := v.Hours(); h != "" {
		b.WriteString(" " + h + " 동안 집중해서 배울 수 있어요.")
	}
	return b.String()
}

func recommendList(v view) []string {
	out := []string{v.Course.Target}
	switch v.Field {
	case FieldAI, FieldData, FieldCoding:
		out = append(out, "업무에 새로운 디지털 도구를 도입하고 싶은 직장인")
	case FieldVideo, FieldContent, FieldMultimedia:
		out = append(out, "내 콘텐츠를 직접 기획하고 제작하고 싶은 분")
	case FieldDesign, FieldPublishing:
		out = append(out, "포트폴리오를 만들어 취업이나 이직을 준비하는 분")
	case FieldMarketing:
		out = append(out, "SNS로 가게나 브랜드를 알리고 싶은 소상공인")
	}
	out = append(out, "제주에서 국비지원으로 새로운 기술을 배우고 싶은 분")
	return out
}

var boldPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)

// richText escapes s, then turns **bold** spans into <strong> and newlines
// into <br>.
func richText(s string) htmltemplate.HTML {
	escaped := htmltemplate.HTMLEscapeString(s)
	escaped = boldPattern.ReplaceAllString(escaped, "<strong>$1</strong>")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>\n")
	return htmltemplate.HTML(escaped)
}
