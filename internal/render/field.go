package render

import (
	"fmt"
	"sort"
	"strings"
)

// Field is the subject area detected from a course title; it selects copy
// variants and hashtags.
type Field string

const (
	FieldAI         Field = "AI"
	FieldVideo      Field = "영상"
	FieldDesign     Field = "디자인"
	FieldPublishing Field = "출판"
	FieldMultimedia Field = "멀티미디어"
	FieldContent    Field = "콘텐츠"
	FieldMarketing  Field = "마케팅"
	FieldData       Field = "데이터"
	FieldCoding     Field = "코딩"
	FieldDefault    Field = "default"
)

// Display names the field in running copy.
func (f Field) Display() string {
	if f == FieldDefault {
		return "전문 기술"
	}
	return string(f)
}

var fieldKeywords = []struct {
	field    Field
	keywords []string
}{
	{FieldAI, []string{"AI", "인공지능", "챗GPT", "CHATGPT", "머신러닝", "딥러닝"}},
	{FieldVideo, []string{"영상", "비디오", "유튜브", "숏폼", "프리미어", "에프터이펙트", "촬영"}},
	{FieldDesign, []string{"디자인", "UI", "UX", "피그마", "FIGMA", "웹디자인"}},
	{FieldPublishing, []string{"출판", "인디자인", "편집디자인", "전자책", "EPUB"}},
	{FieldMultimedia, []string{"멀티미디어"}},
	{FieldContent, []string{"콘텐츠", "크리에이터"}},
	{FieldMarketing, []string{"마케팅"}},
	{FieldData, []string{"데이터", "빅데이터", "분석"}},
	{FieldCoding, []string{"코딩", "프로그래밍", "파이썬", "개발"}},
}

// DetectField returns the first field whose keyword occurs in title.
func DetectField(title string) Field {
	upper := strings.ToUpper(title)
	for _, fk := range fieldKeywords {
		for _, kw := range fk.keywords {
			if strings.Contains(upper, kw) {
				return fk.field
			}
		}
	}
	return FieldDefault
}

var seoKeywordMap = []struct {
	trigger string
	mapped  []string
}{
	{"AI", []string{"AI교육", "인공지능교육", "AI활용", "AI자격증"}},
	{"인공지능", []string{"AI교육", "인공지능교육", "AI활용"}},
	{"영상", []string{"영상편집교육", "영상제작", "유튜브편집", "프리미어프로"}},
	{"편집", []string{"영상편집교육", "편집디자인"}},
	{"디자인", []string{"디자인교육", "디지털디자인", "웹디자인", "UI디자인"}},
	{"디지털", []string{"디지털교육", "디지털전환"}},
	{"UX", []string{"UIUX교육", "UX디자인"}},
	{"UI", []string{"UIUX교육", "UI디자인", "웹디자인"}},
	{"웹", []string{"웹디자인", "웹개발", "홈페이지제작"}},
	{"출판", []string{"출판디자인", "편집디자인", "전자책"}},
	{"멀티미디어", []string{"멀티미디어교육", "콘텐츠제작"}},
	{"콘텐츠", []string{"콘텐츠제작", "콘텐츠마케팅", "SNS콘텐츠"}},
	{"마케팅", []string{"디지털마케팅", "콘텐츠마케팅", "SNS마케팅"}},
	{"데이터", []string{"데이터분석", "빅데이터", "데이터활용"}},
	{"프로그래밍", []string{"코딩교육", "프로그래밍교육"}},
	{"코딩", []string{"코딩교육", "프로그래밍교육"}},
	{"파이썬", []string{"파이썬교육", "코딩교육"}},
	{"3D", []string{"3D모델링", "3D프린팅"}},
	{"그래픽", []string{"그래픽디자인", "포토샵교육"}},
	{"포토샵", []string{"포토샵교육", "그래픽디자인"}},
	{"일러스트", []string{"일러스트교육", "일러스트레이터"}},
	{"사진", []string{"사진촬영교육", "사진편집"}},
	{"드론", []string{"드론자격증", "드론교육"}},
	{"바리스타", []string{"바리스타자격증", "바리스타교육"}},
	{"요리", []string{"요리교육", "조리사자격증"}},
	{"조리", []string{"조리사자격증", "요리교육"}},
	{"관광", []string{"관광교육", "관광가이드"}},
	{"호텔", []string{"호텔리어교육", "호텔취업"}},
	{"서비스", []string{"서비스교육", "고객응대"}},
	{"회계", []string{"회계교육", "전산회계"}},
	{"사무", []string{"사무행정", "컴퓨터활용"}},
	{"컴퓨터", []string{"컴퓨터교육", "ITQ", "컴퓨터활용"}},
	{"엑셀", []string{"엑셀교육", "컴퓨터활용"}},
	{"OA", []string{"OA교육", "사무자동화"}},
	{"자동화", []string{"업무자동화", "RPA"}},
	{"숏폼", []string{"숏폼제작", "릴스제작", "틱톡영상"}},
	{"유튜브", []string{"유튜브크리에이터", "유튜브편집"}},
	{"SNS", []string{"SNS마케팅", "SNS콘텐츠"}},
}

var commonSearchKeywords = []string{
	"국비지원무료교육",
	"국민내일배움카드",
	"제주교육",
	"제주무료교육",
	"국비지원",
}

// SEOKeywords collects search keywords from the title, training goal and NCS
// name plus the common set, sorted.
func SEOKeywords(title, trainingGoal, ncsName string, year int) []string {
	source := strings.ToUpper(title + " " + trainingGoal + " " + ncsName)
	set := map[string]struct{}{}
	for _, m := range seoKeywordMap {
		if strings.Contains(source, strings.ToUpper(m.trigger)) {
			for _, kw := range m.mapped {
				set[kw] = struct{}{}
			}
		}
	}
	for _, kw := range commonSearchKeywords {
		set[kw] = struct{}{}
	}
	set[fmt.Sprintf("%d국비지원", year)] = struct{}{}
	set[fmt.Sprintf("%d국민내일배움카드", year)] = struct{}{}

	out := make([]string, 0, len(set))
	for kw := range set {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

var instagramLarge = []string{"#국비지원", "#무료교육", "#국민내일배움카드", "#자기계발", "#직무교육"}
var instagramMedium = []string{"#국민내일배움카드신청", "#국비지원교육", "#직업훈련포털", "#고용24", "#HRD"}
var instagramLocal = []string{"#제주", "#제주시", "#제주교육", "#제주취업"}

var instagramFieldTags = map[Field][]string{
	FieldAI:         {"#AI교육", "#인공지능", "#AI활용", "#디지털전환"},
	FieldVideo:      {"#영상편집", "#프리미어프로", "#영상제작", "#유튜브"},
	FieldDesign:     {"#디자인교육", "#디지털디자인", "#UIUX", "#피그마"},
	FieldPublishing: {"#출판디자인", "#편집디자인", "#인디자인", "#전자책"},
	FieldMultimedia: {"#멀티미디어", "#콘텐츠제작", "#크리에이터", "#미디어"},
	FieldContent:    {"#콘텐츠제작", "#SNS마케팅", "#콘텐츠크리에이터"},
	FieldMarketing:  {"#디지털마케팅", "#SNS마케팅", "#콘텐츠마케팅"},
	FieldData:       {"#데이터분석", "#빅데이터", "#데이터사이언스"},
	FieldCoding:     {"#코딩교육", "#개발자", "#프로그래밍"},
}

const maxInstagramTags = 20

// InstagramHashtags mixes broad, mid-size, local and field tags, deduplicated
// and capped at twenty.
func InstagramHashtags(f Field, year int) []string {
	var tags []string
	tags = append(tags, instagramLarge...)
	tags = append(tags, instagramMedium...)
	tags = append(tags, instagramLocal...)
	tags = append(tags, instagramFieldTags[f]...)
	tags = append(tags, fmt.Sprintf("#%d교육", year))
	return dedupe(tags, maxInstagramTags)
}

var blogFieldTags = map[Field][]string{
	FieldAI:         {"#AI교육", "#인공지능교육", "#AI활용교육", "#제주AI"},
	FieldVideo:      {"#영상편집교육", "#영상제작교육", "#유튜브교육", "#제주영상"},
	FieldDesign:     {"#디자인교육", "#UIUX교육", "#디지털디자인", "#제주디자인"},
	FieldPublishing: {"#출판교육", "#편집디자인", "#인디자인교육"},
	FieldContent:    {"#콘텐츠제작", "#크리에이터교육"},
	FieldMarketing:  {"#마케팅교육", "#디지털마케팅"},
	FieldData:       {"#데이터분석교육", "#빅데이터교육"},
	FieldCoding:     {"#코딩교육", "#프로그래밍교육"},
}

// BlogHashtags returns the sorted blog tag line.
func BlogHashtags(title string, f Field, year int) string {
	tags := []string{
		"#제주무료교육", "#국민내일배움카드", "#제주취업", "#제주특화훈련",
		"#국비지원무료교육", "#제주국비지원", fmt.Sprintf("#%d국민내일배움카드", year),
		"#제주교육", "#제주직업훈련", "#자부담10퍼센트",
		"#" + strings.ReplaceAll(title, " ", ""),
	}
	if ft, ok := blogFieldTags[f]; ok {
		tags = append(tags, ft...)
	} else {
		tags = append(tags, "#직업교육", "#기술교육")
	}
	tags = dedupe(tags, 0)
	sort.Strings(tags)
	return strings.Join(tags, " ")
}

func dedupe(in []string, max int) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

// firstSentence returns the first sentence of text, cut to max runes with an
// ellipsis.
func firstSentence(text string, max int) string {
	text = strings.ReplaceAll(text, "\n", ".")
	for _, s := range strings.Split(text, ".") {
		if s = strings.TrimSpace(s); s != "" {
			return truncate(s, max)
		}
	}
	return ""
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
