package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"course-promo/internal/domain"
	"course-promo/internal/mappers"
	"course-promo/internal/variant"
)

var fieldEmoji = map[Field]string{
	FieldAI:         "🤖",
	FieldVideo:      "🎬",
	FieldDesign:     "🎨",
	FieldPublishing: "📚",
	FieldMultimedia: "🖥️",
	FieldContent:    "📱",
	FieldMarketing:  "📊",
	FieldData:       "📈",
	FieldCoding:     "💻",
}

var captionHooks = map[Field]string{
	FieldAI:         "AI 시대, 배우는 사람이 기회를 잡아요",
	FieldVideo:      "영상 하나로 인생이 바뀔 수 있어요",
	FieldDesign:     "디자인 스킬, 지금 시작해도 늦지 않았어요",
	FieldPublishing: "내 책을 만들 수 있는 기회",
}

// CaptionRenderer writes the Instagram post caption.
type CaptionRenderer struct {
	Options
}

func NewCaptionRenderer(opts Options) *CaptionRenderer {
	return &CaptionRenderer{Options: opts}
}

func (r *CaptionRenderer) Kind() string { return KindCaption }

func (r *CaptionRenderer) Render(ctx context.Context, c domain.CourseRecord, cls domain.BenefitClassification) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := r.path(c.Title, "instagram_caption.txt")
	if err := writeText(path, caption(newView(c, cls, r.now()))); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// caption opens with a hook line, lists the key facts and ends with the call
// to action and hashtags.
func caption(v view) string {
	c := v.Course
	emoji, ok := fieldEmoji[v.Field]
	if !ok {
		emoji = "📌"
	}
	hook, ok := captionHooks[v.Field]
	if !ok {
		hook = "새로운 기술, 지금 배워보세요"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", emoji, hook)
	fmt.Fprintf(&b, "📍 %s\n🏫 %s\n", c.Title, v.Institution)
	if c.Period != "" {
		fmt.Fprintf(&b, "🗓️ %s\n", c.Period)
	}
	switch {
	case v.SelfCost != "" && v.CostText != "":
		fmt.Fprintf(&b, "💰 자부담금 %s (수강비 %s)\n", v.SelfCost, v.CostText)
	case v.SelfCost != "":
		fmt.Fprintf(&b, "💰 자부담금 %s\n", v.SelfCost)
	case v.CostText != "":
		fmt.Fprintf(&b, "💰 수강비 %s\n", v.CostText)
	}
	if h := v.Hours(); h != "" {
		fmt.Fprintf(&b, "⏱️ %s\n", h)
	}

	b.WriteString("\n✅ 국민내일배움카드 있으면 누구나 신청 가능!\n")
	b.WriteString(captionBenefitLine(v) + "\n\n")

	if v.GoalShort != "" {
		fmt.Fprintf(&b, "📋 이 과정을 배우면?\n→ %s\n\n", v.GoalShort)
	}
	b.WriteString("👉 신청 방법이 궁금하다면?\n프로필 링크에서 바로 확인하세요!\n\n")
	b.WriteString("💬 궁금한 점은 DM 또는 댓글로 물어봐 주세요\n\n.\n.\n.\n")
	b.WriteString(strings.Join(InstagramHashtags(v.Field, v.Year), " "))
	b.WriteString("\n")
	return b.String()
}

func captionBenefitLine(v view) string {
	h := v.Course.TotalHours
	switch v.Benefit.CourseType {
	case domain.CourseTypeLong:
		return fmt.Sprintf("🎁 %d시간 장기과정! 장려금+수당 월 최대 %s", h, v.MonthlyTotal())
	case domain.CourseTypeGeneral:
		return fmt.Sprintf("🎁 %d시간 과정! 훈련장려금 월 최대 %s", h, v.MonthlyTotal())
	case domain.CourseTypeShort:
		return fmt.Sprintf("🎁 %d시간 단기과정! 자부담 10%%로 부담 없이", h)
	}
	return "🎁 특화훈련 혜택으로 부담 없이 배울 수 있어요"
}

var reelsHooks = map[Field][]string{
	FieldAI: {
		"AI 배우고 싶은데 어디서 시작하지?",
		"ChatGPT만 쓰지 말고, AI를 제대로 배워보자",
		"AI 시대, 가만히 있으면 뒤처져요",
	},
	FieldVideo: {
		"영상 편집, 독학으로는 한계 있지 않나요?",
		"유튜브 시작하고 싶은데 편집이 막막하다면",
		"내 콘텐츠, 이제 내가 직접 만들어보자",
	},
	FieldDesign: {
		"비전공자도 디자이너 될 수 있을까?",
		"포트폴리오 하나면 취업이 달라져요",
	},
	FieldPublishing: {
		"내 책을 만드는 게 꿈이었다면",
		"전자책 시대, 출판 스킬이 무기가 됩니다",
	},
	FieldMarketing: {"마케팅, 감이 아니라 데이터로 하는 시대"},
	FieldData:      {"데이터 분석, 모든 직무의 필수 스킬"},
	FieldCoding:    {"코딩, 비전공자도 시작할 수 있어요"},
}

var defaultReelsHooks = []string{
	"새로운 기술, 배우고 싶었죠?",
	"국비로 배우는 전문 기술, 아직 모르셨나요?",
	"커리어 전환, 생각만 하지 말고 시작하세요",
}

const reelsRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// ReelsRenderer writes a short-form video script in three formats.
type ReelsRenderer struct {
	Options
}

func NewReelsRenderer(opts Options) *ReelsRenderer {
	return &ReelsRenderer{Options: opts}
}

func (r *ReelsRenderer) Kind() string { return KindReelsScript }

func (r *ReelsRenderer) Render(ctx context.Context, c domain.CourseRecord, cls domain.BenefitClassification) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := r.path(c.Title, "reels_script.txt")
	if err := writeText(path, reelsScript(newView(c, cls, r.now()))); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

type reelsPitch struct {
	benefit string
	detail  string
	urgency string
	format  string
	length  string
}

func pitchFor(v view) reelsPitch {
	h := v.Course.TotalHours
	switch v.Benefit.CourseType {
	case domain.CourseTypeLong:
		return reelsPitch{
			benefit: "자부담 10% + 월 최대 " + v.MonthlyTotal() + " 지원!",
			detail:  fmt.Sprintf("💰 %d시간 장기과정이라 매달 최대 %s 받으며 배워요", h, v.MonthlyTotal()),
			urgency: "장기과정이라 자리가 빨리 마감돼요!",
			format:  "포맷 C (나레이션): 혜택이 큰 만큼 자세히 설명하기 좋아요",
			length:  "25~35초",
		}
	case domain.CourseTypeGeneral:
		urgency := "모집 인원이 정해져 있어요, 서두르세요!"
		if v.Capacity != "" {
			urgency = "모집 인원 " + v.Capacity + "뿐이에요, 서두르세요!"
		}
		return reelsPitch{
			benefit: "자부담 10% + 훈련장려금 월 " + v.MonthlyTotal() + "!",
			detail:  fmt.Sprintf("💰 %d시간 과정, 출석 80%% 이상이면 매달 훈련장려금 최대 %s", h, v.MonthlyTotal()),
			urgency: urgency,
			format:  "포맷 A (슬라이드): 카드뉴스를 그대로 활용해 제작 부담이 적어요",
			length:  "20~25초",
		}
	case domain.CourseTypeShort:
		return reelsPitch{
			benefit: "자부담 10%로 부담 없이 참여 가능!",
			detail:  fmt.Sprintf("💰 %d시간 단기과정이라 부담 없이 빠르게 배울 수 있어요", h),
			urgency: "단기라서 금방 마감될 수 있어요!",
			format:  "포맷 B (자막 중심): 핵심만 빠르게 전달하기 좋아요",
			length:  "15~20초",
		}
	}
	return reelsPitch{
		benefit: "자부담 10%로 부담 없이!",
		detail:  "💰 국비지원으로 자부담 최대 10%만 내면 돼요",
		urgency: "모집 기간이 정해져 있으니 서둘러 확인하세요!",
		format:  "포맷 A (슬라이드): 카드뉴스를 그대로 활용해 제작 부담이 적어요",
		length:  "20~25초",
	}
}

// reelsScript lays out slide, caption-only and narration formats plus
// production tips.
func reelsScript(v view) string {
	c := v.Course
	hooks, ok := reelsHooks[v.Field]
	if !ok {
		hooks = defaultReelsHooks
	}
	hook := variant.Pick(c.Title, hooks...)
	p := pitchFor(v)

	keywords := SEOKeywords(c.Title, c.TrainingGoal, c.NCSName, v.Year)
	top := keywords
	if len(top) > 5 {
		top = top[:5]
	}
	tags := make([]string, len(top))
	for i, kw := range top {
		tags[i] = "#" + kw
	}

	intro := v.Field.Display() + " 전문가가 되고 싶다면?"
	if c.NCSName != "" {
		intro = c.NCSName + " 분야 전문가가 되고 싶다면?"
	}
	selfCost := orDefault(v.SelfCost, "수강비의 10%만!")

	var b strings.Builder
	fmt.Fprintf(&b, "[릴스 대본 - %s]\n%s\n", c.Title, strings.Repeat("=", 50))
	fmt.Fprintf(&b, "과정 정보: %s | %s | %s과정\n", v.Institution, orDefault(v.Hours(), "시간 미정"), c.CourseType())
	fmt.Fprintf(&b, "혜택 요약: %s\n%s\n\n", p.benefit, strings.Repeat("=", 50))

	section(&b, "📱 포맷 A: 슬라이드형 (카드뉴스 활용, 15~25초)")
	fmt.Fprintf(&b, "0~3초 [훅]\n  화면: 텍스트 오버레이 \"%s\"\n\n", hook)
	fmt.Fprintf(&b, "3~7초 [과정 소개]\n  화면: 카드뉴스 커버 이미지\n  자막: \"제주에서 %s 배울 수 있는 곳!\"\n  텍스트: \"%s\"\n\n", v.Field.Display(), c.Title)
	b.WriteString("7~14초 [혜택 강조]\n  화면: 카드뉴스 상세 이미지\n")
	fmt.Fprintf(&b, "  - 📍 %s\n", v.Institution)
	if h := v.Hours(); h != "" {
		fmt.Fprintf(&b, "  - ⏱️ %s\n", h)
	}
	if v.GoalShort != "" {
		fmt.Fprintf(&b, "  - 📋 \"%s\"\n", truncate(v.GoalShort, 60))
	}
	fmt.Fprintf(&b, "  - %s\n  - ✅ 국민내일배움카드만 있으면 OK\n\n", p.benefit)
	fmt.Fprintf(&b, "14~18초 [긴급성 + CTA]\n  자막: \"⚠️ %s\"\n  텍스트: \"신청 방법은 프로필 링크에서 확인 👆\"\n\n", p.urgency)

	section(&b, "📱 포맷 B: 자막 중심형 (촬영 없이 제작, 20~30초)")
	fmt.Fprintf(&b, "0~3초 [질문 훅]\n  중앙 텍스트: \"%s\"\n\n", intro)
	b.WriteString("3~6초 [문제 공감]\n  \"독학은 한계가 있고...\"\n  \"학원비는 부담되고...\"\n\n")
	fmt.Fprintf(&b, "6~10초 [해결책]\n  텍스트: \"제주에서 국비로 배울 수 있어요!\"\n  서브: \"%s\"\n\n", c.Title)
	fmt.Fprintf(&b, "10~18초 [핵심 정보]\n  ✅ %s에서 진행\n  %s\n  ✅ 국민내일배움카드만 있으면 신청 가능\n\n", v.Institution, p.detail)
	fmt.Fprintf(&b, "18~22초 [비용 강조]\n  큰 텍스트: \"자부담금\"\n  더 큰 텍스트: \"%s\"\n\n", selfCost)
	b.WriteString("22~25초 [CTA]\n  텍스트: \"신청 마감 전에 확인하세요! 👆\"\n  서브: \"프로필 링크 → work24.go.kr\"\n\n")

	section(&b, "📱 포맷 C: 나레이션형 (직접 촬영/음성, 25~35초)")
	fmt.Fprintf(&b, "0~5초 [훅]\n  나레이션: \"%s\"\n\n", hook)
	fmt.Fprintf(&b, "5~10초 [과정 소개]\n  나레이션: \"제주에서 %s 과정이 열렸는데요, %s에서 진행하는 '%s' 과정이에요.\"\n\n",
		v.Field.Display(), v.Institution, truncate(c.Title, 25))
	fmt.Fprintf(&b, "10~18초 [혜택 설명]\n  나레이션: \"%s\"\n\n", narrationBenefit(v))
	fmt.Fprintf(&b, "18~25초 [CTA]\n  나레이션: \"관심 있으시면 프로필 링크에서 바로 확인하실 수 있어요. %s\"\n\n", p.urgency)

	section(&b, "💡 제작 팁")
	fmt.Fprintf(&b, "추천 포맷: %s\n영상 길이: %s\n", p.format, p.length)
	kw := keywords
	if len(kw) > 8 {
		kw = kw[:8]
	}
	fmt.Fprintf(&b, "핵심 SEO 키워드: %s\n", strings.Join(kw, ", "))
	fmt.Fprintf(&b, "해시태그: %s\n", strings.Join(tags, " "))
	return b.String()
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "%s\n%s\n%s\n\n", reelsRule, title, reelsRule)
}

func narrationBenefit(v view) string {
	cost := "자부담금은 수강비의 10%뿐이고요,"
	if v.SelfCost != "" {
		cost = "자부담금은 " + v.SelfCost + "뿐이고요,"
	}
	h := v.Course.TotalHours
	switch v.Benefit.CourseType {
	case domain.CourseTypeLong:
		return fmt.Sprintf("총 %d시간 장기과정이라 훈련장려금이랑 특별수당 합쳐서 매달 최대 %s까지 받을 수 있어요. %s 배우면서 돈도 버는 거죠.", h, v.MonthlyTotal(), cost)
	case domain.CourseTypeGeneral:
		return cost + " 거기에 출석 80% 이상이면 매달 훈련장려금 최대 " + v.MonthlyTotal() + "도 받을 수 있어요."
	case domain.CourseTypeShort:
		return fmt.Sprintf("%d시간 단기과정이라 부담 없이 빠르게 배울 수 있고요, %s 다른 단기과정도 횟수 제한 없이 들을 수 있어요.", h, cost)
	}
	return cost + " 나머지는 국비로 지원받을 수 있어요."
}

// GuideRenderer writes the posting schedule and checklist.
type GuideRenderer struct {
	Options
}

func NewGuideRenderer(opts Options) *GuideRenderer {
	return &GuideRenderer{Options: opts}
}

func (r *GuideRenderer) Kind() string { return KindPostingGuide }

func (r *GuideRenderer) Render(ctx context.Context, c domain.CourseRecord, _ domain.BenefitClassification) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := r.path(c.Title, "posting_guide.txt")
	if err := writeText(path, PostingGuide(c)); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

var postingWaves = []struct {
	daysBefore int
	plan       string
	fallback   string
}{
	{21, "블로그 \"혜택 정리편\" + 인스타 카드뉴스", "과정 공개 후 즉시"},
	{14, "블로그 \"커리큘럼 상세편\" + 릴스 영상", "1주일 후"},
	{7, "인스타 스토리 \"마감 D-7\" 긴급성 강조", "마감 7일 전"},
	{3, "블로그+인스타 \"마감 임박\" 리마인드", "마감 3일 전"},
}

// PostingGuide schedules four posting waves counted back from the start
// date, or relative steps when the start date is unknown.
func PostingGuide(c domain.CourseRecord) string {
	var b strings.Builder
	section(&b, "📋 게시 가이드 - "+c.Title)
	b.WriteString("📅 권장 게시 일정\n")

	start, err := time.Parse("20060102", mappers.CompactDate(c.StartDate))
	for i, w := range postingWaves {
		if err == nil {
			d := start.AddDate(0, 0, -w.daysBefore)
			fmt.Fprintf(&b, "  %d차 (D-%d, %s): %s\n", i+1, w.daysBefore, d.Format("01/02"), w.plan)
		} else {
			fmt.Fprintf(&b, "  %d차: %s → %s\n", i+1, w.fallback, w.plan)
		}
	}

	b.WriteString(`
⏰ 권장 게시 시간
  - 네이버 블로그: 오전 8~9시 또는 오후 1시
  - 인스타그램 피드: 오후 12~1시 또는 오후 6~9시
  - 인스타그램 릴스: 오후 7~9시
  - 인스타그램 스토리: 오전 8시, 오후 12시, 오후 8시
  - 최적 요일: 월~수

📊 게시 후 체크리스트
  □ 블로그: 발행 후 24시간 내 네이버 서치어드바이저에서 색인 요청
  □ 인스타: 게시 후 1시간 내 댓글에 답글 달기
  □ 인스타: 스토리에 게시물 공유
  □ 릴스: 첫 3초 훅 문장 확인
  □ 제주 지역 커뮤니티/카페에 링크 공유

🔑 인스타그램 프로필 설정
  - 프로필 링크: 고용24 과정 신청 페이지 또는 링크트리
  - 프로필 소개: "제주 무료교육·국비지원 과정 안내 | 국민내일배움카드"
  - 하이라이트: "신청방법", "모집중", "수강후기"
`)
	return b.String()
}
