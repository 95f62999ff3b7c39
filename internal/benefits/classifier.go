// Package benefits maps a course's training hours to the benefit tier of the
// 2026 specialised-training guidelines and the copy that goes with it.
//
// Rules:
//   - self-pay is capped at 10% for first-time participation in every tier
//   - 140h and over: training incentive up to 200,000 won a month (80% attendance)
//   - 350h and over: additional special allowance, capped per region
//   - under 140h: account deduction up to 1,000,000 won, unlimited repeats
package benefits

import (
	"fmt"

	"course-promo/internal/domain"
)

const (
	SelfPayCapPercent = 10

	MonthlyAllowanceWon = 200_000

	GeneralDeductionCapWon = 2_000_000
	ShortDeductionCapWon   = 1_000_000
)

// Closed set of badge texts used on the card-news cover.
const (
	BadgeSelfPay          = "자부담 10%"
	BadgeSelfPayAllowance = "자부담 10% + 훈련수당"
)

const universalSelfPayLine = "- 최초 참여 시 자부담 최대 10%로 배울 수 있어요"

type specialAllowance struct {
	monthlyCapWon int64
	dailyWon      int64
}

var specialAllowanceByRegion = map[domain.Region]specialAllowance{
	domain.RegionCapital:      {monthlyCapWon: 100_000, dailyWon: 5_000},
	domain.RegionNonCapital:   {monthlyCapWon: 200_000, dailyWon: 10_000},
	domain.RegionDepopulation: {monthlyCapWon: 300_000, dailyWon: 15_000},
}

// Classifier is safe for concurrent use; it holds only the region.
type Classifier struct {
	region domain.Region
}

// NewClassifier binds the special-allowance tier. Unknown regions fall back to
// non-capital.
func NewClassifier(region domain.Region) *Classifier {
	if _, ok := specialAllowanceByRegion[region]; !ok {
		region = domain.RegionNonCapital
	}
	return &Classifier{region: region}
}

func (c *Classifier) Region() domain.Region { return c.region }

func (c *Classifier) Classify(course domain.CourseRecord) domain.BenefitClassification {
	hours := course.TotalHours
	ctype := domain.CourseTypeForHours(hours)
	sa := specialAllowanceByRegion[c.region]

	out := domain.BenefitClassification{
		CourseType:        ctype,
		Region:            c.region,
		Hours:             hours,
		SelfPayCapPercent: SelfPayCapPercent,
		BadgeText:         BadgeSelfPay,
	}

	switch ctype {
	case domain.CourseTypeLong:
		out.MonthlyAllowanceWon = MonthlyAllowanceWon
		out.SpecialAllowanceWon = sa.monthlyCapWon
		out.SpecialAllowanceDailyWon = sa.dailyWon
		out.AccountDeductionCapWon = GeneralDeductionCapWon
		out.BadgeText = BadgeSelfPayAllowance
		out.SummaryText = fmt.Sprintf("자부담 10%% | 장려금 월 20만원 + 수당 월 최대 %s", Manwon(sa.monthlyCapWon))
		out.DetailLines = []string{
			universalSelfPayLine,
			fmt.Sprintf("- 매달 훈련장려금 최대 20만원 + 특별훈련수당 최대 %s을 받을 수 있어요 (%d시간 과정)", Manwon(sa.monthlyCapWon), hours),
			fmt.Sprintf("  (출석 80%% 이상 시, 출석일수 × %s으로 산정)", Manwon(sa.dailyWon)),
		}
		out.CostInfoText = generalCostInfo
	case domain.CourseTypeGeneral:
		out.MonthlyAllowanceWon = MonthlyAllowanceWon
		out.AccountDeductionCapWon = GeneralDeductionCapWon
		out.SummaryText = "자부담 10% | 훈련장려금 월 최대 20만원"
		out.DetailLines = []string{
			universalSelfPayLine,
			fmt.Sprintf("- 매달 훈련장려금 최대 20만원을 받을 수 있어요 (%d시간 과정, 출석 80%% 이상 시)", hours),
		}
		out.CostInfoText = generalCostInfo
	case domain.CourseTypeShort:
		out.AccountDeductionCapWon = ShortDeductionCapWon
		out.SummaryText = "자부담 10%"
		out.DetailLines = []string{
			universalSelfPayLine,
			fmt.Sprintf("- %d시간 단기과정이라 훈련장려금은 없지만, 부담 없이 빠르게 배울 수 있어요", hours),
		}
		out.CostInfoText = "이 과정은 **자부담 최대 10%**만 내면 돼요.\n" +
			"140시간 미만 단기과정은 횟수 제한 없이 자부담 최대 10%로 참여할 수 있어요!\n" +
			"계좌에서 최대 100만원까지 차감됩니다."
	default:
		// no amounts: the hours are not known, so neither is the tier
		out.SummaryText = "자부담 10% | 지원 혜택은 고용24에서 확인하세요"
		out.DetailLines = []string{
			universalSelfPayLine,
			"- 훈련시간에 따라 훈련장려금·특별훈련수당 지원 여부가 달라져요",
			"- 정확한 혜택은 고용24(work24.go.kr) 과정 상세 페이지에서 확인해주세요",
		}
		out.CostInfoText = "이 과정은 최초 참여 시 **자부담 최대 10%**만 내면 돼요.\n" +
			"자세한 지원 내용은 고용24에서 확인해주세요!"
	}

	if hours >= domain.GeneralCourseMinHours {
		out.LivingExpenseLoanText = livingExpenseLoan
	}
	return out
}

const generalCostInfo = "이 과정은 최초 참여 시 **자부담 최대 10%**만 내면 돼요.\n" +
	"계좌에서 최대 200만원까지 차감되고, 나머지는 정부가 지원합니다.\n" +
	"2회차부터 일반과정은 내일배움카드 기준 자부담 비율(최대 55%)이 적용돼요.\n" +
	"자세한 자부담 금액은 고용24에서 확인해주세요!"

const livingExpenseLoan = "훈련 기간 동안 생활비가 걱정되시나요? " +
	"140시간 이상 훈련에 참여 중인 실업자, 비정규직 근로자 등은 " +
	"**직업훈련 생계비 대부**(월 200만원 이내, 연 1% 금리)도 " +
	"신청할 수 있어요. 자세한 내용은 고용센터에 문의해주세요."

// Manwon renders an amount the way Korean copy usually does:
// 200000 -> "20만원", 5000 -> "5천원", 15000 -> "1만5천원".
func Manwon(won int64) string {
	if won <= 0 {
		return "0원"
	}
	man := won / 10_000
	rest := won % 10_000
	switch {
	case man > 0 && rest == 0:
		return fmt.Sprintf("%d만원", man)
	case man > 0 && rest%1_000 == 0:
		return fmt.Sprintf("%d만%d천원", man, rest/1_000)
	case man == 0 && rest%1_000 == 0:
		return fmt.Sprintf("%d천원", rest/1_000)
	}
	return fmt.Sprintf("%d원", won)
}
