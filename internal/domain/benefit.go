package domain

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrMissingTitle = errors.New("course record has no title")

// Duration thresholds in hours. Intervals are half-open.
const (
	GeneralCourseMinHours = 140
	LongCourseMinHours    = 350
)

type CourseType string

const (
	CourseTypeUnknown CourseType = "unknown"
	CourseTypeShort   CourseType = "short"
	CourseTypeGeneral CourseType = "general"
	CourseTypeLong    CourseType = "long"
)

func CourseTypeForHours(hours int) CourseType {
	switch {
	case hours <= 0:
		return CourseTypeUnknown
	case hours < GeneralCourseMinHours:
		return CourseTypeShort
	case hours < LongCourseMinHours:
		return CourseTypeGeneral
	default:
		return CourseTypeLong
	}
}

// Region selects the special-allowance tier for long courses.
type Region string

const (
	RegionCapital      Region = "capital"
	RegionNonCapital   Region = "non-capital"
	RegionDepopulation Region = "depopulation"
)

// Label is the Korean name used in generated copy.
func (r Region) Label() string {
	switch r {
	case RegionCapital:
		return "수도권"
	case RegionDepopulation:
		return "인구감소지역"
	default:
		return "비수도권"
	}
}

// ParseRegion accepts the English identifiers and the Korean labels.
func ParseRegion(s string) (Region, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "capital", "수도권":
		return RegionCapital, nil
	case "non-capital", "noncapital", "비수도권", "":
		return RegionNonCapital, nil
	case "depopulation", "population-decline", "인구감소지역":
		return RegionDepopulation, nil
	}
	return RegionNonCapital, errors.WithHint(
		errors.Newf("unknown region %q", s),
		"use one of: capital, non-capital, depopulation",
	)
}

// BenefitClassification is the rule engine output for one course.
// Amounts are in won.
type BenefitClassification struct {
	CourseType CourseType
	Region     Region
	Hours      int

	SelfPayCapPercent        int
	MonthlyAllowanceWon      int64
	SpecialAllowanceWon      int64
	SpecialAllowanceDailyWon int64
	AccountDeductionCapWon   int64

	BadgeText             string
	SummaryText           string
	DetailLines           []string
	CostInfoText          string
	LivingExpenseLoanText string // empty unless hours >= 140
}

// HasAllowance reports whether any monthly payment applies.
func (b BenefitClassification) HasAllowance() bool {
	return b.MonthlyAllowanceWon > 0 || b.SpecialAllowanceWon > 0
}
