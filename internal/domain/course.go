package domain

import "strings"

// CourseRecord is the canonical representation of one offering of a training
// course inside this service. Providers map into this model and every renderer
// reads from it. It is built fresh on each run and never persisted itself.
type CourseRecord struct {
	// identity
	CourseID      string // upstream trprId
	SessionNumber string // upstream trprDegr (re-offering ordinal)
	StartDate     string // YYYYMMDD when recognisable, raw otherwise
	EndDate       string

	Title           string
	InstitutionName string
	InstitutionID   string
	Period          string // display form, "2026.03.01 ~ 2026.06.01"

	TotalHours  int   // 0 = unknown
	CostWon     int64 // course fee, 0 = absent
	RealCostWon int64 // actual training cost, 0 = absent
	SelfCost    string

	Capacity  int
	Contact   string
	Address   string
	DetailURL string

	NCSName            string
	ClassificationCode string
	TrainingGoal       string
	Target             string
	Outcome            string
	Curriculum         []CurriculumItem
}

type CurriculumItem struct {
	Title string `json:"title"`
	Desc  string `json:"desc,omitempty"`
}

// CourseType is derived from TotalHours only.
func (c CourseRecord) CourseType() CourseType {
	return CourseTypeForHours(c.TotalHours)
}

// Validate reports whether the record carries the minimum needed to render
// anything meaningful.
func (c CourseRecord) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}
