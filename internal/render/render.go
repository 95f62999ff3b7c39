// Package render turns one course and its benefit classification into the
// marketing artifacts written to the output directory. Each renderer owns one
// artifact kind and reports the files it wrote.
package render

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"course-promo/internal/benefits"
	"course-promo/internal/domain"
)

// Artifact kinds; they double as the keys of a ledger entry's file map.
const (
	KindCardNews     = "card_news"
	KindBlog         = "blog"
	KindCaption      = "instagram_caption"
	KindReelsScript  = "reels_script"
	KindPostingGuide = "posting_guide"
)

const defaultApplyURL = "https://www.work24.go.kr"

// Options are shared by every renderer.
type Options struct {
	OutputDir string
	Now       func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) path(title, suffix string) string {
	return ArtifactPath(o.OutputDir, title, suffix)
}

func writeText(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create output dir for %s", path)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// view is the presentation model every template reads from.
type view struct {
	Course  domain.CourseRecord
	Benefit domain.BenefitClassification
	Field   Field
	Year    int
	Today   string

	Institution string
	Period      string
	CostText    string
	SelfCost    string
	Capacity    string
	Contact     string
	ApplyURL    string
	GoalShort   string
}

func newView(c domain.CourseRecord, cls domain.BenefitClassification, now time.Time) view {
	v := view{
		Course:      c,
		Benefit:     cls,
		Field:       DetectField(c.Title),
		Year:        now.Year(),
		Today:       now.Format("2006년 01월 02일"),
		Institution: orDefault(c.InstitutionName, "교육기관"),
		Period:      orDefault(c.Period, "고용24에서 확인"),
		SelfCost:    strings.TrimSpace(c.SelfCost),
		Contact:     orDefault(c.Contact, orDefault(c.InstitutionName, "")),
		ApplyURL:    orDefault(c.DetailURL, defaultApplyURL),
		GoalShort:   firstSentence(c.TrainingGoal, 80),
	}
	if c.CostWon > 0 {
		v.CostText = FormatWon(c.CostWon)
	}
	if c.Capacity > 0 {
		v.Capacity = strconv.Itoa(c.Capacity) + "명"
	}
	return v
}

// Hours is the duration phrase used in copy, empty when unknown.
func (v view) Hours() string {
	if v.Course.TotalHours <= 0 {
		return ""
	}
	return "총 " + strconv.Itoa(v.Course.TotalHours) + "시간"
}

// MonthlyTotal is the combined monthly payment for copy, e.g. "40만원".
func (v view) MonthlyTotal() string {
	return benefits.Manwon(v.Benefit.MonthlyAllowanceWon + v.Benefit.SpecialAllowanceWon)
}

func itoa(n int) string { return strconv.Itoa(n) }

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

// FormatWon groups thousands: 1250000 -> "1,250,000원".
func FormatWon(won int64) string {
	s := strconv.FormatInt(won, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "원"
	if neg {
		out = "-" + out
	}
	return out
}
