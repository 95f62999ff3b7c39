package mappers

import (
	"strings"

	"course-promo/internal/domain"
)

const (
	keySep          = "_"
	periodKeyMaxLen = 20
)

// IdentityKey names a generation unit. Same course id with a different
// session or date range is a different unit.
//
//	C1 + 1 + 20260301 + 20260601 -> "C1_1_20260301_20260601"
//
// Without an upstream id it falls back to the normalized period, then to
// title + institution.
func IdentityKey(c domain.CourseRecord) string {
	if id := strings.TrimSpace(c.CourseID); id != "" {
		parts := []string{id}
		for _, p := range []string{c.SessionNumber, c.StartDate, c.EndDate} {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, keySep)
	}

	if p := periodKey(c.Period); p != "" {
		return p
	}

	title := strings.TrimSpace(c.Title)
	if title == "" {
		title = "unknown"
	}
	return title + keySep + strings.TrimSpace(c.InstitutionName)
}

func periodKey(period string) string {
	r := strings.NewReplacer(".", "", " ", "")
	p := []rune(r.Replace(strings.TrimSpace(period)))
	if len(p) > periodKeyMaxLen {
		p = p[:periodKeyMaxLen]
	}
	return string(p)
}
