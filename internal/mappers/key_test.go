package mappers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-promo/internal/domain"
)

func TestIdentityKeyFromUpstreamID(t *testing.T) {
	raw := map[string]any{
		"trprId":       "C1",
		"trprDegr":     "1",
		"traStartDate": "20260301",
		"traEndDate":   "20260601",
		"title":        "AI 영상",
	}

	assert.Equal(t, "C1_1_20260301_20260601", IdentityKey(Normalize(raw)))
}

func TestIdentityKeyStableAcrossRefetch(t *testing.T) {
	raw := map[string]any{"trprId": "C1", "trprDegr": "2", "traStartDate": "20260301", "traEndDate": "20260601"}

	assert.Equal(t, IdentityKey(Normalize(raw)), IdentityKey(Normalize(raw)))

	// same dates in another upstream shape still key the same
	reshaped := map[string]any{"trprId": "C1", "trprDegr": "2", "traStartDate": "2026-03-01", "traEndDate": "2026.06.01"}
	assert.Equal(t, IdentityKey(Normalize(raw)), IdentityKey(Normalize(reshaped)))
}

func TestIdentityKeyDiffersBySession(t *testing.T) {
	a := Normalize(map[string]any{"trprId": "C1", "trprDegr": "1", "traStartDate": "20260301", "title": "같은 제목"})
	b := Normalize(map[string]any{"trprId": "C1", "trprDegr": "2", "traStartDate": "20260301", "title": "같은 제목"})

	assert.NotEqual(t, IdentityKey(a), IdentityKey(b))
}

func TestIdentityKeyDiffersByDateRange(t *testing.T) {
	a := domain.CourseRecord{CourseID: "C1", SessionNumber: "1", StartDate: "20260301", EndDate: "20260601"}
	b := domain.CourseRecord{CourseID: "C1", SessionNumber: "1", StartDate: "20260901", EndDate: "20261201"}

	assert.NotEqual(t, IdentityKey(a), IdentityKey(b))
}

func TestIdentityKeyOptionalParts(t *testing.T) {
	assert.Equal(t, "C1", IdentityKey(domain.CourseRecord{CourseID: "C1"}))
	assert.Equal(t, "C1_20260601", IdentityKey(domain.CourseRecord{CourseID: "C1", EndDate: "20260601"}))
}

func TestIdentityKeyPeriodFallback(t *testing.T) {
	c := domain.CourseRecord{Title: "x", Period: "2026.03.01 ~ 2026.06.01"}
	assert.Equal(t, "20260301~20260601", IdentityKey(c))

	long := domain.CourseRecord{Period: "2026.03.01 ~ 2026.06.01 (주말반, 야간)"}
	assert.Len(t, []rune(IdentityKey(long)), periodKeyMaxLen)
}

func TestIdentityKeyTitleFallback(t *testing.T) {
	assert.Equal(t, "바리스타_한라학교", IdentityKey(domain.CourseRecord{Title: "바리스타", InstitutionName: "한라학교"}))
	assert.Equal(t, "unknown_", IdentityKey(domain.CourseRecord{}))
}

func TestIdentityKeyFromNormalizedNames(t *testing.T) {
	raw := `{"id": "C1", "title": "AI 영상", "session": "1", "startDate": "2026-03-01", "endDate": "2026-06-01", "totalHours": 400}`

	c, err := NormalizeJSON(json.RawMessage(raw))
	require.NoError(t, err)
	assert.Equal(t, "1", c.SessionNumber)
	assert.Equal(t, 400, c.TotalHours)
	assert.Equal(t, "C1_1_20260301_20260601", IdentityKey(c))
}
