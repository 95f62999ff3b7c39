package localfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "courses.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestListCoursesFromArray(t *testing.T) {
	path := writeFile(t, `[
		{"trprId": "C1", "trprDegr": "1", "title": "AI 영상", "traStartDate": "20260301", "traEndDate": "20260601", "totalHours": 400},
		{"title": "바리스타", "institution": "한라학교", "time": "총 96시간"}
	]`)

	courses, err := New(path, nil).ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "C1", courses[0].CourseID)
	assert.Equal(t, 400, courses[0].TotalHours)
	assert.Equal(t, 96, courses[1].TotalHours)
}

func TestListCoursesFromSnapshotAndListing(t *testing.T) {
	snapshot := writeFile(t, `{"updated": "2026-03-01 09:00", "count": 1, "data": [{"title": "과정", "traStartDate": "20260301"}]}`)
	courses, err := New(snapshot, nil).ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "20260301", courses[0].StartDate)

	listing := writeFile(t, `{"srchList": [{"trprId": "L1", "title": "목록 과정"}]}`)
	courses, err = New(listing, nil).ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "L1", courses[0].CourseID)
}

func TestListCoursesSkipsBadItems(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	path := writeFile(t, `[{"title": "좋은 과정"}, 42, {"trprId": "NOTITLE"}]`)

	courses, err := New(path, zap.New(core)).ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "좋은 과정", courses[0].Title)
	assert.Equal(t, 2, logs.Len())
}

func TestListCoursesMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.json"), nil).ListCourses(context.Background())
	assert.Error(t, err)
}

func TestListCoursesEmptyFile(t *testing.T) {
	courses, err := New(writeFile(t, ""), nil).ListCourses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, courses)
}
