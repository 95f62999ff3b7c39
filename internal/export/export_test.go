package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-promo/internal/ledger"
)

var now = time.Date(2026, 2, 10, 0, 30, 0, 0, time.UTC)

func TestProgramsFromRows(t *testing.T) {
	rows := []map[string]any{
		{"title": "AI 영상", "subTitle": "제주디지털아카데미", "traStartDate": "20260301", "titleLink": "https://x", "extra": "dropped"},
		{"subTitle": "no title"},
		{"TITLE": "바리스타", "ADDRESS": "제주시"},
	}

	got := ProgramsFromRows(rows)
	require.Len(t, got, 2)
	assert.Equal(t, Program{Title: "AI 영상", SubTitle: "제주디지털아카데미", TraStartDate: "20260301", TitleLink: "https://x"}, got[0])
	assert.Equal(t, "제주시", got[1].Address)
}

func TestNewSnapshotUsesKST(t *testing.T) {
	s := NewSnapshot(nil, now)
	assert.Equal(t, "2026-02-10 09:30", s.Updated)
	assert.Equal(t, 0, s.Count)
	assert.NotNil(t, s.Data)
}

func TestRefreshSnapshotWritesRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "programs.json")

	written, err := RefreshSnapshot(path, []map[string]any{{"title": "AI 영상"}}, nil, now)
	require.NoError(t, err)
	assert.True(t, written)

	var s Snapshot
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &s))
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, "AI 영상", s.Data[0].Title)
	assert.True(t, strings.Contains(string(b), "\"updated\": \"2026-02-10 09:30\""))
}

func TestRefreshSnapshotKeepsExistingOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"updated":"old","count":1,"data":[{"title":"x"}]}`), 0o644))

	written, err := RefreshSnapshot(path, nil, errors.New("api down"), now)
	require.NoError(t, err)
	assert.False(t, written)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"updated":"old"`)
}

func TestRefreshSnapshotWritesEmptyOnFirstFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.json")

	written, err := RefreshSnapshot(path, []map[string]any{{"title": "ignored"}}, errors.New("api down"), now)
	require.NoError(t, err)
	assert.True(t, written)

	var s Snapshot
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &s))
	assert.Equal(t, 0, s.Count)
	assert.Empty(t, s.Data)
}

func TestWriteLedgerCSV(t *testing.T) {
	l := ledger.Ledger{}
	l.Add(ledger.Entry{
		Key:         "B_1",
		Title:       "later, with comma",
		GeneratedAt: ledger.At(now.Add(time.Hour)),
		Files:       map[string][]string{"blog": {"b_blog.md", "b_blog_naver.html"}, "card_news": nil},
	})
	l.Add(ledger.Entry{
		Key:         "A_1",
		Title:       "earlier",
		Period:      "2026.03.01 ~ 2026.06.01",
		GeneratedAt: ledger.At(now),
		RunID:       "run-1",
		Files:       map[string][]string{"instagram_caption": {"a_instagram_caption.txt"}},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteLedgerCSV(&buf, l))
	assert.Contains(t, buf.String(), "\r\n")

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ledgerHeader, records[0])
	assert.Equal(t, []string{"A_1", "earlier", "2026.03.01 ~ 2026.06.01", "2026-02-10T00:30:00Z", "run-1", "instagram_caption", "1", "a_instagram_caption.txt"}, records[1])
	assert.Equal(t, "later, with comma", records[2][1])
	assert.Equal(t, "blog | card_news", records[2][5])
	assert.Equal(t, "2", records[2][6])
	assert.Equal(t, "b_blog.md | b_blog_naver.html", records[2][7])
}

func TestWriteLedgerCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLedgerCSV(&buf, ledger.Ledger{}))
	assert.Equal(t, strings.Join(ledgerHeader, ",")+"\r\n", buf.String())
}
