package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"course-promo/internal/mappers"
)

// SnapshotZone is the zone of the snapshot's "updated" stamp.
var SnapshotZone = time.FixedZone("KST", 9*60*60)

// Program is one listing row as published to the site's program board.
type Program struct {
	Address      string `json:"address"`
	SubTitle     string `json:"subTitle"`
	Title        string `json:"title"`
	TraStartDate string `json:"traStartDate"`
	TraEndDate   string `json:"traEndDate"`
	TitleLink    string `json:"titleLink"`
}

// Snapshot is the programs.json document.
type Snapshot struct {
	Updated string    `json:"updated"`
	Count   int       `json:"count"`
	Data    []Program `json:"data"`
}

// ProgramsFromRows keeps the published columns of listing rows; rows without
// a title are dropped.
func ProgramsFromRows(rows []map[string]any) []Program {
	out := make([]Program, 0, len(rows))
	for _, r := range rows {
		p := Program{
			Address:      mappers.Lookup(r, "address", "ADDRESS"),
			SubTitle:     mappers.Lookup(r, "subTitle", "SUB_TITLE"),
			Title:        mappers.Lookup(r, "title", "TITLE", "trprNm"),
			TraStartDate: mappers.Lookup(r, "traStartDate", "TRA_START_DATE"),
			TraEndDate:   mappers.Lookup(r, "traEndDate", "TRA_END_DATE"),
			TitleLink:    mappers.Lookup(r, "titleLink", "TITLE_LINK"),
		}
		if p.Title == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// NewSnapshot stamps programs with now in KST.
func NewSnapshot(programs []Program, now time.Time) Snapshot {
	if programs == nil {
		programs = []Program{}
	}
	return Snapshot{
		Updated: now.In(SnapshotZone).Format("2006-01-02 15:04"),
		Count:   len(programs),
		Data:    programs,
	}
}

// RefreshSnapshot writes the snapshot for a fetch result. When the fetch
// failed an existing file is kept untouched and false returned; without one an
// empty snapshot is written so consumers always find a document.
func RefreshSnapshot(path string, rows []map[string]any, fetchErr error, now time.Time) (bool, error) {
	if fetchErr != nil {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
		rows = nil
	}
	if err := WriteSnapshot(path, NewSnapshot(ProgramsFromRows(rows), now)); err != nil {
		return false, err
	}
	return true, nil
}

// WriteSnapshot replaces path atomically.
func WriteSnapshot(path string, s Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal snapshot")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create snapshot dir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".programs-*.json")
	if err != nil {
		return errors.Wrap(err, "create snapshot temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write snapshot")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close snapshot")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrap(err, "chmod snapshot")
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "replace %s", path)
}
