package mappers

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	"course-promo/internal/domain"
)

const (
	defaultTarget   = "내일배움카드 있으면 누구나"
	work24DetailURL = "https://www.work24.go.kr/hr/a/a/3100/selectTracseDetl.do"
)

// NormalizeJSON decodes one upstream item. It only fails when the item is not
// a JSON object; missing fields become zero values.
func NormalizeJSON(raw json.RawMessage) (domain.CourseRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return domain.CourseRecord{}, errors.Wrap(err, "decode course item")
	}
	if m == nil {
		return domain.CourseRecord{}, errors.New("course item is null")
	}
	return Normalize(m), nil
}

// Normalize maps one upstream item (listing row, detail-enriched row or a
// local fixture) into the canonical record. It never fails.
func Normalize(m map[string]any) domain.CourseRecord {
	c := domain.CourseRecord{
		CourseID:           lookup(m, Fields.CourseID),
		SessionNumber:      lookup(m, Fields.Session),
		StartDate:          CompactDate(lookup(m, Fields.Start)),
		EndDate:            CompactDate(lookup(m, Fields.End)),
		Title:              lookup(m, Fields.Title),
		InstitutionName:    lookup(m, Fields.Institution),
		InstitutionID:      lookup(m, Fields.InstitutionID),
		SelfCost:           lookup(m, Fields.SelfCost),
		Address:            lookup(m, Fields.Address),
		NCSName:            lookup(m, Fields.NCSName),
		ClassificationCode: lookup(m, Fields.Classification),
		TrainingGoal:       lookup(m, Fields.TrainingGoal),
		Target:             lookup(m, Fields.Target),
		Outcome:            lookup(m, Fields.Outcome),
		Curriculum:         curriculum(m),
	}

	c.Period = lookup(m, Fields.Period)
	if c.Period == "" {
		c.Period = DisplayPeriod(c.StartDate, c.EndDate)
	}

	if h, ok := lookupInt(m, Fields.Hours); ok && h > 0 {
		c.TotalHours = int(h)
	} else if h, ok := hoursFromText(lookup(m, Fields.HoursText)); ok {
		c.TotalHours = int(h)
	}

	if v, ok := lookupInt(m, Fields.Cost); ok && v > 0 {
		c.CostWon = v
	}
	if v, ok := lookupInt(m, Fields.RealCost); ok && v > 0 {
		c.RealCostWon = v
	}
	if v, ok := lookupInt(m, Fields.Capacity); ok && v > 0 {
		c.Capacity = int(v)
	}

	c.Contact = lookup(m, Fields.Contact)
	if c.Contact == "" {
		if tel := lookup(m, Fields.Tel); tel != "" {
			c.Contact = strings.TrimSpace(c.InstitutionName + " Tel: " + tel)
		}
	}

	c.DetailURL = lookup(m, Fields.DetailURL)
	if c.DetailURL == "" && c.CourseID != "" {
		c.DetailURL = buildDetailURL(c)
	}

	if c.Target == "" {
		c.Target = defaultTarget
	}
	return c
}

func buildDetailURL(c domain.CourseRecord) string {
	q := url.Values{}
	q.Set("tracseId", c.CourseID)
	if c.SessionNumber != "" {
		q.Set("tracseTme", c.SessionNumber)
	}
	if c.InstitutionID != "" {
		q.Set("trainstCstmrId", c.InstitutionID)
	}
	return work24DetailURL + "?" + q.Encode()
}

func curriculum(m map[string]any) []domain.CurriculumItem {
	var raw any
	for _, k := range Fields.Curriculum {
		if v, ok := m[k]; ok && v != nil {
			raw = v
			break
		}
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.CurriculumItem, 0, len(list))
	for _, it := range list {
		switch t := it.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, domain.CurriculumItem{Title: s})
			}
		case map[string]any:
			item := domain.CurriculumItem{
				Title: lookup(t, Field{"title", "name"}),
				Desc:  lookup(t, Field{"desc", "description"}),
			}
			if item.Title != "" {
				out = append(out, item)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
