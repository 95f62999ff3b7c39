package mappers

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Field is an ordered list of upstream names for one logical field. The
// Work24 API renamed and re-cased fields across versions and the local JSON
// fixtures use the already-normalized names, so every lookup walks the list and
// takes the first present non-empty value.
type Field []string

// Synonyms per logical field, most specific first.
var Fields = struct {
	CourseID, Session, Start, End         Field
	Title, Institution, InstitutionID     Field
	Period, Hours, HoursText              Field
	Cost, RealCost, SelfCost, Capacity    Field
	Tel, Contact, Address, DetailURL      Field
	NCSName, Classification, TrainingGoal Field
	Target, Outcome, Curriculum           Field
}{
	CourseID:       Field{"trprId", "TRPR_ID", "trpr_id", "courseId", "id"},
	Session:        Field{"trprDegr", "TRPR_DEGR", "trpr_degr", "sessionNumber", "session", "degr"},
	Start:          Field{"traStartDate", "TRA_START_DATE", "tra_start_date", "startDate", "trStaDt"},
	End:            Field{"traEndDate", "TRA_END_DATE", "tra_end_date", "endDate", "trEndDt"},
	Title:          Field{"title", "trprNm", "TRPR_NM", "courseName"},
	Institution:    Field{"institution", "subTitle", "SUB_TITLE", "inoNm", "trainstNm", "institutionName"},
	InstitutionID:  Field{"trainstCstId", "TRAINST_CST_ID", "instIno", "srchTorgId", "institutionId"},
	Period:         Field{"period"},
	Hours:          Field{"totalHours", "trtm", "totTrtm", "totTraTime", "trainingHours", "courseHours", "hours"},
	HoursText:      Field{"time", "trainingTime"},
	Cost:           Field{"courseMan", "COURSE_MAN", "courseCost", "trprCost"},
	RealCost:       Field{"realMan", "REAL_MAN", "realCost"},
	SelfCost:       Field{"selfCost", "selfPay"},
	Capacity:       Field{"yardMan", "YARD_MAN", "capacity", "totFxnum"},
	Tel:            Field{"telNo", "TEL_NO", "trprChapTel", "tel"},
	Contact:        Field{"contact"},
	Address:        Field{"address", "ADDRESS", "addr1"},
	DetailURL:      Field{"hrd_url", "detailUrl", "titleLink", "TITLE_LINK"},
	NCSName:        Field{"ncsName", "ncsNm", "NCS_NM"},
	Classification: Field{"classificationCode", "ncsCd", "NCS_CD", "trainTargetCd", "TRAIN_TARGET_CD", "crseTracseSe"},
	TrainingGoal:   Field{"trainingGoal", "traingGoal", "trprTarget"},
	Target:         Field{"target"},
	Outcome:        Field{"outcome"},
	Curriculum:     Field{"curriculum"},
}

// Lookup is lookup over ad-hoc names, for callers outside the normalizer.
func Lookup(m map[string]any, names ...string) string {
	return lookup(m, Field(names))
}

// lookup returns the first present, non-empty value for f as a trimmed string.
func lookup(m map[string]any, f Field) string {
	for _, k := range f {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(toString(v))
		if s != "" {
			return s
		}
	}
	return ""
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

var digitsRe = regexp.MustCompile(`-?\d[\d,]*`)

// lookupInt parses the first present value as an integer, tolerating thousands
// separators and unit suffixes ("1,200,000원", "400시간"). Unparseable values
// are skipped, not fatal.
func lookupInt(m map[string]any, f Field) (int64, bool) {
	for _, k := range f {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if n, ok := parseInt(toString(v)); ok {
			return n, true
		}
	}
	return 0, false
}

func parseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
			return 0, false
		}
		return int64(f), true
	}
	match := digitsRe.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(match, ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

var hoursTextRe = regexp.MustCompile(`(\d+)\s*시간`)

// hoursFromText reads "총 400시간" style strings.
func hoursFromText(s string) (int64, bool) {
	m := hoursTextRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
