package mappers

import (
	"regexp"
	"strings"
)

// Accepted shapes: 20260301, 2026-03-01, 2026.03.01, 2026/03/01 (and the
// same with surrounding whitespace). Anything else passes through untouched.
var (
	compactDateRe   = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
	separatedDateRe = regexp.MustCompile(`^(\d{4})\s*[-./]\s*(\d{1,2})\s*[-./]\s*(\d{1,2})\.?$`)
)

func splitDate(s string) (y, m, d string, ok bool) {
	s = strings.TrimSpace(s)
	if p := compactDateRe.FindStringSubmatch(s); p != nil {
		return p[1], p[2], p[3], true
	}
	if p := separatedDateRe.FindStringSubmatch(s); p != nil {
		return p[1], pad2(p[2]), pad2(p[3]), true
	}
	return "", "", "", false
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// CompactDate returns YYYYMMDD, the form used in identity keys.
func CompactDate(s string) string {
	y, m, d, ok := splitDate(s)
	if !ok {
		return strings.TrimSpace(s)
	}
	return y + m + d
}

// DisplayDate returns YYYY.MM.DD, the form used in generated copy.
func DisplayDate(s string) string {
	y, m, d, ok := splitDate(s)
	if !ok {
		return strings.TrimSpace(s)
	}
	return y + "." + m + "." + d
}

// DisplayPeriod joins start and end in display form. Missing ends collapse.
func DisplayPeriod(start, end string) string {
	start, end = DisplayDate(start), DisplayDate(end)
	switch {
	case start != "" && end != "":
		return start + " ~ " + end
	case start != "":
		return start + " ~"
	case end != "":
		return "~ " + end
	}
	return ""
}
