package pipeline

import (
	"course-promo/internal/domain"
	"course-promo/internal/ledger"
	"course-promo/internal/mappers"
)

// SkipReason says why a course is not generated; empty means it is pending.
type SkipReason string

const (
	SkipProcessed SkipReason = "already processed"
	SkipDuplicate SkipReason = "duplicate in batch"
)

// Step is one course with its identity key and planned action.
type Step struct {
	Key    string
	Course domain.CourseRecord
	Skip   SkipReason
}

// Plan keys every course against the ledger, in input order:
// - keys present in the ledger are skipped as processed
// - repeats of a key within the batch are skipped after the first
// - everything else is pending
func Plan(courses []domain.CourseRecord, seen ledger.Ledger) []Step {
	steps := make([]Step, 0, len(courses))
	inBatch := make(map[string]struct{}, len(courses))
	for _, c := range courses {
		st := Step{Key: mappers.IdentityKey(c), Course: c}
		switch {
		case seen.Has(st.Key):
			st.Skip = SkipProcessed
		default:
			if _, dup := inBatch[st.Key]; dup {
				st.Skip = SkipDuplicate
			}
		}
		inBatch[st.Key] = struct{}{}
		steps = append(steps, st)
	}
	return steps
}

// Pending counts the steps that will be generated.
func Pending(steps []Step) int {
	n := 0
	for _, st := range steps {
		if st.Skip == "" {
			n++
		}
	}
	return n
}
