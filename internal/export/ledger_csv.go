package export

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	"course-promo/internal/ledger"
)

// Keep header order stable; downstream sheets key on column position.
var ledgerHeader = []string{
	"KEY",
	"TITLE",
	"PERIOD",
	"GENERATED_AT",
	"RUN_ID",
	"KINDS",
	"FILE_COUNT",
	"FILES",
}

// WriteLedgerCSV writes one row per ledger entry, oldest first.
func WriteLedgerCSV(w io.Writer, l ledger.Ledger) error {
	cw := csv.NewWriter(w)
	// spreadsheet apps expect CRLF
	cw.UseCRLF = true

	if err := cw.Write(ledgerHeader); err != nil {
		return err
	}
	for _, e := range l.Entries() {
		if err := cw.Write(toLedgerRow(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func toLedgerRow(e ledger.Entry) []string {
	kinds := make([]string, 0, len(e.Files))
	for k := range e.Files {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	var files []string
	for _, k := range kinds {
		files = append(files, cleanStrings(e.Files[k])...)
	}

	generated := ""
	if !e.GeneratedAt.IsZero() {
		generated = e.GeneratedAt.Format("2006-01-02T15:04:05Z07:00")
	}

	return []string{
		e.Key,                      // KEY
		e.Title,                    // TITLE
		e.Period,                   // PERIOD
		generated,                  // GENERATED_AT
		e.RunID,                    // RUN_ID
		strings.Join(kinds, " | "), // KINDS
		strconv.Itoa(len(files)),   // FILE_COUNT
		strings.Join(files, " | "), // FILES
	}
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		// avoid newlines
		s = strings.ReplaceAll(s, "\n", " ")
		s = strings.ReplaceAll(s, "\r", " ")
		out = append(out, s)
	}
	return out
}
