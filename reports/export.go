package reports

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Kind names a report
type Kind string

const (
	KindNPL        Kind = "npl"
	KindCollection Kind = "collection"
)

func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindNPL, KindCollection:
		return k, true
	}
	return "", false
}

func (k Kind) Title() string {
	if k == KindCollection {
		return "Collection Performance"
	}
	return "NPL Summary"
}

// FileName is the download name for a report exported at now
func FileName(kind Kind, now time.Time) string {
	return fmt.Sprintf("%s-report-%s.csv", kind, now.UTC().Format(time.DateOnly))
}

// ExportCSV renders records as CSV. The header is the first record's keys in
// encounter order and every row follows that order; keys a row lacks are
// empty. Lines are joined by \n with no trailing newline, and an empty data
// set yields "". Fields are quoted only when encoding/csv requires it.
func ExportCSV(records []Record) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	header := records[0].Keys()

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(header); err != nil {
		return "", err
	}

	row := make([]string, len(header))
	for _, rec := range records {
		for i, key := range header {
			value, _ := rec.Get(key)
			row[i] = cell(value)
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}
