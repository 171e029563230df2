package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV serializes t as comma-separated text with a header row.
func WriteCSV(w io.Writer, t *Table) error {
	return WriteDelimited(w, t, ',')
}

// WriteDelimited serializes t with the given delimiter. The output is
// deterministic: numbers keep their source text, datetime columns use a
// date-only layout when every value is at midnight, missing cells are empty.
func WriteDelimited(w io.Writer, t *Table, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	layouts := make([]string, len(t.Columns))
	for j := range t.Columns {
		if j < len(t.Kinds) && t.Kinds[j] == Time {
			layouts[j] = timeColumnLayout(t, j)
		}
	}
	rec := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j, v := range row {
			switch v.Kind {
			case Missing:
				rec[j] = ""
			case Time:
				l := layouts[j]
				if l == "" {
					l = dateTimeLayout
				}
				rec[j] = v.Time.Format(l)
			default:
				rec[j] = v.Str
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func timeColumnLayout(t *Table, j int) string {
	for _, row := range t.Rows {
		if v := row[j]; v.Kind == Time && !isMidnight(v.Time) {
			return dateTimeLayout
		}
	}
	return dateLayout
}
