package dataset

import (
	"strings"
)

// Table is an in-memory trending dataset. Rows hold one Value per column in
// Columns order. A Table is built fresh for every load and never cached.
type Table struct {
	// ID identifies one load of a file; a re-upload gets a new ID.
	ID      string
	Name    string
	Columns []string
	// Kinds records the inferred kind of each column.
	Kinds []Kind
	Rows  [][]Value
	// Unparsed counts date cells per column that were coerced to Missing.
	Unparsed map[string]int
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of the named column or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (t *Table) Has(name string) bool { return t.Index(name) >= 0 }

// Column returns the cells of one column, or nil if it does not exist.
func (t *Table) Column(name string) []Value {
	idx := t.Index(name)
	if idx < 0 {
		return nil
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// Floats returns the non-missing numeric cells of a column.
func (t *Table) Floats(name string) []float64 {
	idx := t.Index(name)
	if idx < 0 {
		return nil
	}
	out := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if f, ok := row[idx].Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Record exposes row i as a column-name keyed map.
func (t *Table) Record(i int) map[string]Value {
	rec := make(map[string]Value, len(t.Columns))
	for j, c := range t.Columns {
		rec[c] = t.Rows[i][j]
	}
	return rec
}

// NumericColumns lists columns whose inferred kind is Number.
func (t *Table) NumericColumns() []string {
	var out []string
	for i, c := range t.Columns {
		if i < len(t.Kinds) && t.Kinds[i] == Number {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy of the table structure. Values are immutable
// and shared.
func (t *Table) Clone() *Table {
	rows := make([][]Value, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = append([]Value(nil), r...)
	}
	return t.withRows(rows)
}

func (t *Table) withRows(rows [][]Value) *Table {
	out := &Table{
		ID:      t.ID,
		Name:    t.Name,
		Columns: append([]string(nil), t.Columns...),
		Kinds:   append([]Kind(nil), t.Kinds...),
		Rows:    rows,
	}
	if t.Unparsed != nil {
		out.Unparsed = make(map[string]int, len(t.Unparsed))
		for k, v := range t.Unparsed {
			out.Unparsed[k] = v
		}
	}
	return out
}

// NormalizeHeaders trims, lower-cases and replaces spaces with underscores
// in every column name. Applying it twice is the same as applying it once.
func NormalizeHeaders(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = normalizeHeader(c)
	}
	return out
}

func normalizeHeader(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// NormalizeHeaders renames the table's columns in place.
func (t *Table) NormalizeHeaders() {
	t.Columns = NormalizeHeaders(t.Columns)
}
