package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
)

// ErrEmptyInput is returned when the input has no header row.
var ErrEmptyInput = errors.New("empty input: no header row")

// MalformedCellError reports a non-numeric cell in a numeric role column.
type MalformedCellError struct {
	Row    int // 1-based data row, header excluded
	Column string
	Value  string
}

func (e *MalformedCellError) Error() string {
	return fmt.Sprintf("row %d: column %q: %q is not a number", e.Row, e.Column, e.Value)
}

// Options controls how delimited text is read.
type Options struct {
	// Delimiter for CSV. If 0, it is sniffed from Name (".tsv" is tab-separated).
	Delimiter rune
	// Name labels the table, usually the source file's base name.
	Name string
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Name == "" {
		opt.Name = filepath.Base(path)
	}
	return Load(f, opt)
}

// Load reads a delimited file with a header row into a Table: headers are
// normalized, columns typed, date columns parsed and numeric roles
// validated. Input is UTF-8 (optionally with BOM) or, when not valid UTF-8,
// Latin-1.
func Load(r io.Reader, opt Options) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	raw, err = decodeText(raw)
	if err != nil {
		return nil, err
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(opt.Name)
	}
	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyInput
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	t := &Table{
		ID:      uuid.NewString(),
		Name:    opt.Name,
		Columns: append([]string(nil), header...),
		Kinds:   make([]Kind, ncol),
	}
	t.NormalizeHeaders()

	var records [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		if len(rec) > ncol {
			return nil, fmt.Errorf("read row %d: expected %d fields, got %d", len(records)+1, ncol, len(rec))
		}
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rec = tmp
		}
		records = append(records, rec)
	}

	t.Rows = make([][]Value, len(records))
	for i := range records {
		t.Rows[i] = make([]Value, ncol)
	}
	dateCols := map[string]bool{}
	for _, c := range DateColumns {
		dateCols[c] = true
	}
	for j := 0; j < ncol; j++ {
		if dateCols[t.Columns[j]] {
			for i, rec := range records {
				t.Rows[i][j] = StringValue(naOrText(rec[j]))
			}
			t.Kinds[j] = String
			continue
		}
		t.Kinds[j] = typeColumn(records, j, t.Rows)
	}
	t.Unparsed = ParseDates(t)

	if err := validateNumericRoles(t, records); err != nil {
		return nil, err
	}
	return t, nil
}

// typeColumn fills column j of rows. The column is numeric when every
// non-missing cell parses as a number and at least one does.
func typeColumn(records [][]string, j int, rows [][]Value) Kind {
	numeric := false
	for _, rec := range records {
		s := rec[j]
		if isNA(s) {
			continue
		}
		if _, ok := parseNumber(strings.TrimSpace(s)); !ok {
			numeric = false
			break
		}
		numeric = true
	}
	for i, rec := range records {
		s := rec[j]
		switch {
		case isNA(s):
			rows[i][j] = Value{}
		case numeric:
			f, _ := parseNumber(strings.TrimSpace(s))
			rows[i][j] = Value{Kind: Number, Num: f, Str: s}
		default:
			rows[i][j] = Value{Kind: String, Str: s}
		}
	}
	if numeric {
		return Number
	}
	return String
}

func validateNumericRoles(t *Table, records [][]string) error {
	roles := ResolveRoles(t)
	for _, role := range NumericRoles {
		col, ok := roles.Column(role)
		if !ok {
			continue
		}
		j := t.Index(col)
		if t.Kinds[j] == Number {
			continue
		}
		for i, rec := range records {
			s := rec[j]
			if isNA(s) {
				continue
			}
			if _, ok := parseNumber(strings.TrimSpace(s)); !ok {
				return &MalformedCellError{Row: i + 1, Column: col, Value: s}
			}
		}
	}
	return nil
}

func naOrText(s string) string {
	if isNA(s) {
		return ""
	}
	return s
}

func decodeText(b []byte) ([]byte, error) {
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	if utf8.Valid(b) {
		return b, nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return nil, fmt.Errorf("decode latin-1: %w", err)
	}
	return out, nil
}

func sniffDelimiter(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	return ','
}
