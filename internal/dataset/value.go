package dataset

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Kind is the parsed type of a single cell.
type Kind uint8

const (
	Missing Kind = iota
	String
	Number
	Time
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Time:
		return "datetime"
	default:
		return "missing"
	}
}

// Value is one table cell. Number values keep the text they were parsed from
// so that writing the table back out reproduces the input bytes.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Time time.Time
}

// StringValue returns a text cell. Empty text is Missing.
func StringValue(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Kind: String, Str: s}
}

// NumberValue returns a numeric cell rendered in shortest form.
func NumberValue(f float64) Value {
	return Value{Kind: Number, Num: f, Str: strconv.FormatFloat(f, 'g', -1, 64)}
}

// TimeValue returns a timezone-naive datetime cell.
func TimeValue(t time.Time) Value {
	return Value{Kind: Time, Time: naive(t)}
}

func (v Value) IsMissing() bool { return v.Kind == Missing }

// Float reports the numeric value of a Number cell.
func (v Value) Float() (float64, bool) {
	if v.Kind != Number {
		return 0, false
	}
	return v.Num, true
}

// Text renders the cell for display and for membership tests.
func (v Value) Text() string {
	switch v.Kind {
	case String, Number:
		return v.Str
	case Time:
		if isMidnight(v.Time) {
			return v.Time.Format(dateLayout)
		}
		return v.Time.Format(dateTimeLayout)
	default:
		return ""
	}
}

// Equal compares two cells by content. Times compare as instants, every
// other kind by its text, so a numeric-looking string equals the number it
// reads back as.
func (v Value) Equal(o Value) bool {
	if v.Kind == Missing || o.Kind == Missing {
		return v.Kind == o.Kind
	}
	if v.Kind == Time || o.Kind == Time {
		return v.Kind == o.Kind && v.Time.Equal(o.Time)
	}
	return v.Text() == o.Text()
}

// MarshalJSON emits numbers as JSON numbers, missing cells as null and
// everything else as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case Number:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.Num, 'g', -1, 64)), nil
	case String, Time:
		return json.Marshal(v.Text())
	default:
		return []byte("null"), nil
	}
}

var naValues = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "<NA>": {},
}

func isNA(s string) bool {
	if s == "" {
		return true
	}
	_, ok := naValues[s]
	return ok
}

// parseNumber accepts finite decimal numbers only.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
