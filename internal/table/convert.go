package table

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex matches integers, decimals and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// missingMarkers are the cell texts read as missing values from delimited
// text and spreadsheets.
var missingMarkers = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissingMarker reports whether a raw cell text denotes a missing value.
func IsMissingMarker(s string) bool {
	_, ok := missingMarkers[s]
	return ok
}

// ParseNumber parses s as a decimal number. Surrounding whitespace is
// ignored; hex, underscores, "inf" and "nan" are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatNumber renders f in its shortest form: integral values without a
// fractional part, everything else with the fewest digits that round-trip.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Classify converts raw cell texts into a typed column. Marker texts become
// Missing. The column is Numeric when every remaining cell parses as a
// number, in which case the cells are stored as numbers.
func Classify(name string, raw []string) Column {
	values := make([]Value, len(raw))
	numeric := true
	for i, s := range raw {
		if IsMissingMarker(s) {
			continue
		}
		values[i] = Text(s)
		if _, ok := ParseNumber(s); !ok {
			numeric = false
		}
	}
	col := Column{Name: name, Type: TypeText, Values: values}
	if numeric {
		col.Type = TypeNumeric
		for i, v := range values {
			if f, ok := v.Float(); ok {
				values[i] = Number(f)
			}
		}
	}
	return col
}

// ClassifyValues assigns a type tag to already typed cells, as produced by
// decoders that know numbers from strings. A column whose non-missing cells
// are all numbers is Numeric; otherwise numbers are kept but the column is
// Text.
func ClassifyValues(name string, values []Value) Column {
	typ := TypeNumeric
	for _, v := range values {
		if v.Kind() == KindText {
			typ = TypeText
			break
		}
	}
	return Column{Name: name, Type: typ, Values: values}
}
