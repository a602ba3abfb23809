package table

import "math"

// Kind identifies what a Value holds.
type Kind uint8

const (
	KindMissing Kind = iota
	KindText
	KindNumber
)

// Value is a single cell. The zero Value is Missing.
type Value struct {
	kind Kind
	text string
	num  float64
}

// Missing returns the missing value marker.
func Missing() Value { return Value{} }

// Text returns a text cell.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number returns a numeric cell. NaN is stored as Missing.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsMissing() bool { return v.kind == KindMissing }

func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Float returns the numeric content of v. Text cells are parsed; ok is false
// for Missing and for text that is not a number.
func (v Value) Float() (f float64, ok bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		return ParseNumber(v.text)
	default:
		return 0, false
	}
}

// String returns the display form of v. Missing renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return FormatNumber(v.num)
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same content.
// Missing equals Missing; numbers compare by value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num == o.num
	default:
		return true
	}
}
