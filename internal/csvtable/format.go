// Package csvtable reads and writes delimited text tables.
//
// Reading detects the character encoding, the line ending and the field
// separator before parsing, so exports from spreadsheet programs in common
// European locales load without configuration.
package csvtable

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/domonda/go-types/charset"
)

// Format describes the detected layout of delimited text.
type Format struct {
	Encoding  string
	Separator string
	Newline   string
}

func (f *Format) String() string {
	return fmt.Sprintf("encoding=%s separator=%q newline=%q", f.Encoding, f.Separator, f.Newline)
}

// DetectionConfig lists the encodings to try and the characters that
// identify a correct decoding.
type DetectionConfig struct {
	Encodings     []string
	EncodingTests []string
}

// DefaultDetectionConfig covers UTF-8, UTF-16LE and the common western
// single byte code pages.
func DefaultDetectionConfig() *DetectionConfig {
	return &DetectionConfig{
		Encodings: []string{
			"UTF-8",
			"UTF-16LE",
			"ISO 8859-1",
			"Windows 1252",
			"Macintosh",
		},
		EncodingTests: []string{
			"ä", "Ä", "ö", "Ö", "ü", "Ü", "ß", "§", "€", "é", "è", "ñ",
		},
	}
}

// DetectFormat decodes data to UTF-8 and detects line endings and the
// separator. It returns the decoded text with any sep= declaration removed.
func DetectFormat(data []byte, config *DetectionConfig) (*Format, []byte, error) {
	if config == nil {
		config = DefaultDetectionConfig()
	}

	var encodings []charset.Encoding
	for _, name := range config.Encodings {
		enc, err := charset.GetEncoding(name)
		if err != nil {
			return nil, nil, err
		}
		encodings = append(encodings, enc)
	}

	format := new(Format)
	decoded, encoding, err := charset.AutoDecode(data, encodings, config.EncodingTests)
	if err != nil {
		return nil, nil, fmt.Errorf("detect encoding: %w", err)
	}
	format.Encoding = encoding
	if format.Encoding == "" {
		format.Encoding = "UTF-8"
	}
	decoded = charset.TrimBOM(decoded, charset.BOMUTF8)
	decoded = sanitizeUTF8(decoded)

	if bytes.Contains(decoded, []byte{'\r', '\n'}) {
		format.Newline = "\r\n"
	} else {
		format.Newline = "\n"
	}

	first, rest, _ := bytes.Cut(decoded, []byte(format.Newline))
	if sep := parseSepHeaderLine(first); sep != "" {
		format.Separator = sep
		return format, rest, nil
	}

	format.Separator = detectSeparator(decoded, format.Newline)
	return format, decoded, nil
}

// detectSeparator picks the most frequent of comma, semicolon and tab,
// falling back to comma on ties.
func detectSeparator(data []byte, newline string) string {
	var commas, semicolons, tabs int
	for _, line := range bytes.Split(data, []byte(newline)) {
		commas += bytes.Count(line, []byte{','})
		semicolons += bytes.Count(line, []byte{';'})
		tabs += bytes.Count(line, []byte{'\t'})
	}
	switch {
	case semicolons > commas && semicolons > tabs:
		return ";"
	case tabs > commas && tabs > semicolons:
		return "\t"
	default:
		return ","
	}
}

// parseSepHeaderLine recognises the Excel "sep=X" first line, optionally
// quoted, and returns X.
func parseSepHeaderLine(line []byte) string {
	line = bytes.TrimRight(line, "\r")
	if len(line) >= 2 && line[0] == '"' && line[len(line)-1] == '"' {
		line = line[1 : len(line)-1]
	}
	if len(line) != 5 {
		return ""
	}
	if !bytes.HasPrefix(line, []byte("sep=")) && !bytes.HasPrefix(line, []byte("SEP=")) {
		return ""
	}
	return string(line[4:5])
}

// sanitizeUTF8 replaces invalid sequences and no-break spaces with a space.
func sanitizeUTF8(data []byte) []byte {
	return bytes.Map(
		func(r rune) rune {
			switch r {
			case '\uFFFD', '\u00a0':
				return ' '
			default:
				return r
			}
		},
		data,
	)
}

var errEmpty = errors.New("no columns to parse from file")
