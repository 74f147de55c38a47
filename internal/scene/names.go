package scene

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// MaxNameColumns bounds a character name's display width. Wide (CJK)
// runes take two columns.
const MaxNameColumns = 16

var ErrInvalidName = errors.New("invalid character name")

// NormalizeName puts a character name in canonical form: NFC composed,
// full-width ASCII folded to narrow, surrounding space trimmed, and cut to
// MaxNameColumns display columns.
func NormalizeName(name string) (string, error) {
	s := width.Fold.String(norm.NFC.String(name))
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}

	var b strings.Builder
	cols := 0
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: %q has control characters", ErrInvalidName, name)
		}
		w := runeColumns(r)
		if cols+w > MaxNameColumns {
			break
		}
		cols += w
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String()), nil
}

// NameColumns is the display width of s.
func NameColumns(s string) int {
	n := 0
	for _, r := range s {
		n += runeColumns(r)
	}
	return n
}

func runeColumns(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}
