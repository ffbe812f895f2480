// Package mojibake reverses the Latin-1/UTF-8 double-encoding defect found in
// Meta-family chat exports. At export time the original UTF-8 bytes were
// misread one-for-one as Latin-1 code points and re-encoded, so "café" arrives
// as "cafÃ©" and emoji arrive as runs of accented letters and C1 controls.
package mojibake

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Repair maps each code point of s back to its raw byte value and decodes the
// resulting sequence as UTF-8. It is the identity on plain ASCII and on any
// string that does not exhibit the defect: inputs containing runes above
// U+00FF cannot be a Latin-1 misread, and byte sequences that are not valid
// UTF-8 mean the text was already correct, so the input is returned unchanged
// rather than mangled further.
func Repair(s string) string {
	ascii := true
	for _, r := range s {
		if r > 0xFF {
			return s
		}
		if r >= utf8.RuneSelf {
			ascii = false
		}
	}
	if ascii {
		return s
	}

	raw, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return s
	}
	if !utf8.Valid(raw) {
		return s
	}
	return string(raw)
}
