package xmltree

import (
	"fmt"
	"unicode/utf8"
)

// CheckText reports the first character of s that an XML 1.0 document cannot
// carry, escaped or not. Valid are tab, newline, carriage return and the
// ranges U+0020-U+D7FF, U+E000-U+FFFD and U+10000-U+10FFFF; s must also be
// valid UTF-8.
func CheckText(s string) error {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return fmt.Errorf("invalid UTF-8 at byte %d", i)
		}

		if !isChar(r) {
			return fmt.Errorf("character %U at byte %d is not allowed in XML", r, i)
		}

		i += size
	}

	return nil
}

// isChar implements the Char production of the XML 1.0 grammar.
func isChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	default:
		return r >= 0x10000 && r <= utf8.MaxRune
	}
}
