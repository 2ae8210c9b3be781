package parse

import (
	"fmt"
	"strings"
)

// sanitize repairs the escape mistakes models commonly make inside JSON
// string literals. Legal escapes pass through; any other backslash is
// doubled so sequences like \( survive as literal text. Raw control
// characters inside strings are escaped. Bytes outside string literals
// are copied unchanged.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/16)

	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}

		switch {
		case c == '\\':
			if legalEscape(s, i+1) {
				b.WriteByte(c)
				b.WriteByte(s[i+1])
				i++
			} else {
				b.WriteString(`\\`)
			}
		case c == '"':
			inString = false
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20:
			fmt.Fprintf(&b, `\u%04x`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// legalEscape reports whether the bytes at i complete a JSON escape
// sequence. \u needs four hex digits, so \underline is not one.
func legalEscape(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	switch s[i] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return true
	case 'u':
		if i+5 > len(s) {
			return false
		}
		for _, h := range s[i+1 : i+5] {
			if !strings.ContainsRune("0123456789abcdefABCDEF", h) {
				return false
			}
		}
		return true
	}
	return false
}
