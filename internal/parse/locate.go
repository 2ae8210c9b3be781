package parse

import "strings"

// locateArray finds the first array whose first element is an object and
// returns it up to its matching close bracket. Brackets inside string
// literals do not count. Arrays of scalars are skipped. If the first
// object array never closes, everything after it is inside it, so there is
// no candidate at all.
func locateArray(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for from := 0; from < len(s); {
		i := strings.IndexByte(s[from:], '[')
		if i < 0 {
			return "", false
		}
		start := from + i
		from = start + 1

		if !opensObject(s, start+1) {
			continue
		}
		end, ok := matchBracket(s, start)
		if !ok {
			return "", false
		}
		return s[start : end+1], true
	}
	return "", false
}

// opensObject reports whether the next non-whitespace byte at or after i
// is '{'.
func opensObject(s string, i int) bool {
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

// matchBracket returns the index of the ']' closing the '[' at start.
func matchBracket(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
