package kconfig

import "strings"

// unquote parses a leading double- or single-quoted string from s and
// returns its value and the remaining text.
func unquote(s string) (val, rest string, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || (s[0] != '"' && s[0] != '\'') {
		return "", s, false
	}

	q := s[0]

	var b strings.Builder

	for i := 1; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s):
			i++
			b.WriteByte(s[i])

		case c == q:
			return b.String(), strings.TrimSpace(s[i+1:]), true

		default:
			b.WriteByte(c)
		}
	}

	return "", s, false
}

// splitIf splits "<head> if <cond>" at the first top-level "if" keyword
// outside quotes and parentheses.
func splitIf(s string) (head, cond string) {
	var (
		quote byte
		depth int
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}

		case c == '"' || c == '\'':
			quote = c

		case c == '(':
			depth++

		case c == ')':
			depth--

		case depth == 0 && c == 'i' && strings.HasPrefix(s[i:], "if") &&
			(i == 0 || isSpace(s[i-1])) &&
			(i+2 == len(s) || isSpace(s[i+2]) || s[i+2] == '('):
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+2:])
		}
	}

	return strings.TrimSpace(s), ""
}

// fields splits s on whitespace outside quotes.
func fields(s string) []string {
	var (
		out   []string
		quote byte
		start = -1
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}

		case c == '"' || c == '\'':
			quote = c

			if start < 0 {
				start = i
			}

			continue

		case isSpace(c):
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}

			continue
		}

		if start < 0 {
			start = i
		}
	}

	if start >= 0 {
		out = append(out, s[start:])
	}

	return out
}

// stripComment removes a trailing "#" comment outside quotes.
func stripComment(s string) string {
	var quote byte

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}

		case c == '"' || c == '\'':
			quote = c

		case c == '#':
			return s[:i]
		}
	}

	return s
}

// conjuncts splits an expression source on top-level "&&".
func conjuncts(s string) []string {
	var (
		out   []string
		quote byte
		depth int
		start int
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}

		case c == '"' || c == '\'':
			quote = c

		case c == '(':
			depth++

		case c == ')':
			depth--

		case depth == 0 && c == '&' && i+1 < len(s) && s[i+1] == '&':
			out = append(out, trimParens(s[start:i]))
			start = i + 2
			i++
		}
	}

	return append(out, trimParens(s[start:]))
}

// trimParens removes whitespace and parentheses enclosing all of s.
func trimParens(s string) string {
	for {
		s = strings.TrimSpace(s)
		if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
			return s
		}

		depth := 0
		for i := 0; i < len(s)-1; i++ {
			switch s[i] {
			case '(':
				depth++
			case ')':
				depth--
			}

			if depth == 0 {
				return s
			}
		}

		s = s[1 : len(s)-1]
	}
}

// dependsOnSymbol reports whether any of conds requires name to be enabled
// as a top-level conjunct.
func dependsOnSymbol(conds []string, name string) bool {
	accept := []string{name, name + "!=n", name + "=y", name + "=m", name + "==y"}

	for _, cond := range conds {
		for _, part := range conjuncts(cond) {
			part = strings.Join(strings.Fields(part), "")
			for _, a := range accept {
				if part == a {
					return true
				}
			}
		}
	}

	return false
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

// indentWidth measures leading whitespace with tabs at eight columns.
func indentWidth(s string) int {
	w := 0

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ':
			w++
		case '\t':
			w = (w/8 + 1) * 8
		default:
			return w
		}
	}

	return w
}

// dropIndent removes n columns of leading whitespace from s.
func dropIndent(s string, n int) string {
	w := 0

	for i := 0; i < len(s); i++ {
		if w >= n {
			return s[i:]
		}

		switch s[i] {
		case ' ':
			w++
		case '\t':
			w = (w/8 + 1) * 8
		default:
			return s[i:]
		}
	}

	return ""
}
