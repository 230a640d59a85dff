package lang

// Scanning helpers for inline expressions. Separators are only honored at
// bracket depth zero and outside quoted strings; a quote character toggles
// string state and suppresses all depth/separator interpretation until the
// matching quote. Backslash escapes inside strings are respected.

// scanner walks a raw expression tracking quote state and bracket depth.
type scanner struct {
	s       string
	i       int
	depth   int
	quote   byte // active quote character, or 0
	escaped bool
}

// step advances one byte, updating quote and depth state.
func (sc *scanner) step() {
	c := sc.s[sc.i]
	sc.i++

	if sc.quote != 0 {
		switch {
		case sc.escaped:
			sc.escaped = false
		case c == '\\':
			sc.escaped = true
		case c == sc.quote:
			sc.quote = 0
		}

		return
	}

	switch c {
	case '"', '\'':
		sc.quote = c
	case '[', '{', '(':
		sc.depth++
	case ']', '}', ')':
		sc.depth--
	}
}

// top reports whether the scanner is at depth zero outside any string.
func (sc *scanner) top() bool { return sc.depth == 0 && sc.quote == 0 }

// splitTop splits s on sep, honoring nesting and quoting. Empty input
// yields no parts.
func splitTop(s string, sep byte) []string {
	var parts []string

	start := 0
	sc := scanner{s: s}

	for sc.i < len(s) {
		if sc.top() && s[sc.i] == sep && sc.quote == 0 {
			parts = append(parts, s[start:sc.i])
			sc.i++
			start = sc.i

			continue
		}

		sc.step()
	}

	if start < len(s) || len(parts) > 0 {
		parts = append(parts, s[start:])
	}

	return parts
}

// indexTop returns the first index of substr occurring at depth zero
// outside quotes, or -1.
func indexTop(s, substr string) int {
	if substr == "" {
		return -1
	}

	sc := scanner{s: s}

	for sc.i+len(substr) <= len(s) {
		if sc.top() && s[sc.i:sc.i+len(substr)] == substr {
			return sc.i
		}

		sc.step()
	}

	return -1
}

// indexTopAny returns the first index of any byte from set occurring at
// depth zero outside quotes, or -1.
func indexTopAny(s, set string) int {
	sc := scanner{s: s}

	for sc.i < len(s) {
		if sc.top() {
			c := s[sc.i]
			for j := range len(set) {
				if c == set[j] {
					return sc.i
				}
			}
		}

		sc.step()
	}

	return -1
}

// unquote strips one matching pair of surrounding quotes and resolves
// backslash escapes for the quote character and the backslash itself.
// Text without surrounding quotes is returned verbatim.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}

	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return s
	}

	inner := s[1 : len(s)-1]
	if !containsByte(inner, '\\') {
		return inner
	}

	out := make([]byte, 0, len(inner))

	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == '\\' && i+1 < len(inner) {
			next := inner[i+1]
			if next == q || next == '\\' {
				out = append(out, next)
				i++

				continue
			}
		}

		out = append(out, c)
	}

	return string(out)
}

// quoteString renders s as a double-quoted literal the evaluator's
// fallback rule will reverse exactly.
func quoteString(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')

	for i := range len(s) {
		if s[i] == '"' || s[i] == '\\' {
			out = append(out, '\\')
		}

		out = append(out, s[i])
	}

	return string(append(out, '"'))
}

// isQuoted reports whether s is wrapped in one matching pair of quotes.
func isQuoted(s string) bool {
	return len(s) >= 2 &&
		(s[0] == '"' || s[0] == '\'') &&
		s[len(s)-1] == s[0]
}

func containsByte(s string, c byte) bool {
	for i := range len(s) {
		if s[i] == c {
			return true
		}
	}

	return false
}
