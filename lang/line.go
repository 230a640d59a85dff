package lang

import "strings"

// lineKind classifies one logical line of input.
type lineKind int

const (
	lineSection    lineKind = iota // [identifier]
	lineScopeOpen                  // identifier > | identifier {
	lineScopeClose                 // < | }
	lineKeyValue                   // key : value | key = value
	lineArrayItem                  // - value
)

// line is the output of the lexical line processor for one logical line.
type line struct {
	num   int      // 1-based source line number
	kind  lineKind //
	name  string   // section or scope name
	key   string   // assignment key (may begin with '$')
	value string   // raw right-hand side, or array item text
}

// classifyLine trims, strips one trailing statement terminator, and matches
// the line against the productions of the grammar in order. It returns
// ok=false for blank lines and comments. Any other non-matching line is a
// syntax error carrying the 1-based line number.
func classifyLine(num int, raw string) (line, bool, error) {
	text := strings.TrimSpace(raw)

	if text == "" || strings.HasPrefix(text, "#") {
		return line{}, false, nil
	}

	// Drop one trailing statement terminator.
	if strings.HasSuffix(text, ";") {
		text = strings.TrimSpace(strings.TrimSuffix(text, ";"))
		if text == "" {
			return line{}, false, nil
		}
	}

	// [identifier] section header
	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
		name := strings.TrimSpace(text[1 : len(text)-1])
		if isIdentifier(name) {
			return line{num: num, kind: lineSection, name: name}, true, nil
		}
	}

	// identifier > or identifier { opens a nested scope. Both syntaxes are
	// equivalent. A '{' with anything after it is an inline object value and
	// falls through to key/value classification.
	if strings.HasSuffix(text, ">") || strings.HasSuffix(text, "{") {
		name := strings.TrimSpace(text[:len(text)-1])
		if isIdentifier(name) {
			return line{num: num, kind: lineScopeOpen, name: name}, true, nil
		}
	}

	// Bare < or } closes the open nested scope.
	if text == "<" || text == "}" {
		return line{num: num, kind: lineScopeClose}, true, nil
	}

	// key : value or key = value
	if key, value, ok := splitAssignment(text); ok {
		return line{num: num, kind: lineKeyValue, key: key, value: value},
			true, nil
	}

	// - value array item
	if strings.HasPrefix(text, "- ") {
		item := strings.TrimSpace(text[2:])

		return line{num: num, kind: lineArrayItem, value: item}, true, nil
	}

	return line{}, false, ErrParse.Wrap(&SyntaxError{Line: num, Text: text})
}

// splitAssignment splits "key : value" or "key = value". The key may carry a
// leading '$' (global binding). The value may be empty, which the parser
// treats as the start of a dash-item array block.
func splitAssignment(text string) (key, value string, ok bool) {
	rest := text

	if strings.HasPrefix(rest, "$") {
		rest = rest[1:]
	}

	end := identifierLen(rest)
	if end == 0 {
		return "", "", false
	}

	key = text[:len(text)-len(rest)+end]
	rest = strings.TrimLeft(rest[end:], " \t")

	if rest == "" || (rest[0] != ':' && rest[0] != '=') {
		return "", "", false
	}

	return key, strings.TrimSpace(rest[1:]), true
}

// isIdentifier reports whether s is a bare identifier:
// [A-Za-z_][A-Za-z0-9_-]*.
func isIdentifier(s string) bool {
	return s != "" && identifierLen(s) == len(s)
}

// identifierLen returns the length of the identifier prefix of s.
func identifierLen(s string) int {
	if s == "" || !isIdentStart(s[0]) {
		return 0
	}

	i := 1
	for i < len(s) && isIdentCont(s[i]) {
		i++
	}

	return i
}

func isIdentStart(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || c == '-' || (c >= '0' && c <= '9')
}
