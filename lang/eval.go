package lang

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// evalValue evaluates the raw right-hand side of an assignment. The rules
// are attempted in a fixed precedence order because several forms are
// textually ambiguous; the first match wins.
func (p *Parser) evalValue(
	ctx context.Context,
	raw string,
	line int,
) (Value, error) {
	text := strings.TrimSpace(raw)

	// One trailing statement terminator may survive inside recursive
	// evaluations (ternary branches, concatenation parts).
	if strings.HasSuffix(text, ";") {
		text = strings.TrimSpace(strings.TrimSuffix(text, ";"))
	}

	// 1. Literal keywords.
	switch text {
	case "true":
		return NewBool(true), nil
	case "false":
		return NewBool(false), nil
	case "null":
		return NewNull(), nil
	}

	// 2. Numeric literal.
	if isNumericLiteral(text) {
		n, err := strconv.ParseFloat(text, 64)
		if err == nil {
			return NewNumber(n), nil
		}
	}

	// 3. Global variable reference. A missing global resolves to an empty
	// string, not an error.
	if strings.HasPrefix(text, "$") && isIdentifier(text[1:]) {
		if v, ok := p.globals[text[1:]]; ok {
			return v, nil
		}

		return NewString(""), nil
	}

	// 4. Bare identifier against the active section's local variables.
	// Unknown identifiers fall through and end up as literal strings.
	if p.section != "" && isIdentifier(text) {
		if v, ok := p.sectionVars[p.section+"."+text]; ok {
			return v, nil
		}
	}

	// 5. Eager built-ins: @date, @env, and integer ranges.
	if v, ok, err := p.evalBuiltin(text); ok || err != nil {
		return v, err
	}

	// 6. Inline arrays and objects.
	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
		return p.evalArray(ctx, text, line)
	}

	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return p.evalObject(ctx, text, line)
	}

	// 7. Cross-file get/set.
	if name, key, ok := matchCrossGet(text); ok {
		return p.crossFileGet(ctx, name, key, line)
	}

	if name, key, val, ok := matchCrossSet(text); ok {
		return p.crossFileSet(ctx, name, key, val, line)
	}

	// 8. Generic operator dispatch. The raw parameter text is passed
	// through unparsed; semantics belong entirely to the engine.
	if name, params, ok := matchOperator(text); ok {
		return p.execOperator(ctx, text, name, params, line)
	}

	// 9. String concatenation.
	if indexTop(text, " + ") >= 0 {
		return p.evalConcat(ctx, text, line)
	}

	// 10. Ternary conditional.
	if cond, a, b, ok := splitTernary(text); ok {
		chosen := b

		truthy, err := p.evalCondition(ctx, cond, line)
		if err != nil {
			return Value{}, err
		}

		if truthy {
			chosen = a
		}

		return p.evalValue(ctx, chosen, line)
	}

	// 11. Fallback: strip one matching pair of quotes, else the raw text.
	return NewString(unquote(text)), nil
}

// evalBuiltin recognizes the eagerly evaluated call forms. It reports
// handled=false when text matches none of them, in which case evaluation
// falls through to later rules (notably generic operator dispatch).
func (p *Parser) evalBuiltin(text string) (Value, bool, error) {
	// @date("<fmt>")
	if inner, ok := callBody(text, "@date"); ok {
		if isQuoted(strings.TrimSpace(inner)) {
			fmt := unquote(strings.TrimSpace(inner))

			return NewString(p.formatDate(fmt)), true, nil
		}
	}

	// @env("<name>"[, default])
	if inner, ok := callBody(text, "@env"); ok {
		args := splitTop(inner, ',')
		if len(args) >= 1 && isQuoted(strings.TrimSpace(args[0])) {
			name := unquote(strings.TrimSpace(args[0]))

			if v, ok := p.lookupEnv(name); ok {
				return NewString(v), true, nil
			}

			def := ""
			if len(args) > 1 {
				def = unquote(strings.TrimSpace(args[1]))
			}

			return NewString(def), true, nil
		}
	}

	// N-M integer range.
	if lo, hi, ok := matchRange(text); ok {
		return NewObject(map[string]Value{
			"min":  NewNumber(lo),
			"max":  NewNumber(hi),
			"type": NewString("range"),
		}), true, nil
	}

	return Value{}, false, nil
}

// formatDate renders the current time using a PHP-style format string, the
// format family the language inherited for @date.
func (p *Parser) formatDate(format string) string {
	now := p.now().UTC()

	switch format {
	case "Y":
		return now.Format("2006")
	case "Y-m-d":
		return now.Format("2006-01-02")
	case "Y-m-d H:i:s":
		return now.Format("2006-01-02 15:04:05")
	case "c":
		return now.Format("2006-01-02T15:04:05Z07:00")
	default:
		return now.Format("2006-01-02 15:04:05")
	}
}

// evalArray parses an inline [ ... ] expression.
func (p *Parser) evalArray(
	ctx context.Context,
	text string,
	line int,
) (Value, error) {
	content := strings.TrimSpace(text[1 : len(text)-1])
	if content == "" {
		return NewArray(), nil
	}

	parts := splitTop(content, ',')
	items := make([]Value, 0, len(parts))

	for i, part := range parts {
		part = strings.TrimSpace(part)

		// A trailing separator is tolerated.
		if part == "" && i == len(parts)-1 {
			continue
		}

		v, err := p.evalValue(ctx, part, line)
		if err != nil {
			return Value{}, err
		}

		items = append(items, v)
	}

	return NewArray(items...), nil
}

// evalObject parses an inline { ... } expression. Pairs split on ',' at
// depth zero, then each pair on its first ':' or '=' outside quotes.
func (p *Parser) evalObject(
	ctx context.Context,
	text string,
	line int,
) (Value, error) {
	content := strings.TrimSpace(text[1 : len(text)-1])

	obj := make(map[string]Value)
	if content == "" {
		return NewObject(obj), nil
	}

	parts := splitTop(content, ',')

	for i, pair := range parts {
		pair = strings.TrimSpace(pair)

		if pair == "" && i == len(parts)-1 {
			continue
		}

		sep := indexTopAny(pair, ":=")
		if sep < 0 {
			return Value{}, ErrInvalidValue.
				Wrap(&SyntaxError{Line: line, Text: pair}).
				With(slog.String("reason", "object pair has no separator"))
		}

		key := unquote(strings.TrimSpace(pair[:sep]))

		v, err := p.evalValue(ctx, pair[sep+1:], line)
		if err != nil {
			return Value{}, err
		}

		obj[key] = v
	}

	return NewObject(obj), nil
}

// evalConcat splits on " + " outside quotes, evaluates each part, and
// joins the canonical string renderings.
func (p *Parser) evalConcat(
	ctx context.Context,
	text string,
	line int,
) (Value, error) {
	var sb strings.Builder

	rest := text

	for {
		idx := indexTop(rest, " + ")
		part := rest

		if idx >= 0 {
			part = rest[:idx]
			rest = rest[idx+3:]
		}

		v, err := p.evalValue(ctx, strings.TrimSpace(part), line)
		if err != nil {
			return Value{}, err
		}

		sb.WriteString(v.String())

		if idx < 0 {
			break
		}
	}

	return NewString(sb.String()), nil
}

// evalCondition evaluates the condition of a ternary expression. Simple
// ==, !=, and > comparisons are supported; anything else reduces to
// truthiness of the evaluated value.
func (p *Parser) evalCondition(
	ctx context.Context,
	cond string,
	line int,
) (bool, error) {
	cond = strings.TrimSpace(cond)

	if idx := indexTop(cond, "=="); idx >= 0 {
		l, r, err := p.evalPair(ctx, cond[:idx], cond[idx+2:], line)
		if err != nil {
			return false, err
		}

		return l.String() == r.String(), nil
	}

	if idx := indexTop(cond, "!="); idx >= 0 {
		l, r, err := p.evalPair(ctx, cond[:idx], cond[idx+2:], line)
		if err != nil {
			return false, err
		}

		return l.String() != r.String(), nil
	}

	if idx := indexTop(cond, ">"); idx >= 0 {
		l, r, err := p.evalPair(ctx, cond[:idx], cond[idx+1:], line)
		if err != nil {
			return false, err
		}

		ln, lok := l.AsNumber()

		rn, rok := r.AsNumber()
		if lok && rok {
			return ln > rn, nil
		}

		return l.String() > r.String(), nil
	}

	v, err := p.evalValue(ctx, cond, line)
	if err != nil {
		return false, err
	}

	return v.Truthy(), nil
}

func (p *Parser) evalPair(
	ctx context.Context,
	rawL, rawR string,
	line int,
) (Value, Value, error) {
	l, err := p.evalValue(ctx, strings.TrimSpace(rawL), line)
	if err != nil {
		return Value{}, Value{}, err
	}

	r, err := p.evalValue(ctx, strings.TrimSpace(rawR), line)
	if err != nil {
		return Value{}, Value{}, err
	}

	return l, r, nil
}

// execOperator forwards a generic @name(params) call to the operator
// engine. Without an engine, the call evaluates to its own literal text so
// documents remain parseable in engine-less contexts.
func (p *Parser) execOperator(
	ctx context.Context,
	text, name, params string,
	line int,
) (Value, error) {
	if p.engine == nil {
		return NewString(text), nil
	}

	p.logger.TraceContext(ctx, "operator dispatch",
		slog.String("operator", name),
		slog.Int("line", line))

	v, err := p.engine.Execute(name, params)
	if err != nil {
		return Value{}, ErrOperator.Wrap(err).
			With(slog.String("operator", name)).
			AtLine(line)
	}

	return v, nil
}

// splitTernary recognizes "condition ? a : b" with both separators at depth
// zero outside quotes.
func splitTernary(text string) (cond, a, b string, ok bool) {
	q := indexTop(text, "?")
	if q <= 0 {
		return "", "", "", false
	}

	rest := text[q+1:]

	c := indexTop(rest, ":")
	if c < 0 {
		return "", "", "", false
	}

	return strings.TrimSpace(text[:q]),
		strings.TrimSpace(rest[:c]),
		strings.TrimSpace(rest[c+1:]),
		true
}

// matchRange recognizes two integer literals joined by a hyphen.
func matchRange(text string) (lo, hi float64, ok bool) {
	idx := strings.IndexByte(text, '-')
	if idx <= 0 || idx == len(text)-1 {
		return 0, 0, false
	}

	l, r := text[:idx], text[idx+1:]
	if !isDigits(l) || !isDigits(r) {
		return 0, 0, false
	}

	lo, _ = strconv.ParseFloat(l, 64)
	hi, _ = strconv.ParseFloat(r, 64)

	return lo, hi, true
}

// matchCrossGet recognizes @<file>.tsk.get('<key>').
func matchCrossGet(text string) (name, key string, ok bool) {
	name, inner, ok := crossCall(text, ".tsk.get(")
	if !ok {
		return "", "", false
	}

	inner = strings.TrimSpace(inner)
	if !isQuoted(inner) {
		return "", "", false
	}

	return name, unquote(inner), true
}

// matchCrossSet recognizes @<file>.tsk.set('<key>', <value>).
func matchCrossSet(text string) (name, key, value string, ok bool) {
	name, inner, ok := crossCall(text, ".tsk.set(")
	if !ok {
		return "", "", "", false
	}

	args := splitTop(inner, ',')
	if len(args) < 2 {
		return "", "", "", false
	}

	key = strings.TrimSpace(args[0])
	if !isQuoted(key) {
		return "", "", "", false
	}

	return name, unquote(key), strings.TrimSpace(strings.Join(args[1:], ",")), true
}

// crossCall matches "@<name><marker>...)" and returns the file name and the
// argument text inside the parentheses.
func crossCall(text, marker string) (name, inner string, ok bool) {
	if !strings.HasPrefix(text, "@") || !strings.HasSuffix(text, ")") {
		return "", "", false
	}

	idx := strings.Index(text, marker)
	if idx <= 1 {
		return "", "", false
	}

	name = text[1:idx]
	if !isIdentifier(name) {
		return "", "", false
	}

	return name, text[idx+len(marker) : len(text)-1], true
}

// matchOperator recognizes a generic @identifier(params) call.
func matchOperator(text string) (name, params string, ok bool) {
	if !strings.HasPrefix(text, "@") || !strings.HasSuffix(text, ")") {
		return "", "", false
	}

	open := strings.IndexByte(text, '(')
	if open <= 1 {
		return "", "", false
	}

	name = text[1:open]
	if !isIdentifier(name) {
		return "", "", false
	}

	return name, text[open+1 : len(text)-1], true
}

// callBody matches "<fn>(<body>)" and returns the body.
func callBody(text, fn string) (string, bool) {
	if !strings.HasPrefix(text, fn+"(") || !strings.HasSuffix(text, ")") {
		return "", false
	}

	return text[len(fn)+1 : len(text)-1], true
}

// isNumericLiteral reports whether text has the shape of an integer or
// floating-point literal. It deliberately rejects the exotic inputs
// strconv.ParseFloat would accept ("inf", "nan", hex floats) so they fall
// through to the string rules.
func isNumericLiteral(text string) bool {
	s := text

	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		s = s[1:]
	}

	if s == "" {
		return false
	}

	digits, dot, exp := 0, false, false

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot && !exp:
			dot = true
		case (c == 'e' || c == 'E') && !exp && digits > 0:
			exp = true
			// Optional exponent sign.
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				i++
			}

			if i+1 >= len(s) {
				return false
			}
		default:
			return false
		}
	}

	return digits > 0
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
