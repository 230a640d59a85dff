package lang

import (
	"sort"
	"strconv"
	"strings"
)

// Serialize renders a Config as canonical document text. Top-level scalars
// and arrays come first in sorted key order, followed by one [section]
// block per top-level object, also sorted. Serialized output parses back
// to an equivalent Config, and serializing that result reproduces the same
// text byte for byte.
func Serialize(cfg *Config) string {
	var sb strings.Builder

	root := cfg.Root()

	keys := cfg.Keys()

	var sections []string

	for _, key := range keys {
		v, _ := root.Get(key)

		// An object renders as a [section] block only when its own key and
		// every inner key are bare identifiers and it has at least one
		// entry; anything else stays an inline object so the output remains
		// parseable. A bare section header would drop an empty object, and
		// keys like "$cfg" are not valid section names.
		if obj, ok := v.AsObject(); ok && sectionable(key, obj) {
			sections = append(sections, key)

			continue
		}

		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(renderValue(v))
		sb.WriteByte('\n')
	}

	for _, name := range sections {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}

		sb.WriteByte('[')
		sb.WriteString(name)
		sb.WriteString("]\n")

		v, _ := root.Get(name)
		obj, _ := v.AsObject()

		inner := make([]string, 0, len(obj))
		for k := range obj {
			inner = append(inner, k)
		}

		sort.Strings(inner)

		for _, k := range inner {
			sb.WriteString(k)
			sb.WriteString(": ")
			sb.WriteString(renderValue(obj[k]))
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

func sectionable(key string, obj map[string]Value) bool {
	if !isIdentifier(key) || len(obj) == 0 {
		return false
	}

	for k := range obj {
		if !isIdentifier(k) {
			return false
		}
	}

	return true
}

// renderValue writes a value in source form: strings always quoted, and
// composites inline. This differs from Value.String, which renders bare
// text for interpolation.
func renderValue(v Value) string {
	switch v.Kind() {
	case KindString:
		s, _ := v.AsString()

		return quoteString(s)

	case KindArray:
		arr, _ := v.AsArray()

		parts := make([]string, len(arr))
		for i, item := range arr {
			parts[i] = renderValue(item)
		}

		return "[" + strings.Join(parts, ", ") + "]"

	case KindObject:
		obj, _ := v.AsObject()

		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = quoteString(k) + ": " + renderValue(obj[k])
		}

		return "{" + strings.Join(parts, ", ") + "}"

	case KindBytes:
		return quoteString(v.String())

	case KindTimestamp, KindDuration, KindReference:
		return quoteString(v.String())

	case KindNumber:
		n, _ := v.AsNumber()

		return strconv.FormatFloat(n, 'g', -1, 64)

	default:
		return v.String()
	}
}
