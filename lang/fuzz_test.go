package lang

import (
	"context"
	"testing"
	"unicode/utf8"
)

// FuzzParse drives the parser with arbitrary documents to find inputs that
// panic or produce unclassified errors.
func FuzzParse(f *testing.F) {
	// Seed corpus with known valid inputs
	f.Add("key: value")
	f.Add(`name: "quoted"`)
	f.Add("[section]\nkey: 1")
	f.Add("scope>\nk: 1\n<")
	f.Add("scope {\nk: 1\n}")
	f.Add("$g: 1\nv: $g")
	f.Add("arr: [1, 2, 3]")
	f.Add(`obj: {a: 1, b: "x"}`)
	f.Add("items:\n- 1\n- 2")
	f.Add("# comment\n\nk: v;")
	f.Add(`t: 1 > 0 ? "a" : "b"`)
	f.Add(`c: "a" + "b"`)
	f.Add("r: 1-10")
	f.Add("op: @uuid()")
	f.Add("x: @other.tsk.get('k')")
	f.Add("$cfg: {a: 1}")
	f.Add("empty: {}")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		defer func() {
			if r := recover(); r != nil {
				t.Errorf("parser panicked on input %q: %v", input, r)
			}
		}()

		cfg, err := Parse(context.Background(), input, WithFilesystem(MapFilesystem{}))
		if err != nil {
			return
		}

		if cfg == nil {
			t.Errorf("nil config without error for input %q", input)

			return
		}

		// Canonical text must reparse without error.
		text := Serialize(cfg)

		if _, err := Parse(context.Background(), text); err != nil {
			t.Errorf("serialized form failed to reparse: %v\ninput: %q\ntext:\n%s",
				err, input, text)
		}
	})
}
