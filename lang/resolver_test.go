package lang

import (
	"context"
	"errors"
	"strconv"
	"testing"
)

// countingFS wraps a Filesystem and counts ReadFile calls per name.
type countingFS struct {
	Filesystem

	reads map[string]int
}

func (c *countingFS) ReadFile(name string) ([]byte, error) {
	c.reads[name]++

	return c.Filesystem.ReadFile(name)
}

func TestCrossFile_Get(t *testing.T) {
	fs := MapFilesystem{
		"database.tsk": "host: \"db.internal\"\nport: 5432\n\n[pool]\nsize: 10\n",
	}

	input := `
db_host: @database.tsk.get('host')
db_port: @database.tsk.get('port')
pool: @database.tsk.get('pool.size')
`

	cfg, err := Parse(context.Background(), input, WithFilesystem(fs))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	tests := []struct {
		key  string
		want Value
	}{
		{key: "db_host", want: NewString("db.internal")},
		{key: "db_port", want: NewNumber(5432)},
		{key: "pool", want: NewNumber(10)},
	}

	for _, tt := range tests {
		got, ok := cfg.Get(tt.key)
		if !ok {
			t.Fatalf("key %q not found", tt.key)
		}

		if !got.Equal(tt.want) {
			t.Errorf("%q = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestCrossFile_Memoization(t *testing.T) {
	fs := &countingFS{
		Filesystem: MapFilesystem{"shared.tsk": `token: "abc"`},
		reads:      make(map[string]int),
	}

	input := `
a: @shared.tsk.get('token')
b: @shared.tsk.get('token')
c: @shared.tsk.get('token')
`

	if _, err := Parse(context.Background(), input, WithFilesystem(fs)); err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if got := fs.reads["shared.tsk"]; got != 1 {
		t.Errorf("shared.tsk read %d times, want 1", got)
	}
}

func TestCrossFile_MissingDefaultsToEmpty(t *testing.T) {
	fs := MapFilesystem{"exists.tsk": `known: 1`}

	input := `
no_file: @ghost.tsk.get('anything')
no_key: @exists.tsk.get('unknown')
`

	cfg, err := Parse(context.Background(), input, WithFilesystem(fs))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	for _, key := range []string{"no_file", "no_key"} {
		got, _ := cfg.Get(key)
		if !got.Equal(NewString("")) {
			t.Errorf("%q = %v, want empty string", key, got)
		}
	}
}

func TestCrossFile_StrictMode(t *testing.T) {
	fs := MapFilesystem{"exists.tsk": `known: 1`}

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "missing file",
			input: `v: @ghost.tsk.get('x')`,
			want:  ErrReadInput,
		},
		{
			name:  "missing key",
			input: `v: @exists.tsk.get('unknown')`,
			want:  ErrVariableNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(
				context.Background(),
				tt.input,
				WithFilesystem(fs),
				WithStrictCrossFile(true),
			)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCrossFile_Set(t *testing.T) {
	fs := MapFilesystem{"state.tsk": `counter: 1`}

	input := `
wrote: @state.tsk.set('counter', 99)
read: @state.tsk.get('counter')
`

	cfg, err := Parse(context.Background(), input, WithFilesystem(fs))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if got, _ := cfg.Get("wrote"); !got.Equal(NewNumber(99)) {
		t.Errorf("wrote = %v, want 99", got)
	}

	// A set is observed by later gets through the cache without touching
	// the file itself.
	if got, _ := cfg.Get("read"); !got.Equal(NewNumber(99)) {
		t.Errorf("read = %v, want 99", got)
	}

	if s, _ := fs.ReadFile("state.tsk"); string(s) != `counter: 1` {
		t.Errorf("referenced file modified: %q", s)
	}
}

func TestCrossFile_CycleRejected(t *testing.T) {
	fs := MapFilesystem{
		"a.tsk": `v: @b.tsk.get('v')`,
		"b.tsk": `v: @a.tsk.get('v')`,
	}

	p := New(WithFilesystem(fs), WithStrictCrossFile(true))

	// Mark the entry document the way ParseFile would.
	p.visited["a"] = true

	_, err := p.Parse(context.Background(), fs["a.tsk"])
	if !errors.Is(err, ErrCircularReference) {
		t.Errorf("error = %v, want %v", err, ErrCircularReference)
	}
}

func TestCrossFile_DepthLimit(t *testing.T) {
	// Every file refers to a distinct next file, so only the depth guard
	// can stop the chain.
	fs := MapFilesystem{}
	for i := range 40 {
		name := "f" + strconv.Itoa(i)
		next := "f" + strconv.Itoa(i+1)
		fs[name+".tsk"] = "v: @" + next + ".tsk.get('v')"
	}

	_, err := Parse(
		context.Background(),
		fs["f0.tsk"],
		WithFilesystem(fs),
		WithStrictCrossFile(true),
	)
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("error = %v, want %v", err, ErrMaxDepthExceeded)
	}
}
