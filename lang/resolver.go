package lang

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Filesystem abstracts file access for cross-file references so documents
// can resolve against an in-memory corpus as easily as the host disk.
type Filesystem interface {
	// ReadFile returns the contents of the named file.
	ReadFile(name string) ([]byte, error)

	// Exists reports whether the named file is present.
	Exists(name string) bool
}

// OSFilesystem resolves names against the host filesystem, searching a
// fixed list of directories relative to the working directory.
type OSFilesystem struct {
	// Dirs lists the directories searched in order. Empty means the
	// default search path.
	Dirs []string
}

// DefaultSearchDirs is the directory search order used when an
// OSFilesystem has none configured.
var DefaultSearchDirs = []string{".", "./config", "..", "../config"}

func (f OSFilesystem) dirs() []string {
	if len(f.Dirs) > 0 {
		return f.Dirs
	}

	return DefaultSearchDirs
}

// locate returns the first existing path for name within the search
// directories. Absolute names bypass the search path.
func (f OSFilesystem) locate(name string) (string, bool) {
	if filepath.IsAbs(name) {
		if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
			return name, true
		}

		return "", false
	}

	for _, dir := range f.dirs() {
		path := filepath.Join(dir, name)
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path, true
		}
	}

	return "", false
}

func (f OSFilesystem) ReadFile(name string) ([]byte, error) {
	path, ok := f.locate(name)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	return os.ReadFile(path)
}

func (f OSFilesystem) Exists(name string) bool {
	_, ok := f.locate(name)

	return ok
}

// MapFilesystem serves files from an in-memory map of name to contents.
// It is primarily useful in tests and embedded configurations.
type MapFilesystem map[string]string

func (m MapFilesystem) ReadFile(name string) ([]byte, error) {
	s, ok := m[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	return []byte(s), nil
}

func (m MapFilesystem) Exists(name string) bool {
	_, ok := m[name]

	return ok
}

// crossFileGet resolves @<name>.tsk.get('<key>'). Results memoize under
// "name:key" for the lifetime of the Parser, so repeated references cost a
// single file parse. A missing file or key yields an empty string unless
// strict cross-file resolution is enabled.
func (p *Parser) crossFileGet(
	ctx context.Context,
	name, key string,
	line int,
) (Value, error) {
	cacheKey := name + ":" + key
	if v, ok := p.crossCache[cacheKey]; ok {
		return v, nil
	}

	target, err := p.loadCrossFile(ctx, name, line)
	if err != nil {
		if p.strictCross {
			return Value{}, err
		}

		p.logger.TraceContext(ctx, "cross-file reference unresolved",
			slog.String("file", name),
			slog.String("key", key),
			slog.Any("error", err))

		v := NewString("")
		p.crossCache[cacheKey] = v

		return v, nil
	}

	v, ok := target.Get(key)
	if !ok {
		if p.strictCross {
			return Value{}, ErrVariableNotFound.
				With(slog.String("file", name), slog.String("key", key)).
				AtLine(line)
		}

		v = NewString("")
	}

	p.crossCache[cacheKey] = v

	return v, nil
}

// crossFileSet evaluates @<name>.tsk.set('<key>', <value>). The value is
// evaluated in the current document's context, recorded in the cross-file
// cache so subsequent gets observe it, and returned as the expression's
// result. The referenced file itself is never modified.
func (p *Parser) crossFileSet(
	ctx context.Context,
	name, key, raw string,
	line int,
) (Value, error) {
	v, err := p.evalValue(ctx, raw, line)
	if err != nil {
		return Value{}, err
	}

	p.crossCache[name+":"+key] = v

	return v, nil
}

// loadCrossFile parses the referenced document with the cycle and depth
// guards applied.
func (p *Parser) loadCrossFile(
	ctx context.Context,
	name string,
	line int,
) (*Config, error) {
	filename := name + ".tsk"

	if p.visited[name] {
		return nil, ErrCircularReference.
			With(slog.String("file", filename)).
			AtLine(line)
	}

	if p.depth >= p.maxDepth {
		return nil, ErrMaxDepthExceeded.
			With(slog.String("file", filename), slog.Int("depth", p.depth)).
			AtLine(line)
	}

	if p.fs == nil || !p.fs.Exists(filename) {
		return nil, ErrReadInput.
			Wrap(fs.ErrNotExist).
			With(slog.String("file", filename)).
			AtLine(line)
	}

	data, err := p.fs.ReadFile(filename)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("file", filename)).
			AtLine(line)
	}

	sub := New(
		WithFilesystem(p.fs),
		WithOperatorEngine(p.engine),
		WithLogger(p.logger),
		WithMaxDepth(p.maxDepth),
		WithClock(p.now),
	)

	sub.lookupEnv = p.lookupEnv
	sub.strictCross = p.strictCross
	sub.depth = p.depth + 1
	sub.visited = p.visited

	sub.visited[name] = true
	defer delete(sub.visited, name)

	cfg, err := sub.Parse(ctx, string(data))
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("file", filename)).
			AtLine(line)
	}

	return cfg, nil
}
