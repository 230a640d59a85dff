package lang

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/readahead"

	"github.com/tsklang/tsk/log"
)

// DefaultMaxDepth bounds nested cross-file resolution. A chain of documents
// referencing one another deeper than this is rejected rather than followed.
const DefaultMaxDepth = 16

// Parser owns all state accumulated while parsing one document: the current
// section, the open nested scope, global and section-local variables, and
// the cross-file lookup cache. A Parser must not be shared between
// goroutines; distinct instances are fully independent.
//
// A Parser is normally created fresh per document. Reusing one across calls
// is meaningful only to deliberately share the global-variable scope and the
// cross-file cache.
type Parser struct {
	cfg         *Config
	globals     map[string]Value
	sectionVars map[string]Value
	crossCache  map[string]Value
	visited     map[string]bool

	section  string
	inScope  bool
	scopeKey string

	fs          Filesystem
	engine      OperatorEngine
	logger      log.Logger
	now         func() time.Time
	lookupEnv   func(string) (string, bool)
	maxDepth    int
	depth       int
	strictCross bool

	pending *pendingAssign
	array   *arrayBlock
}

// pendingAssign is a "key:" line awaiting its dash-item block.
type pendingAssign struct {
	storageKey string
	rawKey     string
	line       int
}

// arrayBlock accumulates dash-prefixed items for one assignment.
type arrayBlock struct {
	storageKey string
	rawKey     string
	items      []Value
}

// Option configures a Parser.
type Option func(*Parser)

// WithFilesystem sets the filesystem collaborator used by the file entry
// point and by cross-file references.
func WithFilesystem(fs Filesystem) Option {
	return func(p *Parser) { p.fs = fs }
}

// WithOperatorEngine sets the engine that executes generic @name(params)
// operator calls. Without an engine, operator calls evaluate to their own
// literal text.
func WithOperatorEngine(engine OperatorEngine) Option {
	return func(p *Parser) { p.engine = engine }
}

// WithLogger sets the structured logger for trace-level debugging.
// The zero-valued default logger is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// WithMaxDepth sets the maximum depth of nested cross-file resolution.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) { p.maxDepth = depth }
}

// WithStrictCrossFile makes missing files and keys in cross-file references
// surface as errors instead of resolving to an empty string.
func WithStrictCrossFile(strict bool) Option {
	return func(p *Parser) { p.strictCross = strict }
}

// WithClock overrides the time source used by @date. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// WithEnviron overrides the process environment consulted by @env.
// The format is []string{"KEY=VALUE", ...}. Intended for tests.
func WithEnviron(env []string) Option {
	return func(p *Parser) {
		vars := make(map[string]string, len(env))

		for _, kv := range env {
			if k, v, ok := strings.Cut(kv, "="); ok {
				vars[k] = v
			}
		}

		p.lookupEnv = func(name string) (string, bool) {
			v, ok := vars[name]

			return v, ok
		}
	}
}

// New creates a Parser with the given options applied.
func New(opts ...Option) *Parser {
	p := &Parser{
		globals:     make(map[string]Value),
		sectionVars: make(map[string]Value),
		crossCache:  make(map[string]Value),
		visited:     make(map[string]bool),
		fs:          OSFilesystem{},
		now:         time.Now,
		lookupEnv:   os.LookupEnv,
		maxDepth:    DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse parses one document and returns its configuration.
// It creates a fresh Parser; use [Parser.Parse] to share variable scope
// across documents deliberately.
func Parse(ctx context.Context, input string, opts ...Option) (*Config, error) {
	return New(opts...).Parse(ctx, input)
}

// ParseReader parses a document from an io.Reader.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Config, error) {
	// Wrap the reader with async read-ahead so data is pre-fetched while
	// previous chunks are consumed.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return Parse(ctx, string(data), opts...)
}

// ParseFile parses the document at path.
func ParseFile(ctx context.Context, path string, opts ...Option) (*Config, error) {
	return New(opts...).ParseFile(ctx, path)
}

// Parse parses one document using the receiver's accumulated scope.
// The returned Config covers only this document.
func (p *Parser) Parse(ctx context.Context, input string) (*Config, error) {
	p.cfg = NewConfig()
	p.section = ""
	p.inScope = false
	p.scopeKey = ""
	p.pending = nil
	p.array = nil

	p.logger.TraceContext(ctx, "parse start",
		slog.Int("source_length", len(input)))

	num := 0

	for raw := range strings.SplitSeq(input, "\n") {
		num++

		ln, ok, err := classifyLine(num, raw)
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		if err := p.apply(ctx, ln); err != nil {
			return nil, err
		}
	}

	if err := p.finishBlocks(); err != nil {
		return nil, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("line_count", num),
		slog.Int("key_count", p.cfg.Len()))

	return p.cfg, nil
}

// ParseFile parses the document at path using the receiver's scope.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	content, err := p.fs.ReadFile(path)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("path", path))
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	p.visited[name] = true
	defer delete(p.visited, name)

	return p.Parse(ctx, string(content))
}

// apply folds one classified line into the parser state.
func (p *Parser) apply(ctx context.Context, ln line) error {
	if ln.kind != lineArrayItem {
		if err := p.finishBlocks(); err != nil {
			return err
		}
	}

	switch ln.kind {
	case lineSection:
		p.section = ln.name
		p.inScope = false
		p.scopeKey = ""

	case lineScopeOpen:
		p.inScope = true
		p.scopeKey = ln.name

	case lineScopeClose:
		p.inScope = false
		p.scopeKey = ""

	case lineKeyValue:
		storageKey := p.storageKey(ln.key)

		if ln.value == "" {
			// A bare "key:" line starts a block of dash-prefixed items.
			p.pending = &pendingAssign{
				storageKey: storageKey,
				rawKey:     ln.key,
				line:       ln.num,
			}

			return nil
		}

		v, err := p.evalValue(ctx, ln.value, ln.num)
		if err != nil {
			return err
		}

		p.store(storageKey, ln.key, v)

	case lineArrayItem:
		if p.pending != nil {
			p.array = &arrayBlock{
				storageKey: p.pending.storageKey,
				rawKey:     p.pending.rawKey,
			}
			p.pending = nil
		}

		if p.array == nil {
			return ErrUnexpectedToken.
				Wrap(&SyntaxError{Line: ln.num, Text: "- " + ln.value})
		}

		v, err := p.evalValue(ctx, ln.value, ln.num)
		if err != nil {
			return err
		}

		p.array.items = append(p.array.items, v)
	}

	return nil
}

// finishBlocks closes an open dash-item block and rejects an assignment
// that never received a value.
func (p *Parser) finishBlocks() error {
	if p.array != nil {
		p.store(p.array.storageKey, p.array.rawKey, NewArray(p.array.items...))
		p.array = nil
	}

	if p.pending != nil {
		err := ErrMissingValue.
			Wrap(&SyntaxError{Line: p.pending.line, Text: p.pending.rawKey}).
			With(slog.String("key", p.pending.rawKey))
		p.pending = nil

		return err
	}

	return nil
}

// storageKey composes the dotted key an assignment is stored under, from
// the active section and nested scope.
func (p *Parser) storageKey(key string) string {
	switch {
	case p.inScope && p.scopeKey != "" && p.section != "":
		return p.section + "." + p.scopeKey + "." + key
	case p.inScope && p.scopeKey != "":
		return p.scopeKey + "." + key
	case p.section != "":
		return p.section + "." + key
	default:
		return key
	}
}

// store writes an evaluated assignment into the config and registers it as
// a global or section-local variable as its key dictates.
func (p *Parser) store(storageKey, rawKey string, v Value) {
	p.cfg.Set(storageKey, v)

	if strings.HasPrefix(rawKey, "$") {
		p.globals[rawKey[1:]] = v

		return
	}

	if p.section != "" {
		p.sectionVars[p.section+"."+rawKey] = v
	}
}
