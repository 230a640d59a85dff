// Package operator provides the default engine behind @name(...)
// expressions. A Registry maps operator names to functions; documents
// parsed with lang.WithOperatorEngine(registry) gain access to every
// registered operator.
package operator

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/google/uuid"

	"github.com/tsklang/tsk/lang"
	"github.com/tsklang/tsk/log"
)

// Func executes one operator call. The params string is the raw text
// between the call's parentheses.
type Func func(params string) (lang.Value, error)

// Registry is a name-to-function operator table. It implements
// [lang.OperatorEngine].
type Registry struct {
	logger log.Logger
	funcs  map[string]Func
	query  Func
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger attaches a logger for operator dispatch diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithOperator registers a custom operator, overriding any builtin of the
// same name.
func WithOperator(name string, fn Func) Option {
	return func(r *Registry) { r.funcs[name] = fn }
}

// WithQueryHandler supplies the data source behind @query(...). Without
// one, query calls fail.
func WithQueryHandler(fn Func) Option {
	return func(r *Registry) { r.query = fn }
}

// New returns a Registry with the builtin operators registered.
func New(opts ...Option) *Registry {
	r := &Registry{funcs: make(map[string]Func)}

	r.funcs["uuid"] = opUUID
	r.funcs["upper"] = opUpper
	r.funcs["lower"] = opLower
	r.funcs["expr"] = opExpr
	r.funcs["query"] = r.opQuery

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds or replaces an operator.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Execute dispatches one operator call.
func (r *Registry) Execute(name, params string) (lang.Value, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return lang.Value{}, lang.ErrOperatorNotFound.
			With(slog.String("operator", name))
	}

	r.logger.Trace("execute operator",
		slog.String("operator", name),
		slog.String("params", params))

	return fn(params)
}

func opUUID(params string) (lang.Value, error) {
	if strings.TrimSpace(params) != "" {
		return lang.Value{}, lang.ErrOperatorParams.
			With(slog.String("operator", "uuid"), slog.String("params", params))
	}

	return lang.NewString(uuid.NewString()), nil
}

func opUpper(params string) (lang.Value, error) {
	return lang.NewString(strings.ToUpper(stripQuotes(params))), nil
}

func opLower(params string) (lang.Value, error) {
	return lang.NewString(strings.ToLower(stripQuotes(params))), nil
}

// opExpr evaluates params as an expression and converts the result.
func opExpr(params string) (lang.Value, error) {
	program, err := expr.Compile(stripQuotes(params))
	if err != nil {
		return lang.Value{}, lang.ErrOperatorParams.Wrap(err).
			With(slog.String("operator", "expr"))
	}

	out, err := expr.Run(program, nil)
	if err != nil {
		return lang.Value{}, lang.ErrOperator.Wrap(err).
			With(slog.String("operator", "expr"))
	}

	return FromNative(out), nil
}

func (r *Registry) opQuery(params string) (lang.Value, error) {
	if r.query == nil {
		return lang.Value{}, lang.ErrOperator.
			With(
				slog.String("operator", "query"),
				slog.String("reason", "no query handler configured"),
			)
	}

	return r.query(params)
}

// stripQuotes removes one matching pair of single or double quotes.
func stripQuotes(s string) string {
	s = strings.TrimSpace(s)

	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}

	return s
}

// FromNative converts a plain Go value into a lang.Value. Unrecognized
// types render through their string form.
func FromNative(v any) lang.Value {
	switch x := v.(type) {
	case nil:
		return lang.NewNull()
	case bool:
		return lang.NewBool(x)
	case int:
		return lang.NewNumber(float64(x))
	case int32:
		return lang.NewNumber(float64(x))
	case int64:
		return lang.NewNumber(float64(x))
	case uint64:
		return lang.NewNumber(float64(x))
	case float32:
		return lang.NewNumber(float64(x))
	case float64:
		return lang.NewNumber(x)
	case string:
		return lang.NewString(x)
	case []byte:
		return lang.NewBytes(x)
	case time.Time:
		return lang.NewTimestamp(x)
	case time.Duration:
		return lang.NewDuration(x)
	case []any:
		items := make([]lang.Value, len(x))
		for i, item := range x {
			items[i] = FromNative(item)
		}

		return lang.NewArray(items...)
	case map[string]any:
		obj := make(map[string]lang.Value, len(x))
		for k, item := range x {
			obj[k] = FromNative(item)
		}

		return lang.NewObject(obj)
	default:
		return lang.NewString(fmt.Sprint(v))
	}
}
