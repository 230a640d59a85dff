package lang

// OperatorEngine executes generic @name(params) expressions encountered
// during evaluation. The params string is the raw, unparsed text between
// the parentheses; each operator defines its own argument conventions.
//
// Implementations should return ErrOperatorNotFound (wrapped or direct)
// for unknown operator names and ErrOperatorParams for malformed
// arguments, so callers can distinguish dispatch failures from operator
// runtime failures.
type OperatorEngine interface {
	Execute(name, params string) (Value, error)
}

// OperatorFunc adapts a function to the OperatorEngine interface.
type OperatorFunc func(name, params string) (Value, error)

func (f OperatorFunc) Execute(name, params string) (Value, error) {
	return f(name, params)
}
