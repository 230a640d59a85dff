package lang

import "sort"

// Config is the root object produced by parsing one document. It is the
// unit accepted by [Serialize] and by the binary codec.
type Config struct {
	root map[string]Value
}

// NewConfig returns an empty configuration.
func NewConfig() *Config {
	return &Config{root: make(map[string]Value)}
}

// Root returns the configuration as an object value.
func (c *Config) Root() Value {
	return NewObject(c.root)
}

// ConfigFromValue wraps an object value as a Config.
// Non-object values are rejected by returning nil.
func ConfigFromValue(v Value) *Config {
	obj, ok := v.AsObject()
	if !ok {
		return nil
	}

	return &Config{root: obj}
}

// Len returns the number of top-level entries.
func (c *Config) Len() int { return len(c.root) }

// Keys returns the sorted top-level keys.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.root))
	for k := range c.root {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Get looks up a value by key. Dotted paths descend nested objects,
// so "server.port" finds Set("server.port", ...) and inline objects alike.
func (c *Config) Get(key string) (Value, bool) {
	return c.Root().Get(key)
}

// Set stores a value under a dotted storage key, materializing nested
// objects along the path. An existing non-object intermediate is replaced.
func (c *Config) Set(key string, v Value) {
	segs := splitPath(key)
	cur := c.root

	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg]

		nextObj, isObj := next.AsObject()
		if !ok || !isObj {
			nextObj = make(map[string]Value)
			cur[seg] = NewObject(nextObj)
		}

		cur = nextObj
	}

	cur[segs[len(segs)-1]] = v
}

// Equal reports whether two configurations hold structurally equal roots.
func (c *Config) Equal(other *Config) bool {
	if other == nil {
		return false
	}

	return c.Root().Equal(other.Root())
}

func splitPath(key string) []string {
	// Manual scan instead of strings.Split to avoid allocating for the
	// common single-segment case.
	var segs []string

	start := 0

	for i := range len(key) {
		if key[i] == '.' {
			segs = append(segs, key[start:i])
			start = i + 1
		}
	}

	if segs == nil {
		return []string{key}
	}

	return append(segs, key[start:])
}
