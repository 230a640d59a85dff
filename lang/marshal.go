package lang

import (
	"encoding/json"
	"math"

	"github.com/goccy/go-yaml"
)

// Native converts a Value to plain Go types suitable for generic
// marshaling: nil, bool, float64 or int64, string, []byte, []any, and
// map[string]any. Integral numbers within the safe range convert to int64
// so serializers emit them without a fractional part.
func (v Value) Native() any {
	switch v.Kind() {
	case KindNull:
		return nil

	case KindBool:
		b, _ := v.AsBool()

		return b

	case KindNumber:
		n, _ := v.AsNumber()
		if n == math.Trunc(n) && math.Abs(n) <= 1<<53 {
			return int64(n)
		}

		return n

	case KindBytes:
		b, _ := v.AsBytes()

		return b

	case KindArray:
		arr, _ := v.AsArray()

		out := make([]any, len(arr))
		for i, item := range arr {
			out[i] = item.Native()
		}

		return out

	case KindObject:
		obj, _ := v.AsObject()

		out := make(map[string]any, len(obj))
		for k, item := range obj {
			out[k] = item.Native()
		}

		return out

	default:
		return v.String()
	}
}

// ToMap converts the Config to a plain Go map for generic consumers.
func (c *Config) ToMap() map[string]any {
	out, _ := c.Root().Native().(map[string]any)

	return out
}

// MarshalJSON renders the Config as indented JSON.
func (c *Config) MarshalJSON() ([]byte, error) {
	data, err := json.MarshalIndent(c.ToMap(), "", "  ")
	if err != nil {
		return nil, ErrSerialize.Wrap(err)
	}

	return data, nil
}

// MarshalYAML renders the Config as a YAML document.
func (c *Config) MarshalYAML() ([]byte, error) {
	data, err := yaml.Marshal(c.ToMap())
	if err != nil {
		return nil, ErrSerialize.Wrap(err)
	}

	return data, nil
}
