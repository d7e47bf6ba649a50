package httpclient

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// valueKind tells how a parameter value is rendered into the query string.
type valueKind int

const (
	// strings or numbers sent as-is
	kindScalar valueKind = iota
	// sent as their JSON text
	kindStructured
)

// Value is a single request parameter.
type Value struct {
	kind       valueKind
	scalar     string
	structured any
}

// String returns a scalar string parameter.
func String(s string) Value {
	return Value{kind: kindScalar, scalar: s}
}

// Int returns a scalar integer parameter.
func Int(n int64) Value {
	return Value{kind: kindScalar, scalar: strconv.FormatInt(n, 10)}
}

// Float returns a scalar floating point parameter.
func Float(f float64) Value {
	return Value{kind: kindScalar, scalar: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Structured returns a parameter that is JSON encoded before transmission,
// e.g. lists or nested objects such as reply markups.
func Structured(v any) Value {
	return Value{kind: kindStructured, structured: v}
}

// Encode renders the value as it appears in the query string, before URL escaping.
func (v Value) Encode() (string, error) {
	if v.kind == kindScalar {
		return v.scalar, nil
	}
	raw, err := json.Marshal(v.structured)
	if err != nil {
		return "", fmt.Errorf("failed to encode structured value: %w", err)
	}
	return string(raw), nil
}

// Params maps parameter names to values.
type Params map[string]Value

// Values converts the parameters into url.Values.
func (p Params) Values() (url.Values, error) {
	values := make(url.Values, len(p))
	for name, value := range p {
		encoded, err := value.Encode()
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		values.Set(name, encoded)
	}
	return values, nil
}
