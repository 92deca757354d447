// Package value converts loosely typed configuration values.
//
// TOML decodes integers as int64 and floats as float64, while values set
// in process are usually int or float64. Every config store reads through
// these helpers so both shapes behave the same. A value of the wrong kind
// reads as the zero value.
package value

// String returns v if it is a string.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int returns v if it is an integer. Floats are not truncated.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case int32:
		return int(n)
	}
	return 0
}

// Float returns v if it is numeric. Integers are widened, so "rate = 2"
// reads as 2.0.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	}
	return 0
}

// Bool returns v if it is a bool.
func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}
