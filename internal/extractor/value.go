package extractor

import "jobextract/internal/domain"

// Value is the optional result of an extractor. The zero Value is absent.
type Value struct {
	v       any
	present bool
}

// Absent returns the "cue not found" value.
func Absent() Value { return Value{} }

// Of wraps a present value.
func Of(v any) Value { return Value{v: v, present: true} }

// Present reports whether the cue was found and converted.
func (v Value) Present() bool { return v.present }

// Any returns the wrapped value, or nil when absent.
func (v Value) Any() any {
	if !v.present {
		return nil
	}
	return v.v
}

func (v Value) Text() (string, bool) {
	s, ok := v.v.(string)
	return s, v.present && ok
}

func (v Value) Float() (float64, bool) {
	f, ok := v.v.(float64)
	return f, v.present && ok
}

func (v Value) Int() (int, bool) {
	n, ok := v.v.(int)
	return n, v.present && ok
}

func (v Value) Date() (domain.Date, bool) {
	d, ok := v.v.(domain.Date)
	return d, v.present && ok
}
