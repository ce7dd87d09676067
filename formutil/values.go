package formutil

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

var (
	// ErrNotDisplayable indicates a value has no canonical text rendering.
	ErrNotDisplayable = errors.New("value is not displayable")
	// ErrNestedSequence indicates a sequence element is itself a sequence.
	ErrNestedSequence = errors.New("nested sequence")
)

// Displayable is implemented by values that provide their own canonical text
// rendering. Any fmt.Stringer satisfies it.
type Displayable interface {
	String() string
}

// Skippable reports whether a value must be passed through untouched instead
// of being converted to bytes. A nil Skippable skips nothing.
type Skippable func(v any) bool

// SkipType returns a Skippable matching values of type T. When T is an
// interface type, every value implementing it matches.
//
//	skip := formutil.SkipType[*Upload]()
func SkipType[T any]() Skippable {
	return func(v any) bool {
		_, ok := v.(T)
		return ok
	}
}

// SkipAny combines predicates; a value is skipped when any of them matches.
//
//	skip := formutil.SkipAny(formutil.SkipType[*Upload](), formutil.SkipType[Marker]())
func SkipAny(skips ...Skippable) Skippable {
	return func(v any) bool {
		for _, skip := range skips {
			if skip != nil && skip(v) {
				return true
			}
		}
		return false
	}
}

// Pair is a single key/value input. See NormalizeHTTPValues for the value
// types accepted.
type Pair struct {
	Key   string
	Value any
}

// Field is a normalized key/value pair. When Skipped is set the original
// value is carried in Raw and Value is nil.
type Field struct {
	Key     []byte
	Value   []byte
	Raw     any
	Skipped bool
}

// Bytes converts a scalar value to its canonical byte form:
//   - nil becomes an empty slice
//   - a string is returned as its UTF-8 bytes
//   - a []byte is returned as is
//   - integers, floats and bools use their decimal / literal text
//   - a Displayable uses its String method
//
// Any other value yields ErrNotDisplayable.
func Bytes(v any) ([]byte, error) {
	switch v := v.(type) {
	case nil:
		return []byte{}, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case int:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int8:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int16:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int32:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int64:
		return strconv.AppendInt(nil, v, 10), nil
	case uint:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint8:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint16:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint32:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint64:
		return strconv.AppendUint(nil, v, 10), nil
	case float32:
		return strconv.AppendFloat(nil, float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
	case bool:
		return strconv.AppendBool(nil, v), nil
	case Displayable:
		return []byte(v.String()), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNotDisplayable, v)
}

// NormalizeHTTPValues converts pairs into key/value byte fields, keeping the
// input order and every duplicate key.
//
// For each pair, in order:
//   - a value matched by skip is emitted as a raw field, unconverted
//   - nil becomes an empty value
//   - a sequence (any slice or array other than []byte, e.g. []any, []string,
//     []int32, [2]string or a named slice type) expands inline into one field
//     per element, all sharing the key; elements must be scalars
//   - any other value is converted with Bytes
//
// Example:
//
//	fields, err := formutil.NormalizeHTTPValues([]formutil.Pair{
//		{Key: "foo", Value: "3"},
//		{Key: "foo", Value: []string{"1", "2"}},
//	}, nil)
//	// foo=3, foo=1, foo=2
func NormalizeHTTPValues(pairs []Pair, skip Skippable) ([]Field, error) {
	fields := make([]Field, 0, len(pairs))
	for _, p := range pairs {
		key := []byte(p.Key)

		if skip != nil && skip(p.Value) {
			fields = append(fields, Field{Key: key, Raw: p.Value, Skipped: true})
			continue
		}

		items, isSeq := sequence(p.Value)
		if !isSeq {
			value, err := Bytes(p.Value)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", p.Key, err)
			}
			fields = append(fields, Field{Key: key, Value: value})
			continue
		}

		for i, item := range items {
			if skip != nil && skip(item) {
				fields = append(fields, Field{Key: key, Raw: item, Skipped: true})
				continue
			}
			if _, nested := sequence(item); nested {
				return nil, fmt.Errorf("key %q item %d: %w", p.Key, i, ErrNestedSequence)
			}
			value, err := Bytes(item)
			if err != nil {
				return nil, fmt.Errorf("key %q item %d: %w", p.Key, i, err)
			}
			fields = append(fields, Field{Key: key, Value: value})
		}
	}
	return fields, nil
}

// sequence returns the elements of v when v is a slice or array. A []byte is
// a scalar, not a sequence, and so is a slice type that implements
// Displayable.
func sequence(v any) ([]any, bool) {
	switch v := v.(type) {
	case nil, []byte, string:
		return nil, false
	case []any:
		return v, true
	case []string:
		return toAny(v), true
	case []int:
		return toAny(v), true
	case []int64:
		return toAny(v), true
	case []float64:
		return toAny(v), true
	case [][]byte:
		return toAny(v), true
	case []Displayable:
		return toAny(v), true
	case Displayable:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
	default:
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func toAny[T any](s []T) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
