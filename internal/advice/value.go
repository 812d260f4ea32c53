package advice

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is a sealed interface over the types a fact field or condition
// operand may carry. Only BoolValue, IntValue, FloatValue, and EnumValue
// implement it. Sealing keeps condition evaluation an exhaustive type
// switch: a rule pack cannot smuggle in a shape the engine does not handle.
type Value interface {
	adviceValue() // sealed - only types in this package implement it
}

// BoolValue represents a boolean fact field.
type BoolValue bool

func (BoolValue) adviceValue() {}

// IntValue represents an integer fact field. Always int64.
type IntValue int64

func (IntValue) adviceValue() {}

// FloatValue represents a fractional fact field, such as a fragmentation
// percentage. Thresholds in conditions are carried as FloatValue too.
type FloatValue float64

func (FloatValue) adviceValue() {}

// EnumValue represents an enumerated fact field in its canonical
// UPPER_SNAKE spelling (for example "SCALAR" or "LARGE").
type EnumValue string

func (EnumValue) adviceValue() {}

// FormatValue renders a Value the way reports and error messages show it.
func FormatValue(v Value) string {
	switch val := v.(type) {
	case BoolValue:
		return strconv.FormatBool(bool(val))
	case IntValue:
		return strconv.FormatInt(int64(val), 10)
	case FloatValue:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case EnumValue:
		return string(val)
	default:
		return fmt.Sprintf("<%T>", v)
	}
}

// NumericValue returns the float64 reading of a numeric Value.
// The second return is false for BoolValue and EnumValue.
func NumericValue(v Value) (float64, bool) {
	switch val := v.(type) {
	case IntValue:
		return float64(val), true
	case FloatValue:
		return float64(val), true
	default:
		return 0, false
	}
}

// ValuesEqual compares two Values for equality. Int and float readings of
// the same number compare equal so a condition may say `equals: 2` against
// either numeric field kind.
func ValuesEqual(a, b Value) bool {
	if an, ok := NumericValue(a); ok {
		bn, bok := NumericValue(b)
		return bok && an == bn
	}
	switch av := a.(type) {
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av == bv
	case EnumValue:
		bv, ok := b.(EnumValue)
		return ok && av == bv
	default:
		return false
	}
}

// FieldMap is a fact rendered to named Values for rule evaluation.
type FieldMap map[string]Value

// SortedKeys returns field names in lexical order. Reports and error
// messages iterate with this so rendered facts are deterministic.
// Field names are ASCII snake_case, so plain string order is enough.
func (m FieldMap) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the map as "a=1 b=true" in sorted key order.
func (m FieldMap) String() string {
	parts := make([]string, 0, len(m))
	for _, k := range m.SortedKeys() {
		parts = append(parts, k+"="+FormatValue(m[k]))
	}
	return strings.Join(parts, " ")
}
