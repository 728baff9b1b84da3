// pkg/types/value.go
package types

import (
	"fmt"
	"strconv"
)

// ValueType identifies the dynamic kind carried by a Value.
type ValueType int

const (
	TypeNull ValueType = iota
	TypeInt
	TypeFloat
	TypeText
	TypeBool
)

func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeInt:
		return "INT"
	case TypeFloat:
		return "FLOAT"
	case TypeText:
		return "TEXT"
	case TypeBool:
		return "BOOLEAN"
	default:
		return "UNKNOWN"
	}
}

// ColumnType is the declared type of a schema column. It reuses ValueType's
// four non-null members; NULL is never a column's declared type.
type ColumnType = ValueType

const (
	ColInt   = TypeInt
	ColText  = TypeText
	ColFloat = TypeFloat
	ColBool  = TypeBool
)

// ColumnTypeFromName maps a keyword spelling (INT, TEXT, FLOAT, BOOLEAN) to
// its ColumnType. ok is false for any other spelling.
func ColumnTypeFromName(name string) (ColumnType, bool) {
	switch name {
	case "INT":
		return ColInt, true
	case "TEXT":
		return ColText, true
	case "FLOAT":
		return ColFloat, true
	case "BOOLEAN":
		return ColBool, true
	default:
		return TypeNull, false
	}
}

// Value is a tagged union over the engine's atomic value domain: integer,
// floating, text, boolean, and null (spec.md §3).
type Value struct {
	typ      ValueType
	intVal   int64
	floatVal float64
	textVal  string
	boolVal  bool
}

func NewNull() Value           { return Value{typ: TypeNull} }
func NewInt(i int64) Value     { return Value{typ: TypeInt, intVal: i} }
func NewFloat(f float64) Value { return Value{typ: TypeFloat, floatVal: f} }
func NewText(s string) Value   { return Value{typ: TypeText, textVal: s} }
func NewBool(b bool) Value     { return Value{typ: TypeBool, boolVal: b} }

func (v Value) Type() ValueType { return v.typ }
func (v Value) IsNull() bool    { return v.typ == TypeNull }
func (v Value) Int() int64      { return v.intVal }
func (v Value) Float() float64  { return v.floatVal }
func (v Value) Text() string    { return v.textVal }
func (v Value) Bool() bool      { return v.boolVal }

// AsFloat64 returns the value as a float64 for numeric comparisons and
// aggregates. It is only meaningful when Type() is TypeInt or TypeFloat.
func (v Value) AsFloat64() float64 {
	if v.typ == TypeInt {
		return float64(v.intVal)
	}
	return v.floatVal
}

// IsNumeric reports whether the value is an int or a float.
func (v Value) IsNumeric() bool {
	return v.typ == TypeInt || v.typ == TypeFloat
}

// String renders the value the way the engine prints it back in result sets
// and error messages.
func (v Value) String() string {
	switch v.typ {
	case TypeNull:
		return "NULL"
	case TypeInt:
		return strconv.FormatInt(v.intVal, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.floatVal, 'g', -1, 64)
	case TypeText:
		return v.textVal
	case TypeBool:
		if v.boolVal {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("<invalid value typ=%d>", v.typ)
	}
}

// AssignableTo reports whether a value of this dynamic type may be stored in
// a column declared as ct (spec.md §3: "integer is assignable to FLOAT").
// NULL is assignable to any column type; NOT NULL is enforced separately.
func (v Value) AssignableTo(ct ColumnType) bool {
	if v.typ == TypeNull {
		return true
	}
	if v.typ == ct {
		return true
	}
	if v.typ == TypeInt && ct == TypeFloat {
		return true
	}
	return false
}

// CoerceTo converts v into the representation a column of type ct expects,
// per AssignableTo's rules. It must only be called after AssignableTo(ct)
// returns true.
func (v Value) CoerceTo(ct ColumnType) Value {
	if v.typ == TypeInt && ct == TypeFloat {
		return NewFloat(float64(v.intVal))
	}
	return v
}

// Equal implements same-type and numeric cross-type equality (spec.md
// §4.3.6: "integer and float compare numerically"). Comparisons with NULL
// are always false (two-valued logic, spec.md §9), and cross-type
// comparisons between non-numeric kinds are never equal.
func (v Value) Equal(o Value) bool {
	if v.typ == TypeNull || o.typ == TypeNull {
		return false
	}
	if v.IsNumeric() && o.IsNumeric() {
		return v.AsFloat64() == o.AsFloat64()
	}
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeText:
		return v.textVal == o.textVal
	case TypeBool:
		return v.boolVal == o.boolVal
	default:
		return false
	}
}

// Compare orders v against o for ORDER BY and range comparisons. ok is false
// when the two values are not comparable (different non-numeric types, or
// either is NULL — callers handle NULL ordering separately).
func (v Value) Compare(o Value) (cmp int, ok bool) {
	if v.typ == TypeNull || o.typ == TypeNull {
		return 0, false
	}
	if v.IsNumeric() && o.IsNumeric() {
		a, b := v.AsFloat64(), o.AsFloat64()
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}
	if v.typ != o.typ {
		return 0, false
	}
	switch v.typ {
	case TypeText:
		switch {
		case v.textVal < o.textVal:
			return -1, true
		case v.textVal > o.textVal:
			return 1, true
		default:
			return 0, true
		}
	case TypeBool:
		switch {
		case v.boolVal == o.boolVal:
			return 0, true
		case !v.boolVal && o.boolVal:
			return -1, true
		default:
			return 1, true
		}
	default:
		return 0, false
	}
}
