// pkg/types/value_test.go
package types

import "testing"

func TestValueNull(t *testing.T) {
	v := NewNull()
	if v.Type() != TypeNull {
		t.Errorf("expected TypeNull, got %v", v.Type())
	}
	if !v.IsNull() {
		t.Error("expected IsNull to return true")
	}
}

func TestValueInt(t *testing.T) {
	v := NewInt(42)
	if v.Type() != TypeInt {
		t.Errorf("expected TypeInt, got %v", v.Type())
	}
	if v.Int() != 42 {
		t.Errorf("expected 42, got %d", v.Int())
	}
}

func TestValueFloat(t *testing.T) {
	v := NewFloat(3.14)
	if v.Type() != TypeFloat {
		t.Errorf("expected TypeFloat, got %v", v.Type())
	}
	if v.Float() != 3.14 {
		t.Errorf("expected 3.14, got %f", v.Float())
	}
}

func TestValueText(t *testing.T) {
	v := NewText("hello")
	if v.Type() != TypeText {
		t.Errorf("expected TypeText, got %v", v.Type())
	}
	if v.Text() != "hello" {
		t.Errorf("expected 'hello', got %s", v.Text())
	}
}

func TestValueBool(t *testing.T) {
	v := NewBool(true)
	if v.Type() != TypeBool {
		t.Errorf("expected TypeBool, got %v", v.Type())
	}
	if !v.Bool() {
		t.Error("expected true")
	}
}

func TestValueAssignableTo(t *testing.T) {
	cases := []struct {
		v    Value
		ct   ColumnType
		want bool
	}{
		{NewInt(1), ColInt, true},
		{NewInt(1), ColFloat, true},
		{NewFloat(1.5), ColInt, false},
		{NewText("x"), ColText, true},
		{NewNull(), ColInt, true},
		{NewBool(true), ColBool, true},
		{NewBool(true), ColInt, false},
	}
	for _, c := range cases {
		if got := c.v.AssignableTo(c.ct); got != c.want {
			t.Errorf("%v.AssignableTo(%v) = %v, want %v", c.v, c.ct, got, c.want)
		}
	}
}

func TestValueCoerceTo(t *testing.T) {
	v := NewInt(3).CoerceTo(ColFloat)
	if v.Type() != TypeFloat || v.Float() != 3.0 {
		t.Errorf("expected float 3.0, got %v %v", v.Type(), v.Float())
	}
}

func TestValueEqualNumericCross(t *testing.T) {
	if !NewInt(3).Equal(NewFloat(3.0)) {
		t.Error("expected 3 == 3.0")
	}
	if NewInt(3).Equal(NewText("3")) {
		t.Error("expected int/text never equal")
	}
	if NewNull().Equal(NewNull()) {
		t.Error("expected NULL = NULL to be false (two-valued logic)")
	}
}

func TestValueCompare(t *testing.T) {
	cmp, ok := NewInt(1).Compare(NewFloat(2.5))
	if !ok || cmp != -1 {
		t.Errorf("expected -1/ok, got %d/%v", cmp, ok)
	}
	_, ok = NewInt(1).Compare(NewNull())
	if ok {
		t.Error("expected comparison against NULL to be not-ok")
	}
	_, ok = NewText("a").Compare(NewBool(true))
	if ok {
		t.Error("expected cross-type non-numeric comparison to be not-ok")
	}
}
