package types

import "testing"

func TestAddLogicalOr(t *testing.T) {
	got, ok := Add(LO, LO)
	if !ok || got != LO {
		t.Fatalf("LO + LO = %v, %v; want LO, true", got, ok)
	}
}

func TestSubHasNoLogicalRow(t *testing.T) {
	if _, ok := Sub(LO, LO); ok {
		t.Fatalf("LO - LO should be undefined")
	}
}

func TestArithmeticPromotion(t *testing.T) {
	cases := []struct {
		lhs, rhs, want Base
	}{
		{RE, CM, CM},
		{CM, DA, CD},
		{DA, CD, CD},
		{CD, CD, CD},
		{VE, RE, VE},
	}
	for _, c := range cases {
		got, ok := Add(c.lhs, c.rhs)
		if !ok || got != c.want {
			t.Errorf("Add(%s, %s) = %s, %v; want %s", c.lhs, c.rhs, got, ok, c.want)
		}
	}
}

func TestExtractTable(t *testing.T) {
	if got, ok := Extract(ST, RE); !ok || got != ST {
		t.Fatalf("ST | RE = %v, %v; want ST, true", got, ok)
	}
	if _, ok := Extract(RE, RE); ok {
		t.Fatalf("RE | RE should be undefined (no-op skip rule upstream)")
	}
}

func TestConcatOnlyDefinedForStrings(t *testing.T) {
	if got, ok := Concat(ST, ST); !ok || got != ST {
		t.Fatalf("ST & ST = %v, %v; want ST, true", got, ok)
	}
	if _, ok := Concat(RE, RE); ok {
		t.Fatalf("RE & RE should be undefined")
	}
}

func TestSinFixedPoints(t *testing.T) {
	for _, b := range []Base{RE, CM, DA, CD} {
		if got, ok := Sin(b); !ok || got != b {
			t.Errorf("Sin(%s) = %s, %v; want %s, true", b, got, ok, b)
		}
	}
	if _, ok := Sin(ST); ok {
		t.Fatalf("Sin(ST) should be undefined")
	}
}

func TestElementType(t *testing.T) {
	d := Descriptor{Base: RE, Dims: []int{3, 4}}
	e := d.ElementType()
	if e.Base != RE || len(e.Dims) != 1 || e.Dims[0] != 4 {
		t.Fatalf("unexpected element type: %+v", e)
	}
}
