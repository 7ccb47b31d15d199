package filter

import "testing"

func TestCoerceBool(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"true boolean", Boolean(true), true},
		{"false boolean", Boolean(false), false},
		{"empty string", String(""), false},
		{"non-empty string", String("x"), true},
		{"zero number", Number(0), false},
		{"nonzero number", Number(-3), true},
		{"zero float", Float("0.0"), false},
		{"nonzero float", Float("1.5"), true},
		{"null", Null(), false},
		{"empty array", Array(nil), false},
		{"nonempty array", Array([]Value{Number(1)}), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.CoerceBool(); got != c.want {
				t.Errorf("CoerceBool() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestCompareNullOrdering(t *testing.T) {
	if Compare(Null(), Number(0)) >= 0 {
		t.Error("Null should compare less than any non-null value")
	}
	if Compare(Number(0), Null()) <= 0 {
		t.Error("non-null value should compare greater than Null")
	}
	if Compare(Null(), Null()) != 0 {
		t.Error("Null should equal Null")
	}
}

func TestCompareNumberFloatCrossKind(t *testing.T) {
	if Compare(Number(3), Float("3.0")) != 0 {
		t.Error("Number(3) should compare equal to Float(\"3.0\")")
	}
	if Compare(Number(2), Float("3.5")) >= 0 {
		t.Error("Number(2) should compare less than Float(\"3.5\")")
	}
}

func TestEqualArrayDeep(t *testing.T) {
	a := Array([]Value{String("a"), Number(1)})
	b := Array([]Value{String("a"), Number(1)})
	c := Array([]Value{String("a"), Number(2)})
	if !Equal(a, b) {
		t.Error("identical arrays should be equal")
	}
	if Equal(a, c) {
		t.Error("differing arrays should not be equal")
	}
	if Equal(a, String("a")) {
		t.Error("array should never equal a non-array")
	}
}

func TestCanonicalFloatRoundTrips(t *testing.T) {
	got := CanonicalFloat(1.5)
	if got != "1.5" {
		t.Errorf("CanonicalFloat(1.5) = %q, want %q", got, "1.5")
	}
}
