package lox

import "testing"

func TestValueTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", NilVal(), false},
		{"false", BoolVal(false), false},
		{"true", BoolVal(true), true},
		{"zero", NumberVal(0), true},
		{"nonzero", NumberVal(42), true},
		{"empty string", StringVal(""), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Truthy(); got != tt.want {
				t.Errorf("Truthy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nil equals nil", NilVal(), NilVal(), true},
		{"same number", NumberVal(1), NumberVal(1), true},
		{"different number", NumberVal(1), NumberVal(2), false},
		{"same string", StringVal("a"), StringVal("a"), true},
		{"different string", StringVal("a"), StringVal("b"), false},
		{"different tags never equal", NumberVal(0), BoolVal(false), false},
		{"nil vs false never equal", NilVal(), BoolVal(false), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValuesEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("ValuesEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := ValuesEqual(tt.b, tt.a); got != tt.want {
				t.Errorf("ValuesEqual is not symmetric for %v, %v", tt.a, tt.b)
			}
		})
	}
}

func TestValueStringDisplay(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NilVal(), "nil"},
		{BoolVal(true), "true"},
		{BoolVal(false), "false"},
		{NumberVal(3), "3"},
		{NumberVal(3.5), "3.5"},
		{NumberVal(-7), "-7"},
		{StringVal("hi"), "hi"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
