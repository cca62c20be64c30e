package record

import "testing"

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NullValue(), ""},
		{IntValue(-42), "-42"},
		{FloatValue(3), "3.0"},
		{FloatValue(2.5), "2.5"},
		{FloatValue(1e20), "1e+20"},
		{TextValue("Granny Smith"), "Granny Smith"},
		{BlobValue([]byte("raw")), "raw"},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%v String() = %q, want %q", tt.v.Kind, got, tt.want)
		}
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name    string
		v       Value
		literal string
		want    bool
	}{
		{"text match", TextValue("Yellow"), "Yellow", true},
		{"text is case sensitive", TextValue("Yellow"), "yellow", false},
		{"integer as text", IntValue(2), "2", true},
		{"no numeric coercion", IntValue(2), "2.0", false},
		{"no leading zeros", IntValue(2), "02", false},
		{"null never matches", NullValue(), "", false},
		{"blob bytes", BlobValue([]byte("ab")), "ab", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Equal(tt.literal); got != tt.want {
				t.Errorf("Equal(%q) = %v, want %v", tt.literal, got, tt.want)
			}
		})
	}
}
