package flow

import "testing"

func TestSafePIN(t *testing.T) {
	cases := []struct {
		pin  string
		safe bool
		why  string
	}{
		{"1111", false, "repeated digit"},
		{"0000", false, "repeated digit"},
		{"1234", false, "ascending run"},
		{"0123", false, "ascending run"},
		{"7890", true, "wrap is not a +1 run"},
		{"4321", true, "descending runs are allowed"},
		{"0131", false, "January 31st"},
		{"3101", false, "DDMM January 31st"},
		{"1299", true, "99 is not a day"},
		{"8964", true, "no pattern"},
		{"129", false, "too short"},
		{"12a4", false, "non-digit"},
	}

	for _, tc := range cases {
		if got := SafePIN(tc.pin); got != tc.safe {
			t.Errorf("SafePIN(%q) = %v, want %v (%s)", tc.pin, got, tc.safe, tc.why)
		}
	}
}
