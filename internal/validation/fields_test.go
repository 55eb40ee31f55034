package validation

import "testing"

func TestValidMobile_Valid(t *testing.T) {
	valids := []string{
		"9876543210",
		"+91 98765 43210",
		"98-76-54-32-10",
		"(987) 654-3210",
		"123456789012345", // 15 digits, column width
	}
	for _, v := range valids {
		if !ValidMobile(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
}

func TestValidMobile_Invalid(t *testing.T) {
	invalids := []string{
		"",
		"12345",
		"987654321",          // 9 digits
		"abc-def-ghij",       // no digits at all
		"1234567890123456",   // 16 digits
		"+9 8 7 6 5 4 3 2 1", // 9 digits with noise
	}
	for _, v := range invalids {
		if ValidMobile(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func TestNormalizeMobile(t *testing.T) {
	if got := NormalizeMobile("+91 98765-43210"); got != "919876543210" {
		t.Fatalf("normalize: got %q", got)
	}
}

func TestValidEmail(t *testing.T) {
	valids := []string{"asha@example.org", "a.b+c@sub.domain.in"}
	for _, v := range valids {
		if !ValidEmail(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
	invalids := []string{"", "noat.example.org", "two@@x.y", "a@b", "spa ce@x.org", "@x.org"}
	for _, v := range invalids {
		if ValidEmail(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func TestValidTrustScore(t *testing.T) {
	valids := []float64{0, 0.5, 0.75, 1, 1.00, 0.01, 0.99}
	for _, v := range valids {
		if !ValidTrustScore(v) {
			t.Fatalf("expected valid: %v", v)
		}
	}
	invalids := []float64{-0.01, 1.01, 2, -1, 0.123, 0.005}
	for _, v := range invalids {
		if ValidTrustScore(v) {
			t.Fatalf("expected invalid: %v", v)
		}
	}
}
