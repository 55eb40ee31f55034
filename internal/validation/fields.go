// Package validation holds the request-shape predicates applied at the HTTP
// boundary, before anything reaches the store.
package validation

import (
	"math"
	"regexp"
	"strings"
)

// Mobile rules:
// - Non-digit characters (spaces, dashes, "+") are ignored.
// - At least 10 and at most 15 digits must remain (15 is the column width).
//
// Examples valid: 9876543210, +91 98765-43210
// Examples invalid: 12345, 98-76, "", 16+ digits.
func ValidMobile(s string) bool {
	n := digitCount(s)
	return n >= 10 && n <= 15
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// NormalizeMobile strips every non-digit character.
func NormalizeMobile(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// emailRe is deliberately loose: one @, non-empty local part, domain with a dot,
// no whitespace. Full RFC 5322 is not the goal here.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail returns true if s looks like an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidTrustScore enforces 0 <= s <= 1 with at most two decimal digits.
func ValidTrustScore(s float64) bool {
	if s < 0 || s > 1 {
		return false
	}
	scaled := s * 100
	return math.Abs(scaled-math.Round(scaled)) < 1e-9
}
