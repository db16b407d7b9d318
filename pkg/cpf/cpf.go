// Package cpf validates Brazilian CPF numbers by their check digits.
package cpf

import "strings"

// Normalize strips every non-digit character, so formatted input like
// "111.444.777-35" and bare digit strings validate the same way.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether the CPF passes the check-digit algorithm. Input is
// normalized first. Eleven identical digits are a known-invalid pattern even
// though their checksum holds.
func Valid(raw string) bool {
	digits := Normalize(raw)
	if len(digits) != 11 {
		return false
	}
	if allSame(digits) {
		return false
	}
	return checkDigit(digits, 9) == int(digits[9]-'0') &&
		checkDigit(digits, 10) == int(digits[10]-'0')
}

// checkDigit computes the verification digit over the first n digits with
// weights n+1 down to 2.
func checkDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}
	remainder := (sum * 10) % 11
	if remainder >= 10 {
		return 0
	}
	return remainder
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
