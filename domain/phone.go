package domain

import "strings"

// NormalizePhone reduces any Indian mobile format ("+91 92789 01234",
// "91-9278901234", "09278901234") to the bare ten digits used as the
// profile key. Input without digits normalizes to "".
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		digits = digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		digits = digits[1:]
	}
	return digits
}

// ValidMobile reports whether a normalized phone looks like an Indian
// mobile number: ten digits starting with 6-9.
func ValidMobile(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	return phone[0] >= '6' && phone[0] <= '9'
}
