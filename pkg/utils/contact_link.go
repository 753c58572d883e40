package utils

import "strings"

const whatsAppBaseURL = "https://wa.me/"

// ContactLink derives a WhatsApp deep link from a stored contact number.
// Everything except digits is dropped (including a leading '+'); an input
// with no digits yields "".
func ContactLink(raw string) string {
	digits := DigitsOnly(raw)
	if digits == "" {
		return ""
	}
	return whatsAppBaseURL + digits
}

// DigitsOnly returns the ASCII digits of s in order
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
