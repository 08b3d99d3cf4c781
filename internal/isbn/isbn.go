// Package isbn validates and normalizes ISBN-10 and ISBN-13 identifiers.
package isbn

import "strings"

// Normalize strips separators (spaces, hyphens) and uppercases a raw ISBN
// string. It does not validate; use IsISBN10/IsISBN13 for that.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteByte('X')
		case r == '-' || r == ' ':
			// separator, drop
		default:
			// Any other character makes the string a non-ISBN.
			return ""
		}
	}
	return b.String()
}

// IsISBN10 reports whether s (already normalized) is a checksum-valid ISBN-10.
func IsISBN10(s string) bool {
	if len(s) != 10 {
		return false
	}
	sum := 0
	for i := range 9 {
		d := s[i]
		if d < '0' || d > '9' {
			return false
		}
		sum += int(d-'0') * (10 - i)
	}
	last := s[9]
	switch {
	case last == 'X':
		sum += 10
	case last >= '0' && last <= '9':
		sum += int(last - '0')
	default:
		return false
	}
	return sum%11 == 0
}

// IsISBN13 reports whether s (already normalized) is a checksum-valid ISBN-13.
func IsISBN13(s string) bool {
	if len(s) != 13 {
		return false
	}
	sum := 0
	for i := range 13 {
		d := s[i]
		if d < '0' || d > '9' {
			return false
		}
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		sum += int(d-'0') * weight
	}
	return sum%10 == 0
}

// Classify normalizes raw and reports the valid ISBN it contains, if any.
// The second return value is "isbn10", "isbn13", or "" when raw is not an ISBN.
func Classify(raw string) (normalized, kind string) {
	s := Normalize(raw)
	switch {
	case IsISBN13(s):
		return s, "isbn13"
	case IsISBN10(s):
		return s, "isbn10"
	default:
		return "", ""
	}
}

// To13 converts a valid ISBN-10 to its ISBN-13 form (978 prefix).
// Returns "" if s is not a valid ISBN-10.
func To13(s string) string {
	if !IsISBN10(s) {
		return ""
	}
	body := "978" + s[:9]
	sum := 0
	for i := range 12 {
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		sum += int(body[i]-'0') * weight
	}
	check := (10 - sum%10) % 10
	return body + string(rune('0'+check))
}

// DedupeKey returns the canonical identity for candidate deduplication:
// ISBN-13 when present, otherwise the ISBN-10 converted to 13, otherwise "".
func DedupeKey(isbn10, isbn13 string) string {
	if s := Normalize(isbn13); IsISBN13(s) {
		return s
	}
	if s := Normalize(isbn10); IsISBN10(s) {
		return To13(s)
	}
	return ""
}
