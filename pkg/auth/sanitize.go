package auth

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CleanInput removes control characters (except newline and tab) from a form
// value. HTML escaping is left to the template layer.
func CleanInput(input string) string {
	return removeControlChars(input)
}

// CleanLine trims a single-line form field and removes control characters.
func CleanLine(value string) string {
	return strings.TrimSpace(removeControlChars(value))
}

// ValidateStringLength validates that a string is within the specified length constraints.
func ValidateStringLength(field, value string, min, max int) error {
	length := utf8.RuneCountInString(value)

	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters long", field, min)
	}

	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters long", field, max)
	}

	return nil
}

// removeControlChars removes control characters except newline and tab.
func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
