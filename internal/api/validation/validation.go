package validation

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// EmailRegex validates email format
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// CurrencyRegex validates ISO 4217 style codes
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

const (
	MinPasswordLen = 8
	// MaxPasswordLen is in bytes; bcrypt refuses anything longer.
	MaxPasswordLen = 72
)

// IsValidEmail checks if the string is a valid email format
func IsValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(strings.TrimSpace(email))
}

// CheckPassword returns a message describing why password is unacceptable, or
// "" when it is fine.
func CheckPassword(password string) string {
	if len(password) < MinPasswordLen {
		return "Password must be at least 8 characters"
	}
	if len(password) > MaxPasswordLen {
		return "Password must be at most 72 bytes"
	}
	return ""
}

// IsValidCurrency checks for a three letter upper-case currency code.
func IsValidCurrency(code string) bool {
	return currencyRegex.MatchString(code)
}

// SanitizeString removes potentially dangerous characters for display
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	// Remove control characters except newlines and tabs
	var result strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// TruncateString truncates a string to maxLen runes
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
