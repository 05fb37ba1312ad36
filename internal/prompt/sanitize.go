package prompt

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goroku-app/goroku/internal/domain"
)

// dangerousPatterns reject inputs carrying markup or script fragments.
// The generated text is later rendered verbatim in downstream surfaces.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)data:text/html`),
	regexp.MustCompile(`(?i)vbscript:`),
}

// ValidateInput checks a raw submission before any model work is spent on it.
func ValidateInput(input string, maxRunes int) error {
	if strings.TrimSpace(input) == "" {
		return domain.NewValidationError("input", "must not be empty")
	}

	if utf8.RuneCountInString(input) > maxRunes {
		return domain.NewValidationError("input", "exceeds maximum length")
	}

	for _, p := range dangerousPatterns {
		if p.MatchString(input) {
			return domain.NewValidationError("input", "contains a disallowed pattern")
		}
	}

	return nil
}

// SanitizeInput strips control characters from a validated submission.
// Newlines and tabs are kept; everything below 0x20 plus DEL goes.
func SanitizeInput(input string) string {
	var b strings.Builder
	b.Grow(len(input))

	for _, r := range input {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}

	return strings.TrimSpace(b.String())
}
