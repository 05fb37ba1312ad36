package pipeline

import (
	"strings"

	"github.com/goroku-app/goroku/internal/domain"
)

// Default length budgets, tuned so a full two-field entry plus the persona
// line fits an X post.
const (
	DefaultInterpretedMax = 102
	DefaultOfficialMax    = 123
	DefaultCombinedMax    = 210

	// DefaultMinInterpretedTokens is the minimum whitespace-separated token
	// count for a present interpreted field. Shorter fragments are treated
	// as incomplete output, not as a legitimately absent field.
	DefaultMinInterpretedTokens = 5
)

// Limits holds the configured length budgets, counted in runes.
type Limits struct {
	InterpretedMax       int
	OfficialMax          int
	CombinedMax          int
	MinInterpretedTokens int
}

// DefaultLimits returns the production length budgets.
func DefaultLimits() Limits {
	return Limits{
		InterpretedMax:       DefaultInterpretedMax,
		OfficialMax:          DefaultOfficialMax,
		CombinedMax:          DefaultCombinedMax,
		MinInterpretedTokens: DefaultMinInterpretedTokens,
	}
}

// Result is a successfully parsed, validated, and truncated field pair.
type Result struct {
	// Interpreted may be empty when the model omitted the field.
	Interpreted string

	// Official is never empty.
	Official string
}

// Process runs one raw completion through extraction, validation, and
// truncation. Failure is terminal for the invocation: there are no internal
// retries, every rejection comes back as a classified error.
func Process(raw string, limits Limits) (Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{}, domain.NewGenerationInvalidError("official", "missing from empty completion")
	}

	interpreted, _ := extractField(raw, interpretedField)

	official, ok := extractField(raw, officialField)
	if !ok {
		official = officialFallbacks(raw, limits.OfficialMax)
	}
	if official == "" {
		return Result{}, domain.NewGenerationInvalidError("official", "empty after all fallbacks")
	}

	if interpreted != "" {
		if n := len(strings.Fields(interpreted)); n < limits.MinInterpretedTokens {
			return Result{}, domain.NewGenerationInvalidError("interpreted", "is an incomplete fragment")
		}
	}

	interpreted, official = Truncate(interpreted, official, limits)

	return Result{Interpreted: interpreted, Official: official}, nil
}
