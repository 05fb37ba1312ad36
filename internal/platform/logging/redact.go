package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// Value patterns that must never reach a log sink.
var (
	// OpenAI-style API keys ("sk-...").
	apiKeyPattern = regexp.MustCompile(`^sk-[A-Za-z0-9_-]{8,}$`)

	// Authorization header values.
	bearerPattern = regexp.MustCompile(`(?i)^bearer\s+.+$`)
)

// redactOptions lists the masq rules for this service. The model API key
// is the only real secret in the process; the field-name rules catch the
// spellings it could surface under when a config or request struct is
// logged wholesale.
func redactOptions() []masq.Option {
	return []masq.Option{
		masq.WithFieldName("password"),
		masq.WithFieldName("secret"),
		masq.WithFieldName("token"),
		masq.WithFieldName("APIKey"),
		masq.WithFieldName("apiKey"),
		masq.WithFieldName("api_key"),
		masq.WithFieldName("authorization"),
		masq.WithFieldName("bearer"),

		masq.WithFieldPrefix("secret"),

		masq.WithRegex(apiKeyPattern),
		masq.WithRegex(bearerPattern),
	}
}

// NewReplaceAttr builds the slog ReplaceAttr hook applying the redaction
// rules, plus any extra masq options the caller appends.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(redactOptions(), opts...)...)
}
