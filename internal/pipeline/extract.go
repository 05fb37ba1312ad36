// Package pipeline turns free-form model output into the two bounded,
// policy-compliant quote fields.
package pipeline

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field labels as they appear in the model output format.
const (
	labelPersona     = "本人"
	labelInterpreted = "通訳"
	labelOfficial    = "公式"
)

// extractor attempts to pull one field's value out of the raw completion.
// Extractors are tried in order until one matches, keeping the cascading
// fallback policy declarative and independently testable.
type extractor func(raw string) (string, bool)

// fieldSpec describes how to locate one output field.
type fieldSpec struct {
	label       string
	otherLabels []string

	primary   *regexp.Regexp
	secondary *regexp.Regexp
}

var (
	interpretedField = newFieldSpec(labelInterpreted, labelPersona, labelOfficial)
	officialField    = newFieldSpec(labelOfficial, labelPersona, labelInterpreted)

	// anyLabel matches any recognized field label token.
	anyLabel = regexp.MustCompile(labelPersona + "|" + labelInterpreted + "|" + labelOfficial)

	// openQuotes / closeQuotes are the bracket characters models substitute
	// for the canonical 「」 pair.
	openQuotes  = "「『\"“"
	closeQuotes = "」』\"”"
)

func newFieldSpec(label string, others ...string) fieldSpec {
	return fieldSpec{
		label:       label,
		otherLabels: others,

		// Label immediately followed by bracketed content.
		primary: regexp.MustCompile(label + "「([^」]+)」"),

		// Tolerant variant: alternate quoting characters, intervening
		// whitespace, and line breaks inside the content.
		secondary: regexp.MustCompile(
			"(?s)" + label + `\s*[` + openQuotes + `]\s*(.+?)\s*[` + closeQuotes + `]`,
		),
	}
}

// extractors returns the ordered strategy list for this field.
func (f fieldSpec) extractors() []extractor {
	return []extractor{
		f.extractPrimary,
		f.extractSecondary,
		f.extractRemainder,
	}
}

func (f fieldSpec) extractPrimary(raw string) (string, bool) {
	m := f.primary.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func (f fieldSpec) extractSecondary(raw string) (string, bool) {
	m := f.secondary.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// extractRemainder strips the other fields' labeled blocks from the raw
// text and treats whatever is left as this field's value.
func (f fieldSpec) extractRemainder(raw string) (string, bool) {
	out := raw
	for _, other := range f.otherLabels {
		spec := newFieldSpec(other)
		out = spec.primary.ReplaceAllString(out, "")
		out = spec.secondary.ReplaceAllString(out, "")
	}

	out = strings.TrimSpace(out)
	out = unwrapLabel(out, f.label)
	if out == "" {
		return "", false
	}
	return out, true
}

// extractField runs the field's strategies in order, first match wins.
func extractField(raw string, f fieldSpec) (string, bool) {
	for _, ex := range f.extractors() {
		if v, ok := ex(raw); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// unwrapLabel removes a leading "label「" and a trailing closing quote.
func unwrapLabel(s, label string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, label)
	s = strings.TrimLeft(s, openQuotes+" \t")
	s = strings.TrimRight(s, closeQuotes+" \t")
	return strings.TrimSpace(s)
}

// officialFallbacks applies the cascading recovery steps for the mandatory
// official field after all regular strategies have failed, in order:
// content after the second label boundary, then the joined tail lines, then
// the label-stripped raw text hard-truncated to maxRunes.
func officialFallbacks(raw string, maxRunes int) string {
	if v := afterSecondLabel(raw); v != "" {
		return v
	}
	if v := joinedTailLines(raw); v != "" {
		return v
	}
	return truncateRunes(stripAllLabels(raw), maxRunes)
}

// afterSecondLabel locates the second recognized label token, skips past
// its bracketed block if it has one, and returns the unwrapped remainder.
func afterSecondLabel(raw string) string {
	locs := anyLabel.FindAllStringIndex(raw, -1)
	if len(locs) < 2 {
		return ""
	}
	rest := strings.TrimSpace(raw[locs[1][1]:])

	// Skip the second field's own bracketed block when present.
	if r, w := utf8.DecodeRuneInString(rest); w > 0 && strings.ContainsRune(openQuotes, r) {
		body := rest[w:]
		if end := strings.IndexAny(body, closeQuotes); end >= 0 {
			_, cw := utf8.DecodeRuneInString(body[end:])
			rest = body[end+cw:]
		}
	}

	rest = strings.TrimLeft(strings.TrimSpace(rest), openQuotes)
	rest = strings.TrimRight(rest, closeQuotes)
	return strings.TrimSpace(rest)
}

// joinedTailLines joins every line from the third onward and strips any
// leading label token.
func joinedTailLines(raw string) string {
	lines := strings.Split(raw, "\n")
	if len(lines) < 3 {
		return ""
	}

	joined := strings.TrimSpace(strings.Join(lines[2:], " "))
	if loc := anyLabel.FindStringIndex(joined); loc != nil && loc[0] == 0 {
		joined = joined[loc[1]:]
	}
	joined = strings.TrimLeft(joined, openQuotes+" ")
	joined = strings.TrimRight(joined, closeQuotes+" ")
	return strings.TrimSpace(joined)
}

// stripAllLabels removes every label token and bracket character, keeping
// the bare text between them.
func stripAllLabels(raw string) string {
	out := anyLabel.ReplaceAllString(raw, "")
	out = strings.Map(func(r rune) rune {
		if strings.ContainsRune(openQuotes+closeQuotes, r) {
			return -1
		}
		return r
	}, out)
	return strings.Join(strings.Fields(out), " ")
}
