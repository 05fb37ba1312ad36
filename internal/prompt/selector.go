// Package prompt builds the few-shot prompt sent to the language model.
package prompt

import (
	"sort"
	"strings"

	"github.com/goroku-app/goroku/internal/domain"
)

// OmittedPlaceholder stands in for a missing interpreted line inside an
// example block, so the rendered format always shows three lines.
const OmittedPlaceholder = "（省略）"

// SelectExamples renders the top-scoring quotes as few-shot example blocks
// and returns them joined with blank lines. It returns the empty string for
// an empty collection; the caller substitutes a hardcoded default example.
//
// Ties are broken by input order via the stable sort, so curated reference
// quotes placed before user submissions win without an explicit priority flag.
func SelectExamples(quotes []domain.Quote, count int) string {
	if len(quotes) == 0 || count <= 0 {
		return ""
	}

	sorted := make([]domain.Quote, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score() > sorted[j].Score()
	})

	if count > len(sorted) {
		count = len(sorted)
	}

	blocks := make([]string, 0, count)
	for _, q := range sorted[:count] {
		blocks = append(blocks, FormatExample(q))
	}

	return strings.Join(blocks, "\n\n")
}

// FormatExample renders one quote as the fixed three-line example block.
func FormatExample(q domain.Quote) string {
	interpreted := q.Interpreted
	if interpreted == "" {
		interpreted = OmittedPlaceholder
	}

	var b strings.Builder
	b.WriteString("本人「")
	b.WriteString(q.Original)
	b.WriteString("」\n通訳「")
	b.WriteString(interpreted)
	b.WriteString("」\n公式「")
	b.WriteString(q.Official)
	b.WriteString("」")
	return b.String()
}
