// Package domain contains core business entities and rules.
package domain

import (
	"strings"
	"time"
)

// Quote is a persisted three-line entry: the submitter's original phrase,
// an optional interpreted rendering, and the final official remark.
type Quote struct {
	// ID is the unique, monotonically assigned identifier.
	ID int64

	// Original is the phrase the user submitted. Required.
	Original string

	// Interpreted is the intermediate stylized rendering. May be empty.
	Interpreted string

	// Official is the final curated remark. Never empty once persisted.
	Official string

	// Engagement counters. Never negative.
	Likes         int64
	Reposts       int64
	QuotedReposts int64

	// SlotLabel tags the lineup display position this quote may occupy.
	// Empty or unknown labels exclude the quote from label-based assignment.
	SlotLabel string

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time
}

// Validate checks the fields every persisted quote must carry. Stores call
// this before appending so the required-field invariants hold at every
// backend.
func (q Quote) Validate() error {
	if strings.TrimSpace(q.Original) == "" {
		return NewValidationError("original", "must not be empty")
	}
	if strings.TrimSpace(q.Official) == "" {
		return NewValidationError("official", "must not be empty")
	}
	return nil
}

// Score ranks a quote by multiplying its engagement axes. Zero-engagement
// quotes score 1, so new entries are never mathematically excluded.
func (q Quote) Score() int64 {
	return (q.Likes + 1) * (q.Reposts + 1) * (q.QuotedReposts + 1)
}

// SlotCount is the number of lineup display slots.
const SlotCount = 9

// SlotLabels is the enumerated set of lineup display positions, in the
// fixed order the product renders them with.
var SlotLabels = [SlotCount]string{"右", "左", "中", "三", "一", "二", "遊", "捕", "DH"}

// slotAliases maps accepted alternate spellings onto canonical slot labels.
var slotAliases = map[string]string{
	"指": "DH",
}

// CanonicalSlotLabel resolves aliases and reports whether the label is one
// of the enumerated slot positions. Labels outside the set (pitcher roles,
// free-form tags) return ok=false and are treated as unlabeled filler.
func CanonicalSlotLabel(label string) (string, bool) {
	if alias, ok := slotAliases[label]; ok {
		label = alias
	}
	for _, l := range SlotLabels {
		if l == label {
			return label, true
		}
	}
	return "", false
}
