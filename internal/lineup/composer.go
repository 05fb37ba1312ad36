package lineup

import (
	"strconv"

	"github.com/goroku-app/goroku/internal/domain"
)

// Compose assigns up to len(labels) quotes to the lineup for dateKey and
// returns their ids in display order. The result is fully deterministic:
// the same quotes snapshot and the same dateKey always produce the same
// ordered id list.
//
// Assignment runs in four passes over one seeded shuffle of the snapshot:
//
//  1. Quotes carrying a recognized slot label claim their own label,
//     first writer wins.
//  2. Quotes with no label, or whose label is already taken, each pick
//     one of the still-open labels. The pick is driven by a per-quote
//     sub-seed of dateKey plus the quote id, so it does not depend on
//     how earlier quotes happened to be ordered.
//  3. Quotes whose label is outside the recognized set, such as a relief
//     pitcher role, fill any labels still open.
//  4. The assembled set is shuffled once more for display order,
//     decoupling it from label-assignment order.
func Compose(quotes []domain.Quote, dateKey string, labels []string) []int64 {
	g := newRNG(dateKey)

	shuffled := make([]domain.Quote, len(quotes))
	copy(shuffled, quotes)
	shuffle(g, shuffled)

	known := make(map[string]bool, len(labels))
	for _, l := range labels {
		known[l] = true
	}

	bound := make(map[string]domain.Quote, len(labels))
	assigned := make(map[int64]bool, len(labels))

	var unlabeled, filler []domain.Quote
	for _, q := range shuffled {
		label, ok := domain.CanonicalSlotLabel(q.SlotLabel)
		switch {
		case ok && known[label]:
			if _, taken := bound[label]; !taken {
				bound[label] = q
				assigned[q.ID] = true
			} else {
				unlabeled = append(unlabeled, q)
			}
		case q.SlotLabel == "":
			unlabeled = append(unlabeled, q)
		default:
			// Non-slot role. Kept out of label assignment, still
			// usable as filler.
			filler = append(filler, q)
		}
	}

	for _, q := range unlabeled {
		open := openLabels(labels, bound)
		if len(open) == 0 {
			break
		}
		sub := newRNG(dateKey + strconv.FormatInt(q.ID, 10))
		shuffle(sub, open)
		bound[open[0]] = q
		assigned[q.ID] = true
	}

	for _, q := range filler {
		open := openLabels(labels, bound)
		if len(open) == 0 {
			break
		}
		if assigned[q.ID] {
			continue
		}
		bound[open[0]] = q
		assigned[q.ID] = true
	}

	ordered := make([]domain.Quote, 0, len(labels))
	for _, l := range labels {
		if q, ok := bound[l]; ok {
			ordered = append(ordered, q)
		}
	}
	shuffle(g, ordered)

	ids := make([]int64, len(ordered))
	for i, q := range ordered {
		ids[i] = q.ID
	}
	return ids
}

// openLabels returns the labels not yet bound, in fixed slot order so the
// sub-seeded pick is stable.
func openLabels(labels []string, bound map[string]domain.Quote) []string {
	open := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, ok := bound[l]; !ok {
			open = append(open, l)
		}
	}
	return open
}
