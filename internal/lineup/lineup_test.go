package lineup

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goroku-app/goroku/internal/domain"
)

func slotLabels() []string {
	return domain.SlotLabels[:]
}

func labeledQuotes(n int) []domain.Quote {
	quotes := make([]domain.Quote, n)
	for i := range quotes {
		q := domain.Quote{
			ID:       int64(i + 1),
			Original: fmt.Sprintf("quote %d", i+1),
			Official: fmt.Sprintf("公式コメント%d", i+1),
		}
		if i < domain.SlotCount {
			q.SlotLabel = domain.SlotLabels[i]
		}
		quotes[i] = q
	}
	return quotes
}

func TestCompose_Deterministic(t *testing.T) {
	quotes := labeledQuotes(15)

	first := Compose(quotes, "2025-01-01", slotLabels())
	second := Compose(quotes, "2025-01-01", slotLabels())

	assert.Equal(t, first, second)
}

func TestCompose_UniqueAndBounded(t *testing.T) {
	quotes := labeledQuotes(15)

	ids := Compose(quotes, "2025-06-15", slotLabels())

	require.Len(t, ids, domain.SlotCount)
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		assert.False(t, seen[id], "id %d appears twice", id)
		seen[id] = true
	}
}

func TestCompose_FewerQuotesThanSlots(t *testing.T) {
	quotes := labeledQuotes(4)

	ids := Compose(quotes, "2025-01-01", slotLabels())

	assert.Len(t, ids, 4)
}

func TestCompose_EmptySnapshot(t *testing.T) {
	assert.Empty(t, Compose(nil, "2025-01-01", slotLabels()))
}

func TestCompose_DuplicateLabelsBothPlaced(t *testing.T) {
	// Two quotes claim the same slot. The loser gap-fills into an open
	// label, so both still make the lineup.
	quotes := []domain.Quote{
		{ID: 1, SlotLabel: "右", Official: "a"},
		{ID: 2, SlotLabel: "右", Official: "b"},
	}

	ids := Compose(quotes, "2025-01-01", slotLabels())

	assert.ElementsMatch(t, []int64{1, 2}, ids)
}

func TestCompose_NonSlotRolesFillOpenLabels(t *testing.T) {
	// Relief pitchers carry a role outside the slot set. They never claim
	// a label of their own but still backfill open ones.
	quotes := []domain.Quote{
		{ID: 1, SlotLabel: "先発", Official: "a"},
		{ID: 2, SlotLabel: "抑え", Official: "b"},
		{ID: 3, SlotLabel: "捕", Official: "c"},
	}

	ids := Compose(quotes, "2025-01-01", slotLabels())

	assert.ElementsMatch(t, []int64{1, 2, 3}, ids)
}

func TestCompose_DesignatedHitterAlias(t *testing.T) {
	quotes := []domain.Quote{
		{ID: 1, SlotLabel: "指", Official: "a"},
		{ID: 2, SlotLabel: "DH", Official: "b"},
	}

	ids := Compose(quotes, "2025-01-01", slotLabels())

	// Both canonicalize to DH; the second claimant gap-fills elsewhere.
	assert.ElementsMatch(t, []int64{1, 2}, ids)
}

func TestHashSeed(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{in: "", want: 0},
		{in: "a", want: 97},
		{in: "ab", want: 97*31 + 98},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hashSeed(tt.in), "hashSeed(%q)", tt.in)
	}
	assert.GreaterOrEqual(t, hashSeed("2025-01-01"), int64(0))
}

func TestRNG_Deterministic(t *testing.T) {
	a := newRNG("2025-01-01")
	b := newRNG("2025-01-01")
	for i := 0; i < 10; i++ {
		v := a.next()
		assert.Equal(t, v, b.next())
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestDateKey_TokyoBoundary(t *testing.T) {
	// 16:00 UTC is already the next day in Tokyo.
	late := time.Date(2025, 1, 1, 16, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-02", DateKey(late))

	early := time.Date(2025, 1, 1, 14, 59, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-01", DateKey(early))
}

func TestCache(t *testing.T) {
	c := NewCache()

	_, ok := c.Get("2025-01-01")
	assert.False(t, ok)

	c.Put("2025-01-01", []int64{3, 1, 2})
	got, ok := c.Get("2025-01-01")
	require.True(t, ok)
	assert.Equal(t, []int64{3, 1, 2}, got)

	// A different day never serves the stale entry.
	_, ok = c.Get("2025-01-02")
	assert.False(t, ok)

	// Day rollover supersedes the previous entry entirely.
	c.Put("2025-01-02", []int64{9})
	_, ok = c.Get("2025-01-01")
	assert.False(t, ok)
	got, ok = c.Get("2025-01-02")
	require.True(t, ok)
	assert.Equal(t, []int64{9}, got)
}

func TestCache_ReturnsCopy(t *testing.T) {
	c := NewCache()
	c.Put("2025-01-01", []int64{1, 2, 3})

	got, _ := c.Get("2025-01-01")
	got[0] = 99

	again, _ := c.Get("2025-01-01")
	assert.Equal(t, []int64{1, 2, 3}, again)
}
