// Package lineup assigns quotes to the nine batting-order slots for a
// calendar day, deterministically for a given seed.
package lineup

import "time"

// LCG parameters. The generator is intentionally simple: reproducibility
// across releases matters more here than statistical quality.
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// tokyo pins the lineup day boundary to Japanese local time regardless of
// host timezone.
var tokyo = mustLoadLocation("Asia/Tokyo")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("lineup: load location " + name + ": " + err.Error())
	}
	return loc
}

// DateKey formats t as the YYYY-MM-DD day key in Asia/Tokyo.
func DateKey(t time.Time) string {
	return t.In(tokyo).Format("2006-01-02")
}

// hashSeed folds s into a 32-bit integer seed. The fold is h = h*31 + ch
// over the runes of s, truncated to int32 at each step, with the absolute
// value taken at the end so the LCG state starts non-negative.
func hashSeed(s string) int64 {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	if h < 0 {
		h = -h
	}
	return int64(h)
}

// rng is a seeded linear congruential generator.
type rng struct {
	state int64
}

func newRNG(seed string) *rng {
	return &rng{state: hashSeed(seed)}
}

// next returns the next value in [0, 1).
func (g *rng) next() float64 {
	g.state = (g.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(g.state) / lcgModulus
}

// intn returns the next value in [0, n).
func (g *rng) intn(n int) int {
	return int(g.next() * float64(n))
}

// shuffle permutes xs in place with a Fisher-Yates walk driven by g.
func shuffle[T any](g *rng, xs []T) {
	for i := len(xs) - 1; i > 0; i-- {
		j := g.intn(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}
