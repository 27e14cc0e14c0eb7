// Package rotation implements the time-windowed content selection logic:
// the active-window predicate, the deterministic daily shuffle used to
// rotate sponsor visibility, and the tiered directory ordering.
//
// Everything here is pure: callers pass the current time in explicitly,
// nothing reads the wall clock or keeps state between calls.
package rotation

import (
	"time"
)

// Clock supplies the current time. Handlers resolve it once per request so
// every selection within a request sees the same instant.
type Clock func() time.Time

// WallClock returns a Clock pinned to the given location. The daily shuffle
// rolls over at midnight in this location.
func WallClock(loc *time.Location) Clock {
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// Accepted layouts for window bounds as authored in the content store.
var boundLayouts = []string{time.RFC3339, "2006-01-02"}

// parseBound parses a window bound. Date-only bounds are taken at midnight
// in now's location so "2025-03-01" behaves as expected for local rotation.
func parseBound(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range boundLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ActiveWithin reports whether now falls inside [start, end], inclusive at
// both bounds. An empty bound is unbounded on that side. A bound that fails
// to parse excludes the item: one bad date in the store must not surface a
// stale ad, and must never take the whole listing page down.
func ActiveWithin(start, end string, now time.Time) bool {
	if start != "" {
		t, ok := parseBound(start, now.Location())
		if !ok {
			return false
		}
		if now.Before(t) {
			return false
		}
	}
	if end != "" {
		t, ok := parseBound(end, now.Location())
		if !ok {
			return false
		}
		// Date-only end bounds cover the whole day.
		if len(end) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		if now.After(t) {
			return false
		}
	}
	return true
}

// seedFor derives the shuffle seed from the calendar date of now.
func seedFor(now time.Time) string {
	return now.Format("2006-01-02")
}

// hashSeed folds the seed string into a signed 32-bit state with the usual
// multiplicative string hash.
func hashSeed(seed string) int32 {
	var h int32
	for _, ch := range []byte(seed) {
		h = h*31 + int32(ch)
	}
	return h
}

// lcg is a minimal linear congruential generator over wrapping int32 state.
// Not cryptographically secure. It exists purely to rotate sponsor
// visibility fairly over time without a database write; never reuse it for
// tokens or anything security-sensitive.
type lcg struct {
	state int32
}

func (g *lcg) next() int32 {
	g.state = g.state * 48271
	return g.state
}

// DailyShuffle returns a copy of items permuted by a Fisher-Yates pass
// seeded from the calendar date of now. The permutation is identical for
// every call on the same day with the same input, anywhere it runs, and
// changes when the date rolls over or the input changes.
func DailyShuffle[T any](items []T, now time.Time) []T {
	out := make([]T, len(items))
	copy(out, items)
	if len(out) < 2 {
		return out
	}

	g := &lcg{state: hashSeed(seedFor(now))}
	for i := len(out) - 1; i > 0; i-- {
		v := int64(g.next())
		if v < 0 {
			v = -v
		}
		j := int(v % int64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}
