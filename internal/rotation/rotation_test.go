package rotation

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return ts
}

func TestActiveWithin(t *testing.T) {
	now := "2025-06-15T12:00:00Z"

	tests := []struct {
		name  string
		start string
		end   string
		want  bool
	}{
		{"no bounds", "", "", true},
		{"start in past", "2025-06-01T00:00:00Z", "", true},
		{"start in future", "2025-06-15T13:00:00Z", "", false},
		{"end in future", "", "2025-07-01T00:00:00Z", true},
		{"end in past", "", "2025-06-14T00:00:00Z", false},
		{"inside window", "2025-06-01T00:00:00Z", "2025-07-01T00:00:00Z", true},
		{"start exactly now", now, "", true},
		{"end exactly now", "", now, true},
		{"date-only window", "2025-06-15", "2025-06-15", true},
		{"date-only expired", "2025-06-01", "2025-06-14", false},
		{"malformed start fails closed", "not-a-date", "", false},
		{"malformed end fails closed", "", "06/15/2025", false},
		{"malformed start, valid end", "garbage", "2025-07-01T00:00:00Z", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActiveWithin(tt.start, tt.end, mustTime(t, now))
			if got != tt.want {
				t.Errorf("ActiveWithin(%q, %q) = %v; want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestActiveWithinBecomesActiveOverTime(t *testing.T) {
	start := "2025-06-15T13:00:00Z"

	before := mustTime(t, "2025-06-15T12:00:00Z")
	if ActiveWithin(start, "", before) {
		t.Error("item with start one hour ahead should be excluded now")
	}

	after := mustTime(t, "2025-06-15T13:00:01Z")
	if !ActiveWithin(start, "", after) {
		t.Error("item should be included once time passes start")
	}
}

func TestDailyShuffleDeterministic(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f", "g"}
	now := mustTime(t, "2025-06-15T09:30:00Z")

	first := DailyShuffle(items, now)
	second := DailyShuffle(items, now)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same day produced different orders: %v vs %v", first, second)
		}
	}

	// A different time on the same calendar day must not change the order.
	later := mustTime(t, "2025-06-15T23:59:59Z")
	evening := DailyShuffle(items, later)
	for i := range first {
		if first[i] != evening[i] {
			t.Fatalf("order changed within one day: %v vs %v", first, evening)
		}
	}
}

func TestDailyShuffleBijection(t *testing.T) {
	now := mustTime(t, "2025-06-15T09:30:00Z")

	for _, n := range []int{0, 1, 2, 5, 20} {
		items := make([]int, n)
		for i := range items {
			items[i] = i
		}

		out := DailyShuffle(items, now)
		if len(out) != n {
			t.Fatalf("length %d: got %d items back", n, len(out))
		}

		seen := make(map[int]int, n)
		for _, v := range out {
			seen[v]++
		}
		for i := 0; i < n; i++ {
			if seen[i] != 1 {
				t.Fatalf("length %d: element %d appears %d times", n, i, seen[i])
			}
		}
	}
}

func TestDailyShuffleRotatesAcrossDays(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f"}
	base := mustTime(t, "2025-06-01T12:00:00Z")

	baseline := DailyShuffle(items, base)
	rotated := false
	for day := 1; day <= 30; day++ {
		out := DailyShuffle(items, base.AddDate(0, 0, day))
		for i := range out {
			if out[i] != baseline[i] {
				rotated = true
				break
			}
		}
		if rotated {
			break
		}
	}

	if !rotated {
		t.Error("order never changed across 30 consecutive days")
	}
}

func TestDailyShuffleDoesNotMutateInput(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	want := []string{"a", "b", "c", "d", "e"}

	DailyShuffle(items, mustTime(t, "2025-06-15T09:30:00Z"))

	for i := range items {
		if items[i] != want[i] {
			t.Fatalf("input mutated: %v", items)
		}
	}
}

func TestDailyShuffleEmptyAndSingle(t *testing.T) {
	now := mustTime(t, "2025-06-15T09:30:00Z")

	if out := DailyShuffle([]string{}, now); len(out) != 0 {
		t.Errorf("empty input: got %v", out)
	}
	if out := DailyShuffle([]string{"only"}, now); len(out) != 1 || out[0] != "only" {
		t.Errorf("single input: got %v", out)
	}
}

func TestWallClockLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	clock := WallClock(loc)
	if got := clock().Location(); got != loc {
		t.Errorf("clock location = %v; want %v", got, loc)
	}
}
