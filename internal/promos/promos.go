// Package promos selects which ads and spotlights a page actually shows.
// It runs the standard pipeline over the full slot inventory: active-window
// filter, recently-seen exclusion, daily shuffle, then the slot limit.
package promos

import (
	"context"
	"sync"
	"time"

	"townbeat/internal/domain"
	"townbeat/internal/repository"
	"townbeat/internal/rotation"
)

// RecentStore remembers the last ads served to a visitor so consecutive
// page loads rotate through the pool instead of repeating.
type RecentStore interface {
	Recent(ctx context.Context, visitorKey string, n int) ([]int64, error)
	Remember(ctx context.Context, visitorKey string, ids []int64, n int) error
}

// Selector picks ads for a placement slot.
type Selector struct {
	ads     repository.AdRepository
	recents RecentStore
	recentN int
}

// NewSelector creates a Selector. recents may be nil, in which case the
// recently-seen exclusion is skipped.
func NewSelector(ads repository.AdRepository, recents RecentStore, recentN int) *Selector {
	return &Selector{ads: ads, recents: recents, recentN: recentN}
}

// ForSlot returns up to limit ads for the slot. The order is stable for a
// given day, visitor history aside, because the shuffle is seeded from the
// calendar date.
func (s *Selector) ForSlot(ctx context.Context, slot, visitorKey string, now time.Time, limit int) ([]domain.Ad, error) {
	all, err := s.ads.ListBySlot(ctx, slot)
	if err != nil {
		return nil, err
	}

	eligible := make([]domain.Ad, 0, len(all))
	for _, ad := range all {
		if rotation.ActiveWithin(ad.ActiveFrom, ad.ActiveUntil, now) {
			eligible = append(eligible, ad)
		}
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	pool := eligible
	if s.recents != nil && visitorKey != "" {
		recent, err := s.recents.Recent(ctx, visitorKey, s.recentN)
		// A recent-store failure only costs variety, never the placement.
		if err == nil && len(recent) > 0 {
			seen := make(map[int64]struct{}, len(recent))
			for _, id := range recent {
				seen[id] = struct{}{}
			}
			fresh := make([]domain.Ad, 0, len(eligible))
			for _, ad := range eligible {
				if _, ok := seen[ad.ID]; !ok {
					fresh = append(fresh, ad)
				}
			}
			// When the visitor has seen the whole pool, start over rather
			// than serve an empty slot.
			if len(fresh) > 0 {
				pool = fresh
			}
		}
	}

	picked := rotation.DailyShuffle(pool, now)
	if limit > 0 && len(picked) > limit {
		picked = picked[:limit]
	}

	if s.recents != nil && visitorKey != "" && len(picked) > 0 {
		ids := make([]int64, len(picked))
		for i, ad := range picked {
			ids[i] = ad.ID
		}
		_ = s.recents.Remember(ctx, visitorKey, ids, s.recentN)
	}

	return picked, nil
}

// PickSpotlight chooses today's sponsored spotlight from the active set.
func PickSpotlight(spotlights []domain.Spotlight, now time.Time) *domain.Spotlight {
	active := make([]domain.Spotlight, 0, len(spotlights))
	for _, sp := range spotlights {
		if rotation.ActiveWithin(sp.ActiveFrom, sp.ActiveUntil, now) {
			active = append(active, sp)
		}
	}
	if len(active) == 0 {
		return nil
	}
	shuffled := rotation.DailyShuffle(active, now)
	return &shuffled[0]
}

// MemoryRecent is an in-process RecentStore for tests and for running
// without Redis.
type MemoryRecent struct {
	mu sync.Mutex
	m  map[string][]int64
}

func NewMemoryRecent() *MemoryRecent {
	return &MemoryRecent{m: make(map[string][]int64)}
}

func (s *MemoryRecent) Recent(_ context.Context, visitorKey string, n int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.m[visitorKey]
	if len(ids) > n {
		ids = ids[:n]
	}
	out := make([]int64, len(ids))
	copy(out, ids)
	return out, nil
}

func (s *MemoryRecent) Remember(_ context.Context, visitorKey string, ids []int64, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(append([]int64{}, ids...), s.m[visitorKey]...)
	if len(next) > n {
		next = next[:n]
	}
	s.m[visitorKey] = next
	return nil
}
