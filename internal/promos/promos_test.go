package promos

import (
	"context"
	"testing"
	"time"

	"townbeat/internal/domain"
)

type fakeAdRepo struct {
	ads []domain.Ad
}

func (f *fakeAdRepo) Create(_ context.Context, _ *domain.Ad) error           { return nil }
func (f *fakeAdRepo) GetByID(_ context.Context, _ int64) (*domain.Ad, error) { return nil, nil }
func (f *fakeAdRepo) Update(_ context.Context, _ *domain.Ad) error           { return nil }
func (f *fakeAdRepo) Delete(_ context.Context, _ int64) error                { return nil }
func (f *fakeAdRepo) List(_ context.Context) ([]domain.Ad, error)            { return f.ads, nil }
func (f *fakeAdRepo) IncrementImpressions(_ context.Context, _ int64) error  { return nil }
func (f *fakeAdRepo) IncrementClicks(_ context.Context, _ int64) error       { return nil }

func (f *fakeAdRepo) ListBySlot(_ context.Context, slot string) ([]domain.Ad, error) {
	var out []domain.Ad
	for _, ad := range f.ads {
		if ad.Slot == slot {
			out = append(out, ad)
		}
	}
	return out, nil
}

var noon = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestForSlotFiltersWindow(t *testing.T) {
	repo := &fakeAdRepo{ads: []domain.Ad{
		{ID: 1, Slot: domain.SlotHome},
		{ID: 2, Slot: domain.SlotHome, ActiveFrom: "2025-07-01"},
		{ID: 3, Slot: domain.SlotHome, ActiveUntil: "2025-06-01"},
		{ID: 4, Slot: domain.SlotHome, ActiveUntil: "not-a-date"},
		{ID: 5, Slot: domain.SlotSidebar},
	}}
	sel := NewSelector(repo, nil, 5)

	got, err := sel.ForSlot(context.Background(), domain.SlotHome, "", noon, 10)
	if err != nil {
		t.Fatalf("ForSlot: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("got %+v; want only the unbounded ad", got)
	}
}

func TestForSlotHonorsLimit(t *testing.T) {
	repo := &fakeAdRepo{ads: []domain.Ad{
		{ID: 1, Slot: domain.SlotSidebar},
		{ID: 2, Slot: domain.SlotSidebar},
		{ID: 3, Slot: domain.SlotSidebar},
	}}
	sel := NewSelector(repo, nil, 5)

	got, err := sel.ForSlot(context.Background(), domain.SlotSidebar, "", noon, 2)
	if err != nil {
		t.Fatalf("ForSlot: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d; want 2", len(got))
	}
}

func TestForSlotIsStableWithinADay(t *testing.T) {
	repo := &fakeAdRepo{ads: []domain.Ad{
		{ID: 1, Slot: domain.SlotHome},
		{ID: 2, Slot: domain.SlotHome},
		{ID: 3, Slot: domain.SlotHome},
		{ID: 4, Slot: domain.SlotHome},
	}}
	sel := NewSelector(repo, nil, 5)

	a, _ := sel.ForSlot(context.Background(), domain.SlotHome, "", noon, 10)
	b, _ := sel.ForSlot(context.Background(), domain.SlotHome, "", noon.Add(5*time.Hour), 10)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("order differs at %d: %d vs %d", i, a[i].ID, b[i].ID)
		}
	}
}

func TestForSlotSkipsRecentlySeen(t *testing.T) {
	repo := &fakeAdRepo{ads: []domain.Ad{
		{ID: 1, Slot: domain.SlotHome},
		{ID: 2, Slot: domain.SlotHome},
		{ID: 3, Slot: domain.SlotHome},
	}}
	recents := NewMemoryRecent()
	sel := NewSelector(repo, recents, 5)

	first, err := sel.ForSlot(context.Background(), domain.SlotHome, "visitor-a", noon, 1)
	if err != nil || len(first) != 1 {
		t.Fatalf("first pick: %v %v", first, err)
	}

	second, err := sel.ForSlot(context.Background(), domain.SlotHome, "visitor-a", noon, 1)
	if err != nil || len(second) != 1 {
		t.Fatalf("second pick: %v %v", second, err)
	}
	if second[0].ID == first[0].ID {
		t.Errorf("second pick repeated ad %d", first[0].ID)
	}
}

func TestForSlotFallsBackWhenAllSeen(t *testing.T) {
	repo := &fakeAdRepo{ads: []domain.Ad{{ID: 1, Slot: domain.SlotFooter}}}
	recents := NewMemoryRecent()
	recents.Remember(context.Background(), "visitor-a", []int64{1}, 5)
	sel := NewSelector(repo, recents, 5)

	got, err := sel.ForSlot(context.Background(), domain.SlotFooter, "visitor-a", noon, 1)
	if err != nil {
		t.Fatalf("ForSlot: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("exhausted history must not empty the slot, got %d ads", len(got))
	}
}

func TestPickSpotlight(t *testing.T) {
	spots := []domain.Spotlight{
		{ID: 1, Headline: "expired", ActiveUntil: "2025-01-01"},
		{ID: 2, Headline: "live"},
	}
	sp := PickSpotlight(spots, noon)
	if sp == nil || sp.ID != 2 {
		t.Errorf("spotlight = %+v; want the live one", sp)
	}

	if got := PickSpotlight(nil, noon); got != nil {
		t.Errorf("empty input must yield nil, got %+v", got)
	}
}

func TestMemoryRecentTrims(t *testing.T) {
	s := NewMemoryRecent()
	ctx := context.Background()
	s.Remember(ctx, "v", []int64{1, 2}, 3)
	s.Remember(ctx, "v", []int64{3, 4}, 3)

	got, _ := s.Recent(ctx, "v", 3)
	if len(got) != 3 {
		t.Fatalf("len = %d; want 3", len(got))
	}
	if got[0] != 3 || got[1] != 4 {
		t.Errorf("newest entries must come first: %v", got)
	}
}
