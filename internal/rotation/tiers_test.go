package rotation

import (
	"testing"

	"townbeat/internal/domain"
)

func TestSortListings(t *testing.T) {
	listings := []domain.Business{
		{Name: "Zeta", Tier: domain.TierBasic},
		{Name: "Acme", Tier: domain.TierFeatured},
		{Name: "Beta", Tier: domain.TierStandard},
		{Name: "Alpha", Tier: domain.TierBasic},
	}

	got := SortListings(listings)

	want := []string{"Acme", "Beta", "Alpha", "Zeta"}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("position %d = %s; want %s (full order: %v)", i, got[i].Name, name, names(got))
		}
	}

	// Input order untouched.
	if listings[0].Name != "Zeta" {
		t.Errorf("input slice mutated: %v", names(listings))
	}
}

func TestSortListingsStableWithinTier(t *testing.T) {
	listings := []domain.Business{
		{Name: "Cedar Cafe", Tier: domain.TierStandard},
		{Name: "Anvil Hardware", Tier: domain.TierStandard},
		{Name: "Birch Books", Tier: domain.TierStandard},
	}

	first := SortListings(listings)
	second := SortListings(listings)

	for i := range first {
		if first[i].Name != second[i].Name {
			t.Fatalf("repeated sorts disagree: %v vs %v", names(first), names(second))
		}
	}
	if first[0].Name != "Anvil Hardware" || first[2].Name != "Cedar Cafe" {
		t.Errorf("ties not broken by name: %v", names(first))
	}
}

func TestPartitionByTier(t *testing.T) {
	listings := SortListings([]domain.Business{
		{Name: "Zeta", Tier: domain.TierBasic},
		{Name: "Acme", Tier: domain.TierFeatured},
		{Name: "Beta", Tier: domain.TierStandard},
		{Name: "Alpha", Tier: domain.TierBasic},
	})

	buckets := PartitionByTier(listings)

	total := 0
	for _, tier := range TierOrder {
		total += len(buckets[tier])
	}
	if total != len(listings) {
		t.Fatalf("buckets hold %d items; want %d", total, len(listings))
	}

	if len(buckets[domain.TierFeatured]) != 1 || buckets[domain.TierFeatured][0].Name != "Acme" {
		t.Errorf("featured bucket = %v", names(buckets[domain.TierFeatured]))
	}
	if len(buckets[domain.TierBasic]) != 2 || buckets[domain.TierBasic][0].Name != "Alpha" {
		t.Errorf("basic bucket = %v", names(buckets[domain.TierBasic]))
	}
}

func TestTierRank(t *testing.T) {
	if r, ok := TierRank(domain.TierFeatured); !ok || r != 0 {
		t.Errorf("featured rank = %d, %v", r, ok)
	}
	if r, ok := TierRank(domain.TierBasic); !ok || r != 2 {
		t.Errorf("basic rank = %d, %v", r, ok)
	}
	if _, ok := TierRank("platinum"); ok {
		t.Error("unknown tier should not resolve to a rank")
	}
}

func names(bs []domain.Business) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Name
	}
	return out
}
