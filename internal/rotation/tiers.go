package rotation

import (
	"sort"

	"townbeat/internal/domain"
)

// tierRanks is the fixed display precedence of directory tiers.
var tierRanks = map[string]int{
	domain.TierFeatured: 0,
	domain.TierStandard: 1,
	domain.TierBasic:    2,
}

// TierOrder lists the known tiers in display precedence.
var TierOrder = []string{domain.TierFeatured, domain.TierStandard, domain.TierBasic}

// TierRank returns the sort rank of a tier. Unknown tiers report ok=false;
// they are rejected when the listing is written, so hitting one here means
// the data slipped past validation.
func TierRank(tier string) (int, bool) {
	r, ok := tierRanks[tier]
	return r, ok
}

// SortListings orders businesses by ascending tier rank, then name. The sort
// must run once over the full eligible set before any pagination slice, so
// "load more" never reshuffles items the visitor already saw. Unknown tiers
// sink to the end.
func SortListings(listings []domain.Business) []domain.Business {
	out := make([]domain.Business, len(listings))
	copy(out, listings)

	sort.SliceStable(out, func(i, j int) bool {
		ri, ok := tierRanks[out[i].Tier]
		if !ok {
			ri = len(tierRanks)
		}
		rj, ok := tierRanks[out[j].Tier]
		if !ok {
			rj = len(tierRanks)
		}
		if ri != rj {
			return ri < rj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// PartitionByTier splits an already-sorted listing into per-tier buckets for
// independent rendering (hero treatment for featured, grid for the rest).
// Every item lands in exactly one bucket.
func PartitionByTier(listings []domain.Business) map[string][]domain.Business {
	buckets := make(map[string][]domain.Business, len(tierRanks))
	for _, b := range listings {
		buckets[b.Tier] = append(buckets[b.Tier], b)
	}
	return buckets
}
