package search

import (
	"sort"

	"github.com/readingkg/readingkg-server/internal/domain"
)

// rankByRegion orders candidates by region priority, HK first and unknown
// last. The sort is stable: within a region, merge order (local, then source
// order) is preserved. This is display ordering, not relevance.
func rankByRegion(candidates []domain.BookCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RegionHint.Rank() < candidates[j].RegionHint.Rank()
	})
}
