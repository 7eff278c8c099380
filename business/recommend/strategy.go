package recommend

import (
	"context"
	"sort"

	"freshCart/domain"
)

// StrategyInput carries the per-request context a strategy runs with.
// Exclude holds every product id the strategy must not emit: the anchor
// product, caller-supplied exclusions, and (in mixed mode) products
// already picked by earlier quotas.
type StrategyInput struct {
	UserID    uint
	ProductID uint64
	Limit     int
	Exclude   map[uint64]struct{}
}

func (in StrategyInput) excluded(id uint64) bool {
	_, ok := in.Exclude[id]
	return ok
}

func (in StrategyInput) excludeSlice() []uint64 {
	out := make([]uint64, 0, len(in.Exclude))
	for id := range in.Exclude {
		out = append(out, id)
	}
	return out
}

// withExtra returns a copy of the input whose exclusion set also covers
// the given ids. The original set is not mutated.
func (in StrategyInput) withExtra(ids ...uint64) StrategyInput {
	merged := make(map[uint64]struct{}, len(in.Exclude)+len(ids))
	for id := range in.Exclude {
		merged[id] = struct{}{}
	}
	for _, id := range ids {
		merged[id] = struct{}{}
	}
	in.Exclude = merged
	return in
}

// Strategy is one self-contained ranking algorithm. Run returns
// candidates sorted best-first, already respecting in.Exclude and
// in.Limit. Missing-signal conditions produce an empty slice, never an
// error; errors mean the backing store failed.
type Strategy interface {
	Kind() domain.StrategyKind
	Run(ctx context.Context, in StrategyInput) ([]domain.RecommendationCandidate, error)
}

// sortCandidates orders by raw score descending with product id as a
// deterministic tie-break.
func sortCandidates(cands []domain.RecommendationCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].RawScore == cands[j].RawScore {
			return cands[i].ProductID < cands[j].ProductID
		}
		return cands[i].RawScore > cands[j].RawScore
	})
}

func truncate(cands []domain.RecommendationCandidate, limit int) []domain.RecommendationCandidate {
	if limit > 0 && len(cands) > limit {
		return cands[:limit]
	}
	return cands
}
