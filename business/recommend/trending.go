package recommend

import (
	"context"
	"fmt"
	"time"

	"freshCart/domain"
)

const (
	trendingWindow = 7 * 24 * time.Hour

	// Raw trending score is count/100 and may exceed 1; the mixer
	// clamps normalized scores on output.
	trendingScoreDivisor = 100.0
)

type trendingStrategy struct {
	events EventRepository
	now    func() time.Time
}

func (s *trendingStrategy) Kind() domain.StrategyKind {
	return domain.StrategyTrending
}

func (s *trendingStrategy) Run(ctx context.Context, in StrategyInput) ([]domain.RecommendationCandidate, error) {
	return s.runAs(ctx, in, domain.StrategyTrending)
}

// runAs lets fallback chains reuse trending ranking while keeping the
// originating strategy kind on the candidates.
func (s *trendingStrategy) runAs(ctx context.Context, in StrategyInput, kind domain.StrategyKind) ([]domain.RecommendationCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	since := s.now().Add(-trendingWindow)
	counts, err := s.events.CountByProductSince(ctx, since, in.excludeSlice())
	if err != nil {
		return nil, fmt.Errorf("count trailing events: %w", err)
	}

	cands := make([]domain.RecommendationCandidate, 0, len(counts))
	for pid, count := range counts {
		cands = append(cands, domain.RecommendationCandidate{
			ProductID: pid,
			RawScore:  float64(count) / trendingScoreDivisor,
			Reason:    "Trending this week",
			Strategy:  kind,
		})
	}

	sortCandidates(cands)

	return truncate(cands, in.Limit), nil
}
