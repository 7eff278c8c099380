package recommend

import (
	"context"
	"fmt"

	"freshCart/domain"
)

// covisitStrategy implements both AlsoViewed and AlsoBought: find the
// users that performed the action on the anchor product, then rank the
// other products those users touched by co-occurrence frequency.
//
// The cold-start chain differs per kind. AlsoBought first delegates to
// the AlsoViewed instance when nobody has bought the anchor yet, so a
// product with viewers but no buyers still gets co-view ranking before
// the category fallback kicks in.
type covisitStrategy struct {
	kind     domain.StrategyKind
	action   string
	events   EventRepository
	next     *covisitStrategy
	fallback *categoryFallback
}

func newAlsoViewed(events EventRepository, fallback *categoryFallback) *covisitStrategy {
	return &covisitStrategy{
		kind:     domain.StrategyAlsoViewed,
		action:   domain.ActionView,
		events:   events,
		fallback: fallback,
	}
}

func newAlsoBought(events EventRepository, viewed *covisitStrategy, fallback *categoryFallback) *covisitStrategy {
	return &covisitStrategy{
		kind:     domain.StrategyAlsoBought,
		action:   domain.ActionPurchase,
		events:   events,
		next:     viewed,
		fallback: fallback,
	}
}

func (s *covisitStrategy) Kind() domain.StrategyKind {
	return s.kind
}

func (s *covisitStrategy) Run(ctx context.Context, in StrategyInput) ([]domain.RecommendationCandidate, error) {
	return s.runAs(ctx, in, s.kind)
}

// runAs keeps the originating strategy kind on the candidates when a
// delegating strategy reuses this one's ranking.
func (s *covisitStrategy) runAs(ctx context.Context, in StrategyInput, kind domain.StrategyKind) ([]domain.RecommendationCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if in.ProductID == 0 {
		return nil, nil
	}

	cohort, err := s.events.DistinctUsersByProduct(ctx, in.ProductID, s.action)
	if err != nil {
		return nil, fmt.Errorf("load %s cohort: %w", s.action, err)
	}
	if len(cohort) == 0 {
		return s.degrade(ctx, in, kind)
	}

	counts, err := s.events.CountByProductForUsers(ctx, cohort, s.action, in.withExtra(in.ProductID).excludeSlice())
	if err != nil {
		return nil, fmt.Errorf("count co-occurrences: %w", err)
	}
	if len(counts) == 0 {
		return s.degrade(ctx, in, kind)
	}

	cands := make([]domain.RecommendationCandidate, 0, len(counts))
	for pid, count := range counts {
		cands = append(cands, domain.RecommendationCandidate{
			ProductID: pid,
			RawScore:  float64(count) / float64(len(cohort)),
			Reason:    s.reason(count, len(cohort)),
			Strategy:  kind,
		})
	}

	sortCandidates(cands)

	return truncate(cands, in.Limit), nil
}

func (s *covisitStrategy) degrade(ctx context.Context, in StrategyInput, kind domain.StrategyKind) ([]domain.RecommendationCandidate, error) {
	if s.next != nil {
		StrategyFallbacksTotal.WithLabelValues(string(kind), "co_view").Inc()
		return s.next.runAs(ctx, in, kind)
	}
	return s.fallback.run(ctx, in, kind)
}

func (s *covisitStrategy) reason(count int64, cohortSize int) string {
	if s.action == domain.ActionPurchase {
		return fmt.Sprintf("Bought by %d of %d shoppers who bought this product", count, cohortSize)
	}
	return fmt.Sprintf("Viewed by %d of %d shoppers who viewed this product", count, cohortSize)
}
