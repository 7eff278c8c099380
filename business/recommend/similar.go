package recommend

import (
	"context"
	"fmt"

	"freshCart/domain"
)

// similarStrategy prefers the precomputed similarity table and falls
// back through the category chain when a product has no rows yet.
type similarStrategy struct {
	similarities SimilarityRepository
	fallback     *categoryFallback
}

func (s *similarStrategy) Kind() domain.StrategyKind {
	return domain.StrategySimilarProducts
}

func (s *similarStrategy) Run(ctx context.Context, in StrategyInput) ([]domain.RecommendationCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if in.ProductID == 0 {
		return nil, nil
	}

	rows, err := s.similarities.FindByProduct(ctx, in.ProductID, in.withExtra(in.ProductID).excludeSlice(), in.Limit)
	if err != nil {
		return nil, fmt.Errorf("load similarity rows: %w", err)
	}
	if len(rows) == 0 {
		return s.fallback.run(ctx, in, domain.StrategySimilarProducts)
	}

	// Keep the index order; rows arrive score-descending.
	cands := make([]domain.RecommendationCandidate, 0, len(rows))
	for _, row := range rows {
		cands = append(cands, domain.RecommendationCandidate{
			ProductID: row.SimilarProductID,
			RawScore:  row.Score,
			Reason:    similarityReason(row.Kind),
			Strategy:  domain.StrategySimilarProducts,
		})
	}

	return truncate(cands, in.Limit), nil
}

func similarityReason(kind string) string {
	switch kind {
	case domain.SimilarityCoView:
		return "Often viewed together"
	case domain.SimilarityCoPurchase:
		return "Often bought together"
	default:
		return "From a related category"
	}
}
