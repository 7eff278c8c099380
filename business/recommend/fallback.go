package recommend

import (
	"context"
	"fmt"

	"freshCart/domain"
)

// Score given to same-category fallback candidates. Ordering comes from
// the catalog query (rating, then review count).
const categoryFallbackScore = 0.7

// categoryFallback is the cold-start chain shared by the co-visitation
// and similarity strategies: same-category-by-rating first, trending
// when the category is unknown or empty.
type categoryFallback struct {
	products ProductRepository
	trending *trendingStrategy
}

func (f *categoryFallback) run(
	ctx context.Context,
	in StrategyInput,
	kind domain.StrategyKind,
) ([]domain.RecommendationCandidate, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	product, err := f.products.FindByID(ctx, in.ProductID)
	if err != nil || product.CategoryID == 0 {
		StrategyFallbacksTotal.WithLabelValues(string(kind), "trending").Inc()
		return f.trending.runAs(ctx, in.withExtra(in.ProductID), kind)
	}

	siblings, err := f.products.FindByCategory(ctx, product.CategoryID, in.withExtra(in.ProductID).excludeSlice(), in.Limit)
	if err != nil {
		return nil, fmt.Errorf("find category siblings: %w", err)
	}
	if len(siblings) == 0 {
		StrategyFallbacksTotal.WithLabelValues(string(kind), "trending").Inc()
		return f.trending.runAs(ctx, in.withExtra(in.ProductID), kind)
	}

	StrategyFallbacksTotal.WithLabelValues(string(kind), "same_category").Inc()

	cands := make([]domain.RecommendationCandidate, 0, len(siblings))
	for _, p := range siblings {
		cands = append(cands, domain.RecommendationCandidate{
			ProductID: p.ID,
			RawScore:  categoryFallbackScore,
			Reason:    "Popular in the same category",
			Strategy:  kind,
		})
	}

	return truncate(cands, in.Limit), nil
}
