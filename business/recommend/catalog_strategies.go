package recommend

import (
	"context"
	"fmt"

	"freshCart/domain"
)

// newArrivalsStrategy ranks by catalog creation time; every candidate
// scores 1.0 and ordering carries the information.
type newArrivalsStrategy struct {
	products ProductRepository
}

func (s *newArrivalsStrategy) Kind() domain.StrategyKind {
	return domain.StrategyNewArrivals
}

func (s *newArrivalsStrategy) Run(ctx context.Context, in StrategyInput) ([]domain.RecommendationCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	products, err := s.products.FindNewest(ctx, in.excludeSlice(), in.Limit)
	if err != nil {
		return nil, fmt.Errorf("load newest products: %w", err)
	}

	cands := make([]domain.RecommendationCandidate, 0, len(products))
	for _, p := range products {
		cands = append(cands, domain.RecommendationCandidate{
			ProductID: p.ID,
			RawScore:  1.0,
			Reason:    "New arrival",
			Strategy:  domain.StrategyNewArrivals,
		})
	}

	return truncate(cands, in.Limit), nil
}

// priceDropStrategy ranks discounted products by discount fraction.
type priceDropStrategy struct {
	products ProductRepository
}

func (s *priceDropStrategy) Kind() domain.StrategyKind {
	return domain.StrategyPriceDrop
}

func (s *priceDropStrategy) Run(ctx context.Context, in StrategyInput) ([]domain.RecommendationCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	products, err := s.products.FindDiscounted(ctx, in.excludeSlice(), in.Limit)
	if err != nil {
		return nil, fmt.Errorf("load discounted products: %w", err)
	}

	cands := make([]domain.RecommendationCandidate, 0, len(products))
	for _, p := range products {
		frac := p.DiscountFraction()
		cands = append(cands, domain.RecommendationCandidate{
			ProductID: p.ID,
			RawScore:  frac,
			Reason:    fmt.Sprintf("Now %.0f%% off", frac*100),
			Strategy:  domain.StrategyPriceDrop,
		})
	}

	sortCandidates(cands)

	return truncate(cands, in.Limit), nil
}

// cartAbandonmentStrategy resurfaces the user's current cart in
// insertion order.
type cartAbandonmentStrategy struct {
	carts CartRepository
}

func (s *cartAbandonmentStrategy) Kind() domain.StrategyKind {
	return domain.StrategyCartAbandonment
}

func (s *cartAbandonmentStrategy) Run(ctx context.Context, in StrategyInput) ([]domain.RecommendationCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if in.UserID == 0 {
		return nil, nil
	}

	items, err := s.carts.ItemsByUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}

	cands := make([]domain.RecommendationCandidate, 0, len(items))
	for _, item := range items {
		if in.excluded(item.ProductID) {
			continue
		}
		cands = append(cands, domain.RecommendationCandidate{
			ProductID: item.ProductID,
			RawScore:  1.0,
			Reason:    "Still in your cart",
			Strategy:  domain.StrategyCartAbandonment,
		})
	}

	return truncate(cands, in.Limit), nil
}
