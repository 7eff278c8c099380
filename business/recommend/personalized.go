package recommend

import (
	"context"
	"fmt"

	"freshCart/domain"

	"golang.org/x/sync/errgroup"
)

// Composite score weights for the personalized strategy.
const (
	personalizedBase        = 0.5
	personalizedCategoryFit = 0.3
	personalizedPriceFit    = 0.2
	personalizedRatingMax   = 0.3
	personalizedReviewsMax  = 0.2
)

type personalizedStrategy struct {
	profiles *ProfileBuilder
	products ProductRepository
	events   EventRepository
}

func (s *personalizedStrategy) Kind() domain.StrategyKind {
	return domain.StrategyPersonalized
}

func (s *personalizedStrategy) Run(ctx context.Context, in StrategyInput) ([]domain.RecommendationCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if in.UserID == 0 {
		return nil, nil
	}

	// Profile and interaction history are independent reads.
	var (
		profile    *domain.PreferenceProfile
		interacted []uint64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.profiles.GetOrBuild(gctx, in.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		interacted, err = s.events.ProductIDsByUser(gctx, in.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load personalization inputs: %w", err)
	}

	// Empty profile means "no signal", not an error; the mixer decides
	// what to do with an empty quota.
	if profile == nil || !profile.HasSignal() {
		return nil, nil
	}

	scoped := in.withExtra(interacted...)

	products, err := s.products.FindByPreferences(ctx, profile.PreferredCategories, scoped.excludeSlice(), fetchMultiple(in.Limit))
	if err != nil {
		return nil, fmt.Errorf("load preferred products: %w", err)
	}

	cands := make([]domain.RecommendationCandidate, 0, len(products))
	for _, p := range products {
		cands = append(cands, domain.RecommendationCandidate{
			ProductID: p.ID,
			RawScore:  personalizedScore(profile, p),
			Reason:    "Matches your favorite categories",
			Strategy:  domain.StrategyPersonalized,
		})
	}

	sortCandidates(cands)

	return truncate(cands, in.Limit), nil
}

// personalizedScore is the composite formula: base, category fit, price
// fit, rating and review volume, clamped to 1.0. Category fit always
// applies because candidates are pre-filtered to preferred categories.
func personalizedScore(profile *domain.PreferenceProfile, p domain.Product) float64 {
	score := personalizedBase + personalizedCategoryFit

	score += priceFit(profile, p)
	score += p.Rating / 5.0 * personalizedRatingMax

	reviews := float64(p.ReviewCount) / 100.0
	if reviews > 1 {
		reviews = 1
	}
	score += reviews * personalizedReviewsMax

	if score > 1 {
		score = 1
	}
	return score
}

// priceFit awards the full price bonus inside the preferred band and
// half of it when the price is within 20% of the band edges.
func priceFit(profile *domain.PreferenceProfile, p domain.Product) float64 {
	if !profile.HasPriceRange() {
		return 0
	}

	price := p.EffectivePrice()
	if price >= *profile.PriceMin && price <= *profile.PriceMax {
		return personalizedPriceFit
	}
	if price >= *profile.PriceMin*0.8 && price <= *profile.PriceMax*1.2 {
		return personalizedPriceFit / 2
	}
	return 0
}

// fetchMultiple over-fetches so post-scoring truncation still fills the
// requested size.
func fetchMultiple(limit int) int {
	fetch := limit * 3
	if fetch < limit {
		fetch = limit
	}
	return fetch
}
