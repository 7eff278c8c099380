package recommend

import (
	"context"
	"fmt"
	"time"

	"freshCart/domain"
	"freshCart/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// Options mirrors the inbound boundary contract. Strategy left empty
// selects mixed mode.
type Options struct {
	UserID            uint
	ProductID         uint64
	Strategy          domain.StrategyKind
	Limit             int
	IncludeOutOfStock bool
	ExcludeProductIDs []uint64
	Context           map[string]any
}

// Service is the mixer/fallback orchestrator in front of the strategy
// set. It is stateless between requests; all shared state lives in the
// store.
type Service struct {
	products   ProductRepository
	strategies map[domain.StrategyKind]Strategy
}

func NewService(
	products ProductRepository,
	events EventRepository,
	similarities SimilarityRepository,
	carts CartRepository,
	profiles *ProfileBuilder,
) *Service {
	trending := &trendingStrategy{events: events, now: time.Now}
	fallback := &categoryFallback{products: products, trending: trending}
	alsoViewed := newAlsoViewed(events, fallback)

	strategies := []Strategy{
		&personalizedStrategy{profiles: profiles, products: products, events: events},
		alsoViewed,
		newAlsoBought(events, alsoViewed, fallback),
		&similarStrategy{similarities: similarities, fallback: fallback},
		trending,
		&newArrivalsStrategy{products: products},
		&priceDropStrategy{products: products},
		&cartAbandonmentStrategy{carts: carts},
	}

	byKind := make(map[domain.StrategyKind]Strategy, len(strategies))
	for _, s := range strategies {
		byKind[s.Kind()] = s
	}

	return &Service{
		products:   products,
		strategies: byKind,
	}
}

// GetRecommendations runs one explicit strategy or the mixed blend.
//
// Mixed mode splits the limit into three quotas (trending,
// personalized-or-similar, new arrivals) and accumulates exclusions so
// later quotas never duplicate earlier picks. A quota shortfall is not
// topped up from the other strategies, so mixed responses can be
// shorter than the limit; that mirrors the observed storefront
// behavior and is intentional.
func (s *Service) GetRecommendations(ctx context.Context, opts Options) ([]domain.RecommendationCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	timer := prometheus.NewTimer(RecommendLatency)
	defer timer.ObserveDuration()

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	exclude := make(map[uint64]struct{}, len(opts.ExcludeProductIDs)+1)
	for _, id := range opts.ExcludeProductIDs {
		exclude[id] = struct{}{}
	}
	if opts.ProductID != 0 {
		exclude[opts.ProductID] = struct{}{}
	}

	var cands []domain.RecommendationCandidate
	servedAs := string(domain.StrategyMixed)

	if opts.Strategy != "" {
		if !domain.ValidStrategy(opts.Strategy) {
			logger.Debug("unknown strategy requested", "strategy", string(opts.Strategy))
			return []domain.RecommendationCandidate{}, nil
		}
		servedAs = string(opts.Strategy)
		cands = s.runStrategy(ctx, opts.Strategy, StrategyInput{
			UserID:    opts.UserID,
			ProductID: opts.ProductID,
			Limit:     limit,
			Exclude:   exclude,
		})
	} else {
		cands = s.runMixed(ctx, opts, exclude, limit)
	}

	cands = s.applyStockFilter(ctx, cands, opts.IncludeOutOfStock)
	normalize(cands)
	cands = truncate(cands, limit)
	if cands == nil {
		cands = []domain.RecommendationCandidate{}
	}

	StrategyServedTotal.WithLabelValues(servedAs).Add(float64(len(cands)))

	return cands, nil
}

// runStrategy dispatches to one strategy, enforcing its context
// requirement and degrading store failures to an empty result so the
// surrounding request keeps going.
func (s *Service) runStrategy(ctx context.Context, kind domain.StrategyKind, in StrategyInput) []domain.RecommendationCandidate {
	if requiresUser(kind) && in.UserID == 0 {
		return nil
	}
	if requiresProduct(kind) && in.ProductID == 0 {
		return nil
	}

	strategy, ok := s.strategies[kind]
	if !ok {
		return nil
	}

	cands, err := strategy.Run(ctx, in)
	if err != nil {
		logger.Warn("strategy degraded to empty", "strategy", string(kind), err)
		StrategyErrorsTotal.WithLabelValues(string(kind)).Inc()
		return nil
	}

	return cands
}

func (s *Service) runMixed(
	ctx context.Context,
	opts Options,
	exclude map[uint64]struct{},
	limit int,
) []domain.RecommendationCandidate {

	// Middle quota depends on the available context.
	var middle domain.StrategyKind
	switch {
	case opts.UserID != 0:
		middle = domain.StrategyPersonalized
	case opts.ProductID != 0:
		middle = domain.StrategySimilarProducts
	}

	slots := []domain.StrategyKind{domain.StrategyTrending, middle, domain.StrategyNewArrivals}
	quotas := splitQuota(limit, len(slots))

	out := make([]domain.RecommendationCandidate, 0, limit)
	for i, kind := range slots {
		if kind == "" || quotas[i] == 0 {
			continue
		}

		picks := s.runStrategy(ctx, kind, StrategyInput{
			UserID:    opts.UserID,
			ProductID: opts.ProductID,
			Limit:     quotas[i],
			Exclude:   exclude,
		})
		picks = truncate(picks, quotas[i])

		for _, cand := range picks {
			exclude[cand.ProductID] = struct{}{}
		}
		out = append(out, picks...)
	}

	return out
}

// splitQuota divides limit into roughly equal slices, earlier slices
// absorbing the remainder.
func splitQuota(limit, parts int) []int {
	quotas := make([]int, parts)
	for i := range quotas {
		quotas[i] = limit / parts
	}
	for i := 0; i < limit%parts; i++ {
		quotas[i]++
	}
	return quotas
}

// applyStockFilter drops out-of-stock products after scoring. Stock is
// a presentation-time concern; it never influences ranking. If the
// catalog read fails the candidates pass through unfiltered rather
// than emptying the response.
func (s *Service) applyStockFilter(ctx context.Context, cands []domain.RecommendationCandidate, includeOutOfStock bool) []domain.RecommendationCandidate {
	if includeOutOfStock || len(cands) == 0 {
		return cands
	}

	ids := make([]uint64, 0, len(cands))
	for _, cand := range cands {
		ids = append(ids, cand.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		logger.Warn("stock filter skipped, catalog unavailable", err)
		return cands
	}

	inStock := make(map[uint64]bool, len(products))
	for _, p := range products {
		inStock[p.ID] = p.InStock()
	}

	filtered := cands[:0]
	for _, cand := range cands {
		if inStock[cand.ProductID] {
			filtered = append(filtered, cand)
		}
	}

	return filtered
}

// normalize clamps raw scores into [0,1]. Raw co-occurrence and
// catalog scores already land there; only trending can overflow.
func normalize(cands []domain.RecommendationCandidate) {
	for i := range cands {
		n := cands[i].RawScore
		if n > 1 {
			n = 1
		}
		if n < 0 {
			n = 0
		}
		cands[i].NormalizedScore = n
	}
}

func requiresUser(kind domain.StrategyKind) bool {
	return kind == domain.StrategyPersonalized || kind == domain.StrategyCartAbandonment
}

func requiresProduct(kind domain.StrategyKind) bool {
	switch kind {
	case domain.StrategyAlsoViewed, domain.StrategyAlsoBought, domain.StrategySimilarProducts:
		return true
	}
	return false
}
