package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"freshCart/domain"
	"freshCart/pkg/logger"

	"gorm.io/datatypes"
)

const maxPreferredCategories = 5

// ProfileBuilder derives preference profiles from interaction history.
// Derivation is a pure function of the most recent event window, so a
// rebuild can overwrite a concurrent one without coordination.
type ProfileBuilder struct {
	events   EventRepository
	products ProductRepository
	profiles ProfileRepository
	cache    ProfileCache
	cacheTTL time.Duration
	window   int
	now      func() time.Time
}

func NewProfileBuilder(
	events EventRepository,
	products ProductRepository,
	profiles ProfileRepository,
	cache ProfileCache,
	cacheTTL time.Duration,
	window int,
) *ProfileBuilder {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	if window <= 0 {
		window = 50
	}
	return &ProfileBuilder{
		events:   events,
		products: products,
		profiles: profiles,
		cache:    cache,
		cacheTTL: cacheTTL,
		window:   window,
		now:      time.Now,
	}
}

// GetOrBuild returns the user's profile, building and storing one from
// event history when none exists. A profile with no preferred
// categories means "no personalization signal", not an error.
func (b *ProfileBuilder) GetOrBuild(ctx context.Context, userID uint) (*domain.PreferenceProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if b.cache != nil {
		cached, err := b.cache.Get(ctx, userID)
		if err != nil {
			logger.Warn("profile cache read failed", "user_id", userID, err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	stored, err := b.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load preference profile: %w", err)
	}
	if stored != nil {
		b.cacheSet(ctx, stored)
		return stored, nil
	}

	return b.Rebuild(ctx, userID)
}

// Rebuild recomputes the profile from the most recent event window and
// overwrites whatever is stored.
func (b *ProfileBuilder) Rebuild(ctx context.Context, userID uint) (*domain.PreferenceProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	events, err := b.events.RecentByUser(ctx, userID, b.window)
	if err != nil {
		return nil, fmt.Errorf("load event window: %w", err)
	}

	profile := b.derive(ctx, userID, events)

	if err := b.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("store preference profile: %w", err)
	}
	b.cacheSet(ctx, profile)

	logger.Debug("preference profile rebuilt",
		"user_id", userID,
		"events", len(events),
		"categories", len(profile.PreferredCategories),
		"style", profile.ShoppingStyle,
	)

	return profile, nil
}

func (b *ProfileBuilder) derive(ctx context.Context, userID uint, events []domain.InteractionEvent) *domain.PreferenceProfile {
	profile := &domain.PreferenceProfile{
		UserID:        userID,
		ShoppingStyle: domain.StyleUnknown,
		UpdatedAt:     b.now(),
	}
	if len(events) == 0 {
		return profile
	}

	seen := make(map[uint64]struct{}, len(events))
	pids := make([]uint64, 0, len(events))
	for _, ev := range events {
		if _, ok := seen[ev.ProductID]; ok {
			continue
		}
		seen[ev.ProductID] = struct{}{}
		pids = append(pids, ev.ProductID)
	}

	products, err := b.products.FindByIDs(ctx, pids)
	if err != nil {
		// No catalog join means no category/price signal; keep the
		// empty profile rather than failing personalization outright.
		logger.Warn("profile rebuild could not join catalog", "user_id", userID, err)
		return profile
	}

	byID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	categoryCounts := make(map[uint64]int)
	var priceMin, priceMax float64
	var priced, onSale int
	for _, ev := range events {
		p, ok := byID[ev.ProductID]
		if !ok {
			continue
		}
		if p.CategoryID != 0 {
			categoryCounts[p.CategoryID]++
		}
		price := p.EffectivePrice()
		if price > 0 {
			if priced == 0 || price < priceMin {
				priceMin = price
			}
			if price > priceMax {
				priceMax = price
			}
			priced++
		}
		if p.OnSale() {
			onSale++
		}
	}

	profile.PreferredCategories = datatypes.JSONSlice[uint64](topCategories(categoryCounts))
	if priced > 0 {
		profile.PriceMin = &priceMin
		profile.PriceMax = &priceMax
	}
	profile.ShoppingStyle = shoppingStyle(len(events), len(categoryCounts), onSale)

	return profile
}

// topCategories returns up to 5 category ids, most frequent first, with
// id ascending as a deterministic tie-break.
func topCategories(counts map[uint64]int) []uint64 {
	ids := make([]uint64, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] == counts[ids[j]] {
			return ids[i] < ids[j]
		}
		return counts[ids[i]] > counts[ids[j]]
	})
	if len(ids) > maxPreferredCategories {
		ids = ids[:maxPreferredCategories]
	}
	return ids
}

func shoppingStyle(eventCount, distinctCategories, onSale int) string {
	if eventCount == 0 {
		return domain.StyleUnknown
	}
	if onSale*2 >= eventCount {
		return domain.StyleBargainHunter
	}
	if distinctCategories <= 2 {
		return domain.StyleFocused
	}
	return domain.StyleExplorer
}

// cacheSet is best-effort; a dead cache never fails a request.
func (b *ProfileBuilder) cacheSet(ctx context.Context, profile *domain.PreferenceProfile) {
	if b.cache == nil {
		return
	}
	if err := b.cache.Set(ctx, profile, b.cacheTTL); err != nil {
		logger.Warn("profile cache write failed", "user_id", profile.UserID, err)
	}
}
