package recommend

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"freshCart/domain"
)

// fakeStore is an in-memory stand-in for every repository the engine
// reads and writes, so tests run without postgres or redis.
type fakeStore struct {
	mu sync.Mutex

	products map[uint64]domain.Product
	events   []domain.InteractionEvent
	profiles map[uint]domain.PreferenceProfile
	sims     map[uint64][]domain.ProductSimilarity
	carts    map[uint][]domain.CartItem
	recos    []domain.StoredRecommendation

	failEvents   bool
	profileReads int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[uint64]domain.Product),
		profiles: make(map[uint]domain.PreferenceProfile),
		sims:     make(map[uint64][]domain.ProductSimilarity),
		carts:    make(map[uint][]domain.CartItem),
	}
}

func (f *fakeStore) addProduct(p domain.Product) {
	f.products[p.ID] = p
}

func (f *fakeStore) addEvent(userID uint, productID uint64, action string, at time.Time) {
	f.events = append(f.events, domain.InteractionEvent{
		UserID:     userID,
		ProductID:  productID,
		ActionKind: action,
		CreatedAt:  at,
	})
}

func excludedID(excludeIDs []uint64, id uint64) bool {
	for _, ex := range excludeIDs {
		if ex == id {
			return true
		}
	}
	return false
}

// ---- ProductRepository ----

func (f *fakeStore) FindByID(_ context.Context, id uint64) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, errors.New("product not found")
	}
	return p, nil
}

func (f *fakeStore) FindByIDs(_ context.Context, ids []uint64) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByCategory(_ context.Context, categoryID uint64, excludeIDs []uint64, limit int) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Product
	for _, p := range f.products {
		if p.CategoryID != categoryID || !p.InStock() || excludedID(excludeIDs, p.ID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating == out[j].Rating {
			return out[i].ReviewCount > out[j].ReviewCount
		}
		return out[i].Rating > out[j].Rating
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) FindByPreferences(_ context.Context, categoryIDs []uint64, excludeIDs []uint64, limit int) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	wanted := make(map[uint64]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		wanted[id] = struct{}{}
	}

	var out []domain.Product
	for _, p := range f.products {
		if _, ok := wanted[p.CategoryID]; !ok {
			continue
		}
		if !p.InStock() || excludedID(excludeIDs, p.ID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) FindNewest(_ context.Context, excludeIDs []uint64, limit int) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Product
	for _, p := range f.products {
		if excludedID(excludeIDs, p.ID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) FindDiscounted(_ context.Context, excludeIDs []uint64, limit int) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Product
	for _, p := range f.products {
		if !p.OnSale() || excludedID(excludeIDs, p.ID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DiscountFraction() > out[j].DiscountFraction() })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- EventRepository ----

func (f *fakeStore) Save(_ context.Context, event *domain.InteractionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failEvents {
		return errors.New("store unavailable")
	}
	event.ID = uint(len(f.events) + 1)
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeStore) RecentByUser(_ context.Context, userID uint, limit int) ([]domain.InteractionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failEvents {
		return nil, errors.New("store unavailable")
	}

	var out []domain.InteractionEvent
	for _, ev := range f.events {
		if ev.UserID == userID {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ProductIDsByUser(_ context.Context, userID uint) ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failEvents {
		return nil, errors.New("store unavailable")
	}

	seen := make(map[uint64]struct{})
	var out []uint64
	for _, ev := range f.events {
		if ev.UserID != userID {
			continue
		}
		if _, ok := seen[ev.ProductID]; ok {
			continue
		}
		seen[ev.ProductID] = struct{}{}
		out = append(out, ev.ProductID)
	}
	return out, nil
}

func (f *fakeStore) DistinctUsersByProduct(_ context.Context, productID uint64, actionKind string) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failEvents {
		return nil, errors.New("store unavailable")
	}

	seen := make(map[uint]struct{})
	var out []uint
	for _, ev := range f.events {
		if ev.ProductID != productID || ev.ActionKind != actionKind {
			continue
		}
		if _, ok := seen[ev.UserID]; ok {
			continue
		}
		seen[ev.UserID] = struct{}{}
		out = append(out, ev.UserID)
	}
	return out, nil
}

func (f *fakeStore) CountByProductForUsers(_ context.Context, userIDs []uint, actionKind string, excludeIDs []uint64) (map[uint64]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failEvents {
		return nil, errors.New("store unavailable")
	}

	cohort := make(map[uint]struct{}, len(userIDs))
	for _, id := range userIDs {
		cohort[id] = struct{}{}
	}

	seen := make(map[uint64]map[uint]struct{})
	for _, ev := range f.events {
		if ev.ActionKind != actionKind || excludedID(excludeIDs, ev.ProductID) {
			continue
		}
		if _, ok := cohort[ev.UserID]; !ok {
			continue
		}
		if seen[ev.ProductID] == nil {
			seen[ev.ProductID] = make(map[uint]struct{})
		}
		seen[ev.ProductID][ev.UserID] = struct{}{}
	}

	out := make(map[uint64]int64, len(seen))
	for pid, users := range seen {
		out[pid] = int64(len(users))
	}
	return out, nil
}

func (f *fakeStore) CountByProductSince(_ context.Context, since time.Time, excludeIDs []uint64) (map[uint64]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failEvents {
		return nil, errors.New("store unavailable")
	}

	out := make(map[uint64]int64)
	for _, ev := range f.events {
		if ev.CreatedAt.Before(since) || excludedID(excludeIDs, ev.ProductID) {
			continue
		}
		out[ev.ProductID]++
	}
	return out, nil
}

// ---- ProfileRepository ----

func (f *fakeStore) Get(_ context.Context, userID uint) (*domain.PreferenceProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.profileReads++
	p, ok := f.profiles[userID]
	if !ok {
		return nil, nil
	}
	out := p
	return &out, nil
}

func (f *fakeStore) Upsert(_ context.Context, profile *domain.PreferenceProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.profiles[profile.UserID] = *profile
	return nil
}

// ---- SimilarityRepository ----

func (f *fakeStore) FindByProduct(_ context.Context, productID uint64, excludeIDs []uint64, limit int) ([]domain.ProductSimilarity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.ProductSimilarity
	for _, row := range f.sims[productID] {
		if excludedID(excludeIDs, row.SimilarProductID) {
			continue
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- CartRepository ----

func (f *fakeStore) ItemsByUser(_ context.Context, userID uint) ([]domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]domain.CartItem(nil), f.carts[userID]...), nil
}

// ---- RecommendationRepository ----

func (f *fakeStore) ActiveProductIDs(_ context.Context, userID uint, strategy domain.StrategyKind, now time.Time) ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []uint64
	for _, row := range f.recos {
		if row.UserID == userID && row.Strategy == strategy && row.ExpiresAt.After(now) {
			out = append(out, row.ProductID)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveBatch(_ context.Context, recs []domain.StoredRecommendation) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var inserted int64
	for _, rec := range recs {
		dup := false
		for _, existing := range f.recos {
			if existing.UserID == rec.UserID &&
				existing.ProductID == rec.ProductID &&
				existing.Strategy == rec.Strategy &&
				existing.BatchID == rec.BatchID {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		rec.ID = uint(len(f.recos) + 1)
		f.recos = append(f.recos, rec)
		inserted++
	}
	return inserted, nil
}

func (f *fakeStore) MarkShown(_ context.Context, userID uint, productID uint64, strategy domain.StrategyKind, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var affected int64
	for i := range f.recos {
		row := &f.recos[i]
		if row.UserID != userID || row.ProductID != productID || row.IsShown || !row.ExpiresAt.After(now) {
			continue
		}
		if strategy != "" && row.Strategy != strategy {
			continue
		}
		at := now
		row.IsShown = true
		row.ShownAt = &at
		affected++
	}
	return affected, nil
}

func (f *fakeStore) MarkClicked(_ context.Context, userID uint, productID uint64, strategy domain.StrategyKind, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var affected int64
	for i := range f.recos {
		row := &f.recos[i]
		if row.UserID != userID || row.ProductID != productID || row.IsClicked || !row.ExpiresAt.After(now) {
			continue
		}
		if strategy != "" && row.Strategy != strategy {
			continue
		}
		at := now
		row.IsClicked = true
		row.ClickedAt = &at
		affected++
	}
	return affected, nil
}

func (f *fakeStore) MarkPurchased(_ context.Context, userID uint, productID uint64, strategy domain.StrategyKind, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var affected int64
	for i := range f.recos {
		row := &f.recos[i]
		if row.UserID != userID || row.ProductID != productID || !row.IsShown || row.IsPurchased || !row.ExpiresAt.After(now) {
			continue
		}
		if strategy != "" && row.Strategy != strategy {
			continue
		}
		at := now
		row.IsPurchased = true
		row.PurchasedAt = &at
		affected++
	}
	return affected, nil
}

// fakeCache is an in-memory ProfileCache with call counters.
type fakeCache struct {
	mu            sync.Mutex
	entries       map[uint]domain.PreferenceProfile
	hits          int
	sets          int
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[uint]domain.PreferenceProfile)}
}

func (c *fakeCache) Get(_ context.Context, userID uint) (*domain.PreferenceProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.entries[userID]
	if !ok {
		return nil, nil
	}
	c.hits++
	out := p
	return &out, nil
}

func (c *fakeCache) Set(_ context.Context, profile *domain.PreferenceProfile, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sets++
	c.entries[profile.UserID] = *profile
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.invalidations++
	delete(c.entries, userID)
	return nil
}

// newTestService wires a Service and its collaborators over one fake
// store.
func newTestService(store *fakeStore) (*Service, *ProfileBuilder) {
	builder := NewProfileBuilder(store, store, store, nil, 0, 0)
	return NewService(store, store, store, store, builder), builder
}
