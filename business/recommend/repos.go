package recommend

import (
	"context"
	"time"

	"freshCart/domain"
)

// ---- Repository interfaces ----

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
	FindByCategory(ctx context.Context, categoryID uint64, excludeIDs []uint64, limit int) ([]domain.Product, error)
	FindByPreferences(ctx context.Context, categoryIDs []uint64, excludeIDs []uint64, limit int) ([]domain.Product, error)
	FindNewest(ctx context.Context, excludeIDs []uint64, limit int) ([]domain.Product, error)
	FindDiscounted(ctx context.Context, excludeIDs []uint64, limit int) ([]domain.Product, error)
}

type EventRepository interface {
	Save(ctx context.Context, event *domain.InteractionEvent) error
	RecentByUser(ctx context.Context, userID uint, limit int) ([]domain.InteractionEvent, error)
	ProductIDsByUser(ctx context.Context, userID uint) ([]uint64, error)
	DistinctUsersByProduct(ctx context.Context, productID uint64, actionKind string) ([]uint, error)
	CountByProductForUsers(ctx context.Context, userIDs []uint, actionKind string, excludeIDs []uint64) (map[uint64]int64, error)
	CountByProductSince(ctx context.Context, since time.Time, excludeIDs []uint64) (map[uint64]int64, error)
}

type ProfileRepository interface {
	Get(ctx context.Context, userID uint) (*domain.PreferenceProfile, error)
	Upsert(ctx context.Context, profile *domain.PreferenceProfile) error
}

// ProfileCache is an optional TTL cache in front of ProfileRepository.
// Cache failures are soft; the builder falls through to the store.
type ProfileCache interface {
	Get(ctx context.Context, userID uint) (*domain.PreferenceProfile, error)
	Set(ctx context.Context, profile *domain.PreferenceProfile, ttl time.Duration) error
	Invalidate(ctx context.Context, userID uint) error
}

type SimilarityRepository interface {
	FindByProduct(ctx context.Context, productID uint64, excludeIDs []uint64, limit int) ([]domain.ProductSimilarity, error)
}

type CartRepository interface {
	ItemsByUser(ctx context.Context, userID uint) ([]domain.CartItem, error)
}

type RecommendationRepository interface {
	ActiveProductIDs(ctx context.Context, userID uint, strategy domain.StrategyKind, now time.Time) ([]uint64, error)
	SaveBatch(ctx context.Context, recs []domain.StoredRecommendation) (int64, error)
	MarkShown(ctx context.Context, userID uint, productID uint64, strategy domain.StrategyKind, now time.Time) (int64, error)
	MarkClicked(ctx context.Context, userID uint, productID uint64, strategy domain.StrategyKind, now time.Time) (int64, error)
	MarkPurchased(ctx context.Context, userID uint, productID uint64, strategy domain.StrategyKind, now time.Time) (int64, error)
}
