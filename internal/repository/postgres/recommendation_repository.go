package postgres

import (
	"context"
	"fmt"
	"time"

	"freshCart/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecommendationRepository struct {
	DB *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{DB: db}
}

// ActiveProductIDs returns products that already have an unexpired
// stored recommendation for this user and strategy.
func (r *RecommendationRepository) ActiveProductIDs(
	ctx context.Context,
	userID uint,
	strategy domain.StrategyKind,
	now time.Time,
) ([]uint64, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []uint64
	if err := r.DB.WithContext(ctx).
		Model(&domain.StoredRecommendation{}).
		Where("user_id = ? AND strategy_kind = ? AND expires_at > ?", userID, strategy, now).
		Pluck("product_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to query active recommendations: %w", err)
	}

	return ids, nil
}

// SaveBatch inserts the rows, silently skipping any that collide with
// the uniqueness index. Returns how many rows were actually written.
func (r *RecommendationRepository) SaveBatch(ctx context.Context, recs []domain.StoredRecommendation) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}
	if len(recs) == 0 {
		return 0, nil
	}

	result := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{DoNothing: true},
	).Create(&recs)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to save recommendation batch: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// MarkShown stamps shown state on matching unexpired rows. Zero rows
// affected is not an error.
func (r *RecommendationRepository) MarkShown(
	ctx context.Context,
	userID uint,
	productID uint64,
	strategy domain.StrategyKind,
	now time.Time,
) (int64, error) {

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Model(&domain.StoredRecommendation{}).
		Where("user_id = ? AND product_id = ? AND expires_at > ? AND is_shown = false", userID, productID, now)
	if strategy != "" {
		q = q.Where("strategy_kind = ?", strategy)
	}

	result := q.Updates(map[string]interface{}{
		"is_shown": true,
		"shown_at": now,
	})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark recommendation shown: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *RecommendationRepository) MarkClicked(
	ctx context.Context,
	userID uint,
	productID uint64,
	strategy domain.StrategyKind,
	now time.Time,
) (int64, error) {

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Model(&domain.StoredRecommendation{}).
		Where("user_id = ? AND product_id = ? AND expires_at > ? AND is_clicked = false", userID, productID, now)
	if strategy != "" {
		q = q.Where("strategy_kind = ?", strategy)
	}

	result := q.Updates(map[string]interface{}{
		"is_clicked": true,
		"clicked_at": now,
	})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark recommendation clicked: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// MarkPurchased only touches rows that were already shown: a purchase
// cannot be attributed to a recommendation nobody saw.
func (r *RecommendationRepository) MarkPurchased(
	ctx context.Context,
	userID uint,
	productID uint64,
	strategy domain.StrategyKind,
	now time.Time,
) (int64, error) {

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Model(&domain.StoredRecommendation{}).
		Where("user_id = ? AND product_id = ? AND expires_at > ? AND is_shown = true AND is_purchased = false", userID, productID, now)
	if strategy != "" {
		q = q.Where("strategy_kind = ?", strategy)
	}

	result := q.Updates(map[string]interface{}{
		"is_purchased": true,
		"purchased_at": now,
	})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark recommendation purchased: %w", result.Error)
	}

	return result.RowsAffected, nil
}
