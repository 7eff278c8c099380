package postgres

import (
	"context"
	"fmt"
	"time"

	"freshCart/domain"

	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) Save(ctx context.Context, event *domain.InteractionEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to save interaction event: %w", err)
	}

	return nil
}

// RecentByUser returns the user's newest events, newest first.
func (r *EventRepository) RecentByUser(ctx context.Context, userID uint, limit int) ([]domain.InteractionEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = 50
	}

	var events []domain.InteractionEvent
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to query interaction_events: %w", err)
	}

	return events, nil
}

// ProductIDsByUser returns every product the user has interacted with,
// regardless of action kind.
func (r *EventRepository) ProductIDsByUser(ctx context.Context, userID uint) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []uint64
	if err := r.DB.WithContext(ctx).
		Model(&domain.InteractionEvent{}).
		Distinct("product_id").
		Where("user_id = ?", userID).
		Pluck("product_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to query interacted products: %w", err)
	}

	return ids, nil
}

// DistinctUsersByProduct returns the users that performed actionKind on
// the product.
func (r *EventRepository) DistinctUsersByProduct(ctx context.Context, productID uint64, actionKind string) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []uint
	if err := r.DB.WithContext(ctx).
		Model(&domain.InteractionEvent{}).
		Distinct("user_id").
		Where("product_id = ? AND action_kind = ?", productID, actionKind).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to query distinct users: %w", err)
	}

	return ids, nil
}

type productCount struct {
	ProductID uint64 `gorm:"column:product_id"`
	Count     int64  `gorm:"column:cnt"`
}

// CountByProductForUsers groups actionKind events of the given users by
// product, skipping excludeIDs inside the query.
func (r *EventRepository) CountByProductForUsers(
	ctx context.Context,
	userIDs []uint,
	actionKind string,
	excludeIDs []uint64,
) (map[uint64]int64, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(userIDs) == 0 {
		return map[uint64]int64{}, nil
	}

	q := r.DB.WithContext(ctx).
		Model(&domain.InteractionEvent{}).
		Select("product_id, COUNT(DISTINCT user_id) AS cnt").
		Where("user_id IN ? AND action_kind = ?", userIDs, actionKind)
	if len(excludeIDs) > 0 {
		q = q.Where("product_id NOT IN ?", excludeIDs)
	}

	var rows []productCount
	if err := q.Group("product_id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count events by product: %w", err)
	}

	out := make(map[uint64]int64, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row.Count
	}

	return out, nil
}

// CountByProductSince groups all events newer than since by product.
func (r *EventRepository) CountByProductSince(
	ctx context.Context,
	since time.Time,
	excludeIDs []uint64,
) (map[uint64]int64, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Model(&domain.InteractionEvent{}).
		Select("product_id, COUNT(*) AS cnt").
		Where("created_at >= ?", since)
	if len(excludeIDs) > 0 {
		q = q.Where("product_id NOT IN ?", excludeIDs)
	}

	var rows []productCount
	if err := q.Group("product_id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count trailing events: %w", err)
	}

	out := make(map[uint64]int64, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row.Count
	}

	return out, nil
}
