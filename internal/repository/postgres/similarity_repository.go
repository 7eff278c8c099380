package postgres

import (
	"context"
	"fmt"

	"freshCart/domain"

	"gorm.io/gorm"
)

// SimilarityRepository reads the similarity table maintained by the
// offline analysis job. This service never writes it.
type SimilarityRepository struct {
	DB *gorm.DB
}

func NewSimilarityRepository(db *gorm.DB) *SimilarityRepository {
	return &SimilarityRepository{DB: db}
}

func (r *SimilarityRepository) FindByProduct(
	ctx context.Context,
	productID uint64,
	excludeIDs []uint64,
	limit int,
) ([]domain.ProductSimilarity, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = 10
	}

	q := r.DB.WithContext(ctx).
		Where("product_id = ?", productID)
	if len(excludeIDs) > 0 {
		q = q.Where("similar_product_id NOT IN ?", excludeIDs)
	}

	var rows []domain.ProductSimilarity
	if err := q.Order("score DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query product_similarities: %w", err)
	}

	return rows, nil
}
