package postgres

import (
	"context"
	"errors"
	"fmt"

	"freshCart/domain"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint64) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product

	err := r.DB.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, errors.New("product not found")
		}
		return domain.Product{}, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var products []domain.Product
	err := r.DB.WithContext(ctx).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	return products, nil
}

// FindByCategory returns in-stock products of a category ranked by
// rating then review count.
func (r *ProductRepository) FindByCategory(
	ctx context.Context,
	categoryID uint64,
	excludeIDs []uint64,
	limit int,
) ([]domain.Product, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Where("category_id = ? AND quantity > 0", categoryID)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}

	var products []domain.Product
	if err := q.Order("rating DESC, review_count DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products by category: %w", err)
	}

	return products, nil
}

// FindByPreferences returns in-stock products in any of the given
// categories. Price filtering is left to the caller so that near-miss
// prices can still be scored.
func (r *ProductRepository) FindByPreferences(
	ctx context.Context,
	categoryIDs []uint64,
	excludeIDs []uint64,
	limit int,
) ([]domain.Product, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(categoryIDs) == 0 {
		return []domain.Product{}, nil
	}

	q := r.DB.WithContext(ctx).
		Where("category_id IN ? AND quantity > 0", categoryIDs)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}

	var products []domain.Product
	if err := q.Limit(limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products by preferences: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) FindNewest(ctx context.Context, excludeIDs []uint64, limit int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}

	var products []domain.Product
	if err := q.Order("created_at DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find newest products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) FindDiscounted(ctx context.Context, excludeIDs []uint64, limit int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Where("sale_price > 0 AND sale_price < normal_price")
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}

	var products []domain.Product
	if err := q.Order("(normal_price - sale_price) / normal_price DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find discounted products: %w", err)
	}

	return products, nil
}
