package category

import (
	"context"
	"errors"
	"fmt"

	"freshCart/domain"
	"freshCart/pkg/logger"
)

type CategoryRepository interface {
	FindAll(ctx context.Context) ([]domain.Category, error)
	FindByID(ctx context.Context, id uint64) (domain.Category, error)
}

type categoryService struct {
	categoryRepo CategoryRepository
}

func NewCategoryService(categoryRepo CategoryRepository) *categoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
	}
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all categories")
		return nil, fmt.Errorf("context error: %w", err)
	}

	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		logger.Error("failed to find all categories", err)
		return nil, err
	}

	return categories, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id uint64) (*domain.Category, error) {
	if id == 0 {
		logger.Error("invalid category id")
		return nil, errors.New("invalid category id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when get category by id")
		return nil, fmt.Errorf("context error: %w", err)
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find category by id", err)
		return nil, err
	}

	return &category, nil
}
