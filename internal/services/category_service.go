package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"centime/internal/core"
	"centime/internal/storage"
)

// defaultCategoryColor is used when a category is created without one.
const defaultCategoryColor = "#3B82F6"

// CategoryService manages the transaction category catalog. Transactions
// reference categories by name, so deleting a category never touches the
// recorded history.
type CategoryService struct {
	storage *storage.SQLiteRepository
}

func NewCategoryService(repo *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{storage: repo}
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Color == "" {
		c.Color = defaultCategoryColor
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.storage.CreateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (core.Category, error) {
	return s.storage.GetCategory(ctx, id)
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.storage.ListCategories(ctx)
}

func (s *CategoryService) Update(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.storage.UpdateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.storage.DeleteCategory(ctx, id)
}
