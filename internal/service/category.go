package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
)

type CategoryService struct {
	Repo *repo.GormRepo
}

func categoryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}

	key := categoryKey(name)
	if _, err := s.Repo.GetCategoryByKey(ctx, key); err == nil {
		return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c := &models.Category{Name: name, NameKey: key}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		if _, gerr := s.Repo.GetCategoryByKey(ctx, key); gerr == nil {
			return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, name)
		}
		return nil, err
	}
	return c, nil
}

// Delete removes a category nobody references. Articles point at categories by
// name, so the check counts articles whose category matches case-insensitively.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		return err
	}

	n, err := s.Repo.CountArticlesInCategory(ctx, c.Name)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: category %q is used by %d article(s)", ErrConflict, c.Name, n)
	}

	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}

// Resolve returns the stored category whose name matches name in any case.
func (s *CategoryService) Resolve(ctx context.Context, name string) (*models.Category, error) {
	key := categoryKey(name)
	if key == "" {
		return nil, fmt.Errorf("%w: category required", ErrValidation)
	}
	c, err := s.Repo.GetCategoryByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, strings.TrimSpace(name))
		}
		return nil, err
	}
	return c, nil
}
