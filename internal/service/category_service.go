package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/maheshrc27/blog-cms/internal/models"
	"github.com/maheshrc27/blog-cms/internal/repository"
	"github.com/maheshrc27/blog-cms/internal/transfer"
)

type CategoryService interface {
	List(ctx context.Context) ([]*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, req *transfer.CategoryRequest) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, req *transfer.CategoryRequest) (*models.Category, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	cr repository.CategoryRepository
}

func NewCategoryService(cr repository.CategoryRepository) CategoryService {
	return &categoryService{cr: cr}
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.cr.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	return categories, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.cr.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

func (s *categoryService) Create(ctx context.Context, req *transfer.CategoryRequest) (*models.Category, error) {
	category, err := s.fromRequest(ctx, uuid.Nil, req)
	if err != nil {
		return nil, err
	}

	id, err := s.cr.Create(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return s.byID(ctx, id)
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req *transfer.CategoryRequest) (*models.Category, error) {
	if _, err := s.byID(ctx, id); err != nil {
		return nil, err
	}

	category, err := s.fromRequest(ctx, id, req)
	if err != nil {
		return nil, err
	}
	category.ID = id
	if err := s.cr.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return s.byID(ctx, id)
}

// Remove deletes the category; its post links go with it.
func (s *categoryService) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.byID(ctx, id); err != nil {
		return err
	}
	if err := s.cr.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove category: %w", err)
	}
	return nil
}

func (s *categoryService) byID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.cr.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

func (s *categoryService) fromRequest(ctx context.Context, id uuid.UUID, req *transfer.CategoryRequest) (*models.Category, error) {
	if req == nil {
		return nil, invalid("category data is empty")
	}
	if err := transfer.Validate(req); err != nil {
		return nil, invalid("%v", err)
	}

	categorySlug, err := makeSlug(req.Slug, req.Name)
	if err != nil {
		return nil, err
	}
	taken, err := s.cr.SlugExists(ctx, categorySlug, id)
	if err != nil {
		return nil, fmt.Errorf("check category slug: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", ErrSlugConflict, categorySlug)
	}

	return &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        categorySlug,
		Color:       strings.ToLower(req.Color),
		Description: strings.TrimSpace(req.Description),
		Order:       req.Order,
	}, nil
}
