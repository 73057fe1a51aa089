package services

import (
	"context"
	"errors"
	"strings"

	apperrors "storefront-service/errors"
	"storefront-service/logger"
	"storefront-service/models"
	"storefront-service/repository"

	"go.uber.org/zap"
)

type CategoryService interface {
	AddCategory(ctx context.Context, name string) (*models.Category, error)
	AddSubcategory(ctx context.Context, categoryName, subCategoryName string) (*models.SubcategoryDetail, error)
	ListCategories(ctx context.Context) ([]models.CategoryListing, error)
	GetSubcategories(ctx context.Context, categoryName string) ([]models.Subcategory, error)
}

type categoryServiceImpl struct {
	categories repository.CategoryRepo
}

func NewCategoryService(categories repository.CategoryRepo) CategoryService {
	return &categoryServiceImpl{categories: categories}
}

func (s *categoryServiceImpl) AddCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("Category name is required")
	}

	if _, err := s.categories.FindByName(ctx, name); err == nil {
		return nil, apperrors.Conflict("Category already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(ctx, err, nil, "find category")
	}

	category := &models.Category{Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("Category already exists")
		}
		return nil, storeError(ctx, err, nil, "create category")
	}

	logger.Info(ctx, "Category created", zap.String("category_id", category.ID.Hex()), zap.String("name", name))
	return category, nil
}

func (s *categoryServiceImpl) AddSubcategory(ctx context.Context, categoryName, subCategoryName string) (*models.SubcategoryDetail, error) {
	categoryName, subCategoryName = strings.TrimSpace(categoryName), strings.TrimSpace(subCategoryName)
	if categoryName == "" || subCategoryName == "" {
		return nil, apperrors.InvalidInput("Category and subcategory name are required")
	}

	category, err := s.categories.FindByName(ctx, categoryName)
	if err != nil {
		return nil, storeError(ctx, err, apperrors.NotFound("Parent category not found"), "find category")
	}

	sub := &models.Subcategory{Name: subCategoryName, CategoryID: category.ID}
	if err := s.categories.AddSubcategory(ctx, sub); err != nil {
		return nil, storeError(ctx, err, apperrors.NotFound("Parent category not found"), "add subcategory")
	}

	category.Subcategories = append(category.Subcategories, sub.ID)
	return &models.SubcategoryDetail{ID: sub.ID, Name: sub.Name, Category: *category}, nil
}

func (s *categoryServiceImpl) ListCategories(ctx context.Context) ([]models.CategoryListing, error) {
	listings, err := s.categories.ListWithSubcategories(ctx)
	if err != nil {
		return nil, storeError(ctx, err, nil, "list categories")
	}
	return listings, nil
}

func (s *categoryServiceImpl) GetSubcategories(ctx context.Context, categoryName string) ([]models.Subcategory, error) {
	category, err := s.categories.FindByName(ctx, strings.TrimSpace(categoryName))
	if err != nil {
		return nil, storeError(ctx, err, apperrors.NotFound("Category not found"), "find category")
	}
	subs, err := s.categories.FindSubcategories(ctx, category.Subcategories)
	if err != nil {
		return nil, storeError(ctx, err, nil, "load subcategories")
	}
	return subs, nil
}
