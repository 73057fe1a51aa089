package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "storefront-service/errors"
	"storefront-service/logger"
	"storefront-service/models"
	awspkg "storefront-service/pkg/aws"
	"storefront-service/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	minNameLength        = 3
	maxNameLength        = 100
	maxDescriptionLength = 500

	imageReleaseTimeout = 30 * time.Second
)

// ProductInput carries the fields of a create or update request.
type ProductInput struct {
	Name        string
	Description string
	Category    string
	Variants    []models.Variant
	Images      []ImageUpload
}

type ProductService interface {
	CreateProduct(ctx context.Context, in ProductInput) (*models.ProductDetail, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.ProductDetail, error)
	GetProduct(ctx context.Context, id string) (*models.ProductDetail, error)
	ListProducts(ctx context.Context, category string, page, limit int) (*models.ProductPage, error)
}

type productServiceImpl struct {
	products   repository.ProductRepo
	categories repository.CategoryRepo
	images     ImageStore
	events     CatalogEvents
	metrics    awspkg.MetricsRecorder
}

func NewProductService(
	products repository.ProductRepo,
	categories repository.CategoryRepo,
	images ImageStore,
	events CatalogEvents,
	metrics awspkg.MetricsRecorder,
) ProductService {
	return &productServiceImpl{
		products:   products,
		categories: categories,
		images:     images,
		events:     events,
		metrics:    metrics,
	}
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, in ProductInput) (*models.ProductDetail, error) {
	if err := validateProductInput(in, true); err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}
	variants, price, err := sellableVariants(in.Variants)
	if err != nil {
		return nil, err
	}

	stored, err := s.images.Upload(ctx, in.Images)
	if err != nil {
		return nil, apperrors.Internal("Failed to upload images", err)
	}

	product := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		Images:      urlsOf(stored),
		ImageKeys:   keysOf(stored),
		CategoryIDs: []primitive.ObjectID{category.ID},
		Variants:    variants,
	}
	if err := s.products.Create(ctx, product); err != nil {
		s.images.Release(context.WithoutCancel(ctx), product.ImageKeys)
		return nil, storeError(ctx, err, nil, "create product")
	}

	s.afterWrite(ctx, EventProductCreated, awspkg.MetricProductsCreated, product)
	logger.Info(ctx, "Product created", zap.String("product_id", product.ID.Hex()), zap.Int("images", len(stored)))
	return &models.ProductDetail{Product: *product, Category: []models.Category{*category}}, nil
}

// UpdateProduct replaces name, description, variants and category. New
// images replace the old ones, which are released in the background.
func (s *productServiceImpl) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.ProductDetail, error) {
	pid, err := parseObjectID(id, apperrors.InvalidInput("Invalid product ID"))
	if err != nil {
		return nil, err
	}
	if err := validateProductInput(in, false); err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, pid)
	if err != nil {
		return nil, storeError(ctx, err, apperrors.NotFound("Product not found"), "find product")
	}
	variants, price, err := sellableVariants(in.Variants)
	if err != nil {
		return nil, err
	}

	var replacedKeys []string
	if len(in.Images) > 0 {
		stored, err := s.images.Upload(ctx, in.Images)
		if err != nil {
			return nil, apperrors.Internal("Failed to upload images", err)
		}
		replacedKeys = product.ImageKeys
		product.Images = urlsOf(stored)
		product.ImageKeys = keysOf(stored)
	}

	product.Name = strings.TrimSpace(in.Name)
	product.Description = strings.TrimSpace(in.Description)
	product.Price = price
	product.CategoryIDs = []primitive.ObjectID{category.ID}
	product.Variants = variants

	if err := s.products.Update(ctx, product); err != nil {
		if len(in.Images) > 0 {
			s.images.Release(context.WithoutCancel(ctx), product.ImageKeys)
		}
		return nil, storeError(ctx, err, apperrors.NotFound("Product not found"), "update product")
	}

	if len(replacedKeys) > 0 {
		s.releaseAsync(ctx, replacedKeys)
	}
	s.afterWrite(ctx, EventProductUpdated, awspkg.MetricProductsUpdated, product)
	return &models.ProductDetail{Product: *product, Category: []models.Category{*category}}, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, id string) (*models.ProductDetail, error) {
	pid, err := parseObjectID(id, apperrors.InvalidInput("Invalid product ID"))
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, pid)
	if err != nil {
		return nil, storeError(ctx, err, apperrors.NotFound("Product not found"), "find product")
	}

	categories, err := s.categories.FindByIDs(ctx, product.CategoryIDs)
	if err != nil {
		return nil, storeError(ctx, err, nil, "load product categories")
	}
	return &models.ProductDetail{Product: *product, Category: categories}, nil
}

// ListProducts pages through products, optionally restricted to one
// category given by id or by case-insensitive name. An unknown category
// yields an empty page.
func (s *productServiceImpl) ListProducts(ctx context.Context, category string, page, limit int) (*models.ProductPage, error) {
	page, limit = normalizePage(page, limit)
	result := &models.ProductPage{Products: []models.Product{}, Page: page, Limit: limit}

	filter, ok, err := s.categoryFilter(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, err
	}
	if !ok {
		return result, nil
	}

	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, storeError(ctx, err, nil, "count products")
	}
	result.TotalItems = total
	result.TotalPages = int(math.Ceil(float64(total) / float64(limit)))

	skip, ok := pageOffset(page, limit)
	if !ok || skip >= total {
		return result, nil
	}
	products, err := s.products.Find(ctx, filter, skip, int64(limit))
	if err != nil {
		return nil, storeError(ctx, err, nil, "list products")
	}
	result.Products = products
	return result, nil
}

func (s *productServiceImpl) categoryFilter(ctx context.Context, category string) (repository.ProductFilter, bool, error) {
	if category == "" {
		return repository.ProductFilter{}, true, nil
	}
	if id, err := primitive.ObjectIDFromHex(category); err == nil {
		return repository.ProductFilter{CategoryID: &id}, true, nil
	}

	found, err := s.categories.FindByNameFold(ctx, category)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.ProductFilter{}, false, nil
	}
	if err != nil {
		return repository.ProductFilter{}, false, storeError(ctx, err, nil, "find category")
	}
	return repository.ProductFilter{CategoryID: &found.ID}, true, nil
}

func (s *productServiceImpl) resolveCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	category, err := s.categories.FindByNameFold(ctx, name)
	if err != nil {
		return nil, storeError(ctx, err, apperrors.NotFound(fmt.Sprintf("Category %s not found", name)), "find category")
	}
	return category, nil
}

func (s *productServiceImpl) releaseAsync(ctx context.Context, keys []string) {
	requestID := logger.RequestID(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(logger.WithContext(context.Background(), requestID), imageReleaseTimeout)
		defer cancel()
		s.images.Release(ctx, keys)
	}()
}

func (s *productServiceImpl) afterWrite(ctx context.Context, event, metric string, product *models.Product) {
	if s.events != nil {
		s.events.ProductChanged(ctx, event, product)
	}
	if s.metrics != nil {
		go s.metrics.RecordCount(context.Background(), metric, nil)
	}
}

func validateProductInput(in ProductInput, requireImages bool) error {
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.Category) == "" || len(in.Variants) == 0 {
		return apperrors.InvalidInput("Missing required fields")
	}
	if requireImages && len(in.Images) == 0 {
		return apperrors.InvalidInput("At least one image is required")
	}
	if len(in.Images) > MaxProductImages {
		return apperrors.InvalidInput(fmt.Sprintf("A maximum of %d images is allowed", MaxProductImages))
	}
	for _, img := range in.Images {
		if img.Size > MaxImageBytes {
			return apperrors.InvalidInput(fmt.Sprintf("Image %s exceeds the 5MB limit", img.Filename))
		}
	}
	if n := utf8.RuneCountInString(name); n < minNameLength || n > maxNameLength {
		return apperrors.InvalidInput("Name must be between 3 and 100 characters")
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) > maxDescriptionLength {
		return apperrors.InvalidInput("Description must be at most 500 characters")
	}
	return nil
}

func sellableVariants(variants []models.Variant) ([]models.Variant, float64, error) {
	valid, price := validVariants(variants)
	if len(valid) == 0 {
		return nil, 0, apperrors.InvalidInput("At least one valid variant is required")
	}
	return valid, price, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// pageOffset returns the number of products before page. ok is false when
// the offset does not fit in an int64.
func pageOffset(page, limit int) (int64, bool) {
	if int64(page-1) > math.MaxInt64/int64(limit) {
		return 0, false
	}
	return int64(page-1) * int64(limit), true
}

func urlsOf(images []StoredImage) []string {
	urls := make([]string, len(images))
	for i, img := range images {
		urls[i] = img.URL
	}
	return urls
}
