package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	apperrors "storefront-service/errors"
	"storefront-service/logger"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	multipartMemory = 8 << 20
	// maxProductBody leaves room for the form fields next to the images.
	maxProductBody = services.MaxProductImages*services.MaxImageBytes + 1<<20
)

type ProductController struct {
	products services.ProductService
	cache    *CacheManager
}

func NewProductController(products services.ProductService, cache *CacheManager) *ProductController {
	return &ProductController{products: products, cache: cache}
}

func (pc *ProductController) GetProducts(c *gin.Context) {
	ctx := c.Request.Context()
	category := strings.TrimSpace(c.Query("category"))
	page, limit := ParsePagination(c)

	if cached, ok := pc.cache.GetProductList(ctx, category, page, limit); ok {
		sendResponse(c, http.StatusOK, "Products fetched successfully", cached)
		return
	}

	result, err := pc.products.ListProducts(ctx, category, page, limit)
	if err != nil {
		fail(c, err)
		return
	}

	pc.cache.SetProductListAsync(category, page, limit, result)
	sendResponse(c, http.StatusOK, "Products fetched successfully", result)
}

func (pc *ProductController) GetProduct(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if cached, ok := pc.cache.GetProduct(ctx, id); ok {
		sendResponse(c, http.StatusOK, "Product fetched successfully", cached)
		return
	}

	product, err := pc.products.GetProduct(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}

	pc.cache.SetProductAsync(id, product)
	sendResponse(c, http.StatusOK, "Product fetched successfully", product)
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	in, err := productInput(c)
	if err != nil {
		fail(c, err)
		return
	}

	product, err := pc.products.CreateProduct(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}

	pc.cache.InvalidateProduct(c.Request.Context(), "")
	sendResponse(c, http.StatusCreated, "Product added successfully", product)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	in, err := productInput(c)
	if err != nil {
		fail(c, err)
		return
	}

	id := c.Param("id")
	product, err := pc.products.UpdateProduct(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}

	pc.cache.InvalidateProduct(c.Request.Context(), id)
	sendResponse(c, http.StatusOK, "Product updated successfully", product)
}

// productInput reads the product form. Images come from the "images" file
// field; count and size limits are checked before anything is uploaded.
func productInput(c *gin.Context) (services.ProductInput, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxProductBody)

	var files []*multipart.FileHeader
	err := c.Request.ParseMultipartForm(multipartMemory)
	switch {
	case err == nil:
		files = c.Request.MultipartForm.File["images"]
	case errors.Is(err, http.ErrNotMultipart):
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.ProductInput{}, apperrors.InvalidInput("File too large. Maximum size is 5MB.")
		}
		logger.Warn(c, "Failed to parse product form", zap.Error(err))
		return services.ProductInput{}, apperrors.InvalidInput("Invalid form data")
	}

	if len(files) > services.MaxProductImages {
		return services.ProductInput{}, apperrors.InvalidInput(fmt.Sprintf("Too many files uploaded. Maximum is %d.", services.MaxProductImages))
	}
	images := make([]services.ImageUpload, 0, len(files))
	for _, fh := range files {
		if fh.Size > services.MaxImageBytes {
			return services.ProductInput{}, apperrors.InvalidInput("File too large. Maximum size is 5MB.")
		}
		fh := fh
		images = append(images, services.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open:        func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	variants, err := services.ParseVariants(c.PostForm("variants"))
	if err != nil {
		return services.ProductInput{}, err
	}

	return services.ProductInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Variants:    variants,
		Images:      images,
	}, nil
}
