package controllers

import (
	"net/http"

	"storefront-service/services"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	categories services.CategoryService
	validator  *RequestValidator
}

func NewCategoryController(categories services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories, validator: NewRequestValidator()}
}

func (cc *CategoryController) ListCategories(c *gin.Context) {
	categories, err := cc.categories.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	sendResponse(c, http.StatusOK, "Categories retrieved successfully", categories)
}

func (cc *CategoryController) AddCategory(c *gin.Context) {
	var req CategoryRequest
	if err := cc.validator.Bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	category, err := cc.categories.AddCategory(c.Request.Context(), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	sendResponse(c, http.StatusCreated, "Category added successfully", category)
}

func (cc *CategoryController) AddSubcategory(c *gin.Context) {
	var req SubcategoryRequest
	if err := cc.validator.Bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	sub, err := cc.categories.AddSubcategory(c.Request.Context(), req.Category, req.SubCategoryName)
	if err != nil {
		fail(c, err)
		return
	}
	sendResponse(c, http.StatusCreated, "Subcategory added successfully", sub)
}

func (cc *CategoryController) GetSubcategories(c *gin.Context) {
	subs, err := cc.categories.GetSubcategories(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	sendResponse(c, http.StatusOK, "Subcategories retrieved successfully", subs)
}
