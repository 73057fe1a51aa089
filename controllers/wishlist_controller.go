package controllers

import (
	"net/http"

	apperrors "storefront-service/errors"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
)

type WishlistController struct {
	wishlists services.WishlistService
}

func NewWishlistController(wishlists services.WishlistService) *WishlistController {
	return &WishlistController{wishlists: wishlists}
}

func (wc *WishlistController) GetWishlist(c *gin.Context) {
	items, err := wc.wishlists.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	sendResponse(c, http.StatusOK, "Wishlist fetched successfully", items)
}

func (wc *WishlistController) AddItem(c *gin.Context) {
	productID, ok := wishlistProduct(c)
	if !ok {
		return
	}

	items, err := wc.wishlists.Add(c.Request.Context(), c.Param("id"), productID)
	if err != nil {
		fail(c, err)
		return
	}
	sendResponse(c, http.StatusOK, "Product added to wishlist successfully", items)
}

func (wc *WishlistController) RemoveItem(c *gin.Context) {
	productID, ok := wishlistProduct(c)
	if !ok {
		return
	}

	items, err := wc.wishlists.Remove(c.Request.Context(), c.Param("id"), productID)
	if err != nil {
		fail(c, err)
		return
	}
	sendResponse(c, http.StatusOK, "Product removed from wishlist successfully", items)
}

func (wc *WishlistController) ToggleItem(c *gin.Context) {
	productID, ok := wishlistProduct(c)
	if !ok {
		return
	}

	wishlist, added, err := wc.wishlists.Toggle(c.Request.Context(), c.Param("id"), productID)
	if err != nil {
		fail(c, err)
		return
	}

	if added {
		sendResponse(c, http.StatusOK, "Item added to wishlist successfully", wishlist)
		return
	}
	sendResponse(c, http.StatusOK, "Item removed from wishlist successfully", wishlist)
}

func wishlistProduct(c *gin.Context) (string, bool) {
	var req WishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.InvalidInput("Invalid request body"))
		return "", false
	}
	return req.ProductID, true
}
