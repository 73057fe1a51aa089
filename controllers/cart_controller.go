package controllers

import (
	"net/http"

	apperrors "storefront-service/errors"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
)

// CartController serves /cart/:id, where :id is the owning user.
type CartController struct {
	carts services.CartService
}

func NewCartController(carts services.CartService) *CartController {
	return &CartController{carts: carts}
}

// Dispatch adds a product, or steps its quantity when action is
// "increment" or "decrement".
func (cc *CartController) Dispatch(c *gin.Context) {
	var req CartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.InvalidInput("Invalid request body"))
		return
	}

	cart, err := cc.carts.Dispatch(c.Request.Context(), c.Param("id"), req.Action, req.ProductID, parseQuantity(req.Quantity))
	if err != nil {
		fail(c, err)
		return
	}

	message := "Product added to cart successfully"
	switch req.Action {
	case services.CartActionIncrement:
		message = "Product quantity increased successfully"
	case services.CartActionDecrement:
		message = "Product quantity decreased successfully"
	}
	sendResponse(c, http.StatusOK, message, cart)
}

func (cc *CartController) GetCart(c *gin.Context) {
	view, err := cc.carts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	if len(view.Products) == 0 {
		sendResponse(c, http.StatusOK, "Cart is empty", view)
		return
	}
	sendResponse(c, http.StatusOK, "Cart fetched successfully", view)
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	var req CartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.InvalidInput("Invalid request body"))
		return
	}

	cart, err := cc.carts.Remove(c.Request.Context(), c.Param("id"), req.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	sendResponse(c, http.StatusOK, "Product removed from cart successfully", cart)
}
