package routes

import (
	"net/http"

	"storefront-service/controllers"
	apperrors "storefront-service/errors"

	"github.com/gin-gonic/gin"
)

// Handlers groups the controllers mounted under /api.
type Handlers struct {
	Auth       *controllers.AuthController
	Users      *controllers.UserController
	Products   *controllers.ProductController
	Categories *controllers.CategoryController
	Carts      *controllers.CartController
	Wishlists  *controllers.WishlistController
}

// RegisterRoutes mounts the API. requireAuth guards every mutation and all
// per-user routes; limit guards sign up and log in.
func RegisterRoutes(r *gin.Engine, h Handlers, requireAuth, limit gin.HandlerFunc) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", limit, h.Auth.SignUp)
		auth.POST("/login", limit, h.Auth.Login)
		auth.GET("/logout", h.Auth.Logout)
	}

	products := api.Group("/products")
	{
		products.GET("", h.Products.GetProducts)
		products.GET("/:id", h.Products.GetProduct)
		products.POST("", requireAuth, h.Products.CreateProduct)
		products.PUT("/:id", requireAuth, h.Products.UpdateProduct)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", h.Categories.ListCategories)
		categories.GET("/subcategories/:name", h.Categories.GetSubcategories)
		categories.POST("", requireAuth, h.Categories.AddCategory)
		categories.POST("/subcategory", requireAuth, h.Categories.AddSubcategory)
	}

	cart := api.Group("/cart", requireAuth)
	{
		cart.GET("/:id", h.Carts.GetCart)
		cart.POST("/:id", h.Carts.Dispatch)
		cart.DELETE("/:id", h.Carts.RemoveItem)
	}

	wishlist := api.Group("/wishlist", requireAuth)
	{
		wishlist.GET("/:id", h.Wishlists.GetWishlist)
		wishlist.POST("/:id", h.Wishlists.AddItem)
		wishlist.POST("/:id/toggle", h.Wishlists.ToggleItem)
		wishlist.DELETE("/:id", h.Wishlists.RemoveItem)
	}

	users := api.Group("/user", requireAuth)
	{
		users.GET("", h.Users.ListUsers)
		users.GET("/:id", h.Users.GetUser)
	}

	r.NoRoute(apperrors.NoRoute())
}
