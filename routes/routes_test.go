package routes

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-service/controllers"
	apperrors "storefront-service/errors"
	"storefront-service/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

type rejectAllTokens struct{}

func (rejectAllTokens) ValidateToken(string) (string, error) {
	return "", errors.New("expired")
}

// Services are nil: every request below is answered before reaching them.
func newTestEngine(limiter *middleware.RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	RegisterRoutes(r, Handlers{
		Auth:       controllers.NewAuthController(nil, false),
		Users:      controllers.NewUserController(nil),
		Products:   controllers.NewProductController(nil, nil),
		Categories: controllers.NewCategoryController(nil),
		Carts:      controllers.NewCartController(nil),
		Wishlists:  controllers.NewWishlistController(nil),
	}, middleware.Auth(rejectAllTokens{}), middleware.RateLimit(limiter))
	return r
}

func TestHealthAndNoRoute(t *testing.T) {
	r := newTestEngine(middleware.NewRateLimiter(rate.Inf, 1, time.Minute))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"This route is not available."}`, rec.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestEngine(middleware.NewRateLimiter(rate.Inf, 1, time.Minute))

	protected := []struct{ method, path string }{
		{http.MethodPost, "/api/products"},
		{http.MethodPut, "/api/products/abc"},
		{http.MethodPost, "/api/categories"},
		{http.MethodPost, "/api/categories/subcategory"},
		{http.MethodGet, "/api/cart/u1"},
		{http.MethodPost, "/api/cart/u1"},
		{http.MethodDelete, "/api/cart/u1"},
		{http.MethodGet, "/api/wishlist/u1"},
		{http.MethodPost, "/api/wishlist/u1"},
		{http.MethodPost, "/api/wishlist/u1/toggle"},
		{http.MethodDelete, "/api/wishlist/u1"},
		{http.MethodGet, "/api/user"},
		{http.MethodGet, "/api/user/u1"},
	}
	for _, p := range protected {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(p.method, p.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)

		rec = httptest.NewRecorder()
		req := httptest.NewRequest(p.method, p.path, nil)
		req.Header.Set("Authorization", "Bearer stale")
		r.ServeHTTP(rec, req)
		assert.Equal(t, apperrors.StatusInvalidToken, rec.Code, "%s %s", p.method, p.path)
	}
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	r := newTestEngine(middleware.NewRateLimiter(rate.Every(time.Hour), 1, time.Minute))

	// The first request spends the only token and fails validation.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
