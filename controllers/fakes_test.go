package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http/httptest"
	"testing"

	apperrors "storefront-service/errors"
	"storefront-service/models"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAuthService struct {
	signUpFn func(ctx context.Context, name, email, password string) (*models.User, error)
	loginFn  func(ctx context.Context, email, password string) (*models.UserSummary, string, error)
}

func (f *fakeAuthService) SignUp(ctx context.Context, name, email, password string) (*models.User, error) {
	return f.signUpFn(ctx, name, email, password)
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*models.UserSummary, string, error) {
	return f.loginFn(ctx, email, password)
}

type fakeProductService struct {
	listCalled int
	lastInput  services.ProductInput
	listFn     func(ctx context.Context, category string, page, limit int) (*models.ProductPage, error)
	getFn      func(ctx context.Context, id string) (*models.ProductDetail, error)
	createFn   func(ctx context.Context, in services.ProductInput) (*models.ProductDetail, error)
}

func (f *fakeProductService) CreateProduct(ctx context.Context, in services.ProductInput) (*models.ProductDetail, error) {
	f.lastInput = in
	return f.createFn(ctx, in)
}

func (f *fakeProductService) UpdateProduct(ctx context.Context, id string, in services.ProductInput) (*models.ProductDetail, error) {
	f.lastInput = in
	return &models.ProductDetail{}, nil
}

func (f *fakeProductService) GetProduct(ctx context.Context, id string) (*models.ProductDetail, error) {
	return f.getFn(ctx, id)
}

func (f *fakeProductService) ListProducts(ctx context.Context, category string, page, limit int) (*models.ProductPage, error) {
	f.listCalled++
	return f.listFn(ctx, category, page, limit)
}

type fakeCategoryService struct {
	addFn func(ctx context.Context, name string) (*models.Category, error)
}

func (f *fakeCategoryService) AddCategory(ctx context.Context, name string) (*models.Category, error) {
	return f.addFn(ctx, name)
}

func (f *fakeCategoryService) AddSubcategory(ctx context.Context, categoryName, subCategoryName string) (*models.SubcategoryDetail, error) {
	return &models.SubcategoryDetail{Name: subCategoryName}, nil
}

func (f *fakeCategoryService) ListCategories(ctx context.Context) ([]models.CategoryListing, error) {
	return []models.CategoryListing{}, nil
}

func (f *fakeCategoryService) GetSubcategories(ctx context.Context, categoryName string) ([]models.Subcategory, error) {
	return nil, apperrors.NotFound("Category not found")
}

type dispatchCall struct {
	userID, action, productID string
	quantity                  int
}

var fakeCartOwner = primitive.NewObjectID()

type fakeCartService struct {
	calls []dispatchCall
	view  *models.CartView
	err   error
}

func (f *fakeCartService) Add(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	return f.Dispatch(ctx, userID, "", productID, quantity)
}

func (f *fakeCartService) Get(ctx context.Context, userID string) (*models.CartView, error) {
	return f.view, f.err
}

func (f *fakeCartService) Remove(ctx context.Context, userID, productID string) (*models.Cart, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Cart{ID: primitive.NewObjectID(), UserID: fakeCartOwner, Products: []models.CartItem{}}, nil
}

func (f *fakeCartService) Increment(ctx context.Context, userID, productID string) (*models.Cart, error) {
	return f.Dispatch(ctx, userID, services.CartActionIncrement, productID, 0)
}

func (f *fakeCartService) Decrement(ctx context.Context, userID, productID string) (*models.Cart, error) {
	return f.Dispatch(ctx, userID, services.CartActionDecrement, productID, 0)
}

func (f *fakeCartService) Dispatch(ctx context.Context, userID, action, productID string, quantity int) (*models.Cart, error) {
	f.calls = append(f.calls, dispatchCall{userID: userID, action: action, productID: productID, quantity: quantity})
	if f.err != nil {
		return nil, f.err
	}
	return &models.Cart{ID: primitive.NewObjectID(), UserID: fakeCartOwner, Products: []models.CartItem{{Quantity: 1}}}, nil
}

type fakeWishlistService struct {
	added bool
	err   error
}

func (f *fakeWishlistService) Add(ctx context.Context, userID, productID string) ([]models.WishlistItem, error) {
	return []models.WishlistItem{}, f.err
}

func (f *fakeWishlistService) Get(ctx context.Context, userID string) ([]models.PopulatedWishlistItem, error) {
	return []models.PopulatedWishlistItem{}, f.err
}

func (f *fakeWishlistService) Remove(ctx context.Context, userID, productID string) ([]models.WishlistItem, error) {
	return []models.WishlistItem{}, f.err
}

func (f *fakeWishlistService) Toggle(ctx context.Context, userID, productID string) (*models.Wishlist, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return &models.Wishlist{}, f.added, nil
}

func newTestRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: "localhost:0",
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return nil, errors.New("redis disabled in tests")
		},
	})
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	return r
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apperrors.Envelope {
	t.Helper()
	var env apperrors.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}
