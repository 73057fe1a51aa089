package repository

import (
	"context"
	"errors"

	"storefront-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no document matches the filter.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a write would violate a uniqueness rule.
	ErrDuplicate = errors.New("duplicate document")
)

// ProductFilter narrows a product listing. A nil CategoryID matches all products.
type ProductFilter struct {
	CategoryID *primitive.ObjectID
}

type UserRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetCart(ctx context.Context, userID, cartID primitive.ObjectID) error
	UnsetCart(ctx context.Context, userID primitive.ObjectID) error
	SetWishlist(ctx context.Context, userID, wishlistID primitive.ObjectID) error
	UnsetWishlist(ctx context.Context, userID primitive.ObjectID) error
}

type ProductRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	Find(ctx context.Context, filter ProductFilter, skip, limit int64) ([]models.Product, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
}

type CategoryRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error)
	// FindByName matches the name exactly.
	FindByName(ctx context.Context, name string) (*models.Category, error)
	// FindByNameFold matches the whole name case-insensitively.
	FindByNameFold(ctx context.Context, name string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	ListWithSubcategories(ctx context.Context) ([]models.CategoryListing, error)
	FindSubcategories(ctx context.Context, ids []primitive.ObjectID) ([]models.Subcategory, error)
	// AddSubcategory inserts sub and appends its id to the owning category
	// as one transaction.
	AddSubcategory(ctx context.Context, sub *models.Subcategory) error
}

// CartRepo mutates carts with single-document atomic updates. Item-level
// methods return ErrNotFound when the cart has no line for the product.
type CartRepo interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// AddItem increments an existing line or appends a new one, creating the
	// cart when the user has none.
	AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error)
	IncrementItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error)
	// DecrementItem never takes a quantity below 1.
	DecrementItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error)
	// DeleteIfEmpty deletes the cart only when it holds no line items.
	DeleteIfEmpty(ctx context.Context, cartID primitive.ObjectID) (bool, error)
}

// WishlistRepo mirrors CartRepo for the quantity-less wishlist. AddItem
// returns ErrDuplicate when the product is already present.
type WishlistRepo interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error)
	AddItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error)
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error)
	DeleteIfEmpty(ctx context.Context, wishlistID primitive.ObjectID) (bool, error)
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}
