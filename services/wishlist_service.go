package services

import (
	"context"
	"errors"

	apperrors "storefront-service/errors"
	"storefront-service/logger"
	"storefront-service/models"
	"storefront-service/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type WishlistService interface {
	Add(ctx context.Context, userID, productID string) ([]models.WishlistItem, error)
	Get(ctx context.Context, userID string) ([]models.PopulatedWishlistItem, error)
	Remove(ctx context.Context, userID, productID string) ([]models.WishlistItem, error)
	// Toggle reports whether the product is in the wishlist afterwards.
	Toggle(ctx context.Context, userID, productID string) (*models.Wishlist, bool, error)
}

type wishlistServiceImpl struct {
	wishlists repository.WishlistRepo
	users     repository.UserRepo
	products  repository.ProductRepo
}

func NewWishlistService(wishlists repository.WishlistRepo, users repository.UserRepo, products repository.ProductRepo) WishlistService {
	return &wishlistServiceImpl{wishlists: wishlists, users: users, products: products}
}

func (s *wishlistServiceImpl) Add(ctx context.Context, userID, productID string) ([]models.WishlistItem, error) {
	user, pid, err := s.resolve(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	wishlist, err := s.add(ctx, user, pid)
	if err != nil {
		return nil, err
	}
	return wishlist.Products, nil
}

// Get returns an empty list when the user has no wishlist.
func (s *wishlistServiceImpl) Get(ctx context.Context, userID string) ([]models.PopulatedWishlistItem, error) {
	uid, err := parseObjectID(userID, apperrors.NotFound("User not found"))
	if err != nil {
		return nil, err
	}

	wishlist, err := s.wishlists.FindByUser(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return []models.PopulatedWishlistItem{}, nil
	}
	if err != nil {
		return nil, storeError(ctx, err, nil, "find wishlist")
	}

	ids := make([]primitive.ObjectID, 0, len(wishlist.Products))
	for _, item := range wishlist.Products {
		ids = append(ids, item.ProductID)
	}
	byID, err := productsByID(ctx, s.products, ids)
	if err != nil {
		return nil, err
	}

	items := make([]models.PopulatedWishlistItem, 0, len(wishlist.Products))
	for _, item := range wishlist.Products {
		if product, ok := byID[item.ProductID]; ok {
			items = append(items, models.PopulatedWishlistItem{Product: product})
		}
	}
	return items, nil
}

func (s *wishlistServiceImpl) Remove(ctx context.Context, userID, productID string) ([]models.WishlistItem, error) {
	user, pid, err := s.resolve(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if _, err := s.wishlists.FindByUser(ctx, user.ID); err != nil {
		return nil, storeError(ctx, err, apperrors.NotFound("Wishlist not found"), "find wishlist")
	}

	wishlist, err := s.remove(ctx, user, pid)
	if err != nil {
		return nil, storeError(ctx, err, apperrors.NotFound("Product not found in wishlist"), "remove wishlist item")
	}
	return wishlist.Products, nil
}

func (s *wishlistServiceImpl) Toggle(ctx context.Context, userID, productID string) (*models.Wishlist, bool, error) {
	user, pid, err := s.resolve(ctx, userID, productID)
	if err != nil {
		return nil, false, err
	}

	wishlist, err := s.remove(ctx, user, pid)
	if err == nil {
		logger.Debug(ctx, "Wishlist item toggled off", zap.String("user_id", userID), zap.String("product_id", productID))
		return wishlist, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, storeError(ctx, err, nil, "remove wishlist item")
	}

	wishlist, err = s.add(ctx, user, pid)
	if err != nil {
		return nil, false, err
	}
	logger.Debug(ctx, "Wishlist item toggled on", zap.String("user_id", userID), zap.String("product_id", productID))
	return wishlist, true, nil
}

// resolve validates both ids and checks that the product and user exist.
func (s *wishlistServiceImpl) resolve(ctx context.Context, userID, productID string) (*models.User, primitive.ObjectID, error) {
	uid, err := parseObjectID(userID, apperrors.NotFound("User not found"))
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	pid, err := parseObjectID(productID, apperrors.NotFound("Product not found"))
	if err != nil {
		return nil, pid, err
	}

	exists, err := s.products.Exists(ctx, pid)
	if err != nil {
		return nil, pid, storeError(ctx, err, nil, "check product")
	}
	if !exists {
		return nil, pid, apperrors.NotFound("Product not found")
	}

	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, pid, storeError(ctx, err, apperrors.NotFound("User not found"), "find user")
	}
	return user, pid, nil
}

func (s *wishlistServiceImpl) add(ctx context.Context, user *models.User, pid primitive.ObjectID) (*models.Wishlist, error) {
	wishlist, err := s.wishlists.AddItem(ctx, user.ID, pid)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperrors.Conflict("Product already in wishlist")
	}
	if err != nil {
		return nil, storeError(ctx, err, nil, "add wishlist item")
	}

	if user.Wishlist == nil || *user.Wishlist != wishlist.ID {
		if err := s.users.SetWishlist(ctx, user.ID, wishlist.ID); err != nil {
			return nil, storeError(ctx, err, nil, "attach wishlist to user")
		}
	}
	return wishlist, nil
}

// remove pulls the product and deletes the wishlist once it is empty.
// Returns repository.ErrNotFound when the product is not in the wishlist.
func (s *wishlistServiceImpl) remove(ctx context.Context, user *models.User, pid primitive.ObjectID) (*models.Wishlist, error) {
	wishlist, err := s.wishlists.RemoveItem(ctx, user.ID, pid)
	if err != nil {
		return nil, err
	}
	if len(wishlist.Products) > 0 {
		return wishlist, nil
	}

	deleted, err := s.wishlists.DeleteIfEmpty(ctx, wishlist.ID)
	if err != nil {
		return nil, err
	}
	if deleted {
		if err := s.users.UnsetWishlist(ctx, user.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	return wishlist, nil
}
