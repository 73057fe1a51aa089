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

// Cart actions accepted by Dispatch. Anything else is treated as an add.
const (
	CartActionIncrement = "increment"
	CartActionDecrement = "decrement"
)

type CartService interface {
	Add(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error)
	Get(ctx context.Context, userID string) (*models.CartView, error)
	Remove(ctx context.Context, userID, productID string) (*models.Cart, error)
	Increment(ctx context.Context, userID, productID string) (*models.Cart, error)
	Decrement(ctx context.Context, userID, productID string) (*models.Cart, error)
	Dispatch(ctx context.Context, userID, action, productID string, quantity int) (*models.Cart, error)
}

type cartServiceImpl struct {
	carts    repository.CartRepo
	users    repository.UserRepo
	products repository.ProductRepo
}

func NewCartService(carts repository.CartRepo, users repository.UserRepo, products repository.ProductRepo) CartService {
	return &cartServiceImpl{carts: carts, users: users, products: products}
}

func (s *cartServiceImpl) Dispatch(ctx context.Context, userID, action, productID string, quantity int) (*models.Cart, error) {
	switch action {
	case CartActionIncrement:
		return s.Increment(ctx, userID, productID)
	case CartActionDecrement:
		return s.Decrement(ctx, userID, productID)
	default:
		return s.Add(ctx, userID, productID, quantity)
	}
}

func (s *cartServiceImpl) Add(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	uid, err := parseObjectID(userID, apperrors.NotFound("User not found"))
	if err != nil {
		return nil, err
	}
	pid, err := parseObjectID(productID, apperrors.NotFound("Product not found"))
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		quantity = 1
	}

	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, storeError(ctx, err, apperrors.NotFound("User not found"), "find user")
	}
	exists, err := s.products.Exists(ctx, pid)
	if err != nil {
		return nil, storeError(ctx, err, nil, "check product")
	}
	if !exists {
		return nil, apperrors.NotFound("Product not found")
	}

	cart, err := s.carts.AddItem(ctx, uid, pid, quantity)
	if err != nil {
		return nil, storeError(ctx, err, nil, "add cart item")
	}

	if user.Cart == nil || *user.Cart != cart.ID {
		if err := s.users.SetCart(ctx, uid, cart.ID); err != nil {
			return nil, storeError(ctx, err, nil, "attach cart to user")
		}
	}

	logger.Debug(ctx, "Cart item added",
		zap.String("user_id", userID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
	)
	return cart, nil
}

// Get returns an empty cart view when the user has no cart.
func (s *cartServiceImpl) Get(ctx context.Context, userID string) (*models.CartView, error) {
	uid, err := parseObjectID(userID, apperrors.NotFound("User not found"))
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.FindByUser(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.CartView{Products: []models.PopulatedCartItem{}}, nil
	}
	if err != nil {
		return nil, storeError(ctx, err, nil, "find cart")
	}

	ids := make([]primitive.ObjectID, 0, len(cart.Products))
	for _, item := range cart.Products {
		ids = append(ids, item.ProductID)
	}
	byID, err := productsByID(ctx, s.products, ids)
	if err != nil {
		return nil, err
	}

	view := &models.CartView{ID: cart.ID, UserID: cart.UserID, Products: make([]models.PopulatedCartItem, 0, len(cart.Products))}
	for _, item := range cart.Products {
		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		view.Products = append(view.Products, models.PopulatedCartItem{Product: product, Quantity: item.Quantity})
	}
	return view, nil
}

func (s *cartServiceImpl) Remove(ctx context.Context, userID, productID string) (*models.Cart, error) {
	uid, pid, err := s.lineItemIDs(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.RemoveItem(ctx, uid, pid)
	if err != nil {
		return nil, storeError(ctx, err, apperrors.NotFound("Product not found in cart"), "remove cart item")
	}

	if len(cart.Products) == 0 {
		deleted, err := s.carts.DeleteIfEmpty(ctx, cart.ID)
		if err != nil {
			return nil, storeError(ctx, err, nil, "delete empty cart")
		}
		if deleted {
			if err := s.users.UnsetCart(ctx, uid); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, storeError(ctx, err, nil, "detach cart from user")
			}
		}
	}
	return cart, nil
}

func (s *cartServiceImpl) Increment(ctx context.Context, userID, productID string) (*models.Cart, error) {
	uid, pid, err := s.lineItemIDs(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.IncrementItem(ctx, uid, pid)
	if err != nil {
		return nil, storeError(ctx, err, apperrors.NotFound("Product not found in cart"), "increment cart item")
	}
	return cart, nil
}

func (s *cartServiceImpl) Decrement(ctx context.Context, userID, productID string) (*models.Cart, error) {
	uid, pid, err := s.lineItemIDs(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.DecrementItem(ctx, uid, pid)
	if err != nil {
		return nil, storeError(ctx, err, apperrors.NotFound("Product not found in cart"), "decrement cart item")
	}
	return cart, nil
}

// lineItemIDs parses both ids and confirms the user has a cart, so a
// missing cart and a missing line report different messages.
func (s *cartServiceImpl) lineItemIDs(ctx context.Context, userID, productID string) (primitive.ObjectID, primitive.ObjectID, error) {
	uid, err := parseObjectID(userID, apperrors.NotFound("User not found"))
	if err != nil {
		return uid, primitive.NilObjectID, err
	}
	pid, err := parseObjectID(productID, apperrors.NotFound("Product not found in cart"))
	if err != nil {
		return uid, pid, err
	}
	if _, err := s.carts.FindByUser(ctx, uid); err != nil {
		return uid, pid, storeError(ctx, err, apperrors.NotFound("Cart not found"), "find cart")
	}
	return uid, pid, nil
}

// productsByID loads the given products keyed by id.
func productsByID(ctx context.Context, products repository.ProductRepo, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	found, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeError(ctx, err, nil, "load products")
	}
	byID := make(map[primitive.ObjectID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	return byID, nil
}
