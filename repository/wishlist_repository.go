package repository

import (
	"context"
	"errors"
	"time"

	"storefront-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WishlistRepository struct {
	collection *mongo.Collection
}

func NewWishlistRepository(db *mongo.Database) *WishlistRepository {
	return &WishlistRepository{collection: db.Collection("wishlists")}
}

func (r *WishlistRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	if err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&wishlist); err != nil {
		return nil, translate(err)
	}
	return &wishlist, nil
}

// AddItem appends productID to the user's wishlist, creating the wishlist
// when the user has none. ErrDuplicate means the product is already listed.
func (r *WishlistRepository) AddItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error) {
	item := models.WishlistItem{ProductID: productID}
	for attempt := 0; attempt < maxUpsertRetries; attempt++ {
		wishlist, err := r.findOneAndUpdate(ctx,
			bson.M{"user_id": userID, "products.productId": bson.M{"$ne": productID}},
			bson.M{
				"$push": bson.M{"products": item},
				"$set":  bson.M{"updated_at": time.Now().UTC()},
			},
			false,
		)
		if !errors.Is(err, ErrNotFound) {
			return wishlist, err
		}

		// Nothing matched: the product is already listed or there is no wishlist.
		current, err := r.FindByUser(ctx, userID)
		switch {
		case err == nil && containsProduct(current, productID):
			return nil, ErrDuplicate
		case err == nil:
			continue
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}

		// The upsert only inserts when no wishlist exists for the user, so a
		// missing user_id index cannot leave the user with two wishlists.
		wishlist, err = r.findOneAndUpdate(ctx,
			bson.M{"user_id": userID},
			bson.M{
				"$setOnInsert": bson.M{"products": []models.WishlistItem{item}},
				"$set":         bson.M{"updated_at": time.Now().UTC()},
			},
			true,
		)
		if errors.Is(err, ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if containsProduct(wishlist, productID) {
			return wishlist, nil
		}
	}
	return nil, ErrDuplicate
}

func (r *WishlistRepository) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{"user_id": userID, "products.productId": productID},
		bson.M{
			"$pull": bson.M{"products": bson.M{"productId": productID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
		false,
	)
}

func (r *WishlistRepository) DeleteIfEmpty(ctx context.Context, wishlistID primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": wishlistID, "products": bson.M{"$size": 0}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *WishlistRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M, upsert bool) (*models.Wishlist, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetUpsert(upsert)

	var wishlist models.Wishlist
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&wishlist); err != nil {
		return nil, translate(err)
	}
	return &wishlist, nil
}

func containsProduct(wishlist *models.Wishlist, productID primitive.ObjectID) bool {
	for _, item := range wishlist.Products {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
