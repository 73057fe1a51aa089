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

// maxUpsertRetries bounds the $inc/$push loop when concurrent writers race
// to create the same cart.
const maxUpsertRetries = 3

type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{collection: db.Collection("carts")}
}

func (r *CartRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart); err != nil {
		return nil, translate(err)
	}
	return &cart, nil
}

func (r *CartRepository) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	for attempt := 0; attempt < maxUpsertRetries; attempt++ {
		cart, err := r.incrementBy(ctx, userID, productID, quantity)
		if !errors.Is(err, ErrNotFound) {
			return cart, err
		}

		// No line for the product yet: append it, creating the cart if needed.
		// The $ne guard keeps a concurrent append from producing a second line;
		// the unique user_id index turns that race into a duplicate-key error.
		cart, err = r.findOneAndUpdate(ctx,
			bson.M{"user_id": userID, "products.productId": bson.M{"$ne": productID}},
			bson.M{
				"$push": bson.M{"products": models.CartItem{ProductID: productID, Quantity: quantity}},
				"$set":  bson.M{"updated_at": time.Now().UTC()},
			},
			true,
		)
		if !errors.Is(err, ErrDuplicate) {
			return cart, err
		}
	}
	return nil, ErrDuplicate
}

func (r *CartRepository) IncrementItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	return r.incrementBy(ctx, userID, productID, 1)
}

func (r *CartRepository) DecrementItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	cart, err := r.findOneAndUpdate(ctx,
		bson.M{
			"user_id":  userID,
			"products": bson.M{"$elemMatch": bson.M{"productId": productID, "quantity": bson.M{"$gt": 1}}},
		},
		bson.M{
			"$inc": bson.M{"products.$.quantity": -1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		false,
	)
	if !errors.Is(err, ErrNotFound) {
		return cart, err
	}

	// Either the line is already at the floor of 1 or it does not exist.
	var current models.Cart
	err = r.collection.FindOne(ctx, bson.M{"user_id": userID, "products.productId": productID}).Decode(&current)
	if err != nil {
		return nil, translate(err)
	}
	return &current, nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{"user_id": userID, "products.productId": productID},
		bson.M{
			"$pull": bson.M{"products": bson.M{"productId": productID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
		false,
	)
}

func (r *CartRepository) DeleteIfEmpty(ctx context.Context, cartID primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": cartID, "products": bson.M{"$size": 0}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *CartRepository) incrementBy(ctx context.Context, userID, productID primitive.ObjectID, delta int) (*models.Cart, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{"user_id": userID, "products.productId": productID},
		bson.M{
			"$inc": bson.M{"products.$.quantity": delta},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		false,
	)
}

func (r *CartRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M, upsert bool) (*models.Cart, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetUpsert(upsert)

	var cart models.Cart
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&cart); err != nil {
		return nil, translate(err)
	}
	return &cart, nil
}
