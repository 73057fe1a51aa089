package repository

import (
	"context"
	"time"

	"storefront-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection("users")}
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	res, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return translate(err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UserRepository) SetCart(ctx context.Context, userID, cartID primitive.ObjectID) error {
	return r.update(ctx, userID, bson.M{"$set": bson.M{"cart": cartID, "updated_at": time.Now().UTC()}})
}

func (r *UserRepository) UnsetCart(ctx context.Context, userID primitive.ObjectID) error {
	return r.update(ctx, userID, bson.M{"$unset": bson.M{"cart": ""}, "$set": bson.M{"updated_at": time.Now().UTC()}})
}

func (r *UserRepository) SetWishlist(ctx context.Context, userID, wishlistID primitive.ObjectID) error {
	return r.update(ctx, userID, bson.M{"$set": bson.M{"wishlist": wishlistID, "updated_at": time.Now().UTC()}})
}

func (r *UserRepository) UnsetWishlist(ctx context.Context, userID primitive.ObjectID) error {
	return r.update(ctx, userID, bson.M{"$unset": bson.M{"wishlist": ""}, "$set": bson.M{"updated_at": time.Now().UTC()}})
}

func (r *UserRepository) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
