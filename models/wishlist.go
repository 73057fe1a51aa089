package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WishlistItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
}

type Wishlist struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Products  []WishlistItem     `json:"products" bson:"products"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

type PopulatedWishlistItem struct {
	Product Product `json:"productId"`
}
