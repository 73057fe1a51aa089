package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

type Cart struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Products  []CartItem         `json:"products" bson:"products"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// PopulatedCartItem is a cart line with the full product in place of its id.
type PopulatedCartItem struct {
	Product  Product `json:"productId"`
	Quantity int     `json:"quantity"`
}

type CartView struct {
	ID       primitive.ObjectID  `json:"_id,omitempty"`
	UserID   primitive.ObjectID  `json:"user_id,omitempty"`
	Products []PopulatedCartItem `json:"products"`
}
