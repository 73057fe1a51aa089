package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Variant struct {
	RAM   string  `json:"ram" bson:"ram"`
	Price float64 `json:"price" bson:"price"`
	Qty   int     `json:"qty" bson:"qty"`
}

// Valid reports whether the variant can be sold: a RAM label, a positive
// price and a non-negative quantity.
func (v Variant) Valid() bool {
	return v.RAM != "" && v.Price > 0 && v.Qty >= 0
}

type Product struct {
	ID          primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Name        string               `json:"name" bson:"name"`
	Description string               `json:"description" bson:"description"`
	Price       float64              `json:"price" bson:"price"`
	Images      []string             `json:"images" bson:"images"`
	ImageKeys   []string             `json:"-" bson:"image_keys"`
	CategoryIDs []primitive.ObjectID `json:"category" bson:"category"`
	Variants    []Variant            `json:"variants" bson:"variants"`
	CreatedAt   time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at" bson:"updated_at"`
}

// ProductDetail is a product with its categories populated.
type ProductDetail struct {
	Product  `bson:",inline"`
	Category []Category `json:"category" bson:"-"`
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products   []Product `json:"products"`
	TotalItems int64     `json:"totalItems"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}
