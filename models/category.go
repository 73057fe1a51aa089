package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Category struct {
	ID            primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Name          string               `json:"name" bson:"name"`
	Subcategories []primitive.ObjectID `json:"subcategories" bson:"subcategories"`
}

type Subcategory struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	CategoryID primitive.ObjectID `json:"category" bson:"category"`
}

// SubcategoryRef is the {_id, name} projection used in category listings.
type SubcategoryRef struct {
	ID   primitive.ObjectID `json:"_id" bson:"_id"`
	Name string             `json:"name" bson:"name"`
}

// CategoryListing is a category with its subcategories projected.
type CategoryListing struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id"`
	Name          string             `json:"name" bson:"name"`
	Subcategories []SubcategoryRef   `json:"subcategories" bson:"subcategories"`
}

// SubcategoryDetail is a subcategory with its owning category populated.
type SubcategoryDetail struct {
	ID       primitive.ObjectID `json:"_id"`
	Name     string             `json:"name"`
	Category Category           `json:"category"`
}
