package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product holds the structure for the products collection in mongo
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	PriceCents  int64              `bson:"priceCents" json:"priceCents"`
	Currency    string             `bson:"currency" json:"currency"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	InStock     bool               `bson:"inStock" json:"inStock"`
	Featured    bool               `bson:"featured" json:"featured"`
	CreatedAt   primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt   primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}
