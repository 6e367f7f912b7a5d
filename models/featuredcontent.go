package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeaturedContent holds the structure for the featuredContent collection in
// mongo. Each document backs one tab of the homepage featured rail.
type FeaturedContent struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TabName      string             `bson:"tabName" json:"tabName"`
	Title        string             `bson:"title" json:"title"`
	Subtitle     string             `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL     string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	BadgeText    string             `bson:"badgeText,omitempty" json:"badgeText,omitempty"`
	ButtonText   string             `bson:"buttonText,omitempty" json:"buttonText,omitempty"`
	ButtonURL    string             `bson:"buttonUrl,omitempty" json:"buttonUrl,omitempty"`
	PriceCents   int64              `bson:"priceCents,omitempty" json:"priceCents,omitempty"`
	Currency     string             `bson:"currency,omitempty" json:"currency,omitempty"`
	Active       bool               `bson:"active" json:"active"`
	DisplayOrder int                `bson:"displayOrder" json:"displayOrder"`
	CreatedAt    primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt    primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}
