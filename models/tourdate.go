package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TourDate holds the structure for the tourDates collection in mongo
type TourDate struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	City      string             `bson:"city" json:"city"`
	Venue     string             `bson:"venue" json:"venue"`
	Country   string             `bson:"country" json:"country"`
	Date      primitive.DateTime `bson:"date" json:"date"`
	TicketURL string             `bson:"ticketUrl,omitempty" json:"ticketUrl,omitempty"`
	SoldOut   bool               `bson:"soldOut" json:"soldOut"`
	CreatedAt primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}
