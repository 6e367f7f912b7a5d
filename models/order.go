package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus represents the standardized states of a merch order
type OrderStatus string

// Predefined OrderStatus values
const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
)

// IsValid checks if the OrderStatus value is one of the predefined constants
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled, OrderStatusShipped:
		return true
	}
	return false
}

// OrderItem is one product line inside an order
type OrderItem struct {
	ProductID  primitive.ObjectID `bson:"productId" json:"productId"`
	Name       string             `bson:"name" json:"name"`
	Quantity   int64              `bson:"quantity" json:"quantity"`
	PriceCents int64              `bson:"priceCents" json:"priceCents"`
}

// Order holds the structure for the orders collection in mongo
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email           string             `bson:"email" json:"email"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalCents      int64              `bson:"totalCents" json:"totalCents"`
	Currency        string             `bson:"currency" json:"currency"`
	Status          OrderStatus        `bson:"status" json:"status"`
	CheckoutSession string             `bson:"checkoutSession,omitempty" json:"checkoutSession,omitempty"`
	CreatedAt       primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt       primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}
