package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewsletterSubscriber holds the structure for the newsletterSubscribers
// collection in mongo. The collection carries a unique index on email.
type NewsletterSubscriber struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string             `bson:"email" json:"email"`
	Subscribed     bool               `bson:"subscribed" json:"subscribed"`
	SubscribedAt   primitive.DateTime `bson:"subscribedAt" json:"subscribedAt"`
	UnsubscribedAt interface{}        `bson:"unsubscribedAt,omitempty" json:"unsubscribedAt,omitempty"`
}
