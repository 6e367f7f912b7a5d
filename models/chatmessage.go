package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMessage holds the structure for the livestreamChatMessages collection
// in mongo. A message is authored either by a registered user (UserID set) or
// by a guest (GuestName set); the two are mutually exclusive.
type ChatMessage struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LivestreamID primitive.ObjectID `bson:"livestreamId" json:"livestreamId"`
	UserID       string             `bson:"userId,omitempty" json:"userId,omitempty"`
	GuestName    string             `bson:"guestName,omitempty" json:"guestName,omitempty"`
	Message      string             `bson:"message" json:"message"`
	IsDeleted    bool               `bson:"isDeleted" json:"isDeleted"`
	IsPinned     bool               `bson:"isPinned" json:"isPinned"`
	CreatedAt    primitive.DateTime `bson:"createdAt" json:"createdAt"`
}

// AuthorName returns the display name for the message author, handling both
// the registered and guest arms of the author shape.
func (m ChatMessage) AuthorName() string {
	if m.UserID != "" {
		return "User"
	}
	if m.GuestName != "" {
		return m.GuestName
	}
	return "Anonymous"
}

// OwnedBy reports whether the given actor authored this message. Guest
// messages have no owner and can never be deleted by an actor.
func (m ChatMessage) OwnedBy(actorID string) bool {
	return actorID != "" && m.UserID == actorID
}
