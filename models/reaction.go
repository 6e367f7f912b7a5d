package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReactionKind represents the standardized types of reactions
type ReactionKind string

// Predefined ReactionKind values
const (
	ReactionKindLike ReactionKind = "LIKE"
)

// IsValid checks if the ReactionKind value is one of the predefined constants
func (k ReactionKind) IsValid() bool {
	return k == ReactionKindLike
}

// String returns the string representation of the ReactionKind
func (k ReactionKind) String() string {
	return string(k)
}

// Reaction holds the structure for the livestreamReactions collection in
// mongo. The collection carries a unique index over
// (livestreamId, actorId, kind) so a repeated insert surfaces as a
// duplicate-key error, which the toggle path converts into a removal.
type Reaction struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LivestreamID primitive.ObjectID `bson:"livestreamId" json:"livestreamId"`
	ActorID      string             `bson:"actorId" json:"actorId"`
	Kind         ReactionKind       `bson:"kind" json:"kind"`
	CreatedAt    primitive.DateTime `bson:"createdAt" json:"createdAt"`
}

// CommentLike holds the structure for the commentLikes collection in mongo,
// unique over (commentId, actorId).
type CommentLike struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommentID primitive.ObjectID `bson:"commentId" json:"commentId"`
	ActorID   string             `bson:"actorId" json:"actorId"`
	CreatedAt primitive.DateTime `bson:"createdAt" json:"createdAt"`
}
