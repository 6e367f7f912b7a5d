package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShareEvent holds the structure for the livestreamShares collection in
// mongo. Rows are append-only; the share counter for a stream is the number
// of rows referencing it.
type ShareEvent struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LivestreamID primitive.ObjectID `bson:"livestreamId" json:"livestreamId"`
	ActorID      string             `bson:"actorId,omitempty" json:"actorId,omitempty"`
	Platform     string             `bson:"platform" json:"platform"`
	CreatedAt    primitive.DateTime `bson:"createdAt" json:"createdAt"`
}

// EngagementCounts bundles the engagement counters for one livestream.
type EngagementCounts struct {
	Likes  int64 `json:"likes"`
	Shares int64 `json:"shares"`
	Views  int64 `json:"views"`
}
