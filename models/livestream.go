package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LivestreamStatus represents the standardized lifecycle states of a livestream
type LivestreamStatus string

// Predefined LivestreamStatus values
const (
	LivestreamStatusUpcoming LivestreamStatus = "UPCOMING"
	LivestreamStatusLive     LivestreamStatus = "LIVE"
	LivestreamStatusEnded    LivestreamStatus = "ENDED"
)

// ValidLivestreamStatuses returns all valid LivestreamStatus values
func ValidLivestreamStatuses() []LivestreamStatus {
	return []LivestreamStatus{
		LivestreamStatusUpcoming,
		LivestreamStatusLive,
		LivestreamStatusEnded,
	}
}

// IsValid checks if the LivestreamStatus value is one of the predefined constants
func (s LivestreamStatus) IsValid() bool {
	for _, validStatus := range ValidLivestreamStatuses() {
		if s == validStatus {
			return true
		}
	}
	return false
}

// String returns the string representation of the LivestreamStatus
func (s LivestreamStatus) String() string {
	return string(s)
}

// Livestream holds the structure for the livestreams collection in mongo.
// A livestream is the broadcast entity that chat, comments and engagement
// counters attach to; replays keep the same document after the stream ends.
type Livestream struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Slug         string             `bson:"slug" json:"slug"`
	Description  string             `bson:"description" json:"description"`
	Status       LivestreamStatus   `bson:"status" json:"status"`
	VideoID      string             `bson:"videoId,omitempty" json:"videoId,omitempty"`
	ThumbnailURL string             `bson:"thumbnailUrl,omitempty" json:"thumbnailUrl,omitempty"`
	ScheduledAt  primitive.DateTime `bson:"scheduledAt" json:"scheduledAt"`
	EndedAt      interface{}        `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
	ViewCount    int64              `bson:"viewCount" json:"viewCount"`
	CreatedAt    primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt    primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}
