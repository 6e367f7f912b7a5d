package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment holds the structure for the livestreamComments collection in mongo.
// Threading is capped at one level: a comment either has no parent (top-level)
// or references a top-level comment on the same livestream.
type Comment struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	LivestreamID primitive.ObjectID  `bson:"livestreamId" json:"livestreamId"`
	ParentID     *primitive.ObjectID `bson:"parentId,omitempty" json:"parentId,omitempty"`
	UserID       string              `bson:"userId,omitempty" json:"userId,omitempty"`
	GuestName    string              `bson:"guestName,omitempty" json:"guestName,omitempty"`
	GuestEmail   string              `bson:"guestEmail,omitempty" json:"guestEmail,omitempty"`
	Comment      string              `bson:"comment" json:"comment"`
	LikeCount    int64               `bson:"likeCount" json:"likeCount"`
	IsDeleted    bool                `bson:"isDeleted" json:"isDeleted"`
	CreatedAt    primitive.DateTime  `bson:"createdAt" json:"createdAt"`
}

// IsReply reports whether the comment references a parent comment.
func (c Comment) IsReply() bool {
	return c.ParentID != nil
}

// AuthorName returns the display name for the comment author, handling both
// the registered and guest arms of the author shape.
func (c Comment) AuthorName() string {
	if c.UserID != "" {
		return "User"
	}
	if c.GuestName != "" {
		return c.GuestName
	}
	return "Anonymous"
}

// OwnedBy reports whether the given actor authored this comment.
func (c Comment) OwnedBy(actorID string) bool {
	return actorID != "" && c.UserID == actorID
}

// CommentThread is a top-level comment bundled with its replies for display.
type CommentThread struct {
	Comment Comment   `json:"comment"`
	Replies []Comment `json:"replies"`
}
