package livefeed

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menengai/fansite-api/databases"
	"github.com/menengai/fansite-api/models"
)

// Message length caps, matching the inputs the site enforces.
const (
	ChatMaxLen    = 500
	CommentMaxLen = 2000
)

// chatInitialLimit caps the initial chat load to the most recent messages.
const chatInitialLimit = 100

// Engine coordinates the live interaction state for livestreams: chat,
// threaded comments, reactions and share counters. It holds no persistent
// state of its own; every operation is a store round trip.
type Engine struct {
	Chat         databases.ChatMessageDatabase
	Comments     databases.CommentDatabase
	Reactions    databases.ReactionDatabase
	CommentLikes databases.CommentLikeDatabase
	Shares       databases.ShareDatabase
	Streams      databases.LivestreamDatabase
}

// LoadChat returns the most recent non-deleted chat messages for a stream in
// ascending creation order, capped at the initial-load limit.
func (e *Engine) LoadChat(ctx context.Context, streamID primitive.ObjectID) ([]models.ChatMessage, error) {
	limit := int64(chatInitialLimit)
	msgs, err := e.Chat.Find(ctx,
		bson.M{"livestreamId": streamID, "isDeleted": false},
		&options.FindOptions{
			Sort:  bson.D{{Key: "createdAt", Value: -1}},
			Limit: &limit,
		})
	if err != nil {
		return nil, storeErr("load chat", err)
	}
	// query is newest-first to apply the cap; display order is ascending
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// LoadComments returns all non-deleted comments for a stream, newest first.
func (e *Engine) LoadComments(ctx context.Context, streamID primitive.ObjectID) ([]models.Comment, error) {
	comments, err := e.Comments.Find(ctx,
		bson.M{"livestreamId": streamID, "isDeleted": false},
		&options.FindOptions{Sort: bson.D{{Key: "createdAt", Value: -1}}})
	if err != nil {
		return nil, storeErr("load comments", err)
	}
	return comments, nil
}

// PostChat validates and writes one chat message. The created message is
// returned and will also arrive through the change feed; feeds dedupe by id
// so it is never rendered twice.
func (e *Engine) PostChat(ctx context.Context, streamID primitive.ObjectID, author Author, body string) (*models.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &ValidationError{Field: "message", Reason: "must not be empty"}
	}
	// characters, not bytes; multibyte messages count by rune
	if utf8.RuneCountInString(body) > ChatMaxLen {
		return nil, &ValidationError{Field: "message", Reason: "exceeds maximum length"}
	}

	msg := models.ChatMessage{
		ID:           primitive.NewObjectID(),
		LivestreamID: streamID,
		Message:      body,
		CreatedAt:    primitive.NewDateTimeFromTime(time.Now()),
	}
	switch a := author.(type) {
	case Registered:
		if a.UserID == "" {
			return nil, &ValidationError{Field: "author", Reason: "missing user id"}
		}
		msg.UserID = a.UserID
	case Guest:
		if strings.TrimSpace(a.Name) == "" {
			return nil, &ValidationError{Field: "author", Reason: "guest name required"}
		}
		msg.GuestName = strings.TrimSpace(a.Name)
	default:
		return nil, &ValidationError{Field: "author", Reason: "missing author"}
	}

	if _, err := e.Chat.InsertOne(ctx, msg); err != nil {
		return nil, storeErr("post chat", err)
	}
	return &msg, nil
}

// PostComment validates and writes one comment, optionally as a reply. A
// reply's parent must be a top-level comment on the same stream.
func (e *Engine) PostComment(ctx context.Context, streamID primitive.ObjectID, author Author, body string, parentID *primitive.ObjectID) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &ValidationError{Field: "comment", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(body) > CommentMaxLen {
		return nil, &ValidationError{Field: "comment", Reason: "exceeds maximum length"}
	}

	comment := models.Comment{
		ID:           primitive.NewObjectID(),
		LivestreamID: streamID,
		Comment:      body,
		CreatedAt:    primitive.NewDateTimeFromTime(time.Now()),
	}
	switch a := author.(type) {
	case Registered:
		if a.UserID == "" {
			return nil, &ValidationError{Field: "author", Reason: "missing user id"}
		}
		comment.UserID = a.UserID
	case Guest:
		if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Email) == "" {
			return nil, &ValidationError{Field: "author", Reason: "guest name and email required"}
		}
		comment.GuestName = strings.TrimSpace(a.Name)
		comment.GuestEmail = strings.TrimSpace(a.Email)
	default:
		return nil, &ValidationError{Field: "author", Reason: "missing author"}
	}

	if parentID != nil {
		parent, err := e.Comments.FindOne(ctx, bson.M{"_id": *parentID})
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, &ValidationError{Field: "parentId", Reason: "parent comment not found"}
			}
			return nil, storeErr("find parent comment", err)
		}
		if parent.LivestreamID != streamID {
			return nil, &ValidationError{Field: "parentId", Reason: "parent belongs to another stream"}
		}
		if parent.IsReply() {
			return nil, &ValidationError{Field: "parentId", Reason: "replies cannot be nested"}
		}
		comment.ParentID = parentID
	}

	if _, err := e.Comments.InsertOne(ctx, comment); err != nil {
		return nil, storeErr("post comment", err)
	}
	return &comment, nil
}

// SoftDeleteChat marks a chat message deleted, but only when the actor is its
// author. The ownership check rides on the update filter; a non-owner update
// matches zero documents and the call succeeds without effect.
func (e *Engine) SoftDeleteChat(ctx context.Context, msgID primitive.ObjectID, actorID string) error {
	_, err := e.Chat.UpdateOne(ctx,
		bson.M{"_id": msgID, "userId": actorID},
		bson.M{"$set": bson.M{"isDeleted": true}})
	if err != nil {
		return storeErr("delete chat message", err)
	}
	return nil
}

// SoftDeleteComment marks a comment deleted using the same owner-filtered
// update as chat.
func (e *Engine) SoftDeleteComment(ctx context.Context, commentID primitive.ObjectID, actorID string) error {
	_, err := e.Comments.UpdateOne(ctx,
		bson.M{"_id": commentID, "userId": actorID},
		bson.M{"$set": bson.M{"isDeleted": true}})
	if err != nil {
		return storeErr("delete comment", err)
	}
	return nil
}

// SetChatPinned pins or unpins a chat message. Moderator-only; route
// middleware enforces that, not the engine.
func (e *Engine) SetChatPinned(ctx context.Context, msgID primitive.ObjectID, pinned bool) error {
	res, err := e.Chat.UpdateOne(ctx,
		bson.M{"_id": msgID},
		bson.M{"$set": bson.M{"isPinned": pinned}})
	if err != nil {
		return storeErr("pin chat message", err)
	}
	if res.MatchedCount() == 0 {
		return storeErr("pin chat message", mongo.ErrNoDocuments)
	}
	return nil
}

// ToggleReaction flips the actor's reaction on a stream. The insert races
// against the unique index; a duplicate key means the reaction already exists
// and is removed instead. Returns whether the reaction is now present and the
// stream's current count.
func (e *Engine) ToggleReaction(ctx context.Context, streamID primitive.ObjectID, actorID string, kind models.ReactionKind) (bool, int64, error) {
	if !kind.IsValid() {
		return false, 0, &ValidationError{Field: "kind", Reason: "unknown reaction kind"}
	}

	present := true
	_, err := e.Reactions.InsertOne(ctx, models.Reaction{
		ID:           primitive.NewObjectID(),
		LivestreamID: streamID,
		ActorID:      actorID,
		Kind:         kind,
		CreatedAt:    primitive.NewDateTimeFromTime(time.Now()),
	})
	if err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return false, 0, storeErr("insert reaction", err)
		}
		// already reacted: the toggle removes it
		if _, err := e.Reactions.DeleteOne(ctx, bson.M{
			"livestreamId": streamID,
			"actorId":      actorID,
			"kind":         kind,
		}); err != nil {
			return false, 0, storeErr("remove reaction", err)
		}
		present = false
	}

	count, err := e.Reactions.CountDocuments(ctx, bson.M{"livestreamId": streamID, "kind": kind})
	if err != nil {
		return present, 0, storeErr("count reactions", err)
	}
	return present, count, nil
}

// ToggleCommentLike flips the actor's like on a comment and keeps the
// comment's denormalized like counter in step.
func (e *Engine) ToggleCommentLike(ctx context.Context, commentID primitive.ObjectID, actorID string) (bool, int64, error) {
	present := true
	delta := int64(1)
	_, err := e.CommentLikes.InsertOne(ctx, models.CommentLike{
		ID:        primitive.NewObjectID(),
		CommentID: commentID,
		ActorID:   actorID,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	})
	if err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return false, 0, storeErr("insert comment like", err)
		}
		if _, err := e.CommentLikes.DeleteOne(ctx, bson.M{
			"commentId": commentID,
			"actorId":   actorID,
		}); err != nil {
			return false, 0, storeErr("remove comment like", err)
		}
		present = false
		delta = -1
	}

	if _, err := e.Comments.UpdateOne(ctx,
		bson.M{"_id": commentID},
		bson.M{"$inc": bson.M{"likeCount": delta}}); err != nil {
		return present, 0, storeErr("update like count", err)
	}

	count, err := e.CommentLikes.CountDocuments(ctx, bson.M{"commentId": commentID})
	if err != nil {
		return present, 0, storeErr("count comment likes", err)
	}
	return present, count, nil
}

// RecordShare appends one share event. Share rows are write-only; the caller
// bumps its local counter optimistically and never reads this row back.
func (e *Engine) RecordShare(ctx context.Context, streamID primitive.ObjectID, actorID, platform string) error {
	platform = strings.TrimSpace(platform)
	if platform == "" {
		return &ValidationError{Field: "platform", Reason: "must not be empty"}
	}
	_, err := e.Shares.InsertOne(ctx, models.ShareEvent{
		ID:           primitive.NewObjectID(),
		LivestreamID: streamID,
		ActorID:      actorID,
		Platform:     platform,
		CreatedAt:    primitive.NewDateTimeFromTime(time.Now()),
	})
	if err != nil {
		return storeErr("record share", err)
	}
	return nil
}

// Engagement returns the like, share and view counters for one stream.
func (e *Engine) Engagement(ctx context.Context, streamID primitive.ObjectID) (models.EngagementCounts, error) {
	likes, err := e.Reactions.CountDocuments(ctx, bson.M{"livestreamId": streamID, "kind": models.ReactionKindLike})
	if err != nil {
		return models.EngagementCounts{}, storeErr("count reactions", err)
	}
	shares, err := e.Shares.CountDocuments(ctx, bson.M{"livestreamId": streamID})
	if err != nil {
		return models.EngagementCounts{}, storeErr("count shares", err)
	}
	stream, err := e.Streams.FindOne(ctx, bson.M{"_id": streamID})
	if err != nil {
		return models.EngagementCounts{}, storeErr("find stream", err)
	}
	return models.EngagementCounts{Likes: likes, Shares: shares, Views: stream.ViewCount}, nil
}

// IncrementViews bumps the stream's view counter by one.
func (e *Engine) IncrementViews(ctx context.Context, streamID primitive.ObjectID) error {
	_, err := e.Streams.UpdateOne(ctx,
		bson.M{"_id": streamID},
		bson.M{"$inc": bson.M{"viewCount": 1}})
	if err != nil {
		return storeErr("increment views", err)
	}
	return nil
}
