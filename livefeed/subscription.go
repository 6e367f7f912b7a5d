package livefeed

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/menengai/fansite-api/models"
)

// ChatHandlers receives chat change-feed events. Handlers for events the
// caller does not care about may be nil.
type ChatHandlers struct {
	OnInsert func(models.ChatMessage)
	OnUpdate func(models.ChatMessage)
	OnDelete func(primitive.ObjectID)
}

// CommentHandlers receives comment change-feed events.
type CommentHandlers struct {
	OnInsert func(models.Comment)
	OnUpdate func(models.Comment)
	OnDelete func(primitive.ObjectID)
}

// Subscription is the handle for one standing change feed. It is owned by
// the viewing session that opened it and must be closed when that session
// stops observing; a leaked subscription keeps delivering events alongside
// any newer subscription on the same stream.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Close tears the feed down and waits for the pump goroutine to exit.
// Closing more than once is harmless.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

// Done exposes the pump's completion channel.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

type chatChangeEvent struct {
	OperationType string             `bson:"operationType"`
	FullDocument  models.ChatMessage `bson:"fullDocument"`
	DocumentKey   documentKey        `bson:"documentKey"`
}

type commentChangeEvent struct {
	OperationType string         `bson:"operationType"`
	FullDocument  models.Comment `bson:"fullDocument"`
	DocumentKey   documentKey    `bson:"documentKey"`
}

type documentKey struct {
	ID primitive.ObjectID `bson:"_id"`
}

// streamPipeline filters change events server-side to one livestream. Delete
// events carry no full document and pass through on operation type; they are
// rare because the site only ever soft-deletes.
func streamPipeline(streamID primitive.ObjectID) interface{} {
	return bson.A{
		bson.M{"$match": bson.M{"$or": bson.A{
			bson.M{"fullDocument.livestreamId": streamID},
			bson.M{"operationType": "delete"},
		}}},
	}
}

func streamOptions() *options.ChangeStreamOptions {
	// updateLookup so update events carry the whole row, not just the diff
	return options.ChangeStream().SetFullDocument(options.UpdateLookup)
}

// SubscribeChat opens a standing change feed for one stream's chat and
// dispatches events to the handlers until the subscription is closed. Events
// that fail to decode are logged and skipped; the feed keeps delivering.
func (e *Engine) SubscribeChat(ctx context.Context, streamID primitive.ObjectID, h ChatHandlers) (*Subscription, error) {
	cs, err := e.Chat.Watch(ctx, streamPipeline(streamID), streamOptions())
	if err != nil {
		return nil, storeErr("watch chat", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		defer cs.Close(context.Background())
		for cs.Next(ctx) {
			var ev chatChangeEvent
			if err := cs.Decode(&ev); err != nil {
				zap.S().Warnw("failed to decode chat change event", "error", err)
				continue
			}
			dispatchChat(ev, h)
		}
		if err := cs.Err(); err != nil && ctx.Err() == nil {
			zap.S().Errorw("chat change feed stopped", "livestreamId", streamID.Hex(), "error", err)
		}
	}()
	return sub, nil
}

// SubscribeComments opens a standing change feed for one stream's comments.
func (e *Engine) SubscribeComments(ctx context.Context, streamID primitive.ObjectID, h CommentHandlers) (*Subscription, error) {
	cs, err := e.Comments.Watch(ctx, streamPipeline(streamID), streamOptions())
	if err != nil {
		return nil, storeErr("watch comments", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		defer cs.Close(context.Background())
		for cs.Next(ctx) {
			var ev commentChangeEvent
			if err := cs.Decode(&ev); err != nil {
				zap.S().Warnw("failed to decode comment change event", "error", err)
				continue
			}
			dispatchComment(ev, h)
		}
		if err := cs.Err(); err != nil && ctx.Err() == nil {
			zap.S().Errorw("comment change feed stopped", "livestreamId", streamID.Hex(), "error", err)
		}
	}()
	return sub, nil
}

func dispatchChat(ev chatChangeEvent, h ChatHandlers) {
	switch ev.OperationType {
	case "insert":
		if h.OnInsert != nil {
			h.OnInsert(ev.FullDocument)
		}
	case "update", "replace":
		if h.OnUpdate != nil {
			h.OnUpdate(ev.FullDocument)
		}
	case "delete":
		if h.OnDelete != nil {
			h.OnDelete(ev.DocumentKey.ID)
		}
	}
}

func dispatchComment(ev commentChangeEvent, h CommentHandlers) {
	switch ev.OperationType {
	case "insert":
		if h.OnInsert != nil {
			h.OnInsert(ev.FullDocument)
		}
	case "update", "replace":
		if h.OnUpdate != nil {
			h.OnUpdate(ev.FullDocument)
		}
	case "delete":
		if h.OnDelete != nil {
			h.OnDelete(ev.DocumentKey.ID)
		}
	}
}
