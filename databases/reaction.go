package databases

// go generate: mockery --name ReactionDatabase
// go generate: mockery --name CommentLikeDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menengai/fansite-api/models"
)

const (
	reactionName    = "livestreamReactions"
	commentLikeName = "commentLikes"
)

// ReactionDatabase contains the methods to use with the reaction database.
// The backing collection carries a unique index on
// (livestreamId, actorId, kind); InsertOne surfaces the duplicate-key error
// unwrapped so callers can detect it.
type ReactionDatabase interface {
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Reaction, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type reactionDatabase struct {
	db DatabaseHelper
}

// NewReactionDatabase initializes a new instance of reaction database with the provided db connection
func NewReactionDatabase(db DatabaseHelper) ReactionDatabase {
	return &reactionDatabase{
		db: db,
	}
}

func (r *reactionDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Reaction, error) {
	var reactions []models.Reaction
	cr, err := r.db.Collection(reactionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&reactions)
	if err != nil {
		return nil, err
	}
	return reactions, nil
}

func (r *reactionDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return r.db.Collection(reactionName).InsertOne(ctx, document, opts...)
}

func (r *reactionDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return r.db.Collection(reactionName).DeleteOne(ctx, filter, opts...)
}

func (r *reactionDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return r.db.Collection(reactionName).CountDocuments(ctx, filter, opts...)
}

// CommentLikeDatabase contains the methods to use with the comment like
// database, unique over (commentId, actorId).
type CommentLikeDatabase interface {
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type commentLikeDatabase struct {
	db DatabaseHelper
}

// NewCommentLikeDatabase initializes a new instance of comment like database with the provided db connection
func NewCommentLikeDatabase(db DatabaseHelper) CommentLikeDatabase {
	return &commentLikeDatabase{
		db: db,
	}
}

func (c *commentLikeDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(commentLikeName).InsertOne(ctx, document, opts...)
}

func (c *commentLikeDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return c.db.Collection(commentLikeName).DeleteOne(ctx, filter, opts...)
}

func (c *commentLikeDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(commentLikeName).CountDocuments(ctx, filter, opts...)
}
