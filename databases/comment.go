package databases

// go generate: mockery --name CommentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menengai/fansite-api/models"
)

const commentName = "livestreamComments"

// CommentDatabase contains the methods to use with the comment database
type CommentDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Comment, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Comment, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (UpdateResultHelper, error)
	Watch(context.Context, interface{}, ...*options.ChangeStreamOptions) (ChangeStreamHelper, error)
}

type commentDatabase struct {
	db DatabaseHelper
}

// NewCommentDatabase initializes a new instance of comment database with the provided db connection
func NewCommentDatabase(db DatabaseHelper) CommentDatabase {
	return &commentDatabase{
		db: db,
	}
}

func (c *commentDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Comment, error) {
	comment := &models.Comment{}
	err := c.db.Collection(commentName).FindOne(ctx, filter, opts...).Decode(&comment)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (c *commentDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Comment, error) {
	var comments []models.Comment
	cr, err := c.db.Collection(commentName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&comments)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *commentDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(commentName).InsertOne(ctx, document, opts...)
}

func (c *commentDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return c.db.Collection(commentName).UpdateOne(ctx, filter, update, opts...)
}

func (c *commentDatabase) Watch(ctx context.Context, pipeline interface{}, opts ...*options.ChangeStreamOptions) (ChangeStreamHelper, error) {
	return c.db.Collection(commentName).Watch(ctx, pipeline, opts...)
}
