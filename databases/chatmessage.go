package databases

// go generate: mockery --name ChatMessageDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menengai/fansite-api/models"
)

const chatMessageName = "livestreamChatMessages"

// ChatMessageDatabase contains the methods to use with the chat message database
type ChatMessageDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.ChatMessage, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.ChatMessage, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (UpdateResultHelper, error)
	Watch(context.Context, interface{}, ...*options.ChangeStreamOptions) (ChangeStreamHelper, error)
}

type chatMessageDatabase struct {
	db DatabaseHelper
}

// NewChatMessageDatabase initializes a new instance of chat message database with the provided db connection
func NewChatMessageDatabase(db DatabaseHelper) ChatMessageDatabase {
	return &chatMessageDatabase{
		db: db,
	}
}

func (c *chatMessageDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{}
	err := c.db.Collection(chatMessageName).FindOne(ctx, filter, opts...).Decode(&msg)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *chatMessageDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	cr, err := c.db.Collection(chatMessageName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&msgs)
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *chatMessageDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(chatMessageName).InsertOne(ctx, document, opts...)
}

func (c *chatMessageDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return c.db.Collection(chatMessageName).UpdateOne(ctx, filter, update, opts...)
}

func (c *chatMessageDatabase) Watch(ctx context.Context, pipeline interface{}, opts ...*options.ChangeStreamOptions) (ChangeStreamHelper, error) {
	return c.db.Collection(chatMessageName).Watch(ctx, pipeline, opts...)
}
