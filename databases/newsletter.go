package databases

// go generate: mockery --name NewsletterDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menengai/fansite-api/models"
)

const newsletterName = "newsletterSubscribers"

// NewsletterDatabase contains the methods to use with the newsletter
// subscriber database. The backing collection carries a unique index on
// email; InsertOne surfaces the duplicate-key error unwrapped.
type NewsletterDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.NewsletterSubscriber, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.NewsletterSubscriber, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (UpdateResultHelper, error)
}

type newsletterDatabase struct {
	db DatabaseHelper
}

// NewNewsletterDatabase initializes a new instance of newsletter database with the provided db connection
func NewNewsletterDatabase(db DatabaseHelper) NewsletterDatabase {
	return &newsletterDatabase{
		db: db,
	}
}

func (n *newsletterDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.NewsletterSubscriber, error) {
	subscriber := &models.NewsletterSubscriber{}
	err := n.db.Collection(newsletterName).FindOne(ctx, filter, opts...).Decode(&subscriber)
	if err != nil {
		return nil, err
	}
	return subscriber, nil
}

func (n *newsletterDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.NewsletterSubscriber, error) {
	var subscribers []models.NewsletterSubscriber
	cr, err := n.db.Collection(newsletterName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&subscribers)
	if err != nil {
		return nil, err
	}
	return subscribers, nil
}

func (n *newsletterDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return n.db.Collection(newsletterName).InsertOne(ctx, document, opts...)
}

func (n *newsletterDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return n.db.Collection(newsletterName).UpdateOne(ctx, filter, update, opts...)
}
