package databases

// go generate: mockery --name FeaturedContentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menengai/fansite-api/models"
)

const featuredContentName = "featuredContent"

// FeaturedContentDatabase contains the methods to use with the featured content database
type FeaturedContentDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.FeaturedContent, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.FeaturedContent, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (UpdateResultHelper, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
}

type featuredContentDatabase struct {
	db DatabaseHelper
}

// NewFeaturedContentDatabase initializes a new instance of featured content database with the provided db connection
func NewFeaturedContentDatabase(db DatabaseHelper) FeaturedContentDatabase {
	return &featuredContentDatabase{
		db: db,
	}
}

func (f *featuredContentDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.FeaturedContent, error) {
	content := &models.FeaturedContent{}
	err := f.db.Collection(featuredContentName).FindOne(ctx, filter, opts...).Decode(&content)
	if err != nil {
		return nil, err
	}
	return content, nil
}

func (f *featuredContentDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.FeaturedContent, error) {
	var content []models.FeaturedContent
	cr, err := f.db.Collection(featuredContentName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&content)
	if err != nil {
		return nil, err
	}
	return content, nil
}

func (f *featuredContentDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return f.db.Collection(featuredContentName).InsertOne(ctx, document, opts...)
}

func (f *featuredContentDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return f.db.Collection(featuredContentName).UpdateOne(ctx, filter, update, opts...)
}

func (f *featuredContentDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return f.db.Collection(featuredContentName).DeleteOne(ctx, filter, opts...)
}
