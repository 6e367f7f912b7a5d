package databases

// go generate: mockery --name TourDateDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menengai/fansite-api/models"
)

const tourDateName = "tourDates"

// TourDateDatabase contains the methods to use with the tour date database
type TourDateDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.TourDate, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.TourDate, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (UpdateResultHelper, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
}

type tourDateDatabase struct {
	db DatabaseHelper
}

// NewTourDateDatabase initializes a new instance of tour date database with the provided db connection
func NewTourDateDatabase(db DatabaseHelper) TourDateDatabase {
	return &tourDateDatabase{
		db: db,
	}
}

func (t *tourDateDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.TourDate, error) {
	tourDate := &models.TourDate{}
	err := t.db.Collection(tourDateName).FindOne(ctx, filter, opts...).Decode(&tourDate)
	if err != nil {
		return nil, err
	}
	return tourDate, nil
}

func (t *tourDateDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.TourDate, error) {
	var tourDates []models.TourDate
	cr, err := t.db.Collection(tourDateName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&tourDates)
	if err != nil {
		return nil, err
	}
	return tourDates, nil
}

func (t *tourDateDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return t.db.Collection(tourDateName).InsertOne(ctx, document, opts...)
}

func (t *tourDateDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return t.db.Collection(tourDateName).UpdateOne(ctx, filter, update, opts...)
}

func (t *tourDateDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return t.db.Collection(tourDateName).DeleteOne(ctx, filter, opts...)
}
