package databases

// go generate: mockery --name AudiobookDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menengai/fansite-api/models"
)

const audiobookName = "audiobooks"

// AudiobookDatabase contains the methods to use with the audiobook database
type AudiobookDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Audiobook, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Audiobook, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (UpdateResultHelper, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
}

type audiobookDatabase struct {
	db DatabaseHelper
}

// NewAudiobookDatabase initializes a new instance of audiobook database with the provided db connection
func NewAudiobookDatabase(db DatabaseHelper) AudiobookDatabase {
	return &audiobookDatabase{
		db: db,
	}
}

func (a *audiobookDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Audiobook, error) {
	audiobook := &models.Audiobook{}
	err := a.db.Collection(audiobookName).FindOne(ctx, filter, opts...).Decode(&audiobook)
	if err != nil {
		return nil, err
	}
	return audiobook, nil
}

func (a *audiobookDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Audiobook, error) {
	var audiobooks []models.Audiobook
	cr, err := a.db.Collection(audiobookName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&audiobooks)
	if err != nil {
		return nil, err
	}
	return audiobooks, nil
}

func (a *audiobookDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return a.db.Collection(audiobookName).InsertOne(ctx, document, opts...)
}

func (a *audiobookDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return a.db.Collection(audiobookName).UpdateOne(ctx, filter, update, opts...)
}

func (a *audiobookDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return a.db.Collection(audiobookName).DeleteOne(ctx, filter, opts...)
}
