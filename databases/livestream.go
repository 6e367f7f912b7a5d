package databases

// go generate: mockery --name LivestreamDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menengai/fansite-api/models"
)

const livestreamName = "livestreams"

// LivestreamDatabase contains the methods to use with the livestream database
type LivestreamDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Livestream, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Livestream, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (UpdateResultHelper, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
}

type livestreamDatabase struct {
	db DatabaseHelper
}

// NewLivestreamDatabase initializes a new instance of livestream database with the provided db connection
func NewLivestreamDatabase(db DatabaseHelper) LivestreamDatabase {
	return &livestreamDatabase{
		db: db,
	}
}

func (l *livestreamDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Livestream, error) {
	stream := &models.Livestream{}
	err := l.db.Collection(livestreamName).FindOne(ctx, filter, opts...).Decode(&stream)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (l *livestreamDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Livestream, error) {
	var streams []models.Livestream
	cr, err := l.db.Collection(livestreamName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&streams)
	if err != nil {
		return nil, err
	}
	return streams, nil
}

func (l *livestreamDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return l.db.Collection(livestreamName).InsertOne(ctx, document, opts...)
}

func (l *livestreamDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return l.db.Collection(livestreamName).UpdateOne(ctx, filter, update, opts...)
}

func (l *livestreamDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return l.db.Collection(livestreamName).DeleteOne(ctx, filter, opts...)
}
