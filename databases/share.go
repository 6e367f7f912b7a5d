package databases

// go generate: mockery --name ShareDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menengai/fansite-api/models"
)

const shareName = "livestreamShares"

// ShareDatabase contains the methods to use with the share event database.
// Shares are append-only; there is no update or delete.
type ShareDatabase interface {
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.ShareEvent, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type shareDatabase struct {
	db DatabaseHelper
}

// NewShareDatabase initializes a new instance of share database with the provided db connection
func NewShareDatabase(db DatabaseHelper) ShareDatabase {
	return &shareDatabase{
		db: db,
	}
}

func (s *shareDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ShareEvent, error) {
	var shares []models.ShareEvent
	cr, err := s.db.Collection(shareName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&shares)
	if err != nil {
		return nil, err
	}
	return shares, nil
}

func (s *shareDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return s.db.Collection(shareName).InsertOne(ctx, document, opts...)
}

func (s *shareDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return s.db.Collection(shareName).CountDocuments(ctx, filter, opts...)
}
