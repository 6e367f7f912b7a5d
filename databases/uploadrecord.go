package databases

// go generate: mockery --name UploadRecordDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menengai/fansite-api/models"
)

const uploadRecordName = "uploadRecords"

// UploadRecordDatabase contains the methods to use with the upload record database
type UploadRecordDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.UploadRecord, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.UploadRecord, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (UpdateResultHelper, error)
}

type uploadRecordDatabase struct {
	db DatabaseHelper
}

// NewUploadRecordDatabase initializes a new instance of upload record database with the provided db connection
func NewUploadRecordDatabase(db DatabaseHelper) UploadRecordDatabase {
	return &uploadRecordDatabase{
		db: db,
	}
}

func (u *uploadRecordDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.UploadRecord, error) {
	record := &models.UploadRecord{}
	err := u.db.Collection(uploadRecordName).FindOne(ctx, filter, opts...).Decode(&record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (u *uploadRecordDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.UploadRecord, error) {
	var records []models.UploadRecord
	cr, err := u.db.Collection(uploadRecordName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (u *uploadRecordDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return u.db.Collection(uploadRecordName).InsertOne(ctx, document, opts...)
}

func (u *uploadRecordDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return u.db.Collection(uploadRecordName).UpdateOne(ctx, filter, update, opts...)
}
