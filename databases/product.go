package databases

// go generate: mockery --name ProductDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menengai/fansite-api/models"
)

const productName = "products"

// ProductDatabase contains the methods to use with the product database
type ProductDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Product, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Product, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (UpdateResultHelper, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
}

type productDatabase struct {
	db DatabaseHelper
}

// NewProductDatabase initializes a new instance of product database with the provided db connection
func NewProductDatabase(db DatabaseHelper) ProductDatabase {
	return &productDatabase{
		db: db,
	}
}

func (p *productDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Product, error) {
	product := &models.Product{}
	err := p.db.Collection(productName).FindOne(ctx, filter, opts...).Decode(&product)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (p *productDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Product, error) {
	var products []models.Product
	cr, err := p.db.Collection(productName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&products)
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (p *productDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return p.db.Collection(productName).InsertOne(ctx, document, opts...)
}

func (p *productDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return p.db.Collection(productName).UpdateOne(ctx, filter, update, opts...)
}

func (p *productDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return p.db.Collection(productName).DeleteOne(ctx, filter, opts...)
}
