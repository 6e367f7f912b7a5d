package databases

// go generate: mockery --name OrderDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menengai/fansite-api/models"
)

const orderName = "orders"

// OrderDatabase contains the methods to use with the order database
type OrderDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Order, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Order, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (UpdateResultHelper, error)
}

type orderDatabase struct {
	db DatabaseHelper
}

// NewOrderDatabase initializes a new instance of order database with the provided db connection
func NewOrderDatabase(db DatabaseHelper) OrderDatabase {
	return &orderDatabase{
		db: db,
	}
}

func (o *orderDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Order, error) {
	order := &models.Order{}
	err := o.db.Collection(orderName).FindOne(ctx, filter, opts...).Decode(&order)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (o *orderDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Order, error) {
	var orders []models.Order
	cr, err := o.db.Collection(orderName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&orders)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (o *orderDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return o.db.Collection(orderName).InsertOne(ctx, document, opts...)
}

func (o *orderDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return o.db.Collection(orderName).UpdateOne(ctx, filter, update, opts...)
}
