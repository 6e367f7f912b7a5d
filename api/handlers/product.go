package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/menengai/fansite-api/api"
	"github.com/menengai/fansite-api/config"
	"github.com/menengai/fansite-api/databases"
	"github.com/menengai/fansite-api/models"
)

// Product exported for testing purposes
type Product struct {
	DB databases.ProductDatabase
}

// ProductsHandler returns all products, optionally only the featured ones
func (p Product) ProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{}
	if r.URL.Query().Get("featured") == "true" {
		filter["featured"] = true
	}

	dbResp, err := p.DB.Find(ctx, filter,
		&options.FindOptions{Sort: bson.D{{Key: "createdAt", Value: -1}}})
	if err != nil {
		config.ErrorStatus("failed to get products", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Product{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ProductByIDHandler returns a product by ID
func (p Product) ProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["product_id"]

	zap.S().Debugf("product_id: %v", productID)

	pID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := p.DB.FindOne(r.Context(), bson.M{"_id": pID})
	if err != nil {
		config.ErrorStatus("failed to get product by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateProductHandler creates a new product
func (p Product) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}
	if product.Name == "" || product.PriceCents <= 0 {
		config.ErrorStatus("name and a positive price are required", http.StatusBadRequest, w, nil)
		return
	}
	if product.Currency == "" {
		product.Currency = "usd"
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := p.DB.InsertOne(ctx, product); err != nil {
		config.ErrorStatus("failed to create product", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(product)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdateProductHandler updates an existing product
func (p Product) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	pID, err := primitive.ObjectIDFromHex(mux.Vars(r)["product_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		PriceCents  *int64  `json:"priceCents"`
		ImageURL    *string `json:"imageUrl"`
		InStock     *bool   `json:"inStock"`
		Featured    *bool   `json:"featured"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}

	updateFields := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	if req.Name != nil {
		updateFields["name"] = *req.Name
	}
	if req.Description != nil {
		updateFields["description"] = *req.Description
	}
	if req.PriceCents != nil {
		if *req.PriceCents <= 0 {
			config.ErrorStatus("price must be positive", http.StatusBadRequest, w, nil)
			return
		}
		updateFields["priceCents"] = *req.PriceCents
	}
	if req.ImageURL != nil {
		updateFields["imageUrl"] = *req.ImageURL
	}
	if req.InStock != nil {
		updateFields["inStock"] = *req.InStock
	}
	if req.Featured != nil {
		updateFields["featured"] = *req.Featured
	}

	res, err := p.DB.UpdateOne(ctx, bson.M{"_id": pID}, bson.M{"$set": updateFields})
	if err != nil {
		config.ErrorStatus("failed to update product", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount() == 0 {
		config.ErrorStatus("product not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"updated": true}`))
}

// DeleteProductHandler removes a product
func (p Product) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	pID, err := primitive.ObjectIDFromHex(mux.Vars(r)["product_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	deleted, err := p.DB.DeleteOne(ctx, bson.M{"_id": pID})
	if err != nil {
		config.ErrorStatus("failed to delete product", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("product not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": true}`))
}
