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

	"github.com/menengai/fansite-api/api"
	"github.com/menengai/fansite-api/config"
	"github.com/menengai/fansite-api/databases"
	"github.com/menengai/fansite-api/models"
)

// FeaturedContent exported for testing purposes
type FeaturedContent struct {
	DB databases.FeaturedContentDatabase
}

// FeaturedContentHandler returns the featured rail entries ordered by display
// position. Only active entries are returned unless ?all=true is passed.
func (f FeaturedContent) FeaturedContentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{"active": true}
	if r.URL.Query().Get("all") == "true" {
		filter = bson.M{}
	}

	dbResp, err := f.DB.Find(ctx, filter,
		&options.FindOptions{Sort: bson.D{{Key: "displayOrder", Value: 1}}})
	if err != nil {
		config.ErrorStatus("failed to get featured content", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.FeaturedContent{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// FeaturedContentByTabHandler returns the active entry for one tab
func (f FeaturedContent) FeaturedContentByTabHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	tabName := mux.Vars(r)["tab_name"]

	dbResp, err := f.DB.FindOne(ctx, bson.M{"tabName": tabName, "active": true})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("featured content not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get featured content", http.StatusInternalServerError, w, err)
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

// CreateFeaturedContentHandler adds a featured rail entry
func (f FeaturedContent) CreateFeaturedContentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var content models.FeaturedContent
	if err := json.NewDecoder(r.Body).Decode(&content); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}
	if content.TabName == "" || content.Title == "" {
		config.ErrorStatus("tabName and title are required", http.StatusBadRequest, w, nil)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	content.ID = primitive.NewObjectID()
	content.CreatedAt = now
	content.UpdatedAt = now

	if _, err := f.DB.InsertOne(ctx, content); err != nil {
		config.ErrorStatus("failed to create featured content", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(content)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdateFeaturedContentHandler updates a featured rail entry
func (f FeaturedContent) UpdateFeaturedContentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	fID, err := primitive.ObjectIDFromHex(mux.Vars(r)["featured_content_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req struct {
		TabName      *string `json:"tabName"`
		Title        *string `json:"title"`
		Subtitle     *string `json:"subtitle"`
		Description  *string `json:"description"`
		ImageURL     *string `json:"imageUrl"`
		BadgeText    *string `json:"badgeText"`
		ButtonText   *string `json:"buttonText"`
		ButtonURL    *string `json:"buttonUrl"`
		PriceCents   *int64  `json:"priceCents"`
		Currency     *string `json:"currency"`
		Active       *bool   `json:"active"`
		DisplayOrder *int    `json:"displayOrder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}

	updateFields := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	if req.TabName != nil {
		updateFields["tabName"] = *req.TabName
	}
	if req.Title != nil {
		updateFields["title"] = *req.Title
	}
	if req.Subtitle != nil {
		updateFields["subtitle"] = *req.Subtitle
	}
	if req.Description != nil {
		updateFields["description"] = *req.Description
	}
	if req.ImageURL != nil {
		updateFields["imageUrl"] = *req.ImageURL
	}
	if req.BadgeText != nil {
		updateFields["badgeText"] = *req.BadgeText
	}
	if req.ButtonText != nil {
		updateFields["buttonText"] = *req.ButtonText
	}
	if req.ButtonURL != nil {
		updateFields["buttonUrl"] = *req.ButtonURL
	}
	if req.PriceCents != nil {
		updateFields["priceCents"] = *req.PriceCents
	}
	if req.Currency != nil {
		updateFields["currency"] = *req.Currency
	}
	if req.Active != nil {
		updateFields["active"] = *req.Active
	}
	if req.DisplayOrder != nil {
		updateFields["displayOrder"] = *req.DisplayOrder
	}

	res, err := f.DB.UpdateOne(ctx, bson.M{"_id": fID}, bson.M{"$set": updateFields})
	if err != nil {
		config.ErrorStatus("failed to update featured content", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount() == 0 {
		config.ErrorStatus("featured content not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"updated": true}`))
}

// DeleteFeaturedContentHandler removes a featured rail entry
func (f FeaturedContent) DeleteFeaturedContentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	fID, err := primitive.ObjectIDFromHex(mux.Vars(r)["featured_content_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	deleted, err := f.DB.DeleteOne(ctx, bson.M{"_id": fID})
	if err != nil {
		config.ErrorStatus("failed to delete featured content", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("featured content not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": true}`))
}
