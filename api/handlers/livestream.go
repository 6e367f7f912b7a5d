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
	"github.com/menengai/fansite-api/livefeed"
	"github.com/menengai/fansite-api/models"
)

// Livestream exported for testing purposes
type Livestream struct {
	DB     databases.LivestreamDatabase
	Engine *livefeed.Engine
}

// LivestreamsHandler returns all livestreams, optionally filtered by status
func (l Livestream) LivestreamsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		s := models.LivestreamStatus(status)
		if !s.IsValid() {
			config.ErrorStatus("invalid status filter", http.StatusBadRequest, w, nil)
			return
		}
		filter["status"] = s
	}

	dbResp, err := l.DB.Find(ctx, filter,
		&options.FindOptions{Sort: bson.D{{Key: "scheduledAt", Value: -1}}})
	if err != nil {
		config.ErrorStatus("failed to get livestreams", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Livestream{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// LivestreamByIDHandler returns a livestream by ID
func (l Livestream) LivestreamByIDHandler(w http.ResponseWriter, r *http.Request) {
	livestreamID := mux.Vars(r)["livestream_id"]

	zap.S().Debugf("livestream_id: %v", livestreamID)

	lID, err := primitive.ObjectIDFromHex(livestreamID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := l.DB.FindOne(r.Context(), bson.M{"_id": lID})
	if err != nil {
		config.ErrorStatus("failed to get livestream by ID", http.StatusNotFound, w, err)
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

// LivestreamBySlugHandler returns a livestream by its URL slug
func (l Livestream) LivestreamBySlugHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	if slug == "" {
		config.ErrorStatus("slug is required", http.StatusBadRequest, w, nil)
		return
	}

	dbResp, err := l.DB.FindOne(r.Context(), bson.M{"slug": slug})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("livestream not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get livestream by slug", http.StatusInternalServerError, w, err)
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

// CreateLivestreamHandler creates a new livestream
func (l Livestream) CreateLivestreamHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var stream models.Livestream
	if err := json.NewDecoder(r.Body).Decode(&stream); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}
	if stream.Title == "" || stream.Slug == "" {
		config.ErrorStatus("title and slug are required", http.StatusBadRequest, w, nil)
		return
	}
	if stream.Status == "" {
		stream.Status = models.LivestreamStatusUpcoming
	}
	if !stream.Status.IsValid() {
		config.ErrorStatus("invalid livestream status", http.StatusBadRequest, w, nil)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	stream.ID = primitive.NewObjectID()
	stream.ViewCount = 0
	stream.CreatedAt = now
	stream.UpdatedAt = now

	if _, err := l.DB.InsertOne(ctx, stream); err != nil {
		config.ErrorStatus("failed to create livestream", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("livestream created",
		"livestreamId", stream.ID.Hex(),
		"slug", stream.Slug,
	)

	b, err := json.Marshal(stream)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdateLivestreamHandler updates mutable livestream fields
func (l Livestream) UpdateLivestreamHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	lID, err := primitive.ObjectIDFromHex(mux.Vars(r)["livestream_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req struct {
		Title        *string                  `json:"title"`
		Description  *string                  `json:"description"`
		Status       *models.LivestreamStatus `json:"status"`
		VideoID      *string                  `json:"videoId"`
		ThumbnailURL *string                  `json:"thumbnailUrl"`
		ScheduledAt  *primitive.DateTime      `json:"scheduledAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}

	updateFields := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	if req.Title != nil {
		updateFields["title"] = *req.Title
	}
	if req.Description != nil {
		updateFields["description"] = *req.Description
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			config.ErrorStatus("invalid livestream status", http.StatusBadRequest, w, nil)
			return
		}
		updateFields["status"] = *req.Status
		if *req.Status == models.LivestreamStatusEnded {
			updateFields["endedAt"] = primitive.NewDateTimeFromTime(time.Now())
		}
	}
	if req.VideoID != nil {
		updateFields["videoId"] = *req.VideoID
	}
	if req.ThumbnailURL != nil {
		updateFields["thumbnailUrl"] = *req.ThumbnailURL
	}
	if req.ScheduledAt != nil {
		updateFields["scheduledAt"] = *req.ScheduledAt
	}

	res, err := l.DB.UpdateOne(ctx, bson.M{"_id": lID}, bson.M{"$set": updateFields})
	if err != nil {
		config.ErrorStatus("failed to update livestream", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount() == 0 {
		config.ErrorStatus("livestream not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"updated": true}`))
}

// DeleteLivestreamHandler removes a livestream document
func (l Livestream) DeleteLivestreamHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	lID, err := primitive.ObjectIDFromHex(mux.Vars(r)["livestream_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	deleted, err := l.DB.DeleteOne(ctx, bson.M{"_id": lID})
	if err != nil {
		config.ErrorStatus("failed to delete livestream", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("livestream not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	zap.S().Infow("livestream deleted", "livestreamId", lID.Hex())

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": true}`))
}

// IncrementViewsHandler bumps a livestream's view counter
func (l Livestream) IncrementViewsHandler(w http.ResponseWriter, r *http.Request) {
	lID, err := primitive.ObjectIDFromHex(mux.Vars(r)["livestream_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	if err := l.Engine.IncrementViews(r.Context(), lID); err != nil {
		config.ErrorStatus("failed to increment views", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"counted": true}`))
}
