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

// Audiobook exported for testing purposes
type Audiobook struct {
	DB databases.AudiobookDatabase
}

// AudiobooksHandler returns the audiobook catalog, optionally filtered by
// category, featured or premium
func (a Audiobook) AudiobooksHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{}
	if raw := r.URL.Query().Get("category"); raw != "" {
		category := models.AudiobookCategory(raw)
		if !category.IsValid() {
			config.ErrorStatus("invalid category filter", http.StatusBadRequest, w, nil)
			return
		}
		filter["category"] = category
	}
	if r.URL.Query().Get("featured") == "true" {
		filter["featured"] = true
	}
	if r.URL.Query().Get("premium") == "true" {
		filter["premium"] = true
	}

	dbResp, err := a.DB.Find(ctx, filter,
		&options.FindOptions{Sort: bson.D{{Key: "createdAt", Value: -1}}})
	if err != nil {
		config.ErrorStatus("failed to get audiobooks", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Audiobook{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AudiobookByIDHandler returns an audiobook by ID
func (a Audiobook) AudiobookByIDHandler(w http.ResponseWriter, r *http.Request) {
	audiobookID := mux.Vars(r)["audiobook_id"]

	zap.S().Debugf("audiobook_id: %v", audiobookID)

	aID, err := primitive.ObjectIDFromHex(audiobookID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := a.DB.FindOne(r.Context(), bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to get audiobook by ID", http.StatusNotFound, w, err)
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

// CreateAudiobookHandler adds a new audiobook to the catalog
func (a Audiobook) CreateAudiobookHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var audiobook models.Audiobook
	if err := json.NewDecoder(r.Body).Decode(&audiobook); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}
	if audiobook.Title == "" {
		config.ErrorStatus("title is required", http.StatusBadRequest, w, nil)
		return
	}
	if !audiobook.Category.IsValid() {
		config.ErrorStatus("invalid category", http.StatusBadRequest, w, nil)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	audiobook.ID = primitive.NewObjectID()
	audiobook.ListenCount = 0
	audiobook.CreatedAt = now
	audiobook.UpdatedAt = now

	if _, err := a.DB.InsertOne(ctx, audiobook); err != nil {
		config.ErrorStatus("failed to create audiobook", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(audiobook)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdateAudiobookHandler updates an existing audiobook
func (a Audiobook) UpdateAudiobookHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	aID, err := primitive.ObjectIDFromHex(mux.Vars(r)["audiobook_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req struct {
		Title           *string `json:"title"`
		Author          *string `json:"author"`
		Narrator        *string `json:"narrator"`
		Description     *string `json:"description"`
		Category        *string `json:"category"`
		CoverImageURL   *string `json:"coverImageUrl"`
		AudioURL        *string `json:"audioUrl"`
		DurationMinutes *int    `json:"durationMinutes"`
		Premium         *bool   `json:"premium"`
		Featured        *bool   `json:"featured"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}

	updateFields := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	if req.Title != nil {
		updateFields["title"] = *req.Title
	}
	if req.Author != nil {
		updateFields["author"] = *req.Author
	}
	if req.Narrator != nil {
		updateFields["narrator"] = *req.Narrator
	}
	if req.Description != nil {
		updateFields["description"] = *req.Description
	}
	if req.Category != nil {
		category := models.AudiobookCategory(*req.Category)
		if !category.IsValid() {
			config.ErrorStatus("invalid category", http.StatusBadRequest, w, nil)
			return
		}
		updateFields["category"] = category
	}
	if req.CoverImageURL != nil {
		updateFields["coverImageUrl"] = *req.CoverImageURL
	}
	if req.AudioURL != nil {
		updateFields["audioUrl"] = *req.AudioURL
	}
	if req.DurationMinutes != nil {
		updateFields["durationMinutes"] = *req.DurationMinutes
	}
	if req.Premium != nil {
		updateFields["premium"] = *req.Premium
	}
	if req.Featured != nil {
		updateFields["featured"] = *req.Featured
	}

	res, err := a.DB.UpdateOne(ctx, bson.M{"_id": aID}, bson.M{"$set": updateFields})
	if err != nil {
		config.ErrorStatus("failed to update audiobook", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount() == 0 {
		config.ErrorStatus("audiobook not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"updated": true}`))
}

// DeleteAudiobookHandler removes an audiobook
func (a Audiobook) DeleteAudiobookHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	aID, err := primitive.ObjectIDFromHex(mux.Vars(r)["audiobook_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	deleted, err := a.DB.DeleteOne(ctx, bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to delete audiobook", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("audiobook not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": true}`))
}

// RecordListenHandler bumps the listen counter for an audiobook
func (a Audiobook) RecordListenHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	aID, err := primitive.ObjectIDFromHex(mux.Vars(r)["audiobook_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	res, err := a.DB.UpdateOne(ctx, bson.M{"_id": aID}, bson.M{"$inc": bson.M{"listenCount": 1}})
	if err != nil {
		config.ErrorStatus("failed to record listen", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount() == 0 {
		config.ErrorStatus("audiobook not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"counted": true}`))
}
