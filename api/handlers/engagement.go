package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/menengai/fansite-api/api"
	"github.com/menengai/fansite-api/config"
	"github.com/menengai/fansite-api/livefeed"
	"github.com/menengai/fansite-api/models"
)

// Engagement exported for testing purposes
type Engagement struct {
	Engine *livefeed.Engine
}

type toggleReactionRequest struct {
	UserID string `json:"userId"`
	Kind   string `json:"kind"`
}

type recordShareRequest struct {
	UserID   string `json:"userId"`
	Platform string `json:"platform"`
}

// ToggleReactionHandler flips the caller's reaction on a livestream and
// returns the new state plus the live count
func (e Engagement) ToggleReactionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	lID, err := primitive.ObjectIDFromHex(mux.Vars(r)["livestream_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req toggleReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}
	if req.UserID == "" {
		config.ErrorStatus("userId is required", http.StatusBadRequest, w, errors.New("missing userId"))
		return
	}
	kind := models.ReactionKind(req.Kind)
	if req.Kind == "" {
		kind = models.ReactionKindLike
	}

	present, count, err := e.Engine.ToggleReaction(ctx, lID, req.UserID, kind)
	if err != nil {
		if livefeed.IsValidation(err) {
			config.ErrorStatus("invalid reaction", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to toggle reaction", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]interface{}{
		"reacted": present,
		"count":   count,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReactionCountHandler returns the like count for a livestream
func (e Engagement) ReactionCountHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	lID, err := primitive.ObjectIDFromHex(mux.Vars(r)["livestream_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	counts, err := e.Engine.Engagement(ctx, lID)
	if err != nil {
		config.ErrorStatus("failed to count reactions", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]int64{"count": counts.Likes})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RecordShareHandler appends one share event for a livestream
func (e Engagement) RecordShareHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	lID, err := primitive.ObjectIDFromHex(mux.Vars(r)["livestream_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req recordShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}

	if err := e.Engine.RecordShare(ctx, lID, req.UserID, req.Platform); err != nil {
		if livefeed.IsValidation(err) {
			config.ErrorStatus("invalid share", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to record share", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	w.Write([]byte(`{"shared": true}`))
}

// EngagementHandler returns the like, share and view counters for a
// livestream
func (e Engagement) EngagementHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	lID, err := primitive.ObjectIDFromHex(mux.Vars(r)["livestream_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	counts, err := e.Engine.Engagement(ctx, lID)
	if err != nil {
		config.ErrorStatus("failed to get engagement", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(counts)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
