package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/menengai/fansite-api/api"
	"github.com/menengai/fansite-api/config"
	"github.com/menengai/fansite-api/livefeed"
)

// Chat exported for testing purposes
type Chat struct {
	Engine *livefeed.Engine
}

type postChatRequest struct {
	UserID    string `json:"userId"`
	GuestName string `json:"guestName"`
	Message   string `json:"message"`
}

type pinChatRequest struct {
	Pinned bool `json:"pinned"`
}

// authorFromRequest maps the registered-or-guest fields of a request body to
// the author shape. Registered wins when both are present.
func authorFromRequest(userID, guestName, guestEmail string) livefeed.Author {
	if userID != "" {
		return livefeed.Registered{UserID: userID}
	}
	return livefeed.Guest{Name: guestName, Email: guestEmail}
}

// ChatHandler returns the most recent chat messages for a livestream in
// display order
func (c Chat) ChatHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	lID, err := primitive.ObjectIDFromHex(mux.Vars(r)["livestream_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	msgs, err := c.Engine.LoadChat(ctx, lID)
	if err != nil {
		config.ErrorStatus("failed to get chat messages", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(msgs)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// PostChatHandler writes one chat message for a registered user or a guest
func (c Chat) PostChatHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	lID, err := primitive.ObjectIDFromHex(mux.Vars(r)["livestream_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req postChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}

	msg, err := c.Engine.PostChat(ctx, lID, authorFromRequest(req.UserID, req.GuestName, ""), req.Message)
	if err != nil {
		if livefeed.IsValidation(err) {
			config.ErrorStatus("invalid chat message", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to post chat message", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Debugf("chat message posted: %v", msg.ID.Hex())

	b, err := json.Marshal(msg)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// DeleteChatHandler soft-deletes one of the caller's own chat messages. The
// actor comes from the request body; messages the actor does not own are
// silently left alone.
func (c Chat) DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	msgID, err := primitive.ObjectIDFromHex(mux.Vars(r)["message_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}
	if req.UserID == "" {
		config.ErrorStatus("userId is required", http.StatusBadRequest, w, errors.New("missing userId"))
		return
	}

	if err := c.Engine.SoftDeleteChat(ctx, msgID, req.UserID); err != nil {
		config.ErrorStatus("failed to delete chat message", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": true}`))
}

// PinChatHandler pins or unpins a chat message (moderator route)
func (c Chat) PinChatHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	msgID, err := primitive.ObjectIDFromHex(mux.Vars(r)["message_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req pinChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}

	if err := c.Engine.SetChatPinned(ctx, msgID, req.Pinned); err != nil {
		config.ErrorStatus("failed to pin chat message", http.StatusNotFound, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(map[string]bool{"pinned": req.Pinned})
	w.Write(b)
}
