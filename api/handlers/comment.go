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

// Comment exported for testing purposes
type Comment struct {
	Engine *livefeed.Engine
}

type postCommentRequest struct {
	UserID     string `json:"userId"`
	GuestName  string `json:"guestName"`
	GuestEmail string `json:"guestEmail"`
	Comment    string `json:"comment"`
	ParentID   string `json:"parentId"`
}

// CommentsHandler returns the comment threads for a livestream, newest
// top-level comment first
func (c Comment) CommentsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	lID, err := primitive.ObjectIDFromHex(mux.Vars(r)["livestream_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	comments, err := c.Engine.LoadComments(ctx, lID)
	if err != nil {
		config.ErrorStatus("failed to get comments", http.StatusInternalServerError, w, err)
		return
	}

	feed := livefeed.NewCommentFeed()
	feed.Reset(comments)

	b, err := json.Marshal(feed.Threads())
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// PostCommentHandler writes one comment, optionally as a reply to a top-level
// comment on the same livestream
func (c Comment) PostCommentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	lID, err := primitive.ObjectIDFromHex(mux.Vars(r)["livestream_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req postCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("invalid request body", http.StatusBadRequest, w, err)
		return
	}

	var parentID *primitive.ObjectID
	if req.ParentID != "" {
		pID, err := primitive.ObjectIDFromHex(req.ParentID)
		if err != nil {
			config.ErrorStatus("invalid parentId", http.StatusBadRequest, w, err)
			return
		}
		parentID = &pID
	}

	comment, err := c.Engine.PostComment(ctx, lID,
		authorFromRequest(req.UserID, req.GuestName, req.GuestEmail), req.Comment, parentID)
	if err != nil {
		if livefeed.IsValidation(err) {
			config.ErrorStatus("invalid comment", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to post comment", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Debugf("comment posted: %v", comment.ID.Hex())

	b, err := json.Marshal(comment)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// DeleteCommentHandler soft-deletes one of the caller's own comments
func (c Comment) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	commentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["comment_id"])
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

	if err := c.Engine.SoftDeleteComment(ctx, commentID, req.UserID); err != nil {
		config.ErrorStatus("failed to delete comment", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": true}`))
}

// ToggleCommentLikeHandler flips the caller's like on a comment
func (c Comment) ToggleCommentLikeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	commentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["comment_id"])
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

	liked, count, err := c.Engine.ToggleCommentLike(ctx, commentID, req.UserID)
	if err != nil {
		config.ErrorStatus("failed to toggle comment like", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]interface{}{
		"liked": liked,
		"count": count,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
