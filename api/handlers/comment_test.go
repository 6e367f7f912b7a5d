package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/menengai/fansite-api/api/handlers"
	"github.com/menengai/fansite-api/databases"
	"github.com/menengai/fansite-api/databases/mocks"
	"github.com/menengai/fansite-api/livefeed"
	"github.com/menengai/fansite-api/models"
)

func commentEngine(db databases.DatabaseHelper) *livefeed.Engine {
	return &livefeed.Engine{
		Comments:     databases.NewCommentDatabase(db),
		CommentLikes: databases.NewCommentLikeDatabase(db),
	}
}

func TestComment_CommentsHandlerBadID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/livestream/1234/comments", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "1234"})

	u := handlers.Comment{Engine: commentEngine(&MockDatabaseHelper{})}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CommentsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	assert.Contains(t, rr.Body.String(), "failed to get objectID from Hex")
}

func TestComment_CommentsHandlerThreads(t *testing.T) {
	streamID, _ := primitive.ObjectIDFromHex("5fc51f36c72ff10004dca381")
	req, err := http.NewRequest("GET", fmt.Sprintf("/api/v1/livestream/%s/comments", streamID.Hex()), nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": streamID.Hex()})

	first := models.Comment{ID: primitive.NewObjectID(), LivestreamID: streamID, Comment: "first", CreatedAt: 1000}
	second := models.Comment{ID: primitive.NewObjectID(), LivestreamID: streamID, Comment: "second", CreatedAt: 2000}
	reply := models.Comment{ID: primitive.NewObjectID(), LivestreamID: streamID, ParentID: &first.ID, Comment: "a reply", CreatedAt: 1500}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Comment)
		*arg = []models.Comment{second, reply, first}
	})
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.On("Collection", "livestreamComments").Return(conn)

	u := handlers.Comment{Engine: commentEngine(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CommentsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var threads []models.CommentThread
	_ = json.Unmarshal(rr.Body.Bytes(), &threads)
	assert.Len(t, threads, 2)
	assert.Equal(t, "second", threads[0].Comment.Comment)
	assert.Empty(t, threads[0].Replies)
	assert.Equal(t, "first", threads[1].Comment.Comment)
	assert.Len(t, threads[1].Replies, 1)
	assert.Equal(t, "a reply", threads[1].Replies[0].Comment)
}

func TestComment_PostCommentHandlerGuestMissingEmail(t *testing.T) {
	body := strings.NewReader(`{"guestName": "Wanjiru", "comment": "great show"}`)
	req, err := http.NewRequest("POST", "/api/v1/livestream/5fc51f36c72ff10004dca381/comments", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "5fc51f36c72ff10004dca381"})

	u := handlers.Comment{Engine: commentEngine(&MockDatabaseHelper{})}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.PostCommentHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	assert.Contains(t, rr.Body.String(), "invalid comment")
}

func TestComment_PostCommentHandlerReplySuccess(t *testing.T) {
	streamID, _ := primitive.ObjectIDFromHex("5fc51f36c72ff10004dca381")
	parentID := primitive.NewObjectID()

	body := strings.NewReader(fmt.Sprintf(
		`{"userId": "user-1", "comment": "agreed", "parentId": "%s"}`, parentID.Hex()))
	req, err := http.NewRequest("POST", fmt.Sprintf("/api/v1/livestream/%s/comments", streamID.Hex()), body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": streamID.Hex()})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Comment)
		(*arg).ID = parentID
		(*arg).LivestreamID = streamID
		(*arg).Comment = "first"
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	conn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	db.On("Collection", "livestreamComments").Return(conn)

	u := handlers.Comment{Engine: commentEngine(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.PostCommentHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusCreated {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusCreated)
	}

	var comment models.Comment
	_ = json.Unmarshal(rr.Body.Bytes(), &comment)
	assert.Equal(t, "agreed", comment.Comment)
	if assert.NotNil(t, comment.ParentID) {
		assert.Equal(t, parentID, *comment.ParentID)
	}
}

func TestComment_PostCommentHandlerReplyToReplyRejected(t *testing.T) {
	streamID, _ := primitive.ObjectIDFromHex("5fc51f36c72ff10004dca381")
	parentID := primitive.NewObjectID()
	grandparentID := primitive.NewObjectID()

	body := strings.NewReader(fmt.Sprintf(
		`{"userId": "user-1", "comment": "agreed", "parentId": "%s"}`, parentID.Hex()))
	req, err := http.NewRequest("POST", fmt.Sprintf("/api/v1/livestream/%s/comments", streamID.Hex()), body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": streamID.Hex()})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Comment)
		(*arg).ID = parentID
		(*arg).LivestreamID = streamID
		(*arg).ParentID = &grandparentID
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "livestreamComments").Return(conn)

	u := handlers.Comment{Engine: commentEngine(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.PostCommentHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	assert.Contains(t, rr.Body.String(), "invalid comment")
}

func TestComment_DeleteCommentHandlerMissingUser(t *testing.T) {
	body := strings.NewReader(`{}`)
	req, err := http.NewRequest("DELETE", "/api/v1/comments/5fc51f36c72ff10004dca381", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"comment_id": "5fc51f36c72ff10004dca381"})

	u := handlers.Comment{Engine: commentEngine(&MockDatabaseHelper{})}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.DeleteCommentHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	assert.Contains(t, rr.Body.String(), "userId is required")
}

func TestComment_ToggleCommentLikeHandlerSuccess(t *testing.T) {
	body := strings.NewReader(`{"userId": "user-1"}`)
	req, err := http.NewRequest("POST", "/api/v1/comments/5fc51f36c72ff10004dca381/like", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"comment_id": "5fc51f36c72ff10004dca381"})

	db := &MockDatabaseHelper{}
	likes := &mocks.CollectionHelper{}
	comments := &mocks.CollectionHelper{}
	updateResultHelper := &mocks.UpdateResultHelper{}

	likes.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	likes.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(3), nil)
	comments.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResultHelper, nil)
	db.On("Collection", "commentLikes").Return(likes)
	db.On("Collection", "livestreamComments").Return(comments)

	u := handlers.Comment{Engine: commentEngine(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ToggleCommentLikeHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var resp map[string]interface{}
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.Equal(t, true, resp["liked"])
	assert.Equal(t, float64(3), resp["count"])
}
