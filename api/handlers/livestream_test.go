package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/menengai/fansite-api/api/handlers"
	"github.com/menengai/fansite-api/databases"
	"github.com/menengai/fansite-api/databases/mocks"
	"github.com/menengai/fansite-api/livefeed"
	"github.com/menengai/fansite-api/models"
)

func TestLivestream_LivestreamsHandlerInvalidStatus(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/livestreams?status=BOGUS", nil)
	if err != nil {
		t.Fatal(err)
	}

	u := handlers.Livestream{DB: databases.NewLivestreamDatabase(&MockDatabaseHelper{})}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.LivestreamsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	assert.Contains(t, rr.Body.String(), "invalid status filter")
}

func TestLivestream_LivestreamsHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/livestreams?status=LIVE", nil)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Livestream)
		*arg = []models.Livestream{{Slug: "spring-tour-finale", Status: models.LivestreamStatusLive}}
	})
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.On("Collection", "livestreams").Return(conn)

	u := handlers.Livestream{DB: databases.NewLivestreamDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.LivestreamsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var streams []models.Livestream
	_ = json.Unmarshal(rr.Body.Bytes(), &streams)
	assert.Len(t, streams, 1)
	assert.Equal(t, "spring-tour-finale", streams[0].Slug)
}

func TestLivestream_LivestreamsHandlerEmptyResponse(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/livestreams", nil)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Livestream)
		*arg = nil
	})
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.On("Collection", "livestreams").Return(conn)

	u := handlers.Livestream{DB: databases.NewLivestreamDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.LivestreamsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	expected := "[]"
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestLivestream_LivestreamByIDHandlerBadID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/livestreams/1234", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "1234"})

	u := handlers.Livestream{DB: databases.NewLivestreamDatabase(&MockDatabaseHelper{})}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.LivestreamByIDHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	assert.Contains(t, rr.Body.String(), "failed to get objectID from Hex")
}

func TestLivestream_LivestreamBySlugHandlerNotFound(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/livestreams/slug/missing-show", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"slug": "missing-show"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "livestreams").Return(conn)

	u := handlers.Livestream{DB: databases.NewLivestreamDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.LivestreamBySlugHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusNotFound {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusNotFound)
	}
	assert.Contains(t, rr.Body.String(), "livestream not found")
}

func TestLivestream_CreateLivestreamHandlerMissingFields(t *testing.T) {
	body := strings.NewReader(`{"title": "Spring Tour Finale"}`)
	req, err := http.NewRequest("POST", "/api/v1/livestreams", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	u := handlers.Livestream{DB: databases.NewLivestreamDatabase(&MockDatabaseHelper{})}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateLivestreamHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	assert.Contains(t, rr.Body.String(), "title and slug are required")
}

func TestLivestream_CreateLivestreamHandlerSuccess(t *testing.T) {
	body := strings.NewReader(`{"title": "Spring Tour Finale", "slug": "spring-tour-finale"}`)
	req, err := http.NewRequest("POST", "/api/v1/livestreams", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	conn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	db.On("Collection", "livestreams").Return(conn)

	u := handlers.Livestream{DB: databases.NewLivestreamDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateLivestreamHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusCreated {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusCreated)
	}

	var stream models.Livestream
	_ = json.Unmarshal(rr.Body.Bytes(), &stream)
	assert.Equal(t, "spring-tour-finale", stream.Slug)
	assert.Equal(t, models.LivestreamStatusUpcoming, stream.Status)
	assert.False(t, stream.ID.IsZero())
}

func TestLivestream_UpdateLivestreamHandlerNotFound(t *testing.T) {
	body := strings.NewReader(`{"title": "Renamed"}`)
	req, err := http.NewRequest("PUT", "/api/v1/livestreams/5fc51f36c72ff10004dca381", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "5fc51f36c72ff10004dca381"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	updateResultHelper := &mocks.UpdateResultHelper{}

	updateResultHelper.On("MatchedCount").Return(int64(0))
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResultHelper, nil)
	db.On("Collection", "livestreams").Return(conn)

	u := handlers.Livestream{DB: databases.NewLivestreamDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.UpdateLivestreamHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusNotFound {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusNotFound)
	}
}

func TestLivestream_UpdateLivestreamHandlerSuccess(t *testing.T) {
	body := strings.NewReader(`{"status": "ENDED"}`)
	req, err := http.NewRequest("PUT", "/api/v1/livestreams/5fc51f36c72ff10004dca381", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "5fc51f36c72ff10004dca381"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	updateResultHelper := &mocks.UpdateResultHelper{}

	updateResultHelper.On("MatchedCount").Return(int64(1))
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResultHelper, nil)
	db.On("Collection", "livestreams").Return(conn)

	u := handlers.Livestream{DB: databases.NewLivestreamDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.UpdateLivestreamHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	expected := `{"updated": true}`
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestLivestream_DeleteLivestreamHandlerNotFound(t *testing.T) {
	req, err := http.NewRequest("DELETE", "/api/v1/livestreams/5fc51f36c72ff10004dca381", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "5fc51f36c72ff10004dca381"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	conn.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(0), nil)
	db.On("Collection", "livestreams").Return(conn)

	u := handlers.Livestream{DB: databases.NewLivestreamDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.DeleteLivestreamHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusNotFound {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusNotFound)
	}
}

func TestLivestream_IncrementViewsHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/livestreams/5fc51f36c72ff10004dca381/views", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "5fc51f36c72ff10004dca381"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	updateResultHelper := &mocks.UpdateResultHelper{}

	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResultHelper, nil)
	db.On("Collection", "livestreams").Return(conn)

	u := handlers.Livestream{Engine: &livefeed.Engine{Streams: databases.NewLivestreamDatabase(db)}}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.IncrementViewsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	expected := `{"counted": true}`
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestLivestream_DeleteLivestreamHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("DELETE", "/api/v1/livestreams/5fc51f36c72ff10004dca381", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "5fc51f36c72ff10004dca381"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	conn.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(1), nil)
	db.On("Collection", "livestreams").Return(conn)

	u := handlers.Livestream{DB: databases.NewLivestreamDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.DeleteLivestreamHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	expected := `{"deleted": true}`
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}
