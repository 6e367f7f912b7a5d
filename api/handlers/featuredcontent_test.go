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
	"github.com/menengai/fansite-api/models"
)

func TestFeaturedContent_FeaturedContentHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/featured-content", nil)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.FeaturedContent)
		*arg = []models.FeaturedContent{
			{TabName: "livestreams", Title: "Friday Night Live", Active: true, DisplayOrder: 0},
			{TabName: "audiobooks", Title: "Raw Truths", Active: true, DisplayOrder: 1},
		}
	})
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.On("Collection", "featuredContent").Return(conn)

	u := handlers.FeaturedContent{DB: databases.NewFeaturedContentDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.FeaturedContentHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var entries []models.FeaturedContent
	_ = json.Unmarshal(rr.Body.Bytes(), &entries)
	assert.Len(t, entries, 2)
	assert.Equal(t, "livestreams", entries[0].TabName)
	assert.Equal(t, "audiobooks", entries[1].TabName)
}

func TestFeaturedContent_FeaturedContentHandlerEmptyResponse(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/featured-content", nil)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.FeaturedContent)
		*arg = nil
	})
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.On("Collection", "featuredContent").Return(conn)

	u := handlers.FeaturedContent{DB: databases.NewFeaturedContentDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.FeaturedContentHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, "[]", rr.Body.String())
}

func TestFeaturedContent_FeaturedContentByTabHandlerNotFound(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/featured-content/tab/podcasts", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"tab_name": "podcasts"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "featuredContent").Return(conn)

	u := handlers.FeaturedContent{DB: databases.NewFeaturedContentDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.FeaturedContentByTabHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusNotFound {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusNotFound)
	}
	assert.Contains(t, rr.Body.String(), "featured content not found")
}

func TestFeaturedContent_FeaturedContentByTabHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/featured-content/tab/audiobooks", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"tab_name": "audiobooks"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.FeaturedContent)
		(*arg).TabName = "audiobooks"
		(*arg).Title = "Raw Truths"
		(*arg).Active = true
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "featuredContent").Return(conn)

	u := handlers.FeaturedContent{DB: databases.NewFeaturedContentDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.FeaturedContentByTabHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var entry models.FeaturedContent
	_ = json.Unmarshal(rr.Body.Bytes(), &entry)
	assert.Equal(t, "audiobooks", entry.TabName)
	assert.Equal(t, "Raw Truths", entry.Title)
}

func TestFeaturedContent_CreateFeaturedContentHandlerMissingFields(t *testing.T) {
	body := strings.NewReader(`{"subtitle": "no tab or title"}`)
	req, err := http.NewRequest("POST", "/api/v1/featured-content", body)
	if err != nil {
		t.Fatal(err)
	}

	u := handlers.FeaturedContent{DB: databases.NewFeaturedContentDatabase(&MockDatabaseHelper{})}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateFeaturedContentHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	assert.Contains(t, rr.Body.String(), "tabName and title are required")
}

func TestFeaturedContent_CreateFeaturedContentHandlerSuccess(t *testing.T) {
	body := strings.NewReader(`{
		"tabName": "audiobooks",
		"title": "Raw Truths",
		"badgeText": "New",
		"displayOrder": 2,
		"active": true
	}`)
	req, err := http.NewRequest("POST", "/api/v1/featured-content", body)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	conn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	db.On("Collection", "featuredContent").Return(conn)

	u := handlers.FeaturedContent{DB: databases.NewFeaturedContentDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateFeaturedContentHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusCreated {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusCreated)
	}

	var created models.FeaturedContent
	_ = json.Unmarshal(rr.Body.Bytes(), &created)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, "audiobooks", created.TabName)
	assert.Equal(t, 2, created.DisplayOrder)
	assert.True(t, created.Active)
}

func TestFeaturedContent_UpdateFeaturedContentHandlerSuccess(t *testing.T) {
	body := strings.NewReader(`{"active": false}`)
	req, err := http.NewRequest("PUT", "/api/v1/featured-content/5fc51f36c72ff10004dca381", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"featured_content_id": "5fc51f36c72ff10004dca381"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	updateResultHelper := &mocks.UpdateResultHelper{}
	updateResultHelper.On("MatchedCount").Return(int64(1))

	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResultHelper, nil)
	db.On("Collection", "featuredContent").Return(conn)

	u := handlers.FeaturedContent{DB: databases.NewFeaturedContentDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.UpdateFeaturedContentHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	assert.Equal(t, `{"updated": true}`, rr.Body.String())
}

func TestFeaturedContent_DeleteFeaturedContentHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("DELETE", "/api/v1/featured-content/5fc51f36c72ff10004dca381", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"featured_content_id": "5fc51f36c72ff10004dca381"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	conn.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(1), nil)
	db.On("Collection", "featuredContent").Return(conn)

	u := handlers.FeaturedContent{DB: databases.NewFeaturedContentDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.DeleteFeaturedContentHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	assert.Equal(t, `{"deleted": true}`, rr.Body.String())
}
