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

	"github.com/menengai/fansite-api/api/handlers"
	"github.com/menengai/fansite-api/databases"
	"github.com/menengai/fansite-api/databases/mocks"
	"github.com/menengai/fansite-api/livefeed"
	"github.com/menengai/fansite-api/models"
)

func engagementEngine(db databases.DatabaseHelper) *livefeed.Engine {
	return &livefeed.Engine{
		Reactions: databases.NewReactionDatabase(db),
		Shares:    databases.NewShareDatabase(db),
		Streams:   databases.NewLivestreamDatabase(db),
	}
}

func TestEngagement_ToggleReactionHandlerMissingUser(t *testing.T) {
	body := strings.NewReader(`{"kind": "LIKE"}`)
	req, err := http.NewRequest("POST", "/api/v1/livestreams/5fc51f36c72ff10004dca381/reactions", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "5fc51f36c72ff10004dca381"})

	u := handlers.Engagement{Engine: engagementEngine(&MockDatabaseHelper{})}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ToggleReactionHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	assert.Contains(t, rr.Body.String(), "userId is required")
}

func TestEngagement_ToggleReactionHandlerSuccess(t *testing.T) {
	body := strings.NewReader(`{"userId": "u1"}`)
	req, err := http.NewRequest("POST", "/api/v1/livestreams/5fc51f36c72ff10004dca381/reactions", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "5fc51f36c72ff10004dca381"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	conn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	conn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(7), nil)
	db.On("Collection", "livestreamReactions").Return(conn)

	u := handlers.Engagement{Engine: engagementEngine(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ToggleReactionHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var resp map[string]interface{}
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.Equal(t, true, resp["reacted"])
	assert.Equal(t, float64(7), resp["count"])
}

func TestEngagement_RecordShareHandlerSuccess(t *testing.T) {
	body := strings.NewReader(`{"userId": "u1", "platform": "twitter"}`)
	req, err := http.NewRequest("POST", "/api/v1/livestreams/5fc51f36c72ff10004dca381/shares", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "5fc51f36c72ff10004dca381"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	conn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	db.On("Collection", "livestreamShares").Return(conn)

	u := handlers.Engagement{Engine: engagementEngine(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.RecordShareHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusCreated {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusCreated)
	}

	expected := `{"shared": true}`
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestEngagement_RecordShareHandlerMissingPlatform(t *testing.T) {
	body := strings.NewReader(`{"userId": "u1"}`)
	req, err := http.NewRequest("POST", "/api/v1/livestreams/5fc51f36c72ff10004dca381/shares", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "5fc51f36c72ff10004dca381"})

	u := handlers.Engagement{Engine: engagementEngine(&MockDatabaseHelper{})}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.RecordShareHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	assert.Contains(t, rr.Body.String(), "invalid share")
}

func TestEngagement_EngagementHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/livestreams/5fc51f36c72ff10004dca381/engagement", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "5fc51f36c72ff10004dca381"})

	db := &MockDatabaseHelper{}
	reactions := &mocks.CollectionHelper{}
	shares := &mocks.CollectionHelper{}
	streams := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	reactions.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(12), nil)
	shares.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(5), nil)
	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Livestream)
		(*arg).ViewCount = 230
	})
	streams.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)

	db.On("Collection", "livestreamReactions").Return(reactions)
	db.On("Collection", "livestreamShares").Return(shares)
	db.On("Collection", "livestreams").Return(streams)

	u := handlers.Engagement{Engine: engagementEngine(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.EngagementHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var counts models.EngagementCounts
	_ = json.Unmarshal(rr.Body.Bytes(), &counts)
	assert.Equal(t, models.EngagementCounts{Likes: 12, Shares: 5, Views: 230}, counts)
}

func TestEngagement_ReactionCountHandlerBadID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/livestreams/1234/reactions/count", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "1234"})

	u := handlers.Engagement{Engine: engagementEngine(&MockDatabaseHelper{})}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ReactionCountHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	assert.Contains(t, rr.Body.String(), "failed to get objectID from Hex")
}
