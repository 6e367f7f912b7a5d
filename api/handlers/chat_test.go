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

type MockDatabaseHelper struct {
	mock.Mock
}

// Client provides a mock function.
func (_m *MockDatabaseHelper) Client() databases.ClientHelper {
	ret := _m.Called()

	var r0 databases.ClientHelper
	if rf, ok := ret.Get(0).(func() databases.ClientHelper); ok {
		r0 = rf()
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(databases.ClientHelper)
		}
	}

	return r0
}

// Collection provides a mock function.
func (_m *MockDatabaseHelper) Collection(name string) databases.CollectionHelper {
	ret := _m.Called(name)

	var r0 databases.CollectionHelper
	if rf, ok := ret.Get(0).(func(string) databases.CollectionHelper); ok {
		r0 = rf(name)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(databases.CollectionHelper)
		}
	}

	return r0
}

func chatEngine(db databases.DatabaseHelper) *livefeed.Engine {
	return &livefeed.Engine{
		Chat: databases.NewChatMessageDatabase(db),
	}
}

func TestChat_ChatHandlerBadID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/livestreams/1234/chat", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "1234"})

	u := handlers.Chat{Engine: chatEngine(&MockDatabaseHelper{})}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ChatHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	assert.Contains(t, rr.Body.String(), "failed to get objectID from Hex")
}

func TestChat_ChatHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/livestreams/5fc51f36c72ff10004dca381/chat", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "5fc51f36c72ff10004dca381"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.ChatMessage)
		// query order is newest first; the handler returns display order
		*arg = []models.ChatMessage{
			{Message: "second", CreatedAt: 2},
			{Message: "first", CreatedAt: 1},
		}
	})
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.On("Collection", "livestreamChatMessages").Return(conn)

	u := handlers.Chat{Engine: chatEngine(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ChatHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var msgs []models.ChatMessage
	_ = json.Unmarshal(rr.Body.Bytes(), &msgs)

	assert.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Message)
	assert.Equal(t, "second", msgs[1].Message)
}

func TestChat_PostChatHandlerGuestSuccess(t *testing.T) {
	body := strings.NewReader(`{"guestName": "Wanjiru", "message": "hello"}`)
	req, err := http.NewRequest("POST", "/api/v1/livestreams/5fc51f36c72ff10004dca381/chat", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "5fc51f36c72ff10004dca381"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	conn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	db.On("Collection", "livestreamChatMessages").Return(conn)

	u := handlers.Chat{Engine: chatEngine(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.PostChatHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusCreated {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusCreated)
	}

	var msg models.ChatMessage
	_ = json.Unmarshal(rr.Body.Bytes(), &msg)
	assert.Equal(t, "Wanjiru", msg.GuestName)
	assert.Equal(t, "hello", msg.Message)
}

func TestChat_PostChatHandlerEmptyMessage(t *testing.T) {
	body := strings.NewReader(`{"userId": "u1", "message": "   "}`)
	req, err := http.NewRequest("POST", "/api/v1/livestreams/5fc51f36c72ff10004dca381/chat", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"livestream_id": "5fc51f36c72ff10004dca381"})

	u := handlers.Chat{Engine: chatEngine(&MockDatabaseHelper{})}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.PostChatHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	assert.Contains(t, rr.Body.String(), "invalid chat message")
}

func TestChat_DeleteChatHandlerMissingUser(t *testing.T) {
	body := strings.NewReader(`{}`)
	req, err := http.NewRequest("DELETE", "/api/v1/livestreams/5fc51f36c72ff10004dca381/chat/5fc51f36c72ff10004dca382", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"message_id": "5fc51f36c72ff10004dca382"})

	u := handlers.Chat{Engine: chatEngine(&MockDatabaseHelper{})}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.DeleteChatHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	assert.Contains(t, rr.Body.String(), "userId is required")
}

func TestChat_DeleteChatHandlerSuccess(t *testing.T) {
	body := strings.NewReader(`{"userId": "u1"}`)
	req, err := http.NewRequest("DELETE", "/api/v1/livestreams/5fc51f36c72ff10004dca381/chat/5fc51f36c72ff10004dca382", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"message_id": "5fc51f36c72ff10004dca382"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	updateResultHelper := &mocks.UpdateResultHelper{}

	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResultHelper, nil)
	db.On("Collection", "livestreamChatMessages").Return(conn)

	u := handlers.Chat{Engine: chatEngine(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.DeleteChatHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	expected := `{"deleted": true}`
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestChat_PinChatHandlerSuccess(t *testing.T) {
	body := strings.NewReader(`{"pinned": true}`)
	req, err := http.NewRequest("PUT", "/api/v1/livestreams/5fc51f36c72ff10004dca381/chat/5fc51f36c72ff10004dca382/pin", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"message_id": "5fc51f36c72ff10004dca382"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	updateResultHelper := &mocks.UpdateResultHelper{}

	updateResultHelper.On("MatchedCount").Return(int64(1))
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResultHelper, nil)
	db.On("Collection", "livestreamChatMessages").Return(conn)

	u := handlers.Chat{Engine: chatEngine(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.PinChatHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	expected := `{"pinned":true}`
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestChat_PinChatHandlerUnknownMessage(t *testing.T) {
	body := strings.NewReader(`{"pinned": true}`)
	req, err := http.NewRequest("PUT", "/api/v1/livestreams/5fc51f36c72ff10004dca381/chat/5fc51f36c72ff10004dca382/pin", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"message_id": "5fc51f36c72ff10004dca382"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	updateResultHelper := &mocks.UpdateResultHelper{}

	updateResultHelper.On("MatchedCount").Return(int64(0))
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResultHelper, nil)
	db.On("Collection", "livestreamChatMessages").Return(conn)

	u := handlers.Chat{Engine: chatEngine(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.PinChatHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusNotFound {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusNotFound)
	}
}
