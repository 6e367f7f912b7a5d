package api

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeoutMiddlewareReleasesBlockedHandlers(t *testing.T) {
	var wg sync.WaitGroup
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer wg.Done()
		<-release
		// late write after the 408 already went out; must be swallowed
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"late": true}`))
	})

	wrapped := TimeoutMiddleware(20 * time.Millisecond)(handler)

	for i := 0; i < 5; i++ {
		wg.Add(1)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/slow", nil)

		wrapped.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusRequestTimeout {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusRequestTimeout)
		}
		assert.Contains(t, rr.Body.String(), "Request timeout")
	}

	// unblock the handlers; with the buffered done channel every goroutine
	// must now run to completion instead of hanging on the send
	close(release)
	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("handler goroutines still blocked after timeout responses were sent")
	}
}

func TestTimeoutMiddlewareFastHandlerPassesThrough(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"created": true}`))
	})

	wrapped := TimeoutMiddleware(time.Second)(handler)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/fast", nil)

	wrapped.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusCreated {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusCreated)
	}

	expected := `{"created": true}`
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestTimeoutMiddlewareHandlerWinsTheRace(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok": true}`))
		// finish after the deadline; the 408 branch must not overwrite
		<-r.Context().Done()
	})

	wrapped := TimeoutMiddleware(20 * time.Millisecond)(handler)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/partial", nil)

	wrapped.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	assert.NotContains(t, rr.Body.String(), "Request timeout")
}
