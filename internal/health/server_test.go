package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	err error
}

func (s stubStore) Check(ctx context.Context) error {
	return s.err
}

func serve(t *testing.T, c *Checker, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	mux := http.NewServeMux()
	c.Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthAndLive(t *testing.T) {
	c := NewChecker(Config{ServiceName: "baccarat-tracker", Version: "test"})

	for _, path := range []string{"/health", "/live"} {
		rec, body := serve(t, c, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "ok", body["status"], path)
		assert.Equal(t, "baccarat-tracker", body["service"], path)
	}
}

func TestReadyStates(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		store      StoreChecker
		wantStatus int
		wantCheck  string
	}{
		{name: "not marked ready", ready: false, store: stubStore{}, wantStatus: http.StatusServiceUnavailable, wantCheck: "ok"},
		{name: "ready with healthy store", ready: true, store: stubStore{}, wantStatus: http.StatusOK, wantCheck: "ok"},
		{name: "store failure", ready: true, store: stubStore{err: errors.New("no such directory")}, wantStatus: http.StatusServiceUnavailable, wantCheck: "error: no such directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(Config{ServiceName: "baccarat-tracker", Store: tt.store})
			c.SetReady(tt.ready)

			rec, body := serve(t, c, "/ready")
			assert.Equal(t, tt.wantStatus, rec.Code)
			checks := body["checks"].(map[string]interface{})
			assert.Equal(t, tt.wantCheck, checks["storage"])
		})
	}
}

type fixedSchedule time.Time

func (f fixedSchedule) GetNextRun() time.Time {
	return time.Time(f)
}

func TestReadyReportsNextAutosave(t *testing.T) {
	next := time.Date(2024, 3, 1, 20, 5, 0, 0, time.UTC)
	c := NewChecker(Config{ServiceName: "baccarat-tracker", Store: stubStore{}, Autosave: fixedSchedule(next)})
	c.SetReady(true)

	rec, body := serve(t, c, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "2024-03-01T20:05:00Z", checks["next_autosave"])

	c = NewChecker(Config{ServiceName: "baccarat-tracker", Autosave: fixedSchedule(time.Time{})})
	c.SetReady(true)
	_, body = serve(t, c, "/ready")
	assert.NotContains(t, body["checks"], "next_autosave", "a stopped scheduler has no next run")
}
