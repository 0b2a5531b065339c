package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/shadowbox/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedSession(t *testing.T, s *store.Store, id string, punches int) {
	t.Helper()

	sess := &store.Session{ID: id, StartedAt: time.Now()}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("create session error = %v", err)
	}

	for i := 0; i < punches; i++ {
		p := &store.Punch{
			SessionID: id,
			Side:      "left",
			Power:     0.8,
			Velocity:  -0.02,
			IsFist:    true,
			Stance:    "guard",
			CreatedAt: time.Now(),
		}
		if err := s.Punches().Create(p); err != nil {
			t.Fatalf("create punch error = %v", err)
		}
	}

	if err := s.Sessions().End(id, time.Now(), punches); err != nil {
		t.Fatalf("end session error = %v", err)
	}
}

func TestSessionHandler_List(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "sess-1", 2)
	seedSession(t, s, "sess-2", 0)

	h := NewSessionHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response listSessionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(response.Sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(response.Sessions))
	}
}

func TestSessionHandler_Get(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "sess-1", 3)

	h := NewSessionHandler(s)

	t.Run("existing session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/sess-1", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		var response sessionResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if response.ID != "sess-1" {
			t.Errorf("id = %q, want %q", response.ID, "sess-1")
		}
		if response.PunchCount != 3 {
			t.Errorf("punch_count = %d, want 3", response.PunchCount)
		}
		if response.EndedAt == nil {
			t.Error("expected ended_at to be set")
		}
	})

	t.Run("missing session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/nope", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestSessionHandler_ListPunches(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "sess-1", 2)

	h := NewSessionHandler(s)

	t.Run("existing session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/sess-1/punches", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		var response listPunchesResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if len(response.Punches) != 2 {
			t.Fatalf("got %d punches, want 2", len(response.Punches))
		}
		if response.Punches[0].Side != "left" {
			t.Errorf("side = %q, want %q", response.Punches[0].Side, "left")
		}
		if !response.Punches[0].IsFist {
			t.Error("expected is_fist true")
		}
	})

	t.Run("missing session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/nope/punches", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestSessionHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "sess-1", 1)

	h := NewSessionHandler(s)

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/sess-1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	if _, err := s.Sessions().GetByID("sess-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByID after delete: err = %v, want ErrNotFound", err)
	}
}

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	s := newTestStore(t)
	h := NewSessionHandler(s)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/sessions"},
		{http.MethodPut, "/api/sessions/sess-1"},
		{http.MethodDelete, "/api/sessions/sess-1/punches"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status = %d, want %d", tc.method, tc.path, rec.Code, http.StatusMethodNotAllowed)
		}
	}
}
