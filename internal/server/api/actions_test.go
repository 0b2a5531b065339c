package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestActionHandler_CreateAndList(t *testing.T) {
	s := newTestStore(t)
	h := NewActionHandler(s)

	body := `{"trigger": "punch:left", "plugin_name": "sound-feedback", "action_name": "play", "config": {"sound": "thud"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/actions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var created actionResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
	if !created.Enabled {
		t.Error("new action should be enabled")
	}
	if created.Trigger != "punch:left" {
		t.Errorf("trigger = %q, want %q", created.Trigger, "punch:left")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/actions", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var list listActionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(list.Actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(list.Actions))
	}
}

func TestActionHandler_CreateValidation(t *testing.T) {
	s := newTestStore(t)
	h := NewActionHandler(s)

	cases := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{`},
		{"missing trigger", `{"plugin_name": "p", "action_name": "a"}`},
		{"missing plugin_name", `{"trigger": "punch", "action_name": "a"}`},
		{"missing action_name", `{"trigger": "punch", "plugin_name": "p"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/actions", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestActionHandler_Toggle(t *testing.T) {
	s := newTestStore(t)
	h := NewActionHandler(s)

	body := `{"trigger": "punch", "plugin_name": "sound-feedback", "action_name": "play"}`
	req := httptest.NewRequest(http.MethodPost, "/api/actions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var created actionResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode error = %v", err)
	}

	req = httptest.NewRequest(http.MethodPatch, "/api/actions/"+created.ID, strings.NewReader(`{"enabled": false}`))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var updated actionResponse
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if updated.Enabled {
		t.Error("expected action disabled after PATCH")
	}

	// Disabled actions drop out of trigger lookups.
	actions, err := s.Actions().ListByTrigger("punch")
	if err != nil {
		t.Fatalf("ListByTrigger error = %v", err)
	}
	if len(actions) != 0 {
		t.Errorf("got %d enabled actions, want 0", len(actions))
	}
}

func TestActionHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	h := NewActionHandler(s)

	body := `{"trigger": "punch", "plugin_name": "p", "action_name": "a"}`
	req := httptest.NewRequest(http.MethodPost, "/api/actions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var created actionResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode error = %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/actions/"+created.ID, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/actions/"+created.ID, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestActionHandler_GetMissing(t *testing.T) {
	s := newTestStore(t)
	h := NewActionHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/actions/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
