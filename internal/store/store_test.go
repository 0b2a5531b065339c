package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{ID: uuid.NewString()}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := s.Sessions().GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("id = %q, want %q", got.ID, sess.ID)
	}
	if got.EndedAt != nil {
		t.Error("fresh session should not have an end time")
	}
	if got.StartedAt.IsZero() {
		t.Error("Create should default the start time")
	}
}

func TestSessionRepository_End(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{ID: uuid.NewString()}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	endedAt := time.Now()
	if err := s.Sessions().End(sess.ID, endedAt, 42); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	got, err := s.Sessions().GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.EndedAt == nil {
		t.Fatal("ended session should have an end time")
	}
	if got.PunchCount != 42 {
		t.Errorf("punch count = %d, want 42", got.PunchCount)
	}

	if err := s.Sessions().End(uuid.NewString(), endedAt, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("End(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		sess := &Session{
			ID:        uuid.NewString(),
			StartedAt: time.Now().Add(time.Duration(i) * time.Minute),
		}
		if err := s.Sessions().Create(sess); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	sessions, err := s.Sessions().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("len(sessions) = %d, want 3", len(sessions))
	}

	// Newest first.
	for i := 1; i < len(sessions); i++ {
		if sessions[i].StartedAt.After(sessions[i-1].StartedAt) {
			t.Error("sessions should be ordered newest first")
		}
	}
}

func TestPunchRepository_CreateAndList(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{ID: uuid.NewString()}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	punches := []Punch{
		{SessionID: sess.ID, Side: "left", Power: 0.8, Velocity: -0.02, IsFist: true, Stance: "jabLeft"},
		{SessionID: sess.ID, Side: "right", Power: 1.0, Velocity: -0.04, IsFist: false, Stance: "guard"},
	}
	for i := range punches {
		if err := s.Punches().Create(&punches[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if punches[i].ID == 0 {
			t.Error("Create should populate the punch ID")
		}
	}

	got, err := s.Punches().ListBySession(sess.ID)
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(punches) = %d, want 2", len(got))
	}

	if got[0].Side != "left" || !got[0].IsFist {
		t.Errorf("first punch = %+v, want left fist", got[0])
	}
	if got[1].Power != 1.0 || got[1].IsFist {
		t.Errorf("second punch = %+v, want full-power open hand", got[1])
	}

	count, err := s.Punches().CountBySession(sess.ID)
	if err != nil {
		t.Fatalf("CountBySession() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestPunchRepository_CascadeDelete(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{ID: uuid.NewString()}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Punches().Create(&Punch{SessionID: sess.ID, Side: "left", Power: 0.5}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := s.Sessions().Delete(sess.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	count, err := s.Punches().CountBySession(sess.ID)
	if err != nil {
		t.Fatalf("CountBySession() error = %v", err)
	}
	if count != 0 {
		t.Errorf("count after cascade delete = %d, want 0", count)
	}
}

func TestActionRepository_TriggerBinding(t *testing.T) {
	s := newTestStore(t)

	enabled := &Action{
		ID:         uuid.NewString(),
		Trigger:    "punch:left",
		PluginName: "sound-feedback",
		ActionName: "thud",
		Enabled:    true,
	}
	disabled := &Action{
		ID:         uuid.NewString(),
		Trigger:    "punch:left",
		PluginName: "sound-feedback",
		ActionName: "bell",
		Enabled:    false,
	}
	for _, a := range []*Action{enabled, disabled} {
		if err := s.Actions().Create(a); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	got, err := s.Actions().ListByTrigger("punch:left")
	if err != nil {
		t.Fatalf("ListByTrigger() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(actions) = %d, want 1 (disabled action excluded)", len(got))
	}
	if got[0].ActionName != "thud" {
		t.Errorf("action = %q, want thud", got[0].ActionName)
	}

	all, err := s.Actions().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}
}

func TestActionRepository_SetEnabled(t *testing.T) {
	s := newTestStore(t)

	a := &Action{
		ID:         uuid.NewString(),
		Trigger:    "punch",
		PluginName: "sound-feedback",
		ActionName: "play",
		Enabled:    true,
	}
	if err := s.Actions().Create(a); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := s.Actions().SetEnabled(a.ID, false); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}

	got, err := s.Actions().GetByID(a.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Enabled {
		t.Error("action should be disabled")
	}

	if err := s.Actions().SetEnabled("missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetEnabled(missing) error = %v, want ErrNotFound", err)
	}
}

func TestActionRepository_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Actions().GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.Actions().Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSettingsRepository(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Settings().Get("calibration"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unset) error = %v, want ErrNotFound", err)
	}

	if err := s.Settings().Set("calibration", `{"referenceScale":0.12}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := s.Settings().Get("calibration")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != `{"referenceScale":0.12}` {
		t.Errorf("value = %q", got)
	}

	// Set replaces.
	if err := s.Settings().Set("calibration", `{"referenceScale":0.15}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, _ = s.Settings().Get("calibration")
	if got != `{"referenceScale":0.15}` {
		t.Errorf("value after replace = %q", got)
	}

	if err := s.Settings().Delete("calibration"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Settings().Get("calibration"); !errors.Is(err, ErrNotFound) {
		t.Error("setting should be gone after delete")
	}
}
