package store

import (
	"database/sql"
	"time"
)

// Punch represents one logged punch event.
type Punch struct {
	ID        int64
	SessionID string
	Side      string
	Power     float64
	Velocity  float64
	IsFist    bool
	Stance    string
	CreatedAt time.Time
}

// PunchRepository provides operations on the punch event log.
type PunchRepository struct {
	db *sql.DB
}

// Punches returns the punch repository for this store.
func (s *Store) Punches() *PunchRepository {
	return &PunchRepository{db: s.db}
}

// Create inserts a punch event into the log.
func (r *PunchRepository) Create(p *Punch) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO punches (session_id, side, power, velocity, is_fist, stance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.SessionID, p.Side, p.Power, p.Velocity, p.IsFist, p.Stance, p.CreatedAt,
	)
	if err != nil {
		return err
	}

	p.ID, err = result.LastInsertId()
	return err
}

// ListBySession retrieves all punches for a session in chronological order.
func (r *PunchRepository) ListBySession(sessionID string) ([]Punch, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, side, power, velocity, is_fist, stance, created_at
		 FROM punches WHERE session_id = ? ORDER BY created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var punches []Punch
	for rows.Next() {
		var p Punch
		var isFist int
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Side, &p.Power, &p.Velocity, &isFist, &p.Stance, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.IsFist = isFist != 0
		punches = append(punches, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return punches, nil
}

// CountBySession returns the number of punches logged for a session.
func (r *PunchRepository) CountBySession(sessionID string) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM punches WHERE session_id = ?`,
		sessionID,
	).Scan(&count)
	return count, err
}
