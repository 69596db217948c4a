package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campuscycle/internal/complaint"
	"campuscycle/internal/domain"
)

// ComplaintStore implements complaint.Store on sqlite.
type ComplaintStore struct {
	db *sql.DB
}

func NewComplaintStore(db *sql.DB) *ComplaintStore {
	return &ComplaintStore{db: db}
}

func (s *ComplaintStore) Create(ctx context.Context, c domain.Complaint, h domain.HistoryEntry) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var lat, lng sql.NullFloat64
	if c.Location != nil {
		lat = sql.NullFloat64{Float64: c.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: c.Location.Lng, Valid: true}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO complaints (submitter_id, submitter, description, label, confidence, lat, lng, status, priority, assigned_staff, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.SubmitterID, c.Submitter, c.Description, c.Label, c.Confidence,
		lat, lng, c.Status, c.Priority, c.AssignedStaff, c.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO complaint_history (complaint_id, status, actor_id, created_at) VALUES (?, ?, ?, ?)`,
		id, h.Status, h.ActorID, h.CreatedAt,
	); err != nil {
		return 0, err
	}

	return id, tx.Commit()
}

func (s *ComplaintStore) Get(ctx context.Context, id int64) (domain.Complaint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, submitter_id, submitter, description, label, confidence, lat, lng, status, priority, assigned_staff, created_at
		 FROM complaints WHERE id = ?`, id)
	c, err := scanComplaint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Complaint{}, fmt.Errorf("%w: complaint %d", domain.ErrNotFound, id)
	}
	return c, err
}

func (s *ComplaintStore) List(ctx context.Context, f complaint.Filter) ([]domain.Complaint, error) {
	query := `SELECT id, submitter_id, submitter, description, label, confidence, lat, lng, status, priority, assigned_staff, created_at
		 FROM complaints WHERE 1=1`
	var args []any
	if f.SubmitterID != "" {
		query += " AND submitter_id = ?"
		args = append(args, f.SubmitterID)
	}
	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, f.Status)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *ComplaintStore) UpdateStatus(ctx context.Context, id int64, expected domain.Status, assignedStaff string, h domain.HistoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Guarded update: if the stored status moved since the caller read it,
	// no row matches and the transition is rejected instead of forking
	// the history.
	res, err := tx.ExecContext(ctx,
		`UPDATE complaints SET status = ?, assigned_staff = ? WHERE id = ? AND status = ?`,
		h.Status, assignedStaff, id, expected,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM complaints WHERE id = ?`, id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("%w: complaint %d", domain.ErrNotFound, id)
		}
		return fmt.Errorf("%w: complaint %d changed concurrently", domain.ErrInvalidTransition, id)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO complaint_history (complaint_id, status, actor_id, created_at) VALUES (?, ?, ?, ?)`,
		id, h.Status, h.ActorID, h.CreatedAt,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *ComplaintStore) History(ctx context.Context, id int64) ([]domain.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, complaint_id, status, actor_id, created_at
		 FROM complaint_history WHERE complaint_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HistoryEntry
	for rows.Next() {
		var h domain.HistoryEntry
		if err := rows.Scan(&h.ID, &h.ComplaintID, &h.Status, &h.ActorID, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row rowScanner) (domain.Complaint, error) {
	var c domain.Complaint
	var lat, lng sql.NullFloat64
	err := row.Scan(&c.ID, &c.SubmitterID, &c.Submitter, &c.Description,
		&c.Label, &c.Confidence, &lat, &lng, &c.Status, &c.Priority,
		&c.AssignedStaff, &c.CreatedAt)
	if err != nil {
		return domain.Complaint{}, err
	}
	if lat.Valid && lng.Valid {
		c.Location = &domain.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
	}
	return c, nil
}
