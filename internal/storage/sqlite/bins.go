package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campuscycle/internal/domain"
)

// BinStore implements bins.Store on sqlite.
type BinStore struct {
	db *sql.DB
}

func NewBinStore(db *sql.DB) *BinStore {
	return &BinStore{db: db}
}

func (s *BinStore) Create(ctx context.Context, b domain.Bin, h domain.BinHistoryEntry) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bins (lat, lng, capacity, fill_level, status, zone, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Location.Lat, b.Location.Lng, b.Capacity, b.FillLevel, b.Status, b.Zone, b.LastUpdated,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO bin_history (bin_id, fill_level, status, actor_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, h.FillLevel, h.Status, h.ActorID, h.CreatedAt,
	); err != nil {
		return 0, err
	}

	return id, tx.Commit()
}

func (s *BinStore) Get(ctx context.Context, id int64) (domain.Bin, error) {
	var b domain.Bin
	err := s.db.QueryRowContext(ctx,
		`SELECT id, lat, lng, capacity, fill_level, status, zone, last_updated FROM bins WHERE id = ?`, id,
	).Scan(&b.ID, &b.Location.Lat, &b.Location.Lng, &b.Capacity, &b.FillLevel, &b.Status, &b.Zone, &b.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Bin{}, fmt.Errorf("%w: bin %d", domain.ErrNotFound, id)
	}
	return b, err
}

func (s *BinStore) List(ctx context.Context) ([]domain.Bin, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lat, lng, capacity, fill_level, status, zone, last_updated FROM bins ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Bin
	for rows.Next() {
		var b domain.Bin
		if err := rows.Scan(&b.ID, &b.Location.Lat, &b.Location.Lng, &b.Capacity,
			&b.FillLevel, &b.Status, &b.Zone, &b.LastUpdated); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *BinStore) UpdateFill(ctx context.Context, id int64, fillLevel int, status domain.BinStatus, h domain.BinHistoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE bins SET fill_level = ?, status = ?, last_updated = ? WHERE id = ?`,
		fillLevel, status, h.CreatedAt, id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: bin %d", domain.ErrNotFound, id)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO bin_history (bin_id, fill_level, status, actor_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, h.FillLevel, h.Status, h.ActorID, h.CreatedAt,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *BinStore) History(ctx context.Context, id int64) ([]domain.BinHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, bin_id, fill_level, status, actor_id, created_at
		 FROM bin_history WHERE bin_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BinHistoryEntry
	for rows.Next() {
		var h domain.BinHistoryEntry
		if err := rows.Scan(&h.ID, &h.BinID, &h.FillLevel, &h.Status, &h.ActorID, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
