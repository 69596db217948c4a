// Package sqlite implements the persistence collaborators on a local
// sqlite database. The complaint+history and bin+history pairs are written
// inside single transactions so no partial state is ever observable.
package sqlite

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// InitDB opens (creating if necessary) the database and applies the schema.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS complaints (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		submitter_id   TEXT NOT NULL,
		submitter      TEXT NOT NULL,
		description    TEXT NOT NULL,
		label          TEXT DEFAULT '',
		confidence     REAL DEFAULT 0,
		lat            REAL,
		lng            REAL,
		status         TEXT NOT NULL DEFAULT 'pending',
		priority       TEXT NOT NULL DEFAULT 'medium',
		assigned_staff TEXT DEFAULT '',
		created_at     DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_complaints_submitter ON complaints(submitter_id);
	CREATE INDEX IF NOT EXISTS idx_complaints_status ON complaints(status);
	CREATE INDEX IF NOT EXISTS idx_complaints_created_at ON complaints(created_at);

	CREATE TABLE IF NOT EXISTS complaint_history (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		complaint_id INTEGER NOT NULL,
		status       TEXT NOT NULL,
		actor_id     TEXT NOT NULL,
		created_at   DATETIME NOT NULL,
		FOREIGN KEY (complaint_id) REFERENCES complaints(id)
	);
	CREATE INDEX IF NOT EXISTS idx_ch_complaint ON complaint_history(complaint_id);

	CREATE TABLE IF NOT EXISTS bins (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		lat          REAL NOT NULL,
		lng          REAL NOT NULL,
		capacity     INTEGER NOT NULL DEFAULT 100,
		fill_level   INTEGER NOT NULL DEFAULT 0,
		status       TEXT NOT NULL DEFAULT 'empty',
		zone         TEXT DEFAULT '',
		last_updated DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_bins_zone ON bins(zone);

	CREATE TABLE IF NOT EXISTS bin_history (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		bin_id     INTEGER NOT NULL,
		fill_level INTEGER NOT NULL,
		status     TEXT NOT NULL,
		actor_id   TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (bin_id) REFERENCES bins(id)
	);
	CREATE INDEX IF NOT EXISTS idx_bh_bin ON bin_history(bin_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return db, nil
}
