package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/lead-engine/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	position       INTEGER PRIMARY KEY,
	id             TEXT NOT NULL,
	name           TEXT NOT NULL,
	total_score    INTEGER NOT NULL DEFAULT 0,
	score_category TEXT NOT NULL DEFAULT '',
	data           TEXT NOT NULL,
	saved_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_id ON leads(id);
CREATE INDEX IF NOT EXISTS idx_leads_category ON leads(score_category);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Lock is a no-op: Save replaces the pool in a single transaction and SQLite
// serializes writers itself.
func (s *SQLiteStore) Lock(_ context.Context) (Unlock, error) {
	return noopUnlock, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT position, data FROM leads ORDER BY position`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load leads")
	}
	defer rows.Close() //nolint:errcheck

	leads := []model.Lead{}
	for rows.Next() {
		var (
			pos  int
			data string
		)
		if err := rows.Scan(&pos, &data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		l, err := decodeLead([]byte(data))
		if err != nil {
			return nil, eris.Wrapf(ErrCorruptRow, "sqlite: decode lead at position %d: %v", pos, err)
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}

func (s *SQLiteStore) Save(ctx context.Context, leads []model.Lead) error {
	rows, err := toRows(leads)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM leads`); err != nil {
		return eris.Wrap(err, "sqlite: clear leads")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO leads (position, id, name, total_score, score_category, data, saved_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Position, r.ID, r.Name, r.Score, r.Category, string(r.Data), now); err != nil {
			return eris.Wrapf(err, "sqlite: insert lead %d", r.Position)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit")
	}
	return nil
}
