package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-engine/internal/db"
	"github.com/sells-group/lead-engine/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

var leadColumns = []string{"position", "id", "name", "total_score", "score_category", "data", "saved_at"}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	position       INTEGER PRIMARY KEY,
	id             TEXT NOT NULL,
	name           TEXT NOT NULL,
	total_score    INTEGER NOT NULL DEFAULT 0,
	score_category TEXT NOT NULL DEFAULT '',
	data           JSONB NOT NULL,
	saved_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_id ON leads(id);
CREATE INDEX IF NOT EXISTS idx_leads_category ON leads(score_category);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(total_score DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Lock is a no-op: Save replaces the pool inside one transaction.
func (s *PostgresStore) Lock(_ context.Context) (Unlock, error) {
	return noopUnlock, nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx, `SELECT position, data FROM leads ORDER BY position`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load leads")
	}
	defer rows.Close()

	leads := []model.Lead{}
	for rows.Next() {
		var (
			pos  int
			data []byte
		)
		if err := rows.Scan(&pos, &data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		l, err := decodeLead(data)
		if err != nil {
			return nil, eris.Wrapf(ErrCorruptRow, "postgres: decode lead at position %d: %v", pos, err)
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: iterate leads")
}

// Save replaces the pool in one transaction: the table is cleared and the
// leads are streamed back with COPY.
func (s *PostgresStore) Save(ctx context.Context, leads []model.Lead) error {
	rows, err := toRows(leads)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM leads`); err != nil {
		return eris.Wrap(err, "postgres: clear leads")
	}

	now := time.Now().UTC()
	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = []any{r.Position, r.ID, r.Name, r.Score, r.Category, r.Data, now}
	}
	n, err := db.CopyFrom(ctx, tx, "leads", leadColumns, values)
	if err != nil {
		return eris.Wrap(err, "postgres: copy leads")
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit")
	}

	zap.L().Debug("postgres: saved pool", zap.Int64("rows", n))
	return nil
}
