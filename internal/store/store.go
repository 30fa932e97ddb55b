// Package store persists the lead pool. Every backend loads and saves the
// whole pool in order; there are no partial updates.
package store

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-engine/internal/model"
)

// ErrLocked is returned by Lock when another process holds the pool.
var ErrLocked = eris.New("store: pool is locked by another process")

// ErrCorruptRow is returned by the row-based stores when a stored lead cannot
// be decoded. Loading fails instead of dropping the row, since the next save
// would delete it.
var ErrCorruptRow = eris.New("store: corrupt lead row")

// Unlock releases a lock taken with Lock.
type Unlock func() error

// Store defines the persistence interface for the lead pool.
type Store interface {
	// Load returns the persisted pool in its stored order. A missing or
	// unreadable pool is returned as empty.
	Load(ctx context.Context) ([]model.Lead, error)
	// Save replaces the persisted pool with leads.
	Save(ctx context.Context, leads []model.Lead) error
	// Lock guards a read-modify-write session against other writers.
	Lock(ctx context.Context) (Unlock, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Drivers supported by the store factory.
const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func noopUnlock() error { return nil }

// leadRow is the flattened row shape shared by the SQL backends: a few
// queryable columns plus the full record as JSON.
type leadRow struct {
	Position int
	ID       string
	Name     string
	Score    int
	Category string
	Data     []byte
}

func toRows(leads []model.Lead) ([]leadRow, error) {
	rows := make([]leadRow, len(leads))
	for i := range leads {
		data, err := json.Marshal(&leads[i])
		if err != nil {
			return nil, eris.Wrapf(err, "store: marshal lead %q", leads[i].Name)
		}
		rows[i] = leadRow{
			Position: i,
			ID:       leads[i].ID,
			Name:     leads[i].Name,
			Score:    leads[i].TotalScore,
			Category: string(leads[i].ScoreCategory),
			Data:     data,
		}
	}
	return rows, nil
}

func decodeLead(data []byte) (model.Lead, error) {
	var l model.Lead
	if err := json.Unmarshal(data, &l); err != nil {
		return model.Lead{}, eris.Wrap(err, "store: unmarshal lead")
	}
	return l, nil
}
