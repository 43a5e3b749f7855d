package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stubdesk/backoffice/internal/sequence"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Increment bumps the per-(org, kind) counter row in a single statement so
// concurrent callers can never observe the same value.
func (s *Store) Increment(ctx context.Context, org string, kind sequence.Kind) (int64, error) {
	query := `
		INSERT INTO counters (org_id, kind, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (org_id, kind) DO UPDATE SET value = counters.value + 1
		RETURNING value
	`

	var value int64
	if err := s.db.QueryRowContext(ctx, query, org, kind).Scan(&value); err != nil {
		return 0, fmt.Errorf("incrementing %s counter: %w", kind, err)
	}

	return value, nil
}
