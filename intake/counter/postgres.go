package counter

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const nextQuery = `UPDATE request_counter SET value = value + 1, updated_at = now() WHERE id = 1 RETURNING value`

// PostgresSource increments the single row of request_counter; the row is seeded by migrations.
type PostgresSource struct {
	db *sqlx.DB
}

func NewPostgresSource(db *sqlx.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (p *PostgresSource) Next(ctx context.Context) (int, error) {
	var v int
	if err := p.db.GetContext(ctx, &v, nextQuery); err != nil {
		return 0, fmt.Errorf("counter postgres: %w", err)
	}
	return v, nil
}
