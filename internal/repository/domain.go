package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/innofeed/innofeed/internal/model"
)

// ListDomains returns the catalog ordered by id.
func (r *Repository) ListDomains(ctx context.Context) ([]model.Domain, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM domains ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}

	domains, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.Domain])
	if err != nil {
		return nil, fmt.Errorf("failed to scan domains: %w", err)
	}
	return domains, nil
}

// EnsureDomain returns the id of the named domain, creating it if needed.
func (r *Repository) EnsureDomain(ctx context.Context, name string) (int64, error) {
	query := `
		INSERT INTO domains (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`

	var id int64
	if err := r.pool.QueryRow(ctx, query, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to ensure domain %q: %w", name, err)
	}
	return id, nil
}
