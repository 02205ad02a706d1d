package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SetPreferences replaces the user's selected domains in one transaction.
func (r *Repository) SetPreferences(ctx context.Context, userID int64, domainIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM user_domain_preferences WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear preferences: %w", err)
	}

	batch := &pgx.Batch{}
	for _, id := range domainIDs {
		batch.Queue(`
			INSERT INTO user_domain_preferences (user_id, domain_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, userID, id)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert preferences: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit preferences: %w", err)
	}
	return nil
}

// GetPreferenceIDs returns the user's selected domain ids in ascending order.
func (r *Repository) GetPreferenceIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT domain_id
		FROM user_domain_preferences
		WHERE user_id = $1
		ORDER BY domain_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan preferences: %w", err)
	}
	return ids, nil
}
