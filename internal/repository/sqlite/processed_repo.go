package sqlite

import (
	"context"
	"fmt"

	"townbeat/internal/checkout"
)

// ProcessedRepo implements checkout.ProcessedStore on the processed_events
// table. The primary-key INSERT makes check-and-insert atomic, so a webhook
// redelivery never wins the race against the first delivery.
type ProcessedRepo struct {
	db *DB
}

func NewProcessedRepo(db *DB) checkout.ProcessedStore {
	return &ProcessedRepo{db: db}
}

func (r *ProcessedRepo) MarkProcessed(ctx context.Context, sessionID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO processed_events (session_id) VALUES (?)`, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to record processed session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return n == 1, nil
}
