package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"townbeat/internal/cart"
)

// CartRepo implements cart.Store, persisting one JSON blob per user key.
type CartRepo struct {
	db *DB
}

func NewCartRepo(db *DB) cart.Store {
	return &CartRepo{db: db}
}

func (r *CartRepo) Load(ctx context.Context, userKey string) (cart.Cart, error) {
	var itemsJSON string
	err := r.db.QueryRowContext(ctx, `SELECT items_json FROM carts WHERE user_key = ?`, userKey).Scan(&itemsJSON)
	if err == sql.ErrNoRows {
		return cart.Cart{}, nil
	}
	if err != nil {
		return cart.Cart{}, fmt.Errorf("failed to load cart: %w", err)
	}

	var c cart.Cart
	if err := json.Unmarshal([]byte(itemsJSON), &c); err != nil {
		return cart.Cart{}, fmt.Errorf("failed to decode cart: %w", err)
	}
	return c, nil
}

func (r *CartRepo) Save(ctx context.Context, userKey string, c cart.Cart) error {
	items, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	query := `INSERT INTO carts (user_key, items_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_key) DO UPDATE SET items_json = excluded.items_json, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, userKey, string(items), time.Now()); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
