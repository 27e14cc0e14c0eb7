package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"townbeat/internal/domain"
	"townbeat/internal/repository"
)

// ProductRepo implements repository.ProductRepository
type ProductRepo struct {
	db *DB
}

func NewProductRepo(db *DB) repository.ProductRepository {
	return &ProductRepo{db: db}
}

const productCols = `id, name, slug, description, image_url, unit_price, currency, active, created_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*domain.Product, error) {
	p := &domain.Product{}
	var imageURL sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &imageURL, &p.UnitPrice, &p.Currency, &p.Active, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.ImageURL = imageURL.String
	return p, nil
}

func (r *ProductRepo) Create(ctx context.Context, product *domain.Product) error {
	query := `INSERT INTO products (name, slug, description, image_url, unit_price, currency, active) VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		product.Name, product.Slug, product.Description, product.ImageURL, product.UnitPrice, product.Currency, product.Active)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	id, _ := result.LastInsertId()
	product.ID = id
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productCols+` FROM products WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productCols+` FROM products WHERE slug = ?`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by slug: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) Update(ctx context.Context, product *domain.Product) error {
	query := `UPDATE products SET name = ?, slug = ?, description = ?, image_url = ?, unit_price = ?, currency = ?, active = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		product.Name, product.Slug, product.Description, product.ImageURL, product.UnitPrice, product.Currency, product.Active, product.ID)
	return err
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return err
}

func (r *ProductRepo) ListActive(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productCols+` FROM products WHERE active = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productCols+` FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// OrderRepo implements repository.OrderRepository
type OrderRepo struct {
	db *DB
}

func NewOrderRepo(db *DB) repository.OrderRepository {
	return &OrderRepo{db: db}
}

const orderCols = `id, user_id, items_json, total, currency, session_id, customer_ref, pickup_code, status, customer_email, created_at, paid_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	o := &domain.Order{}
	var userID sql.NullInt64
	var itemsJSON string
	var sessionID, customerRef, email sql.NullString
	var paidAt sql.NullTime
	err := row.Scan(&o.ID, &userID, &itemsJSON, &o.Total, &o.Currency, &sessionID, &customerRef, &o.PickupCode, &o.Status, &email, &o.CreatedAt, &paidAt)
	if err != nil {
		return nil, err
	}
	o.UserID = userID.Int64
	o.SessionID = sessionID.String
	o.CustomerRef = customerRef.String
	o.CustomerEmail = email.String
	if paidAt.Valid {
		o.PaidAt = paidAt.Time
	}
	if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	return o, nil
}

func (r *OrderRepo) Create(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}
	query := `INSERT INTO orders (user_id, items_json, total, currency, session_id, pickup_code, status, customer_email) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		order.UserID, string(items), order.Total, order.Currency, order.SessionID, order.PickupCode, order.Status, order.CustomerEmail)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	id, _ := result.LastInsertId()
	order.ID = id
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

func (r *OrderRepo) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE session_id = ?`, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order by session: %w", err)
	}
	return o, nil
}

func (r *OrderRepo) MarkPaid(ctx context.Context, sessionID, customerRef string, paidAt time.Time) error {
	query := `UPDATE orders SET status = ?, paid_at = ?, customer_ref = ? WHERE session_id = ? AND status = ?`
	_, err := r.db.ExecContext(ctx, query, domain.OrderStatusPaid, paidAt, customerRef, sessionID, domain.OrderStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	return nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	return err
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderCols+` FROM orders WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *OrderRepo) List(ctx context.Context, status string, limit, offset int) ([]domain.Order, error) {
	var rows *sql.Rows
	var err error
	if status != "" {
		rows, err = r.db.QueryContext(ctx, `SELECT `+orderCols+` FROM orders WHERE status = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`, status, limit, offset)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+orderCols+` FROM orders ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}
