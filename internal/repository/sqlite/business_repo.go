package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"townbeat/internal/domain"
	"townbeat/internal/repository"
)

// BusinessRepo implements repository.BusinessRepository
type BusinessRepo struct {
	db *DB
}

func NewBusinessRepo(db *DB) repository.BusinessRepository {
	return &BusinessRepo{db: db}
}

const businessCols = `id, name, slug, description, category, address, phone, website, tier, active_from, active_until, created_at`

func scanBusiness(row interface{ Scan(...interface{}) error }) (*domain.Business, error) {
	b := &domain.Business{}
	var phone, website, from, until sql.NullString
	err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.Description, &b.Category, &b.Address,
		&phone, &website, &b.Tier, &from, &until, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Phone = phone.String
	b.Website = website.String
	b.ActiveFrom = from.String
	b.ActiveUntil = until.String
	return b, nil
}

func (r *BusinessRepo) Create(ctx context.Context, business *domain.Business) error {
	if !domain.ValidTier(business.Tier) {
		return fmt.Errorf("unknown directory tier: %q", business.Tier)
	}
	query := `INSERT INTO businesses (name, slug, description, category, address, phone, website, tier, active_from, active_until) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		business.Name, business.Slug, business.Description, business.Category, business.Address,
		business.Phone, business.Website, business.Tier, business.ActiveFrom, business.ActiveUntil)
	if err != nil {
		return fmt.Errorf("failed to create business: %w", err)
	}
	id, _ := result.LastInsertId()
	business.ID = id
	return nil
}

func (r *BusinessRepo) GetByID(ctx context.Context, id int64) (*domain.Business, error) {
	b, err := scanBusiness(r.db.QueryRowContext(ctx, `SELECT `+businessCols+` FROM businesses WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return b, nil
}

func (r *BusinessRepo) GetBySlug(ctx context.Context, slug string) (*domain.Business, error) {
	b, err := scanBusiness(r.db.QueryRowContext(ctx, `SELECT `+businessCols+` FROM businesses WHERE slug = ?`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get business by slug: %w", err)
	}
	return b, nil
}

func (r *BusinessRepo) Update(ctx context.Context, business *domain.Business) error {
	if !domain.ValidTier(business.Tier) {
		return fmt.Errorf("unknown directory tier: %q", business.Tier)
	}
	query := `UPDATE businesses SET name = ?, slug = ?, description = ?, category = ?, address = ?, phone = ?, website = ?, tier = ?, active_from = ?, active_until = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		business.Name, business.Slug, business.Description, business.Category, business.Address,
		business.Phone, business.Website, business.Tier, business.ActiveFrom, business.ActiveUntil, business.ID)
	return err
}

func (r *BusinessRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM businesses WHERE id = ?`, id)
	return err
}

func (r *BusinessRepo) List(ctx context.Context) ([]domain.Business, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+businessCols+` FROM businesses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}
	defer rows.Close()
	return collectBusinesses(rows)
}

func (r *BusinessRepo) Search(ctx context.Context, query string) ([]domain.Business, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+businessCols+` FROM businesses WHERE name LIKE ? ORDER BY name`,
		"%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search businesses: %w", err)
	}
	defer rows.Close()
	return collectBusinesses(rows)
}

func collectBusinesses(rows *sql.Rows) ([]domain.Business, error) {
	var businesses []domain.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, *b)
	}
	return businesses, rows.Err()
}
