package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"townbeat/internal/domain"
	"townbeat/internal/repository"
)

// AdRepo implements repository.AdRepository
type AdRepo struct {
	db *DB
}

func NewAdRepo(db *DB) repository.AdRepository {
	return &AdRepo{db: db}
}

const adCols = `id, title, sponsor, media_url, media_type, link_url, slot, active, active_from, active_until, impressions, clicks, created_at, updated_at`

func scanAd(row interface{ Scan(...interface{}) error }) (*domain.Ad, error) {
	a := &domain.Ad{}
	var sponsor, linkURL, from, until sql.NullString
	err := row.Scan(&a.ID, &a.Title, &sponsor, &a.MediaURL, &a.MediaType, &linkURL, &a.Slot,
		&a.Active, &from, &until, &a.Impressions, &a.Clicks, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Sponsor = sponsor.String
	a.LinkURL = linkURL.String
	a.ActiveFrom = from.String
	a.ActiveUntil = until.String
	return a, nil
}

func (r *AdRepo) Create(ctx context.Context, ad *domain.Ad) error {
	query := `INSERT INTO ads (title, sponsor, media_url, media_type, link_url, slot, active, active_from, active_until) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		ad.Title, ad.Sponsor, ad.MediaURL, ad.MediaType, ad.LinkURL, ad.Slot, ad.Active, ad.ActiveFrom, ad.ActiveUntil)
	if err != nil {
		return fmt.Errorf("failed to create ad: %w", err)
	}
	id, _ := result.LastInsertId()
	ad.ID = id
	return nil
}

func (r *AdRepo) GetByID(ctx context.Context, id int64) (*domain.Ad, error) {
	ad, err := scanAd(r.db.QueryRowContext(ctx, `SELECT `+adCols+` FROM ads WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ad: %w", err)
	}
	return ad, nil
}

func (r *AdRepo) Update(ctx context.Context, ad *domain.Ad) error {
	query := `UPDATE ads SET title = ?, sponsor = ?, media_url = ?, media_type = ?, link_url = ?, slot = ?, active = ?, active_from = ?, active_until = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		ad.Title, ad.Sponsor, ad.MediaURL, ad.MediaType, ad.LinkURL, ad.Slot, ad.Active, ad.ActiveFrom, ad.ActiveUntil, time.Now(), ad.ID)
	return err
}

func (r *AdRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ads WHERE id = ?`, id)
	return err
}

func (r *AdRepo) List(ctx context.Context) ([]domain.Ad, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+adCols+` FROM ads ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	defer rows.Close()
	return collectAds(rows)
}

func (r *AdRepo) ListBySlot(ctx context.Context, slot string) ([]domain.Ad, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+adCols+` FROM ads WHERE active = 1 AND slot = ? ORDER BY id`, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to list ads for slot %s: %w", slot, err)
	}
	defer rows.Close()
	return collectAds(rows)
}

func collectAds(rows *sql.Rows) ([]domain.Ad, error) {
	var ads []domain.Ad
	for rows.Next() {
		a, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, *a)
	}
	return ads, rows.Err()
}

func (r *AdRepo) IncrementImpressions(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE ads SET impressions = impressions + 1 WHERE id = ?`, id)
	return err
}

func (r *AdRepo) IncrementClicks(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE ads SET clicks = clicks + 1 WHERE id = ?`, id)
	return err
}

// SpotlightRepo implements repository.SpotlightRepository
type SpotlightRepo struct {
	db *DB
}

func NewSpotlightRepo(db *DB) repository.SpotlightRepository {
	return &SpotlightRepo{db: db}
}

const spotlightCols = `s.id, s.business_id, s.headline, s.blurb, s.active_from, s.active_until, s.created_at`

func (r *SpotlightRepo) Create(ctx context.Context, spotlight *domain.Spotlight) error {
	query := `INSERT INTO spotlights (business_id, headline, blurb, active_from, active_until) VALUES (?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		spotlight.BusinessID, spotlight.Headline, spotlight.Blurb, spotlight.ActiveFrom, spotlight.ActiveUntil)
	if err != nil {
		return fmt.Errorf("failed to create spotlight: %w", err)
	}
	id, _ := result.LastInsertId()
	spotlight.ID = id
	return nil
}

func (r *SpotlightRepo) GetByID(ctx context.Context, id int64) (*domain.Spotlight, error) {
	query := `SELECT ` + spotlightCols + ` FROM spotlights s WHERE s.id = ?`
	s, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get spotlight: %w", err)
	}
	return s, nil
}

func (r *SpotlightRepo) scanRow(row interface{ Scan(...interface{}) error }) (*domain.Spotlight, error) {
	s := &domain.Spotlight{}
	var from, until sql.NullString
	err := row.Scan(&s.ID, &s.BusinessID, &s.Headline, &s.Blurb, &from, &until, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.ActiveFrom = from.String
	s.ActiveUntil = until.String
	return s, nil
}

func (r *SpotlightRepo) Update(ctx context.Context, spotlight *domain.Spotlight) error {
	query := `UPDATE spotlights SET business_id = ?, headline = ?, blurb = ?, active_from = ?, active_until = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		spotlight.BusinessID, spotlight.Headline, spotlight.Blurb, spotlight.ActiveFrom, spotlight.ActiveUntil, spotlight.ID)
	return err
}

func (r *SpotlightRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM spotlights WHERE id = ?`, id)
	return err
}

func (r *SpotlightRepo) List(ctx context.Context) ([]domain.Spotlight, error) {
	query := `SELECT ` + spotlightCols + ` FROM spotlights s ORDER BY s.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list spotlights: %w", err)
	}
	defer rows.Close()

	var spotlights []domain.Spotlight
	for rows.Next() {
		s, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		spotlights = append(spotlights, *s)
	}
	return spotlights, rows.Err()
}
