package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"townbeat/internal/domain"
	"townbeat/internal/repository"
)

// EventRepo implements repository.EventRepository
type EventRepo struct {
	db *DB
}

func NewEventRepo(db *DB) repository.EventRepository {
	return &EventRepo{db: db}
}

const eventCols = `id, title, slug, description, venue, starts_at, ends_at, status, submitter_email, created_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var submitter sql.NullString
	var ends sql.NullTime
	err := row.Scan(&e.ID, &e.Title, &e.Slug, &e.Description, &e.Venue, &e.StartsAt, &ends, &e.Status, &submitter, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if ends.Valid {
		e.EndsAt = ends.Time
	}
	if submitter.Valid {
		e.SubmitterEmail = submitter.String
	}
	return e, nil
}

func (r *EventRepo) Create(ctx context.Context, event *domain.Event) error {
	query := `INSERT INTO events (title, slug, description, venue, starts_at, ends_at, status, submitter_email) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var ends interface{}
	if !event.EndsAt.IsZero() {
		ends = event.EndsAt
	}
	result, err := r.db.ExecContext(ctx, query,
		event.Title, event.Slug, event.Description, event.Venue, event.StartsAt, ends, event.Status, event.SubmitterEmail)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	id, _ := result.LastInsertId()
	event.ID = id
	return nil
}

func (r *EventRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventCols+` FROM events WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (r *EventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	event, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventCols+` FROM events WHERE slug = ?`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event by slug: %w", err)
	}
	return event, nil
}

func (r *EventRepo) Update(ctx context.Context, event *domain.Event) error {
	query := `UPDATE events SET title = ?, slug = ?, description = ?, venue = ?, starts_at = ?, ends_at = ?, status = ? WHERE id = ?`
	var ends interface{}
	if !event.EndsAt.IsZero() {
		ends = event.EndsAt
	}
	_, err := r.db.ExecContext(ctx, query,
		event.Title, event.Slug, event.Description, event.Venue, event.StartsAt, ends, event.Status, event.ID)
	return err
}

func (r *EventRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE events SET status = ? WHERE id = ?`, status, id)
	return err
}

func (r *EventRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return err
}

func (r *EventRepo) ListUpcoming(ctx context.Context, from time.Time, limit, offset int) ([]domain.Event, error) {
	query := `SELECT ` + eventCols + ` FROM events
		WHERE status = ? AND (COALESCE(ends_at, starts_at) >= ?)
		ORDER BY starts_at ASC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, domain.EventStatusPublished, from, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *EventRepo) List(ctx context.Context, status string, limit, offset int) ([]domain.Event, error) {
	var rows *sql.Rows
	var err error
	if status != "" {
		rows, err = r.db.QueryContext(ctx, `SELECT `+eventCols+` FROM events WHERE status = ? ORDER BY starts_at DESC LIMIT ? OFFSET ?`, status, limit, offset)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+eventCols+` FROM events ORDER BY starts_at DESC LIMIT ? OFFSET ?`, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]domain.Event, error) {
	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *EventRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE status = ?`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// PostRepo implements repository.PostRepository
type PostRepo struct {
	db *DB
}

func NewPostRepo(db *DB) repository.PostRepository {
	return &PostRepo{db: db}
}

const postCols = `id, title, slug, excerpt, body, author_id, published, published_at, created_at`

func scanPost(row interface{ Scan(...interface{}) error }) (*domain.Post, error) {
	p := &domain.Post{}
	var authorID sql.NullInt64
	var publishedAt sql.NullTime
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Body, &authorID, &p.Published, &publishedAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if authorID.Valid {
		p.AuthorID = authorID.Int64
	}
	if publishedAt.Valid {
		p.PublishedAt = publishedAt.Time
	}
	return p, nil
}

func (r *PostRepo) Create(ctx context.Context, post *domain.Post) error {
	query := `INSERT INTO posts (title, slug, excerpt, body, author_id, published, published_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	var publishedAt interface{}
	if !post.PublishedAt.IsZero() {
		publishedAt = post.PublishedAt
	}
	result, err := r.db.ExecContext(ctx, query,
		post.Title, post.Slug, post.Excerpt, post.Body, post.AuthorID, post.Published, publishedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	id, _ := result.LastInsertId()
	post.ID = id
	return nil
}

func (r *PostRepo) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := scanPost(r.db.QueryRowContext(ctx, `SELECT `+postCols+` FROM posts WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

func (r *PostRepo) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	post, err := scanPost(r.db.QueryRowContext(ctx, `SELECT `+postCols+` FROM posts WHERE slug = ?`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by slug: %w", err)
	}
	return post, nil
}

func (r *PostRepo) Update(ctx context.Context, post *domain.Post) error {
	query := `UPDATE posts SET title = ?, slug = ?, excerpt = ?, body = ?, published = ?, published_at = ? WHERE id = ?`
	var publishedAt interface{}
	if !post.PublishedAt.IsZero() {
		publishedAt = post.PublishedAt
	}
	_, err := r.db.ExecContext(ctx, query,
		post.Title, post.Slug, post.Excerpt, post.Body, post.Published, publishedAt, post.ID)
	return err
}

func (r *PostRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return err
}

func (r *PostRepo) ListPublished(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postCols+` FROM posts WHERE published = 1 ORDER BY published_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list published posts: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostRepo) List(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postCols+` FROM posts ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]domain.Post, error) {
	var posts []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}
