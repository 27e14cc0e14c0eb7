package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"townbeat/internal/domain"
	"townbeat/internal/repository"
)

// SubscriberRepo implements repository.SubscriberRepository
type SubscriberRepo struct {
	db *DB
}

func NewSubscriberRepo(db *DB) repository.SubscriberRepository {
	return &SubscriberRepo{db: db}
}

func (r *SubscriberRepo) Create(ctx context.Context, subscriber *domain.Subscriber) error {
	query := `INSERT INTO subscribers (email, name, unsubscribe_token) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, subscriber.Email, subscriber.Name, subscriber.UnsubscribeToken)
	if err != nil {
		return fmt.Errorf("failed to create subscriber: %w", err)
	}
	id, _ := result.LastInsertId()
	subscriber.ID = id
	return nil
}

func (r *SubscriberRepo) GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	query := `SELECT id, email, name, unsubscribe_token, created_at FROM subscribers WHERE email = ?`
	s := &domain.Subscriber{}
	var name sql.NullString
	err := r.db.QueryRowContext(ctx, query, email).Scan(&s.ID, &s.Email, &name, &s.UnsubscribeToken, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber: %w", err)
	}
	s.Name = name.String
	return s, nil
}

func (r *SubscriberRepo) DeleteByToken(ctx context.Context, token string) (*domain.Subscriber, error) {
	query := `SELECT id, email, name, unsubscribe_token, created_at FROM subscribers WHERE unsubscribe_token = ?`
	s := &domain.Subscriber{}
	var name sql.NullString
	err := r.db.QueryRowContext(ctx, query, token).Scan(&s.ID, &s.Email, &name, &s.UnsubscribeToken, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up subscriber token: %w", err)
	}
	s.Name = name.String

	if _, err := r.db.ExecContext(ctx, `DELETE FROM subscribers WHERE id = ?`, s.ID); err != nil {
		return nil, fmt.Errorf("failed to delete subscriber: %w", err)
	}
	return s, nil
}

func (r *SubscriberRepo) List(ctx context.Context, limit, offset int) ([]domain.Subscriber, error) {
	query := `SELECT id, email, name, unsubscribe_token, created_at FROM subscribers ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	var subscribers []domain.Subscriber
	for rows.Next() {
		var s domain.Subscriber
		var name sql.NullString
		if err := rows.Scan(&s.ID, &s.Email, &name, &s.UnsubscribeToken, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Name = name.String
		subscribers = append(subscribers, s)
	}
	return subscribers, rows.Err()
}

func (r *SubscriberRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscribers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return count, nil
}

// SubmissionRepo implements repository.SubmissionRepository
type SubmissionRepo struct {
	db *DB
}

func NewSubmissionRepo(db *DB) repository.SubmissionRepository {
	return &SubmissionRepo{db: db}
}

func (r *SubmissionRepo) Create(ctx context.Context, submission *domain.Submission) error {
	query := `INSERT INTO submissions (kind, name, email, message) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, submission.Kind, submission.Name, submission.Email, submission.Message)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	id, _ := result.LastInsertId()
	submission.ID = id
	return nil
}

func (r *SubmissionRepo) List(ctx context.Context, kind string, limit, offset int) ([]domain.Submission, error) {
	var rows *sql.Rows
	var err error
	if kind != "" {
		rows, err = r.db.QueryContext(ctx, `SELECT id, kind, name, email, message, created_at FROM submissions WHERE kind = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`, kind, limit, offset)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT id, kind, name, email, message, created_at FROM submissions ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []domain.Submission
	for rows.Next() {
		var s domain.Submission
		if err := rows.Scan(&s.ID, &s.Kind, &s.Name, &s.Email, &s.Message, &s.CreatedAt); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}
