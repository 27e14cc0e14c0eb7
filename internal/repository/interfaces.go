// Package repository defines interfaces for data persistence
package repository

import (
	"context"
	"time"

	"townbeat/internal/cart"
	"townbeat/internal/domain"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, role string, limit, offset int) ([]domain.User, error)
	Count(ctx context.Context, role string) (int, error)
}

// EventRepository defines the interface for event data operations
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
	// ListUpcoming returns published events ending at or after from.
	ListUpcoming(ctx context.Context, from time.Time, limit, offset int) ([]domain.Event, error)
	List(ctx context.Context, status string, limit, offset int) ([]domain.Event, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}

// PostRepository defines the interface for blog post data operations
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id int64) error
	ListPublished(ctx context.Context, limit, offset int) ([]domain.Post, error)
	List(ctx context.Context, limit, offset int) ([]domain.Post, error)
}

// BusinessRepository defines the interface for directory data operations
type BusinessRepository interface {
	Create(ctx context.Context, business *domain.Business) error
	GetByID(ctx context.Context, id int64) (*domain.Business, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Business, error)
	Update(ctx context.Context, business *domain.Business) error
	Delete(ctx context.Context, id int64) error
	// List returns the full directory; window filtering, tier ordering and
	// pagination happen over the complete set in the caller.
	List(ctx context.Context) ([]domain.Business, error)
	Search(ctx context.Context, query string) ([]domain.Business, error)
}

// ProductRepository defines the interface for shop product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	ListActive(ctx context.Context) ([]domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	// MarkPaid flips a pending order to paid and records the provider's
	// customer reference alongside, for later billing-portal lookups.
	MarkPaid(ctx context.Context, sessionID, customerRef string, paidAt time.Time) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error)
	List(ctx context.Context, status string, limit, offset int) ([]domain.Order, error)
}

// AdRepository defines the interface for ad data operations
type AdRepository interface {
	Create(ctx context.Context, ad *domain.Ad) error
	GetByID(ctx context.Context, id int64) (*domain.Ad, error)
	Update(ctx context.Context, ad *domain.Ad) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Ad, error)
	// ListBySlot returns all enabled ads for a slot; the active-window and
	// rotation logic run over the full set in the caller.
	ListBySlot(ctx context.Context, slot string) ([]domain.Ad, error)
	IncrementImpressions(ctx context.Context, id int64) error
	IncrementClicks(ctx context.Context, id int64) error
}

// SpotlightRepository defines the interface for sponsored spotlights
type SpotlightRepository interface {
	Create(ctx context.Context, spotlight *domain.Spotlight) error
	GetByID(ctx context.Context, id int64) (*domain.Spotlight, error)
	Update(ctx context.Context, spotlight *domain.Spotlight) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Spotlight, error)
}

// SubscriberRepository defines the interface for newsletter subscribers
type SubscriberRepository interface {
	Create(ctx context.Context, subscriber *domain.Subscriber) error
	GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
	DeleteByToken(ctx context.Context, token string) (*domain.Subscriber, error)
	List(ctx context.Context, limit, offset int) ([]domain.Subscriber, error)
	Count(ctx context.Context) (int, error)
}

// SubmissionRepository defines the interface for contact/advertise inquiries
type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.Submission) error
	List(ctx context.Context, kind string, limit, offset int) ([]domain.Submission, error)
}

// SettingsRepository handles application configuration
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Repositories bundles all repository interfaces
type Repositories struct {
	Users       UserRepository
	Events      EventRepository
	Posts       PostRepository
	Businesses  BusinessRepository
	Products    ProductRepository
	Orders      OrderRepository
	Ads         AdRepository
	Spotlights  SpotlightRepository
	Subscribers SubscriberRepository
	Submissions SubmissionRepository
	Settings    SettingsRepository
	Carts       cart.Store
}
