// Package domain defines core business entities
package domain

import (
	"time"
)

// User represents a site account (member, editor, or admin)
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"` // member, editor, admin
	CreatedAt    time.Time `json:"createdAt"`
}

// Event represents a community event
type Event struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	Venue          string    `json:"venue"`
	StartsAt       time.Time `json:"startsAt"`
	EndsAt         time.Time `json:"endsAt,omitempty"`
	Status         string    `json:"status"` // pending, published, rejected
	SubmitterEmail string    `json:"submitterEmail,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Post represents a blog post
type Post struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	Body        string    `json:"body"`
	AuthorID    int64     `json:"authorId"`
	Author      *User     `json:"author,omitempty"`
	Published   bool      `json:"published"`
	PublishedAt time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Business represents a directory listing
type Business struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Address     string `json:"address"`
	Phone       string `json:"phone,omitempty"`
	Website     string `json:"website,omitempty"`
	Tier        string `json:"tier"` // featured, standard, basic
	// Sponsorship window; empty string means unbounded on that side.
	ActiveFrom  string    `json:"activeFrom,omitempty"`
	ActiveUntil string    `json:"activeUntil,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Product represents a shop item
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl,omitempty"`
	// UnitPrice is in cents to avoid float arithmetic on money.
	UnitPrice int64     `json:"unitPrice"`
	Currency  string    `json:"currency"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrderItem represents a line item captured at checkout time
type OrderItem struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Qty       int    `json:"qty"`
}

// Order represents a shop order reconciled against the payment provider
type Order struct {
	ID            int64       `json:"id"`
	UserID        int64       `json:"userId"`
	User          *User       `json:"user,omitempty"`
	Items         []OrderItem `json:"items"`
	Total         int64       `json:"total"`
	Currency      string      `json:"currency"`
	SessionID     string      `json:"sessionId,omitempty"`
	CustomerRef   string      `json:"customerRef,omitempty"`
	PickupCode    string      `json:"pickupCode"`
	Status        string      `json:"status"` // pending, paid, cancelled
	CustomerEmail string      `json:"customerEmail"`
	CreatedAt     time.Time   `json:"createdAt"`
	PaidAt        time.Time   `json:"paidAt,omitempty"`
}

// Subscriber represents a newsletter subscriber
type Subscriber struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name,omitempty"`
	UnsubscribeToken string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Submission represents a contact or advertise inquiry
type Submission struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"` // contact, advertise
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Status constants
const (
	// Event statuses
	EventStatusPending   = "pending"
	EventStatusPublished = "published"
	EventStatusRejected  = "rejected"

	// Order statuses
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"

	// Submission kinds
	SubmissionContact   = "contact"
	SubmissionAdvertise = "advertise"

	// User roles
	RoleMember = "member"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// Directory tiers, ordered by display precedence
const (
	TierFeatured = "featured"
	TierStandard = "standard"
	TierBasic    = "basic"
)

// ValidTier reports whether t names a known directory tier.
// Unknown tiers are rejected at the validation boundary, never defaulted.
func ValidTier(t string) bool {
	switch t {
	case TierFeatured, TierStandard, TierBasic:
		return true
	}
	return false
}

// EventStatusLabel returns a human-readable label for an event status
func EventStatusLabel(status string) string {
	labels := map[string]string{
		EventStatusPending:   "Pending Review",
		EventStatusPublished: "Published",
		EventStatusRejected:  "Rejected",
	}
	if label, ok := labels[status]; ok {
		return label
	}
	return status
}
