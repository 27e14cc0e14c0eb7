package domain

import "time"

// MediaType constants
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Promo placement slots
const (
	SlotHome    = "home"
	SlotSidebar = "sidebar"
	SlotFooter  = "footer"
)

// Ad represents a promotional banner or video placed in a page slot
type Ad struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Sponsor   string `json:"sponsor"`
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"` // "image" or "video"
	LinkURL   string `json:"link_url"`
	Slot      string `json:"slot"`
	Active    bool   `json:"active"`
	// Run window; empty string means unbounded on that side.
	ActiveFrom  string    `json:"active_from,omitempty"`
	ActiveUntil string    `json:"active_until,omitempty"`
	Impressions int       `json:"impressions"`
	Clicks      int       `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Spotlight represents a sponsored feature of a directory business
type Spotlight struct {
	ID          int64     `json:"id"`
	BusinessID  int64     `json:"businessId"`
	Business    *Business `json:"business,omitempty"`
	Headline    string    `json:"headline"`
	Blurb       string    `json:"blurb"`
	ActiveFrom  string    `json:"activeFrom,omitempty"`
	ActiveUntil string    `json:"activeUntil,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
