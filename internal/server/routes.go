package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"townbeat/internal/domain"

	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all application routes
func (s *Server) setupRoutes() {
	r := s.router

	// Static files with cache headers
	r.Handle("/static/*", s.staticHandler())

	// Health check endpoint
	r.Get("/health", s.handleHealth)

	// Payment provider webhook. Signature-verified, so it lives outside all
	// auth middleware.
	r.Post("/webhooks/payments", s.handlePaymentWebhook)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(s.optionalAuthMiddleware)

		r.Get("/", s.handleHome)
		r.Get("/login", s.handleLoginPage)
		r.Post("/login", s.handleLogin)
		r.Get("/register", s.handleRegisterPage)
		r.Post("/register", s.handleRegister)
		r.Get("/logout", s.handleLogout)

		// Events
		r.Get("/events", s.handleEventsList)
		r.Get("/events/submit", s.handleEventSubmitPage)
		r.Post("/events/submit", s.handleEventSubmit)
		r.Get("/events/{slug}", s.handleEventDetail)

		// Blog
		r.Get("/blog", s.handlePostsList)
		r.Get("/blog/{slug}", s.handlePostDetail)

		// Business directory
		r.Get("/directory", s.handleDirectory)
		r.Get("/directory/{slug}", s.handleBusinessDetail)

		// Shop catalog is browsable without an account
		r.Get("/shop", s.handleShop)
		r.Get("/shop/products/{slug}", s.handleProductDetail)

		// Newsletter
		r.Post("/newsletter/subscribe", s.handleNewsletterSubscribe)
		r.Get("/newsletter/unsubscribe/{token}", s.handleNewsletterUnsubscribe)

		// Inquiry forms
		r.Post("/contact", s.handleContactForm)
		r.Post("/advertise", s.handleAdvertiseForm)

		// Sponsor click-through
		r.Get("/ad/{id}/click", s.handleAdClick)
	})

	// Protected routes - Member
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		// Cart
		r.Get("/cart", s.handleCartPage)
		r.Post("/cart/add", s.handleCartAdd)
		r.Post("/cart/update", s.handleCartUpdate)
		r.Post("/cart/remove", s.handleCartRemove)

		// Checkout
		r.Post("/checkout", s.handleCheckoutStart)
		r.Get("/checkout/thanks", s.handleCheckoutThanks)

		// Orders
		r.Get("/orders", s.handleOrdersList)
		r.Get("/orders/{id}", s.handleOrderDetail)
		r.Get("/orders/{id}/qr", s.handleOrderQR)
		r.Post("/billing/portal", s.handleBillingPortal)
	})

	// Protected routes - Editor
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Use(s.roleMiddleware(domain.RoleEditor, domain.RoleAdmin))

		// Event moderation
		r.Get("/admin/events", s.handleAdminEventsList)
		r.Post("/admin/events", s.handleAdminCreateEvent)
		r.Post("/admin/events/{id}", s.handleAdminUpdateEvent)
		r.Post("/admin/events/{id}/approve", s.handleAdminApproveEvent)
		r.Post("/admin/events/{id}/reject", s.handleAdminRejectEvent)
		r.Post("/admin/events/{id}/delete", s.handleAdminDeleteEvent)

		// Blog management
		r.Get("/admin/posts", s.handleAdminPostsList)
		r.Post("/admin/posts", s.handleAdminCreatePost)
		r.Post("/admin/posts/{id}", s.handleAdminUpdatePost)
		r.Post("/admin/posts/{id}/delete", s.handleAdminDeletePost)
	})

	// Protected routes - Admin only
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Use(s.roleMiddleware(domain.RoleAdmin))

		// Admin dashboard
		r.Get("/admin", s.handleAdminDashboard)

		// Directory management
		r.Get("/admin/businesses", s.handleAdminBusinessesList)
		r.Post("/admin/businesses", s.handleAdminCreateBusiness)
		r.Post("/admin/businesses/{id}", s.handleAdminUpdateBusiness)
		r.Post("/admin/businesses/{id}/delete", s.handleAdminDeleteBusiness)

		// Shop management
		r.Get("/admin/products", s.handleAdminProductsList)
		r.Post("/admin/products", s.handleAdminCreateProduct)
		r.Post("/admin/products/{id}", s.handleAdminUpdateProduct)
		r.Post("/admin/products/{id}/delete", s.handleAdminDeleteProduct)
		r.Get("/admin/orders", s.handleAdminOrdersList)

		// Sponsor placements
		r.Get("/admin/ads", s.handleAdminAdsList)
		r.Post("/admin/ads", s.handleAdminCreateAd)
		r.Post("/admin/ads/{id}/update", s.handleAdminUpdateAd)
		r.Post("/admin/ads/{id}/delete", s.handleAdminDeleteAd)

		r.Get("/admin/spotlights", s.handleAdminSpotlightsList)
		r.Post("/admin/spotlights", s.handleAdminCreateSpotlight)
		r.Post("/admin/spotlights/{id}/delete", s.handleAdminDeleteSpotlight)

		// Audience
		r.Get("/admin/subscribers", s.handleAdminSubscribersList)
		r.Get("/admin/submissions", s.handleAdminSubmissionsList)

		// User management
		r.Get("/admin/users", s.handleAdminUsersList)
		r.Post("/admin/users", s.handleAdminCreateUser)
		r.Post("/admin/users/{id}", s.handleAdminUpdateUser)
		r.Post("/admin/users/{id}/delete", s.handleAdminDeleteUser)

		// Settings
		r.Get("/admin/settings", s.handleAdminSettings)
		r.Post("/admin/settings", s.handleAdminUpdateSettings)
	})

	// API routes (for AJAX calls)
	r.Route("/api", func(r chi.Router) {
		r.Use(s.optionalAuthMiddleware)

		r.Get("/events", s.apiEventsList)
		r.Get("/directory", s.apiDirectory)
		r.Get("/ads/{slot}", s.apiAdsForSlot)
	})
}

// staticHandler serves static files with caching
func (s *Server) staticHandler() http.Handler {
	// Validate and clean static directory path
	staticDir := filepath.Clean("./static")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract the file path from the URL
		urlPath := strings.TrimPrefix(r.URL.Path, "/static/")

		// Clean and validate the path to prevent directory traversal
		cleanPath := filepath.Clean(urlPath)
		if strings.Contains(cleanPath, "..") {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		// Full path to the file
		fullPath := filepath.Join(staticDir, cleanPath)

		// Verify the file is within the static directory
		absStaticDir, _ := filepath.Abs(staticDir)
		absFullPath, _ := filepath.Abs(fullPath)
		if !strings.HasPrefix(absFullPath, absStaticDir) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		// Check if file exists
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		// Set cache headers for static assets (1 week in production)
		if !s.config.Debug {
			w.Header().Set("Cache-Control", "public, max-age=604800")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}

		http.ServeFile(w, r, fullPath)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}
