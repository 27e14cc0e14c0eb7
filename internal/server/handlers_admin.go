package server

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"townbeat/internal/domain"
)

// parseID pulls the {id} route parameter
func parseID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(getURLParam(r, "id"), 10, 64)
	return id
}

// handleAdminDashboard shows site stats
func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pendingEvents, _ := s.repos.Events.CountByStatus(ctx, domain.EventStatusPending)
	subscribers, _ := s.repos.Subscribers.Count(ctx)
	recentOrders, _ := s.repos.Orders.List(ctx, "", 10, 0)
	submissions, _ := s.repos.Submissions.List(ctx, "", 10, 0)

	data := s.newPageData(r, "Admin")
	data.Data = map[string]interface{}{
		"PendingEvents": pendingEvents,
		"Subscribers":   subscribers,
		"RecentOrders":  recentOrders,
		"Submissions":   submissions,
	}
	s.render(w, r, "pages/admin/dashboard.html", data)
}

// --- Events ---

// handleAdminEventsList lists events for moderation, pending first
func (s *Server) handleAdminEventsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := r.URL.Query().Get("status")
	_, offset := pageParam(r)

	events, err := s.repos.Events.List(ctx, status, pageSize, offset)
	if err != nil {
		http.Error(w, "Error loading events", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Manage Events")
	data.Data = map[string]interface{}{
		"Events": events,
		"Status": status,
	}
	s.render(w, r, "pages/admin/events.html", data)
}

func (s *Server) eventFromForm(r *http.Request, event *domain.Event) {
	event.Title = strings.TrimSpace(r.FormValue("title"))
	event.Description = strings.TrimSpace(r.FormValue("description"))
	event.Venue = strings.TrimSpace(r.FormValue("venue"))
	if t, err := time.Parse("2006-01-02T15:04", r.FormValue("starts_at")); err == nil {
		event.StartsAt = t
	}
	if t, err := time.Parse("2006-01-02T15:04", r.FormValue("ends_at")); err == nil {
		event.EndsAt = t
	}
}

// handleAdminCreateEvent creates an event directly in published state
func (s *Server) handleAdminCreateEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	event := &domain.Event{Status: domain.EventStatusPublished}
	s.eventFromForm(r, event)
	if event.Title == "" || event.StartsAt.IsZero() {
		http.Error(w, "Title and start date are required", http.StatusBadRequest)
		return
	}
	event.Slug = slugify(event.Title)

	if err := s.repos.Events.Create(r.Context(), event); err != nil {
		log.Printf("❌ Admin create event: %v", err)
		http.Error(w, "Error creating event", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
}

// handleAdminUpdateEvent edits an existing event
func (s *Server) handleAdminUpdateEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	event, err := s.repos.Events.GetByID(ctx, parseID(r))
	if err != nil || event == nil {
		http.NotFound(w, r)
		return
	}

	s.eventFromForm(r, event)
	if err := s.repos.Events.Update(ctx, event); err != nil {
		http.Error(w, "Error updating event", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
}

func (s *Server) setEventStatus(w http.ResponseWriter, r *http.Request, status string) {
	ctx := r.Context()
	event, err := s.repos.Events.GetByID(ctx, parseID(r))
	if err != nil || event == nil {
		http.NotFound(w, r)
		return
	}

	if err := s.repos.Events.UpdateStatus(ctx, event.ID, status); err != nil {
		http.Error(w, "Error updating event", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
}

// handleAdminApproveEvent publishes a pending submission
func (s *Server) handleAdminApproveEvent(w http.ResponseWriter, r *http.Request) {
	s.setEventStatus(w, r, domain.EventStatusPublished)
}

// handleAdminRejectEvent rejects a pending submission
func (s *Server) handleAdminRejectEvent(w http.ResponseWriter, r *http.Request) {
	s.setEventStatus(w, r, domain.EventStatusRejected)
}

func (s *Server) handleAdminDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.repos.Events.Delete(r.Context(), parseID(r)); err != nil {
		http.Error(w, "Error deleting event", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
}

// --- Posts ---

func (s *Server) handleAdminPostsList(w http.ResponseWriter, r *http.Request) {
	_, offset := pageParam(r)
	posts, err := s.repos.Posts.List(r.Context(), pageSize, offset)
	if err != nil {
		http.Error(w, "Error loading posts", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Manage Posts")
	data.Data = posts
	s.render(w, r, "pages/admin/posts.html", data)
}

func (s *Server) postFromForm(r *http.Request, post *domain.Post, now time.Time) {
	post.Title = strings.TrimSpace(r.FormValue("title"))
	post.Excerpt = strings.TrimSpace(r.FormValue("excerpt"))
	post.Body = r.FormValue("body")

	published := r.FormValue("published") == "on" || r.FormValue("published") == "true"
	if published && !post.Published {
		post.PublishedAt = now
	}
	post.Published = published
}

func (s *Server) handleAdminCreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	claims := getUserClaims(r)
	post := &domain.Post{AuthorID: claims.UserID}
	s.postFromForm(r, post, s.clock())
	if post.Title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}
	post.Slug = slugify(post.Title)

	if err := s.repos.Posts.Create(r.Context(), post); err != nil {
		log.Printf("❌ Admin create post: %v", err)
		http.Error(w, "Error creating post", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

func (s *Server) handleAdminUpdatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	post, err := s.repos.Posts.GetByID(ctx, parseID(r))
	if err != nil || post == nil {
		http.NotFound(w, r)
		return
	}

	s.postFromForm(r, post, s.clock())
	if err := s.repos.Posts.Update(ctx, post); err != nil {
		http.Error(w, "Error updating post", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

func (s *Server) handleAdminDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.repos.Posts.Delete(r.Context(), parseID(r)); err != nil {
		http.Error(w, "Error deleting post", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

// --- Directory ---

func (s *Server) handleAdminBusinessesList(w http.ResponseWriter, r *http.Request) {
	businesses, err := s.repos.Businesses.List(r.Context())
	if err != nil {
		http.Error(w, "Error loading businesses", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Manage Directory")
	data.Data = businesses
	s.render(w, r, "pages/admin/businesses.html", data)
}

func businessFromForm(r *http.Request, b *domain.Business) {
	b.Name = strings.TrimSpace(r.FormValue("name"))
	b.Description = strings.TrimSpace(r.FormValue("description"))
	b.Category = strings.TrimSpace(r.FormValue("category"))
	b.Address = strings.TrimSpace(r.FormValue("address"))
	b.Phone = strings.TrimSpace(r.FormValue("phone"))
	b.Website = strings.TrimSpace(r.FormValue("website"))
	b.Tier = r.FormValue("tier")
	b.ActiveFrom = strings.TrimSpace(r.FormValue("active_from"))
	b.ActiveUntil = strings.TrimSpace(r.FormValue("active_until"))
}

func (s *Server) handleAdminCreateBusiness(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	b := &domain.Business{}
	businessFromForm(r, b)
	if b.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}
	if !domain.ValidTier(b.Tier) {
		http.Error(w, "Unknown tier", http.StatusBadRequest)
		return
	}
	b.Slug = slugify(b.Name)

	if err := s.repos.Businesses.Create(r.Context(), b); err != nil {
		log.Printf("❌ Admin create business: %v", err)
		http.Error(w, "Error creating business", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/businesses", http.StatusSeeOther)
}

func (s *Server) handleAdminUpdateBusiness(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	b, err := s.repos.Businesses.GetByID(ctx, parseID(r))
	if err != nil || b == nil {
		http.NotFound(w, r)
		return
	}

	businessFromForm(r, b)
	if !domain.ValidTier(b.Tier) {
		http.Error(w, "Unknown tier", http.StatusBadRequest)
		return
	}
	if err := s.repos.Businesses.Update(ctx, b); err != nil {
		http.Error(w, "Error updating business", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/businesses", http.StatusSeeOther)
}

func (s *Server) handleAdminDeleteBusiness(w http.ResponseWriter, r *http.Request) {
	if err := s.repos.Businesses.Delete(r.Context(), parseID(r)); err != nil {
		http.Error(w, "Error deleting business", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/businesses", http.StatusSeeOther)
}

// --- Shop ---

func (s *Server) handleAdminProductsList(w http.ResponseWriter, r *http.Request) {
	products, err := s.repos.Products.List(r.Context())
	if err != nil {
		http.Error(w, "Error loading products", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Manage Products")
	data.Data = products
	s.render(w, r, "pages/admin/products.html", data)
}

func (s *Server) productFromForm(r *http.Request, p *domain.Product) {
	p.Name = strings.TrimSpace(r.FormValue("name"))
	p.Description = strings.TrimSpace(r.FormValue("description"))
	p.ImageURL = strings.TrimSpace(r.FormValue("image_url"))
	if price, err := strconv.ParseInt(r.FormValue("unit_price"), 10, 64); err == nil {
		p.UnitPrice = price
	}
	p.Currency = s.config.Stripe.Currency
	p.Active = r.FormValue("active") == "on" || r.FormValue("active") == "true"
}

func (s *Server) handleAdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	p := &domain.Product{}
	s.productFromForm(r, p)
	if p.Name == "" || p.UnitPrice <= 0 {
		http.Error(w, "Name and a positive price (in cents) are required", http.StatusBadRequest)
		return
	}
	p.Slug = slugify(p.Name)

	if err := s.repos.Products.Create(r.Context(), p); err != nil {
		log.Printf("❌ Admin create product: %v", err)
		http.Error(w, "Error creating product", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

func (s *Server) handleAdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	p, err := s.repos.Products.GetByID(ctx, parseID(r))
	if err != nil || p == nil {
		http.NotFound(w, r)
		return
	}

	s.productFromForm(r, p)
	if err := s.repos.Products.Update(ctx, p); err != nil {
		http.Error(w, "Error updating product", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

func (s *Server) handleAdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.repos.Products.Delete(r.Context(), parseID(r)); err != nil {
		http.Error(w, "Error deleting product", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

func (s *Server) handleAdminOrdersList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	_, offset := pageParam(r)

	orders, err := s.repos.Orders.List(r.Context(), status, pageSize, offset)
	if err != nil {
		http.Error(w, "Error loading orders", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Orders")
	data.Data = map[string]interface{}{
		"Orders": orders,
		"Status": status,
	}
	s.render(w, r, "pages/admin/orders.html", data)
}

// --- Sponsor placements ---

func (s *Server) handleAdminAdsList(w http.ResponseWriter, r *http.Request) {
	ads, err := s.repos.Ads.List(r.Context())
	if err != nil {
		http.Error(w, "Error loading ads", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Manage Ads")
	data.Data = ads
	s.render(w, r, "pages/admin/ads.html", data)
}

func adFromForm(r *http.Request, ad *domain.Ad) {
	ad.Title = strings.TrimSpace(r.FormValue("title"))
	ad.Sponsor = strings.TrimSpace(r.FormValue("sponsor"))
	ad.MediaURL = strings.TrimSpace(r.FormValue("media_url"))
	ad.MediaType = r.FormValue("media_type")
	ad.LinkURL = strings.TrimSpace(r.FormValue("link_url"))
	ad.Slot = r.FormValue("slot")
	ad.Active = r.FormValue("active") == "on" || r.FormValue("active") == "true"
	ad.ActiveFrom = strings.TrimSpace(r.FormValue("active_from"))
	ad.ActiveUntil = strings.TrimSpace(r.FormValue("active_until"))
}

func validSlot(slot string) bool {
	switch slot {
	case domain.SlotHome, domain.SlotSidebar, domain.SlotFooter:
		return true
	}
	return false
}

func (s *Server) handleAdminCreateAd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	ad := &domain.Ad{}
	adFromForm(r, ad)
	if ad.Title == "" || ad.MediaURL == "" {
		http.Error(w, "Title and media URL are required", http.StatusBadRequest)
		return
	}
	if !validSlot(ad.Slot) {
		http.Error(w, "Unknown slot", http.StatusBadRequest)
		return
	}

	if err := s.repos.Ads.Create(r.Context(), ad); err != nil {
		log.Printf("❌ Admin create ad: %v", err)
		http.Error(w, "Error creating ad", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/ads", http.StatusSeeOther)
}

func (s *Server) handleAdminUpdateAd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	ad, err := s.repos.Ads.GetByID(ctx, parseID(r))
	if err != nil || ad == nil {
		http.NotFound(w, r)
		return
	}

	adFromForm(r, ad)
	if !validSlot(ad.Slot) {
		http.Error(w, "Unknown slot", http.StatusBadRequest)
		return
	}
	if err := s.repos.Ads.Update(ctx, ad); err != nil {
		http.Error(w, "Error updating ad", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/ads", http.StatusSeeOther)
}

func (s *Server) handleAdminDeleteAd(w http.ResponseWriter, r *http.Request) {
	if err := s.repos.Ads.Delete(r.Context(), parseID(r)); err != nil {
		http.Error(w, "Error deleting ad", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/ads", http.StatusSeeOther)
}

func (s *Server) handleAdminSpotlightsList(w http.ResponseWriter, r *http.Request) {
	spotlights, err := s.repos.Spotlights.List(r.Context())
	if err != nil {
		http.Error(w, "Error loading spotlights", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Manage Spotlights")
	data.Data = spotlights
	s.render(w, r, "pages/admin/spotlights.html", data)
}

func (s *Server) handleAdminCreateSpotlight(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	businessID, _ := strconv.ParseInt(r.FormValue("business_id"), 10, 64)
	business, err := s.repos.Businesses.GetByID(r.Context(), businessID)
	if err != nil || business == nil {
		http.Error(w, "Unknown business", http.StatusBadRequest)
		return
	}

	spotlight := &domain.Spotlight{
		BusinessID:  businessID,
		Headline:    strings.TrimSpace(r.FormValue("headline")),
		Blurb:       strings.TrimSpace(r.FormValue("blurb")),
		ActiveFrom:  strings.TrimSpace(r.FormValue("active_from")),
		ActiveUntil: strings.TrimSpace(r.FormValue("active_until")),
	}
	if spotlight.Headline == "" {
		http.Error(w, "Headline is required", http.StatusBadRequest)
		return
	}

	if err := s.repos.Spotlights.Create(r.Context(), spotlight); err != nil {
		http.Error(w, "Error creating spotlight", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/spotlights", http.StatusSeeOther)
}

func (s *Server) handleAdminDeleteSpotlight(w http.ResponseWriter, r *http.Request) {
	if err := s.repos.Spotlights.Delete(r.Context(), parseID(r)); err != nil {
		http.Error(w, "Error deleting spotlight", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/spotlights", http.StatusSeeOther)
}

// --- Audience ---

func (s *Server) handleAdminSubscribersList(w http.ResponseWriter, r *http.Request) {
	_, offset := pageParam(r)
	subscribers, err := s.repos.Subscribers.List(r.Context(), pageSize, offset)
	if err != nil {
		http.Error(w, "Error loading subscribers", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Subscribers")
	data.Data = subscribers
	s.render(w, r, "pages/admin/subscribers.html", data)
}

func (s *Server) handleAdminSubmissionsList(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	_, offset := pageParam(r)

	submissions, err := s.repos.Submissions.List(r.Context(), kind, pageSize, offset)
	if err != nil {
		http.Error(w, "Error loading submissions", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Inquiries")
	data.Data = map[string]interface{}{
		"Submissions": submissions,
		"Kind":        kind,
	}
	s.render(w, r, "pages/admin/submissions.html", data)
}

// --- Users ---

func (s *Server) handleAdminUsersList(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	_, offset := pageParam(r)

	users, err := s.repos.Users.List(r.Context(), role, pageSize, offset)
	if err != nil {
		http.Error(w, "Error loading users", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Manage Users")
	data.Data = map[string]interface{}{
		"Users": users,
		"Role":  role,
	}
	s.render(w, r, "pages/admin/users.html", data)
}

func validRole(role string) bool {
	switch role {
	case domain.RoleMember, domain.RoleEditor, domain.RoleAdmin:
		return true
	}
	return false
}

func (s *Server) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	role := r.FormValue("role")
	password := r.FormValue("password")

	if !validEmail(email) || !validRole(role) || len(password) < 8 {
		http.Error(w, "Valid email, role and password are required", http.StatusBadRequest)
		return
	}

	hash, err := hashPassword(password)
	if err != nil {
		http.Error(w, "Error processing password", http.StatusInternalServerError)
		return
	}

	user := &domain.User{
		Name:         strings.TrimSpace(r.FormValue("name")),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repos.Users.Create(r.Context(), user); err != nil {
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

func (s *Server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	user, err := s.repos.Users.GetByID(ctx, parseID(r))
	if err != nil || user == nil {
		http.NotFound(w, r)
		return
	}

	if name := strings.TrimSpace(r.FormValue("name")); name != "" {
		user.Name = name
	}
	if role := r.FormValue("role"); role != "" {
		if !validRole(role) {
			http.Error(w, "Unknown role", http.StatusBadRequest)
			return
		}
		user.Role = role
	}
	if password := r.FormValue("password"); password != "" {
		if len(password) < 8 {
			http.Error(w, "Password too short", http.StatusBadRequest)
			return
		}
		hash, err := hashPassword(password)
		if err != nil {
			http.Error(w, "Error processing password", http.StatusInternalServerError)
			return
		}
		user.PasswordHash = hash
	}

	if err := s.repos.Users.Update(ctx, user); err != nil {
		http.Error(w, "Error updating user", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r)
	id := parseID(r)
	if id == claims.UserID {
		http.Error(w, "You cannot delete your own account", http.StatusBadRequest)
		return
	}

	if err := s.repos.Users.Delete(r.Context(), id); err != nil {
		http.Error(w, "Error deleting user", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// --- Settings ---

// settingsKeys are the editable site settings
var settingsKeys = []string{"site_notice", "hero_tagline", "footer_text"}

func (s *Server) handleAdminSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	values := make(map[string]string, len(settingsKeys))
	for _, key := range settingsKeys {
		v, err := s.repos.Settings.Get(ctx, key)
		if err != nil {
			http.Error(w, "Error loading settings", http.StatusInternalServerError)
			return
		}
		values[key] = v
	}

	data := s.newPageData(r, "Settings")
	data.Data = values
	s.render(w, r, "pages/admin/settings.html", data)
}

func (s *Server) handleAdminUpdateSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	for _, key := range settingsKeys {
		if !r.Form.Has(key) {
			continue
		}
		if err := s.repos.Settings.Set(ctx, key, r.FormValue(key)); err != nil {
			http.Error(w, "Error saving settings", http.StatusInternalServerError)
			return
		}
	}
	http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
}
