package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"townbeat/internal/domain"
	"townbeat/internal/notifications"
	"townbeat/internal/promos"
	"townbeat/internal/rotation"

	"golang.org/x/crypto/bcrypt"
)

const pageSize = 20

// PageData holds common data for all page templates
type PageData struct {
	Title  string
	Config interface{}
	Year   int
	User   *Claims
	Flash  *FlashMessage
	Data   interface{}
}

// FlashMessage represents a flash message
type FlashMessage struct {
	Type    string // success, error, warning, info
	Message string
}

// newPageData creates a new PageData with common fields
func (s *Server) newPageData(r *http.Request, title string) *PageData {
	claims := getUserClaims(r)

	return &PageData{
		Title:  title,
		Config: s.config,
		Year:   time.Now().Year(),
		User:   claims,
	}
}

// render renders a template with the given data
func (s *Server) render(w http.ResponseWriter, r *http.Request, template string, data *PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := s.templates.Render(w, template, data); err != nil {
		http.Error(w, "Error rendering page: "+err.Error(), http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// formError answers a form endpoint with the standard failure envelope.
// Validation problems are the caller's fault (4xx); anything upstream is 5xx.
func formError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "error": msg})
}

func formOK(w http.ResponseWriter, extra map[string]interface{}) {
	body := map[string]interface{}{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// pageParam parses ?page starting at 1.
func pageParam(r *http.Request) (page, offset int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	return page, (page - 1) * pageSize
}

func validEmail(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil
}

// handleHome renders the home page
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.clock()

	events, err := s.repos.Events.ListUpcoming(ctx, now, 5, 0)
	if err != nil {
		log.Printf("❌ Home events: %v", err)
	}

	posts, err := s.repos.Posts.ListPublished(ctx, 3, 0)
	if err != nil {
		log.Printf("❌ Home posts: %v", err)
	}

	banners := s.adsForSlot(w, r, domain.SlotHome, now, 3)

	var spotlight *domain.Spotlight
	if spots, err := s.repos.Spotlights.List(ctx); err == nil {
		spotlight = promos.PickSpotlight(spots, now)
	}

	data := s.newPageData(r, "Home")
	data.Data = map[string]interface{}{
		"Events":    events,
		"Posts":     posts,
		"Banners":   banners,
		"Spotlight": spotlight,
	}
	s.render(w, r, "pages/public/home.html", data)
}

// adsForSlot runs the placement pipeline for one slot and counts
// impressions for whatever it returns.
func (s *Server) adsForSlot(w http.ResponseWriter, r *http.Request, slot string, now time.Time, limit int) []domain.Ad {
	if !s.config.Features.Ads || s.promos == nil {
		return nil
	}

	ads, err := s.promos.ForSlot(r.Context(), slot, s.visitorKey(w, r), now, limit)
	if err != nil {
		log.Printf("⚠️ Ad selection for slot %s: %v", slot, err)
		return nil
	}

	// Increment impressions in background
	for _, ad := range ads {
		go func(id int64) {
			s.repos.Ads.IncrementImpressions(context.Background(), id)
		}(ad.ID)
	}
	return ads
}

// handleLoginPage renders the login page
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	// If already logged in, go home
	if claims := getUserClaims(r); claims != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := s.newPageData(r, "Log In")
	s.render(w, r, "pages/public/login.html", data)
}

// handleLogin processes login form
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	ctx := r.Context()
	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil || user == nil {
		data := s.newPageData(r, "Log In")
		data.Flash = &FlashMessage{Type: "error", Message: "Invalid credentials"}
		s.render(w, r, "pages/public/login.html", data)
		return
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		data := s.newPageData(r, "Log In")
		data.Flash = &FlashMessage{Type: "error", Message: "Invalid credentials"}
		s.render(w, r, "pages/public/login.html", data)
		return
	}

	token, err := s.generateToken(user)
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	maxAge := s.config.JWT.ExpirationHours * 3600
	s.setAuthCookie(w, token, maxAge)

	switch user.Role {
	case domain.RoleAdmin:
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	case domain.RoleEditor:
		http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// handleRegisterPage renders the registration page
func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	data := s.newPageData(r, "Sign Up")
	s.render(w, r, "pages/public/register.html", data)
}

// handleRegister processes registration form
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error processing form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirmPassword := r.FormValue("confirm_password")

	if password != confirmPassword {
		data := s.newPageData(r, "Sign Up")
		data.Flash = &FlashMessage{Type: "error", Message: "Passwords do not match"}
		s.render(w, r, "pages/public/register.html", data)
		return
	}

	if name == "" || !validEmail(email) || len(password) < 8 {
		data := s.newPageData(r, "Sign Up")
		data.Flash = &FlashMessage{Type: "error", Message: "Name, valid email and a password of at least 8 characters are required"}
		s.render(w, r, "pages/public/register.html", data)
		return
	}

	ctx := r.Context()
	existingUser, _ := s.repos.Users.GetByEmail(ctx, email)
	if existingUser != nil {
		data := s.newPageData(r, "Sign Up")
		data.Flash = &FlashMessage{Type: "error", Message: "Email is already registered"}
		s.render(w, r, "pages/public/register.html", data)
		return
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		http.Error(w, "Error processing registration", http.StatusInternalServerError)
		return
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         domain.RoleMember,
	}

	if err := s.repos.Users.Create(ctx, user); err != nil {
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// handleLogout logs out the user
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Helper functions
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// handleEventsList shows upcoming published events
func (s *Server) handleEventsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, offset := pageParam(r)

	events, err := s.repos.Events.ListUpcoming(ctx, s.clock(), pageSize, offset)
	if err != nil {
		http.Error(w, "Error loading events", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Events")
	data.Data = map[string]interface{}{
		"Events": events,
		"Page":   page,
	}
	s.render(w, r, "pages/public/events.html", data)
}

// handleEventDetail shows one published event
func (s *Server) handleEventDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	event, err := s.repos.Events.GetBySlug(ctx, getURLParam(r, "slug"))
	if err != nil || event == nil || event.Status != domain.EventStatusPublished {
		http.NotFound(w, r)
		return
	}

	data := s.newPageData(r, event.Title)
	data.Data = map[string]interface{}{
		"Event":   event,
		"Sidebar": s.adsForSlot(w, r, domain.SlotSidebar, s.clock(), 2),
	}
	s.render(w, r, "pages/public/event_detail.html", data)
}

// handleEventSubmitPage renders the community event submission form
func (s *Server) handleEventSubmitPage(w http.ResponseWriter, r *http.Request) {
	data := s.newPageData(r, "Submit an Event")
	s.render(w, r, "pages/public/event_submit.html", data)
}

// handleEventSubmit accepts a community event submission. The event lands
// in pending state until an editor approves it.
func (s *Server) handleEventSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		formError(w, http.StatusBadRequest, "could not parse form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	venue := strings.TrimSpace(r.FormValue("venue"))
	email := strings.TrimSpace(r.FormValue("email"))
	startsAt, err := time.Parse("2006-01-02T15:04", r.FormValue("starts_at"))

	switch {
	case title == "":
		formError(w, http.StatusBadRequest, "title is required")
		return
	case err != nil:
		formError(w, http.StatusBadRequest, "start date is required, format 2006-01-02T15:04")
		return
	case !validEmail(email):
		formError(w, http.StatusBadRequest, "a valid contact email is required")
		return
	}

	event := &domain.Event{
		Title:          title,
		Slug:           slugify(title),
		Description:    strings.TrimSpace(r.FormValue("description")),
		Venue:          venue,
		StartsAt:       startsAt,
		Status:         domain.EventStatusPending,
		SubmitterEmail: email,
	}
	if endsAt, err := time.Parse("2006-01-02T15:04", r.FormValue("ends_at")); err == nil {
		event.EndsAt = endsAt
	}

	if err := s.repos.Events.Create(r.Context(), event); err != nil {
		log.Printf("❌ Event submission: %v", err)
		formError(w, http.StatusInternalServerError, "could not save the event")
		return
	}

	formOK(w, map[string]interface{}{"status": domain.EventStatusPending})
}

// handlePostsList shows published blog posts
func (s *Server) handlePostsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, offset := pageParam(r)

	posts, err := s.repos.Posts.ListPublished(ctx, pageSize, offset)
	if err != nil {
		http.Error(w, "Error loading posts", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Blog")
	data.Data = map[string]interface{}{
		"Posts":   posts,
		"Page":    page,
		"Sidebar": s.adsForSlot(w, r, domain.SlotSidebar, s.clock(), 2),
	}
	s.render(w, r, "pages/public/posts.html", data)
}

// handlePostDetail shows one published post
func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	post, err := s.repos.Posts.GetBySlug(r.Context(), getURLParam(r, "slug"))
	if err != nil || post == nil || !post.Published {
		http.NotFound(w, r)
		return
	}

	data := s.newPageData(r, post.Title)
	data.Data = map[string]interface{}{
		"Post":   post,
		"Footer": s.adsForSlot(w, r, domain.SlotFooter, s.clock(), 1),
	}
	s.render(w, r, "pages/public/post_detail.html", data)
}

// handleDirectory shows the business directory: window-filtered, sorted by
// tier then name over the full set, paginated afterwards.
func (s *Server) handleDirectory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.clock()
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var businesses []domain.Business
	var err error
	if query != "" {
		businesses, err = s.repos.Businesses.Search(ctx, query)
	} else {
		businesses, err = s.repos.Businesses.List(ctx)
	}
	if err != nil {
		http.Error(w, "Error loading directory", http.StatusInternalServerError)
		return
	}

	listings := s.directoryListings(businesses, now)

	page, offset := pageParam(r)
	total := len(listings)
	if offset > total {
		offset = total
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	pageListings := listings[offset:end]

	data := s.newPageData(r, "Directory")
	data.Data = map[string]interface{}{
		"Businesses": pageListings,
		"ByTier":     rotation.PartitionByTier(pageListings),
		"Query":      query,
		"Page":       page,
		"HasMore":    end < total,
	}
	s.render(w, r, "pages/public/directory.html", data)
}

// directoryListings applies the window filter and tier ordering.
func (s *Server) directoryListings(businesses []domain.Business, now time.Time) []domain.Business {
	eligible := make([]domain.Business, 0, len(businesses))
	for _, b := range businesses {
		if rotation.ActiveWithin(b.ActiveFrom, b.ActiveUntil, now) {
			eligible = append(eligible, b)
		}
	}
	return rotation.SortListings(eligible)
}

// handleBusinessDetail shows one directory listing
func (s *Server) handleBusinessDetail(w http.ResponseWriter, r *http.Request) {
	business, err := s.repos.Businesses.GetBySlug(r.Context(), getURLParam(r, "slug"))
	if err != nil || business == nil {
		http.NotFound(w, r)
		return
	}
	if !rotation.ActiveWithin(business.ActiveFrom, business.ActiveUntil, s.clock()) {
		http.NotFound(w, r)
		return
	}

	data := s.newPageData(r, business.Name)
	data.Data = business
	s.render(w, r, "pages/public/business_detail.html", data)
}

// handleNewsletterSubscribe stores the subscriber and forwards the address
// to the provider. The provider call is best effort once the row is saved.
func (s *Server) handleNewsletterSubscribe(w http.ResponseWriter, r *http.Request) {
	if !s.config.Features.Newsletter {
		formError(w, http.StatusNotFound, "newsletter is disabled")
		return
	}
	if err := r.ParseForm(); err != nil {
		formError(w, http.StatusBadRequest, "could not parse form")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	name := strings.TrimSpace(r.FormValue("name"))
	if !validEmail(email) {
		formError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	ctx := r.Context()
	if existing, _ := s.repos.Subscribers.GetByEmail(ctx, email); existing != nil {
		// Resubscribing is not an error
		formOK(w, nil)
		return
	}

	sub := &domain.Subscriber{
		Email:            email,
		Name:             name,
		UnsubscribeToken: newToken(),
	}
	if err := s.repos.Subscribers.Create(ctx, sub); err != nil {
		log.Printf("❌ Subscriber save: %v", err)
		formError(w, http.StatusInternalServerError, "could not save subscription")
		return
	}

	if err := s.newsletter.Subscribe(ctx, email, name); err != nil {
		log.Printf("⚠️ Newsletter provider subscribe for %s: %v", email, err)
	}

	formOK(w, nil)
}

// handleNewsletterUnsubscribe removes a subscriber by token
func (s *Server) handleNewsletterUnsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sub, err := s.repos.Subscribers.DeleteByToken(ctx, getURLParam(r, "token"))
	if err != nil {
		http.Error(w, "Error processing unsubscribe", http.StatusInternalServerError)
		return
	}
	if sub == nil {
		http.NotFound(w, r)
		return
	}

	if err := s.newsletter.Unsubscribe(ctx, sub.Email); err != nil {
		log.Printf("⚠️ Newsletter provider unsubscribe for %s: %v", sub.Email, err)
	}

	data := s.newPageData(r, "Unsubscribed")
	data.Flash = &FlashMessage{Type: "success", Message: "You have been unsubscribed."}
	s.render(w, r, "pages/public/unsubscribed.html", data)
}

// handleContactForm persists a contact inquiry and notifies the operator
func (s *Server) handleContactForm(w http.ResponseWriter, r *http.Request) {
	s.handleInquiry(w, r, domain.SubmissionContact)
}

// handleAdvertiseForm persists an advertising inquiry and notifies the operator
func (s *Server) handleAdvertiseForm(w http.ResponseWriter, r *http.Request) {
	s.handleInquiry(w, r, domain.SubmissionAdvertise)
}

func (s *Server) handleInquiry(w http.ResponseWriter, r *http.Request, kind string) {
	if err := r.ParseForm(); err != nil {
		formError(w, http.StatusBadRequest, "could not parse form")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	message := strings.TrimSpace(r.FormValue("message"))

	switch {
	case name == "":
		formError(w, http.StatusBadRequest, "name is required")
		return
	case !validEmail(email):
		formError(w, http.StatusBadRequest, "a valid email is required")
		return
	case message == "":
		formError(w, http.StatusBadRequest, "message is required")
		return
	}

	sub := &domain.Submission{Kind: kind, Name: name, Email: email, Message: message}
	if err := s.repos.Submissions.Create(r.Context(), sub); err != nil {
		log.Printf("❌ %s submission: %v", kind, err)
		formError(w, http.StatusInternalServerError, "could not save your message")
		return
	}

	s.notifyOperator(r.Context(), kind, sub)
	formOK(w, nil)
}

// notifyOperator emails the inquiry to the operator mailbox, best effort.
func (s *Server) notifyOperator(ctx context.Context, kind string, sub *domain.Submission) {
	to := s.config.Business.OperatorEmail
	if to == "" || s.notifier == nil {
		return
	}
	err := s.notifier.SendEmail(ctx, buildInquiryEmail(to, kind, sub))
	if err != nil {
		log.Printf("⚠️ Operator notification for %s inquiry: %v", kind, err)
	}
}

// handleAdClick tracks clicks and redirects
func (s *Server) handleAdClick(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := strconv.ParseInt(getURLParam(r, "id"), 10, 64)

	ad, err := s.repos.Ads.GetByID(ctx, id)
	if err != nil || ad == nil {
		http.NotFound(w, r)
		return
	}

	// Increment click in background
	go func(id int64) {
		s.repos.Ads.IncrementClicks(context.Background(), id)
	}(ad.ID)

	// Redirect to ad link
	if ad.LinkURL != "" {
		http.Redirect(w, r, ad.LinkURL, http.StatusFound)
	} else {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// apiEventsList returns upcoming events as JSON
func (s *Server) apiEventsList(w http.ResponseWriter, r *http.Request) {
	_, offset := pageParam(r)
	events, err := s.repos.Events.ListUpcoming(r.Context(), s.clock(), pageSize, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load events"})
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// apiDirectory returns the sorted, window-filtered directory as JSON
func (s *Server) apiDirectory(w http.ResponseWriter, r *http.Request) {
	businesses, err := s.repos.Businesses.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load directory"})
		return
	}
	writeJSON(w, http.StatusOK, s.directoryListings(businesses, s.clock()))
}

// apiAdsForSlot returns today's ads for one slot as JSON
func (s *Server) apiAdsForSlot(w http.ResponseWriter, r *http.Request) {
	slot := getURLParam(r, "slot")
	ads := s.adsForSlot(w, r, slot, s.clock(), 5)
	writeJSON(w, http.StatusOK, ads)
}

// slugify lowercases a title and collapses everything non-alphanumeric into
// hyphens. A short random suffix keeps slugs unique without a lookup.
func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, ch := range strings.ToLower(title) {
		switch {
		case ch >= 'a' && ch <= 'z' || ch >= '0' && ch <= '9':
			b.WriteRune(ch)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "item"
	}
	return slug + "-" + newToken()[:6]
}

// newToken returns a random hex string for slugs and unsubscribe links
func newToken() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// buildInquiryEmail formats an inquiry for the operator mailbox
func buildInquiryEmail(to, kind string, sub *domain.Submission) notifications.Email {
	return notifications.Email{
		To:      to,
		Subject: fmt.Sprintf("New %s inquiry from %s", kind, sub.Name),
		Body: fmt.Sprintf("Name: %s\nEmail: %s\n\n%s\n",
			sub.Name, sub.Email, sub.Message),
	}
}
