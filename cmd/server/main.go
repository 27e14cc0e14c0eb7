// Townbeat - local community content site
// Events, blog, business directory, shop and sponsor placements
package main

import (
	"log"

	"townbeat/internal/checkout"
	"townbeat/internal/config"
	"townbeat/internal/newsletter"
	"townbeat/internal/notifications"
	"townbeat/internal/payments"
	"townbeat/internal/promos"
	"townbeat/internal/repository"
	"townbeat/internal/repository/sqlite"
	"townbeat/internal/rotation"
	"townbeat/internal/server"
	storageredis "townbeat/internal/storage/redis"
	"townbeat/internal/templates"

	"github.com/joho/godotenv"
)

func main() {
	// Local development overrides; absence is fine
	if err := godotenv.Load(); err == nil {
		log.Println("ℹ️ Loaded .env file")
	}

	// Load configuration
	cfg, err := config.Load("config.json")
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	log.Printf("📰 Starting %s...", cfg.Business.Name)
	log.Printf("📋 Debug mode: %v", cfg.Debug)

	// Initialize database
	db, err := sqlite.New(cfg.GetDatabasePath())
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}
	log.Println("✅ Database initialized")

	// Create admin user if none exists
	if err := createDefaultAdmin(db); err != nil {
		log.Printf("⚠️ Could not create default admin: %v", err)
	}

	// Initialize repositories
	repos := &repository.Repositories{
		Users:       sqlite.NewUserRepo(db),
		Events:      sqlite.NewEventRepo(db),
		Posts:       sqlite.NewPostRepo(db),
		Businesses:  sqlite.NewBusinessRepo(db),
		Products:    sqlite.NewProductRepo(db),
		Orders:      sqlite.NewOrderRepo(db),
		Ads:         sqlite.NewAdRepo(db),
		Spotlights:  sqlite.NewSpotlightRepo(db),
		Subscribers: sqlite.NewSubscriberRepo(db),
		Submissions: sqlite.NewSubmissionRepo(db),
		Settings:    sqlite.NewSettingsRepo(db),
		Carts:       sqlite.NewCartRepo(db),
	}

	// Optional Redis: webhook dedupe and rotation history survive restarts
	// and are shared across instances. Without it, SQLite and memory cover
	// the same concerns.
	var processed checkout.ProcessedStore = sqlite.NewProcessedRepo(db)
	var recents promos.RecentStore = promos.NewMemoryRecent()

	rdb, err := storageredis.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Invalid Redis configuration: %v", err)
	}
	if rdb != nil {
		processed = storageredis.NewProcessedStore(rdb)
		recents = storageredis.NewRecentStore(rdb)
		log.Println("✅ Redis connected")
	}

	// Payment provider: Stripe when configured, otherwise a mock so the
	// rest of the site works in development
	var provider payments.Provider
	if cfg.Stripe.SecretKey != "" {
		provider = payments.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
		log.Println("✅ Stripe configured")
	} else {
		provider = payments.NewMockProvider()
		log.Println("⚠️ No Stripe key, using mock payment provider")
	}

	// Email relay
	var emailProvider notifications.EmailProvider
	if cfg.SMTP.Host != "" {
		emailProvider = notifications.NewSMTPProvider(
			cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		log.Println("✅ SMTP configured")
	} else {
		log.Println("⚠️ No SMTP host, email delivery disabled")
	}
	notifier := notifications.NewEmailNotifier(emailProvider)

	// Checkout service
	checkoutSvc := checkout.NewService(repos.Orders, repos.Carts, provider, notifier, processed,
		checkout.Config{
			SuccessURL:    cfg.Server.BaseURL + "/checkout/thanks",
			CancelURL:     cfg.Server.BaseURL + "/cart",
			Currency:      cfg.Stripe.Currency,
			OperatorEmail: cfg.Business.OperatorEmail,
			SiteName:      cfg.Business.Name,
		})

	// Initialize template manager
	tmpl, err := templates.NewManager("./templates", cfg.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize templates: %v", err)
	}
	log.Println("✅ Templates loaded")

	// Create and run the server
	srv := server.New(cfg, server.Deps{
		Repos:      repos,
		Templates:  tmpl,
		Checkout:   checkoutSvc,
		Promos:     promos.NewSelector(repos.Ads, recents, cfg.Rotation.RecentN),
		Newsletter: newsletter.New(cfg.Newsletter.BaseURL, cfg.Newsletter.APIKey),
		Notifier:   notifier,
		Clock:      rotation.WallClock(cfg.RotationLocation()),
	})

	log.Printf("🌐 Server listening on http://%s", cfg.Address())

	if err := srv.Run(); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}
}

// createDefaultAdmin creates a default admin user if no users exist
func createDefaultAdmin(db *sqlite.DB) error {
	// Check if any users exist
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return err
	}

	if count > 0 {
		return nil // Users already exist
	}

	// Create default admin
	// Password: admin123 (CHANGE IN PRODUCTION!)
	hashedPassword, err := sqlite.HashPassword("admin123")
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, name, role)
		VALUES (?, ?, ?, ?)
	`, "admin@townbeat.local", hashedPassword, "Administrator", "admin")

	if err != nil {
		return err
	}

	log.Println("✅ Default admin user created:")
	log.Println("   Email: admin@townbeat.local")
	log.Println("   Password: admin123")
	log.Println("   ⚠️ CHANGE THIS PASSWORD IN PRODUCTION!")

	return nil
}
