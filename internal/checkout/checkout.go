// Package checkout converts carts into payment-provider checkout sessions
// and reconciles the provider's webhook deliveries against local orders.
package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"townbeat/internal/cart"
	"townbeat/internal/domain"
	"townbeat/internal/notifications"
	"townbeat/internal/payments"
	"townbeat/internal/repository"
)

// ErrEmptyCart is returned when checkout starts with nothing to buy.
var ErrEmptyCart = errors.New("cart is empty")

// ErrSignature marks a webhook delivery that failed verification. No side
// effect is taken for these; the handler answers 4xx and the provider's own
// retry machinery is relied upon.
var ErrSignature = errors.New("webhook signature rejected")

// ErrNoBillingAccount is returned from PortalURL when the user has no paid
// order yet, so no provider-side customer exists to open a portal for.
var ErrNoBillingAccount = errors.New("no billing account on file")

// ProcessedStore deduplicates webhook deliveries. MarkProcessed records the
// session id and reports whether this call was the first to do so; the
// check-and-insert must be atomic.
type ProcessedStore interface {
	MarkProcessed(ctx context.Context, sessionID string) (bool, error)
}

// MemoryProcessedStore is an in-process ProcessedStore for tests and for
// running without Redis or a database.
type MemoryProcessedStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryProcessedStore() *MemoryProcessedStore {
	return &MemoryProcessedStore{seen: make(map[string]struct{})}
}

func (s *MemoryProcessedStore) MarkProcessed(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[sessionID]; ok {
		return false, nil
	}
	s.seen[sessionID] = struct{}{}
	return true, nil
}

// Config holds checkout wiring
type Config struct {
	SuccessURL    string
	CancelURL     string
	Currency      string
	OperatorEmail string
	SiteName      string
}

// Service drives the checkout and reconciliation flow
type Service struct {
	orders    repository.OrderRepository
	carts     cart.Store
	provider  payments.Provider
	notifier  notifications.Notifier
	processed ProcessedStore
	cfg       Config
	now       func() time.Time
}

// NewService creates a checkout service
func NewService(orders repository.OrderRepository, carts cart.Store, provider payments.Provider,
	notifier notifications.Notifier, processed ProcessedStore, cfg Config) *Service {
	return &Service{
		orders:    orders,
		carts:     carts,
		provider:  provider,
		notifier:  notifier,
		processed: processed,
		cfg:       cfg,
		now:       time.Now,
	}
}

// CartKey returns the cart storage key for a user.
func CartKey(userID int64) string {
	return fmt.Sprintf("user-%d", userID)
}

// Start converts the user's cart into a provider checkout session and
// records a pending order carrying the session id. The cart is left intact
// until the webhook confirms payment, so a failed or abandoned checkout
// loses nothing.
func (s *Service) Start(ctx context.Context, user *domain.User) (string, error) {
	c, err := s.carts.Load(ctx, CartKey(user.ID))
	if err != nil {
		return "", fmt.Errorf("failed to load cart: %w", err)
	}
	if len(c.Items) == 0 {
		return "", ErrEmptyCart
	}

	lines := make([]payments.LineItem, 0, len(c.Items))
	items := make([]domain.OrderItem, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, payments.LineItem{
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Qty:       int64(it.Qty),
			Currency:  s.cfg.Currency,
		})
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Qty:       it.Qty,
		})
	}

	sess, err := s.provider.CreateCheckoutSession(ctx, lines, user.Email, s.cfg.SuccessURL, s.cfg.CancelURL)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	order := &domain.Order{
		UserID:        user.ID,
		Items:         items,
		Total:         cart.Total(c),
		Currency:      s.cfg.Currency,
		SessionID:     sess.ID,
		PickupCode:    newPickupCode(),
		Status:        domain.OrderStatusPending,
		CustomerEmail: user.Email,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return "", fmt.Errorf("failed to record order: %w", err)
	}

	return sess.URL, nil
}

// PortalURL returns a billing-portal link for the user. The provider only
// accepts the customer ID it minted during checkout, which the webhook
// stored on the order, so the most recent order carrying one is the lookup.
func (s *Service) PortalURL(ctx context.Context, userID int64) (string, error) {
	orders, err := s.orders.ListByUser(ctx, userID, 20, 0)
	if err != nil {
		return "", fmt.Errorf("failed to load orders: %w", err)
	}

	var customerRef string
	for _, o := range orders {
		if o.CustomerRef != "" {
			customerRef = o.CustomerRef
			break
		}
	}
	if customerRef == "" {
		return "", ErrNoBillingAccount
	}

	url, err := s.provider.CreatePortalSession(ctx, customerRef, s.cfg.CancelURL)
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return url, nil
}

// HandleWebhook processes one webhook delivery. Verification happens before
// anything else; an unverified payload causes no side effect. Deliveries
// are then deduplicated by session id so provider retries never produce a
// second invoice email.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.provider.VerifyWebhook(payload, sigHeader)
	if err != nil {
		// A malformed body behind a valid signature is our processing
		// problem, not the sender's.
		if errors.Is(err, payments.ErrPayload) {
			return fmt.Errorf("failed to decode webhook payload: %w", err)
		}
		return fmt.Errorf("%w: %v", ErrSignature, err)
	}

	if event.Type != payments.EventCheckoutCompleted {
		return nil
	}

	first, err := s.processed.MarkProcessed(ctx, event.SessionID)
	if err != nil {
		return fmt.Errorf("failed to check delivery dedupe: %w", err)
	}
	if !first {
		log.Printf("ℹ️ Duplicate webhook for session %s, skipping", event.SessionID)
		return nil
	}

	order, err := s.orders.GetBySessionID(ctx, event.SessionID)
	if err != nil {
		return fmt.Errorf("failed to load order for session %s: %w", event.SessionID, err)
	}
	if order == nil {
		log.Printf("⚠️ Webhook for unknown session %s", event.SessionID)
		return nil
	}

	paidAt := s.now()
	if err := s.orders.MarkPaid(ctx, event.SessionID, event.CustomerID, paidAt); err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	order.Status = domain.OrderStatusPaid
	order.CustomerRef = event.CustomerID
	order.PaidAt = paidAt

	// Payment confirmed; the cart has served its purpose.
	if err := s.carts.Save(ctx, CartKey(order.UserID), cart.Cart{}); err != nil {
		log.Printf("⚠️ Could not clear cart for order %d: %v", order.ID, err)
	}

	s.sendReceipts(ctx, order, event)
	return nil
}

// sendReceipts delivers the invoice email to the customer and a copy to the
// operator mailbox. Both are best effort: the payment already succeeded, so
// a relay hiccup is logged and never turned into a webhook failure that
// would trigger a (deduplicated, hence useless) provider retry.
func (s *Service) sendReceipts(ctx context.Context, order *domain.Order, event *payments.WebhookEvent) {
	to := order.CustomerEmail
	if to == "" {
		to = event.CustomerEmail
	}

	email, err := receiptEmail(order, to, s.cfg.SiteName)
	if err != nil {
		log.Printf("❌ Could not render receipt for order %d: %v", order.ID, err)
		return
	}

	if to != "" {
		if err := s.notifier.SendEmail(ctx, email); err != nil {
			log.Printf("❌ Receipt email to customer failed for order %d: %v", order.ID, err)
		}
	}

	if s.cfg.OperatorEmail != "" {
		copyEmail := email
		copyEmail.To = s.cfg.OperatorEmail
		copyEmail.Subject = fmt.Sprintf("[order #%d] %s", order.ID, email.Subject)
		if err := s.notifier.SendEmail(ctx, copyEmail); err != nil {
			log.Printf("⚠️ Operator copy failed for order %d: %v", order.ID, err)
		}
	}
}

// newPickupCode generates a short code customers present at pickup
func newPickupCode() string {
	bytes := make([]byte, 4)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
