package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"townbeat/internal/cart"
	"townbeat/internal/checkout"
	"townbeat/internal/domain"

	"github.com/skip2/go-qrcode"
)

// handleShop shows the product catalog
func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	if !s.config.Features.Shop {
		http.NotFound(w, r)
		return
	}

	products, err := s.repos.Products.ListActive(r.Context())
	if err != nil {
		http.Error(w, "Error loading products", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Shop")
	data.Data = map[string]interface{}{
		"Products": products,
		"Footer":   s.adsForSlot(w, r, domain.SlotFooter, s.clock(), 1),
	}
	s.render(w, r, "pages/public/shop.html", data)
}

// handleProductDetail shows one product
func (s *Server) handleProductDetail(w http.ResponseWriter, r *http.Request) {
	product, err := s.repos.Products.GetBySlug(r.Context(), getURLParam(r, "slug"))
	if err != nil || product == nil || !product.Active {
		http.NotFound(w, r)
		return
	}

	data := s.newPageData(r, product.Name)
	data.Data = product
	s.render(w, r, "pages/public/product_detail.html", data)
}

// loadCart loads the current user's cart
func (s *Server) loadCart(r *http.Request) (cart.Cart, string, error) {
	claims := getUserClaims(r)
	key := checkout.CartKey(claims.UserID)
	c, err := s.repos.Carts.Load(r.Context(), key)
	return c, key, err
}

// handleCartPage shows the cart
func (s *Server) handleCartPage(w http.ResponseWriter, r *http.Request) {
	c, _, err := s.loadCart(r)
	if err != nil {
		http.Error(w, "Error loading cart", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Your Cart")
	data.Data = map[string]interface{}{
		"Cart":  c,
		"Total": cart.Total(c),
	}
	s.render(w, r, "pages/public/cart.html", data)
}

// handleCartAdd adds a product to the cart. Price and name are taken from
// the catalog, never from the client.
func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		formError(w, http.StatusBadRequest, "could not parse form")
		return
	}

	productID, _ := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
	qty, _ := strconv.Atoi(r.FormValue("qty"))

	product, err := s.repos.Products.GetByID(r.Context(), productID)
	if err != nil {
		formError(w, http.StatusInternalServerError, "could not load product")
		return
	}
	if product == nil || !product.Active {
		formError(w, http.StatusBadRequest, "unknown product")
		return
	}

	c, key, err := s.loadCart(r)
	if err != nil {
		formError(w, http.StatusInternalServerError, "could not load cart")
		return
	}

	c = cart.Add(c, cart.Item{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.UnitPrice,
		Qty:       qty,
	})

	if err := s.repos.Carts.Save(r.Context(), key, c); err != nil {
		formError(w, http.StatusInternalServerError, "could not save cart")
		return
	}
	formOK(w, map[string]interface{}{"items": len(c.Items), "total": cart.Total(c)})
}

// handleCartUpdate replaces a line's quantity; zero removes it
func (s *Server) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		formError(w, http.StatusBadRequest, "could not parse form")
		return
	}

	productID, _ := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
	qty, err := strconv.Atoi(r.FormValue("qty"))
	if err != nil {
		formError(w, http.StatusBadRequest, "qty must be a number")
		return
	}

	c, key, err := s.loadCart(r)
	if err != nil {
		formError(w, http.StatusInternalServerError, "could not load cart")
		return
	}

	c = cart.SetQty(c, productID, qty)
	if err := s.repos.Carts.Save(r.Context(), key, c); err != nil {
		formError(w, http.StatusInternalServerError, "could not save cart")
		return
	}
	formOK(w, map[string]interface{}{"items": len(c.Items), "total": cart.Total(c)})
}

// handleCartRemove drops a line from the cart
func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		formError(w, http.StatusBadRequest, "could not parse form")
		return
	}

	productID, _ := strconv.ParseInt(r.FormValue("product_id"), 10, 64)

	c, key, err := s.loadCart(r)
	if err != nil {
		formError(w, http.StatusInternalServerError, "could not load cart")
		return
	}

	c = cart.Remove(c, productID)
	if err := s.repos.Carts.Save(r.Context(), key, c); err != nil {
		formError(w, http.StatusInternalServerError, "could not save cart")
		return
	}
	formOK(w, map[string]interface{}{"items": len(c.Items), "total": cart.Total(c)})
}

// handleCheckoutStart converts the cart into a provider checkout session
// and redirects the browser to the hosted payment page
func (s *Server) handleCheckoutStart(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r)
	user, err := s.repos.Users.GetByID(r.Context(), claims.UserID)
	if err != nil || user == nil {
		http.Error(w, "Error loading account", http.StatusInternalServerError)
		return
	}

	url, err := s.checkout.Start(r.Context(), user)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			formError(w, http.StatusBadRequest, "your cart is empty")
			return
		}
		log.Printf("❌ Checkout start for user %d: %v", user.ID, err)
		formError(w, http.StatusInternalServerError, "could not start checkout")
		return
	}

	http.Redirect(w, r, url, http.StatusSeeOther)
}

// handleCheckoutThanks is the success URL the provider redirects back to.
// Payment state comes from our own order record, which the webhook updates;
// the page may briefly show pending if the redirect wins the race.
func (s *Server) handleCheckoutThanks(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r)
	orders, err := s.repos.Orders.ListByUser(r.Context(), claims.UserID, 1, 0)
	if err != nil {
		http.Error(w, "Error loading order", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Thank You")
	if len(orders) > 0 {
		data.Data = &orders[0]
	}
	s.render(w, r, "pages/public/checkout_thanks.html", data)
}

// handleOrdersList shows the member's orders
func (s *Server) handleOrdersList(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r)
	_, offset := pageParam(r)

	orders, err := s.repos.Orders.ListByUser(r.Context(), claims.UserID, pageSize, offset)
	if err != nil {
		http.Error(w, "Error loading orders", http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "Your Orders")
	data.Data = orders
	s.render(w, r, "pages/public/orders.html", data)
}

// getOwnOrder loads an order and checks it belongs to the requester.
// Admins can see everything.
func (s *Server) getOwnOrder(r *http.Request) (*domain.Order, error) {
	claims := getUserClaims(r)
	id, _ := strconv.ParseInt(getURLParam(r, "id"), 10, 64)

	order, err := s.repos.Orders.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}
	if order.UserID != claims.UserID && claims.Role != domain.RoleAdmin {
		return nil, nil
	}
	return order, nil
}

// handleOrderDetail shows one order with its pickup code
func (s *Server) handleOrderDetail(w http.ResponseWriter, r *http.Request) {
	order, err := s.getOwnOrder(r)
	if err != nil {
		http.Error(w, "Error loading order", http.StatusInternalServerError)
		return
	}
	if order == nil {
		http.NotFound(w, r)
		return
	}

	data := s.newPageData(r, "Order Detail")
	data.Data = order
	s.render(w, r, "pages/public/order_detail.html", data)
}

// handleOrderQR serves the pickup code as a QR PNG
func (s *Server) handleOrderQR(w http.ResponseWriter, r *http.Request) {
	order, err := s.getOwnOrder(r)
	if err != nil {
		http.Error(w, "Error loading order", http.StatusInternalServerError)
		return
	}
	if order == nil {
		http.NotFound(w, r)
		return
	}

	png, err := qrcode.Encode(order.PickupCode, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Error generating QR", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(png)
}

// handleBillingPortal redirects the member to the provider's billing portal
func (s *Server) handleBillingPortal(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r)

	url, err := s.checkout.PortalURL(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, checkout.ErrNoBillingAccount) {
			formError(w, http.StatusBadRequest, "no billing history yet")
			return
		}
		log.Printf("⚠️ Billing portal for user %d: %v", claims.UserID, err)
		formError(w, http.StatusInternalServerError, "could not open billing portal")
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// maxWebhookBody bounds webhook payload reads
const maxWebhookBody = 64 * 1024

// handlePaymentWebhook receives provider deliveries. Signature failures are
// the sender's problem (400, nothing happens); everything verified answers
// {"received":true} so the provider stops retrying.
func (s *Server) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "could not read payload"})
		return
	}

	err = s.checkout.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, checkout.ErrSignature) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "signature verification failed"})
			return
		}
		log.Printf("❌ Webhook processing: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "processing failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
