// Package cart implements the shopping cart as a pure reducer over an
// injected persistence adapter, so the add/remove/clear logic stays
// unit-testable independent of the storage medium.
package cart

import (
	"context"
	"sync"
)

// Item is one cart line. UnitPrice is in cents.
type Item struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Qty       int    `json:"qty"`
}

// Cart holds a user's pending items.
type Cart struct {
	Items []Item `json:"items"`
}

// Add returns a new cart with the item merged in. Adding a product already
// in the cart increases its quantity.
func Add(c Cart, item Item) Cart {
	if item.Qty <= 0 {
		item.Qty = 1
	}
	out := clone(c)
	for i := range out.Items {
		if out.Items[i].ProductID == item.ProductID {
			out.Items[i].Qty += item.Qty
			return out
		}
	}
	out.Items = append(out.Items, item)
	return out
}

// SetQty returns a new cart with the product's quantity replaced. A
// quantity of zero or less removes the line.
func SetQty(c Cart, productID int64, qty int) Cart {
	if qty <= 0 {
		return Remove(c, productID)
	}
	out := clone(c)
	for i := range out.Items {
		if out.Items[i].ProductID == productID {
			out.Items[i].Qty = qty
		}
	}
	return out
}

// Remove returns a new cart without the given product.
func Remove(c Cart, productID int64) Cart {
	out := Cart{}
	for _, it := range c.Items {
		if it.ProductID != productID {
			out.Items = append(out.Items, it)
		}
	}
	return out
}

// Clear returns an empty cart.
func Clear(Cart) Cart {
	return Cart{}
}

// Total returns the cart total in cents.
func Total(c Cart) int64 {
	var sum int64
	for _, it := range c.Items {
		sum += it.UnitPrice * int64(it.Qty)
	}
	return sum
}

func clone(c Cart) Cart {
	out := Cart{Items: make([]Item, len(c.Items))}
	copy(out.Items, c.Items)
	return out
}

// Store persists one cart per user key.
type Store interface {
	Load(ctx context.Context, userKey string) (Cart, error)
	Save(ctx context.Context, userKey string, c Cart) error
}

// MemoryStore is an in-process Store for tests and development.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]Cart
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]Cart)}
}

func (s *MemoryStore) Load(_ context.Context, userKey string) (Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.carts[userKey]), nil
}

func (s *MemoryStore) Save(_ context.Context, userKey string, c Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userKey] = clone(c)
	return nil
}
