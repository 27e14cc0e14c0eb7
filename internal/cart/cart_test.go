package cart

import (
	"context"
	"testing"
)

func TestAddMergesByProduct(t *testing.T) {
	c := Add(Cart{}, Item{ProductID: 1, Name: "Mug", UnitPrice: 1500, Qty: 1})
	c = Add(c, Item{ProductID: 2, Name: "Tote", UnitPrice: 2200, Qty: 2})
	c = Add(c, Item{ProductID: 1, Name: "Mug", UnitPrice: 1500, Qty: 3})

	if len(c.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(c.Items))
	}
	if c.Items[0].Qty != 4 {
		t.Errorf("mug qty = %d; want 4", c.Items[0].Qty)
	}
}

func TestAddDefaultsQtyToOne(t *testing.T) {
	c := Add(Cart{}, Item{ProductID: 1, Name: "Mug", UnitPrice: 1500})
	if c.Items[0].Qty != 1 {
		t.Errorf("qty = %d; want 1", c.Items[0].Qty)
	}
}

func TestSetQtyAndRemove(t *testing.T) {
	c := Add(Cart{}, Item{ProductID: 1, Name: "Mug", UnitPrice: 1500, Qty: 2})
	c = Add(c, Item{ProductID: 2, Name: "Tote", UnitPrice: 2200, Qty: 1})

	c = SetQty(c, 1, 5)
	if c.Items[0].Qty != 5 {
		t.Errorf("qty after SetQty = %d; want 5", c.Items[0].Qty)
	}

	c = SetQty(c, 2, 0)
	if len(c.Items) != 1 {
		t.Errorf("zero qty should remove the line, got %d lines", len(c.Items))
	}

	c = Remove(c, 1)
	if len(c.Items) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(c.Items))
	}
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name string
		c    Cart
		want int64
	}{
		{"empty", Cart{}, 0},
		{"single", Add(Cart{}, Item{ProductID: 1, UnitPrice: 1500, Qty: 2}), 3000},
		{"mixed", Add(Add(Cart{}, Item{ProductID: 1, UnitPrice: 1500, Qty: 2}), Item{ProductID: 2, UnitPrice: 999, Qty: 3}), 5997},
	}

	for _, tt := range tests {
		if got := Total(tt.c); got != tt.want {
			t.Errorf("%s: Total = %d; want %d", tt.name, got, tt.want)
		}
	}
}

func TestReducerDoesNotMutateInput(t *testing.T) {
	orig := Add(Cart{}, Item{ProductID: 1, Name: "Mug", UnitPrice: 1500, Qty: 1})

	_ = Add(orig, Item{ProductID: 1, Qty: 9})
	_ = SetQty(orig, 1, 7)
	_ = Clear(orig)

	if orig.Items[0].Qty != 1 {
		t.Errorf("input cart mutated: qty = %d", orig.Items[0].Qty)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c := Add(Cart{}, Item{ProductID: 1, Name: "Mug", UnitPrice: 1500, Qty: 2})
	if err := store.Save(ctx, "user-1", c); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Items) != 1 || loaded.Items[0].Qty != 2 {
		t.Errorf("loaded cart = %+v", loaded)
	}

	// Unknown keys yield an empty cart, not an error.
	empty, err := store.Load(ctx, "nobody")
	if err != nil || len(empty.Items) != 0 {
		t.Errorf("unknown key: cart=%+v err=%v", empty, err)
	}
}
