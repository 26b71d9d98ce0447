package warehouse

import (
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Product is one catalog entry. Qty never drops below zero; Price is always
// positive.
type Product struct {
	Name  string
	Units string
	Price decimal.Decimal
	Qty   int
}

// entry pairs a product with the lock that serializes its mutations. The
// lock covers the whole check-then-mutate sequence, so concurrent orders and
// restocks on one product cannot interleave or oversell.
type entry struct {
	mu sync.Mutex
	p  Product
}

// Catalog maps product ids to stock records. The key set is frozen at
// construction: orders and restocks only move quantities, nothing is ever
// added or removed, so the map itself needs no lock.
type Catalog struct {
	entries map[string]*entry
	ids     []string // seed order; reused for error payloads
	log     *zap.Logger
}

// NewCatalog builds the catalog with its fixed product set.
func NewCatalog(log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}

	c := &Catalog{entries: make(map[string]*entry), log: log}

	c.seed("pizza", Product{Name: "Deluxe Pizza", Units: "boxes", Qty: 1000, Price: decimal.RequireFromString("12.99")})
	c.seed("beer", Product{Name: "Craft Beer", Units: "bottles", Qty: 500, Price: decimal.RequireFromString("4.50")})
	c.seed("burger", Product{Name: "Classic Burger", Units: "pieces", Qty: 750, Price: decimal.RequireFromString("8.99")})
	c.seed("White Russians", Product{Name: "White Russians Cocktail", Units: "pieces", Qty: 1750, Price: decimal.RequireFromString("12.99")})
	c.seed("fries", Product{Name: "French Fries", Units: "servings", Qty: 1200, Price: decimal.RequireFromString("3.99")})

	return c
}

func (c *Catalog) seed(id string, p Product) {
	c.entries[id] = &entry{p: p}
	c.ids = append(c.ids, id)
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int { return len(c.entries) }

// IDs returns the product ids in catalog seed order, the order error
// payloads list them in.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// ProductInfo is the per-product view returned by Inventory.
type ProductInfo struct {
	Name    string
	Units   string
	Qty     int
	Price   decimal.Decimal
	InStock bool
}

// InventorySnapshot is a point-in-time copy of the whole catalog. Each entry
// is copied under its own lock, so individual records are consistent even
// while orders are in flight.
type InventorySnapshot struct {
	Products map[string]ProductInfo
	Total    int
}

func (c *Catalog) Inventory() InventorySnapshot {
	products := make(map[string]ProductInfo, len(c.entries))

	for id, en := range c.entries {
		en.mu.Lock()
		p := en.p
		en.mu.Unlock()

		products[id] = ProductInfo{
			Name:    p.Name,
			Units:   p.Units,
			Qty:     p.Qty,
			Price:   p.Price,
			InStock: p.Qty > 0,
		}
	}

	return InventorySnapshot{Products: products, Total: len(c.entries)}
}

// OrderReceipt is the result of a successful order.
type OrderReceipt struct {
	Product      string
	ProductName  string
	OrderedQty   int
	Units        string
	RemainingQty int
	TotalPrice   decimal.Decimal
	Message      string
}

// PlaceOrder decrements stock for the product by qty. It fails with
// *NotFoundError for unknown ids and *StockError when qty exceeds the
// available quantity; failures leave the stock untouched.
func (c *Catalog) PlaceOrder(id string, qty int) (OrderReceipt, error) {
	if qty <= 0 {
		return OrderReceipt{}, ErrInvalidQuantity
	}

	en, ok := c.entries[id]
	if !ok {
		return OrderReceipt{}, &NotFoundError{Product: id, Known: c.ids}
	}

	en.mu.Lock()
	defer en.mu.Unlock()

	p := &en.p
	if p.Qty == 0 {
		return OrderReceipt{}, &StockError{
			Reason:    ReasonOutOfStock,
			Product:   p.Name,
			Units:     p.Units,
			Requested: qty,
			Available: 0,
		}
	}
	if qty > p.Qty {
		return OrderReceipt{}, &StockError{
			Reason:    ReasonInsufficient,
			Product:   p.Name,
			Units:     p.Units,
			Requested: qty,
			Available: p.Qty,
		}
	}

	p.Qty -= qty
	total := p.Price.Mul(decimal.NewFromInt(int64(qty))).Round(2)

	c.log.Info("order placed",
		zap.String("order_id", "ord_"+uuid.NewString()),
		zap.String("product", id),
		zap.Int("ordered_qty", qty),
		zap.Int("remaining_qty", p.Qty),
		zap.String("total_price", total.String()),
	)

	return OrderReceipt{
		Product:      id,
		ProductName:  p.Name,
		OrderedQty:   qty,
		Units:        p.Units,
		RemainingQty: p.Qty,
		TotalPrice:   total,
		Message:      fmt.Sprintf("Successfully ordered %d %s of %s", qty, p.Units, p.Name),
	}, nil
}

// RestockReceipt is the result of a successful restock.
type RestockReceipt struct {
	Product      string
	ProductName  string
	PreviousQty  int
	RestockedQty int
	NewQty       int
	Message      string
}

// Restock increments stock for the product by qty. Unknown ids fail with
// *NotFoundError; the restock variant of the error carries no product list.
// Amounts that would push the quantity past the int limit fail with
// ErrQuantityTooLarge and leave the stock untouched.
func (c *Catalog) Restock(id string, qty int) (RestockReceipt, error) {
	if qty <= 0 {
		return RestockReceipt{}, ErrInvalidQuantity
	}

	en, ok := c.entries[id]
	if !ok {
		return RestockReceipt{}, &NotFoundError{Product: id}
	}

	en.mu.Lock()
	defer en.mu.Unlock()

	p := &en.p
	if qty > math.MaxInt-p.Qty {
		return RestockReceipt{}, ErrQuantityTooLarge
	}

	prev := p.Qty
	p.Qty += qty

	c.log.Info("restocked",
		zap.String("product", id),
		zap.Int("previous_qty", prev),
		zap.Int("restocked_qty", qty),
		zap.Int("new_qty", p.Qty),
	)

	return RestockReceipt{
		Product:      id,
		ProductName:  p.Name,
		PreviousQty:  prev,
		RestockedQty: qty,
		NewQty:       p.Qty,
		Message:      fmt.Sprintf("Successfully restocked %d %s", qty, p.Units),
	}, nil
}
