package warehouse

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidQuantity rejects non-positive order and restock amounts. The
// HTTP layer validates query parameters first, so the catalog returning it
// means a caller skipped validation.
var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// ErrQuantityTooLarge rejects restock amounts that would push a stock count
// past the maximum int value.
var ErrQuantityTooLarge = errors.New("quantity exceeds the maximum stock level")

// NotFoundError reports an unknown product id. Known carries the valid ids
// when the operation advertises them; orders do, restocks do not.
type NotFoundError struct {
	Product string
	Known   []string
}

func (e *NotFoundError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("Product '%s' not found", e.Product)
	}
	return fmt.Sprintf("Product '%s' not found. Available products: %s",
		e.Product, strings.Join(e.Known, ", "))
}

// StockReason is the error label reported to clients when an order cannot
// be filled.
type StockReason string

const (
	ReasonInsufficient StockReason = "Insufficient stock"
	ReasonOutOfStock   StockReason = "Out of stock"
)

// StockError reports an order that exceeds available stock. Available is the
// quantity at the time of the check; a failed order leaves it untouched.
// Reason is ReasonOutOfStock only when Available is zero.
type StockError struct {
	Reason    StockReason
	Product   string // display name, not the id
	Units     string
	Requested int
	Available int
}

// Message is the human-readable part of the error payload.
func (e *StockError) Message() string {
	if e.Reason == ReasonOutOfStock {
		return fmt.Sprintf("Sorry, %s is currently out of stock", e.Product)
	}
	return fmt.Sprintf("Sorry, only %d %s available", e.Available, e.Units)
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s: %s", strings.ToLower(string(e.Reason)), e.Message())
}
