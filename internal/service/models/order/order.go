package order

import (
	"errors"
	"regexp"
	"time"
)

// idPattern matches a canonical UUID, the shape used for both order and customer ids.
var idPattern = regexp.MustCompile(`^[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}$`)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrCustomerIDRequired = errors.New("customerId is required")
	ErrCustomerIDInvalid  = errors.New("customerId must be a UUID")
	ErrLineItemsRequired  = errors.New("order must contain at least one line item")
	ErrArticleIDRequired  = errors.New("line item articleId is required")
	ErrUnitPriceInvalid   = errors.New("line item unitPrice must be greater than zero")
	ErrQuantityInvalid    = errors.New("line item quantity must be at least one")
)

// Order represents a persisted purchase record referencing exactly one customer.
type Order struct {
	ID         string     `json:"id,omitempty"`
	Version    int64      `json:"version"`
	Date       Date       `json:"date"`
	CustomerID string     `json:"customerId"`
	LineItems  []LineItem `json:"lineItems"`
	CreatedAt  time.Time  `json:"createdAt,omitzero"`
	UpdatedAt  time.Time  `json:"updatedAt,omitzero"`
}

// LineItem represents one article line within an order. Line items have no
// identity of their own and are stored as part of the order.
type LineItem struct {
	ArticleID string  `json:"articleId"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// EnrichedOrder is the read-path view of an order annotated with the owning
// customer's display name. The display name is never persisted.
type EnrichedOrder struct {
	Order
	CustomerDisplayName string `json:"customerDisplayName"`
}

// Normalize fills the defaults for fields the client may omit: the order date
// defaults to the current day and a line item quantity defaults to one.
func (o *Order) Normalize() {
	if o.Date.IsZero() {
		o.Date = Today()
	}
	for i := range o.LineItems {
		if o.LineItems[i].Quantity == 0 {
			o.LineItems[i].Quantity = 1
		}
	}
}

// Validate checks the order's invariants. Call Normalize first so defaulted
// fields are not reported as violations.
func (o *Order) Validate() error {
	if o.CustomerID == "" {
		return ErrCustomerIDRequired
	}
	if !idPattern.MatchString(o.CustomerID) {
		return ErrCustomerIDInvalid
	}
	if len(o.LineItems) == 0 {
		return ErrLineItemsRequired
	}
	for _, item := range o.LineItems {
		if item.ArticleID == "" {
			return ErrArticleIDRequired
		}
		if item.UnitPrice <= 0 {
			return ErrUnitPriceInvalid
		}
		if item.Quantity < 1 {
			return ErrQuantityInvalid
		}
	}

	return nil
}

// Equal reports whether two orders denote the same order record. Identity is
// the order id plus the owning customer id; dates and line items are not part
// of it.
func (o Order) Equal(other Order) bool {
	return o.ID == other.ID && o.CustomerID == other.CustomerID
}

// IsValidationError reports whether err is one of the order constraint
// violations, i.e. a client error rather than an internal one.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrCustomerIDRequired,
		ErrCustomerIDInvalid,
		ErrLineItemsRequired,
		ErrArticleIDRequired,
		ErrUnitPriceInvalid,
		ErrQuantityInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// IsValidID reports whether s has the canonical UUID shape.
func IsValidID(s string) bool {
	return idPattern.MatchString(s)
}

// IDPathPattern is the route constraint for order ids.
const IDPathPattern = `[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}`
