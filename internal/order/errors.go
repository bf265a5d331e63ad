package order

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOrderNotFound is returned when the referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidStatus is returned on an unknown target status.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrEmptyOrder is returned when a checkout carries no line items.
	ErrEmptyOrder = errors.New("order has no items")
)

// Item problem reasons reported by checkout validation.
const (
	ReasonNotExists         = "not-exists"
	ReasonInactive          = "inactive"
	ReasonInsufficientStock = "insufficient-stock"
)

// ItemProblem describes why a single line item failed checkout validation.
type ItemProblem struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Reason      string `json:"reason"`
	Available   int    `json:"available,omitempty"`
	Requested   int    `json:"requested,omitempty"`
}

func (p ItemProblem) String() string {
	name := p.ProductName
	if name == "" {
		name = fmt.Sprintf("#%d", p.ProductID)
	}
	switch p.Reason {
	case ReasonNotExists:
		return fmt.Sprintf("product %s does not exist", name)
	case ReasonInactive:
		return fmt.Sprintf("product %s is not available", name)
	case ReasonInsufficientStock:
		return fmt.Sprintf("product %s has insufficient stock (available: %d, requested: %d)",
			name, p.Available, p.Requested)
	default:
		return fmt.Sprintf("product %s: %s", name, p.Reason)
	}
}

// ValidationError aggregates every failing line item of a checkout request.
// When it is returned, nothing was persisted.
type ValidationError struct {
	Problems []ItemProblem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.String())
	}
	return "unavailable products: " + strings.Join(msgs, ", ")
}

// AsValidationError unwraps err into a *ValidationError, or nil when it
// is not one.
func AsValidationError(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
