package orders

import (
	"errors"
	"time"
)

// ErrNotFound is returned when an event references an order id with no
// matching row.
var ErrNotFound = errors.New("order not found")

// Well-known order statuses. The field itself is an open string: event
// consumers overwrite it verbatim with whatever status arrives, including
// delivery-side values such as "in_progress".
const (
	StatusCreated    = "created"
	StatusPaid       = "paid"
	StatusInProgress = "in_progress"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Order is the slice of the order service's record this system touches:
// identity, total and the status field the event consumers overwrite.
type Order struct {
	ID         int64
	TotalPrice float64
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
