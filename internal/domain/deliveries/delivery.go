package deliveries

import "time"

// Status is the delivery's own lifecycle. The worker creates a delivery as
// Pending and moves it to OnTheWay in the same invocation; Delivered is set
// later by the courier-facing side, outside this system.
type Status string

const (
	StatusPending   Status = "pending"
	StatusOnTheWay  Status = "on_the_way"
	StatusDelivered Status = "delivered"
)

// Delivery is one route from a restaurant to a customer. At most one exists
// per order; the unique order_id constraint backs the worker's idempotency
// check under redelivery.
type Delivery struct {
	ID               int64
	OrderID          int64
	Status           Status
	StartLocation    string
	EndLocation      string
	DistanceKm       *float64
	EstimatedSeconds *int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
