package contracts

// PaymentRequestMessage arrives on "payment_queue" after the order service
// commits a new order.
type PaymentRequestMessage struct {
	OrderID    int64   `json:"order_id"`
	TotalPrice float64 `json:"total_price"` // total in the order's currency
}

// PaymentSucceededMessage is published to "payment_success" for the
// order-side consumer.
type PaymentSucceededMessage struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"` // always "paid"
}

// DeliveryTriggerMessage is published to the durable "delivery_queue"; the
// delivery worker fetches everything else over HTTP.
type DeliveryTriggerMessage struct {
	OrderID int64 `json:"order_id"`
}

// DeliveryStatusMessage is published to the durable "delivery_status" queue
// once a delivery is on its way.
type DeliveryStatusMessage struct {
	OrderID    int64    `json:"order_id"`
	DeliveryID int64    `json:"delivery_id"`
	Status     string   `json:"status"` // order-side status, e.g. "in_progress"
	DistanceKm *float64 `json:"distance_km,omitempty"`
}
