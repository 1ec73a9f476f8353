package ports

import (
	"context"

	"fooddelivery/internal/geo"
	"fooddelivery/internal/orderapi"
)

// Publisher sends a raw JSON body to a named queue.
type Publisher interface {
	Publish(queue string, body []byte, persistent bool) error
}

// RouteEstimator computes a distance/duration estimate between two address
// strings. Implementations never fail; degraded results carry a simulated
// provenance instead.
type RouteEstimator interface {
	Estimate(ctx context.Context, origin, destination string) geo.Estimate
}

// OrderReader is the narrow HTTP read contract against the order service.
type OrderReader interface {
	Order(ctx context.Context, orderID int64) (orderapi.OrderInfo, error)
	RestaurantAddresses(ctx context.Context, restaurantID int64) ([]orderapi.Address, error)
	UserAddresses(ctx context.Context, userID int64) ([]orderapi.Address, error)
}
