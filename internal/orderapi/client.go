// Package orderapi is the narrow HTTP read contract against the order
// service: fetch an order, a restaurant's addresses and a user's addresses
// by id. The delivery worker resolves route endpoints through it.
package orderapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Default country when an address record omits it.
const defaultCountry = "Poland"

// OrderInfo is the subset of the order payload the delivery worker needs.
type OrderInfo struct {
	ID           int64 `json:"id"`
	RestaurantID int64 `json:"restaurant"`
	UserID       int64 `json:"user"`
}

// Address is a single postal address as the order service stores it.
type Address struct {
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	City        string `json:"city"`
	ZipCode     string `json:"zip_code"`
	Country     string `json:"country"`
}

// addressEntry matches the wrapping object in address list responses.
type addressEntry struct {
	Address Address `json:"address"`
}

// Client talks to the order service's read endpoints.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a read-contract client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Order fetches restaurant and user identifiers for an order.
func (c *Client) Order(ctx context.Context, orderID int64) (OrderInfo, error) {
	var info OrderInfo
	if err := c.getJSON(ctx, fmt.Sprintf("%s/orders/%d/", c.baseURL, orderID), &info); err != nil {
		return OrderInfo{}, fmt.Errorf("fetch order %d: %w", orderID, err)
	}
	return info, nil
}

// RestaurantAddresses fetches all addresses registered for a restaurant.
func (c *Client) RestaurantAddresses(ctx context.Context, restaurantID int64) ([]Address, error) {
	var body struct {
		Addresses []addressEntry `json:"addresses"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/restaurants/%d/", c.baseURL, restaurantID), &body); err != nil {
		return nil, fmt.Errorf("fetch restaurant %d: %w", restaurantID, err)
	}
	return unwrap(body.Addresses), nil
}

// UserAddresses fetches all addresses registered for a user.
func (c *Client) UserAddresses(ctx context.Context, userID int64) ([]Address, error) {
	var entries []addressEntry
	if err := c.getJSON(ctx, fmt.Sprintf("%s/users/%d/addresses/", c.baseURL, userID), &entries); err != nil {
		return nil, fmt.Errorf("fetch addresses of user %d: %w", userID, err)
	}
	return unwrap(entries), nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func unwrap(entries []addressEntry) []Address {
	out := make([]Address, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Address)
	}
	return out
}

// FormatAddress joins the non-empty address parts with ", ", defaulting the
// country so route strings stay geocodable.
func FormatAddress(a Address) string {
	country := a.Country
	if country == "" {
		country = defaultCountry
	}

	parts := []string{a.Street, a.HouseNumber, a.City, a.ZipCode, country}
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
