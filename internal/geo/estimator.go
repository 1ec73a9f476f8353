// Package geo estimates driving distance between two address strings using
// an external distance-matrix provider, degrading to a deterministic
// simulation whenever the provider cannot answer. The estimator never fails:
// the saga must always be able to produce a delivery.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Provenance records whether an estimate came from the provider or from the
// fallback simulation.
type Provenance string

const (
	ProvenanceSuccess   Provenance = "success"
	ProvenanceSimulated Provenance = "simulated"
)

// Assumed average city-driving speed for simulated durations.
const simulatedSpeedKmh = 30

// Estimate is a computed route estimate. It is transient and never persisted
// as-is; the delivery worker copies the fields it needs.
type Estimate struct {
	DistanceKm      float64
	DurationSeconds int
	Provenance      Provenance
}

// Estimator calls the distance-matrix provider when an API key is configured
// and simulates otherwise.
type Estimator struct {
	client  *http.Client
	baseURL string
	apiKey  string
	log     *zap.Logger
}

// NewEstimator creates an Estimator. An empty apiKey disables the provider
// entirely; every estimate is then simulated.
func NewEstimator(baseURL, apiKey string, timeout time.Duration, log *zap.Logger) *Estimator {
	return &Estimator{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log,
	}
}

// Estimate returns a route estimate for origin -> destination. All provider
// failure modes collapse into the simulated path; this method never returns
// an error.
func (e *Estimator) Estimate(ctx context.Context, origin, destination string) Estimate {
	if e.apiKey == "" {
		return Simulate(origin, destination)
	}

	est, err := e.fromProvider(ctx, origin, destination)
	if err != nil {
		e.log.Warn("distance provider unavailable, falling back to simulation",
			zap.String("origin", origin),
			zap.String("destination", destination),
			zap.Error(err))
		return Simulate(origin, destination)
	}

	return est
}

// distanceMatrixResponse mirrors the provider's JSON shape, down to the
// single route element the estimator reads.
type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"` // seconds
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// fromProvider performs the distance-matrix call. It reports provider
// unavailability as an error; mapping that to a simulated estimate is the
// caller's job.
func (e *Estimator) fromProvider(ctx context.Context, origin, destination string) (Estimate, error) {
	u, err := url.Parse(e.baseURL + "/distancematrix/json")
	if err != nil {
		return Estimate{}, fmt.Errorf("bad provider URL: %w", err)
	}

	q := u.Query()
	q.Set("origins", origin)
	q.Set("destinations", destination)
	q.Set("key", e.apiKey)
	q.Set("units", "metric")
	q.Set("mode", "driving")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Estimate{}, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return Estimate{}, fmt.Errorf("distance matrix request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Estimate{}, fmt.Errorf("distance matrix returned status %d", resp.StatusCode)
	}

	var dm distanceMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&dm); err != nil {
		return Estimate{}, fmt.Errorf("decode distance matrix response: %w", err)
	}

	if dm.Status != "OK" {
		return Estimate{}, fmt.Errorf("distance matrix status %q", dm.Status)
	}
	if len(dm.Rows) == 0 || len(dm.Rows[0].Elements) == 0 {
		return Estimate{}, fmt.Errorf("distance matrix response has no route")
	}

	el := dm.Rows[0].Elements[0]
	if el.Status != "OK" {
		return Estimate{}, fmt.Errorf("route element status %q", el.Status)
	}

	return Estimate{
		DistanceKm:      math.Round(float64(el.Distance.Value)/1000*100) / 100,
		DurationSeconds: el.Duration.Value,
		Provenance:      ProvenanceSuccess,
	}, nil
}

// Simulate derives a stable estimate from the addresses alone. The hash is
// FNV-1a over the UTF-8 bytes of origin+destination, so the same pair always
// yields the same distance, in any process. Distance lands in [2, 22] km;
// duration assumes city driving at a constant speed.
func Simulate(origin, destination string) Estimate {
	h := fnv.New64a()
	h.Write([]byte(origin + destination))

	distanceKm := float64(h.Sum64()%20 + 2)
	durationSeconds := int(math.Round(distanceKm / simulatedSpeedKmh * 3600))

	return Estimate{
		DistanceKm:      distanceKm,
		DurationSeconds: durationSeconds,
		Provenance:      ProvenanceSimulated,
	}
}

// FormatDuration renders a duration in seconds as a short operator-facing
// string, e.g. "42 min" or "1h 10min".
func FormatDuration(seconds int) string {
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %dmin", minutes/60, minutes%60)
}
