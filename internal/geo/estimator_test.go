package geo

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEstimator(baseURL, apiKey string) *Estimator {
	return NewEstimator(baseURL, apiKey, 2*time.Second, zap.NewNop())
}

func TestSimulateIsDeterministic(t *testing.T) {
	first := Simulate("Marszałkowska, 1, Warszawa, 00-001, Poland", "Złota, 44, Warszawa, 00-120, Poland")
	second := Simulate("Marszałkowska, 1, Warszawa, 00-001, Poland", "Złota, 44, Warszawa, 00-120, Poland")

	assert.Equal(t, first, second)
	assert.Equal(t, ProvenanceSimulated, first.Provenance)
}

func TestSimulateBoundsAndDuration(t *testing.T) {
	pairs := [][2]string{
		{"a", "b"},
		{"Main St, 5, Kraków, 30-001, Poland", "Długa, 7, Kraków, 31-146, Poland"},
		{"", ""},
		{"x", "y"},
	}

	for _, p := range pairs {
		est := Simulate(p[0], p[1])

		assert.GreaterOrEqual(t, est.DistanceKm, 2.0)
		assert.LessOrEqual(t, est.DistanceKm, 22.0)
		assert.Equal(t, int(math.Round(est.DistanceKm/30*3600)), est.DurationSeconds)
	}
}

func TestSimulateVariesAcrossAddresses(t *testing.T) {
	// 20 buckets; a handful of distinct pairs should not all collide
	seen := map[float64]bool{}
	inputs := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	for _, origin := range inputs {
		seen[Simulate(origin, "dest").DistanceKm] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestEstimateWithoutKeySimulates(t *testing.T) {
	e := newTestEstimator("http://unused.invalid", "")

	est := e.Estimate(context.Background(), "A", "B")

	assert.Equal(t, ProvenanceSimulated, est.Provenance)
	assert.Equal(t, Simulate("A", "B"), est)
}

func TestEstimateProviderSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/distancematrix/json", r.URL.Path)
		assert.Equal(t, "Restaurant A", r.URL.Query().Get("origins"))
		assert.Equal(t, "Customer B", r.URL.Query().Get("destinations"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "driving", r.URL.Query().Get("mode"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"rows": [{"elements": [{"status": "OK",
				"distance": {"value": 5678},
				"duration": {"value": 912}}]}]
		}`))
	}))
	defer srv.Close()

	e := newTestEstimator(srv.URL, "test-key")
	est := e.Estimate(context.Background(), "Restaurant A", "Customer B")

	assert.Equal(t, ProvenanceSuccess, est.Provenance)
	assert.Equal(t, 5.68, est.DistanceKm)
	assert.Equal(t, 912, est.DurationSeconds)
}

func TestEstimateFallsBackOnProviderFailure(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http 500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "top-level status not OK",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status": "REQUEST_DENIED", "rows": []}`))
			},
		},
		{
			name: "missing route",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status": "OK", "rows": []}`))
			},
		},
		{
			name: "route element not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status": "OK", "rows": [{"elements": [{"status": "NOT_FOUND"}]}]}`))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			e := newTestEstimator(srv.URL, "test-key")
			est := e.Estimate(context.Background(), "A", "B")

			require.Equal(t, ProvenanceSimulated, est.Provenance)
			assert.Equal(t, Simulate("A", "B"), est)
		})
	}
}

func TestEstimateFallsBackOnUnreachableProvider(t *testing.T) {
	e := newTestEstimator("http://127.0.0.1:1", "test-key")

	est := e.Estimate(context.Background(), "A", "B")

	assert.Equal(t, ProvenanceSimulated, est.Provenance)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0 min", FormatDuration(30))
	assert.Equal(t, "42 min", FormatDuration(42*60))
	assert.Equal(t, "1h 10min", FormatDuration(70*60))
}
