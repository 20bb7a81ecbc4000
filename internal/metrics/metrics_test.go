package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/v1/items", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "/v1/items", 200, 20*time.Millisecond)
	m.ObserveRequest("GET", "/v1/items", 404, time.Millisecond)
	m.ObserveRecommendation("outfits", "ok", time.Millisecond)
	m.ObserveEvent("outfit.worn", "published")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/v1/items", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/v1/items", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recommendations.WithLabelValues("outfits", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("outfit.worn", "published")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Second)
		m.ObserveRecommendation("items", "ok", time.Second)
		m.ObserveEvent("item.changed", "consumed")
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRecommendation("items", "not_found", time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `wardrobe_recommendations_total{kind="items",outcome="not_found"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
