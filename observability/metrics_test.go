package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}

	// Verify all metrics are initialized
	if m.CacheRequestsTotal == nil {
		t.Error("CacheRequestsTotal is nil")
	}
	if m.FetchItemsTotal == nil {
		t.Error("FetchItemsTotal is nil")
	}
	if m.FetchBatchDuration == nil {
		t.Error("FetchBatchDuration is nil")
	}
	if m.HeadlinesMarked == nil {
		t.Error("HeadlinesMarked is nil")
	}
	if m.ExternalAPIRequestsTotal == nil {
		t.Error("ExternalAPIRequestsTotal is nil")
	}
	if m.ExternalAPIErrorsTotal == nil {
		t.Error("ExternalAPIErrorsTotal is nil")
	}
	if m.ExternalAPIDuration == nil {
		t.Error("ExternalAPIDuration is nil")
	}
	if m.DBQueryDuration == nil {
		t.Error("DBQueryDuration is nil")
	}
	if m.DBQueryTotal == nil {
		t.Error("DBQueryTotal is nil")
	}
	if m.DBErrorsTotal == nil {
		t.Error("DBErrorsTotal is nil")
	}
	if m.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal is nil")
	}
	if m.HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration is nil")
	}
	if m.CircuitBreakerState == nil {
		t.Error("CircuitBreakerState is nil")
	}
	if m.CircuitBreakerTrips == nil {
		t.Error("CircuitBreakerTrips is nil")
	}
}

func TestMetrics_CacheCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordCacheHit("currency")
	m.RecordCacheHit("currency")
	m.RecordCacheMiss("news")

	if got := testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("currency", "hit")); got != 2 {
		t.Errorf("currency hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("news", "miss")); got != 1 {
		t.Errorf("news misses = %v, want 1", got)
	}
}

func TestMetrics_FetchAndHeadlines(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordFetchItem("commodity", "ok")
	m.RecordFetchItem("commodity", "provider_error")
	m.RecordHeadlinesMarked(3)

	if got := testutil.ToFloat64(m.FetchItemsTotal.WithLabelValues("commodity", "ok")); got != 1 {
		t.Errorf("ok fetches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HeadlinesMarked); got != 3 {
		t.Errorf("headlines marked = %v, want 3", got)
	}
}

func TestMetrics_Timer(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	timer := m.NewTimer()
	time.Sleep(time.Millisecond)
	timer.ObserveDB("select", "currency_rates")

	if got := testutil.ToFloat64(m.DBQueryTotal.WithLabelValues("select", "currency_rates")); got != 1 {
		t.Errorf("db queries = %v, want 1", got)
	}
}

func TestMetrics_CircuitBreaker(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SetCircuitBreakerState("alphavantage", 2)
	m.RecordCircuitBreakerTrip("alphavantage")

	if got := testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("alphavantage")); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CircuitBreakerTrips.WithLabelValues("alphavantage")); got != 1 {
		t.Errorf("breaker trips = %v, want 1", got)
	}
}
