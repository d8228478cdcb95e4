package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewCircuitBreakerRegistry(t *testing.T) {
	config := CircuitBreakerConfig{
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
	}

	registry := NewCircuitBreakerRegistry(config)

	if registry == nil {
		t.Fatal("expected registry to be created")
	}
	if registry.breakers == nil {
		t.Error("expected breakers map to be initialized")
	}
	if registry.config != config {
		t.Error("expected config to be set")
	}
}

func TestCircuitBreakerRegistry_GetBreaker(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)

	// First call should create a new breaker
	breaker1 := registry.GetBreaker("alphavantage")
	if breaker1 == nil {
		t.Fatal("expected breaker to be created")
	}

	// Second call should return the same breaker
	breaker2 := registry.GetBreaker("alphavantage")
	if breaker1 != breaker2 {
		t.Error("expected same breaker instance")
	}

	// Different name should create different breaker
	breaker3 := registry.GetBreaker("marketaux")
	if breaker1 == breaker3 {
		t.Error("expected different breaker for different name")
	}
}

func TestCircuitBreakerRegistry_Execute_Success(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	result, err := registry.Execute(ctx, "alphavantage", func() (any, error) {
		return "success", nil
	})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %v", result)
	}
}

func TestCircuitBreakerRegistry_Execute_Error(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	expectedErr := errors.New("test error")
	result, err := registry.Execute(ctx, "alphavantage", func() (any, error) {
		return nil, expectedErr
	})

	if err == nil {
		t.Error("expected error")
	}
	if result != nil {
		t.Errorf("expected nil result, got %v", result)
	}
}

func TestCircuitBreakerRegistry_Execute_ContextCanceled(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := registry.Execute(ctx, "alphavantage", func() (any, error) {
		return "should not reach", nil
	})

	if err == nil {
		t.Error("expected error due to cancelled context")
	}
}

func TestCircuitBreakerRegistry_Status(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	_, _ = registry.Execute(ctx, "alphavantage", func() (any, error) {
		return "ok", nil
	})
	_, _ = registry.Execute(ctx, "marketaux", func() (any, error) {
		return nil, errors.New("fail")
	})

	status := registry.Status()

	if len(status) != 2 {
		t.Errorf("expected 2 breakers in status, got %d", len(status))
	}
	if status["alphavantage"].TotalSuccesses != 1 {
		t.Errorf("expected 1 success for alphavantage, got %d", status["alphavantage"].TotalSuccesses)
	}
	if status["marketaux"].TotalFailures != 1 {
		t.Errorf("expected 1 failure for marketaux, got %d", status["marketaux"].TotalFailures)
	}
}

func TestCircuitBreakerRegistry_TripsAfterFailures(t *testing.T) {
	config := CircuitBreakerConfig{
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     1 * time.Second,
	}
	registry := NewCircuitBreakerRegistry(config)
	ctx := context.Background()

	// ReadyToTrip requires 50% failure rate with at least 5 requests
	for i := 0; i < 5; i++ {
		_, _ = registry.Execute(ctx, "failing-provider", func() (any, error) {
			return nil, errors.New("fail")
		})
	}

	status := registry.Status()
	if status["failing-provider"].State != "open" {
		t.Errorf("expected breaker to be open, got %s", status["failing-provider"].State)
	}

	// Next call should be rejected without executing fn
	executed := false
	_, err := registry.Execute(ctx, "failing-provider", func() (any, error) {
		executed = true
		return nil, nil
	})

	if err == nil {
		t.Error("expected error due to open circuit breaker")
	}
	if executed {
		t.Error("fn must not execute while the breaker is open")
	}
}
