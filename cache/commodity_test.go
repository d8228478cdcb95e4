package cache

import (
	"context"
	"errors"
	"testing"

	"market-pulse/models"

	"github.com/shopspring/decimal"
)

func TestCommodityCache_CacheHit(t *testing.T) {
	store := &mockCommodityStore{
		prices: []models.CommodityPrice{
			{Symbol: "GLD", Name: "Gold", Price: decimal.NewFromFloat(185.4), PriceDate: testDate()},
		},
	}
	provider := &mockQuoteProvider{}
	clock := testClock()
	cache := NewCommodityCache(store, provider, instantPacer(clock), clock)

	prices, err := cache.CheckAndGetCommodityPrices(context.Background())
	if err != nil {
		t.Fatalf("CheckAndGetCommodityPrices returned error: %v", err)
	}

	if len(prices) != 1 {
		t.Errorf("got %d prices, want 1", len(prices))
	}
	if provider.quoteCalls != 0 {
		t.Errorf("provider called %d times on a cache hit, want 0", provider.quoteCalls)
	}
}

func TestCommodityCache_CacheMissFetchesAllInstruments(t *testing.T) {
	store := &mockCommodityStore{}
	provider := &mockQuoteProvider{}
	clock := testClock()
	cache := NewCommodityCache(store, provider, instantPacer(clock), clock)

	prices, err := cache.CheckAndGetCommodityPrices(context.Background())
	if err != nil {
		t.Fatalf("CheckAndGetCommodityPrices returned error: %v", err)
	}

	want := len(models.TrackedCommodities)
	if provider.quoteCalls != want {
		t.Errorf("provider called %d times, want %d", provider.quoteCalls, want)
	}
	if len(prices) != want {
		t.Errorf("got %d prices, want %d", len(prices), want)
	}
	for _, p := range prices {
		if !p.PriceDate.Equal(testDate()) {
			t.Errorf("price date = %v, want %v", p.PriceDate, testDate())
		}
	}
}

func TestCommodityCache_PartialFailureContinuesBatch(t *testing.T) {
	store := &mockCommodityStore{}
	provider := &mockQuoteProvider{
		failSymbols: map[string]error{"SLV": errors.New("rate limited")},
	}
	clock := testClock()
	cache := NewCommodityCache(store, provider, instantPacer(clock), clock)

	prices, err := cache.CheckAndGetCommodityPrices(context.Background())
	if err != nil {
		t.Fatalf("a single instrument failure must not fail the batch: %v", err)
	}

	want := len(models.TrackedCommodities) - 1
	if len(prices) != want {
		t.Errorf("got %d prices, want %d", len(prices), want)
	}
	// The pacer still waits after the failed attempt
	if len(clock.sleeps) != len(models.TrackedCommodities)-1 {
		t.Errorf("slept %d times, want %d", len(clock.sleeps), len(models.TrackedCommodities)-1)
	}
}
