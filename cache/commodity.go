package cache

import (
	"context"

	"market-pulse/models"
	"market-pulse/observability"
)

// CommodityCache implements the daily cache-or-fetch policy for commodity
// prices, mirroring CurrencyCache over the tracked ETF proxies.
type CommodityCache struct {
	store       CommodityStore
	provider    QuoteProvider
	pacer       *Pacer
	clock       Clock
	instruments []models.CommodityInstrument
}

// NewCommodityCache creates a CommodityCache tracking the default instruments
func NewCommodityCache(store CommodityStore, provider QuoteProvider, pacer *Pacer, clock Clock) *CommodityCache {
	return &CommodityCache{
		store:       store,
		provider:    provider,
		pacer:       pacer,
		clock:       clock,
		instruments: models.TrackedCommodities,
	}
}

// CheckAndGetCommodityPrices returns today's prices from the store, fetching
// and persisting them first when none are cached. Per-instrument failures are
// logged and skipped.
func (c *CommodityCache) CheckAndGetCommodityPrices(ctx context.Context) ([]models.CommodityPrice, error) {
	today := Today(c.clock)
	metrics := observability.GetMetrics()

	cached, err := c.store.GetCommodityPricesForDate(ctx, today)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 {
		metrics.RecordCacheHit("commodity")
		return cached, nil
	}

	metrics.RecordCacheMiss("commodity")
	observability.WithDomain("commodity").Info("cache miss, fetching prices",
		"date", today.Format("2006-01-02"), "instruments", len(c.instruments))

	timer := metrics.NewTimer()
	defer timer.ObserveFetchBatch("commodity")

	prices := []models.CommodityPrice{}
	err = c.pacer.Each(ctx, len(c.instruments), func(i int) {
		inst := c.instruments[i]
		price, err := c.provider.GetCommodityPrice(ctx, inst)
		if err != nil {
			metrics.RecordFetchItem("commodity", "provider_error")
			observability.WithDomain("commodity").Warn("fetch failed, continuing batch",
				"symbol", inst.Symbol, "error", err)
			return
		}

		price.PriceDate = today
		if err := c.store.UpsertCommodityPrice(ctx, price); err != nil {
			metrics.RecordFetchItem("commodity", "persistence_error")
			observability.WithDomain("commodity").Warn("save failed, continuing batch",
				"symbol", inst.Symbol, "error", err)
			return
		}

		metrics.RecordFetchItem("commodity", "ok")
		prices = append(prices, *price)
	})
	if err != nil {
		return prices, err
	}

	return prices, nil
}
