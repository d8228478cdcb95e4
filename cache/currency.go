package cache

import (
	"context"

	"market-pulse/models"
	"market-pulse/observability"
)

// CurrencyCache implements the check-cache-for-today, fetch-and-save-on-miss
// policy for exchange rates.
type CurrencyCache struct {
	store    CurrencyStore
	provider QuoteProvider
	pacer    *Pacer
	clock    Clock
	pairs    []models.CurrencyPair
}

// NewCurrencyCache creates a CurrencyCache tracking the default pairs
func NewCurrencyCache(store CurrencyStore, provider QuoteProvider, pacer *Pacer, clock Clock) *CurrencyCache {
	return &CurrencyCache{
		store:    store,
		provider: provider,
		pacer:    pacer,
		clock:    clock,
		pairs:    models.TrackedCurrencyPairs,
	}
}

// CheckAndGetCurrencyRates returns today's rates from the store, fetching and
// persisting them first when none are cached. A single pair's failure is
// logged and skipped; the result may be a subset of the tracked pairs, and a
// wholly failed batch yields an empty list rather than an error.
func (c *CurrencyCache) CheckAndGetCurrencyRates(ctx context.Context) ([]models.CurrencyRate, error) {
	today := Today(c.clock)
	metrics := observability.GetMetrics()

	cached, err := c.store.GetCurrencyRatesForDate(ctx, today)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 {
		metrics.RecordCacheHit("currency")
		return cached, nil
	}

	metrics.RecordCacheMiss("currency")
	observability.WithDomain("currency").Info("cache miss, fetching rates",
		"date", today.Format("2006-01-02"), "pairs", len(c.pairs))

	timer := metrics.NewTimer()
	defer timer.ObserveFetchBatch("currency")

	rates := []models.CurrencyRate{}
	err = c.pacer.Each(ctx, len(c.pairs), func(i int) {
		pair := c.pairs[i]
		rate, err := c.provider.GetCurrencyRate(ctx, pair.From, pair.To)
		if err != nil {
			metrics.RecordFetchItem("currency", "provider_error")
			observability.WithDomain("currency").Warn("fetch failed, continuing batch",
				"from", pair.From, "to", pair.To, "error", err)
			return
		}

		rate.RateDate = today
		if err := c.store.UpsertCurrencyRate(ctx, rate); err != nil {
			metrics.RecordFetchItem("currency", "persistence_error")
			observability.WithDomain("currency").Warn("save failed, continuing batch",
				"from", pair.From, "to", pair.To, "error", err)
			return
		}

		metrics.RecordFetchItem("currency", "ok")
		rates = append(rates, *rate)
	})
	if err != nil {
		// Context cancelled mid-batch; return what was fetched so far
		return rates, err
	}

	return rates, nil
}
