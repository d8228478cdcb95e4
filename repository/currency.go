package repository

import (
	"context"
	"time"

	"market-pulse/models"
	"market-pulse/observability"
)

// UpsertCurrencyRate inserts or updates the rate for its natural key
// (from_currency, to_currency, rate_date). Idempotent: a re-fetch for the
// same day overwrites rate, bid, ask and timezone in place.
func (r *Repository) UpsertCurrencyRate(ctx context.Context, rate *models.CurrencyRate) error {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("upsert", "currency_rates")

	err := r.db.QueryRow(ctx, `
		INSERT INTO currency_rates (from_currency, to_currency, exchange_rate, bid_price, ask_price, time_zone, rate_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (from_currency, to_currency, rate_date)
		DO UPDATE SET
			exchange_rate = EXCLUDED.exchange_rate,
			bid_price = EXCLUDED.bid_price,
			ask_price = EXCLUDED.ask_price,
			time_zone = EXCLUDED.time_zone,
			updated_at = NOW()
		RETURNING id, updated_at
	`, rate.FromCurrency, rate.ToCurrency, rate.ExchangeRate, rate.BidPrice, rate.AskPrice, rate.TimeZone, rate.RateDate).
		Scan(&rate.ID, &rate.UpdatedAt)

	if err != nil {
		observability.GetMetrics().RecordDBError("upsert", "currency_rates")
		return persistErr("upsert currency rate", err)
	}
	return nil
}

// GetCurrencyRatesForDate returns all rates stored for the given calendar
// date; an empty slice means a cache miss.
func (r *Repository) GetCurrencyRatesForDate(ctx context.Context, date time.Time) ([]models.CurrencyRate, error) {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("select", "currency_rates")

	rows, err := r.db.Query(ctx, `
		SELECT id, from_currency, to_currency, exchange_rate, bid_price, ask_price, time_zone, rate_date, updated_at
		FROM currency_rates
		WHERE rate_date = $1
		ORDER BY from_currency, to_currency
	`, date)
	if err != nil {
		observability.GetMetrics().RecordDBError("select", "currency_rates")
		return nil, persistErr("query currency rates", err)
	}
	defer rows.Close()

	rates := []models.CurrencyRate{}
	for rows.Next() {
		var rate models.CurrencyRate
		err := rows.Scan(&rate.ID, &rate.FromCurrency, &rate.ToCurrency, &rate.ExchangeRate,
			&rate.BidPrice, &rate.AskPrice, &rate.TimeZone, &rate.RateDate, &rate.UpdatedAt)
		if err != nil {
			return nil, persistErr("scan currency rate", err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate currency rates", err)
	}

	return rates, nil
}
