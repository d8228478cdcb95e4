package repository

import (
	"context"
	"time"

	"market-pulse/models"
	"market-pulse/observability"
)

// UpsertCommodityPrice inserts or updates the price for its natural key
// (symbol, price_date).
func (r *Repository) UpsertCommodityPrice(ctx context.Context, price *models.CommodityPrice) error {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("upsert", "commodity_prices")

	err := r.db.QueryRow(ctx, `
		INSERT INTO commodity_prices (symbol, name, price, open_price, high_price, low_price,
			previous_close, change_amount, change_percent, volume, unit, price_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (symbol, price_date)
		DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			previous_close = EXCLUDED.previous_close,
			change_amount = EXCLUDED.change_amount,
			change_percent = EXCLUDED.change_percent,
			volume = EXCLUDED.volume,
			unit = EXCLUDED.unit,
			updated_at = NOW()
		RETURNING id, updated_at
	`, price.Symbol, price.Name, price.Price, price.OpenPrice, price.HighPrice, price.LowPrice,
		price.PreviousClose, price.ChangeAmount, price.ChangePercent, price.Volume, price.Unit, price.PriceDate).
		Scan(&price.ID, &price.UpdatedAt)

	if err != nil {
		observability.GetMetrics().RecordDBError("upsert", "commodity_prices")
		return persistErr("upsert commodity price", err)
	}
	return nil
}

// GetCommodityPricesForDate returns all prices stored for the given calendar
// date; an empty slice means a cache miss.
func (r *Repository) GetCommodityPricesForDate(ctx context.Context, date time.Time) ([]models.CommodityPrice, error) {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("select", "commodity_prices")

	rows, err := r.db.Query(ctx, `
		SELECT id, symbol, name, price, open_price, high_price, low_price,
			previous_close, change_amount, change_percent, volume, unit, price_date, updated_at
		FROM commodity_prices
		WHERE price_date = $1
		ORDER BY symbol
	`, date)
	if err != nil {
		observability.GetMetrics().RecordDBError("select", "commodity_prices")
		return nil, persistErr("query commodity prices", err)
	}
	defer rows.Close()

	prices := []models.CommodityPrice{}
	for rows.Next() {
		var p models.CommodityPrice
		err := rows.Scan(&p.ID, &p.Symbol, &p.Name, &p.Price, &p.OpenPrice, &p.HighPrice, &p.LowPrice,
			&p.PreviousClose, &p.ChangeAmount, &p.ChangePercent, &p.Volume, &p.Unit, &p.PriceDate, &p.UpdatedAt)
		if err != nil {
			return nil, persistErr("scan commodity price", err)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate commodity prices", err)
	}

	return prices, nil
}
