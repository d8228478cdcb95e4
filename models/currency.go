package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyPair identifies a tracked exchange-rate pair
type CurrencyPair struct {
	From string
	To   string
}

// TrackedCurrencyPairs are the pairs fetched on a currency cache miss
var TrackedCurrencyPairs = []CurrencyPair{
	{From: "USD", To: "CNY"},
	{From: "EUR", To: "USD"},
	{From: "GBP", To: "USD"},
	{From: "USD", To: "JPY"},
}

// CurrencyRate represents one day's exchange rate for a currency pair.
// Exactly one row exists per (from_currency, to_currency, rate_date).
type CurrencyRate struct {
	ID           int64               `json:"id,omitempty"`
	FromCurrency string              `json:"from_currency"`
	ToCurrency   string              `json:"to_currency"`
	ExchangeRate decimal.Decimal     `json:"exchange_rate"`
	BidPrice     decimal.NullDecimal `json:"bid_price,omitempty"`
	AskPrice     decimal.NullDecimal `json:"ask_price,omitempty"`
	TimeZone     string              `json:"time_zone,omitempty"`
	RateDate     time.Time           `json:"rate_date"`
	UpdatedAt    time.Time           `json:"updated_at,omitempty"`
}
