package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommodityInstrument describes a tracked commodity and the ETF used as its
// price proxy (the quotes provider has no direct spot-price endpoint on the
// free tier).
type CommodityInstrument struct {
	Symbol string
	Name   string
	Unit   string
}

// TrackedCommodities are the instruments fetched on a commodity cache miss
var TrackedCommodities = []CommodityInstrument{
	{Symbol: "GLD", Name: "Gold", Unit: "USD/share"},
	{Symbol: "SLV", Name: "Silver", Unit: "USD/share"},
	{Symbol: "USO", Name: "Crude Oil WTI", Unit: "USD/share"},
	{Symbol: "UNG", Name: "Natural Gas", Unit: "USD/share"},
	{Symbol: "CPER", Name: "Copper", Unit: "USD/share"},
	{Symbol: "DBA", Name: "Agriculture", Unit: "USD/share"},
	{Symbol: "WEAT", Name: "Wheat", Unit: "USD/share"},
	{Symbol: "CORN", Name: "Corn", Unit: "USD/share"},
}

// CommodityPrice represents one day's quote for a commodity proxy.
// Exactly one row exists per (symbol, price_date).
type CommodityPrice struct {
	ID            int64               `json:"id,omitempty"`
	Symbol        string              `json:"symbol"`
	Name          string              `json:"name"`
	Price         decimal.Decimal     `json:"price"`
	OpenPrice     decimal.NullDecimal `json:"open_price,omitempty"`
	HighPrice     decimal.NullDecimal `json:"high_price,omitempty"`
	LowPrice      decimal.NullDecimal `json:"low_price,omitempty"`
	PreviousClose decimal.NullDecimal `json:"previous_close,omitempty"`
	ChangeAmount  decimal.NullDecimal `json:"change_amount,omitempty"`
	ChangePercent decimal.NullDecimal `json:"change_percent,omitempty"`
	Volume        int64               `json:"volume,omitempty"`
	Unit          string              `json:"unit"`
	PriceDate     time.Time           `json:"price_date"`
	UpdatedAt     time.Time           `json:"updated_at,omitempty"`
}
