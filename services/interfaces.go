package services

import (
	"context"

	"market-pulse/models"
)

// QuoteProviderInterface defines the interface for currency and commodity quote operations
type QuoteProviderInterface interface {
	GetCurrencyRate(ctx context.Context, from, to string) (*models.CurrencyRate, error)
	GetCommodityPrice(ctx context.Context, inst models.CommodityInstrument) (*models.CommodityPrice, error)
}

// NewsProviderInterface defines the interface for news search operations
type NewsProviderInterface interface {
	SearchNews(ctx context.Context, filter models.NewsFilter) ([]models.NewsArticle, error)
}

// Compile-time interface verification
var _ QuoteProviderInterface = (*AlphaVantageService)(nil)
var _ NewsProviderInterface = (*MarketauxService)(nil)
