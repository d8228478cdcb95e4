package cache

import (
	"context"
	"time"

	"market-pulse/models"
)

// QuoteProvider is the slice of the provider clients the currency and
// commodity orchestrators consume.
type QuoteProvider interface {
	GetCurrencyRate(ctx context.Context, from, to string) (*models.CurrencyRate, error)
	GetCommodityPrice(ctx context.Context, inst models.CommodityInstrument) (*models.CommodityPrice, error)
}

// NewsProvider is the slice of the news client the news orchestrator consumes
type NewsProvider interface {
	SearchNews(ctx context.Context, filter models.NewsFilter) ([]models.NewsArticle, error)
}

// CurrencyStore is the persistence surface the currency orchestrator needs
type CurrencyStore interface {
	UpsertCurrencyRate(ctx context.Context, rate *models.CurrencyRate) error
	GetCurrencyRatesForDate(ctx context.Context, date time.Time) ([]models.CurrencyRate, error)
}

// CommodityStore is the persistence surface the commodity orchestrator needs
type CommodityStore interface {
	UpsertCommodityPrice(ctx context.Context, price *models.CommodityPrice) error
	GetCommodityPricesForDate(ctx context.Context, date time.Time) ([]models.CommodityPrice, error)
}

// NewsStore is the persistence surface the news orchestrator needs
type NewsStore interface {
	SaveNewsArticle(ctx context.Context, article *models.NewsArticle) error
	GetNewsForDate(ctx context.Context, date time.Time) ([]models.NewsArticle, error)
	NewsExistsForDate(ctx context.Context, date time.Time) (bool, error)
	MarkHeadlines(ctx context.Context, uuids []string, date time.Time, priorities map[string]int) error
	GetHeadlinesForDate(ctx context.Context, date time.Time, limit int) ([]models.NewsArticle, error)
}
