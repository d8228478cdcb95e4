package repository

import (
	"context"
	"time"

	"market-pulse/models"
)

// RepositoryInterface defines all repository operations
type RepositoryInterface interface {
	// Health and lifecycle
	Close()
	Health(ctx context.Context) error
	Migrate(ctx context.Context) error

	// Currency rates
	UpsertCurrencyRate(ctx context.Context, rate *models.CurrencyRate) error
	GetCurrencyRatesForDate(ctx context.Context, date time.Time) ([]models.CurrencyRate, error)

	// Commodity prices
	UpsertCommodityPrice(ctx context.Context, price *models.CommodityPrice) error
	GetCommodityPricesForDate(ctx context.Context, date time.Time) ([]models.CommodityPrice, error)

	// News
	SaveNewsArticle(ctx context.Context, article *models.NewsArticle) error
	GetNewsForDate(ctx context.Context, date time.Time) ([]models.NewsArticle, error)
	NewsExistsForDate(ctx context.Context, date time.Time) (bool, error)

	// Headlines
	MarkHeadlines(ctx context.Context, uuids []string, date time.Time, priorities map[string]int) error
	GetHeadlinesForDate(ctx context.Context, date time.Time, limit int) ([]models.NewsArticle, error)
}

// Compile-time interface verification
var _ RepositoryInterface = (*Repository)(nil)
