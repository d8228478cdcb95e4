package main

import (
	"context"

	"market-pulse/cache"
	"market-pulse/config"
	"market-pulse/models"
	"market-pulse/repository"
	"market-pulse/services"
)

// App wires the cache orchestrators and the repository behind the HTTP surface
type App struct {
	cfg       *config.Config
	repo      *repository.Repository
	breakers  *services.CircuitBreakerRegistry
	currency  *cache.CurrencyCache
	commodity *cache.CommodityCache
	news      *cache.NewsCache
}

// NewApp creates a new App
func NewApp(cfg *config.Config, repo *repository.Repository, breakers *services.CircuitBreakerRegistry, currency *cache.CurrencyCache, commodity *cache.CommodityCache, news *cache.NewsCache) *App {
	return &App{
		cfg:       cfg,
		repo:      repo,
		breakers:  breakers,
		currency:  currency,
		commodity: commodity,
		news:      news,
	}
}

// Breakers exposes the provider circuit breakers for health reporting
func (a *App) Breakers() *services.CircuitBreakerRegistry {
	return a.breakers
}

// GetCurrencyRates returns today's exchange rates, fetching on a cache miss
func (a *App) GetCurrencyRates(ctx context.Context) ([]models.CurrencyRate, error) {
	return a.currency.CheckAndGetCurrencyRates(ctx)
}

// GetCommodityPrices returns today's commodity prices, fetching on a cache miss
func (a *App) GetCommodityPrices(ctx context.Context) ([]models.CommodityPrice, error) {
	return a.commodity.CheckAndGetCommodityPrices(ctx)
}

// GetNews returns today's news for the given filter
func (a *App) GetNews(ctx context.Context, filter models.NewsFilter) ([]models.NewsArticle, error) {
	return a.news.CheckAndGetNews(ctx, filter)
}

// GetNewsPage returns one page of today's news plus the pre-slice total
func (a *App) GetNewsPage(ctx context.Context, filter models.NewsFilter, page, limit int) (*models.PaginatedNews, error) {
	return a.news.GetNewsWithPagination(ctx, filter, page, limit)
}

// GetHeadlines returns today's headline articles
func (a *App) GetHeadlines(ctx context.Context) ([]models.NewsArticle, error) {
	return a.news.GetHeadlineNewsForToday(ctx)
}

// Health reports database connectivity
func (a *App) Health(ctx context.Context) error {
	if a.repo == nil {
		return nil
	}
	return a.repo.Health(ctx)
}

// Shutdown releases the App's resources
func (a *App) Shutdown() {
	if a.repo != nil {
		a.repo.Close()
	}
}
