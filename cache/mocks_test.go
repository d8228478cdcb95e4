package cache

import (
	"context"
	"fmt"
	"time"

	"market-pulse/models"

	"github.com/shopspring/decimal"
)

// fakeClock is a Clock with a settable now and instant sleeps
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

type mockQuoteProvider struct {
	rateCalls  int
	quoteCalls int

	// failPairs and failSymbols make specific instruments error out
	failPairs   map[string]error
	failSymbols map[string]error
	err         error
}

func (m *mockQuoteProvider) GetCurrencyRate(ctx context.Context, from, to string) (*models.CurrencyRate, error) {
	m.rateCalls++
	if m.err != nil {
		return nil, m.err
	}
	if err, ok := m.failPairs[from+"/"+to]; ok {
		return nil, err
	}
	return &models.CurrencyRate{
		FromCurrency: from,
		ToCurrency:   to,
		ExchangeRate: decimal.NewFromFloat(1.2345),
	}, nil
}

func (m *mockQuoteProvider) GetCommodityPrice(ctx context.Context, inst models.CommodityInstrument) (*models.CommodityPrice, error) {
	m.quoteCalls++
	if m.err != nil {
		return nil, m.err
	}
	if err, ok := m.failSymbols[inst.Symbol]; ok {
		return nil, err
	}
	return &models.CommodityPrice{
		Symbol: inst.Symbol,
		Name:   inst.Name,
		Price:  decimal.NewFromFloat(100.5),
		Unit:   inst.Unit,
	}, nil
}

type mockNewsProvider struct {
	searchCalls int
	lastFilter  models.NewsFilter
	articles    []models.NewsArticle
	err         error
}

func (m *mockNewsProvider) SearchNews(ctx context.Context, filter models.NewsFilter) ([]models.NewsArticle, error) {
	m.searchCalls++
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	return m.articles, nil
}

type mockCurrencyStore struct {
	rates      []models.CurrencyRate
	upserts    []models.CurrencyRate
	getCalls   int
	getErr     error
	upsertErr  error
	failOnPair string
}

func (m *mockCurrencyStore) GetCurrencyRatesForDate(ctx context.Context, date time.Time) ([]models.CurrencyRate, error) {
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.rates, nil
}

func (m *mockCurrencyStore) UpsertCurrencyRate(ctx context.Context, rate *models.CurrencyRate) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.failOnPair != "" && rate.FromCurrency+"/"+rate.ToCurrency == m.failOnPair {
		return fmt.Errorf("upsert rejected for %s", m.failOnPair)
	}
	m.upserts = append(m.upserts, *rate)
	return nil
}

type mockCommodityStore struct {
	prices  []models.CommodityPrice
	upserts []models.CommodityPrice
	getErr  error
}

func (m *mockCommodityStore) GetCommodityPricesForDate(ctx context.Context, date time.Time) ([]models.CommodityPrice, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.prices, nil
}

func (m *mockCommodityStore) UpsertCommodityPrice(ctx context.Context, price *models.CommodityPrice) error {
	m.upserts = append(m.upserts, *price)
	return nil
}

type mockNewsStore struct {
	exists       bool
	existsErr    error
	stored       []models.NewsArticle
	headlines    []models.NewsArticle
	saveCalls    int
	saveErr      error
	failOnUUID   string
	markedUUIDs  []string
	markedDate   time.Time
	priorities   map[string]int
	markErr      error
	getCalls     int
	getHeadCalls int
}

func (m *mockNewsStore) NewsExistsForDate(ctx context.Context, date time.Time) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.exists, nil
}

func (m *mockNewsStore) SaveNewsArticle(ctx context.Context, article *models.NewsArticle) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.failOnUUID != "" && article.UUID == m.failOnUUID {
		return fmt.Errorf("save rejected for %s", m.failOnUUID)
	}
	m.stored = append(m.stored, *article)
	return nil
}

func (m *mockNewsStore) GetNewsForDate(ctx context.Context, date time.Time) ([]models.NewsArticle, error) {
	m.getCalls++
	return m.stored, nil
}

func (m *mockNewsStore) MarkHeadlines(ctx context.Context, uuids []string, date time.Time, priorities map[string]int) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.markedUUIDs = append(m.markedUUIDs, uuids...)
	m.markedDate = date
	m.priorities = priorities
	return nil
}

func (m *mockNewsStore) GetHeadlinesForDate(ctx context.Context, date time.Time, limit int) ([]models.NewsArticle, error) {
	m.getHeadCalls++
	return m.headlines, nil
}

// testClock pins the date so every assertion agrees on "today"
func testClock() *fakeClock {
	return newFakeClock(time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC))
}

func testDate() time.Time {
	return time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
}

func instantPacer(clock Clock) *Pacer {
	return NewPacer(12*time.Second, clock)
}
