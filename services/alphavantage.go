package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"market-pulse/models"
	"market-pulse/observability"

	"github.com/shopspring/decimal"
)

// AlphaVantageService handles communication with the Alpha Vantage API
type AlphaVantageService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	breakers   *CircuitBreakerRegistry
}

// NewAlphaVantageService creates a new AlphaVantageService instance
func NewAlphaVantageService(apiKey string, breakers *CircuitBreakerRegistry) *AlphaVantageService {
	return &AlphaVantageService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://www.alphavantage.co/query",
		breakers:   breakers,
	}
}

// alphaVantageSentinels are the error-signaling fields Alpha Vantage embeds in
// an otherwise 200 response. "Note" and "Information" signal rate limiting.
type alphaVantageSentinels struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

func (s alphaVantageSentinels) toError() error {
	if s.Note != "" || s.Information != "" {
		return ErrRateLimited
	}
	if s.ErrorMessage != "" {
		return fmt.Errorf("provider error: %s", s.ErrorMessage)
	}
	return nil
}

// ExchangeRateResponse represents the CURRENCY_EXCHANGE_RATE payload
type ExchangeRateResponse struct {
	Rate struct {
		FromCode      string `json:"1. From_Currency Code"`
		FromName      string `json:"2. From_Currency Name"`
		ToCode        string `json:"3. To_Currency Code"`
		ToName        string `json:"4. To_Currency Name"`
		ExchangeRate  string `json:"5. Exchange Rate"`
		LastRefreshed string `json:"6. Last Refreshed"`
		TimeZone      string `json:"7. Time Zone"`
		BidPrice      string `json:"8. Bid Price"`
		AskPrice      string `json:"9. Ask Price"`
	} `json:"Realtime Currency Exchange Rate"`
	alphaVantageSentinels
}

// GetCurrencyRate returns the current exchange rate for a currency pair
func (s *AlphaVantageService) GetCurrencyRate(ctx context.Context, from, to string) (*models.CurrencyRate, error) {
	instrument := from + "/" + to
	params := url.Values{}
	params.Set("function", "CURRENCY_EXCHANGE_RATE")
	params.Set("from_currency", from)
	params.Set("to_currency", to)
	params.Set("apikey", s.apiKey)

	var rateResp ExchangeRateResponse
	if err := s.get(ctx, "currency_rate", instrument, params, &rateResp); err != nil {
		return nil, err
	}
	if err := rateResp.alphaVantageSentinels.toError(); err != nil {
		return nil, &ProviderError{Provider: "alphavantage", Operation: "currency_rate", Instrument: instrument, Err: err}
	}

	rate, err := decimal.NewFromString(rateResp.Rate.ExchangeRate)
	if err != nil {
		return nil, &ProviderError{
			Provider:   "alphavantage",
			Operation:  "currency_rate",
			Instrument: instrument,
			Err:        fmt.Errorf("malformed exchange rate %q: %w", rateResp.Rate.ExchangeRate, err),
		}
	}

	return &models.CurrencyRate{
		FromCurrency: from,
		ToCurrency:   to,
		ExchangeRate: rate,
		BidPrice:     parseNullDecimal(rateResp.Rate.BidPrice),
		AskPrice:     parseNullDecimal(rateResp.Rate.AskPrice),
		TimeZone:     rateResp.Rate.TimeZone,
	}, nil
}

// QuoteResponse represents the GLOBAL_QUOTE payload used for commodity proxies
type QuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Open          string `json:"02. open"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		LatestDay     string `json:"07. latest trading day"`
		PrevClose     string `json:"08. previous close"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
	alphaVantageSentinels
}

// GetCommodityPrice returns the latest ETF proxy quote for a commodity
func (s *AlphaVantageService) GetCommodityPrice(ctx context.Context, inst models.CommodityInstrument) (*models.CommodityPrice, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", inst.Symbol)
	params.Set("apikey", s.apiKey)

	var quoteResp QuoteResponse
	if err := s.get(ctx, "commodity_price", inst.Symbol, params, &quoteResp); err != nil {
		return nil, err
	}
	if err := quoteResp.alphaVantageSentinels.toError(); err != nil {
		return nil, &ProviderError{Provider: "alphavantage", Operation: "commodity_price", Instrument: inst.Symbol, Err: err}
	}

	q := quoteResp.GlobalQuote
	price, err := decimal.NewFromString(q.Price)
	if err != nil {
		return nil, &ProviderError{
			Provider:   "alphavantage",
			Operation:  "commodity_price",
			Instrument: inst.Symbol,
			Err:        fmt.Errorf("malformed price %q: %w", q.Price, err),
		}
	}

	var volume int64
	if q.Volume != "" {
		volume, err = strconv.ParseInt(q.Volume, 10, 64)
		if err != nil {
			observability.Warn("failed to parse volume", "symbol", inst.Symbol, "volume", q.Volume, "error", err)
		}
	}

	return &models.CommodityPrice{
		Symbol:        inst.Symbol,
		Name:          inst.Name,
		Price:         price,
		OpenPrice:     parseNullDecimal(q.Open),
		HighPrice:     parseNullDecimal(q.High),
		LowPrice:      parseNullDecimal(q.Low),
		PreviousClose: parseNullDecimal(q.PrevClose),
		ChangeAmount:  parseNullDecimal(q.Change),
		ChangePercent: parseNullDecimal(strings.TrimSuffix(q.ChangePercent, "%")),
		Volume:        volume,
		Unit:          inst.Unit,
	}, nil
}

// get performs a breaker-wrapped GET against the quotes API and decodes the
// payload into out. Sentinel fields are checked by the caller once the typed
// payload is populated.
func (s *AlphaVantageService) get(ctx context.Context, operation, instrument string, params url.Values, out any) error {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest("alphavantage", operation)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI("alphavantage", operation)

	_, err := s.breakers.Execute(ctx, "alphavantage", func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch quote: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("alphavantage returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		metrics.RecordExternalAPIError("alphavantage", operation, "request")
		return &ProviderError{Provider: "alphavantage", Operation: operation, Instrument: instrument, Err: err}
	}
	return nil
}

// parseNullDecimal converts an optional string-typed numeric field, returning
// an invalid NullDecimal for empty or unparseable values.
func parseNullDecimal(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" || s == "-" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
