package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"market-pulse/models"
	"market-pulse/observability"
)

// MarketauxService handles communication with the Marketaux news API
type MarketauxService struct {
	apiToken   string
	httpClient *http.Client
	baseURL    string
	breakers   *CircuitBreakerRegistry
}

// NewMarketauxService creates a new MarketauxService instance
func NewMarketauxService(apiToken string, breakers *CircuitBreakerRegistry) *MarketauxService {
	return &MarketauxService{
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.marketaux.com/v1",
		breakers:   breakers,
	}
}

// NewsSearchResponse represents the Marketaux news search payload
type NewsSearchResponse struct {
	Meta struct {
		Found    int `json:"found"`
		Returned int `json:"returned"`
		Limit    int `json:"limit"`
		Page     int `json:"page"`
	} `json:"meta"`
	Data []struct {
		UUID        string   `json:"uuid"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Keywords    string   `json:"keywords"`
		Snippet     string   `json:"snippet"`
		URL         string   `json:"url"`
		ImageURL    string   `json:"image_url"`
		Language    string   `json:"language"`
		PublishedAt string   `json:"published_at"`
		Source      string   `json:"source"`
		Categories  []string `json:"categories"`
		Entities    []struct {
			Symbol         string   `json:"symbol"`
			Name           string   `json:"name"`
			Exchange       string   `json:"exchange"`
			ExchangeLong   string   `json:"exchange_long"`
			Country        string   `json:"country"`
			Type           string   `json:"type"`
			Industry       string   `json:"industry"`
			MatchScore     float64  `json:"match_score"`
			SentimentScore *float64 `json:"sentiment_score"`
			Highlights     []struct {
				Highlight     string   `json:"highlight"`
				Sentiment     *float64 `json:"sentiment"`
				HighlightedIn string   `json:"highlighted_in"`
			} `json:"highlights"`
		} `json:"entities"`
		Similar []struct {
			UUID        string `json:"uuid"`
			Title       string `json:"title"`
			PublishedAt string `json:"published_at"`
			Source      string `json:"source"`
		} `json:"similar"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SearchNews returns articles matching the given filter. The filter must
// already be normalized (limit and language defaults applied).
func (s *MarketauxService) SearchNews(ctx context.Context, filter models.NewsFilter) ([]models.NewsArticle, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest("marketaux", "news_search")
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI("marketaux", "news_search")

	params := url.Values{}
	params.Set("api_token", s.apiToken)
	params.Set("limit", strconv.Itoa(filter.Limit))
	params.Set("language", filter.Language)
	if filter.Symbols != "" {
		params.Set("symbols", filter.Symbols)
	}
	if filter.Page > 0 {
		params.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.SentimentGTE != nil {
		params.Set("sentiment_gte", strconv.FormatFloat(*filter.SentimentGTE, 'f', -1, 64))
	}
	if filter.SentimentLTE != nil {
		params.Set("sentiment_lte", strconv.FormatFloat(*filter.SentimentLTE, 'f', -1, 64))
	}
	if filter.Countries != "" {
		params.Set("countries", filter.Countries)
	}
	if filter.EntityTypes != "" {
		params.Set("entity_types", filter.EntityTypes)
	}
	if filter.Industries != "" {
		params.Set("industries", filter.Industries)
	}
	if filter.FilterEntities {
		params.Set("filter_entities", "true")
	}
	if filter.MustHaveEntities {
		params.Set("must_have_entities", "true")
	}

	var newsResp NewsSearchResponse
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		_, err := s.breakers.Execute(ctx, "marketaux", func() (any, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/news/all?"+params.Encode(), nil)
			if err != nil {
				return nil, fmt.Errorf("failed to create request: %w", err)
			}

			resp, err := s.httpClient.Do(req)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch news: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests {
				return nil, ErrRateLimited
			}
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("marketaux returned status %d", resp.StatusCode)
			}

			newsResp = NewsSearchResponse{}
			if err := json.NewDecoder(resp.Body).Decode(&newsResp); err != nil {
				return nil, fmt.Errorf("failed to decode response: %w", err)
			}
			if newsResp.Error != nil {
				// The error sentinel is authoritative even on a 200 response
				if newsResp.Error.Code == "rate_limit_reached" || newsResp.Error.Code == "usage_limit_reached" {
					return nil, ErrRateLimited
				}
				return nil, fmt.Errorf("provider error %s: %s", newsResp.Error.Code, newsResp.Error.Message)
			}
			return nil, nil
		})
		return err
	})
	if err != nil {
		metrics.RecordExternalAPIError("marketaux", "news_search", "request")
		return nil, &ProviderError{Provider: "marketaux", Operation: "news_search", Instrument: filter.Symbols, Err: err}
	}

	articles := make([]models.NewsArticle, 0, len(newsResp.Data))
	for _, item := range newsResp.Data {
		article := models.NewsArticle{
			UUID:        item.UUID,
			Title:       item.Title,
			Description: item.Description,
			Snippet:     item.Snippet,
			URL:         item.URL,
			ImageURL:    item.ImageURL,
			Language:    item.Language,
			PublishedAt: parseNewsTimestamp(item.PublishedAt),
			Source:      item.Source,
			Categories:  item.Categories,
		}

		for _, e := range item.Entities {
			entity := models.NewsEntity{
				Symbol:         e.Symbol,
				Name:           e.Name,
				Exchange:       e.Exchange,
				ExchangeLong:   e.ExchangeLong,
				Country:        e.Country,
				Type:           e.Type,
				Industry:       e.Industry,
				MatchScore:     e.MatchScore,
				SentimentScore: e.SentimentScore,
			}
			for _, h := range e.Highlights {
				entity.Highlights = append(entity.Highlights, models.EntityHighlight{
					Highlight:     h.Highlight,
					Sentiment:     h.Sentiment,
					HighlightedIn: h.HighlightedIn,
				})
			}
			article.Entities = append(article.Entities, entity)
		}

		for _, sim := range item.Similar {
			article.Similar = append(article.Similar, models.SimilarArticle{
				UUID:        sim.UUID,
				Title:       sim.Title,
				PublishedAt: parseNewsTimestamp(sim.PublishedAt),
				Source:      sim.Source,
			})
		}

		articles = append(articles, article)
	}

	return articles, nil
}

// parseNewsTimestamp normalizes provider timestamps to UTC second precision.
// Unparseable values fall back to the current time rather than dropping the
// article.
func parseNewsTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		observability.Warn("failed to parse news timestamp, using current time", "value", value, "error", err)
		ts = time.Now()
	}
	return ts.UTC().Truncate(time.Second)
}
