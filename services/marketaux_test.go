package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"market-pulse/models"
)

func newTestMarketaux(serverURL string) *MarketauxService {
	svc := NewMarketauxService("test-token", NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))
	svc.baseURL = serverURL
	return svc
}

const marketauxPayload = `{
	"meta": {"found": 1250, "returned": 1, "limit": 1, "page": 1},
	"data": [
		{
			"uuid": "a1b2c3d4-0000-0000-0000-000000000001",
			"title": "Gold rallies on rate cut hopes",
			"description": "Gold prices climbed as traders priced in cuts.",
			"snippet": "Gold prices climbed...",
			"url": "https://example.com/gold-rallies",
			"image_url": "https://example.com/gold.jpg",
			"language": "en",
			"published_at": "2025-03-14T09:15:30.000000Z",
			"source": "example.com",
			"categories": ["commodities", "monetary-policy"],
			"entities": [
				{
					"symbol": "GLD",
					"name": "SPDR Gold Shares",
					"exchange": "NYSEARCA",
					"exchange_long": "NYSE Arca",
					"country": "us",
					"type": "equity",
					"industry": "Financial Services",
					"match_score": 25.3,
					"sentiment_score": 0.72,
					"highlights": [
						{
							"highlight": "<em>Gold</em> rallies on rate cut hopes",
							"sentiment": 0.72,
							"highlighted_in": "title"
						}
					]
				}
			],
			"similar": [
				{
					"uuid": "a1b2c3d4-0000-0000-0000-000000000002",
					"title": "Silver follows gold higher",
					"published_at": "2025-03-14T08:50:00.000000Z",
					"source": "example.org"
				}
			]
		}
	]
}`

func TestMarketauxService_SearchNews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api_token") != "test-token" {
			t.Errorf("api_token = %v, want test-token", q.Get("api_token"))
		}
		if q.Get("limit") != "50" {
			t.Errorf("limit = %v, want 50", q.Get("limit"))
		}
		if q.Get("language") != "en" {
			t.Errorf("language = %v, want en", q.Get("language"))
		}
		w.Write([]byte(marketauxPayload))
	}))
	defer server.Close()

	svc := newTestMarketaux(server.URL)
	articles, err := svc.SearchNews(context.Background(), models.NewsFilter{}.Normalize())
	if err != nil {
		t.Fatalf("SearchNews returned error: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(articles))
	}

	a := articles[0]
	if a.UUID != "a1b2c3d4-0000-0000-0000-000000000001" {
		t.Errorf("UUID = %v", a.UUID)
	}
	if a.Title != "Gold rallies on rate cut hopes" {
		t.Errorf("Title = %v", a.Title)
	}
	wantTime := time.Date(2025, 3, 14, 9, 15, 30, 0, time.UTC)
	if !a.PublishedAt.Equal(wantTime) {
		t.Errorf("PublishedAt = %v, want %v", a.PublishedAt, wantTime)
	}
	if len(a.Categories) != 2 {
		t.Errorf("got %d categories, want 2", len(a.Categories))
	}

	if len(a.Entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(a.Entities))
	}
	e := a.Entities[0]
	if e.Symbol != "GLD" || e.MatchScore != 25.3 {
		t.Errorf("entity = %+v", e)
	}
	if e.SentimentScore == nil || *e.SentimentScore != 0.72 {
		t.Errorf("SentimentScore = %v, want 0.72", e.SentimentScore)
	}
	if len(e.Highlights) != 1 || e.Highlights[0].HighlightedIn != "title" {
		t.Errorf("Highlights = %+v", e.Highlights)
	}

	if len(a.Similar) != 1 {
		t.Fatalf("got %d similar, want 1", len(a.Similar))
	}
	if a.Similar[0].UUID != "a1b2c3d4-0000-0000-0000-000000000002" {
		t.Errorf("similar UUID = %v", a.Similar[0].UUID)
	}
}

func TestMarketauxService_FilterParameters(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(`{"meta": {}, "data": []}`))
	}))
	defer server.Close()

	sentiment := 0.25
	filter := models.NewsFilter{
		Symbols:          "GLD,SLV",
		Limit:            10,
		Page:             2,
		Language:         "en",
		SentimentGTE:     &sentiment,
		FilterEntities:   true,
		MustHaveEntities: true,
	}

	svc := newTestMarketaux(server.URL)
	if _, err := svc.SearchNews(context.Background(), filter); err != nil {
		t.Fatalf("SearchNews returned error: %v", err)
	}

	want := map[string]string{
		"symbols":            "GLD,SLV",
		"limit":              "10",
		"page":               "2",
		"sentiment_gte":      "0.25",
		"filter_entities":    "true",
		"must_have_entities": "true",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("query %s = %q, want %q", k, got[k], v)
		}
	}
	if _, ok := got["sentiment_lte"]; ok {
		t.Error("sentiment_lte should be absent when not set")
	}
}

func TestMarketauxService_RateLimit(t *testing.T) {
	t.Run("HTTP 429", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		svc := newTestMarketaux(server.URL)
		_, err := svc.SearchNews(context.Background(), models.NewsFilter{}.Normalize())
		if !IsRateLimited(err) {
			t.Errorf("IsRateLimited = false for %v, want true", err)
		}
	})

	t.Run("error sentinel in a 200 response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error": {"code": "usage_limit_reached", "message": "You have reached your usage limit."}}`))
		}))
		defer server.Close()

		svc := newTestMarketaux(server.URL)
		_, err := svc.SearchNews(context.Background(), models.NewsFilter{}.Normalize())
		if !IsRateLimited(err) {
			t.Errorf("IsRateLimited = false for %v, want true", err)
		}
	})

	t.Run("other provider error codes are not rate limits", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error": {"code": "invalid_api_token", "message": "Invalid API token."}}`))
		}))
		defer server.Close()

		svc := newTestMarketaux(server.URL)
		_, err := svc.SearchNews(context.Background(), models.NewsFilter{}.Normalize())
		if err == nil {
			t.Fatal("expected provider error")
		}
		if IsRateLimited(err) {
			t.Errorf("an invalid token must not be classified as rate limited: %v", err)
		}
	})
}

func TestMarketauxService_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"meta": {}, "data": []}`))
	}))
	defer server.Close()

	svc := newTestMarketaux(server.URL)
	articles, err := svc.SearchNews(context.Background(), models.NewsFilter{}.Normalize())
	if err != nil {
		t.Fatalf("SearchNews returned error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("made %d attempts, want 2", attempts)
	}
	if len(articles) != 0 {
		t.Errorf("got %d articles, want 0", len(articles))
	}
}

func TestParseNewsTimestamp(t *testing.T) {
	got := parseNewsTimestamp("2025-03-14T09:15:30.123456Z")
	want := time.Date(2025, 3, 14, 9, 15, 30, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseNewsTimestamp = %v, want %v (sub-second precision dropped)", got, want)
	}

	// Unparseable values fall back to roughly now
	fallback := parseNewsTimestamp("not-a-timestamp")
	if time.Since(fallback) > time.Minute {
		t.Errorf("fallback timestamp %v should be close to now", fallback)
	}
}
