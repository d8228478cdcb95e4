package cache

import (
	"context"
	"math"
	"time"

	"market-pulse/models"
	"market-pulse/observability"
)

// Headline selection thresholds: an article qualifies when any of its
// entities carries strong sentiment or a high relevance match.
const (
	headlineSentimentThreshold = 0.3
	headlineMatchThreshold     = 20.0
)

// NewsCache implements the daily cache-or-fetch policy for news, including
// transactional per-article persistence and headline derivation.
type NewsCache struct {
	store    NewsStore
	provider NewsProvider
	clock    Clock
}

// NewNewsCache creates a NewsCache
func NewNewsCache(store NewsStore, provider NewsProvider, clock Clock) *NewsCache {
	return &NewsCache{store: store, provider: provider, clock: clock}
}

// CheckAndGetNews returns today's articles. Cached rows are served only when
// they exist for today and the filter carries nothing the cache cannot
// answer (symbol or sentiment bounds force a live fetch). On a fetch, each
// article is saved atomically and a per-article failure skips only that
// article; afterwards headline candidates are derived and marked.
func (c *NewsCache) CheckAndGetNews(ctx context.Context, filter models.NewsFilter) ([]models.NewsArticle, error) {
	today := Today(c.clock)
	metrics := observability.GetMetrics()

	exists, err := c.store.NewsExistsForDate(ctx, today)
	if err != nil {
		return nil, err
	}
	if exists && !filter.BypassesCache() {
		metrics.RecordCacheHit("news")
		return c.store.GetNewsForDate(ctx, today)
	}

	metrics.RecordCacheMiss("news")
	return c.fetchAndSave(ctx, filter, today)
}

func (c *NewsCache) fetchAndSave(ctx context.Context, filter models.NewsFilter, today time.Time) ([]models.NewsArticle, error) {
	metrics := observability.GetMetrics()
	log := observability.WithDomain("news")

	fetched, err := c.provider.SearchNews(ctx, filter.Normalize())
	if err != nil {
		return nil, err
	}
	if len(fetched) == 0 {
		log.Info("provider returned no articles", "date", today.Format("2006-01-02"))
		return []models.NewsArticle{}, nil
	}

	saved := make([]models.NewsArticle, 0, len(fetched))
	for i := range fetched {
		article := &fetched[i]
		if err := c.store.SaveNewsArticle(ctx, article); err != nil {
			metrics.RecordFetchItem("news", "persistence_error")
			observability.WithArticle(article.UUID).Warn("article save failed, skipping",
				"title", article.Title, "error", err)
			continue
		}
		metrics.RecordFetchItem("news", "ok")
		saved = append(saved, *article)
	}

	c.markHeadlines(ctx, saved, today)

	return saved, nil
}

// markHeadlines derives and stores headline marks for the saved batch.
// Failures here are logged only: headline marks are a convenience index, not
// the source of truth.
func (c *NewsCache) markHeadlines(ctx context.Context, saved []models.NewsArticle, today time.Time) {
	uuids := []string{}
	priorities := map[string]int{}
	for i := range saved {
		if !isHeadlineCandidate(&saved[i]) {
			continue
		}
		uuids = append(uuids, saved[i].UUID)
		priorities[saved[i].UUID] = headlinePriority(&saved[i])
	}
	if len(uuids) == 0 {
		return
	}

	if err := c.store.MarkHeadlines(ctx, uuids, today, priorities); err != nil {
		observability.WithDomain("news").Warn("headline marking failed", "error", err)
		return
	}
	observability.GetMetrics().RecordHeadlinesMarked(len(uuids))
}

// isHeadlineCandidate reports whether any entity crosses the sentiment or
// match-score threshold.
func isHeadlineCandidate(article *models.NewsArticle) bool {
	for _, e := range article.Entities {
		if e.SentimentScore != nil && math.Abs(*e.SentimentScore) > headlineSentimentThreshold {
			return true
		}
		if e.MatchScore > headlineMatchThreshold {
			return true
		}
	}
	return false
}

// headlinePriority is round(100 * max(|sentiment|)) across the article's
// entities, or 0 when no entity carries a sentiment score.
func headlinePriority(article *models.NewsArticle) int {
	maxAbs := 0.0
	found := false
	for _, e := range article.Entities {
		if e.SentimentScore == nil {
			continue
		}
		found = true
		if abs := math.Abs(*e.SentimentScore); abs > maxAbs {
			maxAbs = abs
		}
	}
	if !found {
		return 0
	}
	return int(math.Round(100 * maxAbs))
}

// GetNewsWithPagination wraps CheckAndGetNews and slices the in-memory result
// by page and limit. Total reflects the pre-slice count; pagination never
// changes the fetch-or-cache decision.
func (c *NewsCache) GetNewsWithPagination(ctx context.Context, filter models.NewsFilter, page, limit int) (*models.PaginatedNews, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = models.DefaultNewsLimit
	}
	if limit > models.MaxNewsLimit {
		limit = models.MaxNewsLimit
	}

	articles, err := c.CheckAndGetNews(ctx, filter)
	if err != nil {
		return nil, err
	}

	total := len(articles)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &models.PaginatedNews{
		Articles: articles[start:end],
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, nil
}

// GetHeadlineNewsForToday ensures today's general news exists (running a full
// fetch cycle when it does not) and returns the headline-marked articles.
func (c *NewsCache) GetHeadlineNewsForToday(ctx context.Context) ([]models.NewsArticle, error) {
	today := Today(c.clock)

	exists, err := c.store.NewsExistsForDate(ctx, today)
	if err != nil {
		return nil, err
	}
	if !exists {
		if _, err := c.fetchAndSave(ctx, models.NewsFilter{}, today); err != nil {
			return nil, err
		}
	}

	return c.store.GetHeadlinesForDate(ctx, today, 0)
}
