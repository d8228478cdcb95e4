package models

import "time"

// NewsArticle represents a news article with its nested relations.
// The uuid is assigned by the news provider and globally unique; categories,
// entities and similar references always reflect the most recent save.
type NewsArticle struct {
	UUID        string           `json:"uuid"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Snippet     string           `json:"snippet,omitempty"`
	URL         string           `json:"url"`
	ImageURL    string           `json:"image_url,omitempty"`
	Language    string           `json:"language"`
	PublishedAt time.Time        `json:"published_at"`
	Source      string           `json:"source"`
	Categories  []string         `json:"categories,omitempty"`
	Entities    []NewsEntity     `json:"entities,omitempty"`
	Similar     []SimilarArticle `json:"similar,omitempty"`
}

// NewsEntity is a financial entity (company, index, currency) mentioned in an
// article, with the provider's relevance and sentiment scoring.
type NewsEntity struct {
	ID             int64             `json:"id,omitempty"`
	Symbol         string            `json:"symbol,omitempty"`
	Name           string            `json:"name,omitempty"`
	Exchange       string            `json:"exchange,omitempty"`
	ExchangeLong   string            `json:"exchange_long,omitempty"`
	Country        string            `json:"country,omitempty"`
	Type           string            `json:"type,omitempty"`
	Industry       string            `json:"industry,omitempty"`
	MatchScore     float64           `json:"match_score,omitempty"`
	SentimentScore *float64          `json:"sentiment_score,omitempty"`
	Highlights     []EntityHighlight `json:"highlights,omitempty"`
}

// EntityHighlight is a scored text fragment where an entity was mentioned
type EntityHighlight struct {
	Highlight     string   `json:"highlight"`
	Sentiment     *float64 `json:"sentiment,omitempty"`
	HighlightedIn string   `json:"highlighted_in,omitempty"`
}

// SimilarArticle is a lightweight reference to a related article
type SimilarArticle struct {
	UUID        string    `json:"uuid"`
	Title       string    `json:"title,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	Source      string    `json:"source,omitempty"`
}

// HeadlineMark flags an article as a headline for a given date. Derived from
// entity sentiment and match scores after a fetch, never authored directly.
type HeadlineMark struct {
	ArticleUUID  string    `json:"article_uuid"`
	HeadlineDate time.Time `json:"headline_date"`
	IsHeadline   bool      `json:"is_headline"`
	Priority     int       `json:"priority"`
}

// NewsFilter carries the caller-supplied news query parameters. Zero values
// mean "not supplied"; Normalize fills provider defaults.
type NewsFilter struct {
	Symbols          string   `json:"symbols,omitempty"`
	Limit            int      `json:"limit,omitempty"`
	Page             int      `json:"page,omitempty"`
	Language         string   `json:"language,omitempty"`
	SentimentGTE     *float64 `json:"sentiment_gte,omitempty"`
	SentimentLTE     *float64 `json:"sentiment_lte,omitempty"`
	Countries        string   `json:"countries,omitempty"`
	EntityTypes      string   `json:"entity_types,omitempty"`
	Industries       string   `json:"industries,omitempty"`
	FilterEntities   bool     `json:"filter_entities,omitempty"`
	MustHaveEntities bool     `json:"must_have_entities,omitempty"`
}

const (
	// DefaultNewsLimit is applied when the caller supplies no usable limit
	DefaultNewsLimit = 50
	// MaxNewsLimit is the news provider's hard per-request maximum
	MaxNewsLimit = 100
)

// Normalize returns a copy with the provider defaults applied: limit 50
// (capped at 100) and language "en".
func (f NewsFilter) Normalize() NewsFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultNewsLimit
	}
	if f.Limit > MaxNewsLimit {
		f.Limit = MaxNewsLimit
	}
	if f.Language == "" {
		f.Language = "en"
	}
	return f
}

// BypassesCache reports whether the filter narrows the result set in a way
// today's cached rows cannot serve, forcing a live fetch.
func (f NewsFilter) BypassesCache() bool {
	return f.Symbols != "" || f.SentimentGTE != nil || f.SentimentLTE != nil
}

// PaginatedNews is an in-memory page slice over a full result set
type PaginatedNews struct {
	Articles []NewsArticle `json:"articles"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
}
