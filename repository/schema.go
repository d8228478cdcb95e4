package repository

import "context"

// schema is applied at startup. Natural-key uniqueness is enforced here, not
// in application code, because the upsert statements depend on the constraints.
const schema = `
CREATE TABLE IF NOT EXISTS currency_rates (
    id            BIGSERIAL PRIMARY KEY,
    from_currency TEXT NOT NULL,
    to_currency   TEXT NOT NULL,
    exchange_rate NUMERIC(20,8) NOT NULL,
    bid_price     NUMERIC(20,8),
    ask_price     NUMERIC(20,8),
    time_zone     TEXT NOT NULL DEFAULT '',
    rate_date     DATE NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (from_currency, to_currency, rate_date)
);

CREATE TABLE IF NOT EXISTS commodity_prices (
    id             BIGSERIAL PRIMARY KEY,
    symbol         TEXT NOT NULL,
    name           TEXT NOT NULL,
    price          NUMERIC(20,8) NOT NULL,
    open_price     NUMERIC(20,8),
    high_price     NUMERIC(20,8),
    low_price      NUMERIC(20,8),
    previous_close NUMERIC(20,8),
    change_amount  NUMERIC(20,8),
    change_percent NUMERIC(12,6),
    volume         BIGINT NOT NULL DEFAULT 0,
    unit           TEXT NOT NULL DEFAULT '',
    price_date     DATE NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (symbol, price_date)
);

CREATE TABLE IF NOT EXISTS news_articles (
    uuid           UUID PRIMARY KEY,
    title          TEXT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    snippet        TEXT NOT NULL DEFAULT '',
    url            TEXT NOT NULL,
    image_url      TEXT NOT NULL DEFAULT '',
    language       TEXT NOT NULL DEFAULT 'en',
    published_at   TIMESTAMPTZ NOT NULL,
    published_date DATE NOT NULL,
    source         TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_news_articles_published_date ON news_articles(published_date);
CREATE INDEX IF NOT EXISTS idx_news_articles_published_at ON news_articles(published_at DESC);

CREATE TABLE IF NOT EXISTS news_article_categories (
    article_uuid UUID NOT NULL REFERENCES news_articles(uuid) ON DELETE CASCADE,
    category     TEXT NOT NULL,
    PRIMARY KEY (article_uuid, category)
);

CREATE TABLE IF NOT EXISTS news_entities (
    id              BIGSERIAL PRIMARY KEY,
    article_uuid    UUID NOT NULL REFERENCES news_articles(uuid) ON DELETE CASCADE,
    symbol          TEXT NOT NULL DEFAULT '',
    name            TEXT NOT NULL DEFAULT '',
    exchange        TEXT NOT NULL DEFAULT '',
    exchange_long   TEXT NOT NULL DEFAULT '',
    country         TEXT NOT NULL DEFAULT '',
    type            TEXT NOT NULL DEFAULT '',
    industry        TEXT NOT NULL DEFAULT '',
    match_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
    sentiment_score DOUBLE PRECISION
);

CREATE INDEX IF NOT EXISTS idx_news_entities_article ON news_entities(article_uuid);

CREATE TABLE IF NOT EXISTS news_entity_highlights (
    id             BIGSERIAL PRIMARY KEY,
    entity_id      BIGINT NOT NULL REFERENCES news_entities(id) ON DELETE CASCADE,
    highlight      TEXT NOT NULL,
    sentiment      DOUBLE PRECISION,
    highlighted_in TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_news_entity_highlights_entity ON news_entity_highlights(entity_id);

CREATE TABLE IF NOT EXISTS news_similar_articles (
    id           BIGSERIAL PRIMARY KEY,
    article_uuid UUID NOT NULL REFERENCES news_articles(uuid) ON DELETE CASCADE,
    similar_uuid UUID NOT NULL,
    title        TEXT NOT NULL DEFAULT '',
    published_at TIMESTAMPTZ,
    source       TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_news_similar_articles_article ON news_similar_articles(article_uuid);

CREATE TABLE IF NOT EXISTS news_headlines (
    article_uuid  UUID NOT NULL REFERENCES news_articles(uuid) ON DELETE CASCADE,
    headline_date DATE NOT NULL,
    is_headline   BOOLEAN NOT NULL DEFAULT TRUE,
    priority      INTEGER NOT NULL DEFAULT 0,
    marked_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (article_uuid, headline_date)
);

CREATE INDEX IF NOT EXISTS idx_news_headlines_date ON news_headlines(headline_date, priority DESC);
`

// Migrate applies the schema. Idempotent; safe to run on every startup.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return persistErr("apply schema", err)
	}
	return nil
}
