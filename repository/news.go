package repository

import (
	"context"
	"fmt"
	"time"

	"market-pulse/models"
	"market-pulse/observability"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveNewsArticle persists an article and all of its relations as one atomic
// unit of work: the article row is upserted, then categories, entities (with
// their highlights) and similar references are replaced wholesale. If any
// step fails the transaction is rolled back, so the store never shows an
// article with partially updated relations.
func (r *Repository) SaveNewsArticle(ctx context.Context, article *models.NewsArticle) error {
	if _, err := uuid.Parse(article.UUID); err != nil {
		return persistErr("save news article", fmt.Errorf("invalid article uuid %q: %w", article.UUID, err))
	}

	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("save", "news_articles")

	tx, txRepo, err := r.BeginTx(ctx)
	if err != nil {
		return persistErr("save news article", err)
	}
	// No-op once the transaction has committed
	defer tx.Rollback(ctx)

	if err := txRepo.saveArticleWithRelations(ctx, article); err != nil {
		observability.GetMetrics().RecordDBError("save", "news_articles")
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		observability.GetMetrics().RecordDBError("save", "news_articles")
		return persistErr("commit news article", err)
	}
	return nil
}

func (r *Repository) saveArticleWithRelations(ctx context.Context, article *models.NewsArticle) error {
	publishedAt := article.PublishedAt.UTC().Truncate(time.Second)
	publishedDate := dateOf(publishedAt)

	_, err := r.db.Exec(ctx, `
		INSERT INTO news_articles (uuid, title, description, snippet, url, image_url, language, published_at, published_date, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (uuid)
		DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			snippet = EXCLUDED.snippet,
			url = EXCLUDED.url,
			image_url = EXCLUDED.image_url,
			language = EXCLUDED.language,
			published_at = EXCLUDED.published_at,
			published_date = EXCLUDED.published_date,
			source = EXCLUDED.source,
			updated_at = NOW()
	`, article.UUID, article.Title, article.Description, article.Snippet, article.URL,
		article.ImageURL, article.Language, publishedAt, publishedDate, article.Source)
	if err != nil {
		return persistErr("upsert news article", err)
	}
	article.PublishedAt = publishedAt

	// Relations are replaced wholesale so stale rows from a prior version of
	// the same article never survive a re-save.
	if err := r.replaceCategories(ctx, article.UUID, article.Categories); err != nil {
		return err
	}
	if err := r.replaceEntities(ctx, article.UUID, article.Entities); err != nil {
		return err
	}
	if err := r.replaceSimilar(ctx, article.UUID, article.Similar); err != nil {
		return err
	}
	return nil
}

func (r *Repository) replaceCategories(ctx context.Context, articleUUID string, categories []string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM news_article_categories WHERE article_uuid = $1`, articleUUID); err != nil {
		return persistErr("delete article categories", err)
	}
	for _, category := range categories {
		_, err := r.db.Exec(ctx, `
			INSERT INTO news_article_categories (article_uuid, category)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, articleUUID, category)
		if err != nil {
			return persistErr("insert article category", err)
		}
	}
	return nil
}

func (r *Repository) replaceEntities(ctx context.Context, articleUUID string, entities []models.NewsEntity) error {
	// Highlights belong to entities, so they go first to avoid orphans
	_, err := r.db.Exec(ctx, `
		DELETE FROM news_entity_highlights
		WHERE entity_id IN (SELECT id FROM news_entities WHERE article_uuid = $1)
	`, articleUUID)
	if err != nil {
		return persistErr("delete entity highlights", err)
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM news_entities WHERE article_uuid = $1`, articleUUID); err != nil {
		return persistErr("delete article entities", err)
	}

	for i := range entities {
		entity := &entities[i]
		err := r.db.QueryRow(ctx, `
			INSERT INTO news_entities (article_uuid, symbol, name, exchange, exchange_long, country, type, industry, match_score, sentiment_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`, articleUUID, entity.Symbol, entity.Name, entity.Exchange, entity.ExchangeLong,
			entity.Country, entity.Type, entity.Industry, entity.MatchScore, entity.SentimentScore).
			Scan(&entity.ID)
		if err != nil {
			return persistErr("insert article entity", err)
		}

		for _, h := range entity.Highlights {
			_, err := r.db.Exec(ctx, `
				INSERT INTO news_entity_highlights (entity_id, highlight, sentiment, highlighted_in)
				VALUES ($1, $2, $3, $4)
			`, entity.ID, h.Highlight, h.Sentiment, h.HighlightedIn)
			if err != nil {
				return persistErr("insert entity highlight", err)
			}
		}
	}
	return nil
}

func (r *Repository) replaceSimilar(ctx context.Context, articleUUID string, similar []models.SimilarArticle) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM news_similar_articles WHERE article_uuid = $1`, articleUUID); err != nil {
		return persistErr("delete similar articles", err)
	}
	for _, sim := range similar {
		var publishedAt *time.Time
		if !sim.PublishedAt.IsZero() {
			ts := sim.PublishedAt.UTC().Truncate(time.Second)
			publishedAt = &ts
		}
		_, err := r.db.Exec(ctx, `
			INSERT INTO news_similar_articles (article_uuid, similar_uuid, title, published_at, source)
			VALUES ($1, $2, $3, $4, $5)
		`, articleUUID, sim.UUID, sim.Title, publishedAt, sim.Source)
		if err != nil {
			return persistErr("insert similar article", err)
		}
	}
	return nil
}

// NewsExistsForDate is the cheap cache-hit check: it reports whether any
// article is stored for the given calendar date without loading rows.
func (r *Repository) NewsExistsForDate(ctx context.Context, date time.Time) (bool, error) {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("exists", "news_articles")

	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM news_articles WHERE published_date = $1)
	`, date).Scan(&exists)
	if err != nil {
		observability.GetMetrics().RecordDBError("exists", "news_articles")
		return false, persistErr("check news existence", err)
	}
	return exists, nil
}

// GetNewsForDate reconstructs every article stored for the given calendar
// date, including categories, entities with highlights and similar
// references, ordered by publish timestamp descending.
func (r *Repository) GetNewsForDate(ctx context.Context, date time.Time) ([]models.NewsArticle, error) {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("select", "news_articles")

	rows, err := r.db.Query(ctx, `
		SELECT uuid, title, description, snippet, url, image_url, language, published_at, source
		FROM news_articles
		WHERE published_date = $1
		ORDER BY published_at DESC
	`, date)
	if err != nil {
		observability.GetMetrics().RecordDBError("select", "news_articles")
		return nil, persistErr("query news articles", err)
	}

	articles, err := scanArticles(rows)
	if err != nil {
		return nil, err
	}

	for i := range articles {
		if err := r.loadArticleRelations(ctx, &articles[i]); err != nil {
			return nil, err
		}
	}
	return articles, nil
}

func scanArticles(rows pgx.Rows) ([]models.NewsArticle, error) {
	defer rows.Close()

	articles := []models.NewsArticle{}
	for rows.Next() {
		var a models.NewsArticle
		err := rows.Scan(&a.UUID, &a.Title, &a.Description, &a.Snippet, &a.URL,
			&a.ImageURL, &a.Language, &a.PublishedAt, &a.Source)
		if err != nil {
			return nil, persistErr("scan news article", err)
		}
		a.PublishedAt = a.PublishedAt.UTC()
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate news articles", err)
	}
	return articles, nil
}

func (r *Repository) loadArticleRelations(ctx context.Context, article *models.NewsArticle) error {
	catRows, err := r.db.Query(ctx, `
		SELECT category FROM news_article_categories WHERE article_uuid = $1 ORDER BY category
	`, article.UUID)
	if err != nil {
		return persistErr("query article categories", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var category string
		if err := catRows.Scan(&category); err != nil {
			return persistErr("scan article category", err)
		}
		article.Categories = append(article.Categories, category)
	}
	if err := catRows.Err(); err != nil {
		return persistErr("iterate article categories", err)
	}

	entityRows, err := r.db.Query(ctx, `
		SELECT id, symbol, name, exchange, exchange_long, country, type, industry, match_score, sentiment_score
		FROM news_entities
		WHERE article_uuid = $1
		ORDER BY id
	`, article.UUID)
	if err != nil {
		return persistErr("query article entities", err)
	}
	defer entityRows.Close()
	for entityRows.Next() {
		var e models.NewsEntity
		err := entityRows.Scan(&e.ID, &e.Symbol, &e.Name, &e.Exchange, &e.ExchangeLong,
			&e.Country, &e.Type, &e.Industry, &e.MatchScore, &e.SentimentScore)
		if err != nil {
			return persistErr("scan article entity", err)
		}
		article.Entities = append(article.Entities, e)
	}
	if err := entityRows.Err(); err != nil {
		return persistErr("iterate article entities", err)
	}

	for i := range article.Entities {
		entity := &article.Entities[i]
		hlRows, err := r.db.Query(ctx, `
			SELECT highlight, sentiment, highlighted_in
			FROM news_entity_highlights
			WHERE entity_id = $1
			ORDER BY id
		`, entity.ID)
		if err != nil {
			return persistErr("query entity highlights", err)
		}
		for hlRows.Next() {
			var h models.EntityHighlight
			if err := hlRows.Scan(&h.Highlight, &h.Sentiment, &h.HighlightedIn); err != nil {
				hlRows.Close()
				return persistErr("scan entity highlight", err)
			}
			entity.Highlights = append(entity.Highlights, h)
		}
		err = hlRows.Err()
		hlRows.Close()
		if err != nil {
			return persistErr("iterate entity highlights", err)
		}
	}

	simRows, err := r.db.Query(ctx, `
		SELECT similar_uuid, title, published_at, source
		FROM news_similar_articles
		WHERE article_uuid = $1
		ORDER BY id
	`, article.UUID)
	if err != nil {
		return persistErr("query similar articles", err)
	}
	defer simRows.Close()
	for simRows.Next() {
		var sim models.SimilarArticle
		var publishedAt *time.Time
		if err := simRows.Scan(&sim.UUID, &sim.Title, &publishedAt, &sim.Source); err != nil {
			return persistErr("scan similar article", err)
		}
		if publishedAt != nil {
			sim.PublishedAt = publishedAt.UTC()
		}
		article.Similar = append(article.Similar, sim)
	}
	if err := simRows.Err(); err != nil {
		return persistErr("iterate similar articles", err)
	}

	return nil
}

// dateOf truncates a timestamp to its UTC calendar date
func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
