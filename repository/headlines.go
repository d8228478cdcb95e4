package repository

import (
	"context"
	"fmt"
	"time"

	"market-pulse/models"
	"market-pulse/observability"
)

// MarkHeadlines upserts headline marks for the given article uuids and date.
// The caller guarantees the articles were saved first; a uuid without a
// matching article for that date is skipped, and the call fails only when
// none of the uuids reference an existing article for the date.
func (r *Repository) MarkHeadlines(ctx context.Context, uuids []string, date time.Time, priorities map[string]int) error {
	if len(uuids) == 0 {
		return nil
	}

	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("upsert", "news_headlines")

	rows, err := r.db.Query(ctx, `
		SELECT uuid::text FROM news_articles
		WHERE uuid = ANY($1::uuid[]) AND published_date = $2
	`, uuids, date)
	if err != nil {
		observability.GetMetrics().RecordDBError("upsert", "news_headlines")
		return persistErr("resolve headline articles", err)
	}
	existing := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return persistErr("scan headline article", err)
		}
		existing[id] = true
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return persistErr("iterate headline articles", err)
	}

	if len(existing) == 0 {
		return persistErr("mark headlines",
			fmt.Errorf("none of the %d articles exist for %s", len(uuids), date.Format("2006-01-02")))
	}

	for _, id := range uuids {
		if !existing[id] {
			continue
		}
		_, err := r.db.Exec(ctx, `
			INSERT INTO news_headlines (article_uuid, headline_date, is_headline, priority)
			VALUES ($1, $2, TRUE, $3)
			ON CONFLICT (article_uuid, headline_date)
			DO UPDATE SET is_headline = TRUE, priority = EXCLUDED.priority, marked_at = NOW()
		`, id, date, priorities[id])
		if err != nil {
			observability.GetMetrics().RecordDBError("upsert", "news_headlines")
			return persistErr("mark headline", err)
		}
	}
	return nil
}

// GetHeadlinesForDate returns the articles marked as headlines for the given
// date, with relations, ordered by priority descending then publish timestamp
// descending. A limit <= 0 means no limit.
func (r *Repository) GetHeadlinesForDate(ctx context.Context, date time.Time, limit int) ([]models.NewsArticle, error) {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("select", "news_headlines")

	query := `
		SELECT a.uuid, a.title, a.description, a.snippet, a.url, a.image_url, a.language, a.published_at, a.source
		FROM news_articles a
		JOIN news_headlines h ON h.article_uuid = a.uuid
		WHERE h.headline_date = $1 AND h.is_headline
		ORDER BY h.priority DESC, a.published_at DESC
	`
	args := []any{date}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		observability.GetMetrics().RecordDBError("select", "news_headlines")
		return nil, persistErr("query headlines", err)
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
