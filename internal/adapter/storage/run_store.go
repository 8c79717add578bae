package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trendscope/internal/domain/trend"
)

// RunStore archives run results in Postgres. Runs land in the runs table
// and every validated topic is upserted into topics keyed by cluster key,
// keeping the latest observation per topic for the topics API.
type RunStore struct {
	db *pgxpool.Pool
}

// NewRunStore creates a run store around an existing pool.
func NewRunStore(db *pgxpool.Pool) *RunStore {
	return &RunStore{db: db}
}

// SaveRun archives a completed run and upserts its topics.
func (s *RunStore) SaveRun(ctx context.Context, result *trend.RunResult) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	keywordsJSON, err := json.Marshal(result.Keywords)
	if err != nil {
		return fmt.Errorf("error marshaling keywords: %w", err)
	}
	healthJSON, err := json.Marshal(result.Health)
	if err != nil {
		return fmt.Errorf("error marshaling health: %w", err)
	}
	gapsJSON, err := json.Marshal(result.Gaps)
	if err != nil {
		return fmt.Errorf("error marshaling gaps: %w", err)
	}
	influencersJSON, err := json.Marshal(result.Influencers)
	if err != nil {
		return fmt.Errorf("error marshaling influencers: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO runs (
			id, status, keywords, time_range, health,
			gaps, influencers, started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		result.RunID,
		result.Status,
		keywordsJSON,
		result.TimeRange,
		healthJSON,
		gapsJSON,
		influencersJSON,
		result.StartedAt,
		result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting run: %w", err)
	}

	for i := range result.Topics {
		if err := upsertTopic(ctx, tx, result.RunID, &result.Topics[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing run: %w", err)
	}
	return nil
}

func upsertTopic(ctx context.Context, tx pgx.Tx, runID string, t *trend.Topic) error {
	platformsJSON, err := json.Marshal(t.Platforms)
	if err != nil {
		return fmt.Errorf("error marshaling platforms: %w", err)
	}
	itemsJSON, err := json.Marshal(t.Items)
	if err != nil {
		return fmt.Errorf("error marshaling items: %w", err)
	}
	breakdownJSON, err := json.Marshal(t.PlatformBreakdown)
	if err != nil {
		return fmt.Errorf("error marshaling platform breakdown: %w", err)
	}
	relatedJSON, err := json.Marshal(t.RelatedKeywords)
	if err != nil {
		return fmt.Errorf("error marshaling related keywords: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO topics (
			cluster_key, run_id, platforms, items,
			total_engagement, growth_rate, sentiment_score, confidence_score,
			category, platform_breakdown, related_keywords, last_seen
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (cluster_key) DO UPDATE
		SET
			run_id = $2,
			platforms = $3,
			items = $4,
			total_engagement = $5,
			growth_rate = $6,
			sentiment_score = $7,
			confidence_score = $8,
			category = $9,
			platform_breakdown = $10,
			related_keywords = $11,
			last_seen = NOW()
	`,
		t.ClusterKey,
		runID,
		platformsJSON,
		itemsJSON,
		t.TotalEngagement,
		t.GrowthRate,
		t.SentimentScore,
		t.ConfidenceScore,
		t.Category,
		breakdownJSON,
		relatedJSON,
	)
	if err != nil {
		return fmt.Errorf("error upserting topic %q: %w", t.ClusterKey, err)
	}
	return nil
}

// FindTopics returns archived topics matching the filter, most confident
// first.
func (s *RunStore) FindTopics(ctx context.Context, filter trend.TopicFilter) ([]trend.Topic, error) {
	query := `
		SELECT
			cluster_key, platforms, items,
			total_engagement, growth_rate, sentiment_score, confidence_score,
			category, platform_breakdown, related_keywords
		FROM topics
		WHERE confidence_score >= $1
	`
	args := []interface{}{filter.MinConfidence}
	argIndex := 2

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, filter.Category)
		argIndex++
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY confidence_score DESC, total_engagement DESC, cluster_key ASC LIMIT $%d", argIndex)
	args = append(args, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying topics: %w", err)
	}
	defer rows.Close()

	var topics []trend.Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topics: %w", err)
	}
	return topics, nil
}

// GetTopic retrieves one archived topic by cluster key. Returns
// (nil, nil) when the topic does not exist.
func (s *RunStore) GetTopic(ctx context.Context, clusterKey string) (*trend.Topic, error) {
	row := s.db.QueryRow(ctx, `
		SELECT
			cluster_key, platforms, items,
			total_engagement, growth_rate, sentiment_score, confidence_score,
			category, platform_breakdown, related_keywords
		FROM topics
		WHERE cluster_key = $1
	`, clusterKey)

	t, err := scanTopic(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func scanTopic(row pgx.Row) (*trend.Topic, error) {
	var t trend.Topic
	var platformsJSON, itemsJSON, breakdownJSON, relatedJSON []byte

	err := row.Scan(
		&t.ClusterKey,
		&platformsJSON,
		&itemsJSON,
		&t.TotalEngagement,
		&t.GrowthRate,
		&t.SentimentScore,
		&t.ConfidenceScore,
		&t.Category,
		&breakdownJSON,
		&relatedJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(platformsJSON, &t.Platforms); err != nil {
		return nil, fmt.Errorf("error unmarshaling platforms: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &t.Items); err != nil {
		return nil, fmt.Errorf("error unmarshaling items: %w", err)
	}
	if err := json.Unmarshal(breakdownJSON, &t.PlatformBreakdown); err != nil {
		return nil, fmt.Errorf("error unmarshaling platform breakdown: %w", err)
	}
	if err := json.Unmarshal(relatedJSON, &t.RelatedKeywords); err != nil {
		return nil, fmt.Errorf("error unmarshaling related keywords: %w", err)
	}
	return &t, nil
}
