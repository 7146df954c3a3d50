// Package repository provides PostgreSQL access for links and bots.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/blix057/afdver-Bot/internal/domain"
)

// Severity bucket names accepted by ListFilter.Severity.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Bucket boundaries: high is score >= 7, medium is 4 <= score < 7,
// low is score < 4.
const (
	severityHighMin   = 7.0
	severityMediumMin = 4.0
)

// linkSelectList is the column list for SELECT on the links table (single
// source for schema changes). Optional metadata columns are coalesced so
// rows written by older schema revisions scan into plain strings.
const linkSelectList = `id, url, tweet_id, COALESCE(author_id, '') AS author_id,
	COALESCE(source_account, '') AS source_account,
	COALESCE(collection_method, '') AS collection_method,
	COALESCE(tweet_text, '') AS tweet_text,
	categories, matched_keywords, severity_score,
	bot_id, first_seen_bot, seen_by_bots, created_at, updated_at`

// LinkRepository manages the deduplicated link collection in PostgreSQL.
// The table name comes from configuration and is identifier-quoted once
// at construction.
type LinkRepository struct {
	db    *sql.DB
	table string
}

// NewLinkRepository creates a new repository over the given table.
func NewLinkRepository(db *sql.DB, table string) *LinkRepository {
	return &LinkRepository{
		db:    db,
		table: pq.QuoteIdentifier(table),
	}
}

// Merge inserts the URL if it is new, otherwise folds the submission into
// the existing row. A single INSERT ... ON CONFLICT statement keeps the
// whole decision atomic: two concurrent merges of the same new URL resolve
// to one insert and one update, never two rows.
//
// created_at and first_seen_bot appear only in the INSERT column list, so
// they are write-once by construction. seen_by_bots only ever grows. All
// remaining metadata is last-write-wins. The WHERE guard suppresses the
// update when nothing would change, which keeps updated_at untouched on
// byte-identical resubmissions; the statement then returns no row and the
// outcome is MergeNoop.
func (r *LinkRepository) Merge(
	ctx context.Context,
	url string,
	sub *domain.Submission,
	identity string,
	now time.Time,
) (domain.MergeOutcome, error) {
	// #nosec G201 -- table name comes from validated config and is identifier-quoted
	query := fmt.Sprintf(`
		INSERT INTO %s AS l (
			url, tweet_id, author_id, source_account, collection_method,
			tweet_text, categories, matched_keywords, severity_score,
			bot_id, first_seen_bot, seen_by_bots, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10, ARRAY[$10], $11, $11)
		ON CONFLICT (url) DO UPDATE SET
			tweet_id = EXCLUDED.tweet_id,
			author_id = EXCLUDED.author_id,
			source_account = EXCLUDED.source_account,
			collection_method = EXCLUDED.collection_method,
			tweet_text = EXCLUDED.tweet_text,
			categories = EXCLUDED.categories,
			matched_keywords = EXCLUDED.matched_keywords,
			severity_score = EXCLUDED.severity_score,
			bot_id = EXCLUDED.bot_id,
			seen_by_bots = CASE
				WHEN l.seen_by_bots @> EXCLUDED.seen_by_bots THEN l.seen_by_bots
				ELSE l.seen_by_bots || EXCLUDED.seen_by_bots
			END,
			updated_at = EXCLUDED.updated_at
		WHERE (l.tweet_id, l.author_id, l.source_account, l.collection_method,
		       l.tweet_text, l.categories, l.matched_keywords, l.severity_score,
		       l.bot_id)
		      IS DISTINCT FROM
		      (EXCLUDED.tweet_id, EXCLUDED.author_id, EXCLUDED.source_account,
		       EXCLUDED.collection_method, EXCLUDED.tweet_text, EXCLUDED.categories,
		       EXCLUDED.matched_keywords, EXCLUDED.severity_score, EXCLUDED.bot_id)
		   OR NOT l.seen_by_bots @> EXCLUDED.seen_by_bots
		RETURNING (xmax = 0) AS is_insert
	`, r.table)

	var isInsert bool
	err := r.db.QueryRowContext(ctx, query,
		url,
		sub.TweetID,
		sub.AuthorID,
		sub.SourceAccount,
		sub.CollectionMethod,
		sub.TweetText,
		textArray(sub.Categories),
		textArray(sub.MatchedKeywords),
		sub.SeverityScore,
		identity,
		now,
	).Scan(&isInsert)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.MergeNoop, nil
	}
	if err != nil {
		return domain.MergeNoop, fmt.Errorf("merge link: %w", err)
	}
	if isInsert {
		return domain.MergeInserted, nil
	}
	return domain.MergeUpdated, nil
}

// ListFilter holds filter and pagination params for List and Count.
type ListFilter struct {
	Search   string     // ILIKE substring match on url
	Severity string     // "", SeverityHigh, SeverityMedium, SeverityLow
	DateFrom *time.Time // inclusive lower bound on created_at
	DateTo   *time.Time // inclusive upper bound on created_at
	Limit    int
	Offset   int
}

// Count returns the number of links matching the filter (ignores Limit/Offset).
func (r *LinkRepository) Count(ctx context.Context, filter ListFilter) (int, error) {
	whereClause, args := buildListWhere(filter)
	// #nosec G202 -- table name comes from validated config and is identifier-quoted
	query := `SELECT COUNT(*) FROM ` + r.table + ` WHERE 1=1` + whereClause

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count links: %w", err)
	}
	return count, nil
}

const (
	limitParamIdx  = 1
	offsetParamIdx = 2
)

// List returns links matching the filter, most recently touched first.
func (r *LinkRepository) List(ctx context.Context, filter ListFilter) ([]domain.Link, error) {
	whereClause, whereArgs := buildListWhere(filter)
	argCount := len(whereArgs)
	limitPlaceholder := strconv.Itoa(argCount + limitParamIdx)
	offsetPlaceholder := strconv.Itoa(argCount + offsetParamIdx)
	// #nosec G202 -- SQL string built from a validated filter; table name is identifier-quoted
	query := `
		SELECT ` + linkSelectList + `
		FROM ` + r.table + `
		WHERE 1=1` + whereClause + `
		ORDER BY updated_at DESC, created_at DESC
		LIMIT $` + limitPlaceholder + ` OFFSET $` + offsetPlaceholder

	args := append(append([]any{}, whereArgs...), filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	return scanLinkRows(rows)
}

// Stats aggregates the whole collection in one round trip. dayStart is the
// local-midnight boundary used for the links_today count; it is supplied by
// the caller so the day roll-over follows the process clock, not the
// database session timezone. active_bots counts the distinct union of
// bot_id values and seen_by_bots members, excluding null and empty.
func (r *LinkRepository) Stats(ctx context.Context, dayStart time.Time) (*domain.Stats, error) {
	// #nosec G201 -- table name comes from validated config and is identifier-quoted
	query := fmt.Sprintf(`
		WITH bots AS (
			SELECT bot_id AS bot FROM %[1]s
			UNION
			SELECT unnest(seen_by_bots) FROM %[1]s
		)
		SELECT
			(SELECT COUNT(*) FROM %[1]s) AS total_links,
			(SELECT COUNT(*) FROM bots WHERE bot IS NOT NULL AND bot <> '') AS active_bots,
			(SELECT COALESCE(AVG(severity_score), 0) FROM %[1]s) AS avg_severity,
			(SELECT COUNT(*) FROM %[1]s WHERE created_at >= $1) AS links_today
	`, r.table)

	var stats domain.Stats
	err := r.db.QueryRowContext(ctx, query, dayStart).Scan(
		&stats.TotalLinks,
		&stats.ActiveBots,
		&stats.AvgSeverity,
		&stats.LinksToday,
	)
	if err != nil {
		return nil, fmt.Errorf("link stats: %w", err)
	}
	return &stats, nil
}

func buildListWhere(filter ListFilter) (whereClause string, args []any) {
	var clauses []string
	args = make([]any, 0)
	pos := 1

	if filter.Search != "" {
		clauses = append(clauses, fmt.Sprintf("url ILIKE $%d", pos))
		args = append(args, "%"+filter.Search+"%")
		pos++
	}
	switch filter.Severity {
	case SeverityHigh:
		clauses = append(clauses, fmt.Sprintf("severity_score >= $%d", pos))
		args = append(args, severityHighMin)
		pos++
	case SeverityMedium:
		clauses = append(clauses, fmt.Sprintf("severity_score >= $%d AND severity_score < $%d", pos, pos+1))
		args = append(args, severityMediumMin, severityHighMin)
		pos += 2
	case SeverityLow:
		clauses = append(clauses, fmt.Sprintf("severity_score < $%d", pos))
		args = append(args, severityMediumMin)
		pos++
	}
	if filter.DateFrom != nil {
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", pos))
		args = append(args, *filter.DateFrom)
		pos++
	}
	if filter.DateTo != nil {
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", pos))
		args = append(args, *filter.DateTo)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

// initialLinkCapacity is a reasonable default for list results.
const initialLinkCapacity = 50

func scanLinkRows(rows *sql.Rows) ([]domain.Link, error) {
	links := make([]domain.Link, 0, initialLinkCapacity)
	for rows.Next() {
		var l domain.Link
		var categories, keywords, seenBy pq.StringArray

		err := rows.Scan(
			&l.ID, &l.URL, &l.TweetID, &l.AuthorID,
			&l.SourceAccount, &l.CollectionMethod, &l.TweetText,
			&categories, &keywords, &l.SeverityScore,
			&l.BotID, &l.FirstSeenBot, &seenBy, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		l.Categories = categories
		l.MatchedKeywords = keywords
		l.SeenByBots = seenBy
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return links, nil
}

// textArray converts a slice for a TEXT[] parameter, mapping nil to the
// empty array so NOT NULL array columns stay satisfied.
func textArray(xs []string) pq.StringArray {
	if xs == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(xs)
}
