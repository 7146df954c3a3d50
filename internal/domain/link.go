// Package domain defines the core types shared across link-tracker.
package domain

import "time"

// Link is one deduplicated URL together with the metadata of its most
// recent submission. The internal storage id is never serialized.
type Link struct {
	ID               int64     `json:"-"`
	URL              string    `json:"url"`
	TweetID          string    `json:"tweet_id"`
	AuthorID         string    `json:"author_id,omitempty"`
	SourceAccount    string    `json:"source_account,omitempty"`
	CollectionMethod string    `json:"collection_method,omitempty"`
	TweetText        string    `json:"tweet_text,omitempty"`
	Categories       []string  `json:"categories"`
	MatchedKeywords  []string  `json:"matched_keywords"`
	SeverityScore    float64   `json:"severity_score"`
	BotID            string    `json:"bot_id"`
	FirstSeenBot     string    `json:"first_seen_bot"`
	SeenByBots       []string  `json:"seen_by_bots"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Submission carries the producer-supplied payload of one bot submission.
// TweetText and TweetID are required; everything else is opaque metadata
// stored last-write-wins on the matching link.
type Submission struct {
	TweetText        string   `json:"tweet_text"`
	TweetID          string   `json:"tweet_id"`
	AuthorID         string   `json:"author_id"`
	SourceAccount    string   `json:"source_account"`
	CollectionMethod string   `json:"collection_method"`
	Categories       []string `json:"categories"`
	MatchedKeywords  []string `json:"matched_keywords"`
	SeverityScore    float64  `json:"severity_score"`
}

// IngestResult summarizes one accepted submission: how many of its URLs
// were new, how many updated an existing link, and the deduplicated URL
// list in extraction order.
type IngestResult struct {
	Inserted      int      `json:"inserted"`
	Updated       int      `json:"updated"`
	ProcessedURLs []string `json:"processed_urls"`
	Identity      string   `json:"identity"`
}

// MergeOutcome is the result of merging one URL into the collection.
type MergeOutcome int

// Merge outcomes. A no-op means the link already existed and the
// submission would not have changed any stored value.
const (
	MergeNoop MergeOutcome = iota
	MergeInserted
	MergeUpdated
)

// String returns the outcome name used in logs and metrics.
func (o MergeOutcome) String() string {
	switch o {
	case MergeInserted:
		return "inserted"
	case MergeUpdated:
		return "updated"
	default:
		return "noop"
	}
}
