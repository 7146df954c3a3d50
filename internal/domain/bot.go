package domain

import "time"

// Bot is a registered collector identity. The issued token is returned
// exactly once at registration and never serialized afterwards.
type Bot struct {
	ID               int64      `json:"-"`
	IdentityID       string     `json:"identity_id"`
	Name             string     `json:"name"`
	Token            string     `json:"-"`
	Owner            string     `json:"owner"`
	Description      string     `json:"description,omitempty"`
	Active           bool       `json:"active"`
	TotalSubmissions int64      `json:"total_submissions"`
	LastSubmission   *time.Time `json:"last_submission,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Stats summarizes the whole link collection in one read.
type Stats struct {
	TotalLinks  int64   `json:"total_links"`
	ActiveBots  int64   `json:"active_bots"`
	AvgSeverity float64 `json:"avg_severity"`
	LinksToday  int64   `json:"links_today"`
}
