package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/blix057/afdver-Bot/internal/domain"
)

// ErrDuplicateBot is returned when a bot name is already registered.
var ErrDuplicateBot = errors.New("bot name already registered")

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

// tokenRandomBytes is the entropy of an issued token; hex-encoded it yields
// a 32 character suffix.
const tokenRandomBytes = 16

// BotRepository manages registered bot identities.
type BotRepository struct {
	db *sql.DB
}

// NewBotRepository creates a new repository.
func NewBotRepository(db *sql.DB) *BotRepository {
	return &BotRepository{db: db}
}

// SanitizeBotName reduces a requested bot name to lowercase alphanumerics.
// The result doubles as the identity derived from the issued token (the
// prefix before the first underscore), so it must never contain one.
func SanitizeBotName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Register issues credentials for the bot and inserts it. bot.Name must
// already be sanitized and non-empty; Register fills IdentityID, Token,
// Active, and CreatedAt. A name collision returns ErrDuplicateBot.
func (r *BotRepository) Register(ctx context.Context, bot *domain.Bot) error {
	token, err := newBotToken(bot.Name)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	bot.IdentityID = uuid.NewString()
	bot.Token = token
	bot.Active = true
	bot.CreatedAt = time.Now()

	query := `
		INSERT INTO bots (identity_id, name, token, owner, description, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.ExecContext(ctx, query,
		bot.IdentityID,
		bot.Name,
		bot.Token,
		bot.Owner,
		bot.Description,
		bot.Active,
		bot.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateBot
		}
		return fmt.Errorf("insert bot: %w", err)
	}
	return nil
}

// RecordUsage folds a batch of accepted submissions into the bot's
// counters. Identities without a registered row (tokens that exist only in
// configuration) match nothing, which is fine: usage counters are advisory.
func (r *BotRepository) RecordUsage(ctx context.Context, identity string, submissions int64, at time.Time) error {
	query := `
		UPDATE bots
		SET total_submissions = total_submissions + $2,
		    last_submission = $3
		WHERE name = $1`

	if _, err := r.db.ExecContext(ctx, query, identity, submissions, at); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

func newBotToken(name string) (string, error) {
	buf := make([]byte, tokenRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return name + "_" + hex.EncodeToString(buf), nil
}
