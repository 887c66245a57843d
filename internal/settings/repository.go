package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_card_settings (
	user_id          TEXT PRIMARY KEY,
	background_url   TEXT,
	background_color TEXT NOT NULL,
	text_color       TEXT NOT NULL,
	accent_color     TEXT NOT NULL,
	username         TEXT,
	avatar_url       TEXT,
	updated_at       INTEGER NOT NULL
)`

// Repository persists Settings keyed by user id.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "settings").Logger(),
	}
}

// Migrate creates the settings table if it does not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}
	return nil
}

// Get returns the user's settings, or Defaults when none are stored.
func (r *Repository) Get(ctx context.Context, userID string) (Settings, error) {
	return r.get(ctx, r.db, userID)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *Repository) get(ctx context.Context, q queryer, userID string) (Settings, error) {
	var (
		s                               Settings
		background, username, avatarURL sql.NullString
	)
	err := q.QueryRowContext(ctx, `
		SELECT background_url, background_color, text_color, accent_color, username, avatar_url
		FROM user_card_settings WHERE user_id = ?`, userID).
		Scan(&background, &s.BackgroundColor, &s.TextColor, &s.AccentColor, &username, &avatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to get settings for %s: %w", userID, err)
	}
	s.BackgroundURL = background.String
	s.Username = username.String
	s.AvatarURL = avatarURL.String
	return s, nil
}

// Update merges u into the user's current settings and stores the result.
func (r *Repository) Update(ctx context.Context, userID string, u Update) (Settings, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to begin settings update: %w", err)
	}
	defer tx.Rollback()

	current, err := r.get(ctx, tx, userID)
	if err != nil {
		return Settings{}, err
	}
	merged := current.Apply(u)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_card_settings
			(user_id, background_url, background_color, text_color, accent_color, username, avatar_url, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			background_url = excluded.background_url,
			background_color = excluded.background_color,
			text_color = excluded.text_color,
			accent_color = excluded.accent_color,
			username = excluded.username,
			avatar_url = excluded.avatar_url,
			updated_at = excluded.updated_at
	`, userID, nullable(merged.BackgroundURL), merged.BackgroundColor, merged.TextColor, merged.AccentColor,
		nullable(merged.Username), nullable(merged.AvatarURL), time.Now().Unix())
	if err != nil {
		return Settings{}, fmt.Errorf("failed to save settings for %s: %w", userID, err)
	}
	if err := tx.Commit(); err != nil {
		return Settings{}, fmt.Errorf("failed to commit settings for %s: %w", userID, err)
	}

	r.log.Debug().Str("user_id", userID).Msg("Settings updated")
	return merged, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
