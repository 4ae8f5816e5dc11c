package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"wallabag_importer/internal/domain"
)

// SettingsStore keeps the operator settings as a single named row.
type SettingsStore struct {
	db   *sqlx.DB
	name string
}

func NewSettingsStore(db *sqlx.DB, name string) *SettingsStore {
	return &SettingsStore{db: db, name: name}
}

func (s *SettingsStore) Get(ctx context.Context) (*domain.Settings, error) {
	var settings domain.Settings
	query := `
		SELECT host, client_id, client_secret, user_name, pass, tags,
			post_type, post_status, post_format, last_run
		FROM importer_settings
		WHERE name = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &settings, query, s.name)
	if errors.Is(err, sql.ErrNoRows) {
		// Nothing saved yet
		defaults := domain.DefaultSettings()
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Save upserts everything but last_run, which only UpdateLastRun writes.
func (s *SettingsStore) Save(ctx context.Context, settings *domain.Settings) error {
	query := `
		INSERT INTO importer_settings (
			name, host, client_id, client_secret, user_name, pass, tags,
			post_type, post_status, post_format, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (name) DO UPDATE SET
			host = EXCLUDED.host,
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			user_name = EXCLUDED.user_name,
			pass = EXCLUDED.pass,
			tags = EXCLUDED.tags,
			post_type = EXCLUDED.post_type,
			post_status = EXCLUDED.post_status,
			post_format = EXCLUDED.post_format,
			updated_at = NOW()`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		s.name,
		settings.Host,
		settings.ClientID,
		settings.ClientSecret,
		settings.User,
		settings.Pass,
		settings.Tags,
		settings.PostType,
		settings.PostStatus,
		settings.PostFormat,
	)
	return err
}

// UpdateLastRun moves the cursor. A missing row is created with defaults so
// that the cursor survives even if the operator never saved the form.
func (s *SettingsStore) UpdateLastRun(ctx context.Context, lastRun time.Time) error {
	defaults := domain.DefaultSettings()
	query := `
		INSERT INTO importer_settings (name, host, post_type, post_status, post_format, last_run, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (name) DO UPDATE SET
			last_run = EXCLUDED.last_run,
			updated_at = NOW()`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		s.name,
		defaults.Host,
		defaults.PostType,
		defaults.PostStatus,
		defaults.PostFormat,
		lastRun,
	)
	return err
}
