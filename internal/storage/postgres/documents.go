package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/storage"
)

func (s *Store) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	var body string
	err := s.db.QueryRowContext(ctx, "SELECT body FROM profiles WHERE user_id = $1", userID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, fmt.Errorf("profile %s: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return models.Profile{}, err
	}

	var p models.Profile
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return models.Profile{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	return p, nil
}

func (s *Store) SaveProfile(ctx context.Context, profile models.Profile) error {
	body, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, body, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		profile.UserID, string(body))
	return err
}

func (s *Store) GetUnlocked(ctx context.Context, userID string) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT achievement_id, unlocked_at FROM achievements WHERE user_id = $1", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unlocked := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		unlocked[id] = at
	}
	return unlocked, rows.Err()
}

func (s *Store) SaveUnlocked(ctx context.Context, userID, achievementID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO achievements (user_id, achievement_id, unlocked_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING`,
		userID, achievementID, at.UTC())
	return err
}

func (s *Store) GetSettings(ctx context.Context) (models.Settings, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	data := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		data[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}
	if len(data) == 0 {
		return models.Settings{}, fmt.Errorf("settings not found")
	}
	return models.MapToSettings(data)
}

func (s *Store) SaveSettings(ctx context.Context, settings models.Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key, value := range models.SettingsToMap(settings) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}
