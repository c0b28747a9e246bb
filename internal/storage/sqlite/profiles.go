package sqlite

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
	err := s.db.QueryRowContext(ctx, "SELECT body FROM profiles WHERE user_id = ?", userID).Scan(&body)
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
	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO profiles (user_id, body, updated_at) VALUES (?, ?, ?)",
		profile.UserID, string(body), time.Now().UTC().Format(time.RFC3339))
	return err
}
