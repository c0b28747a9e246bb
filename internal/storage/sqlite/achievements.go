package sqlite

import (
	"context"
	"time"
)

func (s *Store) GetUnlocked(ctx context.Context, userID string) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT achievement_id, unlocked_at FROM achievements WHERE user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unlocked := make(map[string]time.Time)
	for rows.Next() {
		var id, at string
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, err
		}
		unlocked[id] = t
	}
	return unlocked, rows.Err()
}

// SaveUnlocked records the first unlock time; later calls keep it.
func (s *Store) SaveUnlocked(ctx context.Context, userID, achievementID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO achievements (user_id, achievement_id, unlocked_at) VALUES (?, ?, ?)",
		userID, achievementID, at.UTC().Format(time.RFC3339))
	return err
}
