package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/moodlit/internal/storage"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEntry(ctx context.Context, db execer, id, userID string, date time.Time, body []byte) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO entries (id, user_id, date_unix, body) VALUES ($1, $2, $3, $4)",
		id, userID, date.UnixNano(), string(body))
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func softDeleteEntry(ctx context.Context, db execer, userID, id string) error {
	res, err := db.ExecContext(ctx,
		"UPDATE entries SET deleted_at = now() WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL",
		id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("entry %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) WriteEntry(ctx context.Context, userID string, date time.Time, body []byte) (string, error) {
	id := uuid.New().String()
	if err := insertEntry(ctx, s.db, id, userID, date, body); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) DeleteEntry(ctx context.Context, userID, id string) error {
	return softDeleteEntry(ctx, s.db, userID, id)
}

// ReplaceEntry swaps oldID for a new document in one transaction.
func (s *Store) ReplaceEntry(ctx context.Context, userID, oldID string, date time.Time, body []byte) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if err := softDeleteEntry(ctx, tx, userID, oldID); err != nil {
		return "", err
	}
	id := uuid.New().String()
	if err := insertEntry(ctx, tx, id, userID, date, body); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListEntries(ctx context.Context, userID string) ([]storage.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, date_unix, body FROM entries WHERE user_id = $1 AND deleted_at IS NULL ORDER BY date_unix DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []storage.Document
	for rows.Next() {
		var doc storage.Document
		var unix int64
		var body string
		if err := rows.Scan(&doc.ID, &unix, &body); err != nil {
			return nil, err
		}
		doc.Date = time.Unix(0, unix).UTC()
		doc.Body = []byte(body)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
