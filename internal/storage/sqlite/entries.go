package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/moodlit/internal/storage"
)

func (s *Store) WriteEntry(ctx context.Context, userID string, date time.Time, body []byte) (string, error) {
	id := uuid.New().String()
	if err := insertEntry(ctx, s.db, id, userID, date, body); err != nil {
		return "", err
	}
	return id, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEntry(ctx context.Context, db execer, id, userID string, date time.Time, body []byte) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO entries (id, user_id, date_unix, body, created_at) VALUES (?, ?, ?, ?, ?)",
		id, userID, date.UnixNano(), string(body), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func softDeleteEntry(ctx context.Context, db execer, userID, id string) error {
	res, err := db.ExecContext(ctx,
		"UPDATE entries SET deleted_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL",
		time.Now().UTC().Format(time.RFC3339), id, userID)
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

// DeleteEntry soft-deletes the document; it stays on disk for backups.
func (s *Store) DeleteEntry(ctx context.Context, userID, id string) error {
	return softDeleteEntry(ctx, s.db, userID, id)
}

// ReplaceEntry deletes oldID and inserts the new body in one transaction.
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
		"SELECT id, date_unix, body FROM entries WHERE user_id = ? AND deleted_at IS NULL ORDER BY date_unix DESC",
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

// PurgeDeletedEntries removes soft-deleted rows older than cutoff.
func (s *Store) PurgeDeletedEntries(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM entries WHERE deleted_at IS NOT NULL AND deleted_at < ?",
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
