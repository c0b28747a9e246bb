package storage

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/moodlit/internal/models"
)

// ErrNotFound is returned when a profile or document does not exist.
var ErrNotFound = errors.New("not found")

// Document is a stored entry: the id the backend assigned, the entry date used
// for ordering and the encoded body. Bodies are decoded by the caller so one
// malformed record never fails a whole listing.
type Document struct {
	ID   string
	Date time.Time
	Body []byte
}

// EntryRepository is the per-user entry collection.
type EntryRepository interface {
	// WriteEntry stores body and returns the new document id.
	WriteEntry(ctx context.Context, userID string, date time.Time, body []byte) (string, error)
	DeleteEntry(ctx context.Context, userID, id string) error
	// ListEntries returns live documents ordered by date descending.
	ListEntries(ctx context.Context, userID string) ([]Document, error)
}

// DayReplacer is implemented by backends that can swap one document for a new
// one in a single transaction.
type DayReplacer interface {
	ReplaceEntry(ctx context.Context, userID, oldID string, date time.Time, body []byte) (string, error)
}

// ProfileRepository holds the account profile document.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	SaveProfile(ctx context.Context, profile models.Profile) error
}

// AchievementRepository persists unlocked achievement ids.
type AchievementRepository interface {
	GetUnlocked(ctx context.Context, userID string) (map[string]time.Time, error)
	SaveUnlocked(ctx context.Context, userID, achievementID string, at time.Time) error
}

type SettingsRepository interface {
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error
}

type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	EntryRepository
	ProfileRepository
	AchievementRepository
	SettingsRepository

	// Utils
	GetConfigPath() string
}
