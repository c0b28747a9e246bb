// Package docstore keeps per-user document collections as files on disk,
// one JSON document per file, through diskv.
package docstore

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/storage"
)

var _ storage.Provider = (*Store)(nil)

const (
	sep             = "~"
	collEntries     = "entries"
	collProfiles    = "profiles"
	collAchievement = "achievements"
	settingsKey     = "settings" + sep + "app"
)

// Store is a diskv-backed document store. Keys look like
// collection~user~document and map to collection/user/document on disk.
type Store struct {
	basePath string
	d        *diskv.Diskv
}

// IsConfig reports whether config selects this backend.
func IsConfig(config string) bool {
	return strings.HasPrefix(config, constants.DocstoreScheme)
}

// New returns a store rooted at basePath.
func New(basePath string) *Store {
	return &Store{basePath: basePath}
}

func keyToPathTransform(key string) *diskv.PathKey {
	parts := strings.Split(key, sep)
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(append(append([]string{}, pathKey.Path...), pathKey.FileName), sep)
}

// userDir keeps arbitrary user ids safe to use as a directory name.
func userDir(userID string) string {
	return hex.EncodeToString([]byte(userID))
}

func key(collection, userID, id string) string {
	return collection + sep + userDir(userID) + sep + id
}

func prefix(collection, userID string) string {
	return collection + sep + userDir(userID) + sep
}

func (s *Store) open() {
	s.d = diskv.New(diskv.Options{
		BasePath:          s.basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})
}

func (s *Store) Init(ctx context.Context) error {
	if err := os.MkdirAll(s.basePath, 0700); err != nil {
		return fmt.Errorf("failed to create document store directory: %w", err)
	}
	s.open()

	settings, err := s.GetSettings(ctx)
	if err != nil {
		settings = models.DefaultSettings()
	}
	models.ApplyDefaultSettings(&settings)
	if err := s.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save default settings: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) error {
	if s.d != nil {
		return nil
	}
	if _, err := os.Stat(s.basePath); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'moodlit init' first")
	}
	s.open()
	return nil
}

func (s *Store) Close() error {
	s.d = nil
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.basePath
}

// envelope is the on-disk shape of an entry document.
type envelope struct {
	Date time.Time       `json:"date"`
	Body json.RawMessage `json:"body"`
}

func (s *Store) WriteEntry(ctx context.Context, userID string, date time.Time, body []byte) (string, error) {
	raw, err := json.Marshal(envelope{Date: date.UTC(), Body: body})
	if err != nil {
		return "", fmt.Errorf("failed to encode entry: %w", err)
	}
	id := uuid.New().String()
	if err := s.d.Write(key(collEntries, userID, id), raw); err != nil {
		return "", fmt.Errorf("failed to write entry: %w", err)
	}
	return id, nil
}

func (s *Store) DeleteEntry(ctx context.Context, userID, id string) error {
	k := key(collEntries, userID, id)
	if !s.d.Has(k) {
		return fmt.Errorf("entry %s: %w", id, storage.ErrNotFound)
	}
	if err := s.d.Erase(k); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

// keys collects every key under p. The walk is drained before returning so
// callers can bail out early without stranding the walker goroutine.
func (s *Store) keys(ctx context.Context, p string) ([]string, error) {
	var ks []string
	for k := range s.d.KeysPrefix(p, ctx.Done()) {
		ks = append(ks, k)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ks, nil
}

// ListEntries returns the user's documents newest first. A file whose
// envelope cannot be read is still returned, with its raw bytes as the body,
// so the caller's decoder can reject it.
func (s *Store) ListEntries(ctx context.Context, userID string) ([]storage.Document, error) {
	p := prefix(collEntries, userID)
	ks, err := s.keys(ctx, p)
	if err != nil {
		return nil, err
	}
	var docs []storage.Document
	for _, k := range ks {
		raw, err := s.d.Read(k)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", k, err)
		}
		doc := storage.Document{ID: strings.TrimPrefix(k, p)}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			logger.Warn("Unreadable entry document", "key", k, "error", err)
			doc.Body = raw
		} else {
			doc.Date = env.Date
			doc.Body = env.Body
		}
		docs = append(docs, doc)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Date.Equal(docs[j].Date) {
			return docs[i].ID > docs[j].ID
		}
		return docs[i].Date.After(docs[j].Date)
	})
	return docs, nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	raw, err := s.d.Read(key(collProfiles, userID, "profile"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Profile{}, fmt.Errorf("profile %s: %w", userID, storage.ErrNotFound)
		}
		return models.Profile{}, err
	}
	var p models.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.Profile{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	return p, nil
}

func (s *Store) SaveProfile(ctx context.Context, profile models.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.d.Write(key(collProfiles, profile.UserID, "profile"), raw)
}

func (s *Store) GetUnlocked(ctx context.Context, userID string) (map[string]time.Time, error) {
	p := prefix(collAchievement, userID)
	ks, err := s.keys(ctx, p)
	if err != nil {
		return nil, err
	}
	unlocked := make(map[string]time.Time)
	for _, k := range ks {
		raw, err := s.d.Read(k)
		if err != nil {
			return nil, err
		}
		at, err := time.Parse(time.RFC3339, strings.TrimSpace(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("failed to parse unlock time of %s: %w", k, err)
		}
		unlocked[strings.TrimPrefix(k, p)] = at
	}
	return unlocked, nil
}

// SaveUnlocked records the first unlock time; later calls keep it.
func (s *Store) SaveUnlocked(ctx context.Context, userID, achievementID string, at time.Time) error {
	k := key(collAchievement, userID, achievementID)
	if s.d.Has(k) {
		return nil
	}
	return s.d.Write(k, []byte(at.UTC().Format(time.RFC3339)))
}

func (s *Store) GetSettings(ctx context.Context) (models.Settings, error) {
	raw, err := s.d.Read(settingsKey)
	if err != nil {
		return models.Settings{}, fmt.Errorf("settings not found")
	}
	var data map[string]string
	if err := json.Unmarshal(raw, &data); err != nil {
		return models.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return models.MapToSettings(data)
}

func (s *Store) SaveSettings(ctx context.Context, settings models.Settings) error {
	raw, err := json.Marshal(models.SettingsToMap(settings))
	if err != nil {
		return err
	}
	return s.d.Write(settingsKey, raw)
}
