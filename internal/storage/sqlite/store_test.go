package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "moodlit.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func day(d int) time.Time {
	return time.Date(2026, 10, d, 12, 0, 0, 0, time.UTC)
}

func TestInitWritesDefaultSettings(t *testing.T) {
	store := setupTestStore(t)
	settings, err := store.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings() failed: %v", err)
	}
	if settings.Timezone != constants.DefaultTimezone {
		t.Errorf("Timezone = %q, want %q", settings.Timezone, constants.DefaultTimezone)
	}
	if settings.UnlockToastSeconds != constants.DefaultUnlockToastSeconds {
		t.Errorf("UnlockToastSeconds = %d", settings.UnlockToastSeconds)
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(context.Background()); err == nil {
		t.Error("Load() on a missing file should fail")
	}
}

func TestEntriesWriteListDelete(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	first, err := store.WriteEntry(ctx, "u1", day(3), []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("WriteEntry() failed: %v", err)
	}
	second, err := store.WriteEntry(ctx, "u1", day(5), []byte(`{"a":2}`))
	if err != nil {
		t.Fatalf("WriteEntry() failed: %v", err)
	}
	if _, err := store.WriteEntry(ctx, "u2", day(4), []byte(`{}`)); err != nil {
		t.Fatalf("WriteEntry() failed: %v", err)
	}

	docs, err := store.ListEntries(ctx, "u1")
	if err != nil {
		t.Fatalf("ListEntries() failed: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != second || docs[1].ID != first {
		t.Fatalf("ListEntries() = %+v, want [%s %s] by date descending", docs, second, first)
	}
	if !docs[0].Date.Equal(day(5)) {
		t.Errorf("Date = %v, want %v", docs[0].Date, day(5))
	}

	if err := store.DeleteEntry(ctx, "u1", first); err != nil {
		t.Fatalf("DeleteEntry() failed: %v", err)
	}
	if err := store.DeleteEntry(ctx, "u1", first); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteEntry() error = %v, want ErrNotFound", err)
	}
	docs, _ = store.ListEntries(ctx, "u1")
	if len(docs) != 1 {
		t.Errorf("ListEntries() after delete = %d docs, want 1", len(docs))
	}
}

func TestReplaceEntryIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	old, _ := store.WriteEntry(ctx, "u1", day(3), []byte(`{"old":true}`))

	if _, err := store.ReplaceEntry(ctx, "u1", "no-such-id", day(3), []byte(`{}`)); err == nil {
		t.Fatal("ReplaceEntry() with unknown id should fail")
	}
	docs, _ := store.ListEntries(ctx, "u1")
	if len(docs) != 1 || docs[0].ID != old {
		t.Fatalf("failed replace changed the collection: %+v", docs)
	}

	id, err := store.ReplaceEntry(ctx, "u1", old, day(3), []byte(`{"new":true}`))
	if err != nil {
		t.Fatalf("ReplaceEntry() failed: %v", err)
	}
	docs, _ = store.ListEntries(ctx, "u1")
	if len(docs) != 1 || docs[0].ID != id || string(docs[0].Body) != `{"new":true}` {
		t.Errorf("ListEntries() after replace = %+v", docs)
	}
}

func TestPurgeDeletedEntries(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	id, _ := store.WriteEntry(ctx, "u1", day(3), []byte(`{}`))
	_ = store.DeleteEntry(ctx, "u1", id)

	n, err := store.PurgeDeletedEntries(ctx, time.Now().Add(time.Hour))
	if err != nil || n != 1 {
		t.Errorf("PurgeDeletedEntries() = (%d, %v), want (1, nil)", n, err)
	}
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if _, err := store.GetProfile(ctx, "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetProfile() error = %v, want ErrNotFound", err)
	}

	p := models.Profile{UserID: "u1", Name: "Sam", Age: 31, Questionnaire: map[string]string{"goal": "sleep"}}
	if err := store.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile() failed: %v", err)
	}
	got, err := store.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if got.Name != "Sam" || got.Questionnaire["goal"] != "sleep" {
		t.Errorf("GetProfile() = %+v", got)
	}
}

func TestAchievementsKeepFirstUnlock(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	first := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	if err := store.SaveUnlocked(ctx, "u1", constants.AchievementIDFirstStep, first); err != nil {
		t.Fatalf("SaveUnlocked() failed: %v", err)
	}
	if err := store.SaveUnlocked(ctx, "u1", constants.AchievementIDFirstStep, first.Add(time.Hour)); err != nil {
		t.Fatalf("SaveUnlocked() failed: %v", err)
	}

	got, err := store.GetUnlocked(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUnlocked() failed: %v", err)
	}
	if !got[constants.AchievementIDFirstStep].Equal(first) {
		t.Errorf("unlocked_at = %v, want %v", got[constants.AchievementIDFirstStep], first)
	}
	if other, _ := store.GetUnlocked(ctx, "u2"); len(other) != 0 {
		t.Errorf("GetUnlocked(u2) = %v, want empty", other)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	settings := models.DefaultSettings()
	settings.Timezone = "America/New_York"
	settings.ProbeHosts = []string{"example.com:443"}
	if err := store.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings() failed: %v", err)
	}
	got, err := store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings() failed: %v", err)
	}
	if got.Timezone != "America/New_York" || len(got.ProbeHosts) != 1 {
		t.Errorf("GetSettings() = %+v", got)
	}
}

func TestSchemaStatus(t *testing.T) {
	store := setupTestStore(t)
	current, latest, err := store.SchemaStatus(context.Background())
	if err != nil {
		t.Fatalf("SchemaStatus() failed: %v", err)
	}
	if current != latest || latest < 1 {
		t.Errorf("SchemaStatus() = %d, %d; want equal and positive", current, latest)
	}
}
