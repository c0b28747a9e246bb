package session

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/moodlit/internal/connectivity"
	"github.com/julianstephens/moodlit/internal/constants"
	apperrors "github.com/julianstephens/moodlit/internal/errors"
	"github.com/julianstephens/moodlit/internal/identity"
	"github.com/julianstephens/moodlit/internal/journal"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/storage/sqlite"
)

type chanNotifier chan string

func (c chanNotifier) Notify(ctx context.Context, title, text string) error {
	c <- title + ": " + text
	return nil
}

var fixedNow = func() time.Time { return time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC) }

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "moodlit.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func open(t *testing.T, cfg Config) *Session {
	t.Helper()
	if cfg.Now == nil {
		cfg.Now = fixedNow
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	s, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestSubmitUnlocksAndPersists(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	s := open(t, Config{Store: store, Identity: identity.Static("u1")})
	res, err := s.Journal.Submit(ctx, models.MoodEntry{Date: fixedNow(), MoodLevel: 7})
	if err != nil || res.Status != journal.Committed {
		t.Fatalf("Submit() = %+v, %v", res, err)
	}
	if !s.Achievements.IsUnlocked(constants.AchievementIDFirstStep) {
		t.Fatal("first-step should unlock after the first entry")
	}
	if tok, ok := s.Achievements.Current(); !ok || tok.Achievement.ID != constants.AchievementIDFirstStep {
		t.Errorf("Current() = %+v, %v", tok, ok)
	}

	reopened := open(t, Config{Store: store, Identity: identity.Static("u1")})
	if !reopened.Achievements.IsUnlocked(constants.AchievementIDFirstStep) {
		t.Error("unlock should be restored from storage")
	}
	if _, ok := reopened.Achievements.Current(); ok {
		t.Error("restored unlocks must not produce a token")
	}

	report, err := reopened.Sync(ctx)
	if err != nil || report.Loaded != 1 {
		t.Errorf("Sync() = %+v, %v", report, err)
	}
	if _, ok := reopened.Achievements.Current(); ok {
		t.Error("sync should not re-announce a restored unlock")
	}
	if got := reopened.Analytics.Trend("week"); len(got) != 1 || got[0].MoodLevel != 7 {
		t.Errorf("Trend(week) = %+v", got)
	}
}

func TestUnlocksForwardedToNotifier(t *testing.T) {
	notes := make(chanNotifier, 4)
	s := open(t, Config{Store: setupStore(t), Identity: identity.Static("u1"), Notifier: notes})

	if _, err := s.Journal.Submit(context.Background(), models.MoodEntry{Date: fixedNow(), MoodLevel: 3}); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	select {
	case msg := <-notes:
		if !strings.Contains(msg, "First Step") {
			t.Errorf("notification = %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no notification delivered")
	}
}

func TestNotifierDisabledBySetting(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	settings, _ := store.GetSettings(ctx)
	settings.NotifyUnlocks = false
	if err := store.SaveSettings(ctx, settings); err != nil {
		t.Fatal(err)
	}

	notes := make(chanNotifier, 4)
	s := open(t, Config{Store: store, Identity: identity.Static("u1"), Notifier: notes})
	_, _ = s.Journal.Submit(ctx, models.MoodEntry{Date: fixedNow(), MoodLevel: 3})
	select {
	case msg := <-notes:
		t.Errorf("unexpected notification %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSignedOutAndOffline(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	signedOut := open(t, Config{Store: store, Identity: identity.Static("")})
	if signedOut.UserID() != "" {
		t.Errorf("UserID() = %q", signedOut.UserID())
	}
	if _, err := signedOut.Sync(ctx); !errors.Is(err, apperrors.ErrAuthRequired) {
		t.Errorf("Sync() signed out = %v", err)
	}

	offline := open(t, Config{Store: store, Identity: identity.Static("u1"), Gate: connectivity.NewGate(false)})
	if _, err := offline.Sync(ctx); !errors.Is(err, apperrors.ErrNetworkUnavailable) {
		t.Errorf("Sync() offline = %v", err)
	}
	if got := offline.Analytics.Consistency(); got != 0 {
		t.Errorf("Consistency() offline = %v, want 0", got)
	}
}

func TestTimezoneFromSettings(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	settings, _ := store.GetSettings(ctx)
	settings.Timezone = "UTC"
	settings.UnlockToastSeconds = 10
	if err := store.SaveSettings(ctx, settings); err != nil {
		t.Fatal(err)
	}

	s, err := Open(ctx, Config{Store: store, Identity: identity.Static("u1"), Now: fixedNow})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()
	if s.Location.String() != "UTC" || s.Settings.UnlockToastSeconds != 10 {
		t.Errorf("session = %s, %+v", s.Location, s.Settings)
	}
}
