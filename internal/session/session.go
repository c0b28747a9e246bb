// Package session wires one signed-in user's journal, analytics and
// achievements on top of an opened storage provider.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/julianstephens/moodlit/internal/achievements"
	"github.com/julianstephens/moodlit/internal/analytics"
	"github.com/julianstephens/moodlit/internal/connectivity"
	"github.com/julianstephens/moodlit/internal/entrystore"
	"github.com/julianstephens/moodlit/internal/identity"
	"github.com/julianstephens/moodlit/internal/journal"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/profile"
	"github.com/julianstephens/moodlit/internal/storage"
	"github.com/julianstephens/moodlit/internal/utils"
)

// Notifier delivers an unlock message outside the process.
type Notifier interface {
	Notify(ctx context.Context, title, text string) error
}

type Config struct {
	Store    storage.Provider
	Identity identity.Provider
	Gate     *connectivity.Gate
	Device   profile.Device

	// Location overrides the timezone setting when set.
	Location *time.Location
	Now      func() time.Time
	Notifier Notifier
}

type Session struct {
	Settings     models.Settings
	Location     *time.Location
	Gate         *connectivity.Gate
	Entries      *entrystore.Store
	Journal      *journal.Journal
	Analytics    *analytics.Engine
	Achievements *achievements.Engine
	Profiles     *profile.Service

	userID string
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Open builds a session. Nothing is fetched; call Sync to load entries.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	settings, err := cfg.Store.GetSettings(ctx)
	if err != nil {
		logger.Warn("Failed to load settings, using defaults", "error", err)
		settings = models.DefaultSettings()
	}
	models.ApplyDefaultSettings(&settings)

	loc := cfg.Location
	if loc == nil {
		if loc, err = utils.LoadLocation(settings.Timezone); err != nil {
			return nil, err
		}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	gate := cfg.Gate
	if gate == nil {
		gate = connectivity.NewGate(true)
	}

	s := &Session{
		Settings: settings,
		Location: loc,
		Gate:     gate,
		Entries:  entrystore.New(loc),
	}
	s.Journal = journal.New(s.Entries, entrystore.NewFactorSet(), cfg.Store, cfg.Identity, gate)
	s.Analytics = analytics.New(s.Entries, loc, now)
	s.Profiles = profile.NewService(cfg.Store, cfg.Identity, gate, cfg.Device, now)

	opts := []achievements.Option{
		achievements.WithClock(now),
		achievements.WithTokenTTL(time.Duration(settings.UnlockToastSeconds) * time.Second),
	}
	if userID, ok := cfg.Identity.CurrentUserID(); ok {
		s.userID = userID
		opts = append(opts, achievements.WithPersister(userID, cfg.Store))
	}
	s.Achievements = achievements.New(loc, opts...)

	if s.userID != "" {
		unlocked, err := cfg.Store.GetUnlocked(ctx, s.userID)
		if err != nil {
			logger.Warn("Failed to restore achievements", "user", s.userID, "error", err)
		} else {
			s.Achievements.Restore(unlocked)
		}
	}
	s.Journal.Observe(s.Achievements)

	fwdCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	if cfg.Notifier != nil && settings.NotifyUnlocks {
		s.forward(fwdCtx, cfg.Notifier)
	}

	logger.Debug("Session opened", "user", s.userID, "timezone", loc.String(), "online", gate.Online())
	return s, nil
}

// UserID is the user the session was opened for, empty when signed out.
func (s *Session) UserID() string {
	return s.userID
}

// Sync reloads the EntryStore from storage.
func (s *Session) Sync(ctx context.Context) (journal.FetchReport, error) {
	return s.Journal.FetchAll(ctx)
}

func (s *Session) forward(ctx context.Context, n Notifier) {
	tokens := s.Achievements.Subscribe()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case tok := <-tokens:
				a := tok.Achievement
				if err := n.Notify(ctx, "Achievement unlocked", a.Icon+" "+a.Title); err != nil {
					logger.Debug("Unlock notification not delivered", "id", a.ID, "error", err)
				}
			}
		}
	}()
}

// Close stops unlock forwarding. The storage provider is left open.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
}
