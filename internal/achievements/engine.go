// Package achievements tracks the one-way locked → unlocked state of the
// achievement catalog, re-evaluated after every EntryStore mutation.
package achievements

import (
	"context"
	"sync"
	"time"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/models"
)

// Token announces a fresh unlock. It is only meaningful until Expires.
type Token struct {
	Achievement models.Achievement
	UnlockedAt  time.Time
	Expires     time.Time
}

// Persister stores unlock times; storage.AchievementRepository satisfies it.
type Persister interface {
	SaveUnlocked(ctx context.Context, userID, achievementID string, at time.Time) error
}

// Engine owns the unlocked set of one user.
type Engine struct {
	userID  string
	loc     *time.Location
	now     func() time.Time
	ttl     time.Duration
	persist Persister

	mu       sync.Mutex
	catalog  []models.Achievement
	unlocked map[string]time.Time
	last     *Token
	subs     []chan Token
}

// Option configures an Engine.
type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTokenTTL sets how long a "just unlocked" token stays current.
func WithTokenTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.ttl = ttl }
}

// WithPersister records every unlock for userID.
func WithPersister(userID string, p Persister) Option {
	return func(e *Engine) {
		e.userID = userID
		e.persist = p
	}
}

func New(loc *time.Location, opts ...Option) *Engine {
	if loc == nil {
		loc = time.Local
	}
	e := &Engine{
		loc:      loc,
		now:      time.Now,
		ttl:      constants.UnlockTokenTTL,
		catalog:  models.Catalog(),
		unlocked: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Restore marks previously persisted unlocks without emitting tokens.
func (e *Engine) Restore(unlocked map[string]time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, at := range unlocked {
		if _, ok := e.unlocked[id]; !ok {
			e.unlocked[id] = at
		}
	}
}

// EntriesChanged re-evaluates after a journal mutation.
func (e *Engine) EntriesChanged(entries []models.MoodEntry, usedFactors []string) {
	e.Evaluate(entries, usedFactors)
}

// Evaluate runs every rule and returns the achievements unlocked by this
// call. Already unlocked achievements are left alone.
func (e *Engine) Evaluate(entries []models.MoodEntry, usedFactors []string) []models.Achievement {
	used := make(map[string]struct{}, len(usedFactors))
	for _, f := range usedFactors {
		used[f] = struct{}{}
	}
	in := Input{Entries: entries, UsedFactors: used, Location: e.loc}

	var fresh []models.Achievement
	for _, kind := range []constants.AchievementType{
		constants.AchievementFirstLog,
		constants.AchievementStreak,
		constants.AchievementFactorUse,
		constants.AchievementConsistency,
		constants.AchievementMoodVariety,
	} {
		if rules[kind](in) {
			if a, ok := e.unlock(kind); ok {
				fresh = append(fresh, a)
			}
		}
	}
	return fresh
}

// unlock flips the first catalog item of kind. It reports false when the
// item was already unlocked.
func (e *Engine) unlock(kind constants.AchievementType) (models.Achievement, bool) {
	e.mu.Lock()

	var target *models.Achievement
	for i := range e.catalog {
		if e.catalog[i].Type == kind {
			target = &e.catalog[i]
			break
		}
	}
	if target == nil {
		e.mu.Unlock()
		return models.Achievement{}, false
	}
	if _, ok := e.unlocked[target.ID]; ok {
		e.mu.Unlock()
		return models.Achievement{}, false
	}

	at := e.now()
	e.unlocked[target.ID] = at
	a := *target
	a.Unlocked = true
	a.UnlockedAt = &at

	token := Token{Achievement: a, UnlockedAt: at, Expires: at.Add(e.ttl)}
	e.last = &token
	subs := append([]chan Token(nil), e.subs...)
	e.mu.Unlock()

	logger.Info("Achievement unlocked", "id", a.ID, "title", a.Title)
	for _, ch := range subs {
		select {
		case ch <- token:
		default:
			logger.Debug("Dropping unlock token for slow subscriber", "id", a.ID)
		}
	}

	if e.persist != nil {
		if err := e.persist.SaveUnlocked(context.Background(), e.userID, a.ID, at); err != nil {
			logger.Warn("Failed to persist achievement", "id", a.ID, "error", err)
		}
	}
	return a, true
}

// Current returns the most recent unlock token while it has not expired.
func (e *Engine) Current() (Token, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return Token{}, false
	}
	if !e.now().Before(e.last.Expires) {
		e.last = nil
		return Token{}, false
	}
	return *e.last, true
}

// Subscribe returns a buffered channel receiving every future token. Tokens
// are dropped rather than blocking the engine when the buffer is full.
func (e *Engine) Subscribe() <-chan Token {
	ch := make(chan Token, constants.UnlockChannelCapacity)
	e.mu.Lock()
	e.subs = append(e.subs, ch)
	e.mu.Unlock()
	return ch
}

// Achievements returns the catalog with the unlock state filled in.
func (e *Engine) Achievements() []models.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Achievement, len(e.catalog))
	for i, a := range e.catalog {
		if at, ok := e.unlocked[a.ID]; ok {
			a.Unlocked = true
			a.UnlockedAt = &at
		}
		out[i] = a
	}
	return out
}

// IsUnlocked reports whether the achievement with id has been unlocked.
func (e *Engine) IsUnlocked(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.unlocked[id]
	return ok
}

// Streak is the current day streak of entries.
func (e *Engine) Streak(entries []models.MoodEntry) int {
	return CurrentStreak(entries, e.loc)
}
