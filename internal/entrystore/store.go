package entrystore

import (
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/utils"
)

// Store is the canonical in-memory collection of one user's mood entries.
// Entries are kept ascending by date (ties broken by id). Readers always get
// deep copies, so a snapshot never changes under the caller.
type Store struct {
	mu      sync.RWMutex
	loc     *time.Location
	entries []models.MoodEntry
}

// New returns an empty store whose calendar days are computed in loc.
func New(loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{loc: loc}
}

// Location returns the timezone used for calendar-day keys.
func (s *Store) Location() *time.Location {
	return s.loc
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a deep copy of every entry in canonical order.
func (s *Store) Snapshot() []models.MoodEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.entries)
}

// Replace swaps the whole collection, normalizing it to canonical order.
func (s *Store) Replace(entries []models.MoodEntry) {
	next := cloneAll(entries)
	sortEntries(next)

	s.mu.Lock()
	s.entries = next
	s.mu.Unlock()
}

// Append inserts a committed entry at its canonical position.
func (s *Store) Append(e models.MoodEntry) {
	s.Swap(nil, e)
}

// Swap removes the entries with the given ids and inserts add, as one step.
// Readers never observe the intermediate state.
func (s *Store) Swap(removeIDs []string, add models.MoodEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = without(s.entries, removeIDs)
	s.entries = append(s.entries, add.Clone())
	sortEntries(s.entries)
}

// Remove drops the entry with id and reports whether it was present.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.entries)
	s.entries = without(s.entries, []string{id})
	return len(s.entries) != before
}

// Get returns the entry with id.
func (s *Store) Get(id string) (models.MoodEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return models.MoodEntry{}, false
}

// ForDay returns every entry on the calendar day of t. More than one result
// only happens with historical duplicates written before the one-per-day rule.
func (s *Store) ForDay(t time.Time) []models.MoodEntry {
	key := utils.DayKey(t, s.loc)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MoodEntry
	for _, e := range s.entries {
		if e.Day(s.loc) == key {
			out = append(out, e.Clone())
		}
	}
	return out
}

// LatestForDay returns the most recent entry on the calendar day of t.
func (s *Store) LatestForDay(t time.Time) (models.MoodEntry, bool) {
	day := s.ForDay(t)
	if len(day) == 0 {
		return models.MoodEntry{}, false
	}
	// ForDay preserves canonical order, so the last one is the latest.
	return day[len(day)-1], true
}

// HasDay reports whether any entry exists on the calendar day of t.
func (s *Store) HasDay(t time.Time) bool {
	key := utils.DayKey(t, s.loc)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.Day(s.loc) == key {
			return true
		}
	}
	return false
}

// Month returns the entries whose calendar day falls in the given month.
func (s *Store) Month(year int, month time.Month) []models.MoodEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MoodEntry
	for _, e := range s.entries {
		d := e.Date.In(s.loc)
		if d.Year() == year && d.Month() == month {
			out = append(out, e.Clone())
		}
	}
	return out
}

func without(entries []models.MoodEntry, ids []string) []models.MoodEntry {
	if len(ids) == 0 {
		return entries
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := entries[:0:0]
	for _, e := range entries {
		if _, ok := drop[e.ID]; !ok {
			kept = append(kept, e)
		}
	}
	return kept
}

func cloneAll(entries []models.MoodEntry) []models.MoodEntry {
	out := make([]models.MoodEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

func sortEntries(entries []models.MoodEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date.Equal(entries[j].Date) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].Date.Before(entries[j].Date)
	})
}
