package achievements

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
)

func daily(days []int, level float64, factors ...string) []models.MoodEntry {
	var out []models.MoodEntry
	for _, d := range days {
		f := make(map[string]models.FactorImpact)
		for _, name := range factors {
			f[name] = models.ImpactPositive
		}
		out = append(out, models.MoodEntry{
			Date:      time.Date(2026, 10, d, 20, 0, 0, 0, time.UTC),
			MoodLevel: level,
			Factors:   f,
		})
	}
	return out
}

func withLevels(levels ...float64) []models.MoodEntry {
	var out []models.MoodEntry
	for i, l := range levels {
		out = append(out, models.MoodEntry{Date: time.Date(2026, 10, 1+2*i, 9, 0, 0, 0, time.UTC), MoodLevel: l})
	}
	return out
}

func span(from, to int) []int {
	var out []int
	for d := from; d <= to; d++ {
		out = append(out, d)
	}
	return out
}

func TestFirstLog(t *testing.T) {
	e := New(time.UTC)
	e.Evaluate(nil, nil)
	if e.IsUnlocked(constants.AchievementIDFirstStep) {
		t.Fatal("first-step unlocked with no entries")
	}
	e.Evaluate(daily([]int{3}, 5), nil)
	if !e.IsUnlocked(constants.AchievementIDFirstStep) {
		t.Error("first-step should unlock at exactly one entry")
	}

	fresh := New(time.UTC)
	fresh.Evaluate(daily([]int{3, 4}, 5), nil)
	if fresh.IsUnlocked(constants.AchievementIDFirstStep) {
		t.Error("first-step should not unlock when the store jumps past one entry")
	}
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name string
		days []int
		want bool
	}{
		{"seven consecutive", span(1, 7), true},
		{"six consecutive", span(1, 6), false},
		{"gapped", []int{1, 3, 5}, false},
		{"thirty consecutive", span(1, 30), true},
		{"run broken then seven", append([]int{1, 2, 3}, span(10, 16)...), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(time.UTC)
			e.Evaluate(daily(tt.days, 5), nil)
			if got := e.IsUnlocked(constants.AchievementIDWeekWarrior); got != tt.want {
				t.Errorf("week-warrior unlocked = %v, want %v", got, tt.want)
			}
			// The 30-day item shares the streak slot and is never unlocked on its own.
			if e.IsUnlocked(constants.AchievementIDMonthlyMaster) {
				t.Error("monthly-master should never unlock separately")
			}
		})
	}
}

func TestCurrentStreak(t *testing.T) {
	entries := daily(append([]int{1, 2, 3}, 7, 8), 5)
	if got := CurrentStreak(entries, time.UTC); got != 2 {
		t.Errorf("CurrentStreak() = %d, want 2", got)
	}
	if got := LongestRun(entries, time.UTC); got != 3 {
		t.Errorf("LongestRun() = %d, want 3", got)
	}
	if got := CurrentStreak(nil, time.UTC); got != 0 {
		t.Errorf("CurrentStreak(nil) = %d, want 0", got)
	}
	// A same-day duplicate neither extends nor breaks the run.
	dup := append(daily([]int{1, 2}, 5), daily([]int{2, 3}, 6)...)
	if got := CurrentStreak(dup, time.UTC); got != 3 {
		t.Errorf("CurrentStreak() with duplicate = %d, want 3", got)
	}
}

func TestFactorUse(t *testing.T) {
	e := New(time.UTC)
	e.Evaluate(daily([]int{1, 2}, 5), []string{"Sleep", "Work"})
	if e.IsUnlocked(constants.AchievementIDExerciseExplorer) {
		t.Fatal("exercise-explorer unlocked without Exercise")
	}
	e.Evaluate(daily([]int{1, 2}, 5), []string{"Sleep", "Exercise"})
	if !e.IsUnlocked(constants.AchievementIDExerciseExplorer) {
		t.Error("exercise-explorer should unlock once Exercise was used")
	}
}

func TestMoodVariety(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.MoodEntry
		want    bool
	}{
		{"all bands", withLevels(1.5, 3.0, 5.0, 7.0, 9.0), true},
		{"same level", withLevels(5, 5, 5, 5, 5), false},
		{"upper band edges", withLevels(2, 4, 6, 8, 10), true},
		{"four bands", withLevels(2.1, 4, 6, 8, 10), false},
		{"edges plus lowest", withLevels(1, 2.5, 4.5, 6.5, 8.5), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(time.UTC)
			e.Evaluate(tt.entries, nil)
			if got := e.IsUnlocked(constants.AchievementIDMoodRange); got != tt.want {
				t.Errorf("mood-range unlocked = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSleepConsistency(t *testing.T) {
	e := New(time.UTC)
	e.Evaluate(daily(span(1, 4), 5, "Sleep"), nil)
	if e.IsUnlocked(constants.AchievementIDSleepTracker) {
		t.Fatal("sleep-tracker unlocked after 4 days")
	}
	e.Evaluate(daily(span(1, 5), 5, "Sleep"), nil)
	if !e.IsUnlocked(constants.AchievementIDSleepTracker) {
		t.Error("sleep-tracker should unlock after 5 consecutive days")
	}
}

func TestUnlockIsMonotonicAndIdempotent(t *testing.T) {
	e := New(time.UTC)
	if got := e.Evaluate(daily([]int{3}, 5), nil); len(got) != 1 {
		t.Fatalf("first Evaluate() unlocked %d, want 1", len(got))
	}
	if got := e.Evaluate(daily([]int{3}, 5), nil); len(got) != 0 {
		t.Errorf("second Evaluate() unlocked %v, want none", got)
	}
	// Losing the qualifying state never re-locks.
	e.Evaluate(daily([]int{3, 4, 5}, 5), nil)
	if !e.IsUnlocked(constants.AchievementIDFirstStep) {
		t.Error("first-step was re-locked")
	}
}

func TestTokenExpires(t *testing.T) {
	clock := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	e := New(time.UTC, WithClock(func() time.Time { return clock }), WithTokenTTL(3*time.Second))

	if _, ok := e.Current(); ok {
		t.Fatal("Current() before any unlock")
	}
	e.Evaluate(daily([]int{3}, 5), nil)

	tok, ok := e.Current()
	if !ok || tok.Achievement.ID != constants.AchievementIDFirstStep {
		t.Fatalf("Current() = %+v, %v", tok, ok)
	}
	clock = clock.Add(2 * time.Second)
	if _, ok := e.Current(); !ok {
		t.Error("token expired early")
	}
	clock = clock.Add(time.Second)
	if _, ok := e.Current(); ok {
		t.Error("token should expire after the TTL")
	}
}

func TestSubscribeDoesNotBlock(t *testing.T) {
	e := New(time.UTC)
	ch := e.Subscribe()

	// Fill the buffer without reading; Evaluate must still return.
	for i := 0; i < constants.UnlockChannelCapacity+2; i++ {
		fresh := New(time.UTC)
		fresh.subs = e.subs
		fresh.Evaluate(daily([]int{3}, 5), nil)
	}
	if got := len(ch); got != constants.UnlockChannelCapacity {
		t.Errorf("buffered tokens = %d, want %d", got, constants.UnlockChannelCapacity)
	}
}

type memPersister struct {
	mu    sync.Mutex
	saved map[string]time.Time
}

func (m *memPersister) SaveUnlocked(ctx context.Context, userID, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[userID+"/"+id] = at
	return nil
}

func TestPersistAndRestore(t *testing.T) {
	p := &memPersister{saved: make(map[string]time.Time)}
	e := New(time.UTC, WithPersister("u1", p))
	e.Evaluate(daily([]int{3}, 5), []string{"Exercise"})

	if len(p.saved) != 2 {
		t.Fatalf("persisted %v, want first-step and exercise-explorer", p.saved)
	}

	restored := New(time.UTC)
	restored.Restore(map[string]time.Time{constants.AchievementIDFirstStep: time.Now()})
	if !restored.IsUnlocked(constants.AchievementIDFirstStep) {
		t.Error("Restore() did not mark the achievement")
	}
	if _, ok := restored.Current(); ok {
		t.Error("Restore() should not emit a token")
	}

	var unlocked int
	for _, a := range restored.Achievements() {
		if a.Unlocked {
			unlocked++
		}
	}
	if unlocked != 1 {
		t.Errorf("Achievements() has %d unlocked, want 1", unlocked)
	}
}
