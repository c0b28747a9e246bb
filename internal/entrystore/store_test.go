package entrystore

import (
	"testing"
	"time"

	"github.com/julianstephens/moodlit/internal/models"
)

func at(day, hour int) time.Time {
	return time.Date(2026, 10, day, hour, 0, 0, 0, time.UTC)
}

func entry(id string, t time.Time, level float64) models.MoodEntry {
	return models.MoodEntry{ID: id, Date: t, MoodLevel: level, Factors: map[string]models.FactorImpact{}}
}

func TestReplaceNormalizesToAscendingOrder(t *testing.T) {
	s := New(time.UTC)
	// Remote listing arrives newest first.
	s.Replace([]models.MoodEntry{
		entry("c", at(5, 9), 7),
		entry("b", at(4, 9), 6),
		entry("a", at(3, 9), 5),
	})

	got := s.Snapshot()
	if len(got) != 3 {
		t.Fatalf("Len = %d, want 3", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].ID != want {
			t.Errorf("entry %d = %s, want %s", i, got[i].ID, want)
		}
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := New(time.UTC)
	e := entry("a", at(3, 9), 5)
	e.Factors["Sleep"] = models.ImpactPositive
	s.Append(e)

	snap := s.Snapshot()
	snap[0].Factors["Sleep"] = models.ImpactNegative
	snap[0].MoodLevel = 1

	got, _ := s.Get("a")
	if got.Factors["Sleep"] != models.ImpactPositive || got.MoodLevel != 5 {
		t.Errorf("store mutated through snapshot: %+v", got)
	}
}

func TestForDayToleratesDuplicates(t *testing.T) {
	s := New(time.UTC)
	s.Replace([]models.MoodEntry{
		entry("morning", at(3, 8), 4),
		entry("evening", at(3, 20), 6),
		entry("other", at(4, 8), 5),
	})

	day := s.ForDay(at(3, 12))
	if len(day) != 2 {
		t.Fatalf("ForDay() = %d entries, want 2", len(day))
	}
	latest, ok := s.LatestForDay(at(3, 0))
	if !ok || latest.ID != "evening" {
		t.Errorf("LatestForDay() = %+v, want evening", latest)
	}
	if _, ok := s.LatestForDay(at(9, 0)); ok {
		t.Error("LatestForDay() on empty day should report false")
	}
	if !s.HasDay(at(4, 23)) || s.HasDay(at(6, 0)) {
		t.Error("HasDay() mismatch")
	}
}

func TestCalendarDayUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	s := New(loc)
	// 02:00 UTC on the 4th is still the 3rd at UTC-5.
	s.Append(entry("a", time.Date(2026, 10, 4, 2, 0, 0, 0, time.UTC), 5))

	if !s.HasDay(time.Date(2026, 10, 3, 12, 0, 0, 0, loc)) {
		t.Error("entry should belong to the 3rd in UTC-5")
	}
}

func TestSwapIsSingleStep(t *testing.T) {
	s := New(time.UTC)
	s.Replace([]models.MoodEntry{entry("old", at(3, 8), 4), entry("keep", at(2, 8), 5)})

	s.Swap([]string{"old"}, entry("new", at(3, 21), 8))

	day := s.ForDay(at(3, 0))
	if len(day) != 1 || day[0].ID != "new" {
		t.Errorf("ForDay() after Swap = %+v", day)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestRemoveAndMonth(t *testing.T) {
	s := New(time.UTC)
	s.Replace([]models.MoodEntry{
		entry("sep", time.Date(2026, 9, 30, 8, 0, 0, 0, time.UTC), 5),
		entry("oct", at(1, 8), 5),
	})

	if got := s.Month(2026, time.October); len(got) != 1 || got[0].ID != "oct" {
		t.Errorf("Month(Oct) = %+v", got)
	}
	if !s.Remove("sep") || s.Remove("sep") {
		t.Error("Remove() should report presence exactly once")
	}
}

func TestFactorSetOnlyGrows(t *testing.T) {
	f := NewFactorSet()
	f.Add("Sleep", "Exercise")
	f.Add("Sleep")

	if !f.Contains("Exercise") || f.Contains("Work") {
		t.Error("Contains() mismatch")
	}
	names := f.Names()
	if len(names) != 2 || names[0] != "Exercise" || names[1] != "Sleep" {
		t.Errorf("Names() = %v", names)
	}
}
