package entries

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/connectivity"
	apperrors "github.com/julianstephens/moodlit/internal/errors"
	"github.com/julianstephens/moodlit/internal/identity"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/storage/sqlite"
)

var fixedNow = func() time.Time { return time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC) }

func setupContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(dir, "moodlit.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store:      store,
		Identity:   identity.Static("u1"),
		Gate:       connectivity.NewGate(true),
		Location:   time.UTC,
		DevicePath: filepath.Join(dir, "device.yaml"),
		Now:        fixedNow,
		Out:        out,
	}
	t.Cleanup(ctx.Close)
	return ctx, out
}

func mood(v float64) *float64 { return &v }

func stored(t *testing.T, ctx *cli.Context) []models.MoodEntry {
	t.Helper()
	s, err := ctx.SyncedSession(context.Background())
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	return s.Entries.Snapshot()
}

func TestLogCmd(t *testing.T) {
	ctx, out := setupContext(t)

	cmd := &LogCmd{Mood: mood(7), Factor: []string{"sleep=negative", "Work"}, Note: "long day"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("log failed: %v", err)
	}
	if !strings.Contains(out.String(), "Logged 7.0") {
		t.Errorf("output = %q", out.String())
	}
	if !strings.Contains(out.String(), "First Step") {
		t.Errorf("first entry should announce an unlock, output = %q", out.String())
	}

	entries := stored(t, ctx)
	if len(entries) != 1 {
		t.Fatalf("stored %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Factors["Sleep"] != models.ImpactNegative || e.Factors["Work"] != models.ImpactPositive || e.Note != "long day" {
		t.Errorf("entry = %+v", e)
	}
}

func TestLogCmdConflicts(t *testing.T) {
	tests := []struct {
		name     string
		cmd      LogCmd
		prompt   bool
		wantMood float64
	}{
		{"keep flag", LogCmd{Mood: mood(2), Keep: true}, false, 6},
		{"replace flag", LogCmd{Mood: mood(2), Replace: true}, false, 2},
		{"prompt keeps", LogCmd{Mood: mood(2)}, false, 6},
		{"prompt replaces", LogCmd{Mood: mood(2)}, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := setupContext(t)
			if err := (&LogCmd{Mood: mood(6)}).Run(ctx); err != nil {
				t.Fatal(err)
			}

			old := confirmReplace
			defer func() { confirmReplace = old }()
			asked := false
			confirmReplace = func(existing, candidate models.MoodEntry) (bool, error) {
				asked = true
				return tt.prompt, nil
			}

			cmd := tt.cmd
			if err := cmd.Run(ctx); err != nil {
				t.Fatalf("log failed: %v", err)
			}
			if wantAsk := !tt.cmd.Keep && !tt.cmd.Replace; asked != wantAsk {
				t.Errorf("prompted = %v, want %v", asked, wantAsk)
			}
			entries := stored(t, ctx)
			if len(entries) != 1 || entries[0].MoodLevel != tt.wantMood {
				t.Errorf("entries = %+v, want one with mood %v", entries, tt.wantMood)
			}
			s, _ := ctx.Session(context.Background())
			if _, pending := s.Journal.Pending(); pending {
				t.Error("conflict left pending")
			}
		})
	}
}

func TestLogCmdPromptsWithoutMood(t *testing.T) {
	ctx, _ := setupContext(t)
	old := promptEntry
	defer func() { promptEntry = old }()
	promptEntry = func() (models.MoodEntry, error) {
		return models.MoodEntry{MoodLevel: 9, Factors: map[string]models.FactorImpact{"Exercise": models.ImpactPositive}}, nil
	}

	if err := (&LogCmd{Date: "2026-10-12"}).Run(ctx); err != nil {
		t.Fatalf("log failed: %v", err)
	}
	entries := stored(t, ctx)
	if len(entries) != 1 || entries[0].MoodLevel != 9 || entries[0].Day(time.UTC) != "2026-10-12" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestLogCmdErrors(t *testing.T) {
	ctx, _ := setupContext(t)
	if err := (&LogCmd{Mood: mood(11)}).Run(ctx); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("mood 11 = %v, want ErrValidation", err)
	}
	if err := (&LogCmd{Mood: mood(5), Factor: []string{"Sleep=meh"}}).Run(ctx); err == nil {
		t.Error("expected error for an unknown impact")
	}
	if err := (&LogCmd{Mood: mood(5), Date: "15/10/2026"}).Run(ctx); err == nil {
		t.Error("expected error for a malformed date")
	}

	offline, _ := setupContext(t)
	offline.Gate = connectivity.NewGate(false)
	if err := (&LogCmd{Mood: mood(5)}).Run(offline); !errors.Is(err, apperrors.ErrNetworkUnavailable) {
		t.Errorf("offline log = %v, want ErrNetworkUnavailable", err)
	}
}

func TestListShowCalendar(t *testing.T) {
	ctx, out := setupContext(t)
	for _, cmd := range []LogCmd{
		{Mood: mood(3), Date: "2026-10-01", Note: "rainy"},
		{Mood: mood(8), Date: "2026-10-14"},
		{Mood: mood(5), Date: "2026-09-30"},
	} {
		if err := cmd.Run(ctx); err != nil {
			t.Fatal(err)
		}
	}

	out.Reset()
	if err := (&ListCmd{Month: "2026-10"}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "2026-10-01") || !strings.Contains(got, "rainy") || strings.Contains(got, "2026-09-30") {
		t.Errorf("list output = %q", got)
	}
	if !strings.Contains(got, "2 entries") {
		t.Errorf("list count missing: %q", got)
	}

	out.Reset()
	if err := (&ListCmd{Limit: 1}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "2026-10-14") || strings.Contains(out.String(), "2026-10-01") {
		t.Errorf("limited list = %q", out.String())
	}

	out.Reset()
	if err := (&ShowCmd{Date: "2026-10-01"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Low") || !strings.Contains(out.String(), "rainy") {
		t.Errorf("show output = %q", out.String())
	}

	out.Reset()
	if err := (&CalendarCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "October 2026") || !strings.Contains(out.String(), "2 of 31 days logged") {
		t.Errorf("calendar output = %q", out.String())
	}
}

func TestRenderCalendarLayout(t *testing.T) {
	// March 2027 starts on a Monday.
	first := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	got := RenderCalendar(first, nil, time.UTC)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if !strings.HasPrefix(lines[2], "  1") {
		t.Errorf("first week row = %q", lines[2])
	}
	if !strings.Contains(got, "0 of 31 days logged") {
		t.Errorf("calendar = %q", got)
	}
}
