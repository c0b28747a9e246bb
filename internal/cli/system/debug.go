package system

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/moodlit/internal/cli"
	apperrors "github.com/julianstephens/moodlit/internal/errors"
	"github.com/julianstephens/moodlit/internal/models"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path."`
	DumpEntries  *DebugDumpEntriesCmd  `cmd:"" help:"Dump the signed-in user's entries as JSON."`
	DumpSettings *DebugDumpSettingsCmd `cmd:"" help:"Dump settings as JSON."`
	DumpUnlocks  *DebugDumpUnlocksCmd  `cmd:"" help:"Dump unlocked achievements as JSON."`
}

func printJSON(ctx *cli.Context, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(b))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpEntriesCmd struct {
	Date string `arg:"" optional:"" help:"Only entries on this day (YYYY-MM-DD or 'today')."`
}

type dumpedEntry struct {
	ID        string                         `json:"id"`
	Date      string                         `json:"date"`
	MoodLevel float64                        `json:"mood_level,omitempty"`
	Factors   map[string]models.FactorImpact `json:"factors,omitempty"`
	Note      string                         `json:"note,omitempty"`
	Error     string                         `json:"error,omitempty"`
}

func (cmd *DebugDumpEntriesCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	userID, ok := ctx.Identity.CurrentUserID()
	if !ok {
		return apperrors.New(apperrors.ErrAuthRequired, "dump entries", nil)
	}
	loc := ctx.Location
	if loc == nil {
		s, err := ctx.Session(bg)
		if err != nil {
			return err
		}
		loc = s.Location
	}

	docs, err := ctx.Store.ListEntries(bg, userID)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	var dayKey string
	if cmd.Date != "" {
		day, err := cli.ParseDay(cmd.Date, ctx.CurrentTime(), loc)
		if err != nil {
			return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD or 'today')", cmd.Date)
		}
		dayKey = day.In(loc).Format("2006-01-02")
	}

	out := make([]dumpedEntry, 0, len(docs))
	for _, d := range docs {
		if dayKey != "" && d.Date.In(loc).Format("2006-01-02") != dayKey {
			continue
		}
		e, err := models.DecodeDocument(d.ID, d.Body)
		if err != nil {
			out = append(out, dumpedEntry{ID: d.ID, Date: d.Date.In(loc).Format("2006-01-02T15:04:05Z07:00"), Error: err.Error()})
			continue
		}
		out = append(out, dumpedEntry{
			ID:        e.ID,
			Date:      e.Date.In(loc).Format("2006-01-02T15:04:05Z07:00"),
			MoodLevel: e.MoodLevel,
			Factors:   e.Factors,
			Note:      e.Note,
		})
	}
	return printJSON(ctx, out)
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return printJSON(ctx, settings)
}

type DebugDumpUnlocksCmd struct{}

func (cmd *DebugDumpUnlocksCmd) Run(ctx *cli.Context) error {
	userID, ok := ctx.Identity.CurrentUserID()
	if !ok {
		return apperrors.New(apperrors.ErrAuthRequired, "dump unlocks", nil)
	}
	unlocked, err := ctx.Store.GetUnlocked(context.Background(), userID)
	if err != nil {
		return fmt.Errorf("failed to get achievements: %w", err)
	}
	return printJSON(ctx, unlocked)
}
