package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/logger"
)

// NotifyCmd sends a reminder through the tray app when today has no entry.
// It is meant to be run from cron or a systemd timer.
type NotifyCmd struct {
	DryRun bool `help:"Print the reminder to stdout instead of sending it."`
	Force  bool `help:"Send even if today already has an entry."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	s, err := ctx.SyncedSession(bg)
	if err != nil {
		return err
	}

	now := ctx.CurrentTime()
	if s.Entries.HasDay(now) && !c.Force {
		if c.DryRun {
			ctx.Println("Today already has an entry.")
		}
		return nil
	}

	title := "How are you feeling?"
	text := "You haven't logged your mood today."
	if s.Entries.HasDay(now.AddDate(0, 0, -1)) {
		streak := s.Achievements.Streak(s.Entries.Snapshot())
		text = fmt.Sprintf("Log today to keep your %d-day streak going.", streak)
	}

	if c.DryRun || ctx.Notifier == nil {
		ctx.Println("[DryRun] " + title + " " + text)
		return nil
	}
	if err := ctx.Notifier.Notify(bg, title, text); err != nil {
		logger.Warn("Failed to send reminder", "error", err)
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}
