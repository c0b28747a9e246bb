package stats

import (
	"context"
	"fmt"

	"github.com/julianstephens/moodlit/internal/cli"
)

type AchievementsCmd struct {
	Locked bool `help:"Only show locked achievements." xor:"filter"`
	Earned bool `help:"Only show unlocked achievements." xor:"filter"`
}

func (c *AchievementsCmd) Run(ctx *cli.Context) error {
	s, err := ctx.ReadSession(context.Background())
	if err != nil {
		return err
	}

	all := s.Achievements.Achievements()
	unlocked := 0
	for _, a := range all {
		if a.Unlocked {
			unlocked++
		}
	}
	ctx.Println(cli.HeaderStyle.Render(fmt.Sprintf("Achievements (%d/%d)", unlocked, len(all))))
	ctx.Printf("Current streak: %d days\n\n", s.Achievements.Streak(s.Entries.Snapshot()))

	for _, a := range all {
		if (c.Locked && a.Unlocked) || (c.Earned && !a.Unlocked) {
			continue
		}
		if a.Unlocked {
			ctx.Printf("%s %s  %s\n", a.Icon, cli.UnlockStyle.Render(a.Title), cli.MutedStyle.Render(a.UnlockedAt.In(s.Location).Format("2006-01-02")))
		} else {
			ctx.Printf("🔒 %s\n", a.Title)
		}
		ctx.Printf("   %s\n", cli.MutedStyle.Render(a.Description))
	}
	return nil
}
