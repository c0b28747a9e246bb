package entries

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/journal"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/session"
)

type LogCmd struct {
	Mood    *float64 `help:"Mood level from 1 to 10. Prompts interactively when omitted." short:"m"`
	Factor  []string `help:"Factor as name[=positive|negative]. Repeatable." short:"f"`
	Note    string   `help:"Free-form note." short:"n"`
	Date    string   `help:"Day to log (YYYY-MM-DD). Defaults to today."`
	Replace bool     `help:"Replace an existing entry for the day without asking." xor:"conflict"`
	Keep    bool     `help:"Keep an existing entry for the day without asking." xor:"conflict"`
}

// Interactive prompts; tests replace them.
var (
	promptEntry    = huhPromptEntry
	confirmReplace = huhConfirmReplace
)

func (c *LogCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	s, err := ctx.SyncedSession(bg)
	if err != nil {
		return err
	}

	candidate, err := c.candidate(ctx, s)
	if err != nil {
		return err
	}

	before := unlockedIDs(s)
	res, err := s.Journal.Submit(bg, candidate)
	if err != nil {
		return err
	}

	committed := res.Entry
	if res.Status == journal.PendingConflict {
		replace := c.Replace
		if !c.Replace && !c.Keep {
			if replace, err = confirmReplace(*res.Existing, candidate); err != nil {
				_ = s.Journal.CancelReplace()
				return err
			}
		}
		if !replace {
			if err := s.Journal.CancelReplace(); err != nil {
				return err
			}
			ctx.Printf("Kept the existing entry for %s (%s).\n", res.Existing.Day(s.Location), cli.FormatMood(res.Existing.MoodLevel))
			return nil
		}
		if committed, err = s.Journal.ConfirmReplace(bg); err != nil {
			_ = s.Journal.CancelReplace()
			return err
		}
		ctx.Printf("✓ Replaced entry for %s: %s\n", committed.Day(s.Location), cli.FormatMood(committed.MoodLevel))
	} else {
		ctx.Printf("✓ Logged %s for %s\n", cli.FormatMood(committed.MoodLevel), committed.Day(s.Location))
	}

	printUnlocks(ctx, s, before)
	return nil
}

func (c *LogCmd) candidate(ctx *cli.Context, s *session.Session) (models.MoodEntry, error) {
	date, err := cli.ParseDay(c.Date, ctx.CurrentTime(), s.Location)
	if err != nil {
		return models.MoodEntry{}, err
	}
	if c.Mood == nil {
		e, err := promptEntry()
		if err != nil {
			return models.MoodEntry{}, err
		}
		e.Date = date
		return e, nil
	}

	factors, err := cli.ParseFactors(c.Factor)
	if err != nil {
		return models.MoodEntry{}, err
	}
	return models.MoodEntry{
		Date:      date,
		MoodLevel: *c.Mood,
		Factors:   factors,
		Note:      c.Note,
	}, nil
}

func unlockedIDs(s *session.Session) map[string]bool {
	ids := make(map[string]bool)
	for _, a := range s.Achievements.Achievements() {
		if a.Unlocked {
			ids[a.ID] = true
		}
	}
	return ids
}

func printUnlocks(ctx *cli.Context, s *session.Session, before map[string]bool) {
	for _, a := range s.Achievements.Achievements() {
		if a.Unlocked && !before[a.ID] {
			ctx.Println(cli.UnlockStyle.Render(fmt.Sprintf("%s Achievement unlocked: %s", a.Icon, a.Title)) + " " + cli.MutedStyle.Render(a.Description))
		}
	}
}

func huhPromptEntry() (models.MoodEntry, error) {
	mood := strconv.Itoa(int(constants.DefaultMoodLevel))
	var helped, hurt []string
	var note string

	moods := make([]huh.Option[string], 0, 10)
	for level := 10; level >= 1; level-- {
		moods = append(moods, huh.NewOption(cli.FormatMood(float64(level)), strconv.Itoa(level)))
	}
	names := make([]string, 0, len(models.FactorCatalog))
	for _, f := range models.FactorCatalog {
		names = append(names, f.Name)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("How are you feeling today?").Options(moods...).Value(&mood),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().Title("What lifted your mood?").Options(huh.NewOptions(names...)...).Value(&helped),
			huh.NewMultiSelect[string]().Title("What weighed on it?").Options(huh.NewOptions(names...)...).Value(&hurt),
		),
		huh.NewGroup(
			huh.NewText().Title("Anything else?").CharLimit(constants.MaxNoteLength).Value(&note),
		),
	)
	if err := form.Run(); err != nil {
		return models.MoodEntry{}, err
	}

	level, err := strconv.ParseFloat(mood, 64)
	if err != nil {
		return models.MoodEntry{}, err
	}
	factors := make(map[string]models.FactorImpact, len(helped)+len(hurt))
	for _, name := range helped {
		factors[name] = models.ImpactPositive
	}
	for _, name := range hurt {
		factors[name] = models.ImpactNegative
	}
	return models.MoodEntry{MoodLevel: level, Factors: factors, Note: note}, nil
}

func huhConfirmReplace(existing, candidate models.MoodEntry) (bool, error) {
	var replace bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("You already logged %s on %s.", cli.FormatMood(existing.MoodLevel), existing.Date.Format(constants.DateFormat))).
		Description(fmt.Sprintf("Replace it with %s?", cli.FormatMood(candidate.MoodLevel))).
		Affirmative("Replace").
		Negative("Keep").
		Value(&replace).
		Run()
	return replace, err
}
