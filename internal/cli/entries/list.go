package entries

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/utils"
)

type ListCmd struct {
	Month string `help:"Only show entries of a month (YYYY-MM)."`
	Limit int    `help:"Show at most this many of the newest entries (0 for all)." default:"0"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	s, err := ctx.ReadSession(context.Background())
	if err != nil {
		return err
	}

	var list []models.MoodEntry
	if c.Month != "" {
		first, err := utils.ParseMonthInLocation(c.Month, s.Location)
		if err != nil {
			return err
		}
		list = s.Entries.Month(first.Year(), first.Month())
	} else {
		list = s.Entries.Snapshot()
	}
	if c.Limit > 0 && len(list) > c.Limit {
		list = list[len(list)-c.Limit:]
	}

	if len(list) == 0 {
		ctx.Println("No entries yet. Log one with 'moodlit log'.")
		return nil
	}

	ctx.Println(cli.HeaderStyle.Render(fmt.Sprintf("%-10s  %-16s  %s", "Date", "Mood", "Factors")))
	for _, e := range list {
		ctx.Printf("%-10s  %-16s  %s\n", e.Day(s.Location), cli.FormatMood(e.MoodLevel), cli.FormatFactors(e.Factors))
		if e.Note != "" {
			ctx.Printf("%12s%s\n", "", cli.MutedStyle.Render(firstLine(e.Note)))
		}
	}
	ctx.Println(cli.MutedStyle.Render(fmt.Sprintf("%d entries", len(list))))
	return nil
}

type ShowCmd struct {
	Date string `arg:"" optional:"" help:"Day to show (YYYY-MM-DD). Defaults to today."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	s, err := ctx.ReadSession(context.Background())
	if err != nil {
		return err
	}
	day, err := cli.ParseDay(c.Date, ctx.CurrentTime(), s.Location)
	if err != nil {
		return err
	}

	found := s.Entries.ForDay(day)
	if len(found) == 0 {
		ctx.Printf("No entry for %s.\n", utils.DayKey(day, s.Location))
		return nil
	}
	if len(found) > 1 {
		ctx.Println(cli.MutedStyle.Render(fmt.Sprintf("%d entries share this day; the latest is shown first.", len(found))))
	}
	for i := len(found) - 1; i >= 0; i-- {
		e := found[i]
		ctx.Println(cli.HeaderStyle.Render(e.Date.In(s.Location).Format("Monday, January 2, 2006 15:04")))
		ctx.Printf("  Mood:    %s\n", cli.FormatMood(e.MoodLevel))
		if len(e.Factors) > 0 {
			ctx.Printf("  Factors: %s\n", cli.FormatFactors(e.Factors))
		}
		if e.Note != "" {
			ctx.Printf("  Note:    %s\n", e.Note)
		}
		ctx.Printf("  ID:      %s\n", cli.MutedStyle.Render(e.ID))
	}
	return nil
}

type CalendarCmd struct {
	Month string `arg:"" optional:"" help:"Month to show (YYYY-MM). Defaults to the current month."`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	s, err := ctx.ReadSession(context.Background())
	if err != nil {
		return err
	}

	now := ctx.CurrentTime().In(s.Location)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.Location)
	if c.Month != "" {
		if first, err = utils.ParseMonthInLocation(c.Month, s.Location); err != nil {
			return err
		}
	}
	ctx.Print(RenderCalendar(first, s.Entries.Month(first.Year(), first.Month()), s.Location))
	return nil
}

// RenderCalendar draws a Monday-first month grid showing the latest mood
// level of each logged day.
func RenderCalendar(first time.Time, month []models.MoodEntry, loc *time.Location) string {
	latest := make(map[int]models.MoodEntry)
	for _, e := range month {
		d := e.Date.In(loc).Day()
		if prev, ok := latest[d]; !ok || !e.Date.Before(prev.Date) {
			latest[d] = e
		}
	}

	var b strings.Builder
	b.WriteString(cli.HeaderStyle.Render(first.Format("January 2006")) + "\n")
	b.WriteString(" Mo  Tu  We  Th  Fr  Sa  Su\n")

	offset := (int(first.Weekday()) + 6) % 7
	b.WriteString(strings.Repeat("    ", offset))
	days := first.AddDate(0, 1, -1).Day()
	for d := 1; d <= days; d++ {
		if e, ok := latest[d]; ok {
			b.WriteString(styleFor(e.MoodLevel).Render(fmt.Sprintf("%3.0f", e.MoodLevel)) + " ")
		} else {
			b.WriteString(cli.MutedStyle.Render(fmt.Sprintf("%3d", d)) + " ")
		}
		if (offset+d)%7 == 0 {
			b.WriteString("\n")
		}
	}
	if (offset+days)%7 != 0 {
		b.WriteString("\n")
	}
	b.WriteString(cli.MutedStyle.Render(fmt.Sprintf("%d of %d days logged", len(latest), days)) + "\n")
	return b.String()
}

func styleFor(level float64) lipgloss.Style {
	b, _ := models.BandFor(level)
	switch b.Name {
	case constants.BandVeryLow, constants.BandLow:
		return cli.NegativeStyle
	case constants.BandHigh, constants.BandVeryHigh:
		return cli.PositiveStyle
	default:
		return cli.HeaderStyle
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	if len([]rune(line)) > 60 {
		return string([]rune(line)[:59]) + "…"
	}
	return line
}
