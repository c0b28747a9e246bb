package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/moodlit/internal/analytics"
	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/constants"
)

type TrendCmd struct {
	Range string `help:"Window to show: week or month." default:"week" enum:"week,month"`
}

func (c *TrendCmd) Run(ctx *cli.Context) error {
	r, err := analytics.ParseRange(c.Range)
	if err != nil {
		return err
	}
	s, err := ctx.ReadSession(context.Background())
	if err != nil {
		return err
	}

	points := s.Analytics.Trend(r)
	ctx.Println(cli.HeaderStyle.Render(fmt.Sprintf("Mood trend (%s)", r)))
	if len(points) == 0 {
		ctx.Println("No entries in this window.")
		return nil
	}
	for _, p := range points {
		ctx.Printf("%s  %-20s %s\n", p.Date.In(s.Location).Format("Mon Jan 02"), cli.Bar(p.MoodLevel, constants.MaxMoodLevel, 20), cli.FormatMood(p.MoodLevel))
	}
	return nil
}

type FactorsCmd struct{}

func (c *FactorsCmd) Run(ctx *cli.Context) error {
	s, err := ctx.ReadSession(context.Background())
	if err != nil {
		return err
	}

	scores := s.Analytics.FactorImpact()
	ctx.Println(cli.HeaderStyle.Render("Factor impact"))
	if len(scores) == 0 {
		ctx.Println("No factors recorded yet.")
		return nil
	}
	for _, f := range scores {
		net := fmt.Sprintf("%+d", f.Net)
		switch {
		case f.Net > 0:
			net = cli.PositiveStyle.Render(net)
		case f.Net < 0:
			net = cli.NegativeStyle.Render(net)
		}
		ctx.Printf("%-12s %s  (+%d / -%d)\n", f.Name, net, f.Positive, f.Negative)
	}
	return nil
}

type WeeklyCmd struct{}

func (c *WeeklyCmd) Run(ctx *cli.Context) error {
	s, err := ctx.ReadSession(context.Background())
	if err != nil {
		return err
	}

	weeks := s.Analytics.WeeklyAverages()
	ctx.Println(cli.HeaderStyle.Render("Weekly averages"))
	if len(weeks) == 0 {
		ctx.Println("No entries yet.")
		return nil
	}
	for _, w := range weeks {
		ctx.Printf("%-8s %-20s %.1f  (%d entries)\n", w.Label, cli.Bar(w.Average, constants.MaxMoodLevel, 20), w.Average, w.Count)
	}
	return nil
}

type InsightsCmd struct{}

func (c *InsightsCmd) Run(ctx *cli.Context) error {
	s, err := ctx.ReadSession(context.Background())
	if err != nil {
		return err
	}

	insights := s.Analytics.Insights()
	ctx.Println(cli.HeaderStyle.Render("Insights"))
	if len(insights) == 0 {
		ctx.Println("Keep logging to unlock insights.")
		return nil
	}
	for _, line := range insights {
		ctx.Printf("• %s\n", line)
	}
	return nil
}

type ConsistencyCmd struct{}

func (c *ConsistencyCmd) Run(ctx *cli.Context) error {
	s, err := ctx.ReadSession(context.Background())
	if err != nil {
		return err
	}

	score := s.Analytics.Consistency()
	ctx.Printf("Consistency: %.0f%%", score*100)
	if label, ok := s.Analytics.Stability(); ok {
		ctx.Printf(" (%s)", label)
	}
	ctx.Println()
	return nil
}

type SummaryCmd struct {
	JSON bool `help:"Print the summary as JSON."`
}

func (c *SummaryCmd) Run(ctx *cli.Context) error {
	s, err := ctx.ReadSession(context.Background())
	if err != nil {
		return err
	}

	sum := s.Analytics.Summary()
	if c.JSON {
		data, err := json.MarshalIndent(sum, "", "  ")
		if err != nil {
			return err
		}
		ctx.Println(string(data))
		return nil
	}

	ctx.Println(cli.HeaderStyle.Render("Summary"))
	ctx.Printf("  Entries:        %d\n", sum.Entries)
	ctx.Printf("  This week:      %d logged\n", len(sum.WeekTrend))
	ctx.Printf("  Last 30 days:   %d logged\n", len(sum.MonthTrend))
	if sum.WeekOverWeek != nil {
		ctx.Printf("  Week over week: %+.1f\n", *sum.WeekOverWeek)
	}
	ctx.Printf("  Consistency:    %.0f%%", sum.Consistency*100)
	if sum.Stability != "" {
		ctx.Printf(" (%s)", sum.Stability)
	}
	ctx.Println()
	ctx.Printf("  Streak:         %d days\n", s.Achievements.Streak(s.Entries.Snapshot()))
	if len(sum.Factors) > 0 {
		top := sum.Factors[0]
		ctx.Printf("  Top factor:     %s (%+d)\n", top.Name, top.Net)
	}
	for _, line := range sum.Insights {
		ctx.Printf("  • %s\n", line)
	}
	return nil
}
