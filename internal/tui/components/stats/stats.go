// Package stats renders the analytics summary for the dashboard.
package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/moodlit/internal/analytics"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).MarginTop(1)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	upStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	downStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
)

const (
	barWidth    = 20
	maxFactors  = 5
	recentWeeks = 4
)

// Render lays out s as stacked sections.
func Render(s analytics.Summary, loc *time.Location) string {
	if s.Entries == 0 {
		return mutedStyle.Render("Log a few entries to see your trends.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Last 7 days"))
	b.WriteString("\n")
	if len(s.WeekTrend) == 0 {
		b.WriteString(mutedStyle.Render("  nothing logged this week"))
		b.WriteString("\n")
	}
	for _, p := range s.WeekTrend {
		fmt.Fprintf(&b, "  %s %s %.1f\n", p.Date.In(loc).Format("Mon Jan 02"), barStyle.Render(bar(p.MoodLevel, 10)), p.MoodLevel)
	}
	if s.WeekOverWeek != nil {
		delta := *s.WeekOverWeek
		style := upStyle
		if delta < 0 {
			style = downStyle
		}
		fmt.Fprintf(&b, "  vs previous week: %s\n", style.Render(fmt.Sprintf("%+.1f", delta)))
	}

	if len(s.Factors) > 0 {
		b.WriteString(titleStyle.Render("Factors"))
		b.WriteString("\n")
		for i, f := range s.Factors {
			if i == maxFactors {
				break
			}
			fmt.Fprintf(&b, "  %-12s %s %s\n", f.Name, upStyle.Render(fmt.Sprintf("+%d", f.Positive)), downStyle.Render(fmt.Sprintf("-%d", f.Negative)))
		}
	}

	if len(s.WeeklyAverages) > 0 {
		b.WriteString(titleStyle.Render("Weekly averages"))
		b.WriteString("\n")
		weeks := s.WeeklyAverages
		if len(weeks) > recentWeeks {
			weeks = weeks[len(weeks)-recentWeeks:]
		}
		for _, w := range weeks {
			fmt.Fprintf(&b, "  %-8s %s %.1f\n", w.Label, barStyle.Render(bar(w.Average, 10)), w.Average)
		}
	}

	if len(s.Insights) > 0 {
		b.WriteString(titleStyle.Render("Insights"))
		b.WriteString("\n")
		for _, line := range s.Insights {
			fmt.Fprintf(&b, "  • %s\n", line)
		}
	}

	b.WriteString(titleStyle.Render("Consistency"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %.0f%%", s.Consistency)
	if s.Stability != "" {
		fmt.Fprintf(&b, " %s", mutedStyle.Render("("+s.Stability+")"))
	}
	b.WriteString("\n")

	return b.String()
}

func bar(value, limit float64) string {
	if value <= 0 || limit <= 0 {
		return ""
	}
	n := int(value / limit * barWidth)
	n = min(max(n, 1), barWidth)
	return strings.Repeat("█", n) + strings.Repeat(" ", barWidth-n)
}
