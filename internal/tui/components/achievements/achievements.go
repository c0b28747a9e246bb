package achievements

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/moodlit/internal/models"
)

var (
	lockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	streakStyle = lipgloss.NewStyle().Bold(true)
)

// Render lists the catalog, unlocked items in their own color.
func Render(list []models.Achievement, streak int, loc *time.Location) string {
	var b strings.Builder
	unlocked := 0
	for _, a := range list {
		if a.Unlocked {
			unlocked++
		}
	}
	fmt.Fprintf(&b, "%s  %s\n\n",
		streakStyle.Render(fmt.Sprintf("🔥 %d day streak", streak)),
		descStyle.Render(fmt.Sprintf("%d/%d unlocked", unlocked, len(list))))

	for _, a := range list {
		if !a.Unlocked {
			fmt.Fprintf(&b, "%s\n", lockedStyle.Render("🔒 "+a.Title+"  "+a.Description))
			continue
		}
		title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(a.Color)).Render(a.Icon + " " + a.Title)
		when := ""
		if a.UnlockedAt != nil {
			when = " · " + a.UnlockedAt.In(loc).Format("Jan 02")
		}
		fmt.Fprintf(&b, "%s  %s\n", title, descStyle.Render(a.Description+when))
	}
	return b.String()
}
