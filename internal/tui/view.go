package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	achievementsview "github.com/julianstephens/moodlit/internal/tui/components/achievements"
	"github.com/julianstephens/moodlit/internal/tui/components/stats"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateEntries:
		content = m.entries.View()
	case StateStats:
		content = stats.Render(m.sess.Analytics.Summary(), m.sess.Location)
	case StateAchievements:
		content = achievementsview.Render(m.sess.Achievements.Achievements(), m.sess.Achievements.Streak(m.sess.Entries.Snapshot()), m.sess.Location)
	case StateLogging:
		content = m.form.View()
	case StateConfirmReplace:
		content = m.viewConfirmReplace()
	}

	parts := []string{m.viewHeader()}
	if m.toast != nil {
		a := m.toast.Achievement
		parts = append(parts, toastStyle.Render(fmt.Sprintf("%s Achievement unlocked: %s", a.Icon, a.Title)))
	}
	parts = append(parts, docStyle.Render(content), m.viewStatus(), m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewHeader() string {
	tabs := make([]string, 0, tabCount+1)
	for i, title := range tabTitles {
		if m.tab == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	if m.sess.Gate.Online() {
		tabs = append(tabs, onlineStyle.Render("  ● online"))
	} else {
		tabs = append(tabs, offlineStyle.Render("  ● offline"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	switch {
	case m.syncing:
		return statusStyle.Render(m.spinner.View() + " Syncing...")
	case m.err != nil:
		return errorStyle.Render("Error: " + m.err.Error())
	default:
		return statusStyle.Render(m.status)
	}
}

func (m Model) viewConfirmReplace() string {
	if m.pending == nil {
		return ""
	}
	loc := m.sess.Location
	return lipgloss.JoinVertical(lipgloss.Left,
		dangerStyle.Render(fmt.Sprintf("You already logged %.1f on %s.", m.pending.Existing.MoodLevel, m.pending.Existing.Day(loc))),
		fmt.Sprintf("Replace it with %.1f?", m.pending.Candidate.MoodLevel),
		"",
		"[y] Replace",
		"[n] Keep",
	)
}
