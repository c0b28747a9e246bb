package entries

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/moodlit/internal/models"
)

// Model lists entries latest first.
type Model struct {
	table   table.Model
	entries []models.MoodEntry
	loc     *time.Location
}

func columns(width int) []table.Column {
	note := width - 12 - 14 - 24 - 8
	if note < 10 {
		note = 10
	}
	return []table.Column{
		{Title: "Day", Width: 12},
		{Title: "Mood", Width: 14},
		{Title: "Factors", Width: 24},
		{Title: "Note", Width: note},
	}
}

func New(loc *time.Location, width, height int) Model {
	t := table.New(
		table.WithColumns(columns(width)),
		table.WithFocused(true),
		table.WithHeight(max(height, 3)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(s)
	return Model{table: t, loc: loc}
}

// SetEntries replaces the rows; the slice is not retained.
func (m *Model) SetEntries(entries []models.MoodEntry) {
	m.entries = append(m.entries[:0], entries...)
	sort.SliceStable(m.entries, func(i, j int) bool {
		return m.entries[i].Date.After(m.entries[j].Date)
	})

	rows := make([]table.Row, len(m.entries))
	for i, e := range m.entries {
		rows[i] = table.Row{
			e.Date.In(m.loc).Format("Mon Jan 02"),
			mood(e.MoodLevel),
			factors(e.Factors),
			firstLine(e.Note),
		}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *Model) SetSize(width, height int) {
	m.table.SetColumns(columns(width))
	m.table.SetWidth(width)
	m.table.SetHeight(max(height, 3))
}

// Selected returns the entry under the cursor.
func (m Model) Selected() (models.MoodEntry, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.entries) {
		return models.MoodEntry{}, false
	}
	return m.entries[i], true
}

func (m Model) Len() int {
	return len(m.entries)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.entries) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("240")).
			Render("No entries yet. Press n to log how you feel.")
	}
	return m.table.View()
}

func mood(level float64) string {
	if b, ok := models.BandFor(level); ok {
		return fmt.Sprintf("%.1f %s %s", level, b.Glyph, b.Name)
	}
	return fmt.Sprintf("%.1f", level)
}

func factors(f map[string]models.FactorImpact) string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		if f[name] == models.ImpactNegative {
			names[i] = "-" + name
		} else {
			names[i] = "+" + name
		}
	}
	return strings.Join(names, " ")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
