package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/utils"
)

var (
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	MutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	PositiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	NegativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	UnlockStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700"))
)

// FormatMood renders a level with its band glyph, e.g. "7.0 🌤 High".
func FormatMood(level float64) string {
	b, ok := models.BandFor(level)
	if !ok {
		return fmt.Sprintf("%.1f", level)
	}
	return fmt.Sprintf("%.1f %s %s", level, b.Glyph, b.Name)
}

// FormatFactors renders factors sorted by name as "+Sleep -Work".
func FormatFactors(factors map[string]models.FactorImpact) string {
	names := make([]string, 0, len(factors))
	for name := range factors {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		if factors[name] == models.ImpactNegative {
			parts = append(parts, NegativeStyle.Render("-"+name))
		} else {
			parts = append(parts, PositiveStyle.Render("+"+name))
		}
	}
	return strings.Join(parts, " ")
}

// ParseFactors reads "name[=impact]" flags. Catalog names are normalized to
// their canonical spelling.
func ParseFactors(specs []string) (map[string]models.FactorImpact, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	factors := make(map[string]models.FactorImpact, len(specs))
	for _, spec := range specs {
		name, impact, hasImpact := strings.Cut(spec, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid factor %q: name is empty", spec)
		}
		if info, ok := models.LookupFactor(name); ok {
			name = info.Name
		}
		value := models.ImpactPositive
		if hasImpact {
			switch strings.ToLower(strings.TrimSpace(impact)) {
			case "positive", "+", "pos":
			case "negative", "-", "neg":
				value = models.ImpactNegative
			default:
				return nil, fmt.Errorf("invalid impact %q for factor %s (use positive or negative)", impact, name)
			}
		}
		factors[name] = value
	}
	return factors, nil
}

// ParseDay returns the instant used for an entry logged on dateStr. An empty
// string means now; a past or future day is stamped at noon.
func ParseDay(dateStr string, now time.Time, loc *time.Location) (time.Time, error) {
	if dateStr == "" || dateStr == "today" {
		return now.In(loc), nil
	}
	day, err := utils.ParseDateInLocation(dateStr, loc)
	if err != nil {
		return time.Time{}, err
	}
	if utils.SameDay(day, now, loc) {
		return now.In(loc), nil
	}
	return day.Add(12 * time.Hour), nil
}

// Bar draws a proportional bar for value in [0,limit].
func Bar(value, limit float64, width int) string {
	if limit <= 0 || value <= 0 {
		return ""
	}
	n := int(value / limit * float64(width))
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}
