package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
)

// draft holds the values bound to the log form.
type draft struct {
	mood   string
	helped []string
	hurt   []string
	note   string
}

func newEntryForm(d *draft) *huh.Form {
	d.mood = strconv.Itoa(int(constants.DefaultMoodLevel))

	moods := make([]huh.Option[string], 0, 10)
	for level := 10; level >= 1; level-- {
		label := strconv.Itoa(level)
		if b, ok := models.BandFor(float64(level)); ok {
			label = fmt.Sprintf("%d %s %s", level, b.Glyph, b.Name)
		}
		moods = append(moods, huh.NewOption(label, strconv.Itoa(level)))
	}
	names := make([]string, 0, len(models.FactorCatalog))
	for _, f := range models.FactorCatalog {
		names = append(names, f.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("How are you feeling today?").Options(moods...).Value(&d.mood),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().Title("What lifted your mood?").Options(huh.NewOptions(names...)...).Value(&d.helped),
			huh.NewMultiSelect[string]().Title("What weighed on it?").Options(huh.NewOptions(names...)...).Value(&d.hurt),
		),
		huh.NewGroup(
			huh.NewText().Title("Anything else?").CharLimit(constants.MaxNoteLength).Value(&d.note),
		),
	).WithShowHelp(true)
}

// entry builds the candidate. A factor marked both ways counts as negative.
func (d *draft) entry(date time.Time) (models.MoodEntry, error) {
	level, err := strconv.ParseFloat(d.mood, 64)
	if err != nil {
		return models.MoodEntry{}, fmt.Errorf("invalid mood %q: %w", d.mood, err)
	}
	factors := make(map[string]models.FactorImpact, len(d.helped)+len(d.hurt))
	for _, name := range d.helped {
		factors[name] = models.ImpactPositive
	}
	for _, name := range d.hurt {
		factors[name] = models.ImpactNegative
	}
	return models.MoodEntry{Date: date, MoodLevel: level, Factors: factors, Note: d.note}, nil
}
