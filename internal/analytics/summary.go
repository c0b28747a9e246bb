package analytics

import (
	"time"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/utils"
)

// Stability labels
const (
	VeryStable       = "very stable"
	ModeratelyStable = "moderately stable"
	Fluctuating      = "fluctuating"
)

// Summary bundles every derivation computed from one snapshot.
type Summary struct {
	Entries        int             `json:"entries"`
	WeekTrend      []Point         `json:"week_trend"`
	MonthTrend     []Point         `json:"month_trend"`
	Factors        []FactorScore   `json:"factors"`
	WeeklyAverages []WeeklyAverage `json:"weekly_averages"`
	Insights       []string        `json:"insights"`
	Consistency    float64         `json:"consistency"`
	Stability      string          `json:"stability,omitempty"`
	WeekOverWeek   *float64        `json:"week_over_week,omitempty"`
}

// WeekOverWeek returns the mean of the last 7 days (today included) minus
// the mean of the 7 days before that. It reports false when either window
// is empty.
func WeekOverWeek(entries []models.MoodEntry, now time.Time, loc *time.Location) (float64, bool) {
	var recent, previous []float64
	for _, e := range entries {
		ago := utils.DaysBetween(e.Date, now, loc)
		switch {
		case ago >= 0 && ago < 7:
			recent = append(recent, e.MoodLevel)
		case ago >= 7 && ago < 14:
			previous = append(previous, e.MoodLevel)
		}
	}
	if len(recent) == 0 || len(previous) == 0 {
		return 0, false
	}
	return mean(recent) - mean(previous), true
}

// StabilityLabel maps a consistency score to a label. A zero score has no
// label.
func StabilityLabel(consistency float64) (string, bool) {
	switch {
	case consistency == 0:
		return "", false
	case consistency > constants.StabilityVeryStable:
		return VeryStable, true
	case consistency > constants.StabilityModeratelyStable:
		return ModeratelyStable, true
	default:
		return Fluctuating, true
	}
}

func (e *Engine) WeekOverWeek() (float64, bool) {
	return WeekOverWeek(e.src.Snapshot(), e.now(), e.loc)
}

func (e *Engine) Stability() (string, bool) {
	return StabilityLabel(e.Consistency())
}

// Summary computes every derivation against a single snapshot.
func (e *Engine) Summary() Summary {
	entries := e.src.Snapshot()
	now := e.now()

	s := Summary{
		Entries:        len(entries),
		WeekTrend:      Trend(entries, Week, now, e.loc),
		MonthTrend:     Trend(entries, Month, now, e.loc),
		Factors:        FactorImpact(entries),
		WeeklyAverages: WeeklyAverages(entries, e.loc),
		Insights:       Insights(entries, now, e.loc),
		Consistency:    Consistency(entries, now, e.loc),
	}
	s.Stability, _ = StabilityLabel(s.Consistency)
	if delta, ok := WeekOverWeek(entries, now, e.loc); ok {
		s.WeekOverWeek = &delta
	}
	return s
}
