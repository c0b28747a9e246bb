// Package analytics derives trends, factor impact, weekly averages and
// insights from a snapshot of the EntryStore. Every call recomputes from
// scratch and works offline; only journal mutations are connectivity gated.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/utils"
)

// Range selects the trend window.
type Range string

const (
	Week  Range = "week"
	Month Range = "month"
)

// ParseRange accepts "week" or "month".
func ParseRange(s string) (Range, error) {
	switch Range(strings.ToLower(strings.TrimSpace(s))) {
	case Week:
		return Week, nil
	case Month:
		return Month, nil
	}
	return "", fmt.Errorf("invalid range %q (expected week or month)", s)
}

// Point is one entry on a trend line.
type Point struct {
	Date      time.Time `json:"date"`
	MoodLevel float64   `json:"mood_level"`
}

// FactorScore counts how often a factor was marked positive or negative.
type FactorScore struct {
	Name     string `json:"name"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Net      int    `json:"net"`
}

// WeeklyAverage is the mean mood of the entries sharing an ISO week and a
// calendar month. A week that straddles two months yields two groups.
type WeeklyAverage struct {
	Year    int        `json:"year"`
	Week    int        `json:"week"`
	Month   time.Month `json:"month"`
	Label   string     `json:"label"`
	Average float64    `json:"average"`
	Count   int        `json:"count"`
}

// Source hands out EntryStore snapshots.
type Source interface {
	Snapshot() []models.MoodEntry
}

// Engine answers analytics queries against the snapshot that exists at call
// time. It holds no state of its own and is safe for concurrent use.
type Engine struct {
	src Source
	loc *time.Location
	now func() time.Time
}

func New(src Source, loc *time.Location, now func() time.Time) *Engine {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{src: src, loc: loc, now: now}
}

func (e *Engine) Trend(r Range) []Point {
	return Trend(e.src.Snapshot(), r, e.now(), e.loc)
}

func (e *Engine) FactorImpact() []FactorScore {
	return FactorImpact(e.src.Snapshot())
}

func (e *Engine) WeeklyAverages() []WeeklyAverage {
	return WeeklyAverages(e.src.Snapshot(), e.loc)
}

func (e *Engine) Insights() []string {
	return Insights(e.src.Snapshot(), e.now(), e.loc)
}

func (e *Engine) Consistency() float64 {
	return Consistency(e.src.Snapshot(), e.now(), e.loc)
}

// Trend returns the entries inside the window, ascending by date. Week is
// Monday 00:00 through the end of Sunday of the week containing now. Month
// is the 30 calendar days before today plus today itself.
func Trend(entries []models.MoodEntry, r Range, now time.Time, loc *time.Location) []Point {
	var points []Point
	switch r {
	case Week:
		start, end := utils.WeekBounds(now, loc)
		for _, e := range entries {
			if !e.Date.Before(start) && !e.Date.After(end) {
				points = append(points, Point{Date: e.Date, MoodLevel: e.MoodLevel})
			}
		}
	case Month:
		for _, e := range entries {
			ago := utils.DaysBetween(e.Date, now, loc)
			if ago >= 0 && ago <= constants.MonthWindowDays {
				points = append(points, Point{Date: e.Date, MoodLevel: e.MoodLevel})
			}
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

func countFactors(entries []models.MoodEntry) map[string]*FactorScore {
	counts := make(map[string]*FactorScore)
	for _, e := range entries {
		for name, impact := range e.Factors {
			s, ok := counts[name]
			if !ok {
				s = &FactorScore{Name: name}
				counts[name] = s
			}
			if impact == models.ImpactNegative {
				s.Negative++
			} else {
				s.Positive++
			}
		}
	}
	return counts
}

// FactorImpact scores every factor seen in entries, ordered by the absolute
// net impact descending. Ties are ordered by positive net before negative,
// then by name.
func FactorImpact(entries []models.MoodEntry) []FactorScore {
	counts := countFactors(entries)
	scores := make([]FactorScore, 0, len(counts))
	for _, s := range counts {
		s.Net = s.Positive - s.Negative
		scores = append(scores, *s)
	}
	sort.Slice(scores, func(i, j int) bool {
		ai, aj := abs(scores[i].Net), abs(scores[j].Net)
		if ai != aj {
			return ai > aj
		}
		if scores[i].Net != scores[j].Net {
			return scores[i].Net > scores[j].Net
		}
		return scores[i].Name < scores[j].Name
	})
	return scores
}

type weekKey struct {
	year  int
	week  int
	month time.Month
}

// WeeklyAverages groups entries by ISO week and month of the entry date and
// averages each group, ascending by (year, week, month).
func WeeklyAverages(entries []models.MoodEntry, loc *time.Location) []WeeklyAverage {
	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[weekKey]*acc)
	for _, e := range entries {
		d := e.Date.In(loc)
		year, week := d.ISOWeek()
		k := weekKey{year: year, week: week, month: d.Month()}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.sum += e.MoodLevel
		a.count++
	}

	out := make([]WeeklyAverage, 0, len(groups))
	for k, a := range groups {
		out = append(out, WeeklyAverage{
			Year:    k.year,
			Week:    k.week,
			Month:   k.month,
			Label:   fmt.Sprintf("W%d %s", k.week, k.month.String()[:3]),
			Average: a.sum / float64(a.count),
			Count:   a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Week != out[j].Week {
			return out[i].Week < out[j].Week
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// Insights lists the top positive factors, the top negative factors and,
// once the current week has seven entries, the week's average. Items whose
// precondition fails are left out.
func Insights(entries []models.MoodEntry, now time.Time, loc *time.Location) []string {
	counts := countFactors(entries)

	var insights []string
	if top := topFactors(counts, func(s *FactorScore) int { return s.Positive }); top != "" {
		insights = append(insights, "Top positive factors: "+top)
	}
	if top := topFactors(counts, func(s *FactorScore) int { return s.Negative }); top != "" {
		insights = append(insights, "Top negative factors: "+top)
	}

	week := Trend(entries, Week, now, loc)
	if len(week) >= constants.InsightMinWeekPoints {
		insights = append(insights, fmt.Sprintf("Your average mood for the past week is %.1f", mean(levels(week))))
	}
	return insights
}

// topFactors formats every factor tied at the maximum count as "Name (n)",
// sorted by name. It returns "" when the maximum is zero.
func topFactors(counts map[string]*FactorScore, count func(*FactorScore) int) string {
	best := 0
	for _, s := range counts {
		if c := count(s); c > best {
			best = c
		}
	}
	if best == 0 {
		return ""
	}
	var names []string
	for name, s := range counts {
		if count(s) == best {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s (%d)", n, best)
	}
	return strings.Join(parts, ", ")
}

// Consistency scores how steady the current week's moods are, from 0 to 1.
// Fewer than two points in the week scores 0.
func Consistency(entries []models.MoodEntry, now time.Time, loc *time.Location) float64 {
	week := Trend(entries, Week, now, loc)
	if len(week) < constants.ConsistencyMinPoints {
		return 0
	}
	normalized := stddev(levels(week)) / constants.ConsistencyStdDevScale
	normalized = math.Max(0, math.Min(1, normalized))
	return 1 - normalized
}

func levels(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.MoodLevel
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the population standard deviation.
func stddev(xs []float64) float64 {
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		sum += (x - m) * (x - m)
	}
	return math.Sqrt(sum / float64(len(xs)))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
