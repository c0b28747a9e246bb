package achievements

import (
	"sort"
	"time"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/utils"
)

// Input is what every rule sees on re-evaluation.
type Input struct {
	Entries     []models.MoodEntry
	UsedFactors map[string]struct{}
	Location    *time.Location
}

type rule func(in Input) bool

// rules is keyed by achievement category; each category unlocks the first
// catalog item of that type.
var rules = map[constants.AchievementType]rule{
	constants.AchievementFirstLog: func(in Input) bool {
		return len(in.Entries) == 1
	},
	constants.AchievementStreak: func(in Input) bool {
		return LongestRun(in.Entries, in.Location) >= constants.StreakWeekThreshold
	},
	constants.AchievementFactorUse: func(in Input) bool {
		_, ok := in.UsedFactors[constants.ExerciseFactor]
		return ok
	},
	constants.AchievementConsistency: func(in Input) bool {
		return factorRun(in.Entries, constants.SleepFactor, in.Location) >= constants.SleepStreakThreshold
	},
	constants.AchievementMoodVariety: func(in Input) bool {
		return len(BandsSeen(in.Entries)) == len(models.Bands)
	},
}

// distinctDays returns the sorted calendar days of entries, one per day.
func distinctDays(entries []models.MoodEntry, loc *time.Location) []time.Time {
	seen := make(map[string]struct{}, len(entries))
	var days []time.Time
	for _, e := range entries {
		key := e.Day(loc)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, utils.StartOfDay(e.Date, loc))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// runs walks the days ascending and calls visit with the length of the run
// ending at each day. A run grows when two days are exactly one calendar day
// apart and restarts at 1 otherwise.
func runs(days []time.Time, loc *time.Location, visit func(run int)) {
	run := 0
	for i, d := range days {
		if i > 0 && utils.DaysBetween(days[i-1], d, loc) == 1 {
			run++
		} else {
			run = 1
		}
		visit(run)
	}
}

// CurrentStreak is the length of the run of consecutive calendar days that
// ends at the most recent entry.
func CurrentStreak(entries []models.MoodEntry, loc *time.Location) int {
	current := 0
	runs(distinctDays(entries, loc), loc, func(run int) { current = run })
	return current
}

// LongestRun is the longest run of consecutive calendar days anywhere in
// entries.
func LongestRun(entries []models.MoodEntry, loc *time.Location) int {
	longest := 0
	runs(distinctDays(entries, loc), loc, func(run int) {
		if run > longest {
			longest = run
		}
	})
	return longest
}

func factorRun(entries []models.MoodEntry, factor string, loc *time.Location) int {
	var with []models.MoodEntry
	for _, e := range entries {
		if _, ok := e.Factors[factor]; ok {
			with = append(with, e)
		}
	}
	return LongestRun(with, loc)
}

// BandsSeen returns the set of mood bands hit by entries.
func BandsSeen(entries []models.MoodEntry) map[constants.MoodBand]struct{} {
	seen := make(map[constants.MoodBand]struct{})
	for _, e := range entries {
		if b, ok := models.BandFor(e.MoodLevel); ok {
			seen[b.Name] = struct{}{}
		}
	}
	return seen
}
