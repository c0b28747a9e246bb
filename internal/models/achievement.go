package models

import (
	"time"

	"github.com/julianstephens/moodlit/internal/constants"
)

// Achievement is a static catalog item plus its unlock state. Unlocked is
// monotonic: once true it never flips back.
type Achievement struct {
	ID          string                    `json:"id"`
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Icon        string                    `json:"icon"`
	Type        constants.AchievementType `json:"type"`
	Color       string                    `json:"color"`
	Unlocked    bool                      `json:"unlocked"`
	UnlockedAt  *time.Time                `json:"unlocked_at,omitempty"`
}

// Catalog returns a fresh copy of the achievement catalog. week-warrior and
// monthly-master share the streak slot; only the first item of a type is
// ever unlocked.
func Catalog() []Achievement {
	return []Achievement{
		{
			ID:          constants.AchievementIDFirstStep,
			Title:       "First Step",
			Description: "Log your first mood entry",
			Icon:        "★",
			Type:        constants.AchievementFirstLog,
			Color:       "#FFD700",
		},
		{
			ID:          constants.AchievementIDWeekWarrior,
			Title:       "Week Warrior",
			Description: "Complete a 7-day logging streak",
			Icon:        "🔥",
			Type:        constants.AchievementStreak,
			Color:       "#FF8C00",
		},
		{
			ID:          constants.AchievementIDMonthlyMaster,
			Title:       "Monthly Master",
			Description: "Complete a 30-day logging streak",
			Icon:        "👑",
			Type:        constants.AchievementStreak,
			Color:       "#FFA500",
		},
		{
			ID:          constants.AchievementIDExerciseExplorer,
			Title:       "Exercise Explorer",
			Description: "Use the Exercise factor for the first time",
			Icon:        "🏃",
			Type:        constants.AchievementFactorUse,
			Color:       "#32CD32",
		},
		{
			ID:          constants.AchievementIDSleepTracker,
			Title:       "Sleep Tracker",
			Description: "Log sleep impact for 5 days in a row",
			Icon:        "🛏",
			Type:        constants.AchievementConsistency,
			Color:       "#9370DB",
		},
		{
			ID:          constants.AchievementIDMoodRange,
			Title:       "Mood Range",
			Description: "Experience the full range of moods",
			Icon:        "📊",
			Type:        constants.AchievementMoodVariety,
			Color:       "#4682B4",
		},
	}
}
