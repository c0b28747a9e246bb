package constants

import "time"

// MoodBand is one of the five fixed mood-level buckets
type MoodBand string

// AchievementType is the closed set of achievement categories
type AchievementType string

const (
	AppName            = "moodlit"
	DefaultKeyringUser = "database-connection"
	SessionKeyringUser = "session-user"
	DefaultConfigPath  = "~/.config/moodlit/moodlit.db"
	DefaultDevicePath  = "~/.config/moodlit/device.yaml"
	Version            = "v0.3.0"

	// DateFormat is the calendar-day key used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MonthFormat is used by the calendar view (YYYY-MM)
	MonthFormat = "2006-01"

	// DocstoreScheme selects the diskv document store backend
	DocstoreScheme = "docstore://"

	// Mood level bounds
	MinMoodLevel     = 1.0
	MaxMoodLevel     = 10.0
	DefaultMoodLevel = 5.0
	MaxNoteLength    = 2000

	// Analytics constants
	MonthWindowDays           = 30
	InsightMinWeekPoints      = 7
	ConsistencyMinPoints      = 2
	ConsistencyStdDevScale    = 3.0
	StabilityVeryStable       = 0.7
	StabilityModeratelyStable = 0.4

	// Achievement thresholds
	StreakWeekThreshold   = 7
	StreakMonthThreshold  = 30
	SleepStreakThreshold  = 5
	ExerciseFactor        = "Exercise"
	SleepFactor           = "Sleep"
	UnlockTokenTTL        = 3 * time.Second
	UnlockChannelCapacity = 8

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "moodlit-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "moodlit-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.moodlit"

	// Mood bands
	BandVeryLow  MoodBand = "Very Low"
	BandLow      MoodBand = "Low"
	BandNeutral  MoodBand = "Neutral"
	BandHigh     MoodBand = "High"
	BandVeryHigh MoodBand = "Very High"

	// Achievement types
	AchievementFirstLog    AchievementType = "firstLog"
	AchievementStreak      AchievementType = "streak"
	AchievementFactorUse   AchievementType = "factorUse"
	AchievementConsistency AchievementType = "consistency"
	AchievementMoodVariety AchievementType = "moodVariety"

	// Achievement ids
	AchievementIDFirstStep        = "first-step"
	AchievementIDWeekWarrior      = "week-warrior"
	AchievementIDMonthlyMaster    = "monthly-master"
	AchievementIDExerciseExplorer = "exercise-explorer"
	AchievementIDSleepTracker     = "sleep-tracker"
	AchievementIDMoodRange        = "mood-range"
)
