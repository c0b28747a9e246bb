package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/cli/account"
	"github.com/julianstephens/moodlit/internal/cli/backups"
	"github.com/julianstephens/moodlit/internal/cli/entries"
	"github.com/julianstephens/moodlit/internal/cli/settings"
	"github.com/julianstephens/moodlit/internal/cli/stats"
	"github.com/julianstephens/moodlit/internal/cli/system"
	"github.com/julianstephens/moodlit/internal/constants"
	apperrors "github.com/julianstephens/moodlit/internal/errors"
	"github.com/julianstephens/moodlit/internal/identity"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/notifier"
	"github.com/julianstephens/moodlit/internal/storage"
	"github.com/julianstephens/moodlit/internal/utils"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"SQLite path, docstore://<dir>, PostgreSQL connection string, or 'keyring'." env:"MOODLIT_CONFIG" default:"${default_config}"`
	Debug    bool   `help:"Log at debug level and mirror logs to stderr." env:"MOODLIT_DEBUG"`
	Timezone string `help:"IANA timezone overriding the stored setting." env:"MOODLIT_TIMEZONE"`
	Offline  bool   `help:"Treat the remote store as unreachable."`
	Device   string `help:"Device configuration file with questionnaire answers." env:"MOODLIT_DEVICE" default:"${default_device}"`

	Init         system.InitCmd        `cmd:"" help:"Initialize moodlit storage."`
	Tui          system.TuiCmd         `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Login        account.LoginCmd      `cmd:"" help:"Sign in as a user."`
	Logout       account.LogoutCmd     `cmd:"" help:"Sign out."`
	Whoami       account.WhoamiCmd     `cmd:"" help:"Show the signed-in user."`
	Log          entries.LogCmd        `cmd:"" help:"Log how you feel today."`
	Achievements stats.AchievementsCmd `cmd:"" help:"Show achievements and the current streak."`
	Notify       system.NotifyCmd      `cmd:"" help:"Send a reminder if today has no entry."`
	Doctor       system.DoctorCmd      `cmd:"" help:"Run health checks."`
	Purge        system.PurgeCmd       `cmd:"" help:"Remove replaced entries from the local journal."`
	DebugCmd     system.DebugCmd       `cmd:"" name:"debug" help:"Debugging commands." hidden:""`

	Entries struct {
		List     entries.ListCmd     `cmd:"" help:"List recent entries." default:"1"`
		Show     entries.ShowCmd     `cmd:"" help:"Show the entries for a day."`
		Calendar entries.CalendarCmd `cmd:"" help:"Show a month calendar."`
	} `cmd:"" help:"Browse logged entries."`

	Stats struct {
		Summary     stats.SummaryCmd     `cmd:"" help:"Show every statistic." default:"1"`
		Trend       stats.TrendCmd       `cmd:"" help:"Each entry's mood in the current week or trailing month."`
		Factors     stats.FactorsCmd     `cmd:"" help:"Positive, negative and net counts per factor."`
		Weekly      stats.WeeklyCmd      `cmd:"" help:"Weekly averages."`
		Insights    stats.InsightsCmd    `cmd:"" help:"Top positive and negative factors, plus this week's average."`
		Consistency stats.ConsistencyCmd `cmd:"" help:"Mood stability score."`
	} `cmd:"" help:"Mood analytics."`

	Profile struct {
		Show   account.ProfileShowCmd   `cmd:"" help:"Show your profile." default:"1"`
		Setup  account.ProfileSetupCmd  `cmd:"" help:"Complete your profile."`
		Update account.ProfileUpdateCmd `cmd:"" help:"Update profile fields."`
	} `cmd:"" help:"Manage your profile."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup."`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`

	Settings struct {
		Show settings.SettingsShowCmd `cmd:"" help:"Show current settings." default:"1"`
		Set  settings.SettingsSetCmd  `cmd:"" help:"Change settings."`
	} `cmd:"" help:"Manage settings."`

	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Delete the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage credentials in the OS keyring."`
}

// noStore lists commands that must run before, or without, a loaded store.
var noStore = []string{"init", "doctor", "keyring", "debug db-path"}

func needsLoad(command string) bool {
	for _, prefix := range noStore {
		if strings.HasPrefix(command, prefix) {
			return false
		}
	}
	return true
}

func parserOptions() []kong.Option {
	return []kong.Option{
		kong.Name(constants.AppName),
		kong.Description("A mood journal for the terminal"),
		kong.UsageOnError(),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
			"default_device": constants.DefaultDevicePath,
		},
	}
}

func main() {
	kctx := kong.Parse(&CLI, parserOptions()...)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir(CLI.Config)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	appCtx, err := newContext(kctx.Command())
	if err != nil {
		apperrors.Fatal(err)
	}

	err = kctx.Run(appCtx)
	appCtx.Close()
	apperrors.Fatal(err)
}

func newContext(command string) (*cli.Context, error) {
	bg := context.Background()
	isKeyring := strings.HasPrefix(command, "keyring")

	var loc *time.Location
	if CLI.Timezone != "" {
		l, err := utils.LoadLocation(CLI.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid --timezone %q: %w", CLI.Timezone, err)
		}
		loc = l
	}
	device, err := cli.ExpandPath(CLI.Device)
	if err != nil {
		return nil, err
	}

	appCtx := &cli.Context{
		Identity:   identity.Keyring{},
		Location:   loc,
		DevicePath: device,
		Notifier:   notifier.New(),
		Out:        os.Stdout,
	}

	store, err := cli.OpenStore(CLI.Config)
	if err != nil {
		// Keyring commands are how a missing connection string gets fixed.
		if isKeyring {
			return appCtx, nil
		}
		return nil, err
	}
	appCtx.Store = store

	timeout := time.Duration(models.DefaultSettings().ProbeTimeoutMs) * time.Millisecond
	if needsLoad(command) {
		if err := store.Load(bg); err != nil {
			store.Close()
			return nil, err
		}
		timeout = probeTimeout(bg, store)
	}

	appCtx.Gate, appCtx.Monitor = cli.NewGate(store, CLI.Config, CLI.Offline, timeout)
	if appCtx.Monitor != nil && !strings.HasPrefix(command, "tui") {
		if !appCtx.Monitor.Refresh(bg) {
			logger.Warn("Remote database unreachable, running offline")
		}
	}

	logger.Debug("Context ready", "command", command, "config", store.GetConfigPath(), "online", appCtx.Gate.Online())
	return appCtx, nil
}

func probeTimeout(ctx context.Context, store storage.Provider) time.Duration {
	settings, err := store.GetSettings(ctx)
	if err != nil {
		settings = models.DefaultSettings()
	}
	models.ApplyDefaultSettings(&settings)
	return time.Duration(settings.ProbeTimeoutMs) * time.Millisecond
}

// configDir is where logs go: next to a SQLite journal, otherwise the
// default config directory.
func configDir(config string) string {
	base := constants.DefaultConfigPath
	if config != "" && config != cli.KeyringConfig && !strings.Contains(config, "://") && !strings.Contains(config, "host=") {
		base = config
	}
	path, err := cli.ExpandPath(base)
	if err != nil {
		return "."
	}
	return filepath.Dir(path)
}
