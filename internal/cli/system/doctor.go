package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/moodlit/internal/backup"
	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/connectivity"
	"github.com/julianstephens/moodlit/internal/keyring"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/storage/sqlite"
	"github.com/julianstephens/moodlit/internal/utils"
)

// schemaReporter is implemented by the SQL backends.
type schemaReporter interface {
	SchemaStatus(ctx context.Context) (current, latest int, err error)
}

// probeDialer lets tests replace the network probe.
var probeDialer connectivity.DialFunc

type DoctorCmd struct {
	SkipNetwork bool `help:"Skip the network reachability probe."`
}

type check struct {
	name string
	run  func() error
	// warn downgrades a failure to a warning.
	warn bool
	// needsDB skips the check when the store could not be loaded.
	needsDB bool
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{name: "Database reachable", run: func() error { return checkDBReachable(bg, ctx) }},
		{name: "Schema version", run: func() error { return checkSchemaVersion(bg, ctx) }, needsDB: true},
		{name: "Migrations complete", run: func() error { return checkMigrationsComplete(bg, ctx) }, needsDB: true},
		{name: "Backups present", run: func() error { return checkBackupsPresent(ctx) }, warn: true},
		{name: "Settings", run: func() error { return checkSettings(bg, ctx) }, needsDB: true},
		{name: "Entry records", run: func() error { return checkEntries(bg, ctx) }, needsDB: true, warn: true},
		{name: "Clock/timezone", run: func() error { return checkClockTimezone(ctx) }},
		{name: "Keyring", run: checkKeyring, warn: true},
		{name: "Signed in", run: func() error { return checkSignedIn(ctx) }, warn: true},
	}
	if !cmd.SkipNetwork {
		checks = append(checks, check{name: "Network", run: func() error { return checkNetwork(bg, ctx) }, warn: true, needsDB: true})
	}

	hasError := false
	dbReachable := false
	for i, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run()
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
			if i == 0 {
				dbReachable = true
			}
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(bg context.Context, ctx *cli.Context) error {
	if err := ctx.Store.Load(bg); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if s, ok := ctx.Store.(*sqlite.Store); ok {
		db := s.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRowContext(bg, "SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(bg context.Context, ctx *cli.Context) error {
	r, ok := ctx.Store.(schemaReporter)
	if !ok {
		return nil
	}
	current, latest, err := r.SchemaStatus(bg)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(bg context.Context, ctx *cli.Context) error {
	r, ok := ctx.Store.(schemaReporter)
	if !ok {
		return nil
	}
	current, latest, err := r.SchemaStatus(bg)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'moodlit backup create'")
	}
	return nil
}

func checkSettings(bg context.Context, ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings(bg)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	models.ApplyDefaultSettings(&settings)
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("invalid timezone setting %q", settings.Timezone)
	}
	if settings.ProbeTimeoutMs <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %d", settings.ProbeTimeoutMs)
	}
	return nil
}

// checkEntries decodes every stored entry for the signed-in user and reports
// records the journal would skip.
func checkEntries(bg context.Context, ctx *cli.Context) error {
	userID, ok := ctx.Identity.CurrentUserID()
	if !ok {
		return nil
	}
	docs, err := ctx.Store.ListEntries(bg, userID)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}
	bad := 0
	for _, d := range docs {
		if _, err := models.DecodeDocument(d.ID, d.Body); err != nil {
			bad++
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d entries are malformed and will be skipped", bad, len(docs))
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.CurrentTime()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Location == nil {
		return nil
	}
	if _, err := time.LoadLocation(ctx.Location.String()); err != nil {
		return fmt.Errorf("timezone %s cannot be loaded: %w", ctx.Location, err)
	}
	return nil
}

func checkKeyring() error {
	if !keyring.IsAvailable() {
		return errors.New("OS keyring is not available; sign-in and stored connection strings will not work")
	}
	return nil
}

func checkSignedIn(ctx *cli.Context) error {
	if _, ok := ctx.Identity.CurrentUserID(); !ok {
		return errors.New("not signed in - run 'moodlit login <user>'")
	}
	return nil
}

func checkNetwork(bg context.Context, ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings(bg)
	if err != nil {
		settings = models.DefaultSettings()
	}
	models.ApplyDefaultSettings(&settings)

	m := connectivity.NewMonitor(connectivity.NewGate(false), settings.ProbeHosts,
		time.Duration(settings.ProbeTimeoutMs)*time.Millisecond)
	if probeDialer != nil {
		m = m.WithDialer(probeDialer)
	}
	if !m.Probe(bg) {
		return fmt.Errorf("none of %v answered; remote operations will be refused", settings.ProbeHosts)
	}
	return nil
}
