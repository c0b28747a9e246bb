package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/storage"
	"github.com/julianstephens/moodlit/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing SQLite journal before initialization."`
	Source string `help:"Journal to copy the signed-in user's data from (path, docstore:// dir or connection string)."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(bg); err != nil {
		return err
	}
	ctx.Printf("Initialized moodlit storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(bg, ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return errors.New("--force is only supported for the local SQLite journal")
	}
	dbPath := ctx.Store.GetConfigPath()
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	if c.Source != "" {
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// copyFrom copies settings and the signed-in user's entries, profile and
// unlocked achievements from the source journal.
func (c *InitCmd) copyFrom(bg context.Context, ctx *cli.Context) error {
	source, err := cli.OpenStore(c.Source)
	if err != nil {
		return err
	}
	if err := source.Load(bg); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	ctx.Println("  Migrating settings...")
	settings, err := source.GetSettings(bg)
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(bg, settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	userID, ok := ctx.Identity.CurrentUserID()
	if !ok {
		ctx.Println("  Not signed in: skipping entries, profile and achievements.")
		return nil
	}

	ctx.Println("  Migrating entries...")
	docs, err := source.ListEntries(bg, userID)
	if err != nil {
		return fmt.Errorf("failed to list entries from source: %w", err)
	}
	for _, d := range docs {
		if _, err := ctx.Store.WriteEntry(bg, userID, d.Date, d.Body); err != nil {
			return fmt.Errorf("failed to copy entry %s: %w", d.ID, err)
		}
	}
	ctx.Printf("    Migrated %d entries\n", len(docs))

	ctx.Println("  Migrating profile...")
	p, err := source.GetProfile(bg, userID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		ctx.Println("    No profile")
	case err != nil:
		return fmt.Errorf("failed to get profile from source: %w", err)
	default:
		if err := ctx.Store.SaveProfile(bg, p); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
	}

	ctx.Println("  Migrating achievements...")
	unlocked, err := source.GetUnlocked(bg, userID)
	if err != nil {
		return fmt.Errorf("failed to get achievements from source: %w", err)
	}
	for id, at := range unlocked {
		if err := ctx.Store.SaveUnlocked(bg, userID, id, at); err != nil {
			return fmt.Errorf("failed to save achievement %s: %w", id, err)
		}
	}
	ctx.Printf("    Migrated %d achievements\n", len(unlocked))
	return nil
}
