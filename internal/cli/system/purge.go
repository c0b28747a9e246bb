package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/storage/sqlite"
)

// PurgeCmd drops soft-deleted entries from the local journal. Replaced and
// deleted entries are kept on disk until purged so backups can recover them.
type PurgeCmd struct {
	OlderThan time.Duration `help:"Only purge entries deleted longer ago than this." default:"720h"`
}

func (c *PurgeCmd) Run(ctx *cli.Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return errors.New("purge is only available for the local SQLite journal")
	}
	if c.OlderThan < 0 {
		return fmt.Errorf("--older-than must not be negative")
	}
	n, err := store.PurgeDeletedEntries(context.Background(), ctx.CurrentTime().Add(-c.OlderThan))
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	ctx.Printf("✓ Purged %d deleted entries\n", n)
	return nil
}
