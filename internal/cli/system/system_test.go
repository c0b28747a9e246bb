package system

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/connectivity"
	"github.com/julianstephens/moodlit/internal/identity"
	"github.com/julianstephens/moodlit/internal/storage/sqlite"
)

var fixedNow = func() time.Time { return time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC) }

// newContext returns a context around an uninitialized SQLite store.
func newContext(t *testing.T) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	gokeyring.MockInit()
	t.Setenv(identity.EnvUser, "")

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "moodlit.db")
	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store:      sqlite.NewStore(dbPath),
		Identity:   identity.Static("u1"),
		Gate:       connectivity.NewGate(true),
		Location:   time.UTC,
		DevicePath: filepath.Join(dir, "device.yaml"),
		Now:        fixedNow,
		Out:        out,
	}
	t.Cleanup(ctx.Close)
	return ctx, out, dbPath
}

func initContext(t *testing.T) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	ctx, out, dbPath := newContext(t)
	if err := ctx.Store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	return ctx, out, dbPath
}
