package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/moodlit/internal/backup"
	"github.com/julianstephens/moodlit/internal/connectivity"
	"github.com/julianstephens/moodlit/internal/constants"
	apperrors "github.com/julianstephens/moodlit/internal/errors"
	"github.com/julianstephens/moodlit/internal/identity"
	"github.com/julianstephens/moodlit/internal/keyring"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/profile"
	"github.com/julianstephens/moodlit/internal/session"
	"github.com/julianstephens/moodlit/internal/storage"
	"github.com/julianstephens/moodlit/internal/storage/docstore"
	"github.com/julianstephens/moodlit/internal/storage/postgres"
	"github.com/julianstephens/moodlit/internal/storage/sqlite"
)

// EnvDBConnection supplies a PostgreSQL connection string out of band.
const EnvDBConnection = "MOODLIT_DB_CONNECTION"

// KeyringConfig tells OpenStore to read the connection string from the OS keyring.
const KeyringConfig = "keyring"

// Context is handed to every command's Run method.
type Context struct {
	Store      storage.Provider
	Identity   identity.Provider
	Gate       *connectivity.Gate
	Monitor    *connectivity.Monitor
	Location   *time.Location
	DevicePath string
	Notifier   session.Notifier
	Now        func() time.Time
	Out        io.Writer

	sess *session.Session
}

// Session opens the user's session on first use.
func (c *Context) Session(ctx context.Context) (*session.Session, error) {
	if c.sess != nil {
		return c.sess, nil
	}
	device, err := profile.LoadDevice(c.DevicePath)
	if err != nil {
		logger.Warn("Failed to read device configuration", "path", c.DevicePath, "error", err)
	}
	s, err := session.Open(ctx, session.Config{
		Store:    c.Store,
		Identity: c.Identity,
		Gate:     c.Gate,
		Device:   device,
		Location: c.Location,
		Now:      c.Now,
		Notifier: c.Notifier,
	})
	if err != nil {
		return nil, err
	}
	c.sess = s
	return s, nil
}

// SyncedSession opens the session and loads the user's entries.
func (c *Context) SyncedSession(ctx context.Context) (*session.Session, error) {
	s, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.Sync(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadSession is SyncedSession for read-only commands. Analytics never need
// connectivity, so when the store is unreachable the session is returned
// unsynced with a warning instead of an error.
func (c *Context) ReadSession(ctx context.Context) (*session.Session, error) {
	s, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.Sync(ctx); err != nil {
		if !errors.Is(err, apperrors.ErrNetworkUnavailable) {
			return nil, err
		}
		logger.Warn("Showing unsynced data", "error", err)
		c.Println("⚠ Offline: entries could not be synced, so results only cover what this session has loaded.")
	}
	return s, nil
}

// Close releases the session and the store.
func (c *Context) Close() {
	if c.sess != nil {
		c.sess.Close()
		c.sess = nil
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			logger.Warn("Failed to close store", "error", err)
		}
	}
}

// CurrentTime reads the injected clock, falling back to time.Now.
func (c *Context) CurrentTime() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Print(args ...any) {
	fmt.Fprint(c.out(), args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// PerformAutomaticBackup snapshots a SQLite journal and silently handles errors.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ResolveConfig turns the --config value into a backend selector: the
// keyring marker and an empty value fall back to MOODLIT_DB_CONNECTION and
// then the OS keyring. trusted is true when the string came from a secret
// store and may carry a password.
func ResolveConfig(config string) (resolved string, trusted bool, err error) {
	if config != KeyringConfig && config != "" {
		return config, false, nil
	}
	if env := strings.TrimSpace(os.Getenv(EnvDBConnection)); env != "" {
		return env, true, nil
	}
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, errors.New("no connection string found; use 'moodlit keyring set' or " + EnvDBConnection)
		}
		return "", false, err
	}
	return connStr, true, nil
}

// OpenStore selects the backend named by config: a PostgreSQL connection
// string, a docstore://<dir> document store or a SQLite file path.
func OpenStore(config string) (storage.Provider, error) {
	resolved, trusted, err := ResolveConfig(config)
	if err != nil {
		return nil, err
	}

	switch {
	case postgres.IsConnString(resolved) || strings.Contains(resolved, "host="):
		if valid, err := postgres.ValidateConnString(resolved); !valid {
			if !(trusted && errors.Is(err, postgres.ErrEmbeddedCredentials)) {
				return nil, err
			}
		}
		return postgres.New(resolved), nil
	case docstore.IsConfig(resolved):
		dir, err := ExpandPath(strings.TrimPrefix(resolved, constants.DocstoreScheme))
		if err != nil {
			return nil, err
		}
		if dir == "" {
			return nil, fmt.Errorf("docstore path is empty")
		}
		return docstore.New(dir), nil
	default:
		path, err := ExpandPath(resolved)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}
}

// NewGate builds the connectivity gate for store. Local backends are always
// online unless offline is set; a PostgreSQL backend gets a monitor that
// probes the database host.
func NewGate(store storage.Provider, config string, offline bool, timeout time.Duration) (*connectivity.Gate, *connectivity.Monitor) {
	if offline {
		return connectivity.NewGate(false), nil
	}
	gate := connectivity.NewGate(true)
	if _, ok := store.(*postgres.Store); !ok {
		return gate, nil
	}
	resolved, _, err := ResolveConfig(config)
	if err != nil {
		return gate, nil
	}
	addr, ok := postgres.ProbeAddress(resolved)
	if !ok {
		return gate, nil
	}
	return gate, connectivity.NewMonitor(gate, []string{addr}, timeout)
}
