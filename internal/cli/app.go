package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nanofi/nanofi/internal/applications"
	"github.com/nanofi/nanofi/internal/catalog"
	"github.com/nanofi/nanofi/internal/config"
	"github.com/nanofi/nanofi/internal/filex"
	"github.com/nanofi/nanofi/internal/localstore"
	"github.com/nanofi/nanofi/internal/logging"
	"github.com/nanofi/nanofi/internal/review"
	"github.com/nanofi/nanofi/internal/session"
)

// App holds every component of the client. It is built once per process.
type App struct {
	config   *config.Config
	logger   logging.Logger
	storage  localstore.Storage
	closer   io.Closer
	sessions *session.Store
	apps     *applications.Store
	review   *review.Service
	catalog  *catalog.Catalog

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the storage profile named by the config and builds the stores
// on top of it. The caller must Close the App.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if c.StoragePath != localstore.MemoryPath {
		if _, err := filex.EnsureParentDir(c.StoragePath); err != nil {
			logger.Error(ctx, "error preparing profile directory", "path", c.StoragePath, "error", err)
			return nil, err
		}
	}

	st, err := localstore.Open(ctx, c.StoragePath)
	if err != nil {
		logger.Error(ctx, "error opening local storage", "path", c.StoragePath, "error", err)
		return nil, err
	}

	a, err := newApp(ctx, c, logger, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	a.closer = st
	return a, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, storage localstore.Storage) (*App, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(ctx, storage, logger, session.WithLoginDelay(c.LoginDelay))
	apps := applications.NewStore(storage, logger)

	a := &App{
		config:   c,
		logger:   logger,
		storage:  storage,
		sessions: sessions,
		apps:     apps,
		review:   review.NewService(sessions, apps, logger),
		catalog:  cat,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}

	if c.SeedOnStart {
		if _, err := apps.SeedDemoData(ctx); err != nil {
			return nil, fmt.Errorf("seed on start: %w", err)
		}
	}
	return a, nil
}

// Close releases the storage profile.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *App) isLoggedIn() bool {
	return a.sessions.IsAuthenticated()
}

// status renders the prompt suffix, e.g. "(spv@nanofi.io spv)".
func (a *App) status() string {
	u := a.sessions.CurrentUser()
	if u == nil {
		return ""
	}
	return fmt.Sprintf("(%s %s)", u.Email, u.Role)
}

// watchedPath returns the profile file to watch, or "" when the profile is
// not a file or watching is disabled.
func (a *App) watchedPath() string {
	if !a.config.WatchStorage {
		return ""
	}
	st, ok := a.storage.(*localstore.Store)
	if !ok || !st.IsFile() {
		return ""
	}
	return st.Path()
}

var errUsage = errors.New("usage")
