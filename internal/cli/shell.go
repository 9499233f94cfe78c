package cli

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nanofi/nanofi/internal/localstore"
	"github.com/nanofi/nanofi/internal/session"
)

// Shell runs the interactive REPL. When the profile is a file and watching
// is enabled, a storage watcher runs alongside it and re-hydrates the
// session after changes made by other processes. Shell returns once the
// REPL ends.
func (a *App) Shell(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := a.sessions.Subscribe(func(st session.State) {
		a.logger.Debug(ctx, "session state changed", "authenticated", st.Authenticated)
	})
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)

	if path := a.watchedPath(); path != "" {
		w, err := localstore.NewWatcher(path, localstore.DefaultDebounce, a.logger, a.onStorageChange)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	g.Go(func() error {
		// ends the watcher too
		defer cancel()
		printlnFn("Welcome to NanoFi (type 'help' for commands)")
		runREPL(gctx, a, a.status, a.reader)
		return nil
	})

	return g.Wait()
}

// onStorageChange reloads the session and tells the user when another
// process logged in or out.
func (a *App) onStorageChange(ctx context.Context) {
	before := a.status()
	a.sessions.Hydrate(ctx)
	after := a.status()
	if before == after {
		return
	}

	if after == "" {
		printlnFn("\nSession ended in another window")
	} else {
		printlnFn(fmt.Sprintf("\nSession changed in another window: %s", after))
	}
}
