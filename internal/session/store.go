package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nanofi/nanofi/internal/localstore"
	"github.com/nanofi/nanofi/internal/logging"
)

// Local storage keys owned by the session store.
const (
	KeyAuthenticated = "nanofi.isAuthenticated"
	KeyUser          = "nanofi.user"
)

// DefaultLoginDelay emulates the round trip of a real sign-in request.
const DefaultLoginDelay = time.Second

// State is a snapshot of the session.
type State struct {
	Authenticated bool
	User          *User
}

// Store holds the simulated session. It is created once per process and
// shared by reference; all methods are safe for concurrent use.
type Store struct {
	storage  localstore.Storage
	logger   logging.Logger
	accounts []Account
	delay    time.Duration
	sleep    func(ctx context.Context, d time.Duration) error

	mu     sync.RWMutex
	state  State
	gen    uint64 // bumped on every local Login/Logout
	subs   map[int]func(State)
	nextID int
}

// Option customises a Store.
type Option func(*Store)

// WithLoginDelay overrides DefaultLoginDelay. Zero disables the delay.
func WithLoginDelay(d time.Duration) Option {
	return func(s *Store) { s.delay = d }
}

// WithAccounts replaces the demo credential table.
func WithAccounts(accounts []Account) Option {
	return func(s *Store) { s.accounts = accounts }
}

// NewStore creates the session store and hydrates it from storage before
// returning.
func NewStore(ctx context.Context, storage localstore.Storage, logger logging.Logger, opts ...Option) *Store {
	s := &Store{
		storage:  storage,
		logger:   logger.With("module", "session"),
		accounts: DemoAccounts,
		delay:    DefaultLoginDelay,
		sleep:    sleepCtx,
		subs:     make(map[int]func(State)),
	}
	for _, o := range opts {
		o(s)
	}
	s.Hydrate(ctx)
	return s
}

// Hydrate reloads the session from storage. An absent or non-"true" flag, or
// a missing or unreadable user blob, yields an unauthenticated session;
// problems are logged and never returned. Subscribers are notified when the
// state actually changes. A read that overlaps a local Login or Logout is
// dropped, since the local change is newer.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	next := s.read(ctx)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.logger.Debug(ctx, "hydrate superseded by local session change")
		return
	}
	changed := !sameState(s.state, next)
	s.state = next
	s.mu.Unlock()

	if changed {
		s.notify(next)
	}
}

func (s *Store) read(ctx context.Context) State {
	flag, err := s.storage.Get(ctx, KeyAuthenticated)
	if err != nil {
		s.logger.Warn(ctx, "session flag unreadable, treating as logged out", "error", err)
		return State{}
	}
	if string(flag) != "true" {
		return State{}
	}

	raw, err := s.storage.Get(ctx, KeyUser)
	if err != nil {
		s.logger.Warn(ctx, "session user unreadable, treating as logged out", "error", err)
		return State{}
	}
	if raw == nil {
		return State{}
	}

	var u User
	if err := json.Unmarshal(raw, &u); err != nil || u.Email == "" || !u.Role.Valid() {
		s.logger.Warn(ctx, "session user corrupt, treating as logged out", "error", err)
		return State{}
	}
	return State{Authenticated: true, User: &u}
}

// Login waits for the simulated latency and then checks the pair against the
// account table. Invalid credentials are reported as (false, nil) and leave
// the current session untouched. An error means the wait was cancelled or the
// session could not be persisted.
func (s *Store) Login(ctx context.Context, email string, password []byte) (bool, error) {
	if err := s.sleep(ctx, s.delay); err != nil {
		return false, err
	}

	u, ok := lookup(s.accounts, email, password)
	if !ok {
		s.logger.Info(ctx, "login rejected", "email", email)
		return false, nil
	}

	blob, err := json.Marshal(u)
	if err != nil {
		return false, fmt.Errorf("encode session user: %w", err)
	}

	err = s.storage.WithTx(ctx, func(ctx context.Context, repo localstore.Repository) error {
		if err := repo.Set(ctx, KeyAuthenticated, []byte("true")); err != nil {
			return err
		}
		return repo.Set(ctx, KeyUser, blob)
	})
	if err != nil {
		return false, fmt.Errorf("persist session: %w", err)
	}

	next := State{Authenticated: true, User: &u}
	s.mu.Lock()
	s.state = next
	s.gen++
	s.mu.Unlock()
	s.notify(next)

	s.logger.Info(ctx, "login succeeded", "email", u.Email, "role", u.Role)
	return true, nil
}

// Logout clears the in-memory session and both storage keys. It is
// idempotent. The in-memory state is cleared even when storage fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	wasAuthenticated := s.state.Authenticated
	s.state = State{}
	s.gen++
	s.mu.Unlock()

	err := s.storage.WithTx(ctx, func(ctx context.Context, repo localstore.Repository) error {
		return errors.Join(repo.Delete(ctx, KeyAuthenticated), repo.Delete(ctx, KeyUser))
	})

	if wasAuthenticated {
		s.notify(State{})
		s.logger.Info(ctx, "logged out")
	}
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Reset logs out and drops every subscriber. Intended for tests and explicit
// re-initialisation.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	clear(s.subs)
	s.mu.Unlock()
	return s.Logout(ctx)
}

// State returns a snapshot of the session.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

func (s *Store) IsAuthenticated() bool {
	return s.State().Authenticated
}

// CurrentUser returns the logged-in user, or nil.
func (s *Store) CurrentUser() *User {
	return s.State().User
}

// Subscribe registers fn to be called with the new state after every change.
// Calls happen synchronously on the goroutine that changed the state. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(st State) {
	s.mu.RLock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(copyState(st))
	}
}

func copyState(st State) State {
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func sameState(a, b State) bool {
	if a.Authenticated != b.Authenticated {
		return false
	}
	if a.User == nil || b.User == nil {
		return a.User == b.User
	}
	return *a.User == *b.User
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
