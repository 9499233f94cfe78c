package applications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nanofi/nanofi/internal/common"
	"github.com/nanofi/nanofi/internal/dbx"
	"github.com/nanofi/nanofi/internal/localstore"
	"github.com/nanofi/nanofi/internal/logging"
)

// StorageKey holds the JSON array of every application.
const StorageKey = "nanofi.vaultApplications"

// writeAttempts bounds the read-modify-write loop when another writer keeps
// winning the compare-and-set.
const writeAttempts = 5

var (
	ErrInvalidStatus   = errors.New("status must be approved or rejected")
	ErrAlreadyReviewed = errors.New("application already reviewed")
)

// errNoChange aborts an update without writing.
var errNoChange = errors.New("no change")

// Store persists applications as a single blob in local storage. Every write
// re-reads the blob and commits with compare-and-set, so concurrent writers
// in other processes never overwrite each other's records.
type Store struct {
	repo   localstore.Repository
	logger logging.Logger
	now    func() time.Time
	newID  func(time.Time) string

	attempts int
}

func NewStore(repo localstore.Repository, logger logging.Logger) *Store {
	return &Store{
		repo:   repo,
		logger: logger.With("module", "applications"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  newID,

		attempts: writeAttempts,
	}
}

// newID returns "app-<unix millis>-<9 hex chars>".
func newID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("app-%d-%s", t.UnixMilli(), suffix)
}

// Submit appends a pending application and returns its id.
func (s *Store) Submit(ctx context.Context, submittedBy string, formData FormData) (string, error) {
	now := s.now()
	app := Application{
		ID:          s.newID(now),
		SubmittedAt: now,
		Status:      StatusPending,
		SubmittedBy: submittedBy,
		FormData:    formData,
	}

	err := s.update(ctx, func(apps []Application) ([]Application, error) {
		return append(apps, app), nil
	})
	if err != nil {
		return "", fmt.Errorf("submit application: %w", err)
	}

	s.logger.Info(ctx, "application submitted", "id", app.ID, "submitted_by", submittedBy)
	return app.ID, nil
}

// ListAll returns every application in submission order. Unreadable or
// corrupt storage yields an empty list.
func (s *Store) ListAll(ctx context.Context) []Application {
	apps, _, err := s.load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "applications unreadable, returning empty list", "error", err)
		return []Application{}
	}
	return apps
}

func (s *Store) ListPending(ctx context.Context) []Application {
	return s.ListByStatus(ctx, StatusPending)
}

func (s *Store) ListByStatus(ctx context.Context, status Status) []Application {
	out := []Application{}
	for _, a := range s.ListAll(ctx) {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) GetByID(ctx context.Context, id string) (Application, bool) {
	for _, a := range s.ListAll(ctx) {
		if a.ID == id {
			return a, true
		}
	}
	return Application{}, false
}

// SetStatus records a review decision. It reports false, without touching
// storage, when no application has the given id. Only pending applications
// can be decided; anything else yields ErrAlreadyReviewed.
func (s *Store) SetStatus(ctx context.Context, id string, status Status, reviewer, notes string) (bool, error) {
	if !status.Decided() {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	found := false
	err := s.update(ctx, func(apps []Application) ([]Application, error) {
		found = false
		for i := range apps {
			if apps[i].ID != id {
				continue
			}
			found = true
			if apps[i].Status.Decided() {
				return nil, fmt.Errorf("%w: %s is %s", ErrAlreadyReviewed, id, apps[i].Status)
			}
			at := s.now()
			apps[i].Status = status
			apps[i].ReviewedBy = reviewer
			apps[i].ReviewedAt = &at
			apps[i].ReviewNotes = notes
			return apps, nil
		}
		return nil, errNoChange
	})
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	s.logger.Info(ctx, "application reviewed", "id", id, "status", status, "reviewer", reviewer)
	return true, nil
}

// SeedDemoData writes the demo fixture when no applications exist and
// reports whether it did.
func (s *Store) SeedDemoData(ctx context.Context) (bool, error) {
	seeded := false
	err := s.update(ctx, func(apps []Application) ([]Application, error) {
		if len(apps) > 0 {
			seeded = false
			return nil, errNoChange
		}
		seeded = true
		return DemoApplications(), nil
	})
	if err != nil {
		return false, fmt.Errorf("seed applications: %w", err)
	}
	if seeded {
		s.logger.Info(ctx, "demo applications seeded")
	}
	return seeded, nil
}

func (s *Store) Stats(ctx context.Context) Stats {
	var st Stats
	for _, a := range s.ListAll(ctx) {
		st.Total++
		switch a.Status {
		case StatusPending:
			st.Pending++
		case StatusApproved:
			st.Approved++
		case StatusRejected:
			st.Rejected++
		}
	}
	return st
}

// Reset removes every application.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.repo.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("reset applications: %w", err)
	}
	return nil
}

// load returns the stored list and its version. A corrupt blob is reported
// together with its version so a writer can replace it.
func (s *Store) load(ctx context.Context) ([]Application, int64, error) {
	raw, version, err := s.repo.GetVersioned(ctx, StorageKey)
	if err != nil {
		return nil, 0, err
	}
	if raw == nil {
		return []Application{}, version, nil
	}

	var apps []Application
	if err := json.Unmarshal(raw, &apps); err != nil {
		return nil, version, fmt.Errorf("decode %s: %w", StorageKey, err)
	}
	if apps == nil {
		apps = []Application{}
	}
	return apps, version, nil
}

// update applies fn to the current list and writes the result with
// compare-and-set, retrying on conflicts. fn returning errNoChange skips the
// write.
func (s *Store) update(ctx context.Context, fn func([]Application) ([]Application, error)) error {
	err := dbx.Retry(ctx, s.attempts, common.ErrVersionConflict, func(ctx context.Context) error {
		apps, version, err := s.load(ctx)
		if err != nil {
			if version == 0 {
				return err
			}
			s.logger.Warn(ctx, "replacing corrupt applications blob", "error", err)
			apps = []Application{}
		}

		next, err := fn(apps)
		if err != nil {
			return err
		}

		blob, err := encodeList(next)
		if err != nil {
			return fmt.Errorf("encode %s: %w", StorageKey, err)
		}
		_, err = s.repo.CompareAndSet(ctx, StorageKey, blob, version)
		return err
	})
	if errors.Is(err, errNoChange) {
		return nil
	}
	return err
}

// encodeList writes the list without HTML escaping. Raw sections are
// compacted but otherwise keep their characters.
func encodeList(apps []Application) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(apps); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
