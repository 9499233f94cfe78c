package applications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanofi/nanofi/internal/common"
	"github.com/nanofi/nanofi/internal/localstore"
	"github.com/nanofi/nanofi/internal/logging"
)

func newTestStore(t *testing.T) (*Store, *localstore.MemoryRepository) {
	t.Helper()
	repo := localstore.NewMemoryRepository()
	return NewStore(repo, logging.Discard()), repo
}

func sampleForm(t *testing.T) FormData {
	t.Helper()
	fd, err := Wrap(
		InventorInfo{Name: "Ada", Email: "ada@example.com"},
		PatentInfo{Title: "Analytical engine", PatentNumber: "GB-1843"},
	)
	require.NoError(t, err)
	return fd
}

func TestSubmit_GetByIDRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	form := sampleForm(t)

	before := time.Now().UTC()
	id, err := s.Submit(ctx, "demo@nanofi.io", form)
	require.NoError(t, err)
	assert.Regexp(t, `^app-\d+-[0-9a-f]{9}$`, id)

	got, ok := s.GetByID(ctx, id)
	require.True(t, ok)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, "demo@nanofi.io", got.SubmittedBy)
	assert.False(t, got.SubmittedAt.Before(before), "submittedAt %v earlier than %v", got.SubmittedAt, before)
	assert.Empty(t, got.ReviewedBy)
	assert.Nil(t, got.ReviewedAt)
	if diff := cmp.Diff(form, got.FormData); diff != "" {
		t.Fatalf("form data mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_AppendsInOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := range 3 {
		id, err := s.Submit(ctx, fmt.Sprintf("user%d@nanofi.io", i), nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	all := s.ListAll(ctx)
	require.Len(t, all, 3)
	for i, a := range all {
		assert.Equal(t, ids[i], a.ID)
	}
}

func TestSubmit_IDsAreUnique(t *testing.T) {
	s, _ := newTestStore(t)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	seen := map[string]struct{}{}
	for range 50 {
		id, err := s.Submit(context.Background(), "demo@nanofi.io", nil)
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestListPending_AfterOneApproval(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, err := s.Submit(ctx, "demo@nanofi.io", nil)
	require.NoError(t, err)
	b, err := s.Submit(ctx, "investor@nanofi.io", nil)
	require.NoError(t, err)

	ok, err := s.SetStatus(ctx, a, StatusApproved, "spv@nanofi.io", "")
	require.NoError(t, err)
	require.True(t, ok)

	pending := s.ListPending(ctx)
	require.Len(t, pending, 1)
	assert.Equal(t, b, pending[0].ID)

	approved := s.ListByStatus(ctx, StatusApproved)
	require.Len(t, approved, 1)
	assert.Equal(t, a, approved[0].ID)
	assert.Empty(t, s.ListByStatus(ctx, StatusRejected))
}

func TestSetStatus(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	reviewedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	id, err := s.Submit(ctx, "demo@nanofi.io", sampleForm(t))
	require.NoError(t, err)

	s.now = func() time.Time { return reviewedAt }
	ok, err := s.SetStatus(ctx, id, StatusRejected, "reviewer@nanofi.io", "prior art found")
	require.NoError(t, err)
	require.True(t, ok)

	got, _ := s.GetByID(ctx, id)
	assert.Equal(t, StatusRejected, got.Status)
	assert.Equal(t, "reviewer@nanofi.io", got.ReviewedBy)
	assert.Equal(t, "prior art found", got.ReviewNotes)
	require.NotNil(t, got.ReviewedAt)
	assert.True(t, reviewedAt.Equal(*got.ReviewedAt))
}

func TestSetStatus_UnknownIDLeavesStorageUntouched(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()

	_, err := s.Submit(ctx, "demo@nanofi.io", nil)
	require.NoError(t, err)
	blob, version, err := repo.GetVersioned(ctx, StorageKey)
	require.NoError(t, err)

	ok, err := s.SetStatus(ctx, "app-missing", StatusApproved, "spv@nanofi.io", "")
	require.NoError(t, err)
	assert.False(t, ok)

	after, afterVersion, err := repo.GetVersioned(ctx, StorageKey)
	require.NoError(t, err)
	assert.Equal(t, version, afterVersion)
	assert.Equal(t, blob, after)
}

func TestSetStatus_UnknownIDOnEmptyStorage(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()

	ok, err := s.SetStatus(ctx, "app-missing", StatusApproved, "spv@nanofi.io", "")
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := repo.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	id, err := s.Submit(ctx, "demo@nanofi.io", nil)
	require.NoError(t, err)

	for _, st := range []Status{StatusPending, "archived", ""} {
		ok, err := s.SetStatus(ctx, id, st, "spv@nanofi.io", "")
		require.ErrorIs(t, err, ErrInvalidStatus)
		assert.False(t, ok)
	}

	got, _ := s.GetByID(ctx, id)
	assert.Equal(t, StatusPending, got.Status)
}

func TestSetStatus_AlreadyReviewed(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	id, err := s.Submit(ctx, "demo@nanofi.io", nil)
	require.NoError(t, err)

	ok, err := s.SetStatus(ctx, id, StatusApproved, "spv@nanofi.io", "ok")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.SetStatus(ctx, id, StatusRejected, "reviewer@nanofi.io", "changed my mind")
	require.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.False(t, ok)

	got, _ := s.GetByID(ctx, id)
	assert.Equal(t, StatusApproved, got.Status)
	assert.Equal(t, "spv@nanofi.io", got.ReviewedBy)
}

func TestListAll_EmptyAndCorruptStorage(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		blob []byte
	}{
		{name: "absent"},
		{name: "not json", blob: []byte("{broken")},
		{name: "wrong shape", blob: []byte(`{"id":"x"}`)},
		{name: "null", blob: []byte("null")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo := newTestStore(t)
			if tt.blob != nil {
				require.NoError(t, repo.Set(ctx, StorageKey, tt.blob))
			}

			all := s.ListAll(ctx)
			assert.NotNil(t, all)
			assert.Empty(t, all)
			assert.Empty(t, s.ListPending(ctx))
			_, ok := s.GetByID(ctx, "x")
			assert.False(t, ok)
		})
	}
}

func TestSubmit_ReplacesCorruptBlob(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, StorageKey, []byte("{broken")))

	id, err := s.Submit(ctx, "demo@nanofi.io", nil)
	require.NoError(t, err)

	all := s.ListAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, id, all[0].ID)
}

func TestListAll_RoundTripsStoredList(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()

	want := DemoApplications()
	blob, err := json.Marshal(want)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, StorageKey, blob))

	if diff := cmp.Diff(want, s.ListAll(ctx)); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_PreservesUnknownSections(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	form := sampleForm(t)
	form["licensingTerms"] = json.RawMessage(`{"exclusive":true,"regions":["EU","US"]}`)

	id, err := s.Submit(ctx, "demo@nanofi.io", form)
	require.NoError(t, err)

	got, _ := s.GetByID(ctx, id)
	assert.JSONEq(t, `{"exclusive":true,"regions":["EU","US"]}`, string(got.FormData["licensingTerms"]))
}

func TestSubmit_UnknownSectionKeepsCharacters(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()

	form := sampleForm(t)
	form["notes"] = json.RawMessage(`{ "note": "a<b & c>d" }`)

	id, err := s.Submit(ctx, "demo@nanofi.io", form)
	require.NoError(t, err)

	got, _ := s.GetByID(ctx, id)
	assert.Equal(t, `{"note":"a<b & c>d"}`, string(got.FormData["notes"]))

	raw, err := repo.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `\u003c`)
	assert.NotContains(t, string(raw), "\n")
}

func TestSeedDemoData(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	seeded, err := s.SeedDemoData(ctx)
	require.NoError(t, err)
	require.True(t, seeded)

	all := s.ListAll(ctx)
	require.Len(t, all, 5)
	assert.Len(t, s.ListPending(ctx), 3)
	assert.Len(t, s.ListByStatus(ctx, StatusApproved), 2)
	if diff := cmp.Diff(DemoApplications(), all); diff != "" {
		t.Fatalf("seed mismatch (-want +got):\n%s", diff)
	}

	seeded, err = s.SeedDemoData(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Len(t, s.ListAll(ctx), 5)
}

func TestSeedDemoData_NoOpWhenNotEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, err := s.Submit(ctx, "demo@nanofi.io", nil)
	require.NoError(t, err)

	seeded, err := s.SeedDemoData(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	all := s.ListAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, id, all[0].ID)
}

func TestStatsAndReset(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.SeedDemoData(ctx)
	require.NoError(t, err)
	ok, err := s.SetStatus(ctx, "app-demo-0001", StatusRejected, "spv@nanofi.io", "")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, Stats{Total: 5, Pending: 2, Approved: 2, Rejected: 1}, s.Stats(ctx))

	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, Stats{}, s.Stats(ctx))
	assert.Empty(t, s.ListAll(ctx))
}

func TestSubmit_ConcurrentWritersKeepEveryRecord(t *testing.T) {
	s, _ := newTestStore(t)
	s.attempts = 1000
	ctx := context.Background()

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Submit(ctx, fmt.Sprintf("user%d@nanofi.io", i), nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Len(t, s.ListAll(ctx), writers)
}

// conflictingRepo loses the first n compare-and-set calls to a writer that
// appends its own record.
type conflictingRepo struct {
	*localstore.MemoryRepository
	n     int32
	calls atomic.Int32
}

func (r *conflictingRepo) CompareAndSet(ctx context.Context, key string, value []byte, version int64) (int64, error) {
	if r.calls.Add(1) <= r.n {
		raw, _ := r.MemoryRepository.Get(ctx, key)
		var apps []Application
		_ = json.Unmarshal(raw, &apps)
		apps = append(apps, Application{ID: fmt.Sprintf("app-other-%d", r.calls.Load()), Status: StatusPending})
		blob, _ := json.Marshal(apps)
		_ = r.MemoryRepository.Set(ctx, key, blob)
	}
	return r.MemoryRepository.CompareAndSet(ctx, key, value, version)
}

func TestSubmit_RetriesOnConflict(t *testing.T) {
	repo := &conflictingRepo{MemoryRepository: localstore.NewMemoryRepository(), n: 2}
	s := NewStore(repo, logging.Discard())
	ctx := context.Background()

	id, err := s.Submit(ctx, "demo@nanofi.io", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, repo.calls.Load())

	all := s.ListAll(ctx)
	require.Len(t, all, 3)
	assert.Equal(t, id, all[2].ID)
}

func TestSubmit_GivesUpAfterBoundedConflicts(t *testing.T) {
	repo := &conflictingRepo{MemoryRepository: localstore.NewMemoryRepository(), n: 100}
	s := NewStore(repo, logging.Discard())

	_, err := s.Submit(context.Background(), "demo@nanofi.io", nil)
	require.ErrorIs(t, err, common.ErrVersionConflict)
	assert.EqualValues(t, writeAttempts, repo.calls.Load())
}

type brokenRepo struct {
	*localstore.MemoryRepository
}

func (brokenRepo) GetVersioned(context.Context, string) ([]byte, int64, error) {
	return nil, 0, errors.New("disk I/O error")
}

func TestReadFailure_DegradesToEmptyButWritesFail(t *testing.T) {
	s := NewStore(brokenRepo{localstore.NewMemoryRepository()}, logging.Discard())
	ctx := context.Background()

	assert.Empty(t, s.ListAll(ctx))
	assert.Equal(t, Stats{}, s.Stats(ctx))

	_, err := s.Submit(ctx, "demo@nanofi.io", nil)
	require.Error(t, err)

	_, err = s.SeedDemoData(ctx)
	require.Error(t, err)
}

func TestStore_OverSQLiteProfile(t *testing.T) {
	ctx := context.Background()
	st, err := localstore.Open(ctx, localstore.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	s := NewStore(st, logging.Discard())
	_, err = s.SeedDemoData(ctx)
	require.NoError(t, err)

	id, err := s.Submit(ctx, "demo@nanofi.io", sampleForm(t))
	require.NoError(t, err)
	ok, err := s.SetStatus(ctx, id, StatusApproved, "spv@nanofi.io", "")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, Stats{Total: 6, Pending: 3, Approved: 3}, s.Stats(ctx))
}
