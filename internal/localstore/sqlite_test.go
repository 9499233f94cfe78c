package localstore

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanofi/nanofi/internal/common"
	"github.com/nanofi/nanofi/internal/localstore/migrations"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(context.Background(), db, migrations.FS))
	return db
}

func TestSetAndGet_InsertThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "nanofi.user", []byte(`{"email":"demo@nanofi.io"}`)))

	v, err := r.Get(ctx, "nanofi.user")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"email":"demo@nanofi.io"}`), v)
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)

	v, ver, err := r.GetVersioned(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
	require.Zero(t, ver)
}

func TestSet_UpsertOverwritesValueAndBumpsVersion(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, ver, err := r.GetVersioned(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
	require.Equal(t, int64(2), ver)
}

func TestCompareAndSet_CreateOnlyWhenAbsent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	ver, err := r.CompareAndSet(ctx, "k", []byte("a"), 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), ver)

	_, err = r.CompareAndSet(ctx, "k", []byte("b"), 0)
	require.ErrorIs(t, err, common.ErrVersionConflict)

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("a"), v)
}

func TestCompareAndSet_StaleVersionRejected(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("v1")))
	_, ver, err := r.GetVersioned(ctx, "k")
	require.NoError(t, err)

	// another writer slips in
	require.NoError(t, r.Set(ctx, "k", []byte("other")))

	_, err = r.CompareAndSet(ctx, "k", []byte("mine"), ver)
	require.ErrorIs(t, err, common.ErrVersionConflict)

	_, cur, err := r.GetVersioned(ctx, "k")
	require.NoError(t, err)
	next, err := r.CompareAndSet(ctx, "k", []byte("mine"), cur)
	require.NoError(t, err)
	assert.Equal(t, cur+1, next)
}

func TestList_ReturnsAllPairs(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
	require.NoError(t, r.Set(ctx, "b", []byte{0xBB, 0xCC}))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)
	assert.Equal(t, []byte{0xAA}, m["a"])
	assert.Equal(t, []byte{0xBB, 0xCC}, m["b"])
}

func TestDelete_RemovesKey_AndIsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
	require.NoError(t, r.Delete(ctx, "x"))

	v, err := r.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestClear_RemovesAllKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{1}))
	require.NoError(t, r.Set(ctx, "b", []byte{2}))
	require.NoError(t, r.Clear(ctx))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestOperations_DBErrorWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get local_storage[k]")

	_, _, err = r.GetVersioned(ctx, "k")
	require.ErrorContains(t, err, "failed to get local_storage[k]")

	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set local_storage[k]")

	_, err = r.CompareAndSet(ctx, "k", []byte("v"), 3)
	require.ErrorContains(t, err, "failed to set local_storage[k]")

	require.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete local_storage[k]")
	require.ErrorContains(t, r.Clear(ctx), "failed to clear local_storage")

	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list local_storage")
}

func newRepoWithMock(t *testing.T) (*SQLiteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db), mock
}

func TestCompareAndSet_RowsAffectedError(t *testing.T) {
	r, mock := newRepoWithMock(t)

	q := `(?s)^\s*UPDATE\s+local_storage\s+SET\s+value\s*=\s*\?,\s*version\s*=\s*version\s*\+\s*1\s+WHERE\s+key\s*=\s*\?\s+AND\s+version\s*=\s*\?\s*$`
	mock.ExpectExec(q).
		WithArgs([]byte("v"), "k", int64(4)).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("driver lost count")))

	_, err := r.CompareAndSet(context.Background(), "k", []byte("v"), 4)
	require.ErrorContains(t, err, "failed to get rows affected")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompareAndSet_ZeroRowsIsConflict(t *testing.T) {
	r, mock := newRepoWithMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO local_storage (key, value, version) VALUES (?, ?, 1)`)).
		WithArgs("k", []byte("v")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := r.CompareAndSet(context.Background(), "k", []byte("v"), 0)
	require.ErrorIs(t, err, common.ErrVersionConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_ScanErrorWrapped(t *testing.T) {
	r, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows([]string{"key"}).AddRow("only-one-column")
	mock.ExpectQuery(`SELECT key, value FROM local_storage`).WillReturnRows(rows)

	_, err := r.List(context.Background())
	require.ErrorContains(t, err, "failed to scan local_storage row")
}
