// Package localstore is the persistence layer of the NanoFi client: a flat
// key/value table standing in for browser local storage.
//
// # Overview
//
// Values are opaque byte blobs addressed by string keys. Every write bumps a
// per-key version so callers that rewrite a whole blob (read, mutate, write)
// can use CompareAndSet and detect a concurrent writer instead of silently
// losing its update.
//
// Two implementations exist:
//
//   - SQLiteRepository: over dbx.DBTX (either *sql.DB or *sql.Tx); the
//     profile file is opened by Open, which applies embedded goose migrations.
//   - MemoryRepository: in-process map, used by tests. A profile that needs
//     no file is opened with MemoryPath instead.
//
// A Watcher reports changes made to the profile file by other processes, the
// terminal counterpart of the browser "storage" event.
//
// Typical Usage
//
//	st, err := localstore.Open(ctx, "nanofi.db")
//	if err != nil { ... }
//	defer st.Close()
//	_ = st.Set(ctx, "nanofi.user", b)
//	v, _ := st.Get(ctx, "nanofi.user")
package localstore
