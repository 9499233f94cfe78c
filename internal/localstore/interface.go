package localstore

import "context"

// Repository is a versioned key/value store.
//
// Get returns (nil, nil) for an absent key. Versions start at 1 on first
// write and grow by one on every write; version 0 stands for "absent".
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetVersioned(ctx context.Context, key string) ([]byte, int64, error)
	Set(ctx context.Context, key string, value []byte) error
	// CompareAndSet writes value only if the stored version equals version and
	// returns the new version. A mismatch yields common.ErrVersionConflict.
	CompareAndSet(ctx context.Context, key string, value []byte, version int64) (int64, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Storage is a Repository that can apply several writes atomically.
type Storage interface {
	Repository
	WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
