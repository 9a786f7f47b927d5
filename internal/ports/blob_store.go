package ports

import "context"

// BlobStore persists opaque values by key with whole-value overwrite.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type ListableBlobStore interface {
	BlobStore
	// List returns the keys directly under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
