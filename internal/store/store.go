package store

// Store is the bucketed key-value backend under the state snapshot store.
// Reads dominate: snapshots are immutable once committed, so there is no
// delete path. The bolt implementation is the persistent default; memory
// backs tests and ephemeral use.
type Store interface {
	// Get returns the value for key, or nil if the bucket or key is absent.
	Get(bucket, key []byte) ([]byte, error)
	// Put writes key to bucket, creating the bucket if needed.
	Put(bucket, key, value []byte) error
	// ForEach visits every key in bucket in key order. Missing buckets
	// iterate zero times.
	ForEach(bucket []byte, fn func(key, value []byte) error) error
	Close() error
}
