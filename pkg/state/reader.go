package state

import (
	"fmt"
	"sort"
	"strings"

	"stateview/pkg/address"
)

// Reader is a read handle over one committed snapshot. It is immutable
// after construction: concurrent Get/GetRange calls need no locking, and
// commits made after ReaderAt never become visible through it.
type Reader struct {
	db     dbReader
	root   Root
	addrs  []string          // sorted leaf addresses
	leaves map[string][]byte // address -> value digest
}

// dbReader is the slice of store.Store the reader needs.
type dbReader interface {
	Get(bucket, key []byte) ([]byte, error)
}

// Root returns the root this reader is bound to.
func (r *Reader) Root() Root {
	return r.root
}

// Len returns the number of leaves in the snapshot.
func (r *Reader) Len() int {
	return len(r.leaves)
}

// Get returns the bytes stored at addr, or nil if the snapshot holds
// nothing there. A leaf whose value blob is missing from the backend is
// reported as ErrCorrupt, never as absence.
func (r *Reader) Get(addr address.Address) ([]byte, error) {
	sum, ok := r.leaves[string(addr)]
	if !ok {
		return nil, nil
	}
	val, err := r.db.Get(valuesBucket, sum)
	if err != nil {
		return nil, fmt.Errorf("reading value at %s: %w", addr, err)
	}
	if val == nil {
		return nil, fmt.Errorf("%w: missing value blob for %s", ErrCorrupt, addr)
	}
	return val, nil
}

// Stored is one (address, bytes) pair returned by GetRange.
type Stored struct {
	Address address.Address
	Data    []byte
}

// GetRange returns every leaf whose address starts with prefix, in
// address order.
func (r *Reader) GetRange(prefix string) ([]Stored, error) {
	start := sort.SearchStrings(r.addrs, prefix)
	var out []Stored
	for i := start; i < len(r.addrs) && strings.HasPrefix(r.addrs[i], prefix); i++ {
		addr := address.Address(r.addrs[i])
		data, err := r.Get(addr)
		if err != nil {
			return nil, err
		}
		out = append(out, Stored{Address: addr, Data: data})
	}
	return out, nil
}
