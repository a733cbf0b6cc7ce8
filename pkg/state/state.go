// Package state is a versioned, content-addressed snapshot store.
//
// Every commit produces an immutable snapshot named by a Root: the BLAKE2b
// digest of the snapshot's sorted leaf index. Values are stored once,
// content-addressed by their own digest; the index maps state addresses to
// value digests. Readers bind to one root and never observe later commits.
package state

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"stateview/internal/logging"
	"stateview/internal/store"
	"stateview/pkg/address"
)

var (
	// ErrNoRoot means the requested root names no committed snapshot.
	ErrNoRoot = errors.New("state root not found")
	// ErrCorrupt means the store contradicts itself, e.g. an index leaf
	// points at a value blob that is gone. Distinct from absence.
	ErrCorrupt = errors.New("state store corrupt")
)

var (
	valuesBucket  = []byte("state-values")
	indexBucket   = []byte("state-index")
	commitsBucket = []byte("state-commits")
)

var logger = logging.For("state")

// Root names one committed snapshot: the hex BLAKE2b-256 of its leaf index.
// Equal content always commits to an equal root.
type Root string

// Store persists snapshots on a bucketed key-value backend.
type Store struct {
	db store.Store
}

// NewStore wraps db as a snapshot store. The caller keeps ownership of db
// and closes it.
func NewStore(db store.Store) *Store {
	return &Store{db: db}
}

// Commit derives a new snapshot from parent by applying updates, and
// returns its root. A nil update value removes the leaf at that address.
// Parent "" commits onto the empty state. Commit never modifies existing
// snapshots; an identical result simply re-yields the same root.
func (s *Store) Commit(parent Root, updates map[address.Address][]byte) (Root, error) {
	leaves := make(map[string][]byte)
	if parent != "" {
		var err error
		leaves, err = s.loadIndex(parent)
		if err != nil {
			return "", err
		}
	}

	for addr, data := range updates {
		if data == nil {
			delete(leaves, string(addr))
			continue
		}
		sum := blake2b.Sum256(data)
		if err := s.db.Put(valuesBucket, sum[:], data); err != nil {
			return "", fmt.Errorf("storing value for %s: %w", addr, err)
		}
		leaves[string(addr)] = sum[:]
	}

	blob := encodeIndex(leaves)
	sum := blake2b.Sum256(blob)
	root := Root(fmt.Sprintf("%x", sum))

	if err := s.db.Put(indexBucket, []byte(root), blob); err != nil {
		return "", fmt.Errorf("storing index for %s: %w", root, err)
	}
	meta := encodeCommit(commitMeta{
		ID:     uuid.NewString(),
		Parent: string(parent),
		Unix:   time.Now().Unix(),
	})
	if err := s.db.Put(commitsBucket, []byte(root), meta); err != nil {
		return "", fmt.Errorf("storing commit log for %s: %w", root, err)
	}

	logger.Info("committed snapshot", "root", short(root), "leaves", len(leaves), "updates", len(updates))
	return root, nil
}

// ReaderAt returns an immutable reader over the snapshot named by root.
// The reader is safe for concurrent use.
func (s *Store) ReaderAt(root Root) (*Reader, error) {
	leaves, err := s.loadIndex(root)
	if err != nil {
		return nil, err
	}
	addrs := make([]string, 0, len(leaves))
	for a := range leaves {
		addrs = append(addrs, a)
	}
	sort.Strings(addrs)
	return &Reader{db: s.db, root: root, addrs: addrs, leaves: leaves}, nil
}

// CommitInfo is one entry of the commit log.
type CommitInfo struct {
	Root   Root
	ID     string
	Parent Root
	Time   time.Time
}

// Roots lists every committed snapshot, oldest first.
func (s *Store) Roots() ([]CommitInfo, error) {
	var infos []CommitInfo
	err := s.db.ForEach(commitsBucket, func(key, value []byte) error {
		meta, err := decodeCommit(value)
		if err != nil {
			logger.Warn("skipping unreadable commit log entry", "root", string(key), "err", err)
			return nil
		}
		infos = append(infos, CommitInfo{
			Root:   Root(key),
			ID:     meta.ID,
			Parent: Root(meta.Parent),
			Time:   time.Unix(meta.Unix, 0),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading commit log: %w", err)
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].Time.Equal(infos[j].Time) {
			return infos[i].Time.Before(infos[j].Time)
		}
		return infos[i].Root < infos[j].Root
	})
	return infos, nil
}

func (s *Store) loadIndex(root Root) (map[string][]byte, error) {
	blob, err := s.db.Get(indexBucket, []byte(root))
	if err != nil {
		return nil, fmt.Errorf("reading index for %s: %w", root, err)
	}
	if blob == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRoot, root)
	}
	leaves, err := decodeIndex(blob)
	if err != nil {
		return nil, fmt.Errorf("index for %s: %w", root, err)
	}
	return leaves, nil
}

func short(r Root) string {
	if len(r) > 12 {
		return string(r[:12])
	}
	return string(r)
}
