package settings

import (
	"fmt"
	"sort"

	"stateview/pkg/address"
	"stateview/pkg/record"
)

// BuildUpdates assembles the record updates that set each key in values,
// ready for a state commit. Collision-safe: when keys share an address, or
// an address already holds entries in the snapshot r reads from, the
// existing bucket is loaded and the entry upserted rather than replaced
// wholesale. r may be nil for a commit onto empty state.
//
// This is write-side tooling for the CLI and test fixtures; the read path
// never calls it.
func BuildUpdates(r Reader, values map[string]string) (map[address.Address][]byte, error) {
	codec := address.Default()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buckets := make(map[address.Address][]record.Entry)
	for _, key := range keys {
		addr := codec.AddressOf(key)
		entries, loaded := buckets[addr]
		if !loaded && r != nil {
			raw, err := r.Get(addr)
			if err != nil {
				return nil, fmt.Errorf("reading bucket for %q: %w", key, err)
			}
			if raw != nil {
				entries, err = record.Decode(raw)
				if err != nil {
					return nil, fmt.Errorf("bucket for %q: %w", key, err)
				}
			}
		}
		buckets[addr] = upsert(entries, record.Entry{Key: key, Value: values[key]})
	}

	updates := make(map[address.Address][]byte, len(buckets))
	for addr, entries := range buckets {
		raw, err := record.Encode(entries)
		if err != nil {
			return nil, fmt.Errorf("encoding bucket at %s: %w", addr, err)
		}
		updates[addr] = raw
	}
	return updates, nil
}

func upsert(entries []record.Entry, e record.Entry) []record.Entry {
	for i := range entries {
		if entries[i].Key == e.Key {
			entries[i].Value = e.Value
			return entries
		}
	}
	return append(entries, e)
}
