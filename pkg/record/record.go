// Package record encodes and decodes setting records.
//
// A record is the collision bucket stored at one address: an ordered list of
// (full key, value) entries. On the wire it is the protobuf message
//
//	message Setting {
//	  message Entry {
//	    string key   = 1;
//	    string value = 2;
//	  }
//	  repeated Entry entries = 1;
//	}
//
// encoded here with the low-level protowire API; the message is small and
// fixed, so generated types buy nothing over hand-rolled framing.
package record

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed means the bytes at an address do not parse as a setting
// record. This is corruption, distinct from absence: callers must not treat
// it as "not found".
var ErrMalformed = errors.New("malformed setting record")

// ErrDuplicateKey means an encode request contained the same full key twice.
// A bucket holds at most one entry per key.
var ErrDuplicateKey = errors.New("duplicate key in setting record")

// Field numbers of the Setting message and its Entry submessage.
const (
	fieldEntries    = 1
	fieldEntryKey   = 1
	fieldEntryValue = 2
)

// Entry is one (full key, value) pair within a bucket. The key is the
// original, untruncated setting key; it disambiguates address collisions.
type Entry struct {
	Key   string
	Value string
}

// Encode serializes entries in order. Rejects duplicate keys.
func Encode(entries []Entry) ([]byte, error) {
	seen := make(map[string]struct{}, len(entries))
	var buf []byte
	for _, e := range entries {
		if _, ok := seen[e.Key]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, e.Key)
		}
		seen[e.Key] = struct{}{}

		var inner []byte
		inner = protowire.AppendTag(inner, fieldEntryKey, protowire.BytesType)
		inner = protowire.AppendString(inner, e.Key)
		inner = protowire.AppendTag(inner, fieldEntryValue, protowire.BytesType)
		inner = protowire.AppendString(inner, e.Value)

		buf = protowire.AppendTag(buf, fieldEntries, protowire.BytesType)
		buf = protowire.AppendBytes(buf, inner)
	}
	return buf, nil
}

// Decode parses a stored record into its entries, preserving order.
// Nil or empty input decodes to an empty bucket. Unknown fields are
// skipped so newer writers stay readable.
func Decode(raw []byte) ([]Entry, error) {
	var entries []Entry
	b := raw
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		if num == fieldEntries && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			e, err := decodeEntry(v)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return entries, nil
}

func decodeEntry(raw []byte) (Entry, error) {
	var e Entry
	b := raw
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Entry{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		if typ == protowire.BytesType && (num == fieldEntryKey || num == fieldEntryValue) {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Entry{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			if num == fieldEntryKey {
				e.Key = string(v)
			} else {
				e.Value = string(v)
			}
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return Entry{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return e, nil
}
