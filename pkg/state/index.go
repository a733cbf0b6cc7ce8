package state

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// Leaf index and commit log blobs are protowire messages:
//
//	message Index  { repeated Leaf leaves = 1; }
//	message Leaf   { string address = 1; bytes value_hash = 2; }
//	message Commit { string id = 1; string parent = 2; int64 unix_ts = 3; }
//
// The index is serialized with leaves sorted by address so that equal
// content always produces equal bytes, and therefore an equal root.

const (
	fieldLeaves    = 1
	fieldLeafAddr  = 1
	fieldLeafHash  = 2
	fieldCommitID  = 1
	fieldCommitPar = 2
	fieldCommitTs  = 3
)

func encodeIndex(leaves map[string][]byte) []byte {
	addrs := make([]string, 0, len(leaves))
	for a := range leaves {
		addrs = append(addrs, a)
	}
	sort.Strings(addrs)

	var buf []byte
	for _, a := range addrs {
		var leaf []byte
		leaf = protowire.AppendTag(leaf, fieldLeafAddr, protowire.BytesType)
		leaf = protowire.AppendString(leaf, a)
		leaf = protowire.AppendTag(leaf, fieldLeafHash, protowire.BytesType)
		leaf = protowire.AppendBytes(leaf, leaves[a])

		buf = protowire.AppendTag(buf, fieldLeaves, protowire.BytesType)
		buf = protowire.AppendBytes(buf, leaf)
	}
	return buf
}

func decodeIndex(blob []byte) (map[string][]byte, error) {
	leaves := make(map[string][]byte)
	b := blob
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: index: %v", ErrCorrupt, protowire.ParseError(n))
		}
		b = b[n:]

		if num == fieldLeaves && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: index: %v", ErrCorrupt, protowire.ParseError(n))
			}
			b = b[n:]
			addr, sum, err := decodeLeaf(v)
			if err != nil {
				return nil, err
			}
			leaves[addr] = sum
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return nil, fmt.Errorf("%w: index: %v", ErrCorrupt, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return leaves, nil
}

func decodeLeaf(raw []byte) (string, []byte, error) {
	var addr string
	var sum []byte
	b := raw
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", nil, fmt.Errorf("%w: index leaf: %v", ErrCorrupt, protowire.ParseError(n))
		}
		b = b[n:]

		if typ == protowire.BytesType && (num == fieldLeafAddr || num == fieldLeafHash) {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return "", nil, fmt.Errorf("%w: index leaf: %v", ErrCorrupt, protowire.ParseError(n))
			}
			b = b[n:]
			if num == fieldLeafAddr {
				addr = string(v)
			} else {
				sum = append([]byte(nil), v...)
			}
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return "", nil, fmt.Errorf("%w: index leaf: %v", ErrCorrupt, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return addr, sum, nil
}

type commitMeta struct {
	ID     string
	Parent string
	Unix   int64
}

func encodeCommit(m commitMeta) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldCommitID, protowire.BytesType)
	buf = protowire.AppendString(buf, m.ID)
	buf = protowire.AppendTag(buf, fieldCommitPar, protowire.BytesType)
	buf = protowire.AppendString(buf, m.Parent)
	buf = protowire.AppendTag(buf, fieldCommitTs, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(m.Unix))
	return buf
}

func decodeCommit(raw []byte) (commitMeta, error) {
	var m commitMeta
	b := raw
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return commitMeta{}, fmt.Errorf("%w: commit meta: %v", ErrCorrupt, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldCommitID && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return commitMeta{}, fmt.Errorf("%w: commit meta: %v", ErrCorrupt, protowire.ParseError(n))
			}
			m.ID = string(v)
			b = b[n:]
		case num == fieldCommitPar && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return commitMeta{}, fmt.Errorf("%w: commit meta: %v", ErrCorrupt, protowire.ParseError(n))
			}
			m.Parent = string(v)
			b = b[n:]
		case num == fieldCommitTs && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return commitMeta{}, fmt.Errorf("%w: commit meta: %v", ErrCorrupt, protowire.ParseError(n))
			}
			m.Unix = int64(v)
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return commitMeta{}, fmt.Errorf("%w: commit meta: %v", ErrCorrupt, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}
