// Package settings exposes a read-only, typed view over hierarchical
// settings stored in a committed state snapshot.
//
// A dotted key like "my.setting.list" maps to a fixed-length address
// (pkg/address); the bytes at that address decode to a bucket of
// (full key, value) entries (pkg/record). Because the address derivation is
// lossy, a bucket may hold entries for several keys — resolution always
// finishes with an exact full-key match, so colliding keys can never leak
// each other's values.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"stateview/internal/logging"
	"stateview/pkg/address"
	"stateview/pkg/record"
	"stateview/pkg/state"
)

// DefaultDelimiter splits list settings unless the caller picks another.
const DefaultDelimiter = ","

// ErrCoerce means a stored value exists but the caller's converter rejected
// it. Never swallowed: silently returning a default here would mask a
// misconfigured setting.
var ErrCoerce = errors.New("coerce setting")

var logger = logging.For("settings")

// View is a read handle over the settings of one committed snapshot. It is
// immutable and side-effect-free on read; concurrent lookups need no
// locking as long as the underlying Reader tolerates concurrent reads.
type View struct {
	root   state.Root
	reader Reader
	codec  address.Codec
}

// Reader is the narrow slice of the snapshot store a view consumes.
// A nil result means nothing is stored at that address.
type Reader interface {
	Get(addr address.Address) ([]byte, error)
}

// NewView binds a view to root and its snapshot reader.
func NewView(root state.Root, r Reader) *View {
	return &View{root: root, reader: r, codec: address.Default()}
}

// Root returns the root this view reads from.
func (v *View) Root() state.Root {
	return v.root
}

// GetSetting resolves key to its raw stored value. The second return is
// false when the snapshot holds no value for the key; that is a normal
// outcome, not an error. Errors mean the lookup itself failed: the reader
// reported a problem, or the stored record did not decode.
func (v *View) GetSetting(key string) (string, bool, error) {
	addr := v.codec.AddressOf(key)
	raw, err := v.reader.Get(addr)
	if err != nil {
		return "", false, fmt.Errorf("reading setting %q: %w", key, err)
	}
	if raw == nil {
		return "", false, nil
	}
	entries, err := record.Decode(raw)
	if err != nil {
		return "", false, fmt.Errorf("setting %q at %s: %w", key, addr, err)
	}
	for _, e := range entries {
		if e.Key == key {
			return e.Value, true, nil
		}
	}
	// The address was occupied by colliding keys only.
	logger.Debug("bucket hit without key match", "key", key, "entries", len(entries))
	return "", false, nil
}

// Value converts a stored string into T. Converters are supplied by the
// caller; the view commits to no value types of its own.
type Value[T any] func(string) (T, error)

// Get resolves key and converts its value with conv. Absence returns def
// untouched; a value conv rejects surfaces as ErrCoerce.
func Get[T any](v *View, key string, def T, conv Value[T]) (T, error) {
	raw, ok, err := v.GetSetting(key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	out, err := conv(raw)
	if err != nil {
		return def, fmt.Errorf("%w %q: %v", ErrCoerce, key, err)
	}
	return out, nil
}

// GetList resolves key, splits its value on DefaultDelimiter, and converts
// each element with conv. Absence returns def exactly as given.
func GetList[T any](v *View, key string, def []T, conv Value[T]) ([]T, error) {
	return GetListDelim(v, key, def, conv, DefaultDelimiter)
}

// GetListDelim is GetList with a caller-chosen delimiter. The split keeps
// empty segments and does no trimming; any element conv rejects surfaces
// as ErrCoerce.
func GetListDelim[T any](v *View, key string, def []T, conv Value[T], delim string) ([]T, error) {
	raw, ok, err := v.GetSetting(key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	parts := strings.Split(raw, delim)
	out := make([]T, len(parts))
	for i, p := range parts {
		val, err := conv(p)
		if err != nil {
			return def, fmt.Errorf("%w %q element %d: %v", ErrCoerce, key, i, err)
		}
		out[i] = val
	}
	return out, nil
}
