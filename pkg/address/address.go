// Package address maps dotted setting keys to fixed-length state addresses.
//
// The mapping is a protocol constant: the same key must produce the same
// address in every process and every version, because the address is where
// the record lives, not a cache key. It is also deliberately lossy — only a
// bounded number of key segments are hashed, and each segment digest is
// truncated — so distinct keys may share an address. Collision resolution
// happens above this package, by storing the full key next to each value.
package address

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Defaults observed in the settings namespace: a 6-char namespace prefix
// followed by 4 segment digests of 16 hex chars each (70-char addresses).
const (
	NamespacePrefix = "000000"
	MaxKeyParts     = 4
	PartHexLen      = 16
)

// Address locates a record within one state snapshot.
type Address string

// HasPrefix reports whether the address lies under the given prefix.
func (a Address) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(a), prefix)
}

// Codec derives addresses from dotted keys. The zero value is not usable;
// construct with Default or fill all fields.
type Codec struct {
	Parts   int    // number of key segments hashed
	PartLen int    // hex chars kept per segment digest
	Prefix  string // namespace prefix prepended to every address
}

// Default returns the codec for the settings namespace.
func Default() Codec {
	return Codec{Parts: MaxKeyParts, PartLen: PartHexLen, Prefix: NamespacePrefix}
}

// AddressOf derives the address for key.
//
// The key is split on "." into at most c.Parts segments; the first
// c.Parts-1 dots split, the remainder (further dots included) becomes the
// last segment. Missing segments are padded with empty strings, so short
// keys hash as if suffixed with empties. Each segment is hashed with
// SHA-256, hex-encoded, and truncated to c.PartLen chars. Keys are
// byte-exact: no trimming, no case folding.
func (c Codec) AddressOf(key string) Address {
	parts := strings.SplitN(key, ".", c.Parts)
	var b strings.Builder
	b.Grow(len(c.Prefix) + c.Parts*c.PartLen)
	b.WriteString(c.Prefix)
	for i := 0; i < c.Parts; i++ {
		part := ""
		if i < len(parts) {
			part = parts[i]
		}
		b.WriteString(c.shortHash(part))
	}
	return Address(b.String())
}

// Len returns the length in characters of addresses this codec produces.
func (c Codec) Len() int {
	return len(c.Prefix) + c.Parts*c.PartLen
}

func (c Codec) shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:c.PartLen]
}

// AddressOf derives the address for key using the default codec.
func AddressOf(key string) Address {
	return Default().AddressOf(key)
}
