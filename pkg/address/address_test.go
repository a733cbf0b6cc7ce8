package address

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

// Known-answer vectors pin the protocol: these must never change across
// versions, since addresses are storage locations.
func TestAddressOfVectors(t *testing.T) {
	vectors := map[string]Address{
		"my.setting":           "000000038468518ad8122eec72b9566a9c3501e3b0c44298fc1c14e3b0c44298fc1c14",
		"my.setting.list":      "000000038468518ad8122eec72b9566a9c3501a330395cc0a53ad1e3b0c44298fc1c14",
		"my.other.list":        "000000038468518ad8122ed9298a10d1b07358a330395cc0a53ad1e3b0c44298fc1c14",
		"non-existant.setting": "0000006616c18d05f0d3d0ec72b9566a9c3501e3b0c44298fc1c14e3b0c44298fc1c14",
		"":                     "000000e3b0c44298fc1c14e3b0c44298fc1c14e3b0c44298fc1c14e3b0c44298fc1c14",
	}
	for key, want := range vectors {
		if got := AddressOf(key); got != want {
			t.Errorf("AddressOf(%q) = %s, want %s", key, got, want)
		}
	}
}

func TestAddressOfDeterministic(t *testing.T) {
	keys := []string{"my.setting", "a", "", "a.b.c.d.e.f", "trailing."}
	for _, k := range keys {
		if AddressOf(k) != AddressOf(k) {
			t.Errorf("AddressOf(%q) not deterministic", k)
		}
	}
}

// Short keys hash as if padded with empty segments.
func TestAddressOfPadsShortKeys(t *testing.T) {
	c := Default()
	got := c.AddressOf("my")
	want := Address(NamespacePrefix + shortSum("my") + shortSum("") + shortSum("") + shortSum(""))
	if got != want {
		t.Errorf("padded address = %s, want %s", got, want)
	}
}

// Only the first MaxKeyParts-1 dots split; the remainder, dots and all,
// is the final segment.
func TestAddressOfMaxSplit(t *testing.T) {
	c := Default()
	got := c.AddressOf("a.b.c.d.e")
	want := Address(NamespacePrefix + shortSum("a") + shortSum("b") + shortSum("c") + shortSum("d.e"))
	if got != want {
		t.Errorf("maxsplit address = %s, want %s", got, want)
	}
	if c.AddressOf("a.b.c.d.e") == c.AddressOf("a.b.c.d") {
		t.Error("distinct final segments should produce distinct addresses")
	}
}

// Empty segments from leading/trailing dots are hashed as-is, not dropped.
func TestAddressOfEmptySegments(t *testing.T) {
	c := Default()
	got := c.AddressOf(".leading")
	want := Address(NamespacePrefix + shortSum("") + shortSum("leading") + shortSum("") + shortSum(""))
	if got != want {
		t.Errorf("leading-dot address = %s, want %s", got, want)
	}
}

func TestAddressLen(t *testing.T) {
	c := Default()
	if c.Len() != 70 {
		t.Errorf("default codec Len = %d, want 70", c.Len())
	}
	if len(AddressOf("anything")) != c.Len() {
		t.Errorf("address length %d != codec Len %d", len(AddressOf("anything")), c.Len())
	}
}

func TestCustomCodec(t *testing.T) {
	c := Codec{Parts: 2, PartLen: 8, Prefix: "aa"}
	got := c.AddressOf("x.y.z")
	want := Address("aa" + shortSumN("x", 8) + shortSumN("y.z", 8))
	if got != want {
		t.Errorf("custom codec address = %s, want %s", got, want)
	}
	if c.Len() != 18 {
		t.Errorf("custom codec Len = %d, want 18", c.Len())
	}
}

func TestHasPrefix(t *testing.T) {
	a := AddressOf("my.setting")
	if !a.HasPrefix(NamespacePrefix) {
		t.Error("address should carry the namespace prefix")
	}
	if a.HasPrefix("ffffff") {
		t.Error("HasPrefix matched a foreign namespace")
	}
	if !strings.HasPrefix(string(a), NamespacePrefix) {
		t.Error("prefix not at the front of the address")
	}
}

func shortSum(s string) string {
	return shortSumN(s, PartHexLen)
}

func shortSumN(s string, n int) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:n]
}
