package dncp

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// DeriveNodeID seeds the boot-time node identifier from a set of
// link-layer hardware addresses (spec §6 get_hwaddrs): the smallest and
// largest addresses (lexicographically) are concatenated, then
// truncated/expanded to length bytes. If hwaddrs is empty, a random
// identifier is generated instead.
func DeriveNodeID(hwaddrs [][]byte, length int) NodeID {
	if len(hwaddrs) == 0 {
		return RandomNodeID(length)
	}

	minAddr, maxAddr := hwaddrs[0], hwaddrs[0]
	for _, a := range hwaddrs[1:] {
		if string(a) < string(minAddr) {
			minAddr = a
		}
		if string(a) > string(maxAddr) {
			maxAddr = a
		}
	}

	combined := append(append([]byte(nil), minAddr...), maxAddr...)
	return NewNodeID(foldTo(combined, length))
}

// RandomNodeID generates a fresh random node identifier, used both as the
// no-hwaddr fallback (§6) and on a second identifier collision (§4.5).
func RandomNodeID(length int) NodeID {
	id := uuid.New()
	return NewNodeID(foldTo(id[:], length))
}

// foldTo truncates or cyclically expands src to exactly n bytes. A
// cryptographically random pad is used if src is shorter than n and
// empty.
func foldTo(src []byte, n int) []byte {
	if len(src) == 0 {
		out := make([]byte, n)
		_, _ = rand.Read(out)
		return out
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = src[i%len(src)]
	}
	return out
}
