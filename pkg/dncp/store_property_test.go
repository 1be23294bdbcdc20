package dncp

import (
	"testing"
	"time"

	"github.com/shurlinet/dncp/pkg/tlv"
	"pgregory.net/rapid"
)

// TestPublishUnpublishRoundTripProperty checks spec §8 invariant #3: for
// any sequence of publish/unpublish operations, the own node's TLV set
// always equals the set of attrs published-and-not-subsequently-unpublished
// (last operation per distinct attr wins).
func TestPublishUnpublishRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		now := time.Now()
		s := NewStore(NodeID("own-"), 4, nil, now)

		n := rapid.IntRange(0, 40).Draw(rt, "nops")
		// tlv.Attr holds a slice and cannot be a map key; every payload
		// here is one byte, so (type, byte) identifies an attr.
		type attrKey struct {
			typ uint16
			val byte
		}
		want := map[attrKey]bool{}
		for i := 0; i < n; i++ {
			typ := uint16(rapid.IntRange(0, 3).Draw(rt, "type"))
			val := byte(rapid.IntRange(0, 3).Draw(rt, "payload"))
			publish := rapid.Bool().Draw(rt, "publish")
			a := tlv.Attr{Type: typ, Payload: []byte{val}}

			if publish {
				s.Publish(a)
				want[attrKey{typ, val}] = true
			} else {
				s.Unpublish(a)
				delete(want, attrKey{typ, val})
			}
		}

		own, ok := s.Find(NodeID("own-"))
		if !ok {
			rt.Fatal("own node vanished")
		}
		if len(own.TLVs) != len(want) {
			rt.Fatalf("own body has %d TLVs, want %d", len(own.TLVs), len(want))
		}
		for _, a := range own.TLVs {
			if len(a.Payload) != 1 || !want[attrKey{a.Type, a.Payload[0]}] {
				rt.Fatalf("unexpected TLV in own body: %+v", a)
			}
		}
	})
}

// TestNetworkHashMatchesFormulaProperty checks spec §8 invariant #1:
// network_hash is exactly digest8(concat(node_id, update_number,
// node_data_hash) for every reachable node in ascending node-id order).
func TestNetworkHashMatchesFormulaProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(rt, "n")
		nodes := make(map[NodeID]*Node, n)
		for i := 0; i < n; i++ {
			raw := rapid.SliceOfN(rapid.Byte(), 4, 4).Draw(rt, "id")
			id := NodeID(raw)
			if _, dup := nodes[id]; dup {
				continue
			}
			nodes[id] = &Node{
				ID:           id,
				Reachable:    rapid.Bool().Draw(rt, "reachable"),
				UpdateNumber: uint32(rapid.IntRange(0, 1000).Draw(rt, "update")),
				DataHash:     [8]byte{byte(rapid.IntRange(0, 255).Draw(rt, "hash"))},
			}
		}

		got := networkHash(nodes)

		// Recompute independently, without relying on the package's own sort
		// helper, to catch an accidental divergence between the two.
		var ids []NodeID
		for id, node := range nodes {
			if node.Reachable {
				ids = append(ids, id)
			}
		}
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				if ids[j] < ids[i] {
					ids[i], ids[j] = ids[j], ids[i]
				}
			}
		}
		var buf []byte
		for _, id := range ids {
			node := nodes[id]
			buf = append(buf, id.Bytes()...)
			buf = append(buf,
				byte(node.UpdateNumber>>24), byte(node.UpdateNumber>>16),
				byte(node.UpdateNumber>>8), byte(node.UpdateNumber))
			buf = append(buf, node.DataHash[:]...)
		}
		want := digest8(buf)
		if got != want {
			rt.Fatalf("networkHash mismatch: got %x want %x", got, want)
		}
	})
}
