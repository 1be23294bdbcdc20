package dncp

import (
	"sort"
	"time"

	"github.com/shurlinet/dncp/pkg/tlv"
)

// NodeID is an opaque node identifier (spec §3), stored as a string so it
// is usable directly as a map key and compares lexicographically with Go's
// native byte-wise string ordering.
type NodeID string

// NewNodeID converts a raw byte slice (as read off the wire, or produced
// by the identity helpers) into a NodeID.
func NewNodeID(b []byte) NodeID { return NodeID(b) }

// Bytes returns the node-id's raw byte representation.
func (id NodeID) Bytes() []byte { return []byte(id) }

// Node is a peer's published attribute set plus its header (spec §3).
type Node struct {
	ID              NodeID
	UpdateNumber    uint32
	OriginationTime time.Time
	TLVs            []tlv.Attr // kept in canonical order
	DataHash        [8]byte
	Reachable       bool

	// NeedsData is set when a NODE_STATE summary first introduces a node or
	// its hash disagrees with the stored node_data_hash, and cleared once ReplaceBody accepts a body
	// with a matching update_number (§4.2).
	NeedsData bool

	// UnreachableSince records when the node most recently transitioned
	// to unreachable, for the grace-period deletion check (§3 Lifecycle).
	// Zero when Reachable is true.
	UnreachableSince time.Time

	// version is the profile version byte last observed in this node's
	// VERSION TLV. See validate.go.
	version uint8
	hasVersion bool
}

// msSinceOrigination returns how many whole milliseconds have elapsed
// since the node's origination time, as carried in outbound NODE_STATE
// summaries (§3).
func (n *Node) msSinceOrigination(now time.Time) uint32 {
	d := now.Sub(n.OriginationTime)
	if d < 0 {
		return 0
	}
	ms := d.Milliseconds()
	if ms > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(ms)
}

// canonicalize sorts attrs ascending by (type, payload-bytes) and drops
// exact (type, payload) duplicates, as required for deterministic hashing
// (spec §3 "Node", §9 "Canonical ordering").
func canonicalize(attrs []tlv.Attr) []tlv.Attr {
	out := append([]tlv.Attr(nil), attrs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return string(out[i].Payload) < string(out[j].Payload)
	})

	deduped := out[:0]
	for i, a := range out {
		if i > 0 {
			p := deduped[len(deduped)-1]
			if p.Type == a.Type && string(p.Payload) == string(a.Payload) {
				continue
			}
		}
		deduped = append(deduped, a)
	}
	return deduped
}

// findAttr returns the index of the first attr matching (typ, payload),
// or -1.
func findAttr(attrs []tlv.Attr, typ uint16, payload []byte) int {
	for i, a := range attrs {
		if a.Type == typ && string(a.Payload) == string(payload) {
			return i
		}
	}
	return -1
}

// neighborsOf decodes every TypeNeighbor TLV published in n's body.
func neighborsOf(n *Node, nodeIDLen int) []tlv.Neighbor {
	var out []tlv.Neighbor
	for _, a := range n.TLVs {
		if a.Type != tlv.TypeNeighbor {
			continue
		}
		if nb, ok := tlv.UnmarshalNeighbor(a.Payload, nodeIDLen); ok {
			out = append(out, nb)
		}
	}
	return out
}
