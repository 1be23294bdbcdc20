package dncp

import (
	"testing"

	"github.com/shurlinet/dncp/pkg/tlv"
	"github.com/stretchr/testify/require"
)

func TestNodeDataHashDependsOnCanonicalOrder(t *testing.T) {
	a := tlv.Attr{Type: 1, Payload: []byte("a")}
	b := tlv.Attr{Type: 2, Payload: []byte("b")}

	h1 := nodeDataHash(canonicalize([]tlv.Attr{a, b}))
	h2 := nodeDataHash(canonicalize([]tlv.Attr{b, a}))
	require.Equal(t, h1, h2, "node_data_hash must be order-independent given canonicalized input")
}

func TestNodeDataHashChangesWithPayload(t *testing.T) {
	a := tlv.Attr{Type: 1, Payload: []byte("a")}
	b := tlv.Attr{Type: 1, Payload: []byte("b")}
	require.NotEqual(t, nodeDataHash([]tlv.Attr{a}), nodeDataHash([]tlv.Attr{b}))
}

func TestNetworkHashOnlyCoversReachableNodes(t *testing.T) {
	reachable := &Node{ID: "a", Reachable: true, UpdateNumber: 1}
	unreachable := &Node{ID: "b", Reachable: false, UpdateNumber: 99}

	h1 := networkHash(map[NodeID]*Node{"a": reachable})
	h2 := networkHash(map[NodeID]*Node{"a": reachable, "b": unreachable})
	require.Equal(t, h1, h2, "an unreachable node must not affect network_hash")
}

func TestNetworkHashChangesWithUpdateNumber(t *testing.T) {
	n1 := &Node{ID: "a", Reachable: true, UpdateNumber: 1}
	n2 := &Node{ID: "a", Reachable: true, UpdateNumber: 2}
	require.NotEqual(t,
		networkHash(map[NodeID]*Node{"a": n1}),
		networkHash(map[NodeID]*Node{"a": n2}))
}
