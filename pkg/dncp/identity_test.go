package dncp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveNodeIDIsDeterministic(t *testing.T) {
	hw := [][]byte{[]byte{0x02, 0x11}, []byte{0x00, 0x01}, []byte{0xff, 0xff}}
	id1 := DeriveNodeID(hw, 4)
	id2 := DeriveNodeID(hw, 4)
	require.Equal(t, id1, id2)
	require.Len(t, id1.Bytes(), 4)
}

func TestDeriveNodeIDFallsBackToRandomWhenEmpty(t *testing.T) {
	id1 := DeriveNodeID(nil, 4)
	id2 := DeriveNodeID(nil, 4)
	require.NotEqual(t, id1, id2, "no hwaddrs: each call should yield an independent random id")
}

func TestRandomNodeIDLength(t *testing.T) {
	id := RandomNodeID(4)
	require.Len(t, id.Bytes(), 4)
}

func TestFoldToExpandsShortSource(t *testing.T) {
	out := foldTo([]byte{1, 2}, 5)
	require.Equal(t, []byte{1, 2, 1, 2, 1}, out)
}
