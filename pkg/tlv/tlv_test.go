package tlv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	attrs := []Attr{
		{Type: TypeLinkID, Payload: []byte{1, 2, 3, 4, 0, 0, 0, 1}},
		{Type: TypeReqNetHash, Payload: nil},
		{Type: TypeVersion, Payload: Version{Version: 1, UserAgent: "dncpd/1"}.Marshal()},
	}

	buf := EncodeAll(attrs)
	got, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, attrs, got)
}

func TestDecodePreservesOrder(t *testing.T) {
	buf := Encode(nil, 9, []byte("a"))
	buf = Encode(buf, 1, []byte("bb"))
	buf = Encode(buf, 5, []byte("ccc"))

	got, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, []uint16{9, 1, 5}, []uint16{got[0].Type, got[1].Type, got[2].Type})
}

func TestDecodeTruncated(t *testing.T) {
	buf := Encode(nil, 1, []byte("hello"))
	_, err := Decode(buf[:len(buf)-1])
	require.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeTruncatedHeader(t *testing.T) {
	_, err := Decode([]byte{0, 1})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeBadPad(t *testing.T) {
	buf := Encode(nil, 1, []byte("ab")) // 2 bytes payload, 2 bytes pad
	buf[len(buf)-1] = 0x7f
	_, err := Decode(buf)
	require.ErrorIs(t, err, ErrBadPad)
}

func TestPaddingIsFourByteAligned(t *testing.T) {
	for n := 0; n < 16; n++ {
		payload := make([]byte, n)
		buf := Encode(nil, 1, payload)
		require.Zero(t, len(buf)%4, "len %d not 4-byte aligned for payload len %d", len(buf), n)
	}
}

func TestIterateNestedMatchesDecode(t *testing.T) {
	inner := EncodeAll([]Attr{{Type: 43, Payload: []byte{1}}})
	container := Encode(nil, TypeDelegatedPrefix, inner)

	outer, err := Decode(container)
	require.NoError(t, err)
	require.Len(t, outer, 1)

	nested, err := IterateNested(outer[0].Payload)
	require.NoError(t, err)
	require.Equal(t, []Attr{{Type: 43, Payload: []byte{1}}}, nested)
}

func TestLinkIDRoundTrip(t *testing.T) {
	l := LinkID{NodeID: []byte{1, 2, 3, 4}, EndpointID: 7}
	got, ok := UnmarshalLinkID(l.Marshal(), NodeIDLen)
	require.True(t, ok)
	require.Equal(t, l, got)
}

func TestNodeStateRoundTrip(t *testing.T) {
	s := NodeState{
		NodeID:             []byte{9, 9, 9, 9},
		UpdateNumber:       42,
		MsSinceOrigination: 1000,
		NodeDataHash:       [8]byte{1, 2, 3, 4, 5, 6, 7, 8},
	}
	got, ok := UnmarshalNodeState(s.Marshal(), NodeIDLen)
	require.True(t, ok)
	require.Equal(t, s, got)
}

func TestNodeDataSplit(t *testing.T) {
	hdr := NodeDataHeader{NodeID: []byte{1, 1, 1, 1}, UpdateNumber: 3}
	inner := EncodeAll([]Attr{{Type: 51, Payload: []byte("router1")}})
	payload := append(hdr.Marshal(), inner...)

	gotHdr, gotInner, ok := SplitNodeData(payload, NodeIDLen)
	require.True(t, ok)
	require.Equal(t, hdr, gotHdr)
	require.Equal(t, inner, gotInner)
}

func TestNeighborRoundTrip(t *testing.T) {
	n := Neighbor{PeerNodeID: []byte{2, 2, 2, 2}, PeerEndpointID: 5, LocalEndpointID: 9}
	got, ok := UnmarshalNeighbor(n.Marshal(), NodeIDLen)
	require.True(t, ok)
	require.Equal(t, n, got)
}
