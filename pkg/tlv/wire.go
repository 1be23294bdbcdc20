package tlv

import (
	"encoding/binary"
)

// NodeIDLen is the default node-identifier length in bytes (spec §3).
const NodeIDLen = 4

// LinkID is the payload of a TypeLinkID TLV: the sender's node-identifier
// and the sender's local endpoint id.
type LinkID struct {
	NodeID     []byte
	EndpointID uint32
}

func (l LinkID) Marshal() []byte {
	buf := make([]byte, len(l.NodeID)+4)
	copy(buf, l.NodeID)
	binary.BigEndian.PutUint32(buf[len(l.NodeID):], l.EndpointID)
	return buf
}

func UnmarshalLinkID(payload []byte, nodeIDLen int) (LinkID, bool) {
	if len(payload) != nodeIDLen+4 {
		return LinkID{}, false
	}
	id := make([]byte, nodeIDLen)
	copy(id, payload[:nodeIDLen])
	return LinkID{
		NodeID:     id,
		EndpointID: binary.BigEndian.Uint32(payload[nodeIDLen:]),
	}, true
}

// NodeState is the payload of a TypeNodeState TLV: a per-node summary.
type NodeState struct {
	NodeID             []byte
	UpdateNumber       uint32
	MsSinceOrigination uint32
	NodeDataHash       [8]byte
}

func (s NodeState) Marshal() []byte {
	buf := make([]byte, len(s.NodeID)+4+4+8)
	off := 0
	copy(buf[off:], s.NodeID)
	off += len(s.NodeID)
	binary.BigEndian.PutUint32(buf[off:], s.UpdateNumber)
	off += 4
	binary.BigEndian.PutUint32(buf[off:], s.MsSinceOrigination)
	off += 4
	copy(buf[off:], s.NodeDataHash[:])
	return buf
}

func UnmarshalNodeState(payload []byte, nodeIDLen int) (NodeState, bool) {
	if len(payload) != nodeIDLen+4+4+8 {
		return NodeState{}, false
	}
	var s NodeState
	off := 0
	s.NodeID = append([]byte(nil), payload[off:off+nodeIDLen]...)
	off += nodeIDLen
	s.UpdateNumber = binary.BigEndian.Uint32(payload[off:])
	off += 4
	s.MsSinceOrigination = binary.BigEndian.Uint32(payload[off:])
	off += 4
	copy(s.NodeDataHash[:], payload[off:off+8])
	return s, true
}

// NodeDataHeader is the fixed-size prefix of a TypeNodeData TLV payload;
// the remainder of the payload is the node's inner TLV stream.
type NodeDataHeader struct {
	NodeID       []byte
	UpdateNumber uint32
}

func (h NodeDataHeader) Marshal() []byte {
	buf := make([]byte, len(h.NodeID)+4)
	copy(buf, h.NodeID)
	binary.BigEndian.PutUint32(buf[len(h.NodeID):], h.UpdateNumber)
	return buf
}

// SplitNodeData parses the NodeDataHeader from the front of a TypeNodeData
// payload and returns the remaining inner-TLV bytes.
func SplitNodeData(payload []byte, nodeIDLen int) (NodeDataHeader, []byte, bool) {
	if len(payload) < nodeIDLen+4 {
		return NodeDataHeader{}, nil, false
	}
	id := append([]byte(nil), payload[:nodeIDLen]...)
	upd := binary.BigEndian.Uint32(payload[nodeIDLen : nodeIDLen+4])
	return NodeDataHeader{NodeID: id, UpdateNumber: upd}, payload[nodeIDLen+4:], true
}

// Neighbor is the payload of a TypeNeighbor TLV: an adjacency record
// published inside a node's own data.
type Neighbor struct {
	PeerNodeID     []byte
	PeerEndpointID uint32
	LocalEndpointID uint32
}

func (n Neighbor) Marshal() []byte {
	buf := make([]byte, len(n.PeerNodeID)+4+4)
	off := 0
	copy(buf[off:], n.PeerNodeID)
	off += len(n.PeerNodeID)
	binary.BigEndian.PutUint32(buf[off:], n.PeerEndpointID)
	off += 4
	binary.BigEndian.PutUint32(buf[off:], n.LocalEndpointID)
	return buf
}

func UnmarshalNeighbor(payload []byte, nodeIDLen int) (Neighbor, bool) {
	if len(payload) != nodeIDLen+4+4 {
		return Neighbor{}, false
	}
	var n Neighbor
	off := 0
	n.PeerNodeID = append([]byte(nil), payload[off:off+nodeIDLen]...)
	off += nodeIDLen
	n.PeerEndpointID = binary.BigEndian.Uint32(payload[off:])
	off += 4
	n.LocalEndpointID = binary.BigEndian.Uint32(payload[off:])
	return n, true
}

// Version is the payload of a TypeVersion TLV: a protocol version byte
// plus a free-form user-agent string.
type Version struct {
	Version   uint8
	UserAgent string
}

func (v Version) Marshal() []byte {
	buf := make([]byte, 4+len(v.UserAgent))
	buf[0] = v.Version
	copy(buf[4:], v.UserAgent)
	return buf
}

func UnmarshalVersion(payload []byte) (Version, bool) {
	if len(payload) < 4 {
		return Version{}, false
	}
	return Version{Version: payload[0], UserAgent: string(payload[4:])}, true
}

// KeepAliveInterval is the payload of a TypeKeepAliveInterval TLV: the
// sender's keep-alive period in milliseconds.
type KeepAliveInterval struct {
	Milliseconds uint32
}

func (k KeepAliveInterval) Marshal() []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, k.Milliseconds)
	return buf
}

func UnmarshalKeepAliveInterval(payload []byte) (KeepAliveInterval, bool) {
	if len(payload) != 4 {
		return KeepAliveInterval{}, false
	}
	return KeepAliveInterval{Milliseconds: binary.BigEndian.Uint32(payload)}, true
}

// ReqNodeData is the payload of a TypeReqNodeData TLV: a target node-id.
type ReqNodeData struct {
	NodeID []byte
}

func (r ReqNodeData) Marshal() []byte {
	return append([]byte(nil), r.NodeID...)
}

func UnmarshalReqNodeData(payload []byte, nodeIDLen int) (ReqNodeData, bool) {
	if len(payload) != nodeIDLen {
		return ReqNodeData{}, false
	}
	return ReqNodeData{NodeID: append([]byte(nil), payload...)}, true
}
