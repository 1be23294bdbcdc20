package dncp

import (
	"encoding/binary"
	"sort"

	"github.com/shurlinet/dncp/pkg/tlv"
	"github.com/zeebo/blake3"
)

// digest8 returns the first 8 bytes of a blake3 digest over data, the
// "strong digest" spec §3 calls for both node_data_hash and network_hash.
func digest8(data []byte) [8]byte {
	sum := blake3.Sum256(data)
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

// nodeDataHash computes node_data_hash(n): the first 8 bytes of a digest
// over the canonical serialization of n's TLVs (spec §3, property #2).
// Callers must pass an already-canonicalized TLV list.
func nodeDataHash(tlvs []tlv.Attr) [8]byte {
	return digest8(tlv.EncodeAll(tlvs))
}

// networkHash computes network_hash: the first 8 bytes of a digest over
// the concatenation, in ascending node-id order, of (node_id,
// update_number, node_data_hash) for every reachable node, with
// ms_since_origination renormalized to zero (spec §3, §9 open question).
func networkHash(nodes map[NodeID]*Node) [8]byte {
	ids := make([]NodeID, 0, len(nodes))
	for id, n := range nodes {
		if n.Reachable {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var buf []byte
	for _, id := range ids {
		n := nodes[id]
		buf = append(buf, id.Bytes()...)
		var upd [4]byte
		binary.BigEndian.PutUint32(upd[:], n.UpdateNumber)
		buf = append(buf, upd[:]...)
		buf = append(buf, n.DataHash[:]...)
	}
	return digest8(buf)
}
