// Package prefix supplements the core protocol with IPv6 prefix
// delegation and per-endpoint assignment, encoded as DELEGATED_PREFIX
// and ASSIGNED_PREFIX TLVs (SPEC_FULL §D, grounded on the commented-out
// dncp_tlv_ap_update/delegated-prefix header layout in
// original_source/src/hncp.c).
package prefix

import (
	"encoding/binary"
	"fmt"
	"net"
)

// DELEGATED_PREFIX payloads are a one-byte prefix length in bits followed
// by the prefix bytes, rounded up to a whole byte (hncp_t_delegated_prefix
// _header_s). ASSIGNED_PREFIX payloads add the owning endpoint's link id
// and a flags byte (preference + authoritative) ahead of the same shape
// (hncp_t_assigned_prefix_header_s).
const flagAuthoritative = 0x01

func preferenceFlags(preference uint8, authoritative bool) uint8 {
	f := preference << 1
	if authoritative {
		f |= flagAuthoritative
	}
	return f
}

func splitFlags(f uint8) (preference uint8, authoritative bool) {
	return f >> 1, f&flagAuthoritative != 0
}

func roundBitsToBytes(bits int) int { return (bits + 7) / 8 }

// EncodeDelegatedPrefix builds a DELEGATED_PREFIX TLV payload for p.
func EncodeDelegatedPrefix(p *net.IPNet) []byte {
	plen, _ := p.Mask.Size()
	nbytes := roundBitsToBytes(plen)
	buf := make([]byte, 1+nbytes)
	buf[0] = uint8(plen)
	copy(buf[1:], p.IP.To16()[:nbytes])
	return buf
}

// DecodeDelegatedPrefix parses a DELEGATED_PREFIX TLV payload.
func DecodeDelegatedPrefix(b []byte) (*net.IPNet, error) {
	if len(b) < 1 {
		return nil, fmt.Errorf("prefix: delegated prefix TLV too short")
	}
	plen := int(b[0])
	nbytes := roundBitsToBytes(plen)
	if len(b) < 1+nbytes {
		return nil, fmt.Errorf("prefix: delegated prefix TLV truncated")
	}
	ip := make(net.IP, 16)
	copy(ip, b[1:1+nbytes])
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(plen, 128)}, nil
}

// EncodeAssignedPrefix builds an ASSIGNED_PREFIX TLV payload for p,
// tagged with the owning local endpoint id.
func EncodeAssignedPrefix(linkID uint32, p *net.IPNet, preference uint8, authoritative bool) []byte {
	plen, _ := p.Mask.Size()
	nbytes := roundBitsToBytes(plen)
	buf := make([]byte, 6+nbytes)
	binary.BigEndian.PutUint32(buf[0:4], linkID)
	buf[4] = preferenceFlags(preference, authoritative)
	buf[5] = uint8(plen)
	copy(buf[6:], p.IP.To16()[:nbytes])
	return buf
}

// DecodeAssignedPrefix parses an ASSIGNED_PREFIX TLV payload.
func DecodeAssignedPrefix(b []byte) (linkID uint32, p *net.IPNet, preference uint8, authoritative bool, err error) {
	if len(b) < 6 {
		return 0, nil, 0, false, fmt.Errorf("prefix: assigned prefix TLV too short")
	}
	linkID = binary.BigEndian.Uint32(b[0:4])
	preference, authoritative = splitFlags(b[4])
	plen := int(b[5])
	nbytes := roundBitsToBytes(plen)
	if len(b) < 6+nbytes {
		return 0, nil, 0, false, fmt.Errorf("prefix: assigned prefix TLV truncated")
	}
	ip := make(net.IP, 16)
	copy(ip, b[6:6+nbytes])
	p = &net.IPNet{IP: ip, Mask: net.CIDRMask(plen, 128)}
	return linkID, p, preference, authoritative, nil
}

// SplitSubnet carves the subIndex'th /newPrefixLen sub-prefix out of
// delegated, the simplified form of hncp_pa's per-link assignment: every
// enabled endpoint gets one non-overlapping sub-prefix, chosen by index
// rather than the original's hash-and-collision-retry scheme (neither
// SplitSubnet nor Assigner detects or resolves a sub-prefix collision).
//
// Both delegated's length and newPrefixLen must be byte-aligned (true of
// every realistic home-delegation size: /48, /56, /60 delegated, /64
// assigned), which keeps the slicing a plain byte-index operation
// instead of general bit-shifting arithmetic.
func SplitSubnet(delegated *net.IPNet, newPrefixLen int, subIndex uint64) (*net.IPNet, error) {
	oldLen, _ := delegated.Mask.Size()
	if newPrefixLen <= oldLen || newPrefixLen > 128 {
		return nil, fmt.Errorf("prefix: new length %d not strictly longer than delegated %d", newPrefixLen, oldLen)
	}
	if oldLen%8 != 0 || newPrefixLen%8 != 0 {
		return nil, fmt.Errorf("prefix: lengths %d/%d must be byte-aligned", oldLen, newPrefixLen)
	}
	extraBytes := (newPrefixLen - oldLen) / 8
	maxIndex := uint64(1) << uint(8*min(extraBytes, 8))
	if extraBytes < 8 && subIndex >= maxIndex {
		return nil, fmt.Errorf("prefix: sub-index %d does not fit in %d extra bytes", subIndex, extraBytes)
	}

	ip := append(net.IP(nil), delegated.IP.To16()...)
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], subIndex)
	startByte := oldLen / 8
	copy(ip[startByte:startByte+extraBytes], idx[8-extraBytes:])
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(newPrefixLen, 128)}, nil
}
