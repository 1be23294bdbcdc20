package tlv

// Well-known DNCP/HNCP TLV type numbers (spec §3). Application-layer
// types (prefixes, DNS zones, router name, trust verdicts) are opaque to
// this package; only the ones the core dispatches on are named here.
const (
	TypeLinkID            uint16 = 1
	TypeReqNetHash         uint16 = 2
	TypeReqNodeData        uint16 = 3
	TypeNetworkHash        uint16 = 4
	TypeNodeState          uint16 = 5
	TypeNodeData           uint16 = 6
	TypeNeighbor           uint16 = 8
	TypeVersion            uint16 = 10
	TypeTrustVerdict       uint16 = 20
	TypeExternalConnection uint16 = 41
	TypeDelegatedPrefix    uint16 = 42
	TypeAssignedPrefix     uint16 = 43
	TypeDHCPOptions        uint16 = 44
	TypeDHCPv6Options      uint16 = 45
	TypeRouterAddress      uint16 = 46
	TypeDNSDelegatedZone   uint16 = 50
	TypeDNSRouterName      uint16 = 51
	TypeDNSDomainName      uint16 = 52
	TypeRoutingProtocol    uint16 = 60
	TypeKeepAliveInterval  uint16 = 123

	// TypeSignature is reserved; never produced or validated (spec §9).
	TypeSignature uint16 = 0xFFFF
)
