package dncp

import (
	"github.com/shurlinet/dncp/pkg/tlv"
)

// Validator inspects a candidate TLV body before it is installed into the
// Node Store (spec §4.2). It returns the (possibly truncated) TLV list to
// install, or ErrRejected if the body must not be installed.
type Validator func(node *Node, isOwn bool, candidate []tlv.Attr) ([]tlv.Attr, error)

// DefaultValidator returns the profile validator described in spec §4.2:
// it inspects the protocol VERSION TLV and rejects bodies whose version
// byte disagrees with the local node's own version, mirroring
// dncp_profile_node_validate_data in the original hnetd source. Every
// remote body carrying a VERSION TLV is checked, including the first one
// seen for a node; an accepted body's version is recorded on the node.
// Bodies without a VERSION TLV, and the own node's body, are never
// rejected.
func DefaultValidator(ownVersion uint8) Validator {
	return func(node *Node, isOwn bool, candidate []tlv.Attr) ([]tlv.Attr, error) {
		var version uint8
		var hasVersion bool
		for _, a := range candidate {
			if a.Type != tlv.TypeVersion {
				continue
			}
			v, ok := tlv.UnmarshalVersion(a.Payload)
			if !ok {
				continue
			}
			version, hasVersion = v.Version, true
			break
		}

		if isOwn || !hasVersion {
			return candidate, nil
		}
		if version != ownVersion {
			return nil, ErrRejected
		}
		node.version = version
		node.hasVersion = true
		return candidate, nil
	}
}
