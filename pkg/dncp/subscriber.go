package dncp

import "github.com/shurlinet/dncp/pkg/tlv"

// Subscriber is a set of optional callbacks an application layer
// registers to observe state changes (spec §6). Every field is nil-safe:
// a subscriber only needs to set the callbacks it cares about. Callbacks
// are invoked synchronously from the Core's single event-processing
// goroutine; they may call Core.Publish/Unpublish but must not block
// (spec §5, §6).
type Subscriber struct {
	// LocalTLVChange fires once per accepted Publish/Unpublish of the
	// own node's body.
	LocalTLVChange func(a tlv.Attr, added bool)

	// RemoteTLVChange fires once per TLV added or removed from a remote
	// node's body as a result of ReplaceBody.
	RemoteTLVChange func(node NodeID, a tlv.Attr, added bool)

	// Republish fires on every maintenance tick (Config.MaintenanceInterval),
	// giving the application layer a chance to emit derived TLVs (e.g. DNS
	// zone records, as internal/dnssd does).
	Republish func()

	// LinkAddressChanged is accepted for registration, but Core never
	// invokes it: Core does not track endpoint address sets.
	LinkAddressChanged func(endpoint string)
}
