package prefix

import (
	"fmt"
	"net"
	"sync"

	"github.com/shurlinet/dncp/pkg/dncp"
	"github.com/shurlinet/dncp/pkg/tlv"
)

// Assigner hands every enabled local endpoint a distinct /assignedLen
// sub-prefix out of one delegated prefix, publishing each as an
// ASSIGNED_PREFIX TLV, and re-publishes the delegated prefix itself as a
// DELEGATED_PREFIX TLV (SPEC_FULL §D). Collisions are not resolved by
// retrying a different sub-index automatically — this mirrors hncp_pa's
// model where the node holding the delegation is authoritative for the
// split, so no other node should be publishing a clashing one.
type Assigner struct {
	core *dncp.Core

	mu        sync.Mutex
	delegated *net.IPNet
	assignLen int
	endpoints map[string]uint32 // endpoint name -> link id (LocalEndpointID)
	nextIndex uint64
	assigned  map[string]*net.IPNet // endpoint name -> assigned prefix
}

// NewAssigner constructs an Assigner for core. assignLen is the prefix
// length handed to each endpoint (typically 64).
func NewAssigner(core *dncp.Core, assignLen int) *Assigner {
	return &Assigner{
		core:      core,
		assignLen: assignLen,
		endpoints: make(map[string]uint32),
		assigned:  make(map[string]*net.IPNet),
	}
}

// SetDelegatedPrefix installs the delegated prefix this node is
// authoritative for (learned via an out-of-scope DHCPv6-PD client or
// static configuration) and publishes it.
func (a *Assigner) SetDelegatedPrefix(p *net.IPNet) error {
	a.mu.Lock()
	a.delegated = p
	a.mu.Unlock()
	return a.core.Publish(tlv.Attr{Type: tlv.TypeDelegatedPrefix, Payload: EncodeDelegatedPrefix(p)})
}

// EnableEndpoint registers endpoint (by name and its LocalEndpointID) and,
// if a delegated prefix is already set, assigns and publishes its
// sub-prefix. An endpoint registered before SetDelegatedPrefix is only
// recorded; SetDelegatedPrefix does not assign it a sub-prefix later.
// Call this once an endpoint has been enabled on the core.
func (a *Assigner) EnableEndpoint(name string, linkID uint32) error {
	a.mu.Lock()
	a.endpoints[name] = linkID
	delegated := a.delegated
	assignLen := a.assignLen
	_, already := a.assigned[name]
	var idx uint64
	if !already {
		idx = a.nextIndex
		a.nextIndex++
	}
	a.mu.Unlock()
	if already || delegated == nil {
		return nil
	}

	sub, err := SplitSubnet(delegated, assignLen, idx)
	if err != nil {
		return fmt.Errorf("prefix: assign endpoint %s: %w", name, err)
	}

	a.mu.Lock()
	a.assigned[name] = sub
	a.mu.Unlock()

	return a.core.Publish(tlv.Attr{
		Type:    tlv.TypeAssignedPrefix,
		Payload: EncodeAssignedPrefix(linkID, sub, 0, true),
	})
}

// Assigned returns the sub-prefix handed to endpoint, if any.
func (a *Assigner) Assigned(name string) (*net.IPNet, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.assigned[name]
	return p, ok
}
