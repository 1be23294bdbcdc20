package dncp

import (
	"sync"
	"time"
)

// Peer is a remote endpoint heard on a local endpoint (spec §3).
// Identified within an Endpoint by (NodeID, EndpointID).
type Peer struct {
	NodeID      NodeID
	EndpointID  uint32 // the peer's local endpoint id, from its LINK_ID
	Address     string // transport address, opaque to the core
	LastContact time.Time

	// KeepAliveOverride is the keep-alive period advertised by this peer
	// via a KEEPALIVE_INTERVAL TLV; zero means "use the endpoint default"
	// (SPEC_FULL §D.3).
	KeepAliveOverride time.Duration
}

type peerKey struct {
	node NodeID
	ep   uint32
}

// Endpoint tracks one enabled local interface and the peers last heard
// from on it (spec §3, §4.3).
type Endpoint struct {
	Name              string
	IfIndex           int
	LocalEndpointID   uint32
	Enabled           bool
	KeepAliveInterval time.Duration
	Trickle           *Trickle

	mu    sync.RWMutex
	peers map[peerKey]*Peer
}

func newEndpoint(name string, ifIndex int, id uint32, keepAlive time.Duration, tr *Trickle) *Endpoint {
	return &Endpoint{
		Name:              name,
		IfIndex:           ifIndex,
		LocalEndpointID:   id,
		KeepAliveInterval: keepAlive,
		Trickle:           tr,
		peers:             make(map[peerKey]*Peer),
	}
}

// Peers returns a snapshot of all peers on this endpoint.
func (e *Endpoint) Peers() []*Peer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Peer, 0, len(e.peers))
	for _, p := range e.peers {
		cp := *p
		out = append(out, &cp)
	}
	return out
}

// PeerCount reports how many peers are currently tracked on this endpoint.
func (e *Endpoint) PeerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.peers)
}

// notePeer upserts a peer (spec §4.3 note_peer). It returns the peer and
// whether this call inserted a brand-new entry.
func (e *Endpoint) notePeer(nodeID NodeID, peerEndpointID uint32, addr string, now time.Time) (*Peer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := peerKey{node: nodeID, ep: peerEndpointID}
	p, ok := e.peers[key]
	if !ok {
		p = &Peer{NodeID: nodeID, EndpointID: peerEndpointID, Address: addr, LastContact: now}
		e.peers[key] = p
		return p, true
	}
	p.Address = addr
	p.LastContact = now
	return p, false
}

// setKeepAliveOverride records a per-peer keep-alive override (SPEC_FULL §D.3).
func (e *Endpoint) setKeepAliveOverride(nodeID NodeID, peerEndpointID uint32, d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.peers[peerKey{node: nodeID, ep: peerEndpointID}]; ok {
		p.KeepAliveOverride = d
	}
}

// expirePeers drops peers whose LastContact is older than their liveness
// window (keep-alive interval, or override, times 5/2 — spec §4.3, §6),
// returning the dropped peers.
func (e *Endpoint) expirePeers(now time.Time) []*Peer {
	e.mu.Lock()
	defer e.mu.Unlock()

	var dropped []*Peer
	for key, p := range e.peers {
		window := p.KeepAliveOverride
		if window == 0 {
			window = e.KeepAliveInterval
		}
		liveness := window * 5 / 2
		if now.Sub(p.LastContact) > liveness {
			dropped = append(dropped, p)
			delete(e.peers, key)
		}
	}
	return dropped
}

// removePeer removes a single peer immediately (used when the transport
// reports the peer is gone), returning true if it was present.
func (e *Endpoint) removePeer(nodeID NodeID, peerEndpointID uint32) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := peerKey{node: nodeID, ep: peerEndpointID}
	if _, ok := e.peers[key]; !ok {
		return false
	}
	delete(e.peers, key)
	return true
}
