package dncp

import (
	"sync"
	"time"

	"github.com/shurlinet/dncp/pkg/tlv"
)

// UpsertResult reports the outcome of Store.UpsertRemote (spec §4.2).
type UpsertResult int

const (
	Unchanged UpsertResult = iota
	Inserted
	Updated
	Stale
)

// Store is the in-memory Node Store: every node's ordered TLV sequence,
// its update sequence number, origination timestamp, cached node-data
// hash, and the derived network hash (spec §3, §4.2).
//
// Only the Protocol State Machine mutates a Store; other components only
// read from it (spec §5). The mutex exists solely so status/API reads
// from other goroutines (e.g. the daemon's HTTP handlers) see a
// consistent snapshot — it is not a substitute for the single-writer
// discipline.
type Store struct {
	mu        sync.RWMutex
	ownID     NodeID
	nodeIDLen int
	nodes     map[NodeID]*Node
	netHash   [8]byte
	validate  Validator
}

// NewStore creates a Store whose own node is ownID. The own node is
// inserted immediately, with UpdateNumber 0 and Reachable true (spec §3
// "Own node is always reachable").
func NewStore(ownID NodeID, nodeIDLen int, validate Validator, now time.Time) *Store {
	if validate == nil {
		validate = func(_ *Node, _ bool, c []tlv.Attr) ([]tlv.Attr, error) { return c, nil }
	}
	s := &Store{
		ownID:     ownID,
		nodeIDLen: nodeIDLen,
		nodes:     make(map[NodeID]*Node),
		validate:  validate,
	}
	own := &Node{
		ID:              ownID,
		OriginationTime: now,
		Reachable:       true,
	}
	own.TLVs = canonicalize(nil)
	own.DataHash = nodeDataHash(own.TLVs)
	s.nodes[ownID] = own
	s.netHash = networkHash(s.nodes)
	return s
}

// OwnID returns the local node's identifier.
func (s *Store) OwnID() NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownID
}

// NetworkHash returns the cached network-wide hash.
func (s *Store) NetworkHash() [8]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.netHash
}

// Find returns a copy of the node's header fields, or false if unknown.
// The returned Node's TLVs slice is the live canonical slice and must not
// be mutated by the caller.
func (s *Store) Find(id NodeID) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil, false
	}
	cp := *n
	return &cp, true
}

// ForEachReachable calls f for every reachable node, in unspecified order.
func (s *Store) ForEachReachable(f func(*Node)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.nodes {
		if n.Reachable {
			f(n)
		}
	}
}

// Len returns the number of nodes currently tracked (reachable or not).
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func (s *Store) recomputeNetHash() {
	s.netHash = networkHash(s.nodes)
}

// UpsertRemote updates a node's header from a received NODE_STATE summary
// (spec §4.2). now is used as the node's OriginationTime approximation
// when the node is first created (derived from ms_since_origination).
func (s *Store) UpsertRemote(summary tlv.NodeState, now time.Time) UpsertResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := NewNodeID(summary.NodeID)
	n, ok := s.nodes[id]
	if !ok {
		n = &Node{
			ID:              id,
			OriginationTime: now.Add(-time.Duration(summary.MsSinceOrigination) * time.Millisecond),
		}
		s.nodes[id] = n
		n.UpdateNumber = summary.UpdateNumber
		n.DataHash = summary.NodeDataHash
		n.NeedsData = true
		return Inserted
	}

	if summary.UpdateNumber <= n.UpdateNumber {
		return Stale
	}

	n.UpdateNumber = summary.UpdateNumber
	if n.DataHash != summary.NodeDataHash {
		n.DataHash = summary.NodeDataHash
		n.NeedsData = true
	}
	return Updated
}

// ReplaceBody installs a node's full TLV body (spec §4.2), accepted only
// when updateNumber exceeds the stored one, or equals it while the node
// still NeedsData (the body a NODE_STATE summary announced). On acceptance it runs the
// validator, and on success recomputes the node's data hash, clears
// NeedsData, and recomputes the network hash.
func (s *Store) ReplaceBody(id NodeID, updateNumber uint32, tlvs []tlv.Attr, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		n = &Node{ID: id, OriginationTime: now}
		s.nodes[id] = n
	} else if updateNumber < n.UpdateNumber || (updateNumber == n.UpdateNumber && !n.NeedsData) {
		return ErrStale
	}

	canon := canonicalize(tlvs)
	accepted, err := s.validate(n, id == s.ownID, canon)
	if err != nil {
		return err
	}

	n.TLVs = accepted
	n.UpdateNumber = updateNumber
	n.DataHash = nodeDataHash(accepted)
	n.NeedsData = false
	s.recomputeNetHash()
	return nil
}

// Publish adds a TLV to the own node's body (spec §4.2). A duplicate
// (type, payload) pair is an idempotent no-op (spec §7) and returns
// false. Otherwise the own node's update_number is bumped, its hash is
// recomputed, and the network hash is recomputed.
func (s *Store) Publish(a tlv.Attr) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	own := s.nodes[s.ownID]
	if findAttr(own.TLVs, a.Type, a.Payload) >= 0 {
		return false
	}
	own.TLVs = canonicalize(append(own.TLVs, a))
	own.UpdateNumber++
	own.DataHash = nodeDataHash(own.TLVs)
	s.recomputeNetHash()
	return true
}

// Unpublish removes a TLV from the own node's body. A no-op (returns
// false) if the TLV is not present.
func (s *Store) Unpublish(a tlv.Attr) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	own := s.nodes[s.ownID]
	idx := findAttr(own.TLVs, a.Type, a.Payload)
	if idx < 0 {
		return false
	}
	next := append([]tlv.Attr(nil), own.TLVs[:idx]...)
	next = append(next, own.TLVs[idx+1:]...)
	own.TLVs = next
	own.UpdateNumber++
	own.DataHash = nodeDataHash(own.TLVs)
	s.recomputeNetHash()
	return true
}

// ReplaceOwnIdentifier installs a fresh node-identifier for the local
// node, as required on a second node-id collision (spec §4.5): the own
// node is re-created under the new id with update_number reset to 1, and
// the old entry is dropped.
func (s *Store) ReplaceOwnIdentifier(newID NodeID, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.nodes[s.ownID]
	delete(s.nodes, s.ownID)

	own := &Node{
		ID:              newID,
		OriginationTime: now,
		Reachable:       true,
		UpdateNumber:    1,
	}
	if old != nil {
		own.TLVs = canonicalize(old.TLVs)
	}
	own.DataHash = nodeDataHash(own.TLVs)
	s.nodes[newID] = own
	s.ownID = newID
	s.recomputeNetHash()
}

// BumpOwnUpdateNumber raises the own node's update_number strictly above
// observed, used on first node-id collision (spec §4.5).
func (s *Store) BumpOwnUpdateNumber(observed uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	own := s.nodes[s.ownID]
	if observed >= own.UpdateNumber {
		own.UpdateNumber = observed + 1
	}
	s.recomputeNetHash()
}

// Prune recomputes node reachability by traversing mutual NEIGHBOR edges
// starting from the own node, and deletes nodes that have been
// unreachable for longer than gracePeriod (spec §4.5, §3 Lifecycle). It
// returns true if the reachable set or the network hash changed.
func (s *Store) Prune(now time.Time, gracePeriod time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	reachable := s.computeMutualReachability()

	changed := false
	for id, n := range s.nodes {
		nowReachable := reachable[id]
		if nowReachable != n.Reachable {
			changed = true
		}
		n.Reachable = nowReachable
		if nowReachable {
			n.UnreachableSince = time.Time{}
		} else if n.UnreachableSince.IsZero() {
			// First observation of this node as unreachable — including a
			// node that was never mutually reachable to begin with — starts
			// its grace-period clock.
			n.UnreachableSince = now
		}
	}

	for id, n := range s.nodes {
		if id == s.ownID || n.Reachable {
			continue
		}
		if !n.UnreachableSince.IsZero() && now.Sub(n.UnreachableSince) > gracePeriod {
			delete(s.nodes, id)
			changed = true
		}
	}

	if changed {
		s.recomputeNetHash()
	}
	return changed
}

// computeMutualReachability performs the BFS described in spec §4.5: an
// edge A -> (B, B_ep, A_ep) counts iff B publishes the symmetric edge
// B -> (A, A_ep, B_ep).
func (s *Store) computeMutualReachability() map[NodeID]bool {
	type edge struct {
		peerEp, localEp uint32
	}
	adjacency := make(map[NodeID]map[NodeID][]edge, len(s.nodes))
	for id, n := range s.nodes {
		for _, nb := range neighborsOf(n, s.nodeIDLen) {
			peerID := NewNodeID(nb.PeerNodeID)
			if adjacency[id] == nil {
				adjacency[id] = make(map[NodeID][]edge)
			}
			adjacency[id][peerID] = append(adjacency[id][peerID], edge{peerEp: nb.PeerEndpointID, localEp: nb.LocalEndpointID})
		}
	}

	mutual := func(a, b NodeID) bool {
		for _, eAB := range adjacency[a][b] {
			for _, eBA := range adjacency[b][a] {
				if eAB.localEp == eBA.peerEp && eAB.peerEp == eBA.localEp {
					return true
				}
			}
		}
		return false
	}

	reachable := map[NodeID]bool{s.ownID: true}
	queue := []NodeID{s.ownID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for peerID := range adjacency[cur] {
			if reachable[peerID] {
				continue
			}
			if _, ok := s.nodes[peerID]; !ok {
				continue
			}
			if mutual(cur, peerID) {
				reachable[peerID] = true
				queue = append(queue, peerID)
			}
		}
	}
	return reachable
}
