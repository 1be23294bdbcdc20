// Package dncp implements the core of the distributed node configuration
// protocol (DNCP/HNCP): the gossip-style state synchronization engine
// described in spec.md §3-§6 — data model, Node Store, Endpoint & Peer
// Table, Trickle Engine, and the Protocol State Machine that ties them
// together. The UDP/multicast socket layer is an external collaborator,
// supplied via the Transport facade (see internal/transport).
package dncp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shurlinet/dncp/pkg/tlv"
)

// Config configures a new Core (spec §4, §6).
type Config struct {
	// NodeID is the local node identifier. If empty, one is derived from
	// Transport.HWAddrs, falling back to a random identifier (spec §6).
	NodeID NodeID

	// NodeIDLen is the node-identifier length in bytes (default 4, §3).
	NodeIDLen int

	Imin, Imax time.Duration
	K          int

	KeepAliveInterval time.Duration
	GracePeriod       time.Duration

	// Version and UserAgent populate the local node's VERSION TLV
	// (SPEC_FULL §D.1).
	Version   uint8
	UserAgent string

	Transport Transport
	Clock     Clock
	Metrics   Metrics

	// MaintenanceInterval governs how often pruning and peer-expiry run.
	// Defaults to 1s, which satisfies spec §4.5's "at most every 20ms,
	// no less often than once per grace_period" window without needing
	// precise sub-20ms scheduling for a maintenance phase that is not
	// latency-sensitive the way Trickle emission is.
	MaintenanceInterval time.Duration
}

func (c *Config) setDefaults() {
	if c.NodeIDLen == 0 {
		c.NodeIDLen = tlv.NodeIDLen
	}
	if c.Imin == 0 {
		c.Imin = DefaultImin
	}
	if c.Imax == 0 {
		c.Imax = DefaultImax
	}
	if c.K == 0 {
		c.K = DefaultK
	}
	if c.KeepAliveInterval == 0 {
		c.KeepAliveInterval = 24 * time.Second
	}
	if c.GracePeriod == 0 {
		c.GracePeriod = 60 * time.Second
	}
	if c.Clock == nil {
		c.Clock = RealClock{}
	}
	if c.Metrics == nil {
		c.Metrics = NoopMetrics{}
	}
	if c.MaintenanceInterval == 0 {
		c.MaintenanceInterval = time.Second
	}
}

// Core is the Protocol State Machine (spec §4.5): it ingests decoded
// messages, drives Trickle consistency events, requests missing node
// data, detects own-identifier collisions, prunes unreachable nodes,
// publishes own TLVs, and fans out change notifications to subscribers.
type Core struct {
	cfg Config

	store     *Store
	transport Transport
	clock     Clock
	metrics   Metrics

	mu        sync.Mutex
	endpoints map[string]*endpointState
	nextEpID  uint32

	subMu       sync.RWMutex
	subscribers []*Subscriber

	collisionStreak int

	events    chan coreEvent
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// endpointState pairs an Endpoint with the bookkeeping the run loop needs
// that isn't part of the spec's public Endpoint shape.
type endpointState struct {
	*Endpoint
	lastEmit      time.Time
	lastReqByPeer map[peerKey]time.Time
}

// New constructs a Core. The Transport must already be usable; New does
// not call Join for any endpoint — call EnableEndpoint for each interface
// to enroll (spec §4.3).
func New(cfg Config) (*Core, error) {
	cfg.setDefaults()
	if cfg.Transport == nil {
		return nil, fmt.Errorf("dncp: Config.Transport is required")
	}

	now := cfg.Clock.Now()
	ownID := cfg.NodeID
	if ownID == "" {
		ownID = DeriveNodeID(cfg.Transport.HWAddrs(), cfg.NodeIDLen)
	}

	store := NewStore(ownID, cfg.NodeIDLen, DefaultValidator(cfg.Version), now)

	c := &Core{
		cfg:       cfg,
		store:     store,
		transport: cfg.Transport,
		clock:     cfg.Clock,
		metrics:   cfg.Metrics,
		endpoints: make(map[string]*endpointState),
		events:    make(chan coreEvent, 64),
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())

	versionTLV := tlv.Attr{Type: tlv.TypeVersion, Payload: tlv.Version{Version: cfg.Version, UserAgent: cfg.UserAgent}.Marshal()}
	store.Publish(versionTLV)

	c.wg.Add(1)
	go c.run()

	return c, nil
}

// Store exposes the Node Store for read-only inspection (status APIs,
// tests).
func (c *Core) Store() *Store { return c.store }

// Subscribe registers a Subscriber (spec §6).
func (c *Core) Subscribe(s *Subscriber) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subscribers = append(c.subscribers, s)
}

// Close shuts down the Core: cancels all timers and drops the transport
// reference synchronously (spec §5 "Cancellation").
func (c *Core) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		c.wg.Wait()
		c.transport = nil
	})
	return nil
}

// --- Public operations; each funnels through the single input queue. ---

type coreEvent struct {
	kind     eventKind
	inbound  Inbound
	attr     tlv.Attr
	endpoint string
	ifIndex  int
	result   chan error
}

type eventKind int

const (
	evReceived eventKind = iota
	evPublish
	evUnpublish
	evEnableEndpoint
	evDisableEndpoint
)

func (c *Core) submit(ev coreEvent) error {
	select {
	case c.events <- ev:
	case <-c.ctx.Done():
		return ErrClosed
	}
	if ev.result == nil {
		return nil
	}
	select {
	case err := <-ev.result:
		return err
	case <-c.ctx.Done():
		return ErrClosed
	}
}

// Publish adds a TLV to the local node's body (spec §4.2).
func (c *Core) Publish(a tlv.Attr) error {
	res := make(chan error, 1)
	return c.submit(coreEvent{kind: evPublish, attr: a, result: res})
}

// Unpublish removes a TLV from the local node's body.
func (c *Core) Unpublish(a tlv.Attr) error {
	res := make(chan error, 1)
	return c.submit(coreEvent{kind: evUnpublish, attr: a, result: res})
}

// EnableEndpoint enrolls a local interface in the protocol (spec §4.3).
// It returns false (with a nil error) if the transport failed to join
// the multicast group, matching spec §7's "surfaced to caller of enable
// as a boolean false".
func (c *Core) EnableEndpoint(name string, ifIndex int) (bool, error) {
	res := make(chan error, 1)
	err := c.submit(coreEvent{kind: evEnableEndpoint, endpoint: name, ifIndex: ifIndex, result: res})
	if err == errJoinFailed {
		return false, nil
	}
	return err == nil, err
}

// DisableEndpoint withdraws a local interface from the protocol.
func (c *Core) DisableEndpoint(name string) error {
	res := make(chan error, 1)
	return c.submit(coreEvent{kind: evDisableEndpoint, endpoint: name, result: res})
}

// Deliver feeds one inbound datagram into the core (called by whatever
// drives Transport.Recv in a loop; see internal/dncpd).
func (c *Core) Deliver(ib Inbound) {
	select {
	case c.events <- coreEvent{kind: evReceived, inbound: ib}:
	case <-c.ctx.Done():
	}
}

var errJoinFailed = fmt.Errorf("dncp: transport join failed")

// --- The single event-processing goroutine (spec §5). ---

func (c *Core) run() {
	defer c.wg.Done()

	maintenance := time.NewTicker(c.cfg.MaintenanceInterval)
	defer maintenance.Stop()

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	var timerEndpoint string

	rescheduleTimer := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		var next time.Time
		var which string
		c.mu.Lock()
		for name, es := range c.endpoints {
			if !es.Enabled || es.Trickle == nil {
				continue
			}
			d := es.Trickle.NextDeadline()
			if next.IsZero() || d.Before(next) {
				next, which = d, name
			}
		}
		c.mu.Unlock()
		if next.IsZero() {
			return
		}
		timerEndpoint = which
		d := next.Sub(c.clock.Now())
		if d < 0 {
			d = 0
		}
		timer.Reset(d)
	}

	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.events:
			c.handleEvent(ev)
			rescheduleTimer()
		case <-timer.C:
			c.onTrickleFire(timerEndpoint)
			rescheduleTimer()
		case <-maintenance.C:
			c.runMaintenance()
			rescheduleTimer()
		}
	}
}

func (c *Core) handleEvent(ev coreEvent) {
	switch ev.kind {
	case evReceived:
		c.handleInbound(ev.inbound)
	case evPublish:
		c.handlePublish(ev.attr)
		ev.result <- nil
	case evUnpublish:
		c.handleUnpublish(ev.attr)
		ev.result <- nil
	case evEnableEndpoint:
		ev.result <- c.handleEnableEndpoint(ev.endpoint, ev.ifIndex)
	case evDisableEndpoint:
		c.handleDisableEndpoint(ev.endpoint)
		ev.result <- nil
	}
}

// --- Publish / Unpublish ---

func (c *Core) handlePublish(a tlv.Attr) {
	if c.store.Publish(a) {
		c.onLocalChange(a, true)
	}
}

func (c *Core) handleUnpublish(a tlv.Attr) {
	if c.store.Unpublish(a) {
		c.onLocalChange(a, false)
	}
}

func (c *Core) onLocalChange(a tlv.Attr, added bool) {
	now := c.clock.Now()
	c.resetAllTrickles(now)

	c.subMu.RLock()
	subs := append([]*Subscriber(nil), c.subscribers...)
	c.subMu.RUnlock()
	for _, s := range subs {
		if s.LocalTLVChange != nil {
			s.LocalTLVChange(a, added)
		}
	}
}

func (c *Core) resetAllTrickles(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, es := range c.endpoints {
		if es.Enabled && es.Trickle != nil {
			es.Trickle.OnExternalInconsistent(now)
		}
	}
}

// --- Endpoint enable/disable ---

func (c *Core) handleEnableEndpoint(name string, ifIndex int) error {
	c.mu.Lock()
	if _, ok := c.endpoints[name]; ok {
		c.mu.Unlock()
		return nil
	}
	c.nextEpID++
	id := c.nextEpID
	c.mu.Unlock()

	if err := c.transport.Join(name); err != nil {
		slog.Warn("dncp: join multicast group failed", "endpoint", name, "error", err)
		return errJoinFailed
	}

	now := c.clock.Now()
	seed := int64(id)<<32 ^ now.UnixNano()
	tr := NewTrickle(c.cfg.Imin, c.cfg.Imax, c.cfg.K, seed)
	ep := newEndpoint(name, ifIndex, id, c.cfg.KeepAliveInterval, tr)
	ep.Enabled = true
	tr.Start(now)

	c.mu.Lock()
	c.endpoints[name] = &endpointState{Endpoint: ep, lastReqByPeer: make(map[peerKey]time.Time)}
	c.mu.Unlock()

	slog.Info("dncp: endpoint enabled", "endpoint", name, "if_index", ifIndex)
	return nil
}

func (c *Core) handleDisableEndpoint(name string) {
	c.mu.Lock()
	_, ok := c.endpoints[name]
	delete(c.endpoints, name)
	c.mu.Unlock()
	if !ok {
		return
	}
	if err := c.transport.Leave(name); err != nil {
		slog.Warn("dncp: leave multicast group failed", "endpoint", name, "error", err)
	}
	slog.Info("dncp: endpoint disabled", "endpoint", name)
}

// --- Inbound message processing (spec §4.5) ---

func (c *Core) handleInbound(ib Inbound) {
	attrs, err := tlv.Decode(ib.Data)
	if err != nil {
		c.metrics.MalformedDatagram(ib.Endpoint)
		slog.Debug("dncp: malformed datagram", "endpoint", ib.Endpoint, "src", ib.Src, "error", err)
		return
	}

	c.mu.Lock()
	es, ok := c.endpoints[ib.Endpoint]
	c.mu.Unlock()
	if !ok || !es.Enabled {
		return
	}

	now := c.clock.Now()

	var peerID NodeID
	var peerEp uint32
	haveLink := false
	for _, a := range attrs {
		if a.Type == tlv.TypeLinkID {
			if lid, ok := tlv.UnmarshalLinkID(a.Payload, c.cfg.NodeIDLen); ok {
				peerID, peerEp, haveLink = NewNodeID(lid.NodeID), lid.EndpointID, true
			}
			break
		}
	}
	if haveLink {
		if _, inserted := es.notePeer(peerID, peerEp, ib.Src, now); inserted {
			slog.Info("dncp: peer discovered", "endpoint", ib.Endpoint, "peer", fmt.Sprintf("%x", peerID.Bytes()))
			c.handlePublish(c.neighborAttr(es, peerID, peerEp))
		}
	}

	for _, a := range attrs {
		switch a.Type {
		case tlv.TypeReqNetHash:
			c.sendFullNodeState(es, ib.Src)

		case tlv.TypeNetworkHash:
			if len(a.Payload) != 8 {
				continue
			}
			var peerHash [8]byte
			copy(peerHash[:], a.Payload)
			if peerHash == c.store.NetworkHash() {
				es.Trickle.OnConsistent()
			} else {
				es.Trickle.OnInconsistentMessage(now)
				if haveLink {
					c.maybeSendReqNetHash(es, peerID, peerEp, ib.Src, now)
				} else {
					c.sendFullNodeState(es, ib.Src)
				}
			}

		case tlv.TypeNodeState:
			ns, ok := tlv.UnmarshalNodeState(a.Payload, c.cfg.NodeIDLen)
			if !ok {
				continue
			}
			id := NewNodeID(ns.NodeID)
			if id == c.store.OwnID() {
				if own, ok := c.store.Find(id); ok {
					if ns.UpdateNumber > own.UpdateNumber || (ns.UpdateNumber == own.UpdateNumber && ns.NodeDataHash != own.DataHash) {
						c.maybeHandleCollision(ns.UpdateNumber, now)
					}
				}
				continue
			}
			switch c.store.UpsertRemote(ns, now) {
			case Inserted, Updated:
				c.sendReqNodeData(es, ib.Src, id)
			}

		case tlv.TypeReqNodeData:
			rq, ok := tlv.UnmarshalReqNodeData(a.Payload, c.cfg.NodeIDLen)
			if !ok {
				continue
			}
			c.sendNodeData(es, ib.Src, NewNodeID(rq.NodeID))

		case tlv.TypeNodeData:
			hdr, inner, ok := tlv.SplitNodeData(a.Payload, c.cfg.NodeIDLen)
			if !ok {
				c.metrics.MalformedDatagram(ib.Endpoint)
				continue
			}
			c.handleNodeData(hdr, inner, now)

		case tlv.TypeKeepAliveInterval:
			if ka, ok := tlv.UnmarshalKeepAliveInterval(a.Payload); ok && haveLink {
				es.setKeepAliveOverride(peerID, peerEp, time.Duration(ka.Milliseconds)*time.Millisecond)
			}
		}
	}
}

func (c *Core) handleNodeData(hdr tlv.NodeDataHeader, innerPayload []byte, now time.Time) {
	id := NewNodeID(hdr.NodeID)
	if id == c.store.OwnID() {
		c.maybeHandleCollision(hdr.UpdateNumber, now)
		return
	}

	innerAttrs, err := tlv.Decode(innerPayload)
	if err != nil {
		c.metrics.MalformedDatagram("")
		return
	}

	var prevTLVs []tlv.Attr
	if prev, ok := c.store.Find(id); ok {
		prevTLVs = append([]tlv.Attr(nil), prev.TLVs...)
	}

	if err := c.store.ReplaceBody(id, hdr.UpdateNumber, innerAttrs, now); err != nil {
		if err != ErrStale {
			slog.Warn("dncp: rejected node data", "node", fmt.Sprintf("%x", id.Bytes()), "error", err)
		}
		return
	}

	c.notifyRemoteChange(id, prevTLVs, innerAttrs)
	c.onNetworkStateChanged(now)
}

func (c *Core) notifyRemoteChange(id NodeID, oldTLVs, newTLVs []tlv.Attr) {
	c.subMu.RLock()
	subs := append([]*Subscriber(nil), c.subscribers...)
	c.subMu.RUnlock()
	if len(subs) == 0 {
		return
	}
	canonOld := canonicalize(oldTLVs)
	canonNew := canonicalize(newTLVs)
	for _, a := range canonNew {
		if findAttr(canonOld, a.Type, a.Payload) < 0 {
			for _, s := range subs {
				if s.RemoteTLVChange != nil {
					s.RemoteTLVChange(id, a, true)
				}
			}
		}
	}
	for _, a := range canonOld {
		if findAttr(canonNew, a.Type, a.Payload) < 0 {
			for _, s := range subs {
				if s.RemoteTLVChange != nil {
					s.RemoteTLVChange(id, a, false)
				}
			}
		}
	}
}

// maybeHandleCollision implements the two-tier own-identifier collision
// recovery of spec §4.5: the first collision bumps the own update_number
// strictly above the conflicting one; a second collision before the
// streak resets regenerates the own identifier entirely, mirroring
// dncp_profile_handle_collision in the original hnetd source.
func (c *Core) maybeHandleCollision(observedUpdate uint32, now time.Time) {
	c.metrics.CollisionDetected()
	c.collisionStreak++
	if c.collisionStreak == 1 {
		c.store.BumpOwnUpdateNumber(observedUpdate)
		slog.Warn("dncp: node identifier collision detected, bumping own update number",
			"node", fmt.Sprintf("%x", c.store.OwnID().Bytes()))
	} else {
		newID := RandomNodeID(c.cfg.NodeIDLen)
		c.store.ReplaceOwnIdentifier(newID, now)
		c.collisionStreak = 0
		slog.Warn("dncp: repeated node identifier collision, generating new identifier",
			"node", fmt.Sprintf("%x", newID.Bytes()))
	}
	c.resetAllTrickles(now)
}

// --- Trickle firing and periodic maintenance ---

func (c *Core) onTrickleFire(name string) {
	if name == "" {
		return
	}
	now := c.clock.Now()
	c.mu.Lock()
	es, ok := c.endpoints[name]
	c.mu.Unlock()
	if !ok || !es.Enabled || es.Trickle == nil {
		return
	}
	if shouldEmit, _ := es.Trickle.Tick(now); shouldEmit {
		c.emitSummary(name)
	} else {
		c.metrics.TrickleSuppressed(name)
	}
}

func (c *Core) runMaintenance() {
	now := c.clock.Now()

	c.subMu.RLock()
	subs := append([]*Subscriber(nil), c.subscribers...)
	c.subMu.RUnlock()
	for _, s := range subs {
		if s.Republish != nil {
			s.Republish()
		}
	}

	if c.store.Prune(now, c.cfg.GracePeriod) {
		c.metrics.NodePruned("")
		c.onNetworkStateChanged(now)
	}

	c.mu.Lock()
	epList := make([]*endpointState, 0, len(c.endpoints))
	for _, es := range c.endpoints {
		epList = append(epList, es)
	}
	c.mu.Unlock()

	for _, es := range epList {
		if !es.Enabled {
			continue
		}
		if dropped := es.expirePeers(now); len(dropped) > 0 {
			for _, p := range dropped {
				c.handleUnpublish(c.neighborAttr(es, p.NodeID, p.EndpointID))
			}
			es.Trickle.OnExternalInconsistent(now)
		}
		if es.KeepAliveInterval > 0 && now.Sub(es.lastEmit) >= es.KeepAliveInterval {
			c.emitSummary(es.Name)
		}
	}
}

func (c *Core) onNetworkStateChanged(now time.Time) {
	c.resetAllTrickles(now)
}

// --- Outbound message construction ---

func (c *Core) linkIDAttr(es *endpointState) tlv.Attr {
	return tlv.Attr{
		Type:    tlv.TypeLinkID,
		Payload: tlv.LinkID{NodeID: c.store.OwnID().Bytes(), EndpointID: es.LocalEndpointID}.Marshal(),
	}
}

// neighborAttr builds the NEIGHBOR attribute the local node publishes for
// a peer noted on es (spec §4.3 note_peer / §3 invariant).
func (c *Core) neighborAttr(es *endpointState, peerID NodeID, peerEndpointID uint32) tlv.Attr {
	return tlv.Attr{
		Type: tlv.TypeNeighbor,
		Payload: tlv.Neighbor{
			PeerNodeID:      peerID.Bytes(),
			PeerEndpointID:  peerEndpointID,
			LocalEndpointID: es.LocalEndpointID,
		}.Marshal(),
	}
}

// emitSummary sends the periodic/Trickle-triggered multicast (spec §4.4):
// LINK_ID, NETWORK_HASH, and one NODE_STATE per reachable node, unless that
// would exceed the endpoint's link MTU, in which case it degrades to the
// hash-only form and relies on peers' REQ_NET_HASH/REQ_NODE_DATA follow-up.
func (c *Core) emitSummary(name string) {
	c.mu.Lock()
	es, ok := c.endpoints[name]
	c.mu.Unlock()
	if !ok || !es.Enabled {
		return
	}
	now := c.clock.Now()
	netHash := c.store.NetworkHash()

	attrs := []tlv.Attr{
		c.linkIDAttr(es),
		{Type: tlv.TypeNetworkHash, Payload: netHash[:]},
	}
	c.store.ForEachReachable(func(n *Node) {
		ns := tlv.NodeState{
			NodeID:             n.ID.Bytes(),
			UpdateNumber:       n.UpdateNumber,
			MsSinceOrigination: n.msSinceOrigination(now),
			NodeDataHash:       n.DataHash,
		}
		attrs = append(attrs, tlv.Attr{Type: tlv.TypeNodeState, Payload: ns.Marshal()})
	})
	full := tlv.EncodeAll(attrs)

	msg := full
	if mtu, err := c.transport.MTU(name); err == nil && len(full) > mtu {
		msg = tlv.EncodeAll([]tlv.Attr{
			c.linkIDAttr(es),
			{Type: tlv.TypeNetworkHash, Payload: netHash[:]},
		})
	}

	if _, err := c.transport.Send(name, MulticastAddr, msg); err != nil {
		slog.Warn("dncp: send failed", "endpoint", name, "error", err)
	}
	es.lastEmit = now
	c.metrics.TrickleEmitted(name)
}

func (c *Core) sendFullNodeState(es *endpointState, dst string) {
	attrs := []tlv.Attr{c.linkIDAttr(es)}
	now := c.clock.Now()
	c.store.ForEachReachable(func(n *Node) {
		ns := tlv.NodeState{
			NodeID:             n.ID.Bytes(),
			UpdateNumber:       n.UpdateNumber,
			MsSinceOrigination: n.msSinceOrigination(now),
			NodeDataHash:       n.DataHash,
		}
		attrs = append(attrs, tlv.Attr{Type: tlv.TypeNodeState, Payload: ns.Marshal()})
	})
	if _, err := c.transport.Send(es.Name, dst, tlv.EncodeAll(attrs)); err != nil {
		slog.Warn("dncp: send failed", "endpoint", es.Name, "error", err)
	}
}

// maybeSendReqNetHash schedules a unicast REQ_NET_HASH to a peer whose
// NETWORK_HASH disagreed with ours, unless one is already pending (spec
// §4.5: "signal inconsistent and, if not already pending, schedule a
// unicast REQ_NET_HASH"). Imin bounds the pending window: it is the
// fastest the network state can legitimately change, so a second request
// inside it can't be answered any more usefully than the first.
func (c *Core) maybeSendReqNetHash(es *endpointState, peerID NodeID, peerEndpointID uint32, dst string, now time.Time) {
	key := peerKey{node: peerID, ep: peerEndpointID}
	if last, ok := es.lastReqByPeer[key]; ok && now.Sub(last) < c.cfg.Imin {
		return
	}
	es.lastReqByPeer[key] = now
	msg := tlv.EncodeAll([]tlv.Attr{
		c.linkIDAttr(es),
		{Type: tlv.TypeReqNetHash},
	})
	if _, err := c.transport.Send(es.Name, dst, msg); err != nil {
		slog.Warn("dncp: send failed", "endpoint", es.Name, "error", err)
	}
}

func (c *Core) sendReqNodeData(es *endpointState, dst string, id NodeID) {
	msg := tlv.EncodeAll([]tlv.Attr{
		c.linkIDAttr(es),
		{Type: tlv.TypeReqNodeData, Payload: tlv.ReqNodeData{NodeID: id.Bytes()}.Marshal()},
	})
	if _, err := c.transport.Send(es.Name, dst, msg); err != nil {
		slog.Warn("dncp: send failed", "endpoint", es.Name, "error", err)
	}
}

func (c *Core) sendNodeData(es *endpointState, dst string, id NodeID) {
	n, ok := c.store.Find(id)
	if !ok || !n.Reachable {
		return
	}
	hdr := tlv.NodeDataHeader{NodeID: n.ID.Bytes(), UpdateNumber: n.UpdateNumber}
	payload := append(hdr.Marshal(), tlv.EncodeAll(n.TLVs)...)
	msg := tlv.EncodeAll([]tlv.Attr{
		c.linkIDAttr(es),
		{Type: tlv.TypeNodeData, Payload: payload},
	})
	if _, err := c.transport.Send(es.Name, dst, msg); err != nil {
		slog.Warn("dncp: send failed", "endpoint", es.Name, "error", err)
	}
}

// Endpoints returns a snapshot of currently enabled endpoints, for status
// reporting.
func (c *Core) Endpoints() []*Endpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Endpoint, 0, len(c.endpoints))
	for _, es := range c.endpoints {
		out = append(out, es.Endpoint)
	}
	return out
}
