// Package dnssd supplements the core protocol with a human-readable
// router name, published as a DNS_ROUTER_NAME TLV alongside the opaque
// node identifier (SPEC_FULL §D.5).
package dnssd

import (
	"fmt"
	"sync"

	"github.com/shurlinet/dncp/pkg/dncp"
	"github.com/shurlinet/dncp/pkg/tlv"
)

// RouterName publishes and defends a human-readable router name TLV.
// On startup it publishes base (or "r" if empty); if a remote node is
// already using that name, it appends an increasing numeric suffix and
// republishes, mirroring hncp_sd.c's _change_router_name.
//
// Subscriber callbacks run synchronously on the Core's single
// event-processing goroutine and must not block (spec §6), so a
// Publish/Unpublish triggered by one is handed off to a dedicated worker
// goroutine rather than called inline — calling back into Core from
// the goroutine that is itself draining Core's event channel would
// deadlock waiting on its own result.
type RouterName struct {
	core *dncp.Core

	mu        sync.Mutex
	base      string
	current   string
	iteration int
	published bool

	work chan string
	done chan struct{}
	wg   sync.WaitGroup
}

// NewRouterName constructs a RouterName publisher for core and starts its
// worker goroutine. base is the name's prefix before any disambiguating
// suffix; "r" is used if empty. Call Close when core shuts down.
func NewRouterName(core *dncp.Core, base string) *RouterName {
	if base == "" {
		base = "r"
	}
	r := &RouterName{
		core:    core,
		base:    base,
		current: base,
		work:    make(chan string, 1),
		done:    make(chan struct{}),
	}
	r.wg.Add(1)
	go r.runWorker()
	return r
}

// Subscriber returns the dncp.Subscriber wiring this instance into core's
// event loop. Register it with core.Subscribe.
func (r *RouterName) Subscriber() *dncp.Subscriber {
	return &dncp.Subscriber{
		Republish:       r.onRepublish,
		RemoteTLVChange: r.onRemoteTLVChange,
	}
}

func (r *RouterName) onRepublish() {
	r.mu.Lock()
	already := r.published
	name := r.current
	r.mu.Unlock()
	if !already {
		r.requestSwitch(name)
	}
}

// onRemoteTLVChange watches for another node claiming the same router
// name and renames itself on collision, the way hncp_sd.c's
// dncp_subscriber.tlv_change_callback does for HNCP_T_DNS_ROUTER_NAME.
func (r *RouterName) onRemoteTLVChange(node dncp.NodeID, a tlv.Attr, added bool) {
	if !added || a.Type != tlv.TypeDNSRouterName {
		return
	}
	r.mu.Lock()
	if string(a.Payload) != r.current {
		r.mu.Unlock()
		return
	}
	r.iteration++
	next := fmt.Sprintf("%s%d", r.base, r.iteration)
	r.mu.Unlock()
	r.requestSwitch(next)
}

// requestSwitch asks the worker to (re)publish name, dropping any
// still-pending request for a name that's already been superseded.
func (r *RouterName) requestSwitch(name string) {
	select {
	case r.work <- name:
	case <-r.work:
		r.work <- name
	case <-r.done:
	}
}

func (r *RouterName) runWorker() {
	defer r.wg.Done()
	for {
		select {
		case name := <-r.work:
			r.switchTo(name)
		case <-r.done:
			return
		}
	}
}

func (r *RouterName) switchTo(name string) {
	r.mu.Lock()
	old := r.current
	wasPublished := r.published
	r.mu.Unlock()

	if wasPublished && old != name {
		r.core.Unpublish(tlv.Attr{Type: tlv.TypeDNSRouterName, Payload: []byte(old)})
	}
	err := r.core.Publish(tlv.Attr{Type: tlv.TypeDNSRouterName, Payload: []byte(name)})

	r.mu.Lock()
	r.current = name
	r.published = err == nil
	r.mu.Unlock()
}

// Name returns the router name currently published.
func (r *RouterName) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Close stops the worker goroutine.
func (r *RouterName) Close() {
	close(r.done)
	r.wg.Wait()
}
