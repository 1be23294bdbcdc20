package dnssd

import (
	"context"
	"testing"
	"time"

	"github.com/shurlinet/dncp/pkg/dncp"
	"github.com/shurlinet/dncp/pkg/tlv"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	inbound chan dncp.Inbound
	closed  chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{inbound: make(chan dncp.Inbound, 16), closed: make(chan struct{})}
}

func (f *fakeTransport) Recv(ctx context.Context) (dncp.Inbound, error) {
	select {
	case ib := <-f.inbound:
		return ib, nil
	case <-f.closed:
		return dncp.Inbound{}, dncp.ErrTransportClosed
	case <-ctx.Done():
		return dncp.Inbound{}, ctx.Err()
	}
}

func (f *fakeTransport) Send(endpoint, dst string, b []byte) (dncp.SendResult, error) {
	return dncp.SendOK, nil
}
func (f *fakeTransport) Join(endpoint string) error       { return nil }
func (f *fakeTransport) Leave(endpoint string) error      { return nil }
func (f *fakeTransport) HWAddrs() [][]byte                { return nil }
func (f *fakeTransport) MTU(endpoint string) (int, error) { return 1500, nil }
func (f *fakeTransport) close()                           { close(f.closed) }

func newTestCore(t *testing.T) (*dncp.Core, *fakeTransport) {
	t.Helper()
	tr := newFakeTransport()
	core, err := dncp.New(dncp.Config{Transport: tr})
	require.NoError(t, err)
	t.Cleanup(func() {
		tr.close()
		core.Close()
	})
	return core, tr
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func ownHasRouterName(core *dncp.Core, name string) bool {
	own, ok := core.Store().Find(core.Store().OwnID())
	if !ok {
		return false
	}
	for _, a := range own.TLVs {
		if a.Type == tlv.TypeDNSRouterName && string(a.Payload) == name {
			return true
		}
	}
	return false
}

func TestRouterNamePublishesOnRepublish(t *testing.T) {
	core, _ := newTestCore(t)
	rn := NewRouterName(core, "myrouter")
	t.Cleanup(rn.Close)
	core.Subscribe(rn.Subscriber())

	require.NoError(t, core.Publish(tlv.Attr{Type: tlv.TypeVersion, Payload: []byte{1}}))
	waitFor(t, func() bool { return ownHasRouterName(core, "myrouter") })
}

func TestRouterNameDefaultsToR(t *testing.T) {
	core, _ := newTestCore(t)
	rn := NewRouterName(core, "")
	t.Cleanup(rn.Close)
	require.Equal(t, "r", rn.Name())
	_ = core
}

// TestRouterNameRenamesOnCollision exercises the subscriber's collision
// handling directly, the way hncp_sd.c's tlv_change_callback reacts to
// an incoming HNCP_T_DNS_ROUTER_NAME TLV that matches the local name —
// decoupled here from the full wire exchange that would normally deliver
// that RemoteTLVChange callback.
func TestRouterNameRenamesOnCollision(t *testing.T) {
	core, _ := newTestCore(t)
	rn := NewRouterName(core, "myrouter")
	t.Cleanup(rn.Close)
	core.Subscribe(rn.Subscriber())

	require.NoError(t, core.Publish(tlv.Attr{Type: tlv.TypeVersion, Payload: []byte{1}}))
	waitFor(t, func() bool { return ownHasRouterName(core, "myrouter") })

	rn.onRemoteTLVChange(dncp.NewNodeID([]byte{9, 9, 9, 9}),
		tlv.Attr{Type: tlv.TypeDNSRouterName, Payload: []byte("myrouter")}, true)

	waitFor(t, func() bool { return rn.Name() == "myrouter1" })
	waitFor(t, func() bool { return ownHasRouterName(core, "myrouter1") })
}
