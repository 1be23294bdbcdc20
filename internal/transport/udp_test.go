package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/shurlinet/dncp/pkg/dncp"
	"github.com/stretchr/testify/require"
)

// loopbackInterface returns the name of the loopback interface, or skips
// the test if one cannot be found (sandboxed CI runners sometimes lack
// multicast-capable loopback).
func loopbackInterface(t *testing.T) string {
	t.Helper()
	ifaces, err := net.Interfaces()
	require.NoError(t, err)
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 && iface.Flags&net.FlagMulticast != 0 {
			return iface.Name
		}
	}
	t.Skip("no multicast-capable loopback interface available")
	return ""
}

func TestUDPImplementsTransport(t *testing.T) {
	var _ dncp.Transport = (*UDP)(nil)
}

func TestUDPJoinLeaveRoundTrip(t *testing.T) {
	name := loopbackInterface(t)

	a, err := New(0)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	require.NoError(t, a.Join(name))
	require.NoError(t, a.Leave(name))
}

func TestUDPSendRecvOnSameSocket(t *testing.T) {
	name := loopbackInterface(t)

	u, err := New(0)
	require.NoError(t, err)
	t.Cleanup(func() { u.Close() })
	require.NoError(t, u.Join(name))

	self := u.conn.LocalAddr().(*net.UDPAddr)
	dst := (&net.UDPAddr{IP: net.ParseIP("::1"), Zone: name, Port: self.Port}).String()

	_, err = u.Send(name, dst, []byte("hello"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ib, err := u.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, name, ib.Endpoint)
	require.Equal(t, []byte("hello"), ib.Data)
}

func TestUDPRecvReturnsClosedAfterClose(t *testing.T) {
	u, err := New(0)
	require.NoError(t, err)
	require.NoError(t, u.Close())

	_, err = u.Recv(context.Background())
	require.ErrorIs(t, err, dncp.ErrTransportClosed)
}

func TestHWAddrsSkipsLoopback(t *testing.T) {
	u, err := New(0)
	require.NoError(t, err)
	t.Cleanup(func() { u.Close() })

	for _, hw := range u.HWAddrs() {
		require.NotEqual(t, 0, len(hw))
	}
}

func TestMTUFloorsAtMinimum(t *testing.T) {
	u, err := New(0)
	require.NoError(t, err)
	t.Cleanup(func() { u.Close() })

	name := loopbackInterface(t)
	mtu, err := u.MTU(name)
	require.NoError(t, err)
	require.GreaterOrEqual(t, mtu, minMTU)
}

func TestSendUnknownEndpointErrors(t *testing.T) {
	u, err := New(0)
	require.NoError(t, err)
	t.Cleanup(func() { u.Close() })

	_, err = u.Send("does-not-exist", dncp.MulticastAddr, []byte("x"))
	require.Error(t, err)
}
