package dncp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNotePeerInsertsThenUpdates(t *testing.T) {
	e := newEndpoint("eth0", 2, 1, time.Second, nil)
	now := time.Now()

	_, inserted := e.notePeer(NodeID("peer"), 7, "fe80::1", now)
	require.True(t, inserted)
	require.Equal(t, 1, e.PeerCount())

	later := now.Add(time.Second)
	_, inserted = e.notePeer(NodeID("peer"), 7, "fe80::2", later)
	require.False(t, inserted)

	peers := e.Peers()
	require.Len(t, peers, 1)
	require.Equal(t, "fe80::2", peers[0].Address)
	require.Equal(t, later, peers[0].LastContact)
}

func TestExpirePeersUsesOverrideWindow(t *testing.T) {
	e := newEndpoint("eth0", 2, 1, time.Second, nil)
	now := time.Now()
	e.notePeer(NodeID("peer"), 7, "fe80::1", now)
	e.setKeepAliveOverride(NodeID("peer"), 7, 10*time.Second)

	// default window (1s * 5/2 = 2.5s) would expire it; the override must win.
	dropped := e.expirePeers(now.Add(3 * time.Second))
	require.Empty(t, dropped)
	require.Equal(t, 1, e.PeerCount())

	dropped = e.expirePeers(now.Add(26 * time.Second))
	require.Len(t, dropped, 1)
	require.Equal(t, 0, e.PeerCount())
}

func TestRemovePeer(t *testing.T) {
	e := newEndpoint("eth0", 2, 1, time.Second, nil)
	now := time.Now()
	e.notePeer(NodeID("peer"), 7, "fe80::1", now)

	require.True(t, e.removePeer(NodeID("peer"), 7))
	require.False(t, e.removePeer(NodeID("peer"), 7))
	require.Equal(t, 0, e.PeerCount())
}
