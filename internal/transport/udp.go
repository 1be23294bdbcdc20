// Package transport implements pkg/dncp.Transport over a real UDP/IPv6
// multicast socket, the way a dncpd process actually talks to its peers.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/net/ipv6"

	"github.com/shurlinet/dncp/pkg/dncp"
)

// groupIP is the well-known DNCP link-local multicast group (spec §6,
// ff02::8808).
var groupIP = net.ParseIP("ff02::8808")

// minMTU is the IPv6 minimum-link MTU floor used whenever the OS cannot
// report an interface's real MTU.
const minMTU = 1280

// UDP is a dncp.Transport backed by a single shared IPv6 UDP socket,
// multiplexed across joined endpoints by inbound interface index —
// mirrors the "one shared multicast socket, re-joined per interface"
// shape of a LAN discovery service, minus the periodic re-creation since
// DNCP endpoints are explicitly enabled/disabled rather than guessed at.
type UDP struct {
	conn  *net.UDPConn
	pconn *ipv6.PacketConn

	mu        sync.RWMutex
	ifIndex   map[string]int // endpoint name -> interface index
	ifName    map[int]string // interface index -> endpoint name

	inbound chan dncp.Inbound

	closeOnce sync.Once
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

// New binds a UDP6 socket on port and starts its receive loop. The
// returned transport has no endpoints joined; call Join per interface.
func New(port int) (*UDP, error) {
	conn, err := net.ListenUDP("udp6", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("transport: listen udp6 :%d: %w", port, err)
	}
	pconn := ipv6.NewPacketConn(conn)
	if err := pconn.SetControlMessage(ipv6.FlagInterface, true); err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport: set control message: %w", err)
	}

	u := &UDP{
		conn:    conn,
		pconn:   pconn,
		ifIndex: make(map[string]int),
		ifName:  make(map[int]string),
		inbound: make(chan dncp.Inbound, 64),
		closeCh: make(chan struct{}),
	}
	u.wg.Add(1)
	go u.recvLoop()
	return u, nil
}

// Join enrolls endpoint in the DNCP multicast group (spec §6).
func (u *UDP) Join(endpoint string) error {
	iface, err := net.InterfaceByName(endpoint)
	if err != nil {
		return fmt.Errorf("transport: join %s: %w", endpoint, err)
	}
	group := &net.UDPAddr{IP: groupIP}
	if err := u.pconn.JoinGroup(iface, group); err != nil {
		return fmt.Errorf("transport: join group on %s: %w", endpoint, err)
	}
	if err := u.pconn.SetMulticastInterface(iface); err != nil {
		slog.Warn("transport: set multicast interface failed", "endpoint", endpoint, "error", err)
	}
	u.pconn.SetMulticastLoopback(false)

	u.mu.Lock()
	u.ifIndex[endpoint] = iface.Index
	u.ifName[iface.Index] = endpoint
	u.mu.Unlock()
	return nil
}

// Leave withdraws endpoint from the DNCP multicast group.
func (u *UDP) Leave(endpoint string) error {
	u.mu.Lock()
	idx, ok := u.ifIndex[endpoint]
	if ok {
		delete(u.ifIndex, endpoint)
		delete(u.ifName, idx)
	}
	u.mu.Unlock()
	if !ok {
		return nil
	}
	iface, err := net.InterfaceByIndex(idx)
	if err != nil {
		return fmt.Errorf("transport: leave %s: %w", endpoint, err)
	}
	group := &net.UDPAddr{IP: groupIP}
	if err := u.pconn.LeaveGroup(iface, group); err != nil {
		return fmt.Errorf("transport: leave group on %s: %w", endpoint, err)
	}
	return nil
}

// Send transmits b on endpoint to dst.
func (u *UDP) Send(endpoint, dst string, b []byte) (dncp.SendResult, error) {
	u.mu.RLock()
	idx, ok := u.ifIndex[endpoint]
	u.mu.RUnlock()
	if !ok {
		return dncp.SendOK, fmt.Errorf("transport: unknown endpoint %q", endpoint)
	}

	addr, err := net.ResolveUDPAddr("udp6", dst)
	if err != nil {
		return dncp.SendOK, fmt.Errorf("transport: resolve %q: %w", dst, err)
	}

	cm := &ipv6.ControlMessage{IfIndex: idx}
	n, err := u.pconn.WriteTo(b, cm, addr)
	if err != nil {
		return dncp.SendOK, err
	}
	if n < len(b) {
		return dncp.SendShort, nil
	}
	return dncp.SendOK, nil
}

// Recv blocks until a datagram is available, ctx is canceled, or the
// transport is closed.
func (u *UDP) Recv(ctx context.Context) (dncp.Inbound, error) {
	select {
	case ib, ok := <-u.inbound:
		if !ok {
			return dncp.Inbound{}, dncp.ErrTransportClosed
		}
		return ib, nil
	case <-u.closeCh:
		return dncp.Inbound{}, dncp.ErrTransportClosed
	case <-ctx.Done():
		return dncp.Inbound{}, ctx.Err()
	}
}

// HWAddrs returns hardware addresses of all up, non-loopback interfaces,
// used to seed the initial node identifier.
func (u *UDP) HWAddrs() [][]byte {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}
	var out [][]byte
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(iface.HardwareAddr) == 0 {
			continue
		}
		out = append(out, []byte(iface.HardwareAddr))
	}
	return out
}

// MTU returns endpoint's usable payload size, floored at the IPv6
// minimum-link MTU if the OS reports zero or an error.
func (u *UDP) MTU(endpoint string) (int, error) {
	iface, err := net.InterfaceByName(endpoint)
	if err != nil {
		return minMTU, fmt.Errorf("transport: mtu %s: %w", endpoint, err)
	}
	if iface.MTU < minMTU {
		return minMTU, nil
	}
	return iface.MTU, nil
}

// Close shuts down the socket and stops the receive loop.
func (u *UDP) Close() error {
	var err error
	u.closeOnce.Do(func() {
		close(u.closeCh)
		err = u.conn.Close()
		u.wg.Wait()
		close(u.inbound)
	})
	return err
}

func (u *UDP) recvLoop() {
	defer u.wg.Done()
	buf := make([]byte, 65535)
	for {
		n, cm, src, err := u.pconn.ReadFrom(buf)
		if err != nil {
			select {
			case <-u.closeCh:
				return
			default:
				slog.Warn("transport: read error", "error", err)
				return
			}
		}
		if cm == nil {
			continue
		}

		u.mu.RLock()
		name, ok := u.ifName[cm.IfIndex]
		u.mu.RUnlock()
		if !ok {
			// Datagram on an interface we haven't joined on this socket
			// (can happen transiently around Leave); drop it.
			continue
		}

		ib := dncp.Inbound{
			Endpoint: name,
			Src:      src.String(),
			Dst:      dncp.MulticastAddr,
			Data:     append([]byte(nil), buf[:n]...),
		}
		select {
		case u.inbound <- ib:
		case <-u.closeCh:
			return
		}
	}
}
