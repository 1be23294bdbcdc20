package dncp

import (
	"context"
	"errors"
	"time"
)

// MulticastAddr is the well-known DNCP multicast destination (spec §6).
const MulticastAddr = "[ff02::8808]:8808"

// Port is the well-known DNCP UDP port (spec §6).
const Port = 8808

// ErrTransportClosed is returned by Transport.Recv once the transport has
// been shut down and has no more inbound messages to deliver.
var ErrTransportClosed = errors.New("dncp: transport closed")

// Inbound is one decoded-ready datagram handed to the core by the
// transport (spec §4.5 "Inputs").
type Inbound struct {
	Endpoint string
	Src      string
	Dst      string
	Data     []byte
}

// SendResult reports the outcome of Transport.Send (spec §6).
type SendResult int

const (
	SendOK SendResult = iota
	SendShort
)

// Transport is the external collaborator the core consumes (spec §6):
// the UDP/multicast socket layer, DTLS wrapping, and hardware-address
// discovery are all out of the core's scope and implemented by
// internal/transport.
type Transport interface {
	// Recv blocks until a datagram is available, ctx is canceled, or the
	// transport is closed (in which case it returns ErrTransportClosed).
	Recv(ctx context.Context) (Inbound, error)

	// Send transmits b on endpoint to dst (a unicast peer address or
	// MulticastAddr). A short write is reported via SendShort, not an
	// error; per spec §7 the core logs and relies on Trickle retransmission.
	Send(endpoint, dst string, b []byte) (SendResult, error)

	// Join and Leave enroll/withdraw an endpoint from the DNCP multicast
	// group.
	Join(endpoint string) error
	Leave(endpoint string) error

	// HWAddrs returns link-layer hardware addresses available at boot,
	// used to seed the initial node identifier (spec §6). May return nil.
	HWAddrs() [][]byte

	// MTU returns the usable payload size for endpoint, or an error if it
	// cannot be determined.
	MTU(endpoint string) (int, error)
}

// Clock supplies the monotonic time source the core needs (spec §6
// get_time). Production code uses RealClock; tests inject a fake.
type Clock interface {
	Now() time.Time
}
