package dncp

import "errors"

var (
	// ErrStale is returned by Store.ReplaceBody when an incoming NODE_DATA
	// carries an update_number below the one already stored, or equal to it
	// once that body has already been installed (§4.2).
	ErrStale = errors.New("dncp: stale update_number")

	// ErrRejected is returned by the body validator hook when a candidate
	// TLV body fails profile validation (§4.2).
	ErrRejected = errors.New("dncp: node body rejected by validator")

	// ErrUnknownNode is returned when an operation names a node-id the
	// store has never seen.
	ErrUnknownNode = errors.New("dncp: unknown node")

	// ErrUnknownEndpoint is returned when an operation names an endpoint
	// that has not been registered.
	ErrUnknownEndpoint = errors.New("dncp: unknown endpoint")

	// ErrEndpointDisabled is returned when an operation requires an
	// enabled endpoint.
	ErrEndpointDisabled = errors.New("dncp: endpoint disabled")

	// ErrClosed is returned by operations attempted after Core.Close.
	ErrClosed = errors.New("dncp: core closed")
)
