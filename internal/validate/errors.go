package validate

import "errors"

var (
	// ErrInvalidRouterName is returned when a router name base does not
	// match the DNS-label format (1-63 lowercase alphanumeric + hyphens).
	ErrInvalidRouterName = errors.New("invalid router name")

	// ErrInvalidInterfaceName is returned when a configured endpoint
	// interface name is not a plausible Linux network interface name.
	ErrInvalidInterfaceName = errors.New("invalid interface name")
)
