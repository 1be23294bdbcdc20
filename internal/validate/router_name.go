package validate

import (
	"fmt"
	"regexp"
)

// routerNameRe matches DNS-label-style router name bases: 1-63 lowercase
// alphanumeric or hyphens, starting and ending with alphanumeric. The
// defended name published in a DNS_ROUTER_NAME TLV appends a numeric
// suffix to this base on collision; the pattern accepts the full 63
// characters and does not reserve room for that suffix.
var routerNameRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// RouterNameBase checks that a configured router name base is safe to
// publish as (and extend with a collision suffix into) a DNS label.
func RouterNameBase(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidRouterName)
	}
	if !routerNameRe.MatchString(name) {
		return fmt.Errorf("%w: %q must be 1-63 lowercase alphanumeric characters or hyphens, starting and ending with alphanumeric", ErrInvalidRouterName, name)
	}
	return nil
}
