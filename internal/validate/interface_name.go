package validate

import (
	"fmt"
	"regexp"
)

// interfaceNameRe matches plausible Linux network interface names:
// alphanumerics plus '.', '-', '_', ':', up to IFNAMSIZ-1 (15) bytes.
// Rejects path separators, whitespace and control characters so a
// configured name can never be used to escape the /sys/class/net lookup
// it is ultimately used for.
var interfaceNameRe = regexp.MustCompile(`^[a-zA-Z0-9._:-]{1,15}$`)

// InterfaceName checks that a configured endpoint interface name is safe
// to hand to net.InterfaceByName.
func InterfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidInterfaceName)
	}
	if !interfaceNameRe.MatchString(name) {
		return fmt.Errorf("%w: %q must be 1-15 characters from [a-zA-Z0-9._:-]", ErrInvalidInterfaceName, name)
	}
	return nil
}
