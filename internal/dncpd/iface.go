package dncpd

import (
	"fmt"
	"net"
	"runtime"
)

func interfaceIndex(name string) (int, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return 0, fmt.Errorf("interface %q: %w", name, err)
	}
	return iface.Index, nil
}

func goVersionString() string {
	return runtime.Version()
}
