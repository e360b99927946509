//go:build windows

package win32

import (
	"fmt"
	"sort"

	"golang.org/x/sys/windows/registry"
)

// RegistryPortLister lists serial ports from HARDWARE\DEVICEMAP\SERIALCOMM.
type RegistryPortLister struct{}

// NewPortLister creates a new registry-backed port lister.
func NewPortLister() *RegistryPortLister {
	return &RegistryPortLister{}
}

func (l *RegistryPortLister) ListPorts() ([]string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, `HARDWARE\DEVICEMAP\SERIALCOMM`, registry.QUERY_VALUE)
	if err != nil {
		if err == registry.ErrNotExist {
			return []string{}, nil
		}
		return nil, fmt.Errorf("open SERIALCOMM key: %w", err)
	}
	defer key.Close()

	names, err := key.ReadValueNames(0)
	if err != nil {
		return nil, fmt.Errorf("read SERIALCOMM values: %w", err)
	}
	ports := make([]string, 0, len(names))
	for _, name := range names {
		port, _, err := key.GetStringValue(name)
		if err != nil {
			continue
		}
		ports = append(ports, port)
	}
	sort.Strings(ports)
	return ports, nil
}
