package env

import (
	"crypto/sha256"
	"fmt"
	"net"

	"github.com/denisbrodbeck/machineid"

	"github.com/robotalks/ethlink/pkg/l0/link"
)

const appID = "ethlink"

// Source resolves the source hardware address. An explicit SourceAddr
// wins, PhysicalLink then uses the interface address, and other backends
// fall back to an address derived from the machine ID.
func (c *Config) Source() (net.HardwareAddr, error) {
	if c.SourceAddr != "" {
		return net.ParseMAC(c.SourceAddr)
	}
	if c.Backend == PhysicalLink {
		iface, err := net.InterfaceByName(c.Interface)
		if err != nil {
			return nil, err
		}
		if len(iface.HardwareAddr) != link.AddrLength {
			return nil, fmt.Errorf("interface %s has no ethernet address", c.Interface)
		}
		return iface.HardwareAddr, nil
	}
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		return nil, fmt.Errorf("machine id: %w", err)
	}
	return localAddrFromID(id), nil
}

// localAddrFromID derives a unicast, locally administered address.
func localAddrFromID(id string) net.HardwareAddr {
	sum := sha256.Sum256([]byte(id))
	addr := make(net.HardwareAddr, link.AddrLength)
	copy(addr, sum[:])
	addr[0] = addr[0]&^0x01 | 0x02
	return addr
}
