// ABOUTME: mDNS advertisement for the status feed
// ABOUTME: Announces the installation as _gwambient._tcp on the local network
package monitor

import (
	"fmt"
	"net"

	"github.com/hashicorp/mdns"
	log "github.com/sirupsen/logrus"

	"github.com/gwambient/gwambient/internal/version"
)

// ServiceType is the advertised mDNS service
const ServiceType = "_gwambient._tcp"

// advertise starts an mDNS responder. Shutdown stops it.
func advertise(name string, port int) (*mdns.Server, error) {
	ips, err := getLocalIPs()
	if err != nil {
		return nil, fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		name,
		ServiceType,
		"",
		"",
		port,
		ips,
		[]string{"path=/ws", "version=" + version.Version},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", name, port, ServiceType)
	return server, nil
}

// getLocalIPs returns local IPv4 addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
