package backend

import (
	"net"
	"os"
	"sort"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

// HostInterfaces lists the host's non-loopback interfaces grouped by name, sorted by name.
func HostInterfaces() ([]domain.NetworkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]string)
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if ip := addrIP(a); ip != nil && !ip.IsLoopback() {
				grouped[iface.Name] = append(grouped[iface.Name], ip.String())
			}
		}
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.NetworkInterface, 0, len(names))
	for _, name := range names {
		out = append(out, domain.NetworkInterface{Name: name, Addresses: grouped[name]})
	}
	return out, nil
}

func addrIP(a net.Addr) net.IP {
	switch v := a.(type) {
	case *net.IPNet:
		return v.IP
	case *net.IPAddr:
		return v.IP
	default:
		return nil
	}
}

// HostName returns the OS hostname, or "unknown".
func HostName() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "unknown"
	}
	return h
}
