package domain

import "slices"

// NetworkInterface is a host interface with its addresses, as last fetched.
// Only Name carries meaning across refreshes.
type NetworkInterface struct {
	Name      string   `json:"name"`
	Addresses []string `json:"addresses"`
}

// CloneInterfaces deep-copies an interface snapshot.
func CloneInterfaces(list []NetworkInterface) []NetworkInterface {
	out := make([]NetworkInterface, len(list))
	for i, n := range list {
		out[i] = NetworkInterface{Name: n.Name, Addresses: slices.Clone(n.Addresses)}
	}
	return out
}
