package domain

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Network is the static metadata of one chain the address book covers.
type Network struct {
	ChainID           int64  `json:"chainId" yaml:"chainId"`
	Name              string `json:"name" yaml:"name"`
	SafeBaseURL       string `json:"safeBaseUrl" yaml:"safeBaseUrl"`
	SafeAddressPrefix string `json:"safeAddressPrefix" yaml:"safeAddressPrefix"`
	Status            string `json:"status" yaml:"status"`
}

// Dir returns the name of the network's address directory.
func (n Network) Dir() string {
	return strconv.FormatInt(n.ChainID, 10)
}

// AddressSections maps a section name to the raw JSON of one address-list file.
type AddressSections map[string]json.RawMessage

// Names returns the section names in sorted order.
func (s AddressSections) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NetworkRecord is one element of the address book: network metadata plus
// every address section discovered for it.
type NetworkRecord struct {
	Network
	Addresses AddressSections `json:"addresses"`
}

// NewNetworkRecord builds a record from a network and its sections.
// A nil sections map is replaced with an empty one so it serializes as {}.
func NewNetworkRecord(n Network, sections AddressSections) NetworkRecord {
	if sections == nil {
		sections = AddressSections{}
	}
	return NetworkRecord{Network: n, Addresses: sections}
}

// DefaultNetworks returns the built-in network list.
// Each call returns a fresh slice.
func DefaultNetworks() []Network {
	return []Network{
		{
			ChainID:           31337,
			Name:              "dev",
			SafeBaseURL:       "https://app.safe.global",
			SafeAddressPrefix: "dev",
			Status:            "beta",
		},
	}
}
