// Package validation provides validation functions for network definitions
// consumed by the address book builder.
package validation

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/bcnelson/chain-addressbook/internal/domain"
)

// isLower returns true if the byte is a lowercase ASCII letter.
func isLower(b byte) bool {
	return b >= 'a' && b <= 'z'
}

// isNum returns true if the byte is an ASCII digit.
func isNum(b byte) bool {
	return b >= '0' && b <= '9'
}

// ValidateChainID validates a chain identifier.
func ValidateChainID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("chain ID must be positive")
	}
	return nil
}

// ValidateSafeBaseURL validates the Safe web app base URL.
// It must be an absolute http or https URL with a host.
func ValidateSafeBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("safe base URL must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid safe base URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("safe base URL must use http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("safe base URL must include a host")
	}
	return nil
}

// ValidateSafeAddressPrefix validates the short chain name Safe uses in
// addresses such as "eth:0x...". Only lowercase letters, digits and hyphens
// are allowed.
func ValidateSafeAddressPrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("safe address prefix must not be empty")
	}
	for _, b := range []byte(prefix) {
		if !isLower(b) && !isNum(b) && b != '-' {
			return fmt.Errorf("safe address prefix can only contain lowercase letters, numbers, or hyphens")
		}
	}
	return nil
}

// ValidateNetwork validates a single network definition.
func ValidateNetwork(n domain.Network) ValidationErrors {
	var errs ValidationErrors
	if err := ValidateChainID(n.ChainID); err != nil {
		errs.Add("chainId", strconv.FormatInt(n.ChainID, 10), err.Error())
	}
	if n.Name == "" {
		errs.Add("name", n.Name, "name must not be empty")
	}
	if err := ValidateSafeBaseURL(n.SafeBaseURL); err != nil {
		errs.Add("safeBaseUrl", n.SafeBaseURL, err.Error())
	}
	if err := ValidateSafeAddressPrefix(n.SafeAddressPrefix); err != nil {
		errs.Add("safeAddressPrefix", n.SafeAddressPrefix, err.Error())
	}
	if n.Status == "" {
		errs.Add("status", n.Status, "status must not be empty")
	}
	return errs
}

// ValidateNetworks validates a network list. Chain IDs must be unique since
// each one names a directory.
func ValidateNetworks(networks []domain.Network) error {
	var errs ValidationErrors
	seen := make(map[int64]int, len(networks))
	for i, n := range networks {
		for _, e := range ValidateNetwork(n) {
			e.Field = fmt.Sprintf("networks[%d].%s", i, e.Field)
			errs = append(errs, e)
		}
		if first, ok := seen[n.ChainID]; ok {
			errs.Add(fmt.Sprintf("networks[%d].chainId", i), strconv.FormatInt(n.ChainID, 10),
				fmt.Sprintf("duplicate chain ID (first defined at networks[%d])", first))
			continue
		}
		seen[n.ChainID] = i
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}
