// Package networks loads the list of networks the address book is built for.
//
// Without a networks file the built-in list from domain.DefaultNetworks is
// used. A networks file is a list of network objects, written either as YAML
// (.yaml, .yml) or as HuJSON: JSON that allows comments and trailing commas.
package networks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/bcnelson/chain-addressbook/internal/domain"
)

// Load returns the networks defined in path, or the built-in list when path
// is empty.
func Load(path string) ([]domain.Network, error) {
	if path == "" {
		return domain.DefaultNetworks(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a networks file.
func LoadFile(path string) ([]domain.Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewPathError("read", path, nil, err)
	}

	var networks []domain.Network
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		networks, err = ParseYAML(data)
	default:
		networks, err = ParseHuJSON(data)
	}
	if err != nil {
		return nil, domain.NewPathError("parse", path, domain.ErrInvalidInput, err)
	}
	return networks, nil
}

// ParseHuJSON decodes a HuJSON network list. Unknown fields are rejected.
func ParseHuJSON(data []byte) ([]domain.Network, error) {
	v, err := hujson.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing HuJSON: %w", err)
	}
	v.Standardize()

	dec := json.NewDecoder(bytes.NewReader(v.Pack()))
	dec.DisallowUnknownFields()

	var networks []domain.Network
	if err := dec.Decode(&networks); err != nil {
		return nil, fmt.Errorf("decoding networks: %w", err)
	}
	if networks == nil {
		networks = []domain.Network{}
	}
	return networks, nil
}

// ParseYAML decodes a YAML network list. Unknown fields are rejected.
func ParseYAML(data []byte) ([]domain.Network, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var networks []domain.Network
	if err := dec.Decode(&networks); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding networks: %w", err)
	}
	if networks == nil {
		networks = []domain.Network{}
	}
	return networks, nil
}
