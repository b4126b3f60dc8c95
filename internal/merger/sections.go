package merger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/bcnelson/chain-addressbook/internal/domain"
)

var errInvalidUTF8 = errors.New("invalid UTF-8")

const (
	addressFileSuffix = "Addresses.json"
	sectionSuffix     = "Addrs"
)

// SectionName derives the section name for an address-list file name.
// "TokenAddresses.json" becomes "tokenAddrs". Only the first character is
// lowercased, so "EVCAddresses.json" becomes "eVCAddrs".
// It returns false for names that are not address-list files.
func SectionName(filename string) (string, bool) {
	base, ok := strings.CutSuffix(filename, addressFileSuffix)
	if !ok {
		return "", false
	}
	name := base + sectionSuffix

	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError && size <= 1 {
		return name, true
	}
	return string(unicode.ToLower(r)) + name[size:], true
}

// mergeSections reads every address-list file in the network's directory.
// Entries are visited in lexical order; when two files map to the same
// section the later one wins.
func (m *Merger) mergeSections(n domain.Network) (domain.AddressSections, error) {
	dir := n.Dir()
	entries, err := fs.ReadDir(m.fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewPathError("list", m.displayPath(dir), domain.ErrDirectoryNotFound, nil)
		}
		return nil, domain.NewPathError("list", m.displayPath(dir), nil, err)
	}

	sections := make(domain.AddressSections)
	for _, entry := range entries {
		section, ok := SectionName(entry.Name())
		if !ok {
			m.logger.Debug("Skipping non address-list file",
				zap.String("path", m.displayPath(dir, entry.Name())))
			continue
		}

		file := path.Join(dir, entry.Name())
		raw, err := m.readJSON(file)
		if err != nil {
			return nil, err
		}

		if _, exists := sections[section]; exists {
			m.logger.Warn("Section defined by more than one file, later file wins",
				zap.Int64("chain_id", n.ChainID),
				zap.String("section", section),
				zap.String("path", m.displayPath(file)))
		}
		sections[section] = raw
	}

	return sections, nil
}

// readJSON reads a file and returns its contents as compact JSON.
func (m *Merger) readJSON(file string) (json.RawMessage, error) {
	data, err := fs.ReadFile(m.fsys, file)
	if err != nil {
		return nil, domain.NewPathError("read", m.displayPath(file), nil, err)
	}

	if !utf8.Valid(data) {
		return nil, domain.NewPathError("parse", m.displayPath(file), domain.ErrMalformedJSON, errInvalidUTF8)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, domain.NewPathError("parse", m.displayPath(file), domain.ErrMalformedJSON, err)
	}
	return json.RawMessage(buf.Bytes()), nil
}

// displayPath joins fs-relative elements onto the root for messages.
func (m *Merger) displayPath(elem ...string) string {
	return filepath.Join(append([]string{m.root}, elem...)...)
}
