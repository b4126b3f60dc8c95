// Package output renders the address book and persists it.
package output

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/bcnelson/chain-addressbook/internal/domain"
)

// Sink defines where a rendered address book is stored.
type Sink interface {
	// Read returns the stored address book and its digest.
	Read(ctx context.Context) ([]byte, string, error)
	// Write replaces the stored address book and returns the new digest.
	Write(ctx context.Context, records []domain.NetworkRecord) (string, error)
	// Check reports whether the stored address book already matches records.
	Check(ctx context.Context, records []domain.NetworkRecord) (bool, string, error)
}

// Render serializes the address book as a single JSON array.
// A nil or empty slice renders as []. HTML characters are written as is so
// section contents keep their original bytes.
func Render(records []domain.NetworkRecord, indent bool) ([]byte, error) {
	if records == nil {
		records = []domain.NetworkRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Digest returns the hex SHA-256 of data.
func Digest(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
