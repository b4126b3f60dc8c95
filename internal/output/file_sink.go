package output

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/bcnelson/chain-addressbook/internal/domain"
)

// FileSink writes the address book to a single file.
type FileSink struct {
	filePath string
	indent   bool
	logger   *zap.Logger
	mu       sync.RWMutex
}

// Ensure FileSink implements Sink.
var _ Sink = (*FileSink)(nil)

// NewFileSink creates a new file-based sink.
func NewFileSink(filePath string, indent bool, logger *zap.Logger) *FileSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSink{
		filePath: filePath,
		indent:   indent,
		logger:   logger,
	}
}

// Path returns the output file path.
func (f *FileSink) Path() string {
	return f.filePath
}

// Read reads the current address book from the file.
func (f *FileSink) Read(ctx context.Context) ([]byte, string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", domain.NewPathError("read", f.filePath, domain.ErrNotFound, nil)
		}
		return nil, "", fmt.Errorf("reading address book: %w", err)
	}
	return data, Digest(data), nil
}

// Write renders records and overwrites the file in one write. A failure part
// way through can leave a truncated file behind.
func (f *FileSink) Write(ctx context.Context, records []domain.NetworkRecord) (string, error) {
	data, err := Render(records, f.indent)
	if err != nil {
		return "", fmt.Errorf("marshaling address book: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.filePath), 0o755); err != nil {
		return "", domain.NewPathError("write", f.filePath, domain.ErrWriteFailed, err)
	}

	if err := os.WriteFile(f.filePath, data, 0o644); err != nil {
		return "", domain.NewPathError("write", f.filePath, domain.ErrWriteFailed, err)
	}

	digest := Digest(data)
	f.logger.Info("Address book written",
		zap.String("path", f.filePath),
		zap.Int("bytes", len(data)),
		zap.String("digest", digest[:12]))

	return digest, nil
}

// Check compares the file on disk with what Write would produce. A missing
// file is reported as not up to date.
func (f *FileSink) Check(ctx context.Context, records []domain.NetworkRecord) (bool, string, error) {
	want, err := Render(records, f.indent)
	if err != nil {
		return false, "", fmt.Errorf("marshaling address book: %w", err)
	}
	wantDigest := Digest(want)

	_, current, err := f.Read(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, wantDigest, nil
		}
		return false, wantDigest, err
	}

	return current == wantDigest, wantDigest, nil
}
