package merger

import (
	"context"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/bcnelson/chain-addressbook/internal/domain"
)

// Merger merges the address-list files of every network into a single
// address book.
type Merger struct {
	fsys   fs.FS
	root   string
	logger *zap.Logger
}

// New creates a new Merger reading from fsys. The root is only used to
// report paths in errors and logs.
func New(fsys fs.FS, root string, logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{fsys: fsys, root: root, logger: logger}
}

// NewDir creates a new Merger over the directory tree at root.
func NewDir(root string, logger *zap.Logger) *Merger {
	return New(os.DirFS(root), root, logger)
}

// Merge builds one record per network, in input order. The input networks are
// not modified. Any unreadable directory or malformed file fails the whole
// merge and no records are returned.
func (m *Merger) Merge(ctx context.Context, networks []domain.Network) ([]domain.NetworkRecord, error) {
	records := make([]domain.NetworkRecord, 0, len(networks))

	for _, n := range networks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sections, err := m.mergeSections(n)
		if err != nil {
			return nil, err
		}

		m.logger.Debug("Merged network",
			zap.Int64("chain_id", n.ChainID),
			zap.String("name", n.Name),
			zap.Strings("sections", sections.Names()))

		records = append(records, domain.NewNetworkRecord(n, sections))
	}

	return records, nil
}
