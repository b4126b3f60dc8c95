package storage

import (
	"context"

	"github.com/bcnelson/chain-addressbook/internal/domain"
)

// Storage records the history of address book builds.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Close closes the storage connection.
	Close() error

	// CreateBuild stores a build together with its network summaries.
	CreateBuild(ctx context.Context, build *domain.Build) error
	GetBuild(ctx context.Context, id string) (*domain.Build, error)
	// GetLatestBuild returns the build with the highest number, or
	// domain.ErrNotFound when nothing has been recorded yet.
	GetLatestBuild(ctx context.Context) (*domain.Build, error)
	// ListBuilds returns builds newest first.
	ListBuilds(ctx context.Context, limit, offset int) ([]*domain.Build, error)
}
