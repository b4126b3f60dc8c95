package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/bcnelson/chain-addressbook/internal/domain"
	"github.com/bcnelson/chain-addressbook/internal/storage"
)

// Store is an in-memory implementation of the storage interface for testing.
type Store struct {
	mu     sync.RWMutex
	builds map[string]*domain.Build // key: id
}

// Ensure Store implements storage.Storage.
var _ storage.Storage = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		builds: make(map[string]*domain.Build),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateBuild(ctx context.Context, build *domain.Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.builds[build.ID]; exists {
		return domain.ErrAlreadyExists
	}
	for _, b := range s.builds {
		if b.Number == build.Number {
			return domain.ErrAlreadyExists
		}
	}
	s.builds[build.ID] = cloneBuild(build)
	return nil
}

func (s *Store) GetBuild(ctx context.Context, id string) (*domain.Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	build, exists := s.builds[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return cloneBuild(build), nil
}

func (s *Store) GetLatestBuild(ctx context.Context) (*domain.Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *domain.Build
	for _, b := range s.builds {
		if latest == nil || b.Number > latest.Number {
			latest = b
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return cloneBuild(latest), nil
}

func (s *Store) ListBuilds(ctx context.Context, limit, offset int) ([]*domain.Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	builds := make([]*domain.Build, 0, len(s.builds))
	for _, b := range s.builds {
		builds = append(builds, cloneBuild(b))
	}
	sort.Slice(builds, func(i, j int) bool {
		return builds[i].Number > builds[j].Number
	})
	if offset < 0 {
		offset = 0
	}
	if offset >= len(builds) {
		return []*domain.Build{}, nil
	}
	// A negative limit means no limit.
	end := offset + limit
	if limit < 0 || end > len(builds) {
		end = len(builds)
	}
	return builds[offset:end], nil
}

// cloneBuild copies a build so callers cannot modify stored state.
func cloneBuild(b *domain.Build) *domain.Build {
	c := *b
	c.Networks = make([]domain.BuildNetwork, len(b.Networks))
	for i, n := range b.Networks {
		n.Sections = slices.Clone(n.Sections)
		c.Networks[i] = n
	}
	return &c
}
