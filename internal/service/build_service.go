package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bcnelson/chain-addressbook/internal/domain"
	"github.com/bcnelson/chain-addressbook/internal/merger"
	"github.com/bcnelson/chain-addressbook/internal/networks"
	"github.com/bcnelson/chain-addressbook/internal/output"
	"github.com/bcnelson/chain-addressbook/internal/storage"
	"github.com/bcnelson/chain-addressbook/internal/validation"
)

// BuildService builds the address book and records each build.
type BuildService struct {
	merger       *merger.Merger
	sink         output.Sink
	store        storage.Storage
	networksFile string
	outputPath   string
	logger       *zap.Logger
	now          func() time.Time
}

// NewBuildService creates a new BuildService. The store may be nil, in which
// case builds are not recorded.
func NewBuildService(m *merger.Merger, sink output.Sink, store storage.Storage, networksFile, outputPath string, logger *zap.Logger) *BuildService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BuildService{
		merger:       m,
		sink:         sink,
		store:        store,
		networksFile: networksFile,
		outputPath:   outputPath,
		logger:       logger,
		now:          time.Now,
	}
}

// Build merges every network's address files and writes the address book.
// Nothing is written unless every network merged successfully.
func (s *BuildService) Build(ctx context.Context) (*domain.BuildResult, error) {
	records, err := s.merge(ctx)
	if err != nil {
		return nil, err
	}

	digest, err := s.sink.Write(ctx, records)
	if err != nil {
		return nil, err
	}

	result := &domain.BuildResult{
		OutputPath: s.outputPath,
		Digest:     digest,
		Networks:   len(records),
		Sections:   countSections(records),
	}

	if s.store != nil {
		if err := s.record(ctx, records, result); err != nil {
			return nil, fmt.Errorf("recording build: %w", err)
		}
	}

	s.logger.Info("Address book built",
		zap.String("path", s.outputPath),
		zap.Int("networks", result.Networks),
		zap.Int("sections", result.Sections),
		zap.Bool("unchanged", result.Unchanged))

	return result, nil
}

// Check reports whether the written address book is up to date. It returns
// domain.ErrStale when a build would change the output file.
func (s *BuildService) Check(ctx context.Context) (string, error) {
	records, err := s.merge(ctx)
	if err != nil {
		return "", err
	}

	upToDate, digest, err := s.sink.Check(ctx, records)
	if err != nil {
		return "", err
	}
	if !upToDate {
		return digest, domain.NewPathError("check", s.outputPath, domain.ErrStale, nil)
	}
	return digest, nil
}

// ListBuilds returns recorded builds, newest first.
func (s *BuildService) ListBuilds(ctx context.Context, limit, offset int) ([]*domain.Build, error) {
	if s.store == nil {
		return nil, domain.ErrHistoryDisabled
	}
	return s.store.ListBuilds(ctx, limit, offset)
}

// GetBuild returns one recorded build.
func (s *BuildService) GetBuild(ctx context.Context, id string) (*domain.Build, error) {
	if s.store == nil {
		return nil, domain.ErrHistoryDisabled
	}
	return s.store.GetBuild(ctx, id)
}

// merge loads and validates the network list, then merges address files.
func (s *BuildService) merge(ctx context.Context) ([]domain.NetworkRecord, error) {
	list, err := networks.Load(s.networksFile)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateNetworks(list); err != nil {
		return nil, fmt.Errorf("invalid network list: %w", err)
	}

	s.logger.Debug("Loaded networks",
		zap.String("source", networksSource(s.networksFile)),
		zap.Int("count", len(list)))

	return s.merger.Merge(ctx, list)
}

// record stores the build and fills in the history fields of result.
func (s *BuildService) record(ctx context.Context, records []domain.NetworkRecord, result *domain.BuildResult) error {
	nextNumber := 1
	latest, err := s.store.GetLatestBuild(ctx)
	switch {
	case err == nil:
		nextNumber = latest.Number + 1
		result.Unchanged = latest.Digest == result.Digest
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	build := &domain.Build{
		ID:         uuid.New().String(),
		Number:     nextNumber,
		OutputPath: s.outputPath,
		Digest:     result.Digest,
		CreatedAt:  s.now().UTC(),
		Networks:   make([]domain.BuildNetwork, 0, len(records)),
	}
	for _, r := range records {
		build.Networks = append(build.Networks, domain.BuildNetwork{
			ChainID:  r.ChainID,
			Name:     r.Name,
			Sections: r.Addresses.Names(),
		})
	}

	if err := s.store.CreateBuild(ctx, build); err != nil {
		return err
	}

	result.BuildID = build.ID
	result.Number = build.Number
	return nil
}

func countSections(records []domain.NetworkRecord) int {
	n := 0
	for _, r := range records {
		n += len(r.Addresses)
	}
	return n
}

func networksSource(file string) string {
	if file == "" {
		return "built-in"
	}
	return file
}
