package sql

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"go.uber.org/multierr"

	"github.com/bcnelson/chain-addressbook/internal/domain"
	"github.com/bcnelson/chain-addressbook/internal/storage"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// isUniqueViolation checks if an error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLite
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	// PostgreSQL
	if strings.Contains(errStr, "duplicate key value violates unique constraint") {
		return true
	}
	return false
}

// wrapUniqueError converts UNIQUE violations to domain.ErrAlreadyExists.
func wrapUniqueError(err error) error {
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// Store implements the storage.Storage interface using SQL.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Ensure Store implements storage.Storage.
var _ storage.Storage = (*Store)(nil)

// New creates a new SQL store and applies pending migrations.
func New(driver, dsn string) (*Store, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(driver); err != nil {
		return nil, multierr.Append(fmt.Errorf("setting goose dialect: %w", err), db.Close())
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		return nil, multierr.Append(fmt.Errorf("running migrations: %w", err), db.Close())
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// dbInterface is satisfied by both *sqlx.DB and *sqlx.Tx.
type dbInterface interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

// buildNetworkRow is the stored form of domain.BuildNetwork.
type buildNetworkRow struct {
	BuildID  string `db:"build_id"`
	Position int    `db:"position"`
	ChainID  int64  `db:"chain_id"`
	Name     string `db:"name"`
	Sections string `db:"sections"`
}

const selectBuild = `SELECT id, number, output_path, digest, created_at FROM builds`

// CreateBuild inserts the build and its networks in one transaction.
func (s *Store) CreateBuild(ctx context.Context, build *domain.Build) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO builds (id, number, output_path, digest, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		build.ID, build.Number, build.OutputPath, build.Digest, build.CreatedAt)
	if err != nil {
		return wrapUniqueError(err)
	}

	for i, n := range build.Networks {
		sections, err := json.Marshal(nonNil(n.Sections))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO build_networks (build_id, position, chain_id, name, sections)
			 VALUES ($1, $2, $3, $4, $5)`,
			build.ID, i, n.ChainID, n.Name, string(sections))
		if err != nil {
			return wrapUniqueError(err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetBuild(ctx context.Context, id string) (*domain.Build, error) {
	return getBuild(ctx, s.db, selectBuild+` WHERE id = $1`, id)
}

func (s *Store) GetLatestBuild(ctx context.Context) (*domain.Build, error) {
	return getBuild(ctx, s.db, selectBuild+` ORDER BY number DESC LIMIT 1`)
}

func (s *Store) ListBuilds(ctx context.Context, limit, offset int) ([]*domain.Build, error) {
	var builds []*domain.Build
	err := s.db.SelectContext(ctx, &builds,
		selectBuild+` ORDER BY number DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, b := range builds {
		if b.Networks, err = getBuildNetworks(ctx, s.db, b.ID); err != nil {
			return nil, err
		}
	}
	if builds == nil {
		builds = []*domain.Build{}
	}
	return builds, nil
}

func getBuild(ctx context.Context, db dbInterface, query string, args ...any) (*domain.Build, error) {
	var build domain.Build
	err := db.GetContext(ctx, &build, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if build.Networks, err = getBuildNetworks(ctx, db, build.ID); err != nil {
		return nil, err
	}
	return &build, nil
}

func getBuildNetworks(ctx context.Context, db dbInterface, buildID string) ([]domain.BuildNetwork, error) {
	var rows []buildNetworkRow
	err := db.SelectContext(ctx, &rows,
		`SELECT build_id, position, chain_id, name, sections
		 FROM build_networks WHERE build_id = $1 ORDER BY position`, buildID)
	if err != nil {
		return nil, err
	}

	networks := make([]domain.BuildNetwork, 0, len(rows))
	for _, r := range rows {
		var sections []string
		if err := json.Unmarshal([]byte(r.Sections), &sections); err != nil {
			return nil, fmt.Errorf("decoding sections of build %s: %w", buildID, err)
		}
		networks = append(networks, domain.BuildNetwork{
			ChainID:  r.ChainID,
			Name:     r.Name,
			Sections: sections,
		})
	}
	return networks, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
