package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcnelson/chain-addressbook/internal/domain"
	"github.com/bcnelson/chain-addressbook/internal/merger"
	"github.com/bcnelson/chain-addressbook/internal/output"
	"github.com/bcnelson/chain-addressbook/internal/service"
	"github.com/bcnelson/chain-addressbook/internal/storage"
	"github.com/bcnelson/chain-addressbook/internal/storage/memory"
)

type fixture struct {
	root         string
	outputPath   string
	networksFile string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		root:         filepath.Join(dir, "addresses"),
		outputPath:   filepath.Join(dir, "EulerChains.json"),
		networksFile: filepath.Join(dir, "networks.json"),
	}
	f.writeNetworks(t, `[{"chainId":1,"name":"dev","safeBaseUrl":"https://app.safe.global","safeAddressPrefix":"dev","status":"beta"}]`)
	return f
}

func (f *fixture) writeNetworks(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(f.networksFile, []byte(content), 0o644))
}

func (f *fixture) writeAddresses(t *testing.T, chainID, name, content string) {
	t.Helper()
	dir := filepath.Join(f.root, chainID)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func (f *fixture) service(store storage.Storage) *service.BuildService {
	return service.NewBuildService(
		merger.NewDir(f.root, nil),
		output.NewFileSink(f.outputPath, false, nil),
		store,
		f.networksFile,
		f.outputPath,
		nil,
	)
}

func TestBuild_Scenario(t *testing.T) {
	f := newFixture(t)
	f.writeAddresses(t, "1", "TokenAddresses.json", `{"USDC":"0xabc"}`)

	result, err := f.service(nil).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Networks)
	assert.Equal(t, 1, result.Sections)
	assert.Empty(t, result.BuildID)

	data, err := os.ReadFile(f.outputPath)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"chainId":1,"name":"dev","safeBaseUrl":"https://app.safe.global","safeAddressPrefix":"dev","status":"beta","addresses":{"tokenAddrs":{"USDC":"0xabc"}}}]`,
		string(data))
	assert.Equal(t, output.Digest(data), result.Digest)
}

func TestBuild_EmptyNetworkList(t *testing.T) {
	f := newFixture(t)
	f.writeNetworks(t, `[]`)

	_, err := f.service(nil).Build(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(f.outputPath)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestBuild_MissingDirectoryLeavesOutputUntouched(t *testing.T) {
	f := newFixture(t)
	f.writeNetworks(t, `[
		{"chainId":1,"name":"dev","safeBaseUrl":"https://app.safe.global","safeAddressPrefix":"dev","status":"beta"},
		{"chainId":2,"name":"gone","safeBaseUrl":"https://app.safe.global","safeAddressPrefix":"gone","status":"beta"},
	]`)
	f.writeAddresses(t, "1", "TokenAddresses.json", `{}`)
	require.NoError(t, os.WriteFile(f.outputPath, []byte(`previous`), 0o644))

	_, err := f.service(nil).Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDirectoryNotFound))
	assert.Contains(t, err.Error(), filepath.Join(f.root, "2"))

	data, err := os.ReadFile(f.outputPath)
	require.NoError(t, err)
	assert.Equal(t, `previous`, string(data))
}

func TestBuild_MissingDirectoryCreatesNoOutput(t *testing.T) {
	f := newFixture(t)

	_, err := f.service(nil).Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDirectoryNotFound))

	_, statErr := os.Stat(f.outputPath)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestBuild_MalformedJSON(t *testing.T) {
	f := newFixture(t)
	f.writeAddresses(t, "1", "TokenAddresses.json", `{"USDC":`)

	_, err := f.service(nil).Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedJSON))
	assert.Contains(t, err.Error(), filepath.Join(f.root, "1", "TokenAddresses.json"))

	_, statErr := os.Stat(f.outputPath)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestBuild_InvalidNetworkList(t *testing.T) {
	f := newFixture(t)
	f.writeNetworks(t, `[{"chainId":0,"name":"dev","safeBaseUrl":"https://app.safe.global","safeAddressPrefix":"dev","status":"beta"}]`)

	_, err := f.service(nil).Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestBuild_RecordsHistory(t *testing.T) {
	f := newFixture(t)
	f.writeAddresses(t, "1", "TokenAddresses.json", `{"USDC":"0xabc"}`)
	f.writeAddresses(t, "1", "EVCAddresses.json", `{"evc":"0x1"}`)

	store := memory.New()
	svc := f.service(store)
	ctx := context.Background()

	first, err := svc.Build(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, first.BuildID)
	assert.Equal(t, 1, first.Number)
	assert.False(t, first.Unchanged)

	second, err := svc.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Number)
	assert.True(t, second.Unchanged)

	f.writeAddresses(t, "1", "TokenAddresses.json", `{"USDC":"0xdef"}`)
	third, err := svc.Build(ctx)
	require.NoError(t, err)
	assert.False(t, third.Unchanged)

	builds, err := svc.ListBuilds(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, builds, 3)
	assert.Equal(t, third.BuildID, builds[0].ID)
	require.Len(t, builds[0].Networks, 1)
	assert.Equal(t, []string{"eVCAddrs", "tokenAddrs"}, builds[0].Networks[0].Sections)

	got, err := svc.GetBuild(ctx, first.BuildID)
	require.NoError(t, err)
	assert.Equal(t, first.Digest, got.Digest)
}

func TestHistoryDisabled(t *testing.T) {
	svc := newFixture(t).service(nil)

	_, err := svc.ListBuilds(context.Background(), 10, 0)
	assert.True(t, errors.Is(err, domain.ErrHistoryDisabled))

	_, err = svc.GetBuild(context.Background(), "id")
	assert.True(t, errors.Is(err, domain.ErrHistoryDisabled))
}

func TestCheck(t *testing.T) {
	f := newFixture(t)
	f.writeAddresses(t, "1", "TokenAddresses.json", `{"USDC":"0xabc"}`)
	svc := f.service(nil)
	ctx := context.Background()

	_, err := svc.Check(ctx)
	assert.True(t, errors.Is(err, domain.ErrStale), "no output yet")

	result, err := svc.Build(ctx)
	require.NoError(t, err)

	digest, err := svc.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.Digest, digest)

	f.writeAddresses(t, "1", "LensAddresses.json", `[]`)
	_, err = svc.Check(ctx)
	assert.True(t, errors.Is(err, domain.ErrStale))
}

func TestBuild_DefaultNetworks(t *testing.T) {
	f := newFixture(t)
	f.networksFile = ""
	f.writeAddresses(t, "31337", "CoreAddresses.json", `{"evc":"0x1"}`)

	result, err := f.service(nil).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Networks)

	data, err := os.ReadFile(f.outputPath)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"chainId":31337,"name":"dev","safeBaseUrl":"https://app.safe.global","safeAddressPrefix":"dev","status":"beta","addresses":{"coreAddrs":{"evc":"0x1"}}}]`,
		string(data))
}
