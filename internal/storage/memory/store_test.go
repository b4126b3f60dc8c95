package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcnelson/chain-addressbook/internal/domain"
)

func TestStore_Builds(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, err := store.GetLatestBuild(ctx)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.CreateBuild(ctx, &domain.Build{
			ID:        id,
			Number:    i + 1,
			CreatedAt: time.Now(),
			Networks:  []domain.BuildNetwork{{ChainID: 1, Name: "dev", Sections: []string{"tokenAddrs"}}},
		}))
	}

	assert.True(t, errors.Is(store.CreateBuild(ctx, &domain.Build{ID: "a", Number: 9}), domain.ErrAlreadyExists))
	assert.True(t, errors.Is(store.CreateBuild(ctx, &domain.Build{ID: "d", Number: 1}), domain.ErrAlreadyExists))

	latest, err := store.GetLatestBuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", latest.ID)

	builds, err := store.ListBuilds(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, builds, 2)
	assert.Equal(t, "b", builds[0].ID)
	assert.Equal(t, "a", builds[1].ID)

	builds, err = store.ListBuilds(ctx, -1, 0)
	require.NoError(t, err)
	assert.Len(t, builds, 3, "negative limit lists everything")

	builds, err = store.ListBuilds(ctx, -1, 2)
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, "a", builds[0].ID)

	// Returned builds are copies.
	latest.Networks[0].Sections[0] = "changed"
	again, err := store.GetBuild(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "tokenAddrs", again.Networks[0].Sections[0])
}
