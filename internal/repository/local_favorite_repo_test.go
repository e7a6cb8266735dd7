package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carcompare-api/internal/model"
)

func newLocalRepo(t *testing.T) *LocalFavoriteRepo {
	t.Helper()
	repo, err := NewLocalFavoriteRepo(filepath.Join(t.TempDir(), "data", "favorites.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestLocalFavoriteAddKeepsAddedAt(t *testing.T) {
	ctx := context.Background()
	repo := newLocalRepo(t)

	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return first }

	spec := model.VehicleSpec{ID: "bmw-m3", Brand: "BMW", Model: "M3", HP: 480, Traction: model.DrivetrainRWD}
	rec, err := repo.Add(ctx, "", spec, "blue")
	require.NoError(t, err)
	assert.Equal(t, "blue", rec.SelectedColor)
	assert.True(t, first.Equal(rec.AddedAt))
	assert.Equal(t, 480, rec.HP)

	repo.now = func() time.Time { return first.Add(time.Hour) }
	rec, err = repo.Add(ctx, "", spec, "red")
	require.NoError(t, err)
	assert.Equal(t, "red", rec.SelectedColor)
	assert.True(t, first.Equal(rec.AddedAt))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLocalFavoriteListOrderAndOwners(t *testing.T) {
	ctx := context.Background()
	repo := newLocalRepo(t)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"fiat-panda", "tesla-model-3"} {
		repo.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		_, err := repo.Add(ctx, "", model.VehicleSpec{ID: id, Brand: "x", Model: id}, "")
		require.NoError(t, err)
	}
	_, err := repo.Add(ctx, "someone", model.VehicleSpec{ID: "audi-a4", Brand: "Audi", Model: "A4"}, "")
	require.NoError(t, err)

	local, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, local, 2)
	assert.Equal(t, "tesla-model-3", local[0].ID)
	assert.Equal(t, "fiat-panda", local[1].ID)

	none, err := repo.List(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestLocalFavoriteColorAndRemove(t *testing.T) {
	ctx := context.Background()
	repo := newLocalRepo(t)

	_, err := repo.Add(ctx, "", model.VehicleSpec{ID: "bmw-m3", Brand: "BMW", Model: "M3"}, "")
	require.NoError(t, err)

	require.NoError(t, repo.UpdateColor(ctx, "", "bmw-m3", "black"))
	rec, err := repo.Get(ctx, "", "bmw-m3")
	require.NoError(t, err)
	assert.Equal(t, "black", rec.SelectedColor)

	assert.ErrorIs(t, repo.UpdateColor(ctx, "", "missing", "black"), ErrFavoriteNotFound)

	require.NoError(t, repo.Remove(ctx, "", "bmw-m3"))
	_, err = repo.Get(ctx, "", "bmw-m3")
	assert.ErrorIs(t, err, ErrFavoriteNotFound)
	assert.ErrorIs(t, repo.Remove(ctx, "", "bmw-m3"), ErrFavoriteNotFound)
}
