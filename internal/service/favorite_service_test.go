package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carcompare-api/internal/imagecdn"
	"carcompare-api/internal/model"
	"carcompare-api/internal/repository"
)

type memoryStore struct {
	records map[string]map[string]model.FavoriteRecord
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]map[string]model.FavoriteRecord{}}
}

func (m *memoryStore) Add(_ context.Context, ownerID string, spec model.VehicleSpec, color string) (*model.FavoriteRecord, error) {
	if m.records[ownerID] == nil {
		m.records[ownerID] = map[string]model.FavoriteRecord{}
	}
	rec := model.FavoriteRecord{VehicleSpec: spec, AddedAt: time.Now()}
	if old, ok := m.records[ownerID][spec.ID]; ok {
		rec.AddedAt = old.AddedAt
	}
	rec.SelectedColor = color
	m.records[ownerID][spec.ID] = rec
	return &rec, nil
}

func (m *memoryStore) Remove(_ context.Context, ownerID, specID string) error {
	if _, ok := m.records[ownerID][specID]; !ok {
		return repository.ErrFavoriteNotFound
	}
	delete(m.records[ownerID], specID)
	return nil
}

func (m *memoryStore) Get(_ context.Context, ownerID, specID string) (*model.FavoriteRecord, error) {
	rec, ok := m.records[ownerID][specID]
	if !ok {
		return nil, repository.ErrFavoriteNotFound
	}
	return &rec, nil
}

func (m *memoryStore) List(_ context.Context, ownerID string) ([]model.FavoriteRecord, error) {
	out := []model.FavoriteRecord{}
	for _, rec := range m.records[ownerID] {
		out = append(out, rec)
	}
	return out, nil
}

func (m *memoryStore) UpdateColor(_ context.Context, ownerID, specID, color string) error {
	rec, ok := m.records[ownerID][specID]
	if !ok {
		return repository.ErrFavoriteNotFound
	}
	rec.SelectedColor = color
	m.records[ownerID][specID] = rec
	return nil
}

func newLocal(t *testing.T) *repository.LocalFavoriteRepo {
	t.Helper()
	local, err := repository.NewLocalFavoriteRepo(filepath.Join(t.TempDir(), "favorites.db"))
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })
	return local
}

var m3 = model.VehicleSpec{ID: "bmw-m3", Brand: "BMW", Model: "M3", Year: 2023, HP: 480}

func TestFavoriteRouting(t *testing.T) {
	ctx := context.Background()
	owners := newMemoryStore()
	svc := NewFavoriteService(owners, newLocal(t), nil)

	score := 80
	spec := m3
	spec.Score = &score

	_, err := svc.Add(ctx, "user-1", spec, "blue")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "", m3, "")
	require.NoError(t, err)

	stored := owners.records["user-1"]["bmw-m3"]
	assert.Nil(t, stored.Score)
	assert.Equal(t, "blue", stored.SelectedColor)

	local, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, local, 1)

	_, err = svc.Get(ctx, "user-2", "bmw-m3")
	assert.ErrorIs(t, err, ErrFavoriteNotFound)
}

func TestFavoriteOwnerStoreUnavailable(t *testing.T) {
	svc := NewFavoriteService(nil, newLocal(t), nil)

	_, err := svc.List(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrOwnerStoreUnavailable)

	_, err = svc.List(context.Background(), "")
	assert.NoError(t, err)
}

func TestFavoriteValidation(t *testing.T) {
	svc := NewFavoriteService(nil, newLocal(t), nil)
	_, err := svc.Add(context.Background(), "", model.VehicleSpec{Brand: "BMW"}, "")
	assert.ErrorIs(t, err, ErrInvalidFavorite)
}

func TestFavoriteImagesFollowColor(t *testing.T) {
	ctx := context.Background()
	svc := NewFavoriteService(nil, newLocal(t), imagecdn.NewBuilder("https://cdn.example.com", "demo"))

	_, err := svc.Add(ctx, "", m3, "red")
	require.NoError(t, err)

	rec, err := svc.UpdateColor(ctx, "", "bmw-m3", "black")
	require.NoError(t, err)
	assert.Equal(t, "black", rec.SelectedColor)
	assert.Contains(t, rec.Image, "paintDescription=black")

	list, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Image, "paintDescription=black")

	ok, err := svc.IsFavorite(ctx, "", "bmw-m3")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Remove(ctx, "", "bmw-m3"))
	ok, err = svc.IsFavorite(ctx, "", "bmw-m3")
	require.NoError(t, err)
	assert.False(t, ok)
}
