package service

import (
	"context"
	"errors"
	"strings"

	"carcompare-api/internal/imagecdn"
	"carcompare-api/internal/model"
	"carcompare-api/internal/repository"
)

var (
	ErrFavoriteNotFound      = repository.ErrFavoriteNotFound
	ErrOwnerStoreUnavailable = errors.New("owner favorites store is not configured")
	ErrInvalidFavorite       = errors.New("favorite spec needs an id, brand and model")
)

// FavoriteStore persists favorites per owner. Add replaces the stored spec
// and color of an existing favorite but keeps its added time.
type FavoriteStore interface {
	Add(ctx context.Context, ownerID string, spec model.VehicleSpec, color string) (*model.FavoriteRecord, error)
	Remove(ctx context.Context, ownerID, specID string) error
	Get(ctx context.Context, ownerID, specID string) (*model.FavoriteRecord, error)
	List(ctx context.Context, ownerID string) ([]model.FavoriteRecord, error)
	UpdateColor(ctx context.Context, ownerID, specID, color string) error
}

// FavoriteService routes favorites of signed-in owners to the shared store
// and those of anonymous callers to the local device store
type FavoriteService struct {
	owners FavoriteStore
	local  FavoriteStore
	images *imagecdn.Builder
}

// NewFavoriteService wires the stores. owners may be nil when no database
// is configured; images may be nil to leave image references untouched.
func NewFavoriteService(owners, local FavoriteStore, images *imagecdn.Builder) *FavoriteService {
	return &FavoriteService{owners: owners, local: local, images: images}
}

func (s *FavoriteService) store(ownerID string) (FavoriteStore, error) {
	if strings.TrimSpace(ownerID) == "" {
		return s.local, nil
	}
	if s.owners == nil {
		return nil, ErrOwnerStoreUnavailable
	}
	return s.owners, nil
}

func (s *FavoriteService) Add(ctx context.Context, ownerID string, spec model.VehicleSpec, color string) (*model.FavoriteRecord, error) {
	if spec.ID == "" || strings.TrimSpace(spec.Brand) == "" || strings.TrimSpace(spec.Model) == "" {
		return nil, ErrInvalidFavorite
	}
	store, err := s.store(ownerID)
	if err != nil {
		return nil, err
	}

	// match scores depend on the session's preferences
	spec.Score = nil
	spec.SelectedColor = color

	rec, err := store.Add(ctx, ownerID, spec, color)
	if err != nil {
		return nil, err
	}
	s.resolveImage(rec)
	return rec, nil
}

func (s *FavoriteService) Remove(ctx context.Context, ownerID, specID string) error {
	store, err := s.store(ownerID)
	if err != nil {
		return err
	}
	return store.Remove(ctx, ownerID, specID)
}

func (s *FavoriteService) Get(ctx context.Context, ownerID, specID string) (*model.FavoriteRecord, error) {
	store, err := s.store(ownerID)
	if err != nil {
		return nil, err
	}
	rec, err := store.Get(ctx, ownerID, specID)
	if err != nil {
		return nil, err
	}
	s.resolveImage(rec)
	return rec, nil
}

// List returns every favorite of the owner, newest first, each image
// resolved with the favorite's selected color
func (s *FavoriteService) List(ctx context.Context, ownerID string) ([]model.FavoriteRecord, error) {
	store, err := s.store(ownerID)
	if err != nil {
		return nil, err
	}
	recs, err := store.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		s.resolveImage(&recs[i])
	}
	return recs, nil
}

func (s *FavoriteService) UpdateColor(ctx context.Context, ownerID, specID, color string) (*model.FavoriteRecord, error) {
	store, err := s.store(ownerID)
	if err != nil {
		return nil, err
	}
	if err := store.UpdateColor(ctx, ownerID, specID, color); err != nil {
		return nil, err
	}
	return s.Get(ctx, ownerID, specID)
}

// IsFavorite reports whether specID is among the owner's favorites
func (s *FavoriteService) IsFavorite(ctx context.Context, ownerID, specID string) (bool, error) {
	_, err := s.Get(ctx, ownerID, specID)
	if errors.Is(err, ErrFavoriteNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *FavoriteService) resolveImage(rec *model.FavoriteRecord) {
	if s.images == nil || rec == nil {
		return
	}
	rec.Image = s.images.URL(rec.Brand, rec.Model, rec.Year, imagecdn.DefaultAngle, rec.SelectedColor)
}
