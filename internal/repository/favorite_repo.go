package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carcompare-api/internal/model"
)

// ErrFavoriteNotFound is returned when the owner has no favorite with the given id
var ErrFavoriteNotFound = errors.New("favorite not found")

// FavoriteRepo stores favorites of signed-in owners in Postgres
type FavoriteRepo struct {
	pool *pgxpool.Pool
}

func NewFavoriteRepo(pool *pgxpool.Pool) *FavoriteRepo {
	return &FavoriteRepo{pool: pool}
}

// Add upserts a favorite. An existing favorite keeps its added_at.
func (r *FavoriteRepo) Add(ctx context.Context, ownerID string, spec model.VehicleSpec, color string) (*model.FavoriteRecord, error) {
	data, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode favorite spec: %w", err)
	}

	query := `
		INSERT INTO favorites (owner_id, spec_id, spec, selected_color, added_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (owner_id, spec_id) DO UPDATE SET
			spec = EXCLUDED.spec,
			selected_color = EXCLUDED.selected_color
		RETURNING added_at
	`

	rec := &model.FavoriteRecord{VehicleSpec: spec}
	rec.SelectedColor = color
	if err := r.pool.QueryRow(ctx, query, ownerID, spec.ID, data, color).Scan(&rec.AddedAt); err != nil {
		return nil, fmt.Errorf("failed to upsert favorite: %w", err)
	}
	return rec, nil
}

func (r *FavoriteRepo) Remove(ctx context.Context, ownerID, specID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE owner_id = $1 AND spec_id = $2`, ownerID, specID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

func (r *FavoriteRepo) Get(ctx context.Context, ownerID, specID string) (*model.FavoriteRecord, error) {
	query := `
		SELECT spec, selected_color, added_at
		FROM favorites
		WHERE owner_id = $1 AND spec_id = $2
	`

	row := r.pool.QueryRow(ctx, query, ownerID, specID)
	rec, err := scanFavorite(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFavoriteNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns the owner's favorites, newest first
func (r *FavoriteRepo) List(ctx context.Context, ownerID string) ([]model.FavoriteRecord, error) {
	query := `
		SELECT spec, selected_color, added_at
		FROM favorites
		WHERE owner_id = $1
		ORDER BY added_at DESC, spec_id
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	favorites := []model.FavoriteRecord{}
	for rows.Next() {
		rec, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		favorites = append(favorites, *rec)
	}

	return favorites, rows.Err()
}

func (r *FavoriteRepo) UpdateColor(ctx context.Context, ownerID, specID, color string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE favorites SET selected_color = $3
		WHERE owner_id = $1 AND spec_id = $2
	`, ownerID, specID, color)
	if err != nil {
		return fmt.Errorf("failed to update favorite color: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// rowScanner is satisfied by pgx.Row, pgx.Rows and *sql.Row(s)
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFavorite(row rowScanner) (*model.FavoriteRecord, error) {
	var data []byte
	var rec model.FavoriteRecord
	var color string
	if err := row.Scan(&data, &color, &rec.AddedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &rec.VehicleSpec); err != nil {
		return nil, fmt.Errorf("failed to decode favorite spec: %w", err)
	}
	rec.SelectedColor = color
	return &rec, nil
}
