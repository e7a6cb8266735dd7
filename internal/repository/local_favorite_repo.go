package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"carcompare-api/internal/model"
)

const localSchema = `
CREATE TABLE IF NOT EXISTS favorites (
	owner_id TEXT NOT NULL DEFAULT '',
	spec_id TEXT NOT NULL,
	spec TEXT NOT NULL,
	selected_color TEXT NOT NULL DEFAULT '',
	added_at DATETIME NOT NULL,
	PRIMARY KEY (owner_id, spec_id)
)`

// LocalFavoriteRepo stores favorites of the local device in a SQLite file
type LocalFavoriteRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewLocalFavoriteRepo opens (or creates) the SQLite file at path
func NewLocalFavoriteRepo(path string) (*LocalFavoriteRepo, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create favorites directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open local favorites: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(localSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create local favorites table: %w", err)
	}

	return &LocalFavoriteRepo{db: db, now: time.Now}, nil
}

func (r *LocalFavoriteRepo) Close() error {
	return r.db.Close()
}

func (r *LocalFavoriteRepo) Add(ctx context.Context, ownerID string, spec model.VehicleSpec, color string) (*model.FavoriteRecord, error) {
	data, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode favorite spec: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO favorites (owner_id, spec_id, spec, selected_color, added_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (owner_id, spec_id) DO UPDATE SET
			spec = excluded.spec,
			selected_color = excluded.selected_color
	`, ownerID, spec.ID, string(data), color, r.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to upsert local favorite: %w", err)
	}

	return r.Get(ctx, ownerID, spec.ID)
}

func (r *LocalFavoriteRepo) Remove(ctx context.Context, ownerID, specID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE owner_id = ? AND spec_id = ?`, ownerID, specID)
	if err != nil {
		return fmt.Errorf("failed to delete local favorite: %w", err)
	}
	return expectRow(result)
}

func (r *LocalFavoriteRepo) Get(ctx context.Context, ownerID, specID string) (*model.FavoriteRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT spec, selected_color, added_at
		FROM favorites
		WHERE owner_id = ? AND spec_id = ?
	`, ownerID, specID)

	rec, err := scanLocalFavorite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFavoriteNotFound
	}
	return rec, err
}

func (r *LocalFavoriteRepo) List(ctx context.Context, ownerID string) ([]model.FavoriteRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT spec, selected_color, added_at
		FROM favorites
		WHERE owner_id = ?
		ORDER BY added_at DESC, spec_id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query local favorites: %w", err)
	}
	defer rows.Close()

	favorites := []model.FavoriteRecord{}
	for rows.Next() {
		rec, err := scanLocalFavorite(rows)
		if err != nil {
			return nil, err
		}
		favorites = append(favorites, *rec)
	}
	return favorites, rows.Err()
}

func (r *LocalFavoriteRepo) UpdateColor(ctx context.Context, ownerID, specID, color string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE favorites SET selected_color = ?
		WHERE owner_id = ? AND spec_id = ?
	`, color, ownerID, specID)
	if err != nil {
		return fmt.Errorf("failed to update local favorite color: %w", err)
	}
	return expectRow(result)
}

func scanLocalFavorite(row rowScanner) (*model.FavoriteRecord, error) {
	var data string
	var rec model.FavoriteRecord
	var color string
	if err := row.Scan(&data, &color, &rec.AddedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &rec.VehicleSpec); err != nil {
		return nil, fmt.Errorf("failed to decode favorite spec: %w", err)
	}
	rec.SelectedColor = color
	return &rec, nil
}

func expectRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}
