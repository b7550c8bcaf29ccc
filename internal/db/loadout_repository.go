package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/ttmgo/internal/model"
	"github.com/udisondev/ttmgo/internal/store"
)

// LoadoutRepository управляет лоадаутами в БД.
type LoadoutRepository struct {
	db *pgxpool.Pool
}

// NewLoadoutRepository создаёт новый LoadoutRepository.
func NewLoadoutRepository(db *pgxpool.Pool) *LoadoutRepository {
	return &LoadoutRepository{db: db}
}

// GetLoadout возвращает nil, nil если лоадаут не найден.
func (r *LoadoutRepository) GetLoadout(ctx context.Context, id model.ContentID) (*model.Record[model.Loadout], error) {
	var row store.LoadoutRow
	err := r.db.QueryRow(ctx,
		`SELECT content_id, import_id, name, description, tree_id
		 FROM loadouts WHERE content_id = $1`, string(id),
	).Scan(&row.ID, &row.ImportID, &row.Name, &row.Description, &row.TreeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying loadout %s: %w", id, err)
	}
	return row.Record()
}

// CreateLoadout вставляет новый лоадаут.
func (r *LoadoutRepository) CreateLoadout(ctx context.Context, rec *model.Record[model.Loadout]) error {
	row, err := store.LoadoutRowFrom(rec)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO loadouts (content_id, import_id, name, description, tree_id)
		 VALUES ($1, $2, $3, $4, $5)`,
		row.ID, row.ImportID, row.Name, row.Description, row.TreeID,
	)
	if err != nil {
		return fmt.Errorf("inserting loadout %s: %w", rec.ID, err)
	}
	return nil
}

// DeleteLoadout удаляет лоадаут.
func (r *LoadoutRepository) DeleteLoadout(ctx context.Context, id model.ContentID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM loadouts WHERE content_id = $1`, string(id)); err != nil {
		return fmt.Errorf("deleting loadout %s: %w", id, err)
	}
	return nil
}
