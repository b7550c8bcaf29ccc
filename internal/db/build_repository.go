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

// BuildRepository управляет билдами в БД.
type BuildRepository struct {
	db *pgxpool.Pool
}

// NewBuildRepository создаёт новый BuildRepository.
func NewBuildRepository(db *pgxpool.Pool) *BuildRepository {
	return &BuildRepository{db: db}
}

// GetBuild возвращает nil, nil если билд не найден.
// loadout_id читается и для заглушек.
func (r *BuildRepository) GetBuild(ctx context.Context, id model.ContentID) (*model.Record[model.Build], error) {
	var row store.BuildRow
	err := r.db.QueryRow(ctx,
		`SELECT content_id, import_id, name, tree_id, loadout_id, level_cap, use_level_cap, assigned_skills
		 FROM builds WHERE content_id = $1`, string(id),
	).Scan(&row.ID, &row.ImportID, &row.Name, &row.TreeID, &row.LoadoutID,
		&row.LevelCap, &row.UseLevelCap, &row.AssignedSkills)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying build %s: %w", id, err)
	}
	return row.Record()
}

// CreateBuild вставляет новый билд.
func (r *BuildRepository) CreateBuild(ctx context.Context, rec *model.Record[model.Build]) error {
	row, err := store.BuildRowFrom(rec)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO builds (content_id, import_id, name, tree_id, loadout_id, level_cap, use_level_cap, assigned_skills)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		row.ID, row.ImportID, row.Name, row.TreeID, row.LoadoutID,
		row.LevelCap, row.UseLevelCap, row.AssignedSkills,
	)
	if err != nil {
		return fmt.Errorf("inserting build %s: %w", rec.ID, err)
	}
	return nil
}

// DeleteBuild удаляет билд.
func (r *BuildRepository) DeleteBuild(ctx context.Context, id model.ContentID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM builds WHERE content_id = $1`, string(id)); err != nil {
		return fmt.Errorf("deleting build %s: %w", id, err)
	}
	return nil
}
