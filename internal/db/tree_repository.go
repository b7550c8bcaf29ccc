package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/ttmgo/internal/model"
	"github.com/udisondev/ttmgo/internal/store"
)

// TreeRepository управляет деревьями талантов в БД.
type TreeRepository struct {
	db *pgxpool.Pool
}

// NewTreeRepository создаёт новый TreeRepository.
func NewTreeRepository(db *pgxpool.Pool) *TreeRepository {
	return &TreeRepository{db: db}
}

// GetTree загружает дерево вместе с талантами.
// Возвращает nil, nil если дерево не найдено.
func (r *TreeRepository) GetTree(ctx context.Context, id model.ContentID) (*model.Record[model.Tree], error) {
	var row store.TreeRow
	err := r.db.QueryRow(ctx,
		`SELECT content_id, import_id, name, description, preset
		 FROM trees WHERE content_id = $1`, string(id),
	).Scan(&row.ID, &row.ImportID, &row.Name, &row.Description, &row.Preset)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying tree %s: %w", id, err)
	}

	// У заглушки нет талантов
	if row.Name == nil {
		return row.Record(nil, nil)
	}

	talents, err := r.loadTalents(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	class, spec, err := store.SplitTalents(talents)
	if err != nil {
		return nil, err
	}
	return row.Record(class, spec)
}

func (r *TreeRepository) loadTalents(ctx context.Context, treeID string) ([]store.TalentRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT tree_id, half, talent_index, node_id, names, descriptions, talent_type,
		       grid_row, grid_column, max_points, required_points, prefilled,
		       parent_indices, child_indices, icon_names
		FROM talents
		WHERE tree_id = $1
		ORDER BY half, talent_index
	`, treeID)
	if err != nil {
		return nil, fmt.Errorf("querying talents of tree %s: %w", treeID, err)
	}
	defer rows.Close()

	out := make([]store.TalentRow, 0, 64)
	for rows.Next() {
		var t store.TalentRow
		if err := rows.Scan(&t.TreeID, &t.Half, &t.Index, &t.NodeID, &t.Names, &t.Descriptions, &t.Type,
			&t.Row, &t.Column, &t.MaxPoints, &t.RequiredPoints, &t.Prefilled,
			&t.ParentIndices, &t.ChildIndices, &t.IconNames); err != nil {
			return nil, fmt.Errorf("scanning talent row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating talent rows: %w", err)
	}
	return out, nil
}

// CreateTree вставляет новое дерево (материализованное или заглушку).
func (r *TreeRepository) CreateTree(ctx context.Context, rec *model.Record[model.Tree]) error {
	return r.save(ctx, rec, false)
}

// UpsertPresetTree создаёт или полностью перезаписывает дерево пресета.
func (r *TreeRepository) UpsertPresetTree(ctx context.Context, rec *model.Record[model.Tree]) error {
	return r.save(ctx, rec, true)
}

func (r *TreeRepository) save(ctx context.Context, rec *model.Record[model.Tree], replace bool) error {
	row, err := store.TreeRowFrom(rec)
	if err != nil {
		return err
	}
	var talents []store.TalentRow
	if rec.Content != nil {
		if talents, err = store.TalentRowsFrom(rec.ID, rec.Content); err != nil {
			return err
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	query := `INSERT INTO trees (content_id, import_id, name, description, preset)
		VALUES ($1, $2, $3, $4, $5)`
	if replace {
		query += ` ON CONFLICT (content_id) DO UPDATE SET
			import_id = EXCLUDED.import_id, name = EXCLUDED.name,
			description = EXCLUDED.description, preset = EXCLUDED.preset`
	}
	if _, err := tx.Exec(ctx, query, row.ID, row.ImportID, row.Name, row.Description, row.Preset); err != nil {
		return fmt.Errorf("inserting tree %s: %w", rec.ID, err)
	}

	if replace {
		if _, err := tx.Exec(ctx, `DELETE FROM talents WHERE tree_id = $1`, row.ID); err != nil {
			return fmt.Errorf("deleting old talents of tree %s: %w", rec.ID, err)
		}
	}
	if err := copyTalents(ctx, tx, talents); err != nil {
		return fmt.Errorf("inserting talents of tree %s: %w", rec.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing tree %s: %w", rec.ID, err)
	}

	slog.Debug("saved tree", "id", rec.ID, "kind", rec.Kind(), "talents", len(talents))
	return nil
}

// copyTalents вставляет таланты через COPY.
func copyTalents(ctx context.Context, tx pgx.Tx, talents []store.TalentRow) error {
	if len(talents) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(talents))
	for _, t := range talents {
		rows = append(rows, []any{
			t.TreeID, int16(t.Half), int32(t.Index), int32(t.NodeID), t.Names, t.Descriptions, int16(t.Type),
			int32(t.Row), int32(t.Column), int32(t.MaxPoints), int32(t.RequiredPoints), t.Prefilled,
			t.ParentIndices, t.ChildIndices, t.IconNames,
		})
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"talents"},
		[]string{
			"tree_id", "half", "talent_index", "node_id", "names", "descriptions", "talent_type",
			"grid_row", "grid_column", "max_points", "required_points", "prefilled",
			"parent_indices", "child_indices", "icon_names",
		},
		pgx.CopyFromRows(rows),
	)
	return err
}

// DeleteTree удаляет дерево и его таланты. Заглушки, ссылающиеся на него,
// остаются висячими.
func (r *TreeRepository) DeleteTree(ctx context.Context, id model.ContentID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, `DELETE FROM talents WHERE tree_id = $1`, string(id)); err != nil {
		return fmt.Errorf("deleting talents of tree %s: %w", id, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM trees WHERE content_id = $1`, string(id)); err != nil {
		return fmt.Errorf("deleting tree %s: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing tree delete %s: %w", id, err)
	}
	return nil
}
