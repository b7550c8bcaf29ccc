// Package litestore is the content store on an embedded SQLite file, used by
// the CLI when no PostgreSQL server is configured.
package litestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/udisondev/ttmgo/internal/db/migrations"
	"github.com/udisondev/ttmgo/internal/model"
	"github.com/udisondev/ttmgo/internal/store"
)

// Store implements store.Store on SQLite.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) the database file at path and applies migrations.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// one writer; also keeps a ":memory:" database alive across calls
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring sqlite: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Migrate applies the embedded migrations with the sqlite3 dialect.
func Migrate(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	for _, r := range results {
		slog.Debug("applied migration", "source", r.Source.Path, "duration", r.Duration)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetTree(ctx context.Context, id model.ContentID) (*model.Record[model.Tree], error) {
	var row store.TreeRow
	err := s.db.QueryRowContext(ctx,
		`SELECT content_id, import_id, name, description, preset FROM trees WHERE content_id = ?`, string(id),
	).Scan(&row.ID, &row.ImportID, &row.Name, &row.Description, &row.Preset)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying tree %s: %w", id, err)
	}
	if row.Name == nil {
		return row.Record(nil, nil)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tree_id, half, talent_index, node_id, names, descriptions, talent_type,
		       grid_row, grid_column, max_points, required_points, prefilled,
		       parent_indices, child_indices, icon_names
		FROM talents WHERE tree_id = ? ORDER BY half, talent_index`, row.ID)
	if err != nil {
		return nil, fmt.Errorf("querying talents of tree %s: %w", id, err)
	}
	defer rows.Close()

	var talents []store.TalentRow
	for rows.Next() {
		var t store.TalentRow
		if err := rows.Scan(&t.TreeID, &t.Half, &t.Index, &t.NodeID, &t.Names, &t.Descriptions, &t.Type,
			&t.Row, &t.Column, &t.MaxPoints, &t.RequiredPoints, &t.Prefilled,
			&t.ParentIndices, &t.ChildIndices, &t.IconNames); err != nil {
			return nil, fmt.Errorf("scanning talent row: %w", err)
		}
		talents = append(talents, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating talent rows: %w", err)
	}

	class, spec, err := store.SplitTalents(talents)
	if err != nil {
		return nil, err
	}
	return row.Record(class, spec)
}

func (s *Store) CreateTree(ctx context.Context, r *model.Record[model.Tree]) error {
	return s.saveTree(ctx, r, false)
}

func (s *Store) UpsertPresetTree(ctx context.Context, r *model.Record[model.Tree]) error {
	return s.saveTree(ctx, r, true)
}

func (s *Store) saveTree(ctx context.Context, r *model.Record[model.Tree], replace bool) error {
	row, err := store.TreeRowFrom(r)
	if err != nil {
		return err
	}
	var talents []store.TalentRow
	if r.Content != nil {
		if talents, err = store.TalentRowsFrom(r.ID, r.Content); err != nil {
			return err
		}
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO trees (content_id, import_id, name, description, preset) VALUES (?, ?, ?, ?, ?)`
		if replace {
			query += ` ON CONFLICT (content_id) DO UPDATE SET
				import_id = excluded.import_id, name = excluded.name,
				description = excluded.description, preset = excluded.preset`
		}
		if _, err := tx.ExecContext(ctx, query, row.ID, row.ImportID, row.Name, row.Description, row.Preset); err != nil {
			return fmt.Errorf("inserting tree %s: %w", r.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM talents WHERE tree_id = ?`, row.ID); err != nil {
			return fmt.Errorf("deleting old talents of tree %s: %w", r.ID, err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO talents (tree_id, half, talent_index, node_id, names, descriptions, talent_type,
				grid_row, grid_column, max_points, required_points, prefilled,
				parent_indices, child_indices, icon_names)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing talent insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range talents {
			if _, err := stmt.ExecContext(ctx, t.TreeID, t.Half, t.Index, t.NodeID, t.Names, t.Descriptions, t.Type,
				t.Row, t.Column, t.MaxPoints, t.RequiredPoints, t.Prefilled,
				t.ParentIndices, t.ChildIndices, t.IconNames); err != nil {
				return fmt.Errorf("inserting talent %d of tree %s: %w", t.Index, r.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) DeleteTree(ctx context.Context, id model.ContentID) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM talents WHERE tree_id = ?`, string(id)); err != nil {
			return fmt.Errorf("deleting talents of tree %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM trees WHERE content_id = ?`, string(id)); err != nil {
			return fmt.Errorf("deleting tree %s: %w", id, err)
		}
		return nil
	})
}

func (s *Store) GetLoadout(ctx context.Context, id model.ContentID) (*model.Record[model.Loadout], error) {
	var row store.LoadoutRow
	err := s.db.QueryRowContext(ctx,
		`SELECT content_id, import_id, name, description, tree_id FROM loadouts WHERE content_id = ?`, string(id),
	).Scan(&row.ID, &row.ImportID, &row.Name, &row.Description, &row.TreeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying loadout %s: %w", id, err)
	}
	return row.Record()
}

func (s *Store) CreateLoadout(ctx context.Context, r *model.Record[model.Loadout]) error {
	row, err := store.LoadoutRowFrom(r)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO loadouts (content_id, import_id, name, description, tree_id) VALUES (?, ?, ?, ?, ?)`,
		row.ID, row.ImportID, row.Name, row.Description, row.TreeID,
	); err != nil {
		return fmt.Errorf("inserting loadout %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) DeleteLoadout(ctx context.Context, id model.ContentID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM loadouts WHERE content_id = ?`, string(id)); err != nil {
		return fmt.Errorf("deleting loadout %s: %w", id, err)
	}
	return nil
}

func (s *Store) GetBuild(ctx context.Context, id model.ContentID) (*model.Record[model.Build], error) {
	var row store.BuildRow
	err := s.db.QueryRowContext(ctx,
		`SELECT content_id, import_id, name, tree_id, loadout_id, level_cap, use_level_cap, assigned_skills
		 FROM builds WHERE content_id = ?`, string(id),
	).Scan(&row.ID, &row.ImportID, &row.Name, &row.TreeID, &row.LoadoutID,
		&row.LevelCap, &row.UseLevelCap, &row.AssignedSkills)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying build %s: %w", id, err)
	}
	return row.Record()
}

func (s *Store) CreateBuild(ctx context.Context, r *model.Record[model.Build]) error {
	row, err := store.BuildRowFrom(r)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (content_id, import_id, name, tree_id, loadout_id, level_cap, use_level_cap, assigned_skills)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.ImportID, row.Name, row.TreeID, row.LoadoutID, row.LevelCap, row.UseLevelCap, row.AssignedSkills,
	); err != nil {
		return fmt.Errorf("inserting build %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) DeleteBuild(ctx context.Context, id model.ContentID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM builds WHERE content_id = ?`, string(id)); err != nil {
		return fmt.Errorf("deleting build %s: %w", id, err)
	}
	return nil
}

func (s *Store) AddWorkspaceItem(ctx context.Context, item model.WorkspaceItem) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO workspace_items (user_name, content_type, content_id, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_name, content_id) DO NOTHING`,
		item.User, string(item.Type), string(item.ID), item.AddedAt.UTC(),
	); err != nil {
		return fmt.Errorf("adding %s %s to workspace of %q: %w", item.Type, item.ID, item.User, err)
	}
	return nil
}

func (s *Store) ListWorkspace(ctx context.Context, user string) ([]model.WorkspaceItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_name, content_type, content_id, added_at
		FROM workspace_items WHERE user_name = ? ORDER BY added_at, content_id`, user)
	if err != nil {
		return nil, fmt.Errorf("querying workspace of %q: %w", user, err)
	}
	defer rows.Close()

	var items []model.WorkspaceItem
	for rows.Next() {
		var it model.WorkspaceItem
		var typ, id string
		if err := rows.Scan(&it.User, &typ, &id, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning workspace row: %w", err)
		}
		it.Type, it.ID = model.ContentType(typ), model.ContentID(id)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating workspace rows: %w", err)
	}
	return items, nil
}

func (s *Store) RemoveWorkspaceItem(ctx context.Context, user string, id model.ContentID) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM workspace_items WHERE user_name = ? AND content_id = ?`, user, string(id),
	); err != nil {
		return fmt.Errorf("removing %s from workspace of %q: %w", id, user, err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
