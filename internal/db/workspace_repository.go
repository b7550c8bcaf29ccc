package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/ttmgo/internal/model"
)

// WorkspaceRepository хранит рабочие пространства пользователей.
type WorkspaceRepository struct {
	db *pgxpool.Pool
}

// NewWorkspaceRepository создаёт новый WorkspaceRepository.
func NewWorkspaceRepository(db *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// AddWorkspaceItem добавляет элемент. Повторное добавление игнорируется.
func (r *WorkspaceRepository) AddWorkspaceItem(ctx context.Context, item model.WorkspaceItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO workspace_items (user_name, content_type, content_id, added_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_name, content_id) DO NOTHING
	`, item.User, string(item.Type), string(item.ID), item.AddedAt.UTC())
	if err != nil {
		return fmt.Errorf("adding %s %s to workspace of %q: %w", item.Type, item.ID, item.User, err)
	}
	return nil
}

// ListWorkspace возвращает элементы в порядке добавления.
func (r *WorkspaceRepository) ListWorkspace(ctx context.Context, user string) ([]model.WorkspaceItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_name, content_type, content_id, added_at
		FROM workspace_items
		WHERE user_name = $1
		ORDER BY added_at, content_id
	`, user)
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

// RemoveWorkspaceItem убирает элемент из рабочего пространства.
func (r *WorkspaceRepository) RemoveWorkspaceItem(ctx context.Context, user string, id model.ContentID) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM workspace_items WHERE user_name = $1 AND content_id = $2`, user, string(id),
	); err != nil {
		return fmt.Errorf("removing %s from workspace of %q: %w", id, user, err)
	}
	return nil
}
