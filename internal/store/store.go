// Package store defines the content store contract and the row mapping
// shared by the SQL backends.
package store

import (
	"context"

	"github.com/udisondev/ttmgo/internal/model"
	"github.com/udisondev/ttmgo/internal/resolve"
)

// Store is the full content store. Get methods follow the resolve.Source
// contract: nil, nil means the id does not exist.
type Store interface {
	resolve.Source

	CreateTree(ctx context.Context, r *model.Record[model.Tree]) error
	CreateLoadout(ctx context.Context, r *model.Record[model.Loadout]) error
	CreateBuild(ctx context.Context, r *model.Record[model.Build]) error

	// UpsertPresetTree creates or replaces a materialized tree under r.ID.
	UpsertPresetTree(ctx context.Context, r *model.Record[model.Tree]) error

	// Delete methods do not touch stubs importing the deleted record.
	DeleteTree(ctx context.Context, id model.ContentID) error
	DeleteLoadout(ctx context.Context, id model.ContentID) error
	DeleteBuild(ctx context.Context, id model.ContentID) error

	AddWorkspaceItem(ctx context.Context, item model.WorkspaceItem) error
	ListWorkspace(ctx context.Context, user string) ([]model.WorkspaceItem, error)
	RemoveWorkspaceItem(ctx context.Context, user string, id model.ContentID) error
}
