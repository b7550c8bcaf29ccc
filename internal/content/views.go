package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/ttmgo/internal/model"
	"github.com/udisondev/ttmgo/internal/resolve"
)

// TreeView is a resolved tree ready for delivery.
type TreeView struct {
	ID       model.ContentID
	RootID   model.ContentID
	Imported bool
	Tree     *model.Tree
}

// LoadoutView is a resolved loadout with its resolved tree.
type LoadoutView struct {
	ID       model.ContentID
	RootID   model.ContentID
	Imported bool
	Loadout  *model.Loadout
	Tree     TreeView
}

// BuildView is a resolved build with its loadout name and tree.
type BuildView struct {
	ID          model.ContentID
	RootID      model.ContentID
	Imported    bool
	Build       *model.Build
	LoadoutName string
	Tree        TreeView
}

// Tree returns the resolved view of a tree id.
func (s *Service) Tree(ctx context.Context, id model.ContentID) (*TreeView, error) {
	r, err := s.resolver.Tree(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TreeView{ID: id, RootID: r.Record.ID, Imported: r.WasImport, Tree: r.Content()}, nil
}

// Loadout returns the resolved view of a loadout id.
func (s *Service) Loadout(ctx context.Context, id model.ContentID) (*LoadoutView, error) {
	r, err := s.resolver.Loadout(ctx, id)
	if err != nil {
		return nil, err
	}
	tree, err := s.Tree(ctx, r.Content().TreeID)
	if err != nil {
		return nil, fmt.Errorf("tree of loadout %s: %w", id, err)
	}
	return &LoadoutView{ID: id, RootID: r.Record.ID, Imported: r.WasImport, Loadout: r.Content(), Tree: *tree}, nil
}

// Build returns the resolved view of a build id.
func (s *Service) Build(ctx context.Context, id model.ContentID) (*BuildView, error) {
	r, err := s.resolver.Build(ctx, id)
	if err != nil {
		return nil, err
	}
	v := &BuildView{
		ID:          id,
		RootID:      r.Build.Record.ID,
		Imported:    r.Build.WasImport,
		Build:       r.Build.Content(),
		LoadoutName: NoLoadout,
		Tree: TreeView{
			ID:       r.Build.Content().TreeID,
			RootID:   r.Tree.Record.ID,
			Imported: r.Tree.WasImport,
			Tree:     r.Tree.Content(),
		},
	}
	if r.Loadout != nil {
		v.LoadoutName = r.Loadout.Content().Name
		v.Tree.ID = r.Loadout.Content().TreeID
	}
	return v, nil
}

// WorkspaceEntry summarizes one workspace item.
type WorkspaceEntry struct {
	Item        model.WorkspaceItem
	Name        string
	Imported    bool
	TreeName    string
	LoadoutName string
	// Err is set when the item no longer resolves, for example after its
	// import source was deleted.
	Err error
}

// Workspace resolves every item of the user's workspace. Items that fail to
// resolve are reported through WorkspaceEntry.Err instead of failing the
// whole listing; store errors still abort.
func (s *Service) Workspace(ctx context.Context, user string) ([]WorkspaceEntry, error) {
	items, err := s.store.ListWorkspace(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("listing workspace of %q: %w", user, err)
	}

	entries := make([]WorkspaceEntry, 0, len(items))
	for _, it := range items {
		e := WorkspaceEntry{Item: it}
		switch it.Type {
		case model.ContentTree:
			var v *TreeView
			if v, e.Err = s.Tree(ctx, it.ID); e.Err == nil {
				e.Name, e.Imported, e.TreeName = v.Tree.Name, v.Imported, v.Tree.Name
			}
		case model.ContentLoadout:
			var v *LoadoutView
			if v, e.Err = s.Loadout(ctx, it.ID); e.Err == nil {
				e.Name, e.Imported = v.Loadout.Name, v.Imported
				e.TreeName, e.LoadoutName = v.Tree.Tree.Name, v.Loadout.Name
			}
		case model.ContentBuild:
			var v *BuildView
			if v, e.Err = s.Build(ctx, it.ID); e.Err == nil {
				e.Name, e.Imported = v.Build.Name, v.Imported
				e.TreeName, e.LoadoutName = v.Tree.Tree.Name, v.LoadoutName
			}
		default:
			e.Err = fmt.Errorf("%w: %q", ErrUnknownType, it.Type)
		}

		if e.Err != nil {
			var re *resolve.Error
			if !errors.As(e.Err, &re) && !errors.Is(e.Err, ErrUnknownType) {
				return nil, fmt.Errorf("resolving workspace item %s: %w", it.ID, e.Err)
			}
			slog.Warn("workspace item does not resolve", "user", user, "type", it.Type, "id", it.ID, "err", e.Err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
