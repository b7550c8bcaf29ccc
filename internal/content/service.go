// Package content implements import, copy and the resolved read views on top
// of a content store.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/ttmgo/internal/model"
	"github.com/udisondev/ttmgo/internal/resolve"
	"github.com/udisondev/ttmgo/internal/store"
)

// NoLoadout is the loadout name shown for builds without a loadout.
const NoLoadout = "No loadout"

// ErrUnknownType is returned for content types other than tree, loadout and build.
var ErrUnknownType = errors.New("unknown content type")

// Service serves content operations.
type Service struct {
	store    store.Store
	resolver *resolve.Resolver
	newID    func() model.ContentID
	now      func() time.Time
}

// NewService creates a Service. maxDepth bounds import chains (0 = default).
func NewService(s store.Store, maxDepth int) *Service {
	return &Service{
		store:    s,
		resolver: resolve.New(s, maxDepth),
		newID:    func() model.ContentID { return model.ContentID(uuid.NewString()) },
		now:      time.Now,
	}
}

// Resolver exposes the resolver the service uses.
func (s *Service) Resolver() *resolve.Resolver { return s.resolver }

// Import creates a stub of sourceID under a fresh id and files it in the
// user's workspace. No content is copied.
func (s *Service) Import(ctx context.Context, user string, typ model.ContentType, sourceID model.ContentID) (model.ContentID, error) {
	exists, err := s.exists(ctx, typ, sourceID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", &resolve.Error{Kind: resolve.ErrNotFound, Type: typ, ContentID: sourceID}
	}

	id := s.newID()
	switch typ {
	case model.ContentTree:
		err = s.store.CreateTree(ctx, model.Stub[model.Tree](id, sourceID))
	case model.ContentLoadout:
		err = s.store.CreateLoadout(ctx, model.Stub[model.Loadout](id, sourceID))
	case model.ContentBuild:
		err = s.store.CreateBuild(ctx, model.Stub[model.Build](id, sourceID))
	}
	if err != nil {
		return "", fmt.Errorf("importing %s %s: %w", typ, sourceID, err)
	}

	if err := s.addToWorkspace(ctx, user, typ, id); err != nil {
		return "", err
	}
	slog.Info("imported content", "user", user, "type", typ, "source", sourceID, "id", id)
	return id, nil
}

// Copy resolves id and stores a materialized snapshot of its root under a
// fresh id. A copied build keeps the loadout it was filed under.
func (s *Service) Copy(ctx context.Context, user string, typ model.ContentType, id model.ContentID) (model.ContentID, error) {
	newID := s.newID()

	switch typ {
	case model.ContentTree:
		root, err := s.resolver.Tree(ctx, id)
		if err != nil {
			return "", err
		}
		tree := root.Content().Clone()
		tree.Preset = false
		if err := s.store.CreateTree(ctx, model.Materialized(newID, tree)); err != nil {
			return "", fmt.Errorf("copying tree %s: %w", id, err)
		}

	case model.ContentLoadout:
		root, err := s.resolver.Loadout(ctx, id)
		if err != nil {
			return "", err
		}
		if err := s.store.CreateLoadout(ctx, model.Materialized(newID, root.Content().Clone())); err != nil {
			return "", fmt.Errorf("copying loadout %s: %w", id, err)
		}

	case model.ContentBuild:
		root, err := s.resolver.Build(ctx, id)
		if err != nil {
			return "", err
		}
		build := root.Build.Content().Clone()
		build.LoadoutID = root.LoadoutRef
		rec := model.Materialized(newID, build)
		rec.Loadout = root.LoadoutRef
		if err := s.store.CreateBuild(ctx, rec); err != nil {
			return "", fmt.Errorf("copying build %s: %w", id, err)
		}

	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}

	if err := s.addToWorkspace(ctx, user, typ, newID); err != nil {
		return "", err
	}
	slog.Info("copied content", "user", user, "type", typ, "source", id, "id", newID)
	return newID, nil
}

// Delete removes a record and drops it from the user's workspace. Stubs that
// import it are left dangling and fail to resolve afterwards.
func (s *Service) Delete(ctx context.Context, user string, typ model.ContentType, id model.ContentID) error {
	var err error
	switch typ {
	case model.ContentTree:
		err = s.store.DeleteTree(ctx, id)
	case model.ContentLoadout:
		err = s.store.DeleteLoadout(ctx, id)
	case model.ContentBuild:
		err = s.store.DeleteBuild(ctx, id)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", typ, id, err)
	}
	if err := s.store.RemoveWorkspaceItem(ctx, user, id); err != nil {
		return fmt.Errorf("deleting %s %s: %w", typ, id, err)
	}
	return nil
}

func (s *Service) exists(ctx context.Context, typ model.ContentType, id model.ContentID) (bool, error) {
	var (
		found bool
		err   error
	)
	switch typ {
	case model.ContentTree:
		var r *model.Record[model.Tree]
		r, err = s.store.GetTree(ctx, id)
		found = r != nil
	case model.ContentLoadout:
		var r *model.Record[model.Loadout]
		r, err = s.store.GetLoadout(ctx, id)
		found = r != nil
	case model.ContentBuild:
		var r *model.Record[model.Build]
		r, err = s.store.GetBuild(ctx, id)
		found = r != nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	if err != nil {
		return false, fmt.Errorf("looking up %s %s: %w", typ, id, err)
	}
	return found, nil
}

func (s *Service) addToWorkspace(ctx context.Context, user string, typ model.ContentType, id model.ContentID) error {
	if user == "" {
		return nil
	}
	item := model.WorkspaceItem{User: user, Type: typ, ID: id, AddedAt: s.now()}
	if err := s.store.AddWorkspaceItem(ctx, item); err != nil {
		return fmt.Errorf("adding %s %s to workspace: %w", typ, id, err)
	}
	return nil
}
