// Package resolve walks import chains of trees, loadouts and builds to the
// first materialized record.
//
// A record is either materialized or a stub pointing at the record it was
// imported from. Resolution fetches records one by one until it reaches
// content. The walk is bounded by a maximum depth and refuses to visit a
// record twice.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/udisondev/ttmgo/internal/model"
)

// DefaultMaxDepth bounds the number of stub hops when none is configured.
const DefaultMaxDepth = 64

// Source is the read side of the content store. Every getter returns a
// materialized record, a stub, or nil with a nil error when the id does not
// exist.
type Source interface {
	GetTree(ctx context.Context, id model.ContentID) (*model.Record[model.Tree], error)
	GetLoadout(ctx context.Context, id model.ContentID) (*model.Record[model.Loadout], error)
	GetBuild(ctx context.Context, id model.ContentID) (*model.Record[model.Build], error)
}

// Resolved is the materialized root of a chain.
type Resolved[T any] struct {
	Record *model.Record[T]
	// WasImport is true when at least one stub was followed.
	WasImport bool
	// Hops is the number of stubs followed.
	Hops int
}

// Content returns the root content.
func (r *Resolved[T]) Content() *T { return r.Record.Content }

// ResolvedBuild is a build together with the loadout and tree it belongs to.
type ResolvedBuild struct {
	Build Resolved[model.Build]
	// LoadoutRef is the loadout reference the build chain yielded, before
	// that loadout's own chain was walked.
	LoadoutRef model.ContentID
	// Loadout is nil when no hop of the build chain references a loadout.
	Loadout *Resolved[model.Loadout]
	Tree    Resolved[model.Tree]
}

// Resolver follows import chains through a Source.
// It is safe for concurrent use if the Source is.
type Resolver struct {
	src      Source
	maxDepth int
}

// New creates a Resolver. A maxDepth of zero or less selects DefaultMaxDepth.
func New(src Source, maxDepth int) *Resolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Resolver{src: src, maxDepth: maxDepth}
}

// MaxDepth returns the configured hop limit.
func (r *Resolver) MaxDepth() int { return r.maxDepth }

// Tree resolves a tree id.
func (r *Resolver) Tree(ctx context.Context, id model.ContentID) (*Resolved[model.Tree], error) {
	return walk(ctx, r.maxDepth, model.ContentTree, id, r.src.GetTree, nil)
}

// Loadout resolves a loadout id.
func (r *Resolver) Loadout(ctx context.Context, id model.ContentID) (*Resolved[model.Loadout], error) {
	return walk(ctx, r.maxDepth, model.ContentLoadout, id, r.src.GetLoadout, nil)
}

// Build resolves a build id together with its loadout and tree.
//
// The loadout is the first loadout reference met while walking from the
// requested build towards its root, so a build keeps the loadout it was
// filed under even when its import source sits in another one. When a
// loadout exists its tree is used, otherwise the root build's own tree.
func (r *Resolver) Build(ctx context.Context, id model.ContentID) (*ResolvedBuild, error) {
	var loadoutRef model.ContentID
	build, err := walk(ctx, r.maxDepth, model.ContentBuild, id, r.src.GetBuild, func(rec *model.Record[model.Build]) {
		if loadoutRef != "" {
			return
		}
		loadoutRef = rec.Loadout
		if loadoutRef == "" && rec.Content != nil {
			loadoutRef = rec.Content.LoadoutID
		}
	})
	if err != nil {
		return nil, err
	}

	out := &ResolvedBuild{Build: *build, LoadoutRef: loadoutRef}
	treeID := build.Content().TreeID

	if loadoutRef != "" {
		loadout, err := r.Loadout(ctx, loadoutRef)
		if err != nil {
			return nil, fmt.Errorf("loadout of build %s: %w", id, err)
		}
		out.Loadout = loadout
		treeID = loadout.Content().TreeID
	}

	tree, err := r.Tree(ctx, treeID)
	if err != nil {
		return nil, fmt.Errorf("tree of build %s: %w", id, err)
	}
	out.Tree = *tree
	return out, nil
}

type fetchFunc[T any] func(ctx context.Context, id model.ContentID) (*model.Record[T], error)

// walk fetches id and follows import references until it reaches content.
// visit sees every fetched record, leaf first.
func walk[T any](
	ctx context.Context,
	maxDepth int,
	typ model.ContentType,
	id model.ContentID,
	fetch fetchFunc[T],
	visit func(*model.Record[T]),
) (*Resolved[T], error) {
	visited := make(map[model.ContentID]struct{})
	current := id

	for hops := 0; ; hops++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if hops > maxDepth {
			return nil, newError(ErrCycleOrDepthExceeded, typ, current,
				fmt.Errorf("more than %d hops from %s", maxDepth, id))
		}
		if _, seen := visited[current]; seen {
			return nil, newError(ErrCycleOrDepthExceeded, typ, current,
				fmt.Errorf("revisited after %d hops from %s", hops, id))
		}
		visited[current] = struct{}{}

		rec, err := fetch(ctx, current)
		if err != nil {
			// Stores reject rows holding neither content nor an import reference.
			if errors.Is(err, ErrMalformedReference) {
				return nil, newError(ErrMalformedReference, typ, current, err)
			}
			return nil, fmt.Errorf("fetching %s %s: %w", typ, current, err)
		}
		if rec == nil {
			if hops == 0 {
				return nil, newError(ErrNotFound, typ, current, nil)
			}
			return nil, newError(ErrUnresolvableChain, typ, current,
				fmt.Errorf("referenced after %d hops from %s", hops, id))
		}
		if visit != nil {
			visit(rec)
		}

		switch rec.Kind() {
		case model.KindMaterialized:
			return &Resolved[T]{Record: rec, WasImport: hops > 0, Hops: hops}, nil
		case model.KindStub:
			current = rec.ImportID
		default:
			return nil, newError(ErrMalformedReference, typ, current, nil)
		}
	}
}
