package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/udisondev/ttmgo/internal/model"
)

// MemoryStore is an in-memory content store for tests. It counts fetches per
// content type and can be told to fail.
type MemoryStore struct {
	mu        sync.Mutex
	trees     map[model.ContentID]*model.Record[model.Tree]
	loadouts  map[model.ContentID]*model.Record[model.Loadout]
	builds    map[model.ContentID]*model.Record[model.Build]
	workspace []model.WorkspaceItem
	fetches   map[model.ContentType]int

	// FailWith, when set, is returned by every call.
	FailWith error
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trees:    make(map[model.ContentID]*model.Record[model.Tree]),
		loadouts: make(map[model.ContentID]*model.Record[model.Loadout]),
		builds:   make(map[model.ContentID]*model.Record[model.Build]),
		fetches:  make(map[model.ContentType]int),
	}
}

// Fetches returns how many Get calls were made for typ.
func (s *MemoryStore) Fetches(typ model.ContentType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[typ]
}

// ResetFetches zeroes the fetch counters.
func (s *MemoryStore) ResetFetches() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.fetches)
}

func copyRecord[T any](r *model.Record[T], clone func(*T) *T) *model.Record[T] {
	if r == nil {
		return nil
	}
	c := *r
	if r.Content != nil {
		c.Content = clone(r.Content)
	}
	return &c
}

func get[T any](s *MemoryStore, typ model.ContentType, m map[model.ContentID]*model.Record[T], id model.ContentID, clone func(*T) *T) (*model.Record[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches[typ]++
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	return copyRecord(m[id], clone), nil
}

func put[T any](s *MemoryStore, typ model.ContentType, m map[model.ContentID]*model.Record[T], r *model.Record[T], clone func(*T) *T, replace bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, exists := m[r.ID]; exists && !replace {
		return fmt.Errorf("%s %s already exists", typ, r.ID)
	}
	m[r.ID] = copyRecord(r, clone)
	return nil
}

func del[T any](s *MemoryStore, m map[model.ContentID]*model.Record[T], id model.ContentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	delete(m, id)
	return nil
}

func (s *MemoryStore) GetTree(_ context.Context, id model.ContentID) (*model.Record[model.Tree], error) {
	return get(s, model.ContentTree, s.trees, id, (*model.Tree).Clone)
}

func (s *MemoryStore) GetLoadout(_ context.Context, id model.ContentID) (*model.Record[model.Loadout], error) {
	return get(s, model.ContentLoadout, s.loadouts, id, (*model.Loadout).Clone)
}

func (s *MemoryStore) GetBuild(_ context.Context, id model.ContentID) (*model.Record[model.Build], error) {
	return get(s, model.ContentBuild, s.builds, id, (*model.Build).Clone)
}

func (s *MemoryStore) CreateTree(_ context.Context, r *model.Record[model.Tree]) error {
	return put(s, model.ContentTree, s.trees, r, (*model.Tree).Clone, false)
}

func (s *MemoryStore) CreateLoadout(_ context.Context, r *model.Record[model.Loadout]) error {
	return put(s, model.ContentLoadout, s.loadouts, r, (*model.Loadout).Clone, false)
}

func (s *MemoryStore) CreateBuild(_ context.Context, r *model.Record[model.Build]) error {
	return put(s, model.ContentBuild, s.builds, r, (*model.Build).Clone, false)
}

func (s *MemoryStore) UpsertPresetTree(_ context.Context, r *model.Record[model.Tree]) error {
	return put(s, model.ContentTree, s.trees, r, (*model.Tree).Clone, true)
}

func (s *MemoryStore) DeleteTree(_ context.Context, id model.ContentID) error {
	return del(s, s.trees, id)
}

func (s *MemoryStore) DeleteLoadout(_ context.Context, id model.ContentID) error {
	return del(s, s.loadouts, id)
}

func (s *MemoryStore) DeleteBuild(_ context.Context, id model.ContentID) error {
	return del(s, s.builds, id)
}

func (s *MemoryStore) AddWorkspaceItem(_ context.Context, item model.WorkspaceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.workspace = append(s.workspace, item)
	return nil
}

func (s *MemoryStore) ListWorkspace(_ context.Context, user string) ([]model.WorkspaceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var out []model.WorkspaceItem
	for _, it := range s.workspace {
		if it.User == user {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *MemoryStore) RemoveWorkspaceItem(_ context.Context, user string, id model.ContentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.workspace = slices.DeleteFunc(s.workspace, func(it model.WorkspaceItem) bool {
		return it.User == user && it.ID == id
	})
	return nil
}
