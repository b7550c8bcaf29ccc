package litestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/ttmgo/internal/content"
	"github.com/udisondev/ttmgo/internal/model"
	"github.com/udisondev/ttmgo/internal/resolve"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "ttm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTree() *model.Tree {
	return &model.Tree{
		Name:        "Frost Death Knight",
		Description: "preset",
		Preset:      true,
		ClassTalents: []model.Talent{{
			Index: 0, NodeID: 96200, Names: []string{"Anti-Magic Zone"}, Descriptions: []string{"Places a zone: 20%"},
			Row: 1, Column: 3, MaxPoints: 1, ChildIndices: []int{1}, IconNames: []string{"antimagicZoneDFro.png"},
		}, {
			Index: 1, NodeID: 96201, Names: []string{"Blinding Sleet", "Asphyxiate"}, Descriptions: []string{"a", "b"},
			Type: model.TalentSwitch, Row: 2, Column: 3, MaxPoints: 1, ParentIndices: []int{0},
			IconNames: []string{"blindingSleetDFro.png", "asphyxiateDFro.png"},
		}},
	}
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ttm.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	rec := model.Materialized(model.ContentID("t"), sampleTree())
	require.NoError(t, s.CreateTree(ctx, rec))
	require.NoError(t, s.Close())

	// migrations are idempotent, data survives
	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetTree(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestStore_InMemory(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.CreateLoadout(ctx, model.Materialized(model.ContentID("l"), &model.Loadout{TreeID: "t", Name: "PvP"})))
	got, err := s.GetLoadout(ctx, "l")
	require.NoError(t, err)
	assert.Equal(t, "PvP", got.Content.Name)
}

func TestStore_GetMissing(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	tree, err := s.GetTree(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, tree)
	loadout, err := s.GetLoadout(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, loadout)
	build, err := s.GetBuild(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, build)
}

func TestStore_UpsertPresetTree(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertPresetTree(ctx, model.Materialized(model.ContentID("p"), sampleTree())))
	next := sampleTree()
	next.Name = "Renamed"
	next.ClassTalents = next.ClassTalents[:1]
	next.ClassTalents[0].ChildIndices = nil
	require.NoError(t, s.UpsertPresetTree(ctx, model.Materialized(model.ContentID("p"), next)))

	got, err := s.GetTree(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, next, got.Content)

	assert.Error(t, s.CreateTree(ctx, model.Materialized(model.ContentID("p"), next)))
}

func TestStore_ResolveBuildChain(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTree(ctx, model.Materialized(model.ContentID("t"), sampleTree())))
	require.NoError(t, s.CreateLoadout(ctx, model.Materialized(model.ContentID("l"), &model.Loadout{TreeID: "t", Name: "Raid"})))
	require.NoError(t, s.CreateLoadout(ctx, model.Stub[model.Loadout]("l2", "l")))
	require.NoError(t, s.CreateBuild(ctx, model.Materialized(model.ContentID("b"), &model.Build{
		TreeID: "t", Name: "Breath", UseLevelCap: true, LevelCap: 70, AssignedSkills: map[int]int{96200: 1},
	})))
	stub := model.Stub[model.Build]("b2", "b")
	stub.Loadout = "l2"
	require.NoError(t, s.CreateBuild(ctx, stub))

	got, err := resolve.New(s, 0).Build(ctx, "b2")
	require.NoError(t, err)
	assert.True(t, got.Build.WasImport)
	assert.True(t, got.Build.Content().UseLevelCap)
	require.NotNil(t, got.Loadout)
	assert.True(t, got.Loadout.WasImport)
	assert.Equal(t, "Frost Death Knight", got.Tree.Content().Name)

	require.NoError(t, s.DeleteTree(ctx, "t"))
	_, err = resolve.New(s, 0).Build(ctx, "b2")
	assert.ErrorIs(t, err, resolve.ErrNotFound, "loadout points at a deleted tree")
}

func TestStore_Workspace(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.AddWorkspaceItem(ctx, model.WorkspaceItem{User: "u", Type: model.ContentBuild, ID: "b", AddedAt: now.Add(time.Hour)}))
	require.NoError(t, s.AddWorkspaceItem(ctx, model.WorkspaceItem{User: "u", Type: model.ContentTree, ID: "t", AddedAt: now}))
	require.NoError(t, s.AddWorkspaceItem(ctx, model.WorkspaceItem{User: "u", Type: model.ContentTree, ID: "t", AddedAt: now}))

	items, err := s.ListWorkspace(ctx, "u")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, model.ContentID("t"), items[0].ID)
	assert.Equal(t, model.ContentTree, items[0].Type)
	assert.True(t, now.Equal(items[0].AddedAt))

	require.NoError(t, s.RemoveWorkspaceItem(ctx, "u", "b"))
	items, err = s.ListWorkspace(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestStore_MalformedRow(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `INSERT INTO trees (content_id) VALUES ('broken')`)
	require.NoError(t, err)
	require.NoError(t, s.CreateTree(ctx, model.Stub[model.Tree]("leaf", "broken")))
	require.NoError(t, s.CreateTree(ctx, model.Materialized("good", sampleTree())))

	_, err = resolve.New(s, 0).Tree(ctx, "leaf")
	require.ErrorIs(t, err, resolve.ErrMalformedReference)
	var re *resolve.Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, model.ContentID("broken"), re.ContentID)

	svc := content.NewService(s, 0)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.AddWorkspaceItem(ctx, model.WorkspaceItem{User: "u", Type: model.ContentTree, ID: "good", AddedAt: now}))
	require.NoError(t, s.AddWorkspaceItem(ctx, model.WorkspaceItem{User: "u", Type: model.ContentTree, ID: "leaf", AddedAt: now.Add(time.Minute)}))

	entries, err := svc.Workspace(ctx, "u")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NoError(t, entries[0].Err)
	assert.Equal(t, "Frost Death Knight", entries[0].Name)
	assert.ErrorIs(t, entries[1].Err, resolve.ErrMalformedReference)
}
