package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/ttmgo/internal/model"
	"github.com/udisondev/ttmgo/internal/resolve"
)

func presetTree(name string) *model.Tree {
	return &model.Tree{
		Name:        name,
		Description: "This is the preset for the Fire Mage.",
		Preset:      true,
		ClassTalents: []model.Talent{{
			Index: 0, NodeID: 62001, Names: []string{"Blink"}, Descriptions: []string{"Teleports: 20 yards"},
			Row: 1, Column: 5, MaxPoints: 1, Prefilled: true, ChildIndices: []int{1},
			IconNames: []string{"blinkMFir.png"},
		}, {
			Index: 1, NodeID: 62002, Names: []string{"Shimmer", "Flow"}, Descriptions: []string{"a", "b"},
			Type: model.TalentSwitch, Row: 2, Column: 5, MaxPoints: 1, RequiredPoints: 8,
			ParentIndices: []int{0}, IconNames: []string{"shimmerMFir.png", "flowMFir.png"},
		}},
		SpecTalents: []model.Talent{{
			Index: 0, NodeID: 62100, Names: []string{"Pyroblast"}, Descriptions: []string{"Rank 1", "Rank 2"},
			Type: model.TalentPassive, Row: 1, Column: 1, MaxPoints: 2,
		}},
	}
}

func TestStore_TreeRoundTrip(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()

	rec := model.Materialized(model.ContentID("tree-1"), presetTree("Fire Mage"))
	require.NoError(t, s.CreateTree(ctx, rec))
	require.NoError(t, s.CreateTree(ctx, model.Stub[model.Tree]("tree-2", "tree-1")))

	got, err := s.GetTree(ctx, "tree-1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	stub, err := s.GetTree(ctx, "tree-2")
	require.NoError(t, err)
	assert.True(t, stub.IsStub())
	assert.Equal(t, model.ContentID("tree-1"), stub.ImportID)

	missing, err := s.GetTree(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_UpsertPresetTree(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.UpsertPresetTree(ctx, model.Materialized(model.ContentID("p"), presetTree("Old"))))

	updated := presetTree("New")
	updated.SpecTalents = nil
	require.NoError(t, s.UpsertPresetTree(ctx, model.Materialized(model.ContentID("p"), updated)))

	got, err := s.GetTree(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Content.Name)
	assert.Len(t, got.Content.ClassTalents, 2)
	assert.Empty(t, got.Content.SpecTalents)

	err = s.CreateTree(ctx, model.Materialized(model.ContentID("p"), updated))
	assert.Error(t, err, "create must not overwrite")
}

func TestStore_BuildChainResolves(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.CreateTree(ctx, model.Materialized(model.ContentID("t"), presetTree("Fire Mage"))))
	require.NoError(t, s.CreateLoadout(ctx, model.Materialized(model.ContentID("l"), &model.Loadout{TreeID: "t", Name: "Raid"})))
	require.NoError(t, s.CreateBuild(ctx, model.Materialized(model.ContentID("b"), &model.Build{
		TreeID: "t", LoadoutID: "l", Name: "ST", LevelCap: 70, AssignedSkills: map[int]int{62001: 1},
	})))
	stub := model.Stub[model.Build]("b-copy", "b")
	stub.Loadout = "l"
	require.NoError(t, s.CreateBuild(ctx, stub))

	got, err := resolve.New(s, 0).Build(ctx, "b-copy")
	require.NoError(t, err)
	assert.True(t, got.Build.WasImport)
	assert.Equal(t, map[int]int{62001: 1}, got.Build.Content().AssignedSkills)
	require.NotNil(t, got.Loadout)
	assert.Equal(t, "Raid", got.Loadout.Content().Name)
	assert.Equal(t, "Fire Mage", got.Tree.Content().Name)
}

func TestStore_DeleteLeavesStubDangling(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.CreateLoadout(ctx, model.Materialized(model.ContentID("l"), &model.Loadout{TreeID: "t", Name: "Raid"})))
	require.NoError(t, s.CreateLoadout(ctx, model.Stub[model.Loadout]("l2", "l")))
	require.NoError(t, s.DeleteLoadout(ctx, "l"))

	_, err := resolve.New(s, 0).Loadout(ctx, "l2")
	assert.ErrorIs(t, err, resolve.ErrUnresolvableChain)
}

func TestStore_Workspace(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	items := []model.WorkspaceItem{
		{User: "alice", Type: model.ContentTree, ID: "t", AddedAt: now},
		{User: "alice", Type: model.ContentBuild, ID: "b", AddedAt: now.Add(time.Minute)},
		{User: "bob", Type: model.ContentTree, ID: "t", AddedAt: now},
	}
	for _, it := range items {
		require.NoError(t, s.AddWorkspaceItem(ctx, it))
	}
	require.NoError(t, s.AddWorkspaceItem(ctx, items[0]), "duplicate add is ignored")

	got, err := s.ListWorkspace(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.ContentID("t"), got[0].ID)
	assert.Equal(t, model.ContentBuild, got[1].Type)
	assert.True(t, now.Equal(got[0].AddedAt))

	require.NoError(t, s.RemoveWorkspaceItem(ctx, "alice", "t"))
	got, err = s.ListWorkspace(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
