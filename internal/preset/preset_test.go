package preset

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/ttmgo/internal/codec"
	"github.com/udisondev/ttmgo/internal/model"
	"github.com/udisondev/ttmgo/internal/testutil"
)

func talents(names ...string) []model.Talent {
	out := make([]model.Talent, len(names))
	for i, n := range names {
		out[i] = model.Talent{
			Index: i, NodeID: 100 + i, Names: []string{n}, Descriptions: []string{n + ": rank 1"},
			Row: i + 1, Column: 1, MaxPoints: 1, IconNames: []string{n + ".png"},
		}
	}
	return out
}

func presetFile(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, codec.WritePresets(&buf, "", []*model.TalentTree{
		codec.NewPresetTree("mage", "fire", model.ClassTree, talents("blink", "shimmer")),
		codec.NewPresetTree("mage", "fire", model.SpecTree, talents("pyroblast")),
		codec.NewPresetTree("druid", "feral", model.ClassTree, talents("dash")),
		codec.NewPresetTree("druid", "feral", model.SpecTree, talents("rip", "rake", "shred")),
	}))
	return buf.Bytes()
}

func TestLoad_PairsClassAndSpecLines(t *testing.T) {
	entries, err := Load(bytes.NewReader(presetFile(t)))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	custom := entries[0]
	assert.Equal(t, model.CustomTreeKey, custom.Key)
	assert.Equal(t, "New custom Tree", custom.Tree.Name)
	assert.Empty(t, custom.Tree.ClassTalents)
	assert.Empty(t, custom.Tree.SpecTalents)

	fire := entries[1]
	assert.Equal(t, "mage_fire", fire.Key)
	assert.Equal(t, "mage", fire.Class)
	assert.Equal(t, "fire", fire.Spec)
	assert.Equal(t, "Fire Mage", fire.Tree.Name)
	assert.Equal(t, "This is the preset for the Fire Mage.", fire.Tree.Description)
	assert.Len(t, fire.Tree.ClassTalents, 2)
	assert.Len(t, fire.Tree.SpecTalents, 1)
	assert.True(t, fire.Tree.Preset)

	assert.Equal(t, "druid_feral", entries[2].Key)
	assert.Len(t, entries[2].Tree.SpecTalents, 3)
}

func TestConvert_MissingSpecLine(t *testing.T) {
	_, err := Convert([]*model.TalentTree{codec.NewPresetTree("mage", "frost", model.ClassTree, nil)})
	assert.ErrorContains(t, err, "has no spec tree mage_frost")
}

func TestConvert_RejectsInvalidTalents(t *testing.T) {
	bad := talents("a", "b")
	bad[0].ChildIndices = []int{5}
	_, err := Convert([]*model.TalentTree{
		codec.NewPresetTree("mage", "fire", model.ClassTree, bad),
		codec.NewPresetTree("mage", "fire", model.SpecTree, nil),
	})
	assert.Error(t, err)
}

func TestID_Stable(t *testing.T) {
	assert.Equal(t, ID("mage_fire"), ID("mage_fire"))
	assert.NotEqual(t, ID("mage_fire"), ID("mage_frost"))
}

func TestSync_ReplacesPreviousRun(t *testing.T) {
	st := testutil.NewMemoryStore()
	ctx := context.Background()

	entries, err := Load(bytes.NewReader(presetFile(t)))
	require.NoError(t, err)

	n, err := Sync(ctx, st, entries)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = Sync(ctx, st, entries)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rec, err := st.GetTree(ctx, ID("mage_fire"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Fire Mage", rec.Content.Name)
}

func TestSync_StoreFailure(t *testing.T) {
	st := testutil.NewMemoryStore()
	st.FailWith = testutil.ErrSimulated

	n, err := Sync(context.Background(), st, []Entry{{Key: "mage_fire", ID: "x", Tree: &model.Tree{Name: "x"}}})
	assert.ErrorIs(t, err, testutil.ErrSimulated)
	assert.Zero(t, n)
}

func TestSentences(t *testing.T) {
	assert.Equal(t, "One.", sentences("One. Two. Three.", 1))
	assert.Equal(t, "One. Two.", sentences("One. Two. Three.", 2))
	assert.Equal(t, "no dot", sentences("no dot", 1))
}
