package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/ttmgo/internal/codec"
	"github.com/udisondev/ttmgo/internal/config"
	"github.com/udisondev/ttmgo/internal/preset"
)

const talentsJSON = `[
  {"className": "Mage", "classId": 8, "specName": "Fire", "specId": 63,
   "fullNodeOrder": [1, 2, 3],
   "classNodes": [
     {"id": 1, "type": "single", "posX": 1500, "posY": 1500, "maxRanks": 1, "next": [2],
      "entries": [{"index": 1, "name": "Blink", "icon": "spell_arcane_blink"}]},
     {"id": 2, "type": "choice", "posX": 1500, "posY": 1800, "maxRanks": 1, "prev": [1],
      "entries": [{"index": 1, "name": "Shimmer", "icon": "a"}, {"index": 2, "name": "Alter Time", "icon": "b"}]}
   ],
   "specNodes": [
     {"id": 3, "type": "single", "posX": 9300, "posY": 1500, "maxRanks": 2,
      "entries": [{"index": 1, "name": "Pyroblast", "icon": "spell_fire_fireball02"}]}
   ]},
  {"className": "Mage", "classId": 8, "specName": "Frost", "specId": 64,
   "fullNodeOrder": [1],
   "classNodes": [
     {"id": 1, "type": "single", "posX": 1500, "posY": 1500, "maxRanks": 1,
      "entries": [{"index": 1, "name": "Blink", "icon": "spell_arcane_blink"}]}
   ],
   "specNodes": []}
]`

func testGenerator(t *testing.T) config.GeneratorConfig {
	t.Helper()
	gen := config.DefaultTTM().Generator
	gen.TalentsJSON = filepath.Join(t.TempDir(), "talents.json")
	require.NoError(t, os.WriteFile(gen.TalentsJSON, []byte(talentsJSON), 0o644))
	return gen
}

func TestPipeline(t *testing.T) {
	gen := testGenerator(t)
	specs, err := loadSpecs(gen)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	trees, err := buildTrees(context.Background(), specs, 2)
	require.NoError(t, err)
	require.Len(t, trees, 4)
	assert.Equal(t, "mage_class_fire", trees[0].Key)
	assert.Equal(t, "mage_fire", trees[1].Key)
	assert.Equal(t, "mage_class_frost", trees[2].Key)

	dir := t.TempDir()
	p := config.PresetsConfig{
		Version:       "1.3.8",
		PresetsFile:   filepath.Join(dir, "out", "presets.txt"),
		NodeOrderFile: filepath.Join(dir, "out", "node_id_orders.txt"),
	}
	require.NoError(t, writeOutputs(p, specs, trees))

	f, err := os.Open(p.PresetsFile)
	require.NoError(t, err)
	defer f.Close()
	entries, err := preset.Load(f)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "custom", entries[0].Key)
	assert.Equal(t, "mage_fire", entries[1].Key)
	assert.Len(t, entries[1].Tree.ClassTalents, 2)
	assert.Len(t, entries[1].Tree.SpecTalents, 1)

	of, err := os.Open(p.NodeOrderFile)
	require.NoError(t, err)
	defer of.Close()
	orders, err := codec.ReadNodeOrders(of)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, []int{1, 2, 3}, orders[0].NodeIDs)
	assert.Equal(t, 64, orders[1].SpecID)
}

func TestLoadSpecs_Filter(t *testing.T) {
	gen := testGenerator(t)
	gen.Specs = []string{"frost"}

	specs, err := loadSpecs(gen)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "frost", specs[0].Spec)
}

func TestBuildTrees_Invalid(t *testing.T) {
	specs, err := loadSpecs(testGenerator(t))
	require.NoError(t, err)
	specs[0].SpecNodes[0].Parents = []int{42}

	_, err = buildTrees(context.Background(), specs, 1)
	assert.ErrorContains(t, err, "unknown node id 42")
}
