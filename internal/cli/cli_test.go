package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/ttmgo/internal/codec"
	"github.com/udisondev/ttmgo/internal/litestore"
	"github.com/udisondev/ttmgo/internal/model"
	"github.com/udisondev/ttmgo/internal/resolve"
)

type harness struct {
	t          *testing.T
	configPath string
	dbPath     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		t:          t,
		configPath: filepath.Join(dir, "ttm.yaml"),
		dbPath:     filepath.Join(dir, "ttm.db"),
	}
	yaml := fmt.Sprintf("log_level: warn\ndatabase:\n  driver: sqlite\n  path: %s\n", h.dbPath)
	require.NoError(t, os.WriteFile(h.configPath, []byte(yaml), 0o644))
	return h
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	root := NewRootCommand(io.Discard)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(append([]string{"--config", h.configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) seedTree(id model.ContentID, name string) {
	h.t.Helper()
	ctx := context.Background()
	st, err := litestore.Open(ctx, h.dbPath)
	require.NoError(h.t, err)
	defer st.Close()
	require.NoError(h.t, st.CreateTree(ctx, model.Materialized(id, &model.Tree{Name: name, Preset: true})))
}

func TestMigrate(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("migrate")
	require.NoError(t, err)
	assert.Equal(t, "migrated sqlite database\n", out)
}

func TestImportResolveWorkspace(t *testing.T) {
	h := newHarness(t)
	h.seedTree("tree-1", "Fire Mage")

	out, err := h.run("import", "tree", "tree-1", "--user", "alice")
	require.NoError(t, err)
	stubID := strings.TrimSpace(out)
	require.NotEmpty(t, stubID)

	out, err = h.run("resolve", "tree", stubID)
	require.NoError(t, err)
	assert.Contains(t, out, "root tree-1, imported true")
	assert.Contains(t, out, "name: Fire Mage")

	out, err = h.run("copy", "tree", stubID, "--user", "alice")
	require.NoError(t, err)
	copyID := strings.TrimSpace(out)
	assert.NotEqual(t, stubID, copyID)

	out, err = h.run("workspace", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, stubID)
	assert.Contains(t, out, copyID)
	assert.Contains(t, out, "Fire Mage")

	// The copy survives deleting the source, the stub does not.
	_, err = h.run("delete", "tree", "tree-1")
	require.NoError(t, err)

	out, err = h.run("workspace", "alice")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, out, "<unresolvable")

	_, err = h.run("resolve", "tree", stubID)
	assert.ErrorIs(t, err, resolve.ErrUnresolvableChain)

	out, err = h.run("resolve", "tree", copyID)
	require.NoError(t, err)
	assert.Contains(t, out, "imported false")
}

func TestImport_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("import", "tree", "missing", "--user", "alice")
	assert.ErrorIs(t, err, resolve.ErrNotFound)

	_, err = h.run("import", "widget", "x", "--user", "alice")
	assert.Error(t, err)

	_, err = h.run("import", "tree", "x")
	assert.ErrorContains(t, err, "user")
}

func TestDecode(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "presets.txt")

	var buf bytes.Buffer
	require.NoError(t, codec.WritePresets(&buf, "", []*model.TalentTree{
		codec.NewPresetTree("mage", "fire", model.ClassTree, nil),
		codec.NewPresetTree("mage", "fire", model.SpecTree, nil),
	}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	out, err := h.run("decode", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "custom")
	assert.Contains(t, lines[2], "mage_class_fire")
	assert.Contains(t, lines[3], "Fire Mage")
	assert.Contains(t, lines[3], "spec")
}
