package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/ttmgo/internal/model"
)

func talent(index, row, col int, name string) model.Talent {
	return model.Talent{
		Index:     index,
		NodeID:    1000 + index,
		Names:     []string{name},
		Row:       row,
		Column:    col,
		MaxPoints: 1,
	}
}

func TestNormalize_SortsShiftsAndRemaps(t *testing.T) {
	// provisional indices 10, 20, 30 at absolute grid positions
	a := talent(10, 7, 9, "a")
	b := talent(20, 5, 12, "b")
	c := talent(30, 7, 4, "c")
	b.ChildIndices = []int{10, 30}
	a.ParentIndices = []int{20}
	c.ParentIndices = []int{20}

	got, err := Normalize([]model.Talent{a, b, c})
	require.NoError(t, err)
	require.Len(t, got, 3)

	names := []string{got[0].Name(), got[1].Name(), got[2].Name()}
	assert.Equal(t, []string{"b", "c", "a"}, names)

	for i, tl := range got {
		assert.Equal(t, i, tl.Index)
	}
	assert.Equal(t, 1, got[0].Row)
	assert.Equal(t, 9, got[0].Column)
	assert.Equal(t, 3, got[1].Row)
	assert.Equal(t, 1, got[1].Column)
	assert.Equal(t, 3, got[2].Row)
	assert.Equal(t, 6, got[2].Column)

	assert.Equal(t, []int{2, 1}, got[0].ChildIndices)
	assert.Equal(t, []int{0}, got[1].ParentIndices)
	assert.Equal(t, []int{0}, got[2].ParentIndices)

	// input untouched
	assert.Equal(t, 10, a.Index)
	assert.Equal(t, []int{10, 30}, b.ChildIndices)
}

func TestNormalize_Idempotent(t *testing.T) {
	in := []model.Talent{
		talent(0, 12, 3, "x"),
		talent(1, 4, 8, "y"),
		talent(2, 4, 2, "z"),
		talent(3, 9, 9, "w"),
	}
	in[1].ChildIndices = []int{0, 3}
	in[0].ParentIndices = []int{1}
	in[3].ParentIndices = []int{1}

	once, err := Normalize(in)
	require.NoError(t, err)
	twice, err := Normalize(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestNormalize_TieKeepsInputOrder(t *testing.T) {
	in := []model.Talent{
		talent(5, 2, 2, "first"),
		talent(3, 2, 2, "second"),
		talent(9, 1, 1, "root"),
	}
	got, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, "root", got[0].Name())
	assert.Equal(t, "first", got[1].Name())
	assert.Equal(t, "second", got[2].Name())
}

func TestNormalize_Errors(t *testing.T) {
	_, err := Normalize([]model.Talent{talent(1, 1, 1, "a"), talent(1, 2, 1, "b")})
	assert.ErrorContains(t, err, "duplicate talent index")

	dangling := talent(0, 1, 1, "a")
	dangling.ChildIndices = []int{42}
	_, err = Normalize([]model.Talent{dangling})
	assert.ErrorContains(t, err, "dangling reference 42")
}

func TestNormalize_Empty(t *testing.T) {
	got, err := Normalize(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFromExternal(t *testing.T) {
	nodes := []Node{
		{Talent: model.Talent{NodeID: 900, Names: []string{"leaf"}, Row: 3, Column: 2}, Parents: []int{700}},
		{Talent: model.Talent{NodeID: 700, Names: []string{"root"}, Row: 1, Column: 2}, Children: []int{900, 800}},
		{Talent: model.Talent{NodeID: 800, Names: []string{"mid"}, Row: 2, Column: 1}, Parents: []int{700}},
	}
	got, err := FromExternal(nodes)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 700, got[0].NodeID)
	assert.Equal(t, 800, got[1].NodeID)
	assert.Equal(t, 900, got[2].NodeID)
	assert.Equal(t, []int{2, 1}, got[0].ChildIndices)
	assert.Equal(t, []int{0}, got[1].ParentIndices)
	assert.Equal(t, []int{0}, got[2].ParentIndices)
	assert.NoError(t, model.ValidateTalents(got))
}

func TestFromExternal_UnknownNode(t *testing.T) {
	_, err := FromExternal([]Node{
		{Talent: model.Talent{NodeID: 1, Row: 1, Column: 1}, Children: []int{2}},
	})
	assert.ErrorContains(t, err, "unknown node id 2")

	_, err = FromExternal([]Node{
		{Talent: model.Talent{NodeID: 1}},
		{Talent: model.Talent{NodeID: 1}},
	})
	assert.ErrorContains(t, err, "duplicate node id 1")
}
