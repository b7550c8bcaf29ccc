// Package normalize turns raw talent nodes with absolute grid positions into
// the dense canonical form the codec writes.
package normalize

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/udisondev/ttmgo/internal/model"
)

// Normalize returns talents in canonical order.
//
// The input Index values are provisional references: ParentIndices and
// ChildIndices point at them and they must be unique. Talents are sorted by
// (Row, Column), ties keep their input order, and the sorted position becomes
// the new Index. Rows and columns are shifted so the bounding box starts at
// (1,1) and adjacency is rewritten to the new indices. The input is not
// modified. Normalizing a normalized tree returns an equal tree.
func Normalize(talents []model.Talent) ([]model.Talent, error) {
	if len(talents) == 0 {
		return nil, nil
	}

	out := model.CloneTalents(talents)

	minRow, minCol := out[0].Row, out[0].Column
	seen := make(map[int]struct{}, len(out))
	for i := range out {
		if _, dup := seen[out[i].Index]; dup {
			return nil, fmt.Errorf("duplicate talent index %d", out[i].Index)
		}
		seen[out[i].Index] = struct{}{}
		minRow = min(minRow, out[i].Row)
		minCol = min(minCol, out[i].Column)
	}

	slices.SortStableFunc(out, func(a, b model.Talent) int {
		if c := cmp.Compare(a.Row, b.Row); c != 0 {
			return c
		}
		return cmp.Compare(a.Column, b.Column)
	})

	remap := make(map[int]int, len(out))
	for i := range out {
		remap[out[i].Index] = i
	}

	rowShift, colShift := minRow-1, minCol-1
	for i := range out {
		t := &out[i]
		var err error
		if t.ParentIndices, err = remapAll(remap, t.ParentIndices); err != nil {
			return nil, fmt.Errorf("talent %d parents: %w", t.Index, err)
		}
		if t.ChildIndices, err = remapAll(remap, t.ChildIndices); err != nil {
			return nil, fmt.Errorf("talent %d children: %w", t.Index, err)
		}
		t.Index = i
		t.Row -= rowShift
		t.Column -= colShift
	}
	return out, nil
}

func remapAll(remap map[int]int, refs []int) ([]int, error) {
	if refs == nil {
		return nil, nil
	}
	out := make([]int, len(refs))
	for i, r := range refs {
		n, ok := remap[r]
		if !ok {
			return nil, fmt.Errorf("dangling reference %d", r)
		}
		out[i] = n
	}
	return out, nil
}
