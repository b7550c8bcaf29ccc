package normalize

import (
	"fmt"

	"github.com/udisondev/ttmgo/internal/model"
)

// Node is a talent as an external source describes it: adjacency refers to
// external node ids instead of dense indices.
type Node struct {
	Talent   model.Talent
	Parents  []int
	Children []int
}

// FromExternal assigns every node a provisional index (its input position),
// rewrites adjacency from node ids to those indices and normalizes the
// result. Talent.NodeID must be unique; Talent.Index and any adjacency set on
// Talent are ignored.
func FromExternal(nodes []Node) ([]model.Talent, error) {
	byNodeID := make(map[int]int, len(nodes))
	for i := range nodes {
		id := nodes[i].Talent.NodeID
		if _, dup := byNodeID[id]; dup {
			return nil, fmt.Errorf("duplicate node id %d", id)
		}
		byNodeID[id] = i
	}

	talents := make([]model.Talent, len(nodes))
	for i := range nodes {
		t := nodes[i].Talent.Clone()
		t.Index = i

		var err error
		if t.ParentIndices, err = resolveNodeIDs(byNodeID, nodes[i].Parents); err != nil {
			return nil, fmt.Errorf("node %d parents: %w", t.NodeID, err)
		}
		if t.ChildIndices, err = resolveNodeIDs(byNodeID, nodes[i].Children); err != nil {
			return nil, fmt.Errorf("node %d children: %w", t.NodeID, err)
		}
		talents[i] = t
	}
	return Normalize(talents)
}

func resolveNodeIDs(byNodeID map[int]int, ids []int) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]int, len(ids))
	for i, id := range ids {
		idx, ok := byNodeID[id]
		if !ok {
			return nil, fmt.Errorf("unknown node id %d", id)
		}
		out[i] = idx
	}
	return out, nil
}
