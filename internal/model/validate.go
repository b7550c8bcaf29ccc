package model

import (
	"errors"
	"fmt"
)

// ErrCyclicTree is returned by Validate when child links form a cycle.
var ErrCyclicTree = errors.New("talent tree contains a cycle")

// Validate checks the per-node shape invariants.
func (t *Talent) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("talent %d: invalid type %d", t.Index, int(t.Type))
	}
	if t.Type == TalentSwitch {
		if len(t.Names) != 2 {
			return fmt.Errorf("talent %d: switch node needs 2 names, got %d", t.Index, len(t.Names))
		}
		if len(t.Descriptions) != 2 {
			return fmt.Errorf("talent %d: switch node needs 2 descriptions, got %d", t.Index, len(t.Descriptions))
		}
		if len(t.IconNames) != 2 {
			return fmt.Errorf("talent %d: switch node needs 2 icons, got %d", t.Index, len(t.IconNames))
		}
		return nil
	}
	if len(t.Names) != 1 {
		return fmt.Errorf("talent %d: expected 1 name, got %d", t.Index, len(t.Names))
	}
	if len(t.Descriptions) > t.MaxPoints {
		return fmt.Errorf("talent %d: %d descriptions exceed max points %d",
			t.Index, len(t.Descriptions), t.MaxPoints)
	}
	if len(t.IconNames) > 1 {
		return fmt.Errorf("talent %d: non-switch node has %d icons", t.Index, len(t.IconNames))
	}
	return nil
}

// ValidateTalents checks every node, that Index equals the list position,
// that adjacency stays inside the tree and that child links are acyclic.
func ValidateTalents(talents []Talent) error {
	n := len(talents)
	for i := range talents {
		t := &talents[i]
		if t.Index != i {
			return fmt.Errorf("talent at position %d has index %d", i, t.Index)
		}
		if err := t.Validate(); err != nil {
			return err
		}
		for _, p := range t.ParentIndices {
			if p < 0 || p >= n {
				return fmt.Errorf("talent %d: parent index %d out of range [0,%d)", i, p, n)
			}
		}
		for _, c := range t.ChildIndices {
			if c < 0 || c >= n {
				return fmt.Errorf("talent %d: child index %d out of range [0,%d)", i, c, n)
			}
		}
	}
	if hasCycle(talents) {
		return ErrCyclicTree
	}
	return nil
}

// hasCycle runs a three-color DFS over child links.
func hasCycle(talents []Talent) bool {
	const (
		white = iota
		grey
		black
	)
	color := make([]int, len(talents))

	var visit func(i int) bool
	visit = func(i int) bool {
		color[i] = grey
		for _, c := range talents[i].ChildIndices {
			switch color[c] {
			case grey:
				return true
			case white:
				if visit(c) {
					return true
				}
			}
		}
		color[i] = black
		return false
	}

	for i := range talents {
		if color[i] == white && visit(i) {
			return true
		}
	}
	return false
}

// Validate checks the talents of one tree line.
func (tt *TalentTree) Validate() error {
	if err := ValidateTalents(tt.Talents); err != nil {
		return fmt.Errorf("tree %s: %w", tt.Key, err)
	}
	return nil
}
