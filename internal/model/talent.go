package model

import (
	"fmt"
	"strings"
)

// TalentType is the node kind. The integer values are part of the preset
// text format.
type TalentType int

const (
	TalentActive  TalentType = 0
	TalentPassive TalentType = 1
	// TalentSwitch is a choice node: two mutually exclusive variants.
	TalentSwitch TalentType = 2
)

// String returns the name used by the relational store.
func (t TalentType) String() string {
	switch t {
	case TalentActive:
		return "ACTIVE"
	case TalentPassive:
		return "PASSIVE"
	case TalentSwitch:
		return "SWITCH"
	}
	return fmt.Sprintf("TalentType(%d)", int(t))
}

// ParseTalentType accepts the store names plus CHOICE as an alias of SWITCH.
func ParseTalentType(s string) (TalentType, error) {
	switch strings.ToUpper(s) {
	case "ACTIVE":
		return TalentActive, nil
	case "PASSIVE":
		return TalentPassive, nil
	case "SWITCH", "CHOICE":
		return TalentSwitch, nil
	}
	return 0, fmt.Errorf("unknown talent type %q", s)
}

// Valid reports whether t is one of the three known kinds.
func (t TalentType) Valid() bool {
	return t >= TalentActive && t <= TalentSwitch
}

// Talent is one node of a talent tree.
type Talent struct {
	// Index is the dense, zero-based position in the tree's canonical order.
	Index int
	// NodeID is the external node identifier. It survives re-normalization.
	NodeID int

	// Names holds one entry, or two for a switch node.
	Names []string
	// Descriptions holds one entry per rank, or one per variant for a switch node.
	Descriptions []string

	Type           TalentType
	Row            int
	Column         int
	MaxPoints      int
	RequiredPoints int
	Prefilled      bool

	ParentIndices []int
	ChildIndices  []int

	// IconNames are icon file names ("fireball.png"); two for a switch node.
	IconNames []string
}

// Name returns the primary display name.
func (t *Talent) Name() string {
	if len(t.Names) == 0 {
		return ""
	}
	return t.Names[0]
}

// Clone returns a deep copy.
func (t Talent) Clone() Talent {
	t.Names = cloneSlice(t.Names)
	t.Descriptions = cloneSlice(t.Descriptions)
	t.ParentIndices = cloneSlice(t.ParentIndices)
	t.ChildIndices = cloneSlice(t.ChildIndices)
	t.IconNames = cloneSlice(t.IconNames)
	return t
}

func cloneSlice[E any](s []E) []E {
	if s == nil {
		return nil
	}
	out := make([]E, len(s))
	copy(out, s)
	return out
}

// CloneTalents deep copies a talent list.
func CloneTalents(ts []Talent) []Talent {
	if ts == nil {
		return nil
	}
	out := make([]Talent, len(ts))
	for i := range ts {
		out[i] = ts[i].Clone()
	}
	return out
}
