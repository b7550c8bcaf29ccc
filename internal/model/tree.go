package model

// TreeKind is the tree-kind flag of a preset line.
type TreeKind int

const (
	// ClassTree also covers custom trees.
	ClassTree TreeKind = 0
	SpecTree  TreeKind = 1
)

// CustomTreeKey is the preset key of user-authored trees.
const CustomTreeKey = "custom"

// TalentTree is one tree line of the preset format: either the class half or
// the spec half of a class/spec combination, or a custom tree.
type TalentTree struct {
	Version string
	// Key is "<class>_<spec>", "<class>_class_<spec>" or "custom".
	Key                string
	Kind               TreeKind
	Name               string
	Description        string
	LoadoutDescription string
	Talents            []Talent
}

// Tree is the stored content of a materialized tree record.
type Tree struct {
	Name         string
	Description  string
	ClassTalents []Talent
	SpecTalents  []Talent
	// Preset marks trees produced from the generated preset file.
	Preset bool
}

// Clone returns a deep copy.
func (t *Tree) Clone() *Tree {
	c := *t
	c.ClassTalents = CloneTalents(t.ClassTalents)
	c.SpecTalents = CloneTalents(t.SpecTalents)
	return &c
}

// Loadout groups builds of one tree.
type Loadout struct {
	TreeID      ContentID
	Name        string
	Description string
}

// Clone returns a copy.
func (l *Loadout) Clone() *Loadout {
	c := *l
	return &c
}

// Build is one point assignment for a tree, optionally filed under a loadout.
type Build struct {
	TreeID      ContentID
	LoadoutID   ContentID // empty when the build has no loadout
	Name        string
	LevelCap    int
	UseLevelCap bool
	// AssignedSkills maps a talent node id (or order id) to invested points.
	AssignedSkills map[int]int
}

// Clone returns a deep copy.
func (b *Build) Clone() *Build {
	c := *b
	if b.AssignedSkills != nil {
		c.AssignedSkills = make(map[int]int, len(b.AssignedSkills))
		for k, v := range b.AssignedSkills {
			c.AssignedSkills[k] = v
		}
	}
	return &c
}

// SpentPoints sums the assigned points.
func (b *Build) SpentPoints() int {
	var n int
	for _, p := range b.AssignedSkills {
		n += p
	}
	return n
}
