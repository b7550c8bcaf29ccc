package store

import (
	"encoding/json"
	"fmt"

	"github.com/udisondev/ttmgo/internal/model"
	"github.com/udisondev/ttmgo/internal/resolve"
)

// Talent halves of a tree.
const (
	HalfClass = 0
	HalfSpec  = 1
)

// TreeRow mirrors one row of the trees table. Name is nil for stubs.
type TreeRow struct {
	ID          string
	ImportID    *string
	Name        *string
	Description string
	Preset      bool
}

// TreeRowFrom flattens r. Talents are written separately with TalentRowsFrom.
func TreeRowFrom(r *model.Record[model.Tree]) (TreeRow, error) {
	row := TreeRow{ID: string(r.ID)}
	switch r.Kind() {
	case model.KindMaterialized:
		row.Name = &r.Content.Name
		row.Description = r.Content.Description
		row.Preset = r.Content.Preset
	case model.KindStub:
		row.ImportID = ptr(string(r.ImportID))
	default:
		return TreeRow{}, malformed(model.ContentTree, r.ID)
	}
	return row, nil
}

// Record converts the row. talents are only used for materialized rows.
func (row TreeRow) Record(class, spec []model.Talent) (*model.Record[model.Tree], error) {
	id := model.ContentID(row.ID)
	switch {
	case row.Name != nil:
		return model.Materialized(id, &model.Tree{
			Name:         *row.Name,
			Description:  row.Description,
			ClassTalents: class,
			SpecTalents:  spec,
			Preset:       row.Preset,
		}), nil
	case row.ImportID != nil && *row.ImportID != "":
		return model.Stub[model.Tree](id, model.ContentID(*row.ImportID)), nil
	}
	return nil, malformed(model.ContentTree, id)
}

// TalentRow mirrors one row of the talents table. List columns hold JSON.
type TalentRow struct {
	TreeID         string
	Half           int
	Index          int
	NodeID         int
	Names          string
	Descriptions   string
	Type           int
	Row            int
	Column         int
	MaxPoints      int
	RequiredPoints int
	Prefilled      bool
	ParentIndices  string
	ChildIndices   string
	IconNames      string
}

// TalentRowsFrom flattens the class and spec talents of a materialized tree.
func TalentRowsFrom(treeID model.ContentID, t *model.Tree) ([]TalentRow, error) {
	rows := make([]TalentRow, 0, len(t.ClassTalents)+len(t.SpecTalents))
	for half, talents := range [...][]model.Talent{HalfClass: t.ClassTalents, HalfSpec: t.SpecTalents} {
		for i := range talents {
			row, err := talentRowFrom(string(treeID), half, &talents[i])
			if err != nil {
				return nil, fmt.Errorf("talent %d of tree %s: %w", talents[i].Index, treeID, err)
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func talentRowFrom(treeID string, half int, t *model.Talent) (TalentRow, error) {
	row := TalentRow{
		TreeID:         treeID,
		Half:           half,
		Index:          t.Index,
		NodeID:         t.NodeID,
		Type:           int(t.Type),
		Row:            t.Row,
		Column:         t.Column,
		MaxPoints:      t.MaxPoints,
		RequiredPoints: t.RequiredPoints,
		Prefilled:      t.Prefilled,
	}
	var err error
	for _, f := range []struct {
		dst *string
		v   any
	}{
		{&row.Names, t.Names},
		{&row.Descriptions, t.Descriptions},
		{&row.ParentIndices, t.ParentIndices},
		{&row.ChildIndices, t.ChildIndices},
		{&row.IconNames, t.IconNames},
	} {
		if *f.dst, err = marshal(f.v); err != nil {
			return TalentRow{}, err
		}
	}
	return row, nil
}

// Talent converts the row back.
func (row TalentRow) Talent() (model.Talent, error) {
	t := model.Talent{
		Index:          row.Index,
		NodeID:         row.NodeID,
		Type:           model.TalentType(row.Type),
		Row:            row.Row,
		Column:         row.Column,
		MaxPoints:      row.MaxPoints,
		RequiredPoints: row.RequiredPoints,
		Prefilled:      row.Prefilled,
	}
	for _, f := range []struct {
		src string
		dst any
	}{
		{row.Names, &t.Names},
		{row.Descriptions, &t.Descriptions},
		{row.ParentIndices, &t.ParentIndices},
		{row.ChildIndices, &t.ChildIndices},
		{row.IconNames, &t.IconNames},
	} {
		if err := json.Unmarshal([]byte(f.src), f.dst); err != nil {
			return model.Talent{}, fmt.Errorf("decoding talent %d of tree %s: %w", row.Index, row.TreeID, err)
		}
	}
	return t, nil
}

// SplitTalents converts rows ordered by (half, index) into class and spec
// talent lists.
func SplitTalents(rows []TalentRow) (class, spec []model.Talent, err error) {
	for _, r := range rows {
		t, err := r.Talent()
		if err != nil {
			return nil, nil, err
		}
		if r.Half == HalfSpec {
			spec = append(spec, t)
		} else {
			class = append(class, t)
		}
	}
	return class, spec, nil
}

// LoadoutRow mirrors one row of the loadouts table.
type LoadoutRow struct {
	ID          string
	ImportID    *string
	Name        *string
	Description string
	TreeID      string
}

// LoadoutRowFrom flattens r.
func LoadoutRowFrom(r *model.Record[model.Loadout]) (LoadoutRow, error) {
	row := LoadoutRow{ID: string(r.ID)}
	switch r.Kind() {
	case model.KindMaterialized:
		row.Name = &r.Content.Name
		row.Description = r.Content.Description
		row.TreeID = string(r.Content.TreeID)
	case model.KindStub:
		row.ImportID = ptr(string(r.ImportID))
	default:
		return LoadoutRow{}, malformed(model.ContentLoadout, r.ID)
	}
	return row, nil
}

// Record converts the row.
func (row LoadoutRow) Record() (*model.Record[model.Loadout], error) {
	id := model.ContentID(row.ID)
	switch {
	case row.Name != nil:
		return model.Materialized(id, &model.Loadout{
			TreeID:      model.ContentID(row.TreeID),
			Name:        *row.Name,
			Description: row.Description,
		}), nil
	case row.ImportID != nil && *row.ImportID != "":
		return model.Stub[model.Loadout](id, model.ContentID(*row.ImportID)), nil
	}
	return nil, malformed(model.ContentLoadout, id)
}

// BuildRow mirrors one row of the builds table. LoadoutID is kept for stubs
// too: it is the loadout this hop of the chain was filed under.
type BuildRow struct {
	ID             string
	ImportID       *string
	Name           *string
	TreeID         string
	LoadoutID      *string
	LevelCap       int
	UseLevelCap    bool
	AssignedSkills string
}

// BuildRowFrom flattens r.
func BuildRowFrom(r *model.Record[model.Build]) (BuildRow, error) {
	row := BuildRow{ID: string(r.ID), AssignedSkills: "{}"}
	if r.Loadout != "" {
		row.LoadoutID = ptr(string(r.Loadout))
	}
	switch r.Kind() {
	case model.KindMaterialized:
		b := r.Content
		row.Name = &b.Name
		row.TreeID = string(b.TreeID)
		row.LevelCap = b.LevelCap
		row.UseLevelCap = b.UseLevelCap
		if b.LoadoutID != "" {
			row.LoadoutID = ptr(string(b.LoadoutID))
		}
		skills, err := marshal(b.AssignedSkills)
		if err != nil {
			return BuildRow{}, err
		}
		row.AssignedSkills = skills
	case model.KindStub:
		row.ImportID = ptr(string(r.ImportID))
	default:
		return BuildRow{}, malformed(model.ContentBuild, r.ID)
	}
	return row, nil
}

// Record converts the row.
func (row BuildRow) Record() (*model.Record[model.Build], error) {
	id := model.ContentID(row.ID)
	var loadout model.ContentID
	if row.LoadoutID != nil {
		loadout = model.ContentID(*row.LoadoutID)
	}

	var rec *model.Record[model.Build]
	switch {
	case row.Name != nil:
		b := &model.Build{
			TreeID:      model.ContentID(row.TreeID),
			LoadoutID:   loadout,
			Name:        *row.Name,
			LevelCap:    row.LevelCap,
			UseLevelCap: row.UseLevelCap,
		}
		if err := json.Unmarshal([]byte(row.AssignedSkills), &b.AssignedSkills); err != nil {
			return nil, fmt.Errorf("decoding assigned skills of build %s: %w", id, err)
		}
		rec = model.Materialized(id, b)
	case row.ImportID != nil && *row.ImportID != "":
		rec = model.Stub[model.Build](id, model.ContentID(*row.ImportID))
	default:
		return nil, malformed(model.ContentBuild, id)
	}
	rec.Loadout = loadout
	return rec, nil
}

func marshal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding %T: %w", v, err)
	}
	return string(b), nil
}

func malformed(typ model.ContentType, id model.ContentID) error {
	return fmt.Errorf("%w: %s %s", resolve.ErrMalformedReference, typ, id)
}

func ptr(s string) *string { return &s }
