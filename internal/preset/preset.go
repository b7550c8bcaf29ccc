// Package preset turns the generated preset file into stored preset trees.
package preset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/udisondev/ttmgo/internal/codec"
	"github.com/udisondev/ttmgo/internal/model"
)

// Entry is one preset tree ready to be stored.
type Entry struct {
	// Key is the spec key ("mage_fire") or "custom".
	Key string
	ID  model.ContentID
	// Class and Spec are empty for the custom tree.
	Class string
	Spec  string
	Tree  *model.Tree
}

// Upserter stores preset trees.
type Upserter interface {
	UpsertPresetTree(ctx context.Context, r *model.Record[model.Tree]) error
}

// ID returns the stable content id of the preset with the given key, so a
// re-sync replaces the records of the previous one.
func ID(key string) model.ContentID {
	return model.ContentID(uuid.NewSHA1(uuid.NameSpaceURL, []byte("ttm:preset:"+key)).String())
}

// Load reads a preset file and converts it.
func Load(r io.Reader) ([]Entry, error) {
	lines, err := codec.ReadPresets(r)
	if err != nil {
		return nil, err
	}
	return Convert(lines)
}

// Convert pairs every "<class>_class_<spec>" line with its "<class>_<spec>"
// line into one tree holding both talent halves. The custom line becomes a
// talent-less tree. Entries keep the order of the class lines.
func Convert(lines []*model.TalentTree) ([]Entry, error) {
	byKey := make(map[string]*model.TalentTree, len(lines))
	for _, l := range lines {
		byKey[l.Key] = l
	}

	var entries []Entry
	for _, l := range lines {
		key, err := codec.ParseKey(l.Key)
		if err != nil {
			return nil, err
		}

		switch {
		case key.Custom:
			entries = append(entries, Entry{
				Key: model.CustomTreeKey,
				ID:  ID(model.CustomTreeKey),
				Tree: &model.Tree{
					Name:        l.Name,
					Description: sentences(l.Description, 2),
					Preset:      true,
				},
			})

		case key.IsClass:
			specKey := codec.SpecTreeKey(key.Class, key.Spec)
			spec, ok := byKey[specKey]
			if !ok {
				return nil, fmt.Errorf("class tree %s has no spec tree %s", l.Key, specKey)
			}
			tree := &model.Tree{
				Name:         spec.Name,
				Description:  sentences(spec.Description, 1),
				ClassTalents: l.Talents,
				SpecTalents:  spec.Talents,
				Preset:       true,
			}
			if err := model.ValidateTalents(tree.ClassTalents); err != nil {
				return nil, fmt.Errorf("class tree %s: %w", l.Key, err)
			}
			if err := model.ValidateTalents(tree.SpecTalents); err != nil {
				return nil, fmt.Errorf("spec tree %s: %w", specKey, err)
			}
			entries = append(entries, Entry{
				Key:   specKey,
				ID:    ID(specKey),
				Class: key.Class,
				Spec:  key.Spec,
				Tree:  tree,
			})
		}
	}
	return entries, nil
}

// Sync upserts every entry and returns how many were stored.
func Sync(ctx context.Context, st Upserter, entries []Entry) (int, error) {
	for i, e := range entries {
		if err := st.UpsertPresetTree(ctx, model.Materialized(e.ID, e.Tree)); err != nil {
			return i, fmt.Errorf("storing preset %s: %w", e.Key, err)
		}
		slog.Debug("stored preset", "key", e.Key, "id", e.ID,
			"class_talents", len(e.Tree.ClassTalents), "spec_talents", len(e.Tree.SpecTalents))
	}
	return len(entries), nil
}

// sentences keeps the first n '.'-terminated sentences of s.
func sentences(s string, n int) string {
	parts := strings.Split(s, ".")
	if len(parts) <= n {
		return s
	}
	out := strings.Join(parts[:n], ".")
	return out + "."
}
