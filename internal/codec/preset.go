package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/udisondev/ttmgo/internal/model"
)

// maxLineSize bounds a single tree line. Full spec trees with every rank
// description run to a few hundred kilobytes.
const maxLineSize = 16 << 20

// welcomeBody is the fixed first line of every presets file after the
// version. It is written verbatim, raw commas and trailing spaces included.
const welcomeBody = ":custom:0:New custom Tree:Welcome to WoW Talent Tree Manager.__n__" +
	"This is a solution to manage trees and their loadouts. A loadout is a collection of skillsets, __n__" +
	"e.g. a skillset for Raid/M+/PvP etc. You can edit trees or work with spec presets, manage __n__" +
	"various skillsets in your loadout as well as auto solve all possible skill combinations with a __n__" +
	"given filter.__n__" +
	"__n__" +
	"Edit the tree name/description here. To edit tree nodes select \"Tree Editor\" in the top right.__n__" +
	"Press \"Save/Load Trees\" to load tree spec presets, manage your custom trees and import or__n__" +
	"export trees (from/to Discord, etc.).__n__" +
	"To start the tree editing process, go to \"Tree Editor\" -> \"Create Node\" and create your first__n__" +
	"talent.__n__" +
	"__n__" +
	"Select the \"Talent Loadout Editor\" in the top left to manage your loadout. You can __n__" +
	"edit the loadout description there and create/import/export skillsets. Since skillsets are stored__n__" +
	"inside the loadout which is part of the tree, you can save your skillsets by saving the tree__n__" +
	"in the tree editor.__n__" +
	"__n__" +
	"Lastly, select the \"Talent Loadout Solver\" to generate all possible combinations of talent__n__" +
	"selections for all possible amounts of spendable talent points. Afterwards, you can filter__n__" +
	"the results to include/exclude specific talents and load the results into your loadout.__n__" +
	"__n__" +
	"Hint__cl__ This text can be edited!:Your loadout is a collection of different skillset that you can edit to suit various ingame __n__" +
	"situations, e.g. a raid setup, an M+ setup or different PvP skillsets.__n__" +
	"All skillsets are stored in the loadout which in turn is stored in the tree. So if you save your tree__n__" +
	"you'll save your loadout as well! Additionally, you can import/export skillsets directly, to share__n__" +
	"with friends or your favorite discord class experts.:0:0;"

// WelcomeLine returns the fixed welcome line for version, without the line
// break.
func WelcomeLine(version string) string {
	if version == "" {
		version = DefaultVersion
	}
	return version + welcomeBody
}

// WelcomeTree is the decoded form of WelcomeLine: the empty custom tree that
// opens every presets file.
func WelcomeTree(version string) *model.TalentTree {
	t, err := DecodeTree(WelcomeLine(version))
	if err != nil {
		panic(fmt.Sprintf("welcome line does not decode: %v", err))
	}
	return t
}

// WritePresets writes the welcome line followed by one line per tree.
func WritePresets(w io.Writer, version string, trees []*model.TalentTree) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(WelcomeLine(version) + "\n"); err != nil {
		return fmt.Errorf("writing welcome line: %w", err)
	}
	for _, t := range trees {
		line, err := EncodeTree(t)
		if err != nil {
			return fmt.Errorf("encoding tree %q: %w", t.Key, err)
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("writing tree %q: %w", t.Key, err)
		}
	}
	return bw.Flush()
}

// ReadPresets decodes every non-empty line of a presets file, welcome tree
// included.
func ReadPresets(r io.Reader) ([]*model.TalentTree, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var trees []*model.TalentTree
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		t, err := DecodeTree(line)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = n
			}
			return nil, err
		}
		trees = append(trees, t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading presets: %w", err)
	}
	return trees, nil
}

// PresetKey is a parsed tree key.
type PresetKey struct {
	Class   string
	Spec    string
	IsClass bool // the "<class>_class_<spec>" half
	Custom  bool
}

// ParseKey splits a preset key. Class and spec names never contain '_'.
func ParseKey(key string) (PresetKey, error) {
	if key == model.CustomTreeKey {
		return PresetKey{Custom: true}, nil
	}
	parts := strings.Split(key, "_")
	switch {
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return PresetKey{Class: parts[0], Spec: parts[1]}, nil
	case len(parts) == 3 && parts[1] == "class" && parts[0] != "" && parts[2] != "":
		return PresetKey{Class: parts[0], Spec: parts[2], IsClass: true}, nil
	}
	return PresetKey{}, fmt.Errorf("unrecognized preset key %q", key)
}
