// Package codec converts talent trees to and from the single-line preset
// format.
//
// A tree line is a ';' separated list of segments. The first segment is the
// preamble, every following segment is one talent. Inside a segment ':'
// separates positional fields and ',' separates list entries. Free text is
// escaped with Escape so it never contains a raw delimiter.
package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/udisondev/ttmgo/internal/model"
)

// FillerIcon is appended to a single-icon talent so every talent segment
// lists two icon names. The atlas maps it to the default icon slot.
const FillerIcon = "default.png"

// unlockHint marks tooltip lines that only tell the player how to unlock a
// node. They are dropped on encode.
const unlockHint = "to unlock this talent"

// minSegmentLen is the shortest talent segment decode accepts. Shorter
// segments are stray trailing whitespace.
const minSegmentLen = 10

// talent field positions
const (
	fIndex = iota
	fNames
	fDescriptions
	fType
	fRow
	fColumn
	fMaxPoints
	fRequiredPoints
	fPrefilled
	fParents
	fChildren
	fIcons
	fNodeID

	talentFields    = fNodeID + 1
	minTalentFields = fIcons + 1
)

var fieldNames = [talentFields]string{
	"index", "names", "descriptions", "type", "row", "column", "max_points",
	"required_points", "prefilled", "parents", "children", "icons", "node_id",
}

// EncodeTree renders tree as one preset line terminated by ';'.
//
// An empty description list and a list holding one empty description share
// the same encoding and both decode to nil.
func EncodeTree(tree *model.TalentTree) (string, error) {
	var b strings.Builder

	if err := writePreamble(&b, tree); err != nil {
		return "", err
	}
	for i := range tree.Talents {
		if err := writeTalent(&b, &tree.Talents[i]); err != nil {
			return "", fmt.Errorf("talent %d: %w", tree.Talents[i].Index, err)
		}
	}
	return b.String(), nil
}

func writeTalent(b *strings.Builder, t *model.Talent) error {
	names, err := joinText(t.Names)
	if err != nil {
		return fmt.Errorf("names: %w", err)
	}

	descs := make([]string, 0, len(t.Descriptions))
	for _, d := range t.Descriptions {
		if strings.Contains(strings.ToLower(d), unlockHint) {
			continue
		}
		descs = append(descs, d)
	}
	descriptions, err := joinText(descs)
	if err != nil {
		return fmt.Errorf("descriptions: %w", err)
	}

	icons := t.IconNames
	if len(icons) == 1 {
		icons = []string{icons[0], FillerIcon}
	}
	for _, icon := range icons {
		if containsDelimiter(icon) {
			return fmt.Errorf("icon %q contains a delimiter", icon)
		}
	}

	prefilled := "0"
	if t.Prefilled {
		prefilled = "1"
	}

	fields := [talentFields]string{
		fIndex:          strconv.Itoa(t.Index),
		fNames:          names,
		fDescriptions:   descriptions,
		fType:           strconv.Itoa(int(t.Type)),
		fRow:            strconv.Itoa(t.Row),
		fColumn:         strconv.Itoa(t.Column),
		fMaxPoints:      strconv.Itoa(t.MaxPoints),
		fRequiredPoints: strconv.Itoa(t.RequiredPoints),
		fPrefilled:      prefilled,
		fParents:        joinInts(t.ParentIndices),
		fChildren:       joinInts(t.ChildIndices),
		fIcons:          strings.Join(icons, listSep),
		fNodeID:         strconv.Itoa(t.NodeID),
	}
	b.WriteString(strings.Join(fields[:], fieldSep))
	b.WriteString(talentSep)
	return nil
}

// DecodeTree parses one preset line. Trailing empty or too short segments
// are skipped.
func DecodeTree(line string) (*model.TalentTree, error) {
	line = strings.TrimRight(line, "\r\n")
	segments := strings.Split(line, talentSep)

	tree, count, err := readPreamble(segments[0])
	if err != nil {
		return nil, &ParseError{Segment: 0, Err: err}
	}

	for i, seg := range segments[1:] {
		if len(seg) < minSegmentLen || !strings.Contains(seg, fieldSep) {
			continue
		}
		t, err := readTalent(seg)
		if err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.Segment = i + 1
				return nil, pe
			}
			return nil, &ParseError{Segment: i + 1, Err: err}
		}
		tree.Talents = append(tree.Talents, t)
	}

	if count != len(tree.Talents) {
		return nil, &ParseError{
			Segment: 0,
			Field:   "talent_count",
			Err:     fmt.Errorf("%w: preamble announces %d talents, found %d", ErrMalformedPreamble, count, len(tree.Talents)),
		}
	}
	return tree, nil
}

func readTalent(seg string) (model.Talent, error) {
	fields := strings.Split(seg, fieldSep)
	if len(fields) < minTalentFields || len(fields) > talentFields {
		return model.Talent{}, fmt.Errorf("%w: %d fields", ErrMalformedTalent, len(fields))
	}

	ints := make(map[int]int, 8)
	for _, f := range []int{fIndex, fType, fRow, fColumn, fMaxPoints, fRequiredPoints, fPrefilled} {
		v, err := strconv.Atoi(fields[f])
		if err != nil {
			return model.Talent{}, &ParseError{Field: fieldNames[f], Err: fmt.Errorf("%w: %v", ErrMalformedTalent, err)}
		}
		ints[f] = v
	}

	t := model.Talent{
		Index:          ints[fIndex],
		NodeID:         -1,
		Names:          splitNames(fields[fNames]),
		Descriptions:   splitText(fields[fDescriptions]),
		Type:           model.TalentType(ints[fType]),
		Row:            ints[fRow],
		Column:         ints[fColumn],
		MaxPoints:      ints[fMaxPoints],
		RequiredPoints: ints[fRequiredPoints],
		Prefilled:      ints[fPrefilled] == 1,
		IconNames:      splitList(fields[fIcons]),
	}
	if !t.Type.Valid() {
		return model.Talent{}, &ParseError{Field: fieldNames[fType], Err: fmt.Errorf("%w: unknown type %d", ErrMalformedTalent, ints[fType])}
	}

	var err error
	if t.ParentIndices, err = splitInts(fields[fParents]); err != nil {
		return model.Talent{}, &ParseError{Field: fieldNames[fParents], Err: err}
	}
	if t.ChildIndices, err = splitInts(fields[fChildren]); err != nil {
		return model.Talent{}, &ParseError{Field: fieldNames[fChildren], Err: err}
	}
	if len(fields) == talentFields {
		if t.NodeID, err = strconv.Atoi(fields[fNodeID]); err != nil {
			return model.Talent{}, &ParseError{Field: fieldNames[fNodeID], Err: fmt.Errorf("%w: %v", ErrMalformedTalent, err)}
		}
	}

	// Only switch nodes own a second icon; others carry the FillerIcon.
	if t.Type != model.TalentSwitch && len(t.IconNames) > 1 {
		t.IconNames = t.IconNames[:1]
	}
	return t, nil
}

func joinText(parts []string) (string, error) {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		if !Reversible(p) {
			return "", fmt.Errorf("%w: %q", ErrReservedToken, p)
		}
		escaped[i] = Escape(p)
	}
	return strings.Join(escaped, listSep), nil
}

// splitNames keeps a lone empty name, since every talent has at least one.
func splitNames(field string) []string {
	if field == "" {
		return []string{""}
	}
	return splitText(field)
}

func splitText(field string) []string {
	parts := splitList(field)
	for i := range parts {
		parts[i] = Unescape(parts[i])
	}
	return parts
}

func splitList(field string) []string {
	if field == "" {
		return nil
	}
	return strings.Split(field, listSep)
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, listSep)
}

func splitInts(field string) ([]int, error) {
	parts := splitList(field)
	if parts == nil {
		return nil, nil
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTalent, err)
		}
		out = append(out, v)
	}
	return out, nil
}
