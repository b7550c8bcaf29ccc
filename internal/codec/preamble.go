package codec

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/udisondev/ttmgo/internal/model"
)

// DefaultVersion is the preset format version written by the generator.
const DefaultVersion = "1.3.8"

// preamble field positions
const (
	pVersion = iota
	pKey
	pKind
	pName
	pDescription
	pLoadoutDescription
	pCount
	pTrailer

	preambleFields = pTrailer + 1
)

func writePreamble(b *strings.Builder, tree *model.TalentTree) error {
	version := tree.Version
	if version == "" {
		version = DefaultVersion
	}
	if containsDelimiter(version) || containsDelimiter(tree.Key) {
		return fmt.Errorf("%w: version %q / key %q contain a delimiter", ErrMalformedPreamble, version, tree.Key)
	}

	texts := [...]string{tree.Name, tree.Description, tree.LoadoutDescription}
	escaped := make([]string, len(texts))
	for i, s := range texts {
		if !Reversible(s) {
			return fmt.Errorf("%w: %q", ErrReservedToken, s)
		}
		escaped[i] = Escape(s)
	}

	fields := [preambleFields]string{
		pVersion:            version,
		pKey:                tree.Key,
		pKind:               strconv.Itoa(int(tree.Kind)),
		pName:               escaped[0],
		pDescription:        escaped[1],
		pLoadoutDescription: escaped[2],
		pCount:              strconv.Itoa(len(tree.Talents)),
		pTrailer:            "0",
	}
	b.WriteString(strings.Join(fields[:], fieldSep))
	b.WriteString(talentSep)
	return nil
}

// readPreamble returns the tree header and the announced talent count.
func readPreamble(seg string) (*model.TalentTree, int, error) {
	fields := strings.Split(seg, fieldSep)
	if len(fields) != preambleFields {
		return nil, 0, fmt.Errorf("%w: %d fields", ErrMalformedPreamble, len(fields))
	}
	kind, err := strconv.Atoi(fields[pKind])
	if err != nil || (kind != int(model.ClassTree) && kind != int(model.SpecTree)) {
		return nil, 0, fmt.Errorf("%w: tree kind %q", ErrMalformedPreamble, fields[pKind])
	}
	count, err := strconv.Atoi(fields[pCount])
	if err != nil {
		return nil, 0, fmt.Errorf("%w: talent count %q", ErrMalformedPreamble, fields[pCount])
	}
	return &model.TalentTree{
		Version:            fields[pVersion],
		Key:                fields[pKey],
		Kind:               model.TreeKind(kind),
		Name:               Unescape(fields[pName]),
		Description:        Unescape(fields[pDescription]),
		LoadoutDescription: Unescape(fields[pLoadoutDescription]),
	}, count, nil
}

// ClassTreeKey is the preset key of the class half of a class/spec tree.
func ClassTreeKey(class, spec string) string {
	return class + "_class_" + spec
}

// SpecTreeKey is the preset key of the spec half of a class/spec tree.
func SpecTreeKey(class, spec string) string {
	return class + "_" + spec
}

// NewPresetTree builds the header the generator writes for a class or spec
// tree of the given class/spec combination.
func NewPresetTree(class, spec string, kind model.TreeKind, talents []model.Talent) *model.TalentTree {
	c, s := capitalize(class), capitalize(spec)
	t := &model.TalentTree{
		Version: DefaultVersion,
		Kind:    kind,
		Talents: talents,
	}
	var descriptor string
	if kind == model.SpecTree {
		t.Key = SpecTreeKey(class, spec)
		t.Name = s + " " + c
		descriptor = t.Name
	} else {
		t.Key = ClassTreeKey(class, spec)
		t.Name = c + " class (" + s + ")"
		descriptor = c + " class tree as " + s
	}
	t.Description = "This is the preset for the " + descriptor + ".\nYou can start editing the tree/loadout now."
	return t
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
