// Package raidbots reads a locally stored raidbots talents.json and turns it
// into raw talent nodes per class and spec.
package raidbots

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/udisondev/ttmgo/internal/codec"
	"github.com/udisondev/ttmgo/internal/model"
	"github.com/udisondev/ttmgo/internal/normalize"
)

// NoDescription is used when the source carries no text for a rank.
const NoDescription = "Description not available"

// Geometry maps source pixel positions to grid cells.
type Geometry struct {
	ClassOffsetX int
	SpecOffsetX  int
	OffsetY      int
	CellSize     int
}

// DefaultGeometry matches the layout of the live talents.json.
func DefaultGeometry() Geometry {
	return Geometry{ClassOffsetX: 1200, SpecOffsetX: 9000, OffsetY: 1200, CellSize: 300}
}

type specJSON struct {
	ClassName     string     `json:"className"`
	ClassID       int        `json:"classId"`
	SpecName      string     `json:"specName"`
	SpecID        int        `json:"specId"`
	ClassNodes    []nodeJSON `json:"classNodes"`
	SpecNodes     []nodeJSON `json:"specNodes"`
	FullNodeOrder []int      `json:"fullNodeOrder"`
}

type nodeJSON struct {
	ID        int         `json:"id"`
	Type      string      `json:"type"`
	PosX      int         `json:"posX"`
	PosY      int         `json:"posY"`
	MaxRanks  int         `json:"maxRanks"`
	ReqPoints *int        `json:"reqPoints"`
	FreeNode  *bool       `json:"freeNode"`
	Prev      []int       `json:"prev"`
	Next      []int       `json:"next"`
	Entries   []entryJSON `json:"entries"`
}

type entryJSON struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	SpellID int    `json:"spellId"`
	Icon    string `json:"icon"`
	// Description and RankDescriptions are filled by a tooltip pass.
	Description      string   `json:"description"`
	RankDescriptions []string `json:"rankDescriptions"`
}

// Icon links a generated icon file name to the source icon it is made from.
type Icon struct {
	File   string
	Source string
}

// Spec is the raw data of one class/spec combination.
type Spec struct {
	Class      string
	Spec       string
	ClassNodes []normalize.Node
	SpecNodes  []normalize.Node
	Order      codec.NodeOrder
	Icons      []Icon
}

// Parse decodes talents.json. Class and spec names are lower-cased with
// spaces removed ("Death Knight" becomes "deathknight").
func Parse(r io.Reader, g Geometry) ([]Spec, error) {
	if g.CellSize <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %d", g.CellSize)
	}

	var raw []specJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding talents json: %w", err)
	}

	specs := make([]Spec, 0, len(raw))
	for _, sj := range raw {
		s := Spec{
			Class: simplify(sj.ClassName),
			Spec:  simplify(sj.SpecName),
		}
		if s.Class == "" || s.Spec == "" {
			return nil, fmt.Errorf("spec entry without class or spec name (class id %d, spec id %d)", sj.ClassID, sj.SpecID)
		}
		s.Order = codec.NodeOrder{
			Class:   s.Class,
			Spec:    s.Spec,
			ClassID: sj.ClassID,
			SpecID:  sj.SpecID,
			NodeIDs: sj.FullNodeOrder,
		}

		var icons []Icon
		s.ClassNodes, icons = s.extract(sj.ClassNodes, g.ClassOffsetX, g)
		s.Icons = append(s.Icons, icons...)
		s.SpecNodes, icons = s.extract(sj.SpecNodes, g.SpecOffsetX, g)
		s.Icons = append(s.Icons, icons...)
		specs = append(specs, s)
	}
	return specs, nil
}

func (s *Spec) extract(nodes []nodeJSON, offsetX int, g Geometry) ([]normalize.Node, []Icon) {
	out := make([]normalize.Node, 0, len(nodes))
	var icons []Icon
	for _, n := range nodes {
		entries := slices.Clone(n.Entries)
		slices.SortStableFunc(entries, func(a, b entryJSON) int { return cmp.Compare(a.Index, b.Index) })

		t := model.Talent{
			NodeID:    n.ID,
			Row:       floorDiv(n.PosY-g.OffsetY, g.CellSize),
			Column:    floorDiv(n.PosX-offsetX, g.CellSize),
			MaxPoints: n.MaxRanks,
			Prefilled: n.FreeNode != nil,
		}
		switch {
		case n.Type == "choice":
			t.Type = model.TalentSwitch
		case n.MaxRanks > 1:
			t.Type = model.TalentPassive
		default:
			t.Type = model.TalentActive
		}
		if n.ReqPoints != nil {
			t.RequiredPoints = *n.ReqPoints
		}

		for _, e := range entries {
			t.Names = append(t.Names, e.Name)
			file := s.IconName(e.Name)
			t.IconNames = append(t.IconNames, file)
			icons = append(icons, Icon{File: file, Source: e.Icon})
		}
		t.Descriptions = descriptions(t.Type, n.MaxRanks, entries)

		out = append(out, normalize.Node{Talent: t, Parents: n.Prev, Children: n.Next})
	}
	return out, icons
}

// descriptions yields one text per choice entry, or one per rank.
func descriptions(typ model.TalentType, ranks int, entries []entryJSON) []string {
	if typ == model.TalentSwitch {
		out := make([]string, len(entries))
		for i, e := range entries {
			out[i] = orFallback(e.Description)
		}
		return out
	}

	out := make([]string, ranks)
	for r := range out {
		var text string
		if len(entries) > 0 {
			e := entries[0]
			if r < len(e.RankDescriptions) {
				text = e.RankDescriptions[r]
			} else {
				text = e.Description
			}
		}
		out[r] = orFallback(text)
	}
	return out
}

func orFallback(s string) string {
	if strings.TrimSpace(s) == "" {
		return NoDescription
	}
	return apostrophes.Replace(s)
}

// apostrophes folds typographic apostrophes of tooltip text, mojibake forms
// included, to ASCII.
var apostrophes = strings.NewReplacer(
	"\u2019", "'",
	"\u0092", "'",
	"\u00e2\u20ac\u2122", "'",
)

// IconName builds the icon file name of a talent: the camel-cased talent
// name followed by the class initial and the first three letters of the
// spec ("Fire Blast" for fire mage gives "fireBlastMFir.png").
func (s *Spec) IconName(talent string) string {
	return FormatName(talent) + prefix(capitalize(s.Class), 1) + prefix(capitalize(s.Spec), 3) + ".png"
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9 ]+`)

// FormatName strips everything but ASCII letters, digits and spaces, then
// camel-cases the words.
func FormatName(name string) string {
	parts := strings.Split(nonAlnum.ReplaceAllString(name, ""), " ")
	var b strings.Builder
	b.WriteString(strings.ToLower(parts[0]))
	for _, p := range parts[1:] {
		b.WriteString(capitalize(p))
	}
	return b.String()
}

// Trees normalizes both node sets and returns the class and spec preset
// trees of s.
func (s *Spec) Trees() (class, spec *model.TalentTree, err error) {
	classTalents, err := normalize.FromExternal(s.ClassNodes)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s class tree: %w", s.Class, s.Spec, err)
	}
	specTalents, err := normalize.FromExternal(s.SpecNodes)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s spec tree: %w", s.Class, s.Spec, err)
	}
	return codec.NewPresetTree(s.Class, s.Spec, model.ClassTree, classTalents),
		codec.NewPresetTree(s.Class, s.Spec, model.SpecTree, specTalents),
		nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func simplify(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
