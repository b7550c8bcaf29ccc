// Package atlas packs talent icons into a single image plus a text file that
// lists the icon in every slot.
package atlas

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

// Meta describes the slot layout of a packed atlas. Files[0] is the default
// icon.
type Meta struct {
	TileWidth  int
	TileHeight int
	Files      []string
}

// PixelsPerTile is the length of one flattened tile row.
func (m Meta) PixelsPerTile() int { return m.TileWidth * m.TileHeight }

// Slot returns the atlas slot of file, or 0 (the default icon) when the file
// is not packed.
func (m Meta) Slot(file string) int {
	if i := slices.Index(m.Files, file); i >= 0 {
		return i
	}
	return 0
}

// WriteMeta writes the header lines (tile width, tile height, tile count,
// pixels per tile) followed by one file name per slot.
func WriteMeta(w io.Writer, m Meta) error {
	bw := bufio.NewWriter(w)
	header := []int{m.TileWidth, m.TileHeight, len(m.Files), m.PixelsPerTile()}
	for _, v := range header {
		fmt.Fprintln(bw, v)
	}
	for _, f := range m.Files {
		if strings.ContainsAny(f, "\r\n") {
			return fmt.Errorf("atlas file name %q contains a line break", f)
		}
		fmt.Fprintln(bw, f)
	}
	return bw.Flush()
}

// ReadMeta parses a file written by WriteMeta.
func ReadMeta(r io.Reader) (Meta, error) {
	sc := bufio.NewScanner(r)
	var header [4]int
	for i := range header {
		if !sc.Scan() {
			return Meta{}, fmt.Errorf("atlas meta: missing header line %d", i+1)
		}
		v, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		if err != nil {
			return Meta{}, fmt.Errorf("atlas meta: header line %d: %w", i+1, err)
		}
		header[i] = v
	}

	m := Meta{TileWidth: header[0], TileHeight: header[1]}
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			m.Files = append(m.Files, line)
		}
	}
	if err := sc.Err(); err != nil {
		return Meta{}, fmt.Errorf("atlas meta: %w", err)
	}
	if len(m.Files) != header[2] {
		return Meta{}, fmt.Errorf("atlas meta: header announces %d tiles, found %d", header[2], len(m.Files))
	}
	if header[3] != m.PixelsPerTile() {
		return Meta{}, fmt.Errorf("atlas meta: pixel count %d does not match %dx%d", header[3], m.TileWidth, m.TileHeight)
	}
	return m, nil
}

// Pack flattens every tile into one row of size*size pixels, row i holding
// tile i. Tiles of another size are scaled first. Packed tiles are opaque.
func Pack(tiles []image.Image, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("tile size must be positive, got %d", size)
	}
	out := image.NewRGBA(image.Rect(0, 0, size*size, len(tiles)))
	tile := image.NewRGBA(image.Rect(0, 0, size, size))
	for i, src := range tiles {
		clear(tile.Pix)
		if b := src.Bounds(); b.Dx() == size && b.Dy() == size {
			draw.Copy(tile, image.Point{}, src, b, draw.Src, nil)
		} else {
			draw.CatmullRom.Scale(tile, tile.Bounds(), src, b, draw.Src, nil)
		}
		opaque(tile.Pix)
		// tile.Pix is row-major with Stride == size*4, so it copies as is.
		copy(out.Pix[i*out.Stride:(i+1)*out.Stride], tile.Pix)
	}
	return out, nil
}

// opaque sets full alpha on premultiplied RGBA pixels, keeping the
// straight color. Fully transparent pixels become black.
func opaque(pix []uint8) {
	for i := 0; i+3 < len(pix); i += 4 {
		if a := uint32(pix[i+3]); a != 0 && a != 0xff {
			for c := range 3 {
				pix[i+c] = uint8(min(uint32(pix[i+c])*0xff/a, 0xff))
			}
		}
		pix[i+3] = 0xff
	}
}

// Unpack returns tile i of a packed atlas as a size x size image.
func Unpack(atlas *image.RGBA, size, i int) (*image.RGBA, error) {
	if i < 0 || i >= atlas.Bounds().Dy() || atlas.Bounds().Dx() != size*size {
		return nil, fmt.Errorf("tile %d out of range for atlas %v with tile size %d", i, atlas.Bounds(), size)
	}
	tile := image.NewRGBA(image.Rect(0, 0, size, size))
	copy(tile.Pix, atlas.Pix[i*atlas.Stride:(i+1)*atlas.Stride])
	return tile, nil
}

// Builder collects icons from a directory.
type Builder struct {
	Dir         string
	DefaultIcon string
	TileSize    int
}

// Build packs the default icon followed by files in their given order.
// Duplicates are packed once; files missing from Dir are skipped with a
// warning and later resolve to the default slot.
func (b Builder) Build(files []string) (*image.RGBA, Meta, error) {
	def, err := loadPNG(filepath.Join(b.Dir, b.DefaultIcon))
	if err != nil {
		return nil, Meta{}, fmt.Errorf("loading default icon: %w", err)
	}

	meta := Meta{TileWidth: b.TileSize, TileHeight: b.TileSize, Files: []string{b.DefaultIcon}}
	tiles := []image.Image{def}
	seen := map[string]struct{}{b.DefaultIcon: {}}

	for _, f := range files {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}

		img, err := loadPNG(filepath.Join(b.Dir, f))
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("icon missing, using default", "file", f)
			continue
		}
		if err != nil {
			return nil, Meta{}, fmt.Errorf("loading icon %s: %w", f, err)
		}
		tiles = append(tiles, img)
		meta.Files = append(meta.Files, f)
	}

	packed, err := Pack(tiles, b.TileSize)
	if err != nil {
		return nil, Meta{}, err
	}
	return packed, meta, nil
}

// Save writes the packed image as PNG and its meta file.
func Save(imagePath, metaPath string, img image.Image, meta Meta) error {
	if err := writeFile(imagePath, func(w io.Writer) error { return png.Encode(w, img) }); err != nil {
		return fmt.Errorf("writing atlas image: %w", err)
	}
	if err := writeFile(metaPath, func(w io.Writer) error { return WriteMeta(w, meta) }); err != nil {
		return fmt.Errorf("writing atlas meta: %w", err)
	}
	return nil
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
