// Package tile manages the pattern definitions that regions reference when
// they are filled with a pattern.
//
// A definition is created lazily the first time a pattern is applied. It
// lives as a <pattern> element in the drawing's <defs>, sized to the
// registry's single global tile size, and regions point at it through a
// [Reference] ("url(#tile-<id>)"). Resizing rewrites every existing
// definition in place, so regions keep their references across zoom changes.
//
// Definitions are always materialized at the current size, which makes
// registering a definition and changing the size commute: the final sizes
// are the same whichever happens first.
package tile

import (
	"image"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/matzehuels/cloverquilt/pkg/drawing"
	"github.com/matzehuels/cloverquilt/pkg/errors"
)

// ElementPrefix prefixes the id of every <pattern> element.
const ElementPrefix = "tile-"

// DefaultSize is the tile edge length at the default zoom level.
const DefaultSize = 400

// Source provides pattern images by id.
type Source interface {
	// Image returns the decoded image. Unknown ids fail with UNKNOWN_PATTERN.
	Image(id string) (image.Image, error)
	// DataURL returns the image payload embedded in the drawing.
	DataURL(id string) (string, bool)
}

// Reference is the paint value a region shows when filled with a pattern.
type Reference string

// ReferenceFor returns the paint reference for a pattern id.
func ReferenceFor(id string) Reference {
	return Reference("url(#" + ElementPrefix + id + ")")
}

// PatternID extracts the pattern id from a reference.
func (r Reference) PatternID() (string, bool) {
	s, ok := strings.CutPrefix(string(r), "url(#"+ElementPrefix)
	if !ok {
		return "", false
	}
	return strings.CutSuffix(s, ")")
}

// String returns the paint value.
func (r Reference) String() string { return string(r) }

// ParseReference extracts a pattern id from a paint value.
func ParseReference(paint string) (string, bool) {
	return Reference(strings.TrimSpace(paint)).PatternID()
}

// Definition is a materialized pattern.
type Definition struct {
	ID   string
	Size int

	node   *drawing.Node
	img    *drawing.Node
	source image.Image
	// rasters caches resampled tiles keyed by pixel edge length.
	rasters map[int]*image.RGBA
}

// Node returns the <pattern> element.
func (d *Definition) Node() *drawing.Node { return d.node }

// Reference returns the paint value for the definition.
func (d *Definition) Reference() Reference { return ReferenceFor(d.ID) }

func (d *Definition) setSize(n int) {
	d.Size = n
	s := strconv.Itoa(n)
	d.node.SetAttr("width", s)
	d.node.SetAttr("height", s)
	d.img.SetAttr("width", s)
	d.img.SetAttr("height", s)
	d.rasters = nil
}

// Raster returns the tile resampled to px pixels per edge. The image is
// scaled to cover the square and center-cropped, matching the
// "xMidYMid slice" aspect of the embedded <image>.
func (d *Definition) Raster(px int) *image.RGBA {
	if px < 1 {
		px = 1
	}
	if r, ok := d.rasters[px]; ok {
		return r
	}
	dst := image.NewRGBA(image.Rect(0, 0, px, px))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), d.source, coverRect(d.source.Bounds()), xdraw.Src, nil)
	if d.rasters == nil {
		d.rasters = make(map[int]*image.RGBA)
	}
	d.rasters[px] = dst
	return dst
}

// coverRect returns the largest centered square of b.
func coverRect(b image.Rectangle) image.Rectangle {
	side := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}

// Sampler returns a function that reads the tile at a point in the user
// space of the referencing element, with the tile repeating from the origin.
// pxPerUnit selects the raster resolution; the raster edge never exceeds
// maxPx (when positive) or MaxRasterEdge, since a tile drawn larger than
// the output shows no more detail.
func (d *Definition) Sampler(pxPerUnit float64, maxPx int) func(x, y float64) color.Color {
	px := RasterEdge(d.Size, pxPerUnit, maxPx)
	r := d.Raster(px)
	size := float64(d.Size)
	scale := float64(px) / size
	return func(x, y float64) color.Color {
		tx := int(mod(x, size) * scale)
		ty := int(mod(y, size) * scale)
		return r.RGBAAt(min(tx, px-1), min(ty, px-1))
	}
}

// MaxRasterEdge bounds the pixel edge of a tile raster.
const MaxRasterEdge = 4096

// RasterEdge is the pixel edge of a tile of size units drawn at pxPerUnit,
// bounded by maxPx (when positive) and MaxRasterEdge.
func RasterEdge(size int, pxPerUnit float64, maxPx int) int {
	limit := MaxRasterEdge
	if maxPx > 0 {
		limit = min(limit, maxPx)
	}
	edge := float64(size) * pxPerUnit
	if math.IsNaN(edge) || edge < 1 {
		return 1
	}
	if edge >= float64(limit) {
		return limit
	}
	return int(math.Ceil(edge))
}

func mod(v, m float64) float64 {
	r := math.Mod(v, m)
	if r < 0 {
		r += m
	}
	return r
}

// Registry holds the definitions of one drawing.
type Registry struct {
	doc    *drawing.Document
	source Source
	size   int
	defs   map[string]*Definition
}

// New returns an empty registry for doc. A non-positive size selects
// DefaultSize.
func New(doc *drawing.Document, source Source, size int) *Registry {
	if size <= 0 {
		size = DefaultSize
	}
	return &Registry{
		doc:    doc,
		source: source,
		size:   size,
		defs:   make(map[string]*Definition),
	}
}

// Size returns the current global tile size.
func (r *Registry) Size() int { return r.size }

// Ensure returns the reference for a pattern, materializing its definition
// at the current size on first use. Failures leave the registry unchanged.
func (r *Registry) Ensure(id string) (Reference, error) {
	if d, ok := r.defs[id]; ok {
		return d.Reference(), nil
	}
	if err := errors.ValidatePatternID(id); err != nil {
		return "", err
	}
	if r.source == nil {
		return "", errors.New(errors.ErrCodeUnknownPattern, "pattern %q is not available", id)
	}

	img, err := r.source.Image(id)
	if err != nil {
		if errors.Is(err, errors.ErrCodeUnknownPattern) {
			return "", err
		}
		return "", errors.Wrap(errors.ErrCodeAssetDecode, err, "pattern %q cannot be decoded", id)
	}
	if img == nil || img.Bounds().Empty() {
		return "", errors.New(errors.ErrCodeAssetDecode, "pattern %q has no pixels", id)
	}
	href, ok := r.source.DataURL(id)
	if !ok {
		return "", errors.New(errors.ErrCodeUnknownPattern, "pattern %q is not available", id)
	}

	imgNode := drawing.NewNode("image",
		"href", href,
		"x", "0",
		"y", "0",
		"preserveAspectRatio", "xMidYMid slice",
	)
	node := drawing.NewNode("pattern",
		"id", ElementPrefix+id,
		"patternUnits", "userSpaceOnUse",
		"x", "0",
		"y", "0",
	)
	node.AppendChild(imgNode)

	d := &Definition{ID: id, node: node, img: imgNode, source: img}
	d.setSize(r.size)
	r.doc.Defs().AppendChild(node)
	r.defs[id] = d
	return d.Reference(), nil
}

// Resize sets the global tile size and applies it to every definition.
// Calling it again with the same size changes nothing.
func (r *Registry) Resize(n int) error {
	if err := errors.ValidateTileSize(n); err != nil {
		return err
	}
	r.size = n
	for _, d := range r.defs {
		if d.Size != n {
			d.setSize(n)
		}
	}
	return nil
}

// Lookup returns the definition of a pattern.
func (r *Registry) Lookup(id string) (*Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Resolve returns the definition behind a paint value, if it is a tile
// reference.
func (r *Registry) Resolve(paint string) (*Definition, bool) {
	id, ok := ParseReference(paint)
	if !ok {
		return nil, false
	}
	return r.Lookup(id)
}

// Remove deletes a definition and its element. It reports whether one existed.
func (r *Registry) Remove(id string) bool {
	d, ok := r.defs[id]
	if !ok {
		return false
	}
	if p := d.node.Parent(); p != nil {
		p.RemoveChild(d.node)
	}
	delete(r.defs, id)
	return true
}

// Clear deletes every definition and returns how many were removed.
func (r *Registry) Clear() int {
	n := len(r.defs)
	for id := range r.defs {
		r.Remove(id)
	}
	return n
}

// IDs returns the ids of materialized definitions, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of definitions.
func (r *Registry) Len() int { return len(r.defs) }

// ZoomSizes maps zoom levels 0-9 to tile sizes.
var ZoomSizes = [10]int{50, 100, 200, 300, 400, 500, 600, 700, 800, 900}

// DefaultZoom is the zoom level of DefaultSize.
const DefaultZoom = 4

// SizeForZoom returns the tile size of a zoom level.
func SizeForZoom(level int) (int, error) {
	if err := errors.ValidateZoomLevel(level); err != nil {
		return 0, err
	}
	return ZoomSizes[level], nil
}

// ZoomForSize returns the zoom level of a tile size, if it is one of
// ZoomSizes.
func ZoomForSize(size int) (int, bool) {
	for i, s := range ZoomSizes {
		if s == size {
			return i, true
		}
	}
	return 0, false
}
