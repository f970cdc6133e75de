package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/cloverquilt/pkg/drawing"
	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/hexcolor"
	"github.com/matzehuels/cloverquilt/pkg/observability"
	"github.com/matzehuels/cloverquilt/pkg/region"
	"github.com/matzehuels/cloverquilt/pkg/tile"
)

const (
	// DefaultScale is the number of pixels per drawing unit.
	DefaultScale = 2.0

	// MaxDimension caps the pixel width and height of a raster.
	MaxDimension = 16384

	defaultMiterLimit = 4
)

// Options configures rasterization.
type Options struct {
	// Scale is pixels per drawing unit. Zero means DefaultScale.
	Scale float64
	// Background is the color painted behind the drawing. Empty means the
	// default canvas color; "none" leaves the raster transparent.
	Background string
}

func (o Options) withDefaults() Options {
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Background == "" {
		o.Background = hexcolor.DefaultCanvas
	}
	return o
}

// style is the inherited presentation state at one element.
type style struct {
	m             rasterx.Matrix2D
	fill          string
	stroke        string
	strokeWidth   float64
	fillOpacity   float64
	strokeOpacity float64
	opacity       float64
	evenOdd       bool
	lineCap       rasterx.CapFunc
	lineJoin      rasterx.JoinMode
}

func rootStyle(m rasterx.Matrix2D) style {
	return style{
		m:             m,
		strokeWidth:   1,
		fillOpacity:   1,
		strokeOpacity: 1,
		opacity:       1,
		lineCap:       rasterx.ButtCap,
		lineJoin:      rasterx.Miter,
	}
}

// inherit returns the style of n given its parent's style.
func (s style) inherit(n *drawing.Node) style {
	if v, ok := n.Paint("fill"); ok && v != "inherit" {
		s.fill = v
	}
	if v, ok := n.Paint("stroke"); ok && v != "inherit" {
		s.stroke = v
	}
	if v, ok := n.Paint("stroke-width"); ok {
		if w, err := drawing.Length(v); err == nil && w >= 0 {
			s.strokeWidth = w
		}
	}
	if v, ok := n.Paint("fill-opacity"); ok {
		s.fillOpacity = opacity(v, s.fillOpacity)
	}
	if v, ok := n.Paint("stroke-opacity"); ok {
		s.strokeOpacity = opacity(v, s.strokeOpacity)
	}
	if v, ok := n.Paint("opacity"); ok {
		s.opacity *= opacity(v, 1)
	}
	if v, ok := n.Paint("fill-rule"); ok {
		s.evenOdd = strings.TrimSpace(v) == "evenodd"
	}
	if v, ok := n.Paint("stroke-linecap"); ok {
		switch strings.TrimSpace(v) {
		case "round":
			s.lineCap = rasterx.RoundCap
		case "square":
			s.lineCap = rasterx.SquareCap
		case "butt":
			s.lineCap = rasterx.ButtCap
		}
	}
	if v, ok := n.Paint("stroke-linejoin"); ok {
		switch strings.TrimSpace(v) {
		case "round":
			s.lineJoin = rasterx.Round
		case "bevel":
			s.lineJoin = rasterx.Bevel
		case "miter":
			s.lineJoin = rasterx.Miter
		}
	}
	if v, ok := n.Attr("transform"); ok {
		if t, err := parseTransform(v); err == nil {
			s.m = s.m.Mult(t)
		}
	}
	return s
}

func opacity(v string, fallback float64) float64 {
	v = strings.TrimSpace(v)
	pct := strings.HasSuffix(v, "%")
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
	if err != nil {
		return fallback
	}
	if pct {
		f /= 100
	}
	return math.Min(math.Max(f, 0), 1)
}

type renderer struct {
	tiles  *tile.Registry
	filler *rasterx.Filler
	dasher *rasterx.Dasher
	// maxTile caps the pixel edge of tile rasters.
	maxTile int
}

// Rasterize paints the drawing into an RGBA image sized to its viewBox
// times the scale. Regions showing a pattern are filled with the tile
// repeated in the region's user space. tiles may be nil when no region
// uses a pattern.
func Rasterize(doc *drawing.Document, tiles *tile.Registry, opts Options) (*image.RGBA, error) {
	if doc == nil || doc.Root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no drawing to render")
	}
	opts = opts.withDefaults()
	if opts.Scale < 0 || math.IsNaN(opts.Scale) || math.IsInf(opts.Scale, 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid scale %v", opts.Scale)
	}
	vb, err := doc.ViewBox()
	if err != nil {
		return nil, err
	}
	if vb.Empty() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "drawing has an empty viewBox")
	}
	w := int(math.Ceil(vb.Width * opts.Scale))
	h := int(math.Ceil(vb.Height * opts.Scale))
	if w < 1 || h < 1 || w > MaxDimension || h > MaxDimension {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"raster size %dx%d is out of range (max %d)", w, h, MaxDimension)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if bg := strings.TrimSpace(opts.Background); bg != "none" {
		c, err := hexcolor.Parse(bg)
		if err != nil {
			return nil, err
		}
		xdraw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, xdraw.Src)
	}

	sc := rasterx.NewScannerGV(w, h, img, img.Bounds())
	r := &renderer{
		tiles:   tiles,
		filler:  rasterx.NewFiller(w, h, sc),
		dasher:  rasterx.NewDasher(w, h, sc),
		maxTile: max(w, h),
	}
	root := rasterx.Identity.Scale(opts.Scale, opts.Scale).Translate(-vb.MinX, -vb.MinY)
	r.walk(doc.Root, rootStyle(root))
	return img, nil
}

func (r *renderer) walk(n *drawing.Node, parent style) {
	if drawing.IsHiddenContainer(n.Name) {
		return
	}
	if v, ok := n.Paint("display"); ok && strings.TrimSpace(v) == "none" {
		return
	}
	s := parent.inherit(n)
	if v, ok := n.Paint("visibility"); !ok || (v != "hidden" && v != "collapse") {
		r.draw(n, s)
	}
	for _, c := range n.Children {
		r.walk(c, s)
	}
}

func (r *renderer) draw(n *drawing.Node, s style) {
	p, _ := geometry(n)
	if len(p) == 0 {
		return
	}

	if n.Name != "line" {
		fill := s.fill
		if fill == "" && drawing.IsFillable(n.Name) {
			fill = region.DefaultFill
		}
		if paint, ok := r.paint(fill, s.fillOpacity*s.opacity, s.m); ok {
			r.filler.SetWinding(!s.evenOdd)
			r.filler.SetColor(paint)
			p.AddTo(&rasterx.MatrixAdder{Adder: r.filler, M: s.m})
			r.filler.Draw()
			r.filler.Clear()
		}
	}

	if s.stroke == "" || s.strokeWidth <= 0 {
		return
	}
	paint, ok := r.paint(s.stroke, s.strokeOpacity*s.opacity, s.m)
	if !ok {
		return
	}
	width := fixed.Int26_6(s.strokeWidth * scaleFactor(s.m) * 64)
	r.dasher.SetStroke(width, defaultMiterLimit<<6, s.lineCap, s.lineCap, rasterx.FlatGap, s.lineJoin, nil, 0)
	r.dasher.SetColor(paint)
	p.AddTo(&rasterx.MatrixAdder{Adder: r.dasher, M: s.m})
	r.dasher.Draw()
	r.dasher.Clear()
}

// paint resolves a paint value to a solid color or, for pattern
// references, a function sampling the tile in the element's user space.
func (r *renderer) paint(value string, alpha float64, m rasterx.Matrix2D) (any, bool) {
	value = strings.TrimSpace(value)
	if value == "" || value == "none" || alpha <= 0 {
		return nil, false
	}
	if strings.HasPrefix(value, "url(") {
		if r.tiles == nil {
			return nil, false
		}
		def, ok := r.tiles.Resolve(value)
		if !ok {
			return nil, false
		}
		inv, ok := invert(m)
		if !ok {
			return nil, false
		}
		sample := def.Sampler(scaleFactor(m), r.maxTile)
		return rasterx.ColorFunc(func(x, y int) color.Color {
			ux, uy := inv.Transform(float64(x)+0.5, float64(y)+0.5)
			c := sample(ux, uy)
			if alpha < 1 {
				return rasterx.ApplyOpacity(c, alpha)
			}
			return c
		}), true
	}
	c, err := hexcolor.Parse(value)
	if err != nil {
		return nil, false
	}
	if alpha < 1 {
		return rasterx.ApplyOpacity(c, alpha), true
	}
	return c, true
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// PNG rasterizes the drawing and encodes it as PNG.
func PNG(doc *drawing.Document, tiles *tile.Registry, opts Options) ([]byte, error) {
	start := time.Now()
	img, err := Rasterize(doc, tiles, opts)
	var data []byte
	if err == nil {
		data, err = EncodePNG(img)
	}
	observability.Design().OnExport("png", len(data), time.Since(start), err)
	return data, err
}
