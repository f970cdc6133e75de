// Package render rasterizes a quilt drawing to pixels.
//
// # Overview
//
// The browser shows the live drawing as SVG. For files, previews and the
// HTTP export endpoint this package paints the same document with
// [github.com/srwiley/rasterx]:
//
//	img, err := render.Rasterize(eng.Document(), eng.Tiles(), render.Options{Scale: 2})
//	png, err := render.PNG(eng.Document(), eng.Tiles(), render.Options{})
//
// # Coverage
//
// Path data and point lists are compiled with the path cursor of
// [github.com/srwiley/oksvg] (all commands, absolute and relative, including
// elliptical arcs). Rounded rects, circles and ellipses come from the rasterx
// shape helpers. Geometry is kept in 26.6 fixed point in user units, so
// coordinates finer than 1/64 of a unit are rounded. The transform attribute
// is honored along the ancestor chain as a rasterx.Matrix2D. Fill, stroke, their opacities, fill-rule, stroke-linecap and
// stroke-linejoin are inherited the way SVG inherits them. Elements inside
// defs, pattern, clipPath, mask, symbol, marker and gradients are never
// painted directly.
//
// Pattern fills are resolved through the [tile.Registry]: a region showing
// url(#tile-<id>) is painted with the tile repeated from the origin of its
// user space, at the registry's tile size. Tile rasters are never resampled
// larger than the output image. Other url() paints (gradients
// carried by the source drawing) are skipped.
//
// A region without a fill of its own is painted with the default canvas
// color, matching the original color the region registry records for it.
//
// [tile.Registry]: github.com/matzehuels/cloverquilt/pkg/tile.Registry
package render
