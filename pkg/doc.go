// Package pkg provides the core libraries for Cloverquilt region filling.
//
// # Overview
//
// Cloverquilt loads an SVG line drawing (a quilt block, a coloring page),
// treats every closed shape as a fillable region, and lets the user fill
// regions with solid colors or tiled fabric patterns. The pkg directory is
// organized into three areas:
//
//  1. Domain logic (drawing, regions, fills, pattern tiles, the engine)
//  2. Output (rasterization and PNG export)
//  3. Infrastructure (preference stores, export cache, errors, hooks)
//
// # Architecture
//
// The typical data flow through Cloverquilt:
//
//	SVG drawing
//	     ↓
//	[drawing] package (parse into an editable element tree)
//	     ↓
//	[region] package (discover fillable shapes, assign shape-N ids)
//	     ↓
//	[engine] package (fill, reset, presentation, pattern tiles)
//	     ↓
//	[render] package (rasterize) → SVG/PNG output
//
// # Quick Start
//
// Fill a region and export a PNG:
//
//	lib := patterns.NewLibrary()
//	gingham, _ := lib.Add("gingham.png", data, false)
//
//	eng := engine.New(lib)
//	if _, err := eng.Load("quilt.svg"); err != nil {
//	    return err
//	}
//	eng.FillRegion("shape-0", fill.Color("#FFB3BA"))
//	eng.FillRegion("shape-1", fill.Pattern(gingham.ID))
//	eng.SetZoomLevel(2)
//
//	png, _ := render.PNG(eng.Document(), eng.Tiles(), render.Options{Scale: 2})
//
// # Main Packages
//
// ## Domain
//
// [drawing] - A mutable SVG element tree with lossless serialization and
// helpers for paint attributes and the shared <defs> section.
//
// [region] - The region registry. Every fillable shape gets a stable id and
// a record of its original color, current color and current fill.
//
// [fill] - The fill intent: a solid color or a pattern reference, with JSON
// and text forms.
//
// [patterns] - The pattern library: uploaded and default fabric images keyed
// by id, with persisted records.
//
// [tile] - The tile registry. One <pattern> element per pattern in use,
// resized when the tile size (zoom) changes.
//
// [engine] - The fill engine and presentation adjuster. All region and
// presentation changes go through it.
//
// [hexcolor] - Hex color normalization, parsing and contrast helpers.
//
// ## Output
//
// [render] - A small SVG rasterizer for the shapes regions are made of,
// with pattern tiles painted from the tile registry.
//
// ## Infrastructure
//
// [prefs] - Persisted preferences (palette, patterns, stroke, canvas, zoom)
// behind file, memory, Redis and MongoDB stores.
//
// [cache] - A TTL cache for PNG exports, keyed by drawing content and
// render options.
//
// [server] - The HTTP API over a loaded engine.
//
// [errors] - Coded errors with user-facing messages and input validators.
//
// [observability] - Hooks for fills, tile changes and exports.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/engine/...    # Specific package
//
// [drawing]: https://pkg.go.dev/github.com/matzehuels/cloverquilt/pkg/drawing
// [region]: https://pkg.go.dev/github.com/matzehuels/cloverquilt/pkg/region
// [fill]: https://pkg.go.dev/github.com/matzehuels/cloverquilt/pkg/fill
// [patterns]: https://pkg.go.dev/github.com/matzehuels/cloverquilt/pkg/patterns
// [tile]: https://pkg.go.dev/github.com/matzehuels/cloverquilt/pkg/tile
// [engine]: https://pkg.go.dev/github.com/matzehuels/cloverquilt/pkg/engine
// [hexcolor]: https://pkg.go.dev/github.com/matzehuels/cloverquilt/pkg/hexcolor
// [render]: https://pkg.go.dev/github.com/matzehuels/cloverquilt/pkg/render
// [prefs]: https://pkg.go.dev/github.com/matzehuels/cloverquilt/pkg/prefs
// [cache]: https://pkg.go.dev/github.com/matzehuels/cloverquilt/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/cloverquilt/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/cloverquilt/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/cloverquilt/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/cloverquilt/pkg/buildinfo
package pkg
