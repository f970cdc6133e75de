// Package engine is the fill-assignment core of cloverquilt.
//
// An [Engine] owns one loaded drawing together with its region registry,
// its pattern tile registry and the document-wide presentation state
// (stroke color, canvas color, tile size). Every operation is synchronous
// and runs to completion before the next one starts; controllers that serve
// concurrent callers (the HTTP API, the terminal painter) serialize access.
//
// # Filling
//
//	prev, err := eng.FillRegion("shape-3", fill.Color("#112233"))
//	prev, err = eng.FillRegion("shape-4", fill.Pattern(p.ID))
//
// A fill either fully applies or leaves the region untouched. A region
// counts as filled when its visible value differs from its original color.
//
// # Presentation
//
// Stroke color is cosmetic. Canvas color rewrites the original color of
// every unfilled region, so a later reset returns regions to the current
// canvas rather than to the drawing's initial fills. Tile size is a single
// global value applied to every pattern definition.
package engine

import (
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cloverquilt/pkg/drawing"
	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/fill"
	"github.com/matzehuels/cloverquilt/pkg/hexcolor"
	"github.com/matzehuels/cloverquilt/pkg/observability"
	"github.com/matzehuels/cloverquilt/pkg/region"
	"github.com/matzehuels/cloverquilt/pkg/tile"
)

// Presentation is the document-wide visual state.
type Presentation struct {
	StrokeColor string `json:"strokeColor"`
	CanvasColor string `json:"canvasColor"`
	TileSize    int    `json:"tileSize"`
}

// DefaultPresentation returns the state of a freshly loaded drawing.
func DefaultPresentation() Presentation {
	return Presentation{
		StrokeColor: hexcolor.DefaultStroke,
		CanvasColor: hexcolor.DefaultCanvas,
		TileSize:    tile.DefaultSize,
	}
}

// Engine applies fills and presentation changes to one drawing.
type Engine struct {
	source tile.Source
	logger *log.Logger

	// initial is applied to every newly loaded drawing.
	initial *Presentation

	doc     *drawing.Document
	regions *region.Registry
	tiles   *tile.Registry
	pres    Presentation
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithPresentation applies p to every drawing right after it loads. Empty
// colors and a zero tile size keep the defaults and leave the drawing's own
// colors alone.
func WithPresentation(p Presentation) Option {
	return func(e *Engine) { e.initial = &p }
}

// New returns an engine with no drawing loaded. source resolves pattern
// ids; it may be nil when patterns are not used.
func New(source tile.Source, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		logger: log.Default(),
		pres:   DefaultPresentation(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load reads the drawing at path and initializes the engine with it.
func (e *Engine) Load(path string) (int, error) {
	doc, err := drawing.Load(path)
	if err != nil {
		observability.Design().OnLoad(0, 0, err)
		return 0, errors.Wrap(errors.ErrCodeLoad, err, "cannot load %s", path)
	}
	return e.Initialize(doc)
}

// Initialize replaces all engine state with doc and returns the number of
// regions. On failure the previously loaded drawing, if any, stays active.
func (e *Engine) Initialize(doc *drawing.Document) (int, error) {
	start := time.Now()
	regions, err := region.Build(doc)
	if err != nil {
		if !errors.Is(err, errors.ErrCodeLoad) {
			err = errors.Wrap(errors.ErrCodeLoad, err, "cannot initialize drawing")
		}
		observability.Design().OnLoad(0, time.Since(start), err)
		return 0, err
	}

	pres := DefaultPresentation()
	if e.initial != nil && e.initial.TileSize > 0 {
		if err := errors.ValidateTileSize(e.initial.TileSize); err == nil {
			pres.TileSize = e.initial.TileSize
		}
	}

	e.doc = doc
	e.regions = regions
	e.tiles = tile.New(doc, e.source, pres.TileSize)
	e.pres = pres

	if e.initial != nil {
		if c := e.initial.StrokeColor; c != "" {
			if err := e.SetStrokeColor(c); err != nil {
				e.logger.Warn("ignoring initial stroke color", "color", c, "err", err)
			}
		}
		if c := e.initial.CanvasColor; c != "" {
			if err := e.SetCanvasColor(c); err != nil {
				e.logger.Warn("ignoring initial canvas color", "color", c, "err", err)
			}
		}
	}

	n := regions.Len()
	e.logger.Info("drawing loaded", "regions", n)
	observability.Design().OnLoad(n, time.Since(start), nil)
	return n, nil
}

// Loaded reports whether a drawing is active.
func (e *Engine) Loaded() bool { return e.regions != nil }

// Document returns the live drawing, or nil before the first load.
func (e *Engine) Document() *drawing.Document { return e.doc }

// Tiles returns the pattern tile registry of the active drawing.
func (e *Engine) Tiles() *tile.Registry { return e.tiles }

// Presentation returns the current presentation state.
func (e *Engine) Presentation() Presentation { return e.pres }

func (e *Engine) requireLoaded() error {
	if e.regions == nil {
		return errors.New(errors.ErrCodeLoad, "no drawing loaded")
	}
	return nil
}

// FillRegion applies intent to a region and returns the intent it replaced.
//
// Colors are normalized before they are applied. Patterns are resolved
// through the tile registry, which materializes the definition on first use.
// Any failure leaves the region exactly as it was.
func (e *Engine) FillRegion(id string, intent fill.Intent) (fill.Intent, error) {
	prev, err := e.fillRegion(id, intent)
	observability.Design().OnFill(id, intent.Kind().String(), err)
	if err != nil {
		e.logger.Debug("fill rejected", "region", id, "fill", intent, "err", err)
		return fill.Intent{}, err
	}
	e.logger.Debug("region filled", "region", id, "fill", intent)
	return prev, nil
}

func (e *Engine) fillRegion(id string, intent fill.Intent) (fill.Intent, error) {
	if err := e.requireLoaded(); err != nil {
		return fill.Intent{}, err
	}
	r, ok := e.regions.Get(id)
	if !ok {
		return fill.Intent{}, errors.New(errors.ErrCodeUnknownRegion, "no region %q", id)
	}
	prev := r.CurrentFill

	switch intent.Kind() {
	case fill.KindColor:
		c, err := hexcolor.Normalize(intent.Value())
		if err != nil {
			return fill.Intent{}, err
		}
		r.Paint(c, fill.Color(c))
	case fill.KindPattern:
		ref, err := e.tiles.Ensure(intent.Value())
		if err != nil {
			return fill.Intent{}, err
		}
		r.Paint(ref.String(), intent)
	default:
		return fill.Intent{}, intent.Validate()
	}
	return prev, nil
}

// ResetRegion returns a region to its original color.
func (e *Engine) ResetRegion(id string) (fill.Intent, error) {
	if err := e.requireLoaded(); err != nil {
		return fill.Intent{}, err
	}
	r, ok := e.regions.Get(id)
	if !ok {
		return fill.Intent{}, errors.New(errors.ErrCodeUnknownRegion, "no region %q", id)
	}
	prev := r.CurrentFill
	// The original may be a paint value that is not a hex color (a gradient
	// reference from the drawing), so it is written back verbatim.
	r.Paint(r.OriginalColor, fill.Color(r.OriginalColor))
	return prev, nil
}

// ResetAll returns every region to its original color.
func (e *Engine) ResetAll() error {
	if err := e.requireLoaded(); err != nil {
		return err
	}
	e.regions.Each(func(r *region.Region) {
		r.Paint(r.OriginalColor, fill.Color(r.OriginalColor))
	})
	e.logger.Debug("all regions reset", "regions", e.regions.Len())
	observability.Design().OnReset(e.regions.Len())
	return nil
}

// ColorOf returns the current visual value of a region.
func (e *Engine) ColorOf(id string) (string, bool) {
	if e.regions == nil {
		return "", false
	}
	return e.regions.ColorOf(id)
}

// Region returns a snapshot of one region.
func (e *Engine) Region(id string) (region.Snapshot, error) {
	if err := e.requireLoaded(); err != nil {
		return region.Snapshot{}, err
	}
	r, ok := e.regions.Get(id)
	if !ok {
		return region.Snapshot{}, errors.New(errors.ErrCodeUnknownRegion, "no region %q", id)
	}
	return r.Snapshot(), nil
}

// AllRegions returns a snapshot of every region keyed by id.
func (e *Engine) AllRegions() map[string]region.Snapshot {
	if e.regions == nil {
		return map[string]region.Snapshot{}
	}
	return e.regions.All()
}

// Regions returns region snapshots in document order.
func (e *Engine) Regions() []region.Snapshot {
	if e.regions == nil {
		return nil
	}
	return e.regions.List()
}

// FilledCount returns the number of filled regions.
func (e *Engine) FilledCount() int {
	if e.regions == nil {
		return 0
	}
	return e.regions.FilledCount()
}

// RegionCount returns the number of regions.
func (e *Engine) RegionCount() int {
	if e.regions == nil {
		return 0
	}
	return e.regions.Len()
}

// patternRegions returns regions currently showing one of the given
// patterns, or any pattern when ids is nil.
func (e *Engine) patternRegions(ids map[string]bool) []*region.Region {
	var out []*region.Region
	e.regions.Each(func(r *region.Region) {
		if r.CurrentFill.Kind() != fill.KindPattern {
			return
		}
		if ids == nil || ids[r.CurrentFill.Value()] {
			out = append(out, r)
		}
	})
	return out
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
