package engine

import (
	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/hexcolor"
	"github.com/matzehuels/cloverquilt/pkg/observability"
	"github.com/matzehuels/cloverquilt/pkg/region"
	"github.com/matzehuels/cloverquilt/pkg/tile"
)

// SetStrokeColor recolors the outline of every primitive. Region state is
// not affected.
func (e *Engine) SetStrokeColor(c string) error {
	if err := e.requireLoaded(); err != nil {
		return err
	}
	hex, err := hexcolor.Normalize(c)
	if err != nil {
		return err
	}
	for _, n := range e.doc.Outlined() {
		n.SetPaint("stroke", hex)
	}
	e.pres.StrokeColor = hex
	e.logger.Debug("stroke color set", "color", hex)
	return nil
}

// SetCanvasColor sets the background color. Every unfilled region takes c
// as both its original and its current color; filled regions keep their
// fill and their original color.
func (e *Engine) SetCanvasColor(c string) error {
	if err := e.requireLoaded(); err != nil {
		return err
	}
	hex, err := hexcolor.Normalize(c)
	if err != nil {
		return err
	}
	rebased := 0
	e.regions.Each(func(r *region.Region) {
		if !r.IsFilled() {
			r.Rebase(hex)
			rebased++
		}
	})
	e.pres.CanvasColor = hex
	e.logger.Debug("canvas color set", "color", hex, "rebased", rebased)
	return nil
}

// SetTileSize resizes every pattern definition to n drawing units.
func (e *Engine) SetTileSize(n int) error {
	if err := e.requireLoaded(); err != nil {
		return err
	}
	if err := e.tiles.Resize(n); err != nil {
		return err
	}
	e.pres.TileSize = n
	observability.Design().OnTileResize(n, e.tiles.Len())
	e.logger.Debug("tile size set", "size", n, "definitions", e.tiles.Len())
	return nil
}

// SetZoomLevel sets the tile size of a zoom level (0-9).
func (e *Engine) SetZoomLevel(level int) error {
	size, err := tile.SizeForZoom(level)
	if err != nil {
		return err
	}
	return e.SetTileSize(size)
}

// EnsureProperSizing makes the drawing scale to fit its container while
// keeping its aspect ratio.
func (e *Engine) EnsureProperSizing() error {
	if err := e.requireLoaded(); err != nil {
		return err
	}
	e.doc.FitViewport()
	return nil
}

// RemovePattern drops the definition of a pattern from the drawing.
// Regions showing the pattern are reset to the canvas color, so no region
// is left referencing a definition that no longer exists. It returns the
// number of regions reset.
func (e *Engine) RemovePattern(id string) (int, error) {
	if err := e.requireLoaded(); err != nil {
		return 0, err
	}
	affected := e.patternRegions(map[string]bool{id: true})
	for _, r := range affected {
		r.Rebase(e.pres.CanvasColor)
	}
	if !e.tiles.Remove(id) && len(affected) == 0 {
		return 0, errors.New(errors.ErrCodeUnknownPattern, "pattern %q is not in use", id)
	}
	e.logger.Debug("pattern removed", "pattern", id, "reset", len(affected))
	return len(affected), nil
}

// ClearPatterns drops every pattern definition and resets the regions that
// showed them to the canvas color. It returns the number of regions reset.
func (e *Engine) ClearPatterns() (int, error) {
	if err := e.requireLoaded(); err != nil {
		return 0, err
	}
	affected := e.patternRegions(nil)
	for _, r := range affected {
		r.Rebase(e.pres.CanvasColor)
	}
	n := e.tiles.Clear()
	e.logger.Debug("patterns cleared", "definitions", n, "reset", len(affected))
	return len(affected), nil
}
