package engine

import (
	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/fill"
	"github.com/matzehuels/cloverquilt/pkg/region"
)

// Design is a saved quilt: the fills of every filled region plus the
// presentation state. It can be replayed onto the same drawing later.
type Design struct {
	Presentation Presentation           `json:"presentation"`
	Fills        map[string]fill.Intent `json:"fills"`
}

// Snapshot captures the current design. Unfilled regions are omitted.
func (e *Engine) Snapshot() Design {
	d := Design{
		Presentation: e.pres,
		Fills:        make(map[string]fill.Intent),
	}
	if e.regions == nil {
		return d
	}
	e.regions.Each(func(r *region.Region) {
		if r.IsFilled() {
			d.Fills[r.ID] = r.CurrentFill
		}
	})
	return d
}

// Restore replays a design onto the active drawing. Presentation is applied
// first so that the canvas color becomes the original of regions the design
// leaves unfilled. Fills that name unknown regions or patterns are skipped
// and reported; the rest are applied in region id order.
func (e *Engine) Restore(d Design) (int, []error) {
	if err := e.requireLoaded(); err != nil {
		return 0, []error{err}
	}

	var errs []error
	p := d.Presentation
	if p.CanvasColor != "" {
		if err := e.SetCanvasColor(p.CanvasColor); err != nil {
			errs = append(errs, errors.Wrap(errors.GetCode(err), err, "canvas color"))
		}
	}
	if p.StrokeColor != "" {
		if err := e.SetStrokeColor(p.StrokeColor); err != nil {
			errs = append(errs, errors.Wrap(errors.GetCode(err), err, "stroke color"))
		}
	}
	if p.TileSize > 0 {
		if err := e.SetTileSize(p.TileSize); err != nil {
			errs = append(errs, errors.Wrap(errors.GetCode(err), err, "tile size"))
		}
	}

	applied := 0
	for _, id := range sortedKeys(d.Fills) {
		in := d.Fills[id]
		if in.IsZero() {
			continue
		}
		if _, err := e.FillRegion(id, in); err != nil {
			e.logger.Warn("skipping saved fill", "region", id, "fill", in, "err", err)
			errs = append(errs, err)
			continue
		}
		applied++
	}
	e.logger.Info("design restored", "applied", applied, "skipped", len(errs))
	return applied, errs
}
