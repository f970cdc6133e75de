// Package region tracks the fill state of every fillable element of a drawing.
//
// A [Registry] is built once per loaded drawing. It assigns each closed
// primitive a stable id of the form "shape-N" in document order, records
// the element's initial fill as both the original and the current color, and
// keeps an explicit id -> *Region index. The element only carries the id
// attribute; all state lives here.
//
// A region is filled exactly when its current visual value differs from its
// original color. Rebasing the original color (a canvas change) therefore
// never changes the filled classification of a region it applies to.
package region

import (
	"fmt"
	"strings"

	"github.com/matzehuels/cloverquilt/pkg/drawing"
	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/fill"
	"github.com/matzehuels/cloverquilt/pkg/hexcolor"
)

// IDPrefix prefixes every region id.
const IDPrefix = "shape-"

// DefaultFill is the original color of elements without a fill.
const DefaultFill = hexcolor.DefaultCanvas

// Region is one fillable element.
type Region struct {
	ID            string
	OriginalColor string
	CurrentColor  string
	CurrentFill   fill.Intent

	node *drawing.Node
}

// IsFilled reports whether the region shows something other than its
// original color.
func (r *Region) IsFilled() bool {
	return r.CurrentColor != r.OriginalColor
}

// Node returns the drawing element backing the region.
func (r *Region) Node() *drawing.Node { return r.node }

// FilledClass marks the element of a filled region.
const FilledClass = "filled"

// Paint sets the visual value and the intent together and writes the value
// to the element.
func (r *Region) Paint(visual string, intent fill.Intent) {
	r.CurrentColor = visual
	r.CurrentFill = intent
	r.node.SetPaint("fill", visual)
	if r.IsFilled() {
		r.node.AddClass(FilledClass)
	} else {
		r.node.RemoveClass(FilledClass)
	}
}

// Rebase moves the region's original color to c and repaints it with c.
// Only meaningful for unfilled regions.
func (r *Region) Rebase(c string) {
	r.OriginalColor = c
	r.Paint(c, fill.Color(c))
}

// Snapshot is a read-only copy of a region's state.
type Snapshot struct {
	ID            string      `json:"id"`
	CurrentColor  string      `json:"currentColor"`
	OriginalColor string      `json:"originalColor"`
	IsFilled      bool        `json:"isFilled"`
	Fill          fill.Intent `json:"fill"`
}

// Snapshot copies the region's state.
func (r *Region) Snapshot() Snapshot {
	return Snapshot{
		ID:            r.ID,
		CurrentColor:  r.CurrentColor,
		OriginalColor: r.OriginalColor,
		IsFilled:      r.IsFilled(),
		Fill:          r.CurrentFill,
	}
}

// Registry indexes the regions of one drawing.
type Registry struct {
	byID  map[string]*Region
	order []*Region
}

// Build assigns ids to every fillable element of doc and records their
// initial fills. A drawing without fillable elements is a load error.
func Build(doc *drawing.Document) (*Registry, error) {
	nodes := doc.Fillables()
	if len(nodes) == 0 {
		return nil, errors.New(errors.ErrCodeLoad, "drawing has no fillable regions")
	}

	reg := &Registry{
		byID:  make(map[string]*Region, len(nodes)),
		order: make([]*Region, 0, len(nodes)),
	}
	for i, n := range nodes {
		id := fmt.Sprintf("%s%d", IDPrefix, i)
		orig := initialFill(n)
		r := &Region{
			ID:            id,
			OriginalColor: orig,
			CurrentColor:  orig,
			CurrentFill:   fill.Color(orig),
			node:          n,
		}
		n.SetAttr("id", id)
		n.SetAttr(drawing.RegionAttr, id)
		reg.byID[id] = r
		reg.order = append(reg.order, r)
	}
	return reg, nil
}

// initialFill reads an element's fill. Hex colors are normalized so they
// compare equal to engine-written values; other paint values are kept as
// written.
func initialFill(n *drawing.Node) string {
	v, ok := n.Paint("fill")
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return DefaultFill
	}
	if c, err := hexcolor.Normalize(v); err == nil {
		return c
	}
	return v
}

// Get returns the region with the given id.
func (r *Registry) Get(id string) (*Region, bool) {
	reg, ok := r.byID[id]
	return reg, ok
}

// ColorOf returns a region's current visual value.
func (r *Registry) ColorOf(id string) (string, bool) {
	reg, ok := r.byID[id]
	if !ok {
		return "", false
	}
	return reg.CurrentColor, true
}

// All returns a snapshot of every region keyed by id.
func (r *Registry) All() map[string]Snapshot {
	out := make(map[string]Snapshot, len(r.order))
	for _, reg := range r.order {
		out[reg.ID] = reg.Snapshot()
	}
	return out
}

// List returns snapshots in document order.
func (r *Registry) List() []Snapshot {
	out := make([]Snapshot, len(r.order))
	for i, reg := range r.order {
		out[i] = reg.Snapshot()
	}
	return out
}

// IDs returns the region ids in document order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	for i, reg := range r.order {
		ids[i] = reg.ID
	}
	return ids
}

// Each calls fn for every region in document order.
func (r *Registry) Each(fn func(*Region)) {
	for _, reg := range r.order {
		fn(reg)
	}
}

// Len returns the number of regions.
func (r *Registry) Len() int { return len(r.order) }

// FilledCount counts filled regions with a full sweep.
func (r *Registry) FilledCount() int {
	n := 0
	for _, reg := range r.order {
		if reg.IsFilled() {
			n++
		}
	}
	return n
}
