package engine

import (
	"fmt"
	"testing"

	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/fill"
)

func TestSetStrokeColor(t *testing.T) {
	e := newEngine(t, 3)
	before := e.AllRegions()

	if err := e.SetStrokeColor("#f00"); err != nil {
		t.Fatalf("SetStrokeColor() error: %v", err)
	}
	for _, n := range e.Document().Outlined() {
		if got := n.Get("stroke"); got != "#FF0000" {
			t.Errorf("<%s> stroke = %q, want #FF0000", n.Name, got)
		}
	}
	if e.Presentation().StrokeColor != "#FF0000" {
		t.Errorf("StrokeColor = %q", e.Presentation().StrokeColor)
	}

	after := e.AllRegions()
	for id, r := range before {
		if after[id] != r {
			t.Errorf("%s changed by stroke update", id)
		}
	}

	if err := e.SetStrokeColor("crimson"); !errors.Is(err, errors.ErrCodeInvalidColor) {
		t.Errorf("SetStrokeColor(crimson) error = %v, want INVALID_COLOR", err)
	}
}

func TestSetCanvasColorOnlyUnfilled(t *testing.T) {
	e := newEngine(t, 5)
	e.FillRegion("shape-1", fill.Color("#112233"))
	e.FillRegion("shape-3", fill.Pattern("p1"))

	if err := e.SetCanvasColor("#EEEEEE"); err != nil {
		t.Fatalf("SetCanvasColor() error: %v", err)
	}

	for id, r := range e.AllRegions() {
		switch id {
		case "shape-1":
			if r.CurrentColor != "#112233" || r.OriginalColor != "#FFFFFF" {
				t.Errorf("filled %s = %+v, want untouched", id, r)
			}
		case "shape-3":
			if r.CurrentColor != "url(#tile-p1)" || r.OriginalColor != "#FFFFFF" {
				t.Errorf("filled %s = %+v, want untouched", id, r)
			}
		default:
			if r.CurrentColor != "#EEEEEE" || r.OriginalColor != "#EEEEEE" || r.IsFilled {
				t.Errorf("unfilled %s = %+v, want #EEEEEE and unfilled", id, r)
			}
		}
	}
	if e.FilledCount() != 2 {
		t.Errorf("FilledCount() = %d, want 2", e.FilledCount())
	}
}

func TestCanvasThenResetAll(t *testing.T) {
	e := newEngine(t, 4)
	if err := e.SetCanvasColor("#EEEEEE"); err != nil {
		t.Fatal(err)
	}
	for id, r := range e.AllRegions() {
		if r.OriginalColor != "#EEEEEE" {
			t.Errorf("%s original = %q, want #EEEEEE", id, r.OriginalColor)
		}
	}

	e.FillRegion("shape-0", fill.Color("#112233"))
	e.FillRegion("shape-2", fill.Pattern("p2"))
	e.ResetAll()

	for id, r := range e.AllRegions() {
		if r.CurrentColor != "#EEEEEE" {
			t.Errorf("%s current = %q after ResetAll, want #EEEEEE", id, r.CurrentColor)
		}
	}
}

func TestSetTileSize(t *testing.T) {
	e := newEngine(t, 3)
	e.FillRegion("shape-0", fill.Pattern("p1"))

	for _, n := range []int{100, 100} {
		if err := e.SetTileSize(n); err != nil {
			t.Fatalf("SetTileSize(%d) error: %v", n, err)
		}
	}
	d, _ := e.Tiles().Lookup("p1")
	if d.Size != 100 {
		t.Errorf("p1 size = %d, want 100", d.Size)
	}

	e.FillRegion("shape-1", fill.Pattern("p2"))
	d2, _ := e.Tiles().Lookup("p2")
	if d2.Size != 100 {
		t.Errorf("p2 size = %d, want 100 (registered after resize)", d2.Size)
	}

	if err := e.SetZoomLevel(9); err != nil {
		t.Fatal(err)
	}
	if e.Presentation().TileSize != 900 || d.Size != 900 || d2.Size != 900 {
		t.Errorf("sizes after zoom 9 = %d, %d, %d", e.Presentation().TileSize, d.Size, d2.Size)
	}
	if err := e.SetZoomLevel(12); err == nil {
		t.Error("SetZoomLevel(12) error = nil")
	}
	if err := e.SetTileSize(-1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("SetTileSize(-1) error = %v, want INVALID_INPUT", err)
	}
}

func TestEnsureProperSizing(t *testing.T) {
	e := newEngine(t, 1)
	if err := e.EnsureProperSizing(); err != nil {
		t.Fatal(err)
	}
	root := e.Document().Root
	if _, ok := root.Attr("width"); ok {
		t.Error("width still set")
	}
	if !root.HasClass("auto-fit-svg") || root.Get("viewBox") != "0 0 1200 100" {
		t.Errorf("root attrs = %+v", root.Attrs)
	}
}

func TestRemovePattern(t *testing.T) {
	e := newEngine(t, 4)
	e.SetCanvasColor("#EEEEEE")
	e.FillRegion("shape-0", fill.Pattern("p1"))
	e.FillRegion("shape-1", fill.Pattern("p1"))
	e.FillRegion("shape-2", fill.Pattern("p2"))

	n, err := e.RemovePattern("p1")
	if err != nil || n != 2 {
		t.Fatalf("RemovePattern(p1) = %d, %v, want 2", n, err)
	}
	for _, id := range []string{"shape-0", "shape-1"} {
		r, _ := e.Region(id)
		if r.IsFilled || r.CurrentColor != "#EEEEEE" {
			t.Errorf("%s = %+v, want reset to canvas", id, r)
		}
	}
	if e.Document().FindByID("tile-p1") != nil {
		t.Error("tile-p1 still in drawing")
	}
	if e.FilledCount() != 1 {
		t.Errorf("FilledCount() = %d, want 1", e.FilledCount())
	}

	if _, err := e.RemovePattern("p1"); !errors.Is(err, errors.ErrCodeUnknownPattern) {
		t.Errorf("second RemovePattern(p1) error = %v, want UNKNOWN_PATTERN", err)
	}

	n, _ = e.ClearPatterns()
	if n != 1 || e.FilledCount() != 0 || e.Tiles().Len() != 0 {
		t.Errorf("ClearPatterns() = %d, filled %d, tiles %d", n, e.FilledCount(), e.Tiles().Len())
	}
}

func TestWithPresentation(t *testing.T) {
	e := newEngine(t, 3, WithPresentation(Presentation{
		StrokeColor: "#123456",
		CanvasColor: "#fafafa",
		TileSize:    300,
	}))

	p := e.Presentation()
	if p.StrokeColor != "#123456" || p.CanvasColor != "#FAFAFA" || p.TileSize != 300 {
		t.Errorf("Presentation() = %+v", p)
	}
	for i := 0; i < 3; i++ {
		r, _ := e.Region(fmt.Sprintf("shape-%d", i))
		if r.OriginalColor != "#FAFAFA" || r.IsFilled {
			t.Errorf("shape-%d = %+v, want canvas original", i, r)
		}
	}
}
