package region

import (
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/cloverquilt/pkg/drawing"
	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/fill"
)

func parse(t *testing.T, s string) *drawing.Document {
	t.Helper()
	doc, err := drawing.ParseString(s)
	if err != nil {
		t.Fatalf("ParseString() error: %v", err)
	}
	return doc
}

func grid(n int) string {
	var b strings.Builder
	b.WriteString(`<svg viewBox="0 0 1200 100">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<rect x="%d" y="0" width="100" height="100" fill="#ffffff"/>`, i*100)
	}
	b.WriteString(`</svg>`)
	return b.String()
}

func TestBuild(t *testing.T) {
	doc := parse(t, `<svg>
		<path d="M0 0h1v1z" fill="#abc"/>
		<rect width="1" height="1" style="fill: #112233"/>
		<circle r="1"/>
		<ellipse rx="1" ry="1" fill="url(#g)"/>
	</svg>`)

	reg, err := Build(doc)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if reg.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", reg.Len())
	}

	want := map[string]string{
		"shape-0": "#AABBCC",
		"shape-1": "#112233",
		"shape-2": "#FFFFFF",
		"shape-3": "url(#g)",
	}
	for id, color := range want {
		r, ok := reg.Get(id)
		if !ok {
			t.Fatalf("Get(%q) not found", id)
		}
		if r.OriginalColor != color || r.CurrentColor != color {
			t.Errorf("%s colors = %q/%q, want %q", id, r.OriginalColor, r.CurrentColor, color)
		}
		if r.CurrentFill != fill.Color(color) {
			t.Errorf("%s fill = %v, want color:%s", id, r.CurrentFill, color)
		}
		if r.IsFilled() {
			t.Errorf("%s IsFilled() = true after build", id)
		}
		if r.Node().Get("id") != id || r.Node().Get(drawing.RegionAttr) != id {
			t.Errorf("%s element ids = %q/%q", id, r.Node().Get("id"), r.Node().Get(drawing.RegionAttr))
		}
	}

	if got := strings.Join(reg.IDs(), ","); got != "shape-0,shape-1,shape-2,shape-3" {
		t.Errorf("IDs() = %s", got)
	}
}

func TestBuildNoRegions(t *testing.T) {
	_, err := Build(parse(t, `<svg><g><line x2="1"/></g></svg>`))
	if !errors.Is(err, errors.ErrCodeLoad) {
		t.Errorf("Build() error = %v, want LOAD_ERROR", err)
	}
}

func TestFilledCount(t *testing.T) {
	reg, err := Build(parse(t, grid(12)))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	steps := []struct {
		id     string
		visual string
		intent fill.Intent
	}{
		{"shape-3", "#112233", fill.Color("#112233")},
		{"shape-4", "url(#tile-p1)", fill.Pattern("p1")},
		{"shape-3", "#445566", fill.Color("#445566")},
		{"shape-4", "#FFFFFF", fill.Color("#FFFFFF")},
		{"shape-11", "#000000", fill.Color("#000000")},
	}
	for _, s := range steps {
		r, _ := reg.Get(s.id)
		r.Paint(s.visual, s.intent)

		sweep := 0
		for _, snap := range reg.All() {
			if snap.CurrentColor != snap.OriginalColor {
				sweep++
			}
		}
		if got := reg.FilledCount(); got != sweep {
			t.Errorf("after %s=%s FilledCount() = %d, sweep = %d", s.id, s.visual, got, sweep)
		}
	}

	if got := reg.FilledCount(); got != 2 {
		t.Errorf("FilledCount() = %d, want 2", got)
	}
	if c, _ := reg.ColorOf("shape-3"); c != "#445566" {
		t.Errorf("ColorOf(shape-3) = %q, want #445566", c)
	}
	if _, ok := reg.ColorOf("shape-99"); ok {
		t.Error("ColorOf(shape-99) ok = true, want false")
	}
}

func TestPaintWritesElement(t *testing.T) {
	reg, _ := Build(parse(t, `<svg><rect style="fill:#000;stroke:red"/></svg>`))
	r, _ := reg.Get("shape-0")
	r.Paint("url(#tile-p1)", fill.Pattern("p1"))

	if got := r.Node().Get("fill"); got != "url(#tile-p1)" {
		t.Errorf("fill attr = %q, want url(#tile-p1)", got)
	}
	if got := r.Node().Get("style"); got != "stroke:red" {
		t.Errorf("style = %q, want stroke:red", got)
	}
}

func TestRebase(t *testing.T) {
	reg, _ := Build(parse(t, grid(2)))
	r, _ := reg.Get("shape-1")
	r.Rebase("#EEEEEE")

	if r.OriginalColor != "#EEEEEE" || r.CurrentColor != "#EEEEEE" {
		t.Errorf("colors = %q/%q, want #EEEEEE", r.OriginalColor, r.CurrentColor)
	}
	if r.IsFilled() {
		t.Error("IsFilled() = true after Rebase")
	}
	if r.CurrentFill != fill.Color("#EEEEEE") {
		t.Errorf("CurrentFill = %v, want color:#EEEEEE", r.CurrentFill)
	}
}

func TestList(t *testing.T) {
	reg, _ := Build(parse(t, grid(3)))
	list := reg.List()
	if len(list) != 3 || list[0].ID != "shape-0" || list[2].ID != "shape-2" {
		t.Errorf("List() = %+v", list)
	}

	var seen []string
	reg.Each(func(r *Region) { seen = append(seen, r.ID) })
	if strings.Join(seen, ",") != "shape-0,shape-1,shape-2" {
		t.Errorf("Each() order = %v", seen)
	}
}

func TestFilledClass(t *testing.T) {
	reg, _ := Build(parse(t, `<svg><rect class="petal" fill="#FFFFFF"/></svg>`))
	r, _ := reg.Get("shape-0")

	r.Paint("#112233", fill.Color("#112233"))
	if got := r.Node().Get("class"); got != "petal filled" {
		t.Errorf("class = %q, want %q", got, "petal filled")
	}

	r.Paint("#FFFFFF", fill.Color("#FFFFFF"))
	if got := r.Node().Get("class"); got != "petal" {
		t.Errorf("class = %q, want %q", got, "petal")
	}
}
