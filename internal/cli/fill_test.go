package cli

import (
	"context"
	"encoding/json"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/cloverquilt/pkg/engine"
	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/fill"
	"github.com/matzehuels/cloverquilt/pkg/prefs"
)

const testQuilt = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 30 10">
<rect x="0" y="0" width="10" height="10" fill="#ffffff" stroke="#333"/>
<rect x="10" y="0" width="10" height="10" fill="#ffffff" stroke="#333"/>
<circle cx="25" cy="5" r="4" stroke="#333"/>
</svg>`

// newTestCLI returns a CLI with an in-memory store and a private cache.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	c := New(io.Discard, LogInfo)
	c.cfg.Store = prefs.BackendMemory
	c.cfg.CacheDir = t.TempDir()
	return c
}

func writeQuilt(t *testing.T) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "quilt.svg", testQuilt)
}

func TestParseFillFlag(t *testing.T) {
	tests := []struct {
		in      string
		id      string
		want    fill.Intent
		wantErr bool
	}{
		{"shape-0=#ffb3ba", "shape-0", fill.Color("#ffb3ba"), false},
		{"shape-2=color:#000", "shape-2", fill.Color("#000"), false},
		{" shape-1 =pattern:gingham", "shape-1", fill.Pattern("gingham"), false},
		{"shape-0", "", fill.Intent{}, true},
		{"=#000000", "", fill.Intent{}, true},
		{"shape-0=blue", "", fill.Intent{}, true},
		{"shape-0=gradient:x", "", fill.Intent{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, in, err := parseFillFlag(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFillFlag() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if id != tt.id || in != tt.want {
				t.Errorf("parseFillFlag() = %q, %v; want %q, %v", id, in, tt.id, tt.want)
			}
		})
	}
}

func TestSortRegionIDs(t *testing.T) {
	ids := []string{"shape-10", "zeta", "shape-2", "alpha", "shape-0", "shape-x"}
	sortRegionIDs(ids)
	want := []string{"shape-0", "shape-2", "shape-10", "alpha", "shape-x", "zeta"}
	if !slices.Equal(ids, want) {
		t.Errorf("sortRegionIDs() = %v, want %v", ids, want)
	}
}

func TestReadPlan(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plan.toml", `
canvas = "#FFF0E6"
zoom   = 2

[fills]
shape-0 = "#FFB3BA"
shape-1 = "pattern:gingham"
`)
	p, err := readPlan(path)
	if err != nil {
		t.Fatalf("readPlan() error: %v", err)
	}
	if p.Canvas != "#FFF0E6" || p.Zoom == nil || *p.Zoom != 2 {
		t.Errorf("plan = %+v", p)
	}
	if p.Fills["shape-0"] != fill.Color("#FFB3BA") || p.Fills["shape-1"] != fill.Pattern("gingham") {
		t.Errorf("fills = %v", p.Fills)
	}

	bad := writeFile(t, dir, "bad.toml", "[fills]\nshape-0 = \"sparkly\"\n")
	if _, err := readPlan(bad); err == nil {
		t.Error("readPlan() with an invalid fill: error = nil")
	}
	unknown := writeFile(t, dir, "unknown.toml", "backdrop = \"#000000\"\n")
	if _, err := readPlan(unknown); err == nil {
		t.Error("readPlan() with an unknown key: error = nil")
	}
}

func TestFillCommand(t *testing.T) {
	c := newTestCLI(t)
	drawing := writeQuilt(t)
	dir := filepath.Dir(drawing)
	out := filepath.Join(dir, "out.png")
	state := filepath.Join(dir, "design.json")

	cmd := c.fillCommand()
	cmd.SetArgs([]string{drawing,
		"--fill", "shape-0=#FFB3BA",
		"--fill", "shape-9=#000000", // unknown region is skipped
		"--fill", "shape-2=pattern:missing", // unknown pattern is skipped
		"--canvas", "#FFF0E6",
		"--zoom", "1",
		"--save-state", state,
		"-o", out,
		"--scale", "2",
	})
	cmd.SetOut(io.Discard)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("fill: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 20 {
		t.Errorf("size = %v, want 60x20", b.Size())
	}

	data, err := os.ReadFile(state)
	if err != nil {
		t.Fatalf("design not written: %v", err)
	}
	var d engine.Design
	if err := json.Unmarshal(data, &d); err != nil {
		t.Fatal(err)
	}
	if len(d.Fills) != 1 || d.Fills["shape-0"] != fill.Color("#FFB3BA") {
		t.Errorf("fills = %v, want only shape-0", d.Fills)
	}
	if d.Presentation.CanvasColor != "#FFF0E6" || d.Presentation.TileSize != 100 {
		t.Errorf("presentation = %+v", d.Presentation)
	}
}

func TestFillCommandReplaysState(t *testing.T) {
	c := newTestCLI(t)
	drawing := writeQuilt(t)
	dir := filepath.Dir(drawing)
	state := writeFile(t, dir, "design.json",
		`{"fills":{"shape-1":{"type":"color","value":"#BAE1FF"}}}`)
	out := filepath.Join(dir, "out.svg")
	saved := filepath.Join(dir, "saved.json")

	cmd := c.fillCommand()
	cmd.SetArgs([]string{drawing, "--state", state, "--fill", "shape-0=#E6BAFF", "--save-state", saved, "-o", out})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("fill: %v", err)
	}

	data, _ := os.ReadFile(saved)
	var d engine.Design
	if err := json.Unmarshal(data, &d); err != nil {
		t.Fatal(err)
	}
	if len(d.Fills) != 2 {
		t.Errorf("fills = %v, want shape-0 and shape-1", d.Fills)
	}
	svg, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("svg not written: %v", err)
	}
	if !strings.Contains(string(svg), `fill="#E6BAFF"`) || !strings.Contains(string(svg), `fill="#BAE1FF"`) {
		t.Errorf("svg output is missing the replayed fills:\n%s", svg)
	}
}

func TestLoadWorkspaceKeepsDrawingColors(t *testing.T) {
	colored := writeFile(t, t.TempDir(), "colored.svg", `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 20 10">
<rect width="10" height="10" fill="#ff0000" stroke="#00ff00"/>
<rect x="10" width="10" height="10" fill="#0000ff"/>
</svg>`)
	ctx := context.Background()
	c := newTestCLI(t)

	store := prefs.NewMemoryStore()
	ws, err := c.loadWorkspace(ctx, store, colored)
	if err != nil {
		t.Fatalf("loadWorkspace: %v", err)
	}
	snap, _ := ws.engine.Region("shape-0")
	if snap.CurrentColor != "#FF0000" || snap.IsFilled {
		t.Errorf("shape-0 = %+v, want its own #FF0000", snap)
	}
	if svg := string(ws.engine.Document().Bytes()); !strings.Contains(svg, `stroke="#00ff00"`) {
		t.Errorf("stroke was repainted without a stored preference:\n%s", svg)
	}

	if err := prefs.SaveCanvas(ctx, store, "#FFF0E6"); err != nil {
		t.Fatal(err)
	}
	ws, err = c.loadWorkspace(ctx, store, colored)
	if err != nil {
		t.Fatalf("loadWorkspace: %v", err)
	}
	if snap, _ := ws.engine.Region("shape-1"); snap.CurrentColor != "#FFF0E6" {
		t.Errorf("shape-1 = %+v, want the stored canvas color", snap)
	}
}

func TestExportDrawingOutputPaths(t *testing.T) {
	ctx := context.Background()
	c := newTestCLI(t)
	drawing := writeQuilt(t)
	ws, err := c.loadWorkspace(ctx, prefs.NewMemoryStore(), drawing)
	if err != nil {
		t.Fatalf("loadWorkspace: %v", err)
	}

	dir := filepath.Dir(drawing)
	for _, out := range []string{
		defaultOutput(drawing, "-filled", ".svg"),
		filepath.Join(dir, "sub", "..", "up.png"),
	} {
		if !filepath.IsAbs(out) {
			t.Fatalf("%s is not absolute", out)
		}
		if _, err := c.exportDrawing(ctx, ws.engine, exportOpts{output: out, scale: 1}); err != nil {
			t.Errorf("exportDrawing(%s) error: %v", out, err)
			continue
		}
		if _, err := os.Stat(filepath.Clean(out)); err != nil {
			t.Errorf("%s not written: %v", out, err)
		}
	}

	if _, err := c.exportDrawing(ctx, ws.engine, exportOpts{output: " "}); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("exportDrawing(empty) error = %v, want INVALID_PATH", err)
	}
}
