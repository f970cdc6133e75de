package cli

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/cloverquilt/pkg/patterns"
	"github.com/matzehuels/cloverquilt/pkg/prefs"
	"github.com/matzehuels/cloverquilt/pkg/tile"
)

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestPaint(t *testing.T) (paintModel, prefs.Store) {
	t.Helper()
	c := newTestCLI(t)
	store := prefs.NewMemoryStore()
	ws, err := c.loadWorkspace(context.Background(), store, writeQuilt(t))
	if err != nil {
		t.Fatalf("loadWorkspace: %v", err)
	}
	return newPaintModel(context.Background(), ws, nil), store
}

func press(m paintModel, ks ...string) paintModel {
	for _, k := range ks {
		next, _ := m.Update(keys(k))
		m = next.(paintModel)
	}
	return m
}

func TestPaletteSlot(t *testing.T) {
	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"1", 0, true},
		{"9", 8, true},
		{"0", 9, true},
		{"a", 0, false},
		{"12", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := paletteSlot(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("paletteSlot(%q) = %d, %v; want %d, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPaintNavigation(t *testing.T) {
	m, _ := newTestPaint(t)
	if len(m.regions) != 3 {
		t.Fatalf("regions = %v, want 3", m.regions)
	}

	m = press(m, "j", "j", "j")
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want clamped to 2", m.Cursor)
	}
	m = press(m, "k", "k", "k", "k")
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0", m.Cursor)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 3})
	if got := next.(paintModel).Height; got != 5 {
		t.Errorf("Height = %d, want minimum 5", got)
	}
}

func TestPaintPaletteFillAndReset(t *testing.T) {
	m, _ := newTestPaint(t)
	eng := m.ws.engine

	m = press(m, "j", "1")
	snap, err := eng.Region("shape-1")
	if err != nil {
		t.Fatal(err)
	}
	if !snap.IsFilled || snap.CurrentColor != m.palette[0] {
		t.Errorf("shape-1 = %+v, want palette slot 1 (%s)", snap, m.palette[0])
	}
	if m.failed {
		t.Errorf("status = %q, want success", m.status)
	}

	m = press(m, "x")
	if snap, _ := eng.Region("shape-1"); snap.IsFilled {
		t.Error("x did not reset the region")
	}

	m = press(m, "2", "j", "3", "R")
	if n := eng.FilledCount(); n != 0 {
		t.Errorf("FilledCount() after R = %d, want 0", n)
	}
	if !strings.Contains(m.View(), "0/3 filled") {
		t.Error("View() does not show the filled count")
	}
}

func TestPaintPatternCycling(t *testing.T) {
	m, _ := newTestPaint(t)

	m = press(m, "p")
	if !m.failed {
		t.Error("p with an empty library should report an error")
	}

	for _, id := range []string{"gingham", "plaid"} {
		asset, err := patterns.Decode(id+".png", tinyPNG(t))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := m.ws.library.RegisterWithID(id, asset, false); err != nil {
			t.Fatal(err)
		}
	}
	m.patterns = m.ws.library.IDs()

	m = press(m, "p")
	snap, _ := m.ws.engine.Region("shape-0")
	if snap.CurrentColor != "url(#tile-"+m.patterns[0]+")" {
		t.Errorf("CurrentColor = %q after p, want the first pattern", snap.CurrentColor)
	}
	m = press(m, "P")
	snap, _ = m.ws.engine.Region("shape-0")
	if snap.CurrentColor != "url(#tile-"+m.patterns[1]+")" {
		t.Errorf("CurrentColor = %q after P, want a wrap to the last pattern", snap.CurrentColor)
	}
}

func TestPaintZoomPersists(t *testing.T) {
	m, store := newTestPaint(t)
	ctx := context.Background()

	m = press(m, "+")
	want := tile.ZoomSizes[tile.DefaultZoom+1]
	if got := m.ws.engine.Presentation().TileSize; got != want {
		t.Errorf("TileSize = %d, want %d", got, want)
	}
	state, _ := prefs.Load(ctx, store)
	if state.TileSize() != want {
		t.Errorf("stored tile size = %d, want %d", state.TileSize(), want)
	}

	for range len(tile.ZoomSizes) + 2 {
		m = press(m, "-")
	}
	if got := m.ws.engine.Presentation().TileSize; got != tile.ZoomSizes[0] {
		t.Errorf("TileSize = %d, want clamped to %d", got, tile.ZoomSizes[0])
	}
}

func TestPaintExport(t *testing.T) {
	m, _ := newTestPaint(t)
	calls := 0
	m.export = func() (string, error) {
		calls++
		if calls > 1 {
			return "", errors.New("disk full")
		}
		return "/tmp/quilt-painted.png", nil
	}

	m = press(m, "s")
	if m.failed || !strings.Contains(m.status, "quilt-painted.png") {
		t.Errorf("status = %q, want the exported file", m.status)
	}
	m = press(m, "s")
	if !m.failed {
		t.Errorf("status = %q, want an error", m.status)
	}
}

func TestPaintQuit(t *testing.T) {
	m, _ := newTestPaint(t)
	_, cmd := m.Update(keys("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
