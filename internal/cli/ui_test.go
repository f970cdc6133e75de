package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/cloverquilt/pkg/patterns"
	"github.com/matzehuels/cloverquilt/pkg/prefs"
)

// captureOutput redirects status output to a buffer for the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := out
	out = &buf
	t.Cleanup(func() { out = old })
	return &buf
}

func TestPrintRegionStats(t *testing.T) {
	tests := []struct {
		filled, total, patterns int
		cached                  bool
		want                    []string
		notWant                 string
	}{
		{3, 10, 0, false, []string{"3/10 regions filled", iconFresh}, "patterns"},
		{10, 10, 2, true, []string{"10/10 regions filled", "2 patterns", iconCached}, iconFresh},
	}
	for _, tt := range tests {
		buf := captureOutput(t)
		printRegionStats(tt.filled, tt.total, tt.patterns, tt.cached)
		got := buf.String()
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("printRegionStats() = %q, want %q", got, w)
			}
		}
		if strings.Contains(got, tt.notWant) {
			t.Errorf("printRegionStats() = %q, should not contain %q", got, tt.notWant)
		}
	}
}

func TestStatusHelpers(t *testing.T) {
	buf := captureOutput(t)
	printSuccess("Saved %d fills", 4)
	printWarning("shape-9: no region")
	printKeyValue("Canvas", "#FFF0E6")
	printFile("quilt.png")

	got := buf.String()
	for _, w := range []string{iconSuccess + " Saved 4 fills", "shape-9: no region", "Canvas", "#FFF0E6", iconArrow, "quilt.png"} {
		if !strings.Contains(got, w) {
			t.Errorf("output = %q, missing %q", got, w)
		}
	}
}

func TestSwatchFallsBackOnBadColor(t *testing.T) {
	if got := swatch("not-a-color"); !strings.Contains(got, "not-a-color") {
		t.Errorf("swatch() = %q, want the raw value", got)
	}
	if got := swatch("#FFB3BA"); !strings.Contains(got, "#FFB3BA") {
		t.Errorf("swatch() = %q, want the hex value", got)
	}
}

func TestPatternCompletions(t *testing.T) {
	state := prefs.State{Patterns: map[string]patterns.Record{
		"pattern-a1": {ID: "pattern-a1", Name: "Gingham"},
		"pattern-a2": {ID: "pattern-a2", Name: "Plaid"},
		"pattern-b1": {ID: "pattern-b1", Name: "Dots"},
	}}

	got := patternCompletions(state, []string{"pattern-a1"}, "pattern-a")
	if len(got) != 1 || got[0] != "pattern-a2\tPlaid" {
		t.Errorf("patternCompletions() = %q, want only pattern-a2", got)
	}
	if got := patternCompletions(state, nil, ""); len(got) != 3 || got[0] != "pattern-a1\tGingham" {
		t.Errorf("patternCompletions() = %q, want all three sorted", got)
	}
}
