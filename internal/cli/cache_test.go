package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/cloverquilt/pkg/cache"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestOpenExportCache(t *testing.T) {
	c := newTestCLI(t)
	c.cfg.CacheDir = filepath.Join(t.TempDir(), "missing")
	if _, ok, err := c.openExportCache(); ok || err != nil {
		t.Errorf("openExportCache() on a missing dir = %v, %v; want not ok", ok, err)
	}

	c.cfg.CacheDir = t.TempDir()
	fc, err := cache.NewFileCache(c.cfg.CacheDir)
	if err != nil {
		t.Fatal(err)
	}
	fc.Set(context.Background(), "export:a", []byte("png"), time.Hour)

	cmd := c.cacheCommand()
	cmd.SetArgs([]string{"clear"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if n, _, _ := fc.Stats(); n != 0 {
		t.Errorf("entries after clear = %d, want 0", n)
	}
}

func TestCachePathCommand(t *testing.T) {
	c := newTestCLI(t)
	var out bytes.Buffer
	cmd := c.cacheCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"path"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != c.cfg.CacheDir {
		t.Errorf("cache path = %q, want %q", got, c.cfg.CacheDir)
	}
}
