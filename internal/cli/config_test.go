package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/cloverquilt/pkg/prefs"
	"github.com/matzehuels/cloverquilt/pkg/render"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
store        = "redis"
redis_addr   = "localhost:6379"
redis_prefix = "quilt:"
mongo_uri    = "mongodb://localhost:27017"
scale        = 3.5
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Store != prefs.BackendRedis || cfg.RedisAddr != "localhost:6379" || cfg.Scale != 3.5 {
		t.Errorf("cfg = %+v", cfg)
	}

	sc := cfg.storeConfig()
	if sc.Backend != prefs.BackendRedis || sc.Redis.Prefix != "quilt:" || sc.Mongo.URI != "mongodb://localhost:27017" {
		t.Errorf("storeConfig() = %+v", sc)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() without a file: %v", err)
	}
	if cfg.Store != prefs.BackendFile || cfg.Scale != render.DefaultScale {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
	}{
		{"missing explicit file", filepath.Join(dir, "nope.toml")},
		{"unknown key", writeFile(t, dir, "unknown.toml", `colour = "red"`)},
		{"bad syntax", writeFile(t, dir, "bad.toml", `store = `)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(tt.path); err == nil {
				t.Error("loadConfig() error = nil, want error")
			}
		})
	}
}

func TestLoadConfigClampsScale(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `scale = -1`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scale != render.DefaultScale {
		t.Errorf("Scale = %v, want %v", cfg.Scale, render.DefaultScale)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		in, want string
	}{
		{"~/fabrics", filepath.Join(home, "fabrics")},
		{"~", home},
		{"/abs/path", "/abs/path"},
		{"~other/x", "~other/x"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := expandHome(tt.in); got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
