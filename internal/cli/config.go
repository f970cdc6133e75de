package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cloverquilt/pkg/prefs"
	"github.com/matzehuels/cloverquilt/pkg/render"
)

// configFile is the name of the config file inside configDir.
const configFile = "config.toml"

// Config is the contents of config.toml. Every field is optional; flags
// override whatever the file sets.
//
//	store        = "redis"
//	redis_addr   = "localhost:6379"
//	patterns_dir = "~/quilting/fabrics"
//	scale        = 3
type Config struct {
	Store         string  `toml:"store"`
	PrefsDir      string  `toml:"prefs_dir"`
	RedisAddr     string  `toml:"redis_addr"`
	RedisPassword string  `toml:"redis_password"`
	RedisDB       int     `toml:"redis_db"`
	RedisPrefix   string  `toml:"redis_prefix"`
	MongoURI      string  `toml:"mongo_uri"`
	MongoDatabase string  `toml:"mongo_database"`
	PatternsDir   string  `toml:"patterns_dir"`
	CacheDir      string  `toml:"cache_dir"`
	Scale         float64 `toml:"scale"`
}

func defaultConfig() Config {
	return Config{
		Store: prefs.BackendFile,
		Scale: render.DefaultScale,
	}
}

// loadConfig reads the config file at path, or the default config file when
// path is empty. A missing default file is not an error; a missing file
// that was asked for by name is.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, configFile)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return defaultConfig(), nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.PrefsDir = expandHome(cfg.PrefsDir)
	cfg.PatternsDir = expandHome(cfg.PatternsDir)
	cfg.CacheDir = expandHome(cfg.CacheDir)
	if cfg.Store == "" {
		cfg.Store = prefs.BackendFile
	}
	if cfg.Scale <= 0 {
		cfg.Scale = render.DefaultScale
	}
	return cfg, nil
}

// storeConfig translates the file settings into a prefs backend config.
func (c Config) storeConfig() prefs.Config {
	return prefs.Config{
		Backend: c.Store,
		Dir:     c.PrefsDir,
		Redis: prefs.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.RedisPrefix,
		},
		Mongo: prefs.MongoConfig{
			URI:      c.MongoURI,
			Database: c.MongoDatabase,
		},
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
