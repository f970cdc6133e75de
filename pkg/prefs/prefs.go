// Package prefs persists user preferences between sessions.
//
// Five independent keys are stored, each holding a JSON value:
//
//	clover-quilt-color-palette   ["#FFB3BA", ...]           exactly 10 colors
//	clover-quilt-patterns        {"<id>": {id, name, dataUrl}}
//	clover-quilt-stroke-color    "#000000"
//	clover-quilt-canvas-color    "#FFFFFF"
//	clover-quilt-zoom-level      4
//
// Every key is optional. [Load] validates each one on its own and falls
// back to the default for anything missing or malformed, returning the
// problems as warnings. Preferences never prevent a drawing from loading.
//
// # Backends
//
// A [Store] is a small key/value interface with four implementations:
//
//   - [FileStore]: one JSON file per key under ~/.config/cloverquilt/prefs
//   - [MemoryStore]: in-process, for tests and the paint TUI's scratch mode
//   - [RedisStore]: shared preferences for multi-instance servers
//   - [MongoStore]: one document per key in a MongoDB collection
//
// [Open] selects a backend from a [Config].
package prefs

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/hexcolor"
	"github.com/matzehuels/cloverquilt/pkg/patterns"
	"github.com/matzehuels/cloverquilt/pkg/tile"
)

// Storage keys.
const (
	KeyPalette   = "clover-quilt-color-palette"
	KeyPatterns  = "clover-quilt-patterns"
	KeyStroke    = "clover-quilt-stroke-color"
	KeyCanvas    = "clover-quilt-canvas-color"
	KeyZoomLevel = "clover-quilt-zoom-level"
)

// Keys lists every storage key.
var Keys = []string{KeyPalette, KeyPatterns, KeyStroke, KeyCanvas, KeyZoomLevel}

// PaletteSize is the number of swatches in a palette.
const PaletteSize = 10

// TileSizes maps zoom levels 0-9 to tile sizes in drawing units.
var TileSizes = tile.ZoomSizes

// DefaultZoom is the zoom level used when none is stored.
const DefaultZoom = tile.DefaultZoom

// TileSize returns the tile size of a zoom level.
func TileSize(level int) (int, error) {
	return tile.SizeForZoom(level)
}

// DefaultPalette returns the pastel palette shipped with the app.
func DefaultPalette() []string {
	return []string{
		"#FFB3BA", "#FFDFBA", "#FFFFBA", "#BAFFC9", "#BAE1FF",
		"#E6BAFF", "#FFB3E6", "#F0E6FF", "#E6F3FF", "#FFF0E6",
	}
}

// Store is a key/value store for preference values.
type Store interface {
	// Get returns the value of key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the store's resources.
	Close() error
}

// State is the full set of persisted preferences.
type State struct {
	Palette     []string                   `json:"palette"`
	Patterns    map[string]patterns.Record `json:"patterns"`
	StrokeColor string                     `json:"strokeColor"`
	CanvasColor string                     `json:"canvasColor"`
	ZoomLevel   int                        `json:"zoomLevel"`

	// stored holds the keys whose values were read from a store.
	stored map[string]bool
}

// Stored reports whether key was read from the store by Load, as opposed
// to taking its default.
func (s State) Stored(key string) bool { return s.stored[key] }

// DefaultState returns the preferences of a first run.
func DefaultState() State {
	return State{
		Palette:     DefaultPalette(),
		Patterns:    map[string]patterns.Record{},
		StrokeColor: hexcolor.DefaultStroke,
		CanvasColor: hexcolor.DefaultCanvas,
		ZoomLevel:   DefaultZoom,
	}
}

// TileSize returns the tile size of the state's zoom level.
func (s State) TileSize() int {
	return TileSizes[s.ZoomLevel]
}

// Load reads every key from store. Each value is validated on its own; a
// missing key silently takes its default and a malformed one takes its
// default with a warning. Store failures are reported the same way.
func Load(ctx context.Context, store Store) (State, []error) {
	st := DefaultState()
	st.stored = make(map[string]bool, len(Keys))
	var warnings []error

	read := func(key string, into func([]byte) error) {
		data, found, err := store.Get(ctx, key)
		if err != nil {
			warnings = append(warnings, errors.Wrap(errors.ErrCodeStore, err, "read %s", key))
			return
		}
		if !found {
			return
		}
		if err := into(data); err != nil {
			warnings = append(warnings, err)
			return
		}
		st.stored[key] = true
	}

	read(KeyPalette, func(data []byte) error {
		p, err := decodePalette(data)
		if err != nil {
			return err
		}
		st.Palette = p
		return nil
	})
	read(KeyPatterns, func(data []byte) error {
		recs, errs := decodePatterns(data)
		st.Patterns = recs
		warnings = append(warnings, errs...)
		return nil
	})
	read(KeyStroke, func(data []byte) error {
		c, err := decodeColor(KeyStroke, data)
		if err != nil {
			return err
		}
		st.StrokeColor = c
		return nil
	})
	read(KeyCanvas, func(data []byte) error {
		c, err := decodeColor(KeyCanvas, data)
		if err != nil {
			return err
		}
		st.CanvasColor = c
		return nil
	})
	read(KeyZoomLevel, func(data []byte) error {
		var level int
		if err := json.Unmarshal(data, &level); err != nil {
			return errors.Wrap(errors.ErrCodeParse, err, "%s is not a number", KeyZoomLevel)
		}
		if err := errors.ValidateZoomLevel(level); err != nil {
			return err
		}
		st.ZoomLevel = level
		return nil
	})
	return st, warnings
}

func decodePalette(data []byte) ([]string, error) {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "%s is not a list of colors", KeyPalette)
	}
	if len(raw) != PaletteSize {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"%s has %d colors, want %d", KeyPalette, len(raw), PaletteSize)
	}
	return normalizePalette(raw)
}

func normalizePalette(raw []string) ([]string, error) {
	out := make([]string, len(raw))
	for i, c := range raw {
		hex, err := hexcolor.Normalize(c)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidColor, err, "palette slot %d", i+1)
		}
		out[i] = hex
	}
	return out, nil
}

// decodePatterns keeps every well-formed record and reports the rest.
// Image data is not decoded here; that happens when the records are
// restored into a pattern library.
func decodePatterns(data []byte) (map[string]patterns.Record, []error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return map[string]patterns.Record{}, []error{
			errors.Wrap(errors.ErrCodeParse, err, "%s is not an object", KeyPatterns),
		}
	}
	out := make(map[string]patterns.Record, len(raw))
	var errs []error
	for id, msg := range raw {
		var rec patterns.Record
		if err := json.Unmarshal(msg, &rec); err != nil {
			errs = append(errs, errors.Wrap(errors.ErrCodeParse, err, "pattern %q", id))
			continue
		}
		if rec.ID == "" {
			rec.ID = id
		}
		if rec.ID != id {
			errs = append(errs, errors.New(errors.ErrCodeInvalidInput, "pattern %q is stored under %q", rec.ID, id))
			continue
		}
		if err := errors.ValidatePatternID(id); err != nil {
			errs = append(errs, err)
			continue
		}
		if rec.DataURL == "" {
			errs = append(errs, errors.New(errors.ErrCodeAssetDecode, "pattern %q has no image data", id))
			continue
		}
		out[id] = rec
	}
	return out, errs
}

func decodeColor(key string, data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", errors.Wrap(errors.ErrCodeParse, err, "%s is not a string", key)
	}
	c, err := hexcolor.Normalize(s)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidColor, err, "%s", key)
	}
	return c, nil
}

// Save writes every key of st.
func Save(ctx context.Context, store Store, st State) error {
	if err := SavePalette(ctx, store, st.Palette); err != nil {
		return err
	}
	if err := SavePatterns(ctx, store, st.Patterns); err != nil {
		return err
	}
	if err := SaveStroke(ctx, store, st.StrokeColor); err != nil {
		return err
	}
	if err := SaveCanvas(ctx, store, st.CanvasColor); err != nil {
		return err
	}
	return SaveZoom(ctx, store, st.ZoomLevel)
}

// SavePalette validates and stores a palette of exactly PaletteSize colors.
func SavePalette(ctx context.Context, store Store, palette []string) error {
	if len(palette) != PaletteSize {
		return errors.New(errors.ErrCodeInvalidInput, "palette has %d colors, want %d", len(palette), PaletteSize)
	}
	p, err := normalizePalette(palette)
	if err != nil {
		return err
	}
	return put(ctx, store, KeyPalette, p)
}

// SavePatterns stores pattern records keyed by id.
func SavePatterns(ctx context.Context, store Store, recs map[string]patterns.Record) error {
	if recs == nil {
		recs = map[string]patterns.Record{}
	}
	return put(ctx, store, KeyPatterns, recs)
}

// SaveStroke stores the stroke color.
func SaveStroke(ctx context.Context, store Store, c string) error {
	hex, err := hexcolor.Normalize(c)
	if err != nil {
		return err
	}
	return put(ctx, store, KeyStroke, hex)
}

// SaveCanvas stores the canvas color.
func SaveCanvas(ctx context.Context, store Store, c string) error {
	hex, err := hexcolor.Normalize(c)
	if err != nil {
		return err
	}
	return put(ctx, store, KeyCanvas, hex)
}

// SaveZoom stores the zoom level.
func SaveZoom(ctx context.Context, store Store, level int) error {
	if err := errors.ValidateZoomLevel(level); err != nil {
		return err
	}
	return put(ctx, store, KeyZoomLevel, level)
}

// Reset deletes every key, returning the store to first-run defaults.
func Reset(ctx context.Context, store Store) error {
	for _, k := range Keys {
		if err := store.Delete(ctx, k); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "delete %s", k)
		}
	}
	return nil
}

func put(ctx context.Context, store Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal %s", key)
	}
	if err := store.Set(ctx, key, data); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", key)
	}
	return nil
}
