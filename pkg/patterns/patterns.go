// Package patterns is the library of raster images a user can tile into
// regions.
//
// Every pattern is validated by decoding it before it is accepted, so the
// tile registry never sees an undecodable asset from this library. Payloads
// are kept as data URLs, which is also how they are persisted.
//
// Decoding and registration are separate steps. [Decode] is a pure function
// that can run on any goroutine; [Library.Register] is the synchronous step
// that makes the pattern visible. [Library.LoadDefaults] uses this split to
// decode the bundled defaults concurrently while registering them in order.
package patterns

import (
	"bytes"
	"image"
	"image/color"
	"slices"
	"sort"
	"sync"

	// Decoders for uploaded and bundled pattern images.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/cloverquilt/pkg/errors"
)

// IDPrefix prefixes generated pattern ids.
const IDPrefix = "pattern-"

// Pattern is the metadata of a registered pattern.
type Pattern struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	IsDefault bool   `json:"isDefault"`
}

// Asset is a decoded pattern image that has not been registered yet.
type Asset struct {
	Name      string
	MediaType string
	Data      []byte
	Image     image.Image
}

// Decode validates and decodes raw image bytes. It fails with
// ASSET_DECODE_ERROR when the data is not a supported image.
func Decode(name string, data []byte) (Asset, error) {
	if len(data) == 0 {
		return Asset{}, errors.New(errors.ErrCodeAssetDecode, "pattern %q is empty", name)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Asset{}, errors.Wrap(errors.ErrCodeAssetDecode, err, "cannot decode pattern %q", name)
	}
	b := img.Bounds()
	if b.Empty() {
		return Asset{}, errors.New(errors.ErrCodeAssetDecode, "pattern %q has no pixels", name)
	}
	return Asset{
		Name:      name,
		MediaType: "image/" + format,
		Data:      data,
		Image:     img,
	}, nil
}

type entry struct {
	meta    Pattern
	dataURL string
	img     image.Image
	seq     int
}

// Library holds registered patterns.
type Library struct {
	mu      sync.RWMutex
	entries map[string]*entry
	seq     int
	logger  *log.Logger
	newID   func() string
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger used for skipped assets.
func WithLogger(l *log.Logger) Option {
	return func(lib *Library) { lib.logger = l }
}

// WithIDFunc overrides id generation.
func WithIDFunc(fn func() string) Option {
	return func(lib *Library) { lib.newID = fn }
}

// NewLibrary returns an empty library.
func NewLibrary(opts ...Option) *Library {
	lib := &Library{
		entries: make(map[string]*entry),
		logger:  log.Default(),
		newID:   func() string { return IDPrefix + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(lib)
	}
	return lib
}

// Add decodes data and registers it under a fresh id.
func (l *Library) Add(name string, data []byte, isDefault bool) (Pattern, error) {
	if err := errors.ValidateName(name); err != nil {
		return Pattern{}, err
	}
	asset, err := Decode(name, data)
	if err != nil {
		return Pattern{}, err
	}
	return l.Register(asset, isDefault)
}

// Register makes a decoded asset available under a fresh id.
func (l *Library) Register(asset Asset, isDefault bool) (Pattern, error) {
	return l.register(l.newID(), asset, isDefault)
}

// RegisterWithID makes a decoded asset available under a caller-chosen id,
// replacing any pattern with the same id.
func (l *Library) RegisterWithID(id string, asset Asset, isDefault bool) (Pattern, error) {
	return l.register(id, asset, isDefault)
}

func (l *Library) register(id string, asset Asset, isDefault bool) (Pattern, error) {
	if err := errors.ValidatePatternID(id); err != nil {
		return Pattern{}, err
	}
	if asset.Image == nil {
		return Pattern{}, errors.New(errors.ErrCodeAssetDecode, "pattern %q was not decoded", asset.Name)
	}
	b := asset.Image.Bounds()
	e := &entry{
		meta: Pattern{
			ID:        id,
			Name:      asset.Name,
			MediaType: asset.MediaType,
			Width:     b.Dx(),
			Height:    b.Dy(),
			IsDefault: isDefault,
		},
		dataURL: EncodeDataURL(asset.MediaType, asset.Data),
		img:     asset.Image,
	}

	l.mu.Lock()
	l.seq++
	e.seq = l.seq
	l.entries[id] = e
	l.mu.Unlock()

	l.logger.Debug("pattern registered", "id", id, "name", asset.Name, "default", isDefault)
	return e.meta, nil
}

// Metadata returns a pattern's metadata.
func (l *Library) Metadata(id string) (Pattern, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[id]
	if !ok {
		return Pattern{}, false
	}
	return e.meta, true
}

// Image returns a pattern's decoded image. Unknown ids fail with
// UNKNOWN_PATTERN.
func (l *Library) Image(id string) (image.Image, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownPattern, "pattern %q is not available", id)
	}
	return e.img, nil
}

// DataURL returns a pattern's payload.
func (l *Library) DataURL(id string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[id]
	if !ok {
		return "", false
	}
	return e.dataURL, true
}

// Swatch returns the average color of a pattern, for previews that cannot
// show the image itself.
func (l *Library) Swatch(id string) (color.Color, bool) {
	img, err := l.Image(id)
	if err != nil {
		return nil, false
	}
	b := img.Bounds()
	step := max(1, max(b.Dx(), b.Dy())/32)
	var r, g, bl, n uint64
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r, g, bl, n = r+uint64(cr), g+uint64(cg), bl+uint64(cb), n+1
		}
	}
	return color.RGBA64{uint16(r / n), uint16(g / n), uint16(bl / n), 0xffff}, true
}

// Remove deletes a pattern. It reports whether the pattern existed.
func (l *Library) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[id]; !ok {
		return false
	}
	delete(l.entries, id)
	return true
}

// Clear deletes every pattern and returns how many were removed.
func (l *Library) Clear() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.entries)
	l.entries = make(map[string]*entry)
	return n
}

// Len returns the number of registered patterns.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// List returns every pattern in registration order.
func (l *Library) List() []Pattern {
	l.mu.RLock()
	entries := make([]*entry, 0, len(l.entries))
	for _, e := range l.entries {
		entries = append(entries, e)
	}
	l.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]Pattern, len(entries))
	for i, e := range entries {
		out[i] = e.meta
	}
	return out
}

// IDs returns pattern ids in registration order.
func (l *Library) IDs() []string {
	list := l.List()
	ids := make([]string, len(list))
	for i, p := range list {
		ids[i] = p.ID
	}
	return ids
}

// Counts returns the number of uploaded and default patterns.
func (l *Library) Counts() (uploaded, defaults int) {
	for _, p := range l.List() {
		if p.IsDefault {
			defaults++
		} else {
			uploaded++
		}
	}
	return uploaded, defaults
}

// Record is the persisted form of a pattern.
type Record struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DataURL   string `json:"dataUrl"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// Records returns every pattern in persisted form, keyed by id.
func (l *Library) Records() map[string]Record {
	out := make(map[string]Record)
	for _, p := range l.List() {
		url, _ := l.DataURL(p.ID)
		out[p.ID] = Record{ID: p.ID, Name: p.Name, DataURL: url, IsDefault: p.IsDefault}
	}
	return out
}

// Restore registers persisted records in id order. Records that fail to
// decode are logged and skipped; their errors are returned.
func (l *Library) Restore(records map[string]Record) (int, []error) {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var (
		loaded int
		errs   []error
	)
	for _, id := range ids {
		rec := records[id]
		if rec.ID == "" {
			rec.ID = id
		}
		if err := l.restore(rec); err != nil {
			l.logger.Warn("skipping stored pattern", "id", rec.ID, "err", err)
			errs = append(errs, err)
			continue
		}
		loaded++
	}
	return loaded, errs
}

func (l *Library) restore(rec Record) error {
	_, data, err := DecodeDataURL(rec.DataURL)
	if err != nil {
		return err
	}
	name := rec.Name
	if name == "" {
		name = rec.ID
	}
	asset, err := Decode(name, data)
	if err != nil {
		return err
	}
	_, err = l.RegisterWithID(rec.ID, asset, rec.IsDefault)
	return err
}
