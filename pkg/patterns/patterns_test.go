package patterns

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cloverquilt/pkg/errors"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func sequentialIDs() Option {
	n := 0
	return WithIDFunc(func() string {
		n++
		return fmt.Sprintf("p%d", n)
	})
}

func TestAdd(t *testing.T) {
	lib := NewLibrary(WithLogger(quietLogger()))

	p, err := lib.Add("Red", pngBytes(t, 4, 2, color.RGBA{255, 0, 0, 255}), false)
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if !strings.HasPrefix(p.ID, IDPrefix) {
		t.Errorf("ID = %q, want %s prefix", p.ID, IDPrefix)
	}
	if p.MediaType != "image/png" || p.Width != 4 || p.Height != 2 {
		t.Errorf("Pattern = %+v, want image/png 4x2", p)
	}

	img, err := lib.Image(p.ID)
	if err != nil {
		t.Fatalf("Image() error: %v", err)
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r>>8 != 255 {
		t.Errorf("pixel red = %d, want 255", r>>8)
	}

	url, ok := lib.DataURL(p.ID)
	if !ok || !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("DataURL() = %.30q, want png data URL", url)
	}
}

func TestAddInvalid(t *testing.T) {
	lib := NewLibrary(WithLogger(quietLogger()))

	tests := []struct {
		name string
		data []byte
		code errors.Code
	}{
		{"empty", nil, errors.ErrCodeAssetDecode},
		{"not an image", []byte("definitely not a jpeg"), errors.ErrCodeAssetDecode},
		{"truncated png", pngBytes(t, 4, 4, color.White)[:20], errors.ErrCodeAssetDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lib.Add("x", tt.data, false)
			if !errors.Is(err, tt.code) {
				t.Errorf("Add() error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := lib.Add("", pngBytes(t, 1, 1, color.White), false); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Add(empty name) error = %v, want INVALID_INPUT", err)
	}

	if lib.Len() != 0 {
		t.Errorf("Len() = %d after failed adds, want 0", lib.Len())
	}
}

func TestRemoveClear(t *testing.T) {
	lib := NewLibrary(WithLogger(quietLogger()), sequentialIDs())
	data := pngBytes(t, 2, 2, color.White)
	lib.Add("a", data, false)
	lib.Add("b", data, true)
	lib.Add("c", data, false)

	if got := strings.Join(lib.IDs(), ","); got != "p1,p2,p3" {
		t.Errorf("IDs() = %s, want p1,p2,p3", got)
	}
	if up, def := lib.Counts(); up != 2 || def != 1 {
		t.Errorf("Counts() = %d, %d, want 2, 1", up, def)
	}

	if !lib.Remove("p2") {
		t.Error("Remove(p2) = false, want true")
	}
	if lib.Remove("p2") {
		t.Error("second Remove(p2) = true, want false")
	}
	if _, err := lib.Image("p2"); !errors.Is(err, errors.ErrCodeUnknownPattern) {
		t.Errorf("Image(p2) error = %v, want UNKNOWN_PATTERN", err)
	}

	if n := lib.Clear(); n != 2 {
		t.Errorf("Clear() = %d, want 2", n)
	}
	if lib.Len() != 0 {
		t.Errorf("Len() = %d, want 0", lib.Len())
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	lib := NewLibrary(WithLogger(quietLogger()), sequentialIDs())
	lib.Add("Blue", pngBytes(t, 3, 3, color.RGBA{0, 0, 255, 255}), false)
	lib.Add("Pattern 1", pngBytes(t, 3, 3, color.White), true)

	records := lib.Records()
	records["broken"] = Record{ID: "broken", Name: "Broken", DataURL: "data:image/png;base64,AAAA"}

	restored := NewLibrary(WithLogger(quietLogger()))
	n, errs := restored.Restore(records)
	if n != 2 {
		t.Errorf("Restore() loaded = %d, want 2", n)
	}
	if len(errs) != 1 {
		t.Errorf("Restore() errs = %v, want 1 error", errs)
	}

	p, ok := restored.Metadata("p2")
	if !ok || p.Name != "Pattern 1" || !p.IsDefault {
		t.Errorf("Metadata(p2) = %+v, %v", p, ok)
	}
}

func TestSwatch(t *testing.T) {
	lib := NewLibrary(WithLogger(quietLogger()), sequentialIDs())
	lib.Add("green", pngBytes(t, 8, 8, color.RGBA{0, 255, 0, 255}), false)

	c, ok := lib.Swatch("p1")
	if !ok {
		t.Fatal("Swatch(p1) ok = false")
	}
	r, g, b, _ := c.RGBA()
	if r>>8 != 0 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("Swatch(p1) = %v, want pure green", c)
	}
	if _, ok := lib.Swatch("missing"); ok {
		t.Error("Swatch(missing) ok = true")
	}
}

func TestLoadDefaults(t *testing.T) {
	fsys := fstest.MapFS{
		"1.jpg": {Data: pngBytes(t, 2, 2, color.White)},
		"2.jpg": {Data: []byte("corrupt")},
		"4.jpg": {Data: pngBytes(t, 2, 2, color.Black)},
	}
	lib := NewLibrary(WithLogger(quietLogger()), sequentialIDs())

	n, errs := lib.LoadDefaults(context.Background(), fsys, []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg"})
	if n != 2 {
		t.Errorf("LoadDefaults() loaded = %d, want 2", n)
	}
	if len(errs) != 2 {
		t.Errorf("LoadDefaults() errs = %d, want 2", len(errs))
	}

	list := lib.List()
	if len(list) != 2 {
		t.Fatalf("List() = %d patterns, want 2", len(list))
	}
	if list[0].Name != "Pattern 1" || list[1].Name != "Pattern 4" {
		t.Errorf("names = %q, %q, want Pattern 1, Pattern 4", list[0].Name, list[1].Name)
	}
	for _, p := range list {
		if !p.IsDefault {
			t.Errorf("%s IsDefault = false", p.ID)
		}
	}

	again, _ := lib.LoadDefaults(context.Background(), fsys, []string{"1.jpg"})
	if again != 0 {
		t.Errorf("LoadDefaults() on non-empty library loaded = %d, want 0", again)
	}
}

func TestLoadDefaultsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lib := NewLibrary(WithLogger(quietLogger()))
	fsys := fstest.MapFS{"1.jpg": {Data: pngBytes(t, 1, 1, color.White)}}
	n, errs := lib.LoadDefaults(ctx, fsys, []string{"1.jpg"})
	if n != 0 || len(errs) != 1 {
		t.Errorf("LoadDefaults(canceled) = %d, %v, want 0 and one error", n, errs)
	}
}

func TestDataURL(t *testing.T) {
	url := EncodeDataURL("image/png", []byte{1, 2, 3})
	mt, data, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("DecodeDataURL() error: %v", err)
	}
	if mt != "image/png" || !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("DecodeDataURL() = %q, %v", mt, data)
	}

	mt, data, err = DecodeDataURL("data:,hello%20world")
	if err != nil || mt != "text/plain" || string(data) != "hello world" {
		t.Errorf("DecodeDataURL(plain) = %q, %q, %v", mt, data, err)
	}

	for _, bad := range []string{"http://x", "data:image/png;base64", "data:image/png;base64,!!!"} {
		if _, _, err := DecodeDataURL(bad); !errors.Is(err, errors.ErrCodeAssetDecode) {
			t.Errorf("DecodeDataURL(%q) error = %v, want ASSET_DECODE_ERROR", bad, err)
		}
	}
}
