package hexcolor

import (
	"image/color"
	"testing"

	"github.com/matzehuels/cloverquilt/pkg/errors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already normal", "#112233", "#112233"},
		{"lower case", "#ffb3ba", "#FFB3BA"},
		{"no hash", "bae1ff", "#BAE1FF"},
		{"short form", "#abc", "#AABBCC"},
		{"short no hash", "fff", "#FFFFFF"},
		{"whitespace", "  #eeeeee\t", "#EEEEEE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeInvalid(t *testing.T) {
	for _, in := range []string{"", "red", "#12", "#GGGGGG", "url(#tile-p1)"} {
		if _, err := Normalize(in); !errors.Is(err, errors.ErrCodeInvalidColor) {
			t.Errorf("Normalize(%q) error = %v, want INVALID_COLOR", in, err)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  color.RGBA
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}},
		{"#0f0", color.RGBA{0, 255, 0, 255}},
		{"navy", color.RGBA{0, 0, 128, 255}},
		{"White", color.RGBA{255, 255, 255, 255}},
	}

	for _, tt := range tests {
		c, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.input, err)
		}
		got := color.RGBAModel.Convert(c).(color.RGBA)
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseNone(t *testing.T) {
	c, err := Parse("none")
	if err != nil {
		t.Fatalf("Parse(none) error: %v", err)
	}
	if _, _, _, a := c.RGBA(); a != 0 {
		t.Errorf("Parse(none) alpha = %d, want 0", a)
	}
}

func TestParseUnknown(t *testing.T) {
	if _, err := Parse("not-a-color"); err == nil {
		t.Error("Parse(not-a-color) error = nil, want error")
	}
}

func TestBrightness(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"#000000", 0},
		{"#FFFFFF", 255},
		{"#FF0000", 76.245},
	}

	for _, tt := range tests {
		got, err := Brightness(tt.input)
		if err != nil {
			t.Fatalf("Brightness(%q) error: %v", tt.input, err)
		}
		if diff := got - tt.want; diff > 0.01 || diff < -0.01 {
			t.Errorf("Brightness(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestContrasting(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"#FFFFBA", "#000000"},
		{"#FFFFFF", "#000000"},
		{"#000000", "#FFFFFF"},
		{"#112233", "#FFFFFF"},
	}

	for _, tt := range tests {
		got, err := Contrasting(tt.input)
		if err != nil {
			t.Fatalf("Contrasting(%q) error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Contrasting(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFromColor(t *testing.T) {
	if got := FromColor(color.RGBA{0x11, 0x22, 0x33, 0xff}); got != "#112233" {
		t.Errorf("FromColor() = %q, want %q", got, "#112233")
	}
}
