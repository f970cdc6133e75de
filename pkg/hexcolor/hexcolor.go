// Package hexcolor normalizes and interprets the color strings used for
// region fills, strokes and the canvas.
//
// Every color that enters engine state goes through [Normalize], so two
// spellings of the same color ("#abc", "AABBCC ") compare equal. Parsing to
// an [image/color.Color] is backed by go-colorful, with SVG named colors
// resolved through golang.org/x/image/colornames for drawings that use them.
package hexcolor

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/matzehuels/cloverquilt/pkg/errors"
)

// Presentation defaults.
const (
	DefaultStroke = "#000000"
	DefaultCanvas = "#FFFFFF"
)

// Normalize trims whitespace, adds a leading '#', expands #RGB to #RRGGBB
// and upper-cases the digits. Invalid input yields an INVALID_COLOR error.
func Normalize(s string) (string, error) {
	if err := errors.ValidateHexColor(s); err != nil {
		return "", err
	}
	c := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(c) == 3 {
		c = string([]byte{c[0], c[0], c[1], c[1], c[2], c[2]})
	}
	return "#" + strings.ToUpper(c), nil
}

// MustNormalize is Normalize for constants known to be valid.
func MustNormalize(s string) string {
	c, err := Normalize(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Valid reports whether s is an acceptable hex color.
func Valid(s string) bool {
	return errors.ValidateHexColor(s) == nil
}

// Parse converts a hex color or an SVG color keyword to a color.Color.
// "none" and "transparent" parse to a fully transparent color.
func Parse(s string) (color.Color, error) {
	v := strings.TrimSpace(s)
	switch strings.ToLower(v) {
	case "none", "transparent":
		return color.Transparent, nil
	}
	if hex, err := Normalize(v); err == nil {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid hex color: %q", s)
		}
		return c.Clamped(), nil
	}
	if named, ok := colornames.Map[strings.ToLower(v)]; ok {
		return named, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidColor, "unrecognized color: %q", s)
}

// Brightness returns the perceived brightness of a hex color on a 0-255
// scale using the ITU-R BT.601 luma weights.
func Brightness(s string) (float64, error) {
	hex, err := Normalize(s)
	if err != nil {
		return 0, err
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid hex color: %q", s)
	}
	r, g, b := c.RGB255()
	return (float64(r)*299 + float64(g)*587 + float64(b)*114) / 1000, nil
}

// Contrasting returns black for light colors and white for dark ones, for
// labels drawn on top of a swatch.
func Contrasting(s string) (string, error) {
	br, err := Brightness(s)
	if err != nil {
		return "", err
	}
	if br > 128 {
		return "#000000", nil
	}
	return "#FFFFFF", nil
}

// FromColor formats any color.Color as a normalized hex string. Alpha is
// dropped.
func FromColor(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return strings.ToUpper(cf.Clamped().Hex())
}
