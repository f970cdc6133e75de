package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/rasterx"

	"github.com/matzehuels/cloverquilt/pkg/errors"
)

// scaleFactor is the mean linear scale of m, used for stroke widths and
// tile resolution.
func scaleFactor(m rasterx.Matrix2D) float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}

// invert returns the inverse of m. It reports false for singular
// transforms, which rasterx would turn into NaNs.
func invert(m rasterx.Matrix2D) (rasterx.Matrix2D, bool) {
	if math.Abs(m.A*m.D-m.B*m.C) < 1e-12 {
		return rasterx.Matrix2D{}, false
	}
	return m.Invert(), true
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// parseTransform parses the value of a transform attribute. Functions are
// composed left to right, so "translate(10) scale(2)" scales first.
func parseTransform(s string) (rasterx.Matrix2D, error) {
	m := rasterx.Identity
	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		if open < 0 {
			return rasterx.Identity, errors.New(errors.ErrCodeParse, "transform %q: missing '('", s)
		}
		name := strings.TrimSpace(rest[:open])
		end := strings.IndexByte(rest, ')')
		if end < open {
			return rasterx.Identity, errors.New(errors.ErrCodeParse, "transform %q: missing ')'", s)
		}
		args, err := numbers(rest[open+1 : end])
		if err != nil {
			return rasterx.Identity, errors.Wrap(errors.ErrCodeParse, err, "transform %q", s)
		}
		m, err = applyTransform(m, name, args)
		if err != nil {
			return rasterx.Identity, errors.Wrap(errors.ErrCodeParse, err, "transform %q", s)
		}
		rest = strings.TrimLeft(rest[end+1:], " \t\r\n,")
	}
	return m, nil
}

func applyTransform(m rasterx.Matrix2D, name string, args []float64) (rasterx.Matrix2D, error) {
	n := len(args)
	switch {
	case name == "matrix" && n == 6:
		return m.Mult(rasterx.Matrix2D{A: args[0], B: args[1], C: args[2], D: args[3], E: args[4], F: args[5]}), nil
	case name == "translate" && n == 1:
		return m.Translate(args[0], 0), nil
	case name == "translate" && n == 2:
		return m.Translate(args[0], args[1]), nil
	case name == "scale" && n == 1:
		return m.Scale(args[0], args[0]), nil
	case name == "scale" && n == 2:
		return m.Scale(args[0], args[1]), nil
	case name == "rotate" && n == 1:
		return m.Rotate(radians(args[0])), nil
	case name == "rotate" && n == 3:
		return m.Translate(args[1], args[2]).Rotate(radians(args[0])).Translate(-args[1], -args[2]), nil
	case name == "skewX" && n == 1:
		return m.SkewX(radians(args[0])), nil
	case name == "skewY" && n == 1:
		return m.SkewY(radians(args[0])), nil
	}
	return m, errors.New(errors.ErrCodeParse, "unsupported %s with %d arguments", name, n)
}

// numbers parses a whitespace or comma separated list of numbers.
func numbers(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "bad number %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}
