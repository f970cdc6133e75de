package render

import (
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/matzehuels/cloverquilt/pkg/drawing"
	"github.com/matzehuels/cloverquilt/pkg/errors"
)

// geometry converts a drawing primitive to a path in its user space. An
// empty path means the element draws nothing (zero size, no data).
func geometry(n *drawing.Node) (rasterx.Path, error) {
	var p rasterx.Path
	switch n.Name {
	case "path":
		return compilePath(n.Get("d"))
	case "rect":
		x, y := num(n, "x"), num(n, "y")
		w, h := num(n, "width"), num(n, "height")
		if w <= 0 || h <= 0 {
			return nil, nil
		}
		rx, rxSet := optNum(n, "rx")
		ry, rySet := optNum(n, "ry")
		switch {
		case rxSet && !rySet:
			ry = rx
		case rySet && !rxSet:
			rx = ry
		}
		rx, ry = min(max(rx, 0), w/2), min(max(ry, 0), h/2)
		rasterx.AddRoundRect(x, y, x+w, y+h, rx, ry, 0, rasterx.RoundGap, &p)
	case "circle":
		r := num(n, "r")
		if r <= 0 {
			return nil, nil
		}
		rasterx.AddCircle(num(n, "cx"), num(n, "cy"), r, &p)
	case "ellipse":
		rx, ry := num(n, "rx"), num(n, "ry")
		if rx <= 0 || ry <= 0 {
			return nil, nil
		}
		rasterx.AddEllipse(num(n, "cx"), num(n, "cy"), rx, ry, 0, &p)
	case "line":
		p.Start(rasterx.ToFixedP(num(n, "x1"), num(n, "y1")))
		p.Line(rasterx.ToFixedP(num(n, "x2"), num(n, "y2")))
	case "polygon", "polyline":
		pts := strings.TrimSpace(n.Get("points"))
		if pts == "" {
			return nil, nil
		}
		// A point list is the argument list of an absolute moveto.
		d := "M" + pts
		if n.Name == "polygon" {
			d += "Z"
		}
		p, err := compilePath(d)
		if err != nil {
			return p, errors.Wrap(errors.ErrCodeParse, err, "<%s> points", n.Name)
		}
		return p, nil
	default:
		return nil, nil
	}
	return p, nil
}

// compilePath parses SVG path data. On malformed data it keeps the
// segments read so far and returns a parse error, which mirrors how
// browsers render a path up to its first error.
func compilePath(d string) (rasterx.Path, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, nil
	}
	if d[0] != 'M' && d[0] != 'm' {
		return nil, errors.New(errors.ErrCodeParse, "path data must start with a moveto")
	}
	c := oksvg.PathCursor{ErrorMode: oksvg.StrictErrorMode}
	if err := c.CompilePath(d); err != nil {
		return c.Path, errors.Wrap(errors.ErrCodeParse, err, "path data")
	}
	return c.Path, nil
}

// num reads a numeric attribute, treating absent or malformed values as 0.
func num(n *drawing.Node, name string) float64 {
	v, _ := optNum(n, name)
	return v
}

func optNum(n *drawing.Node, name string) (float64, bool) {
	s, ok := n.Attr(name)
	if !ok {
		return 0, false
	}
	v, err := drawing.Length(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
