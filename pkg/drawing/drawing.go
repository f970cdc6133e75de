// Package drawing holds the live SVG document that the fill engine mutates.
//
// A [Document] is a small element tree parsed from SVG markup. It is not a
// general SVG implementation: it keeps every element and attribute it reads
// so that the drawing round-trips, and it knows just enough about SVG to
// find the closed primitives a user can fill, the outlined primitives whose
// stroke can be recolored, and the root viewport.
//
// # Loading
//
//	doc, err := drawing.Load("quilt.svg")
//	if errors.Is(err, errors.ErrCodeFileNotFound) { ... }
//
// Encodings other than UTF-8 are decoded through golang.org/x/net/html/charset.
//
// # Mutation
//
// Nodes are plain structs. The region and tile registries hold pointers into
// the tree and write attributes directly; [Document.WriteTo] serializes the
// current state, which is what every export path consumes.
package drawing

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/matzehuels/cloverquilt/pkg/errors"
)

// RegionAttr is the attribute that carries a region id on its element.
const RegionAttr = "data-region-id"

// AutoFitClass is added to the root by FitViewport.
const AutoFitClass = "auto-fit-svg"

// fillableNames are the closed primitives that become regions.
var fillableNames = map[string]bool{
	"path": true, "rect": true, "circle": true, "ellipse": true, "polygon": true,
}

// outlineOnlyNames are open primitives that take a stroke but no region.
var outlineOnlyNames = map[string]bool{
	"line": true, "polyline": true,
}

// hiddenContainers hold content that is only drawn by reference.
var hiddenContainers = map[string]bool{
	"defs": true, "pattern": true, "clipPath": true, "mask": true,
	"symbol": true, "marker": true, "linearGradient": true, "radialGradient": true,
}

// Document is a parsed drawing.
type Document struct {
	Root *Node
}

// Load reads and parses the drawing at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "drawing not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeLoad, err, "open drawing %s", path)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads SVG markup. The root element must be <svg>.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *Node
		stack []*Node
	)
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "malformed svg")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: qualified(t.Name)}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: qualified(a.Name), Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New(errors.ErrCodeParse, "multiple root elements")
				}
				root = n
			} else {
				stack[len(stack)-1].AppendChild(n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 || stack[len(stack)-1].Name != qualified(t.Name) {
				return nil, errors.New(errors.ErrCodeParse, "unexpected closing tag </%s>", qualified(t.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 || len(bytes.TrimSpace(t)) == 0 {
				break
			}
			if p := stack[len(stack)-1]; len(p.Children) == 0 {
				p.Text += string(t)
			} else {
				p.Children[len(p.Children)-1].Tail += string(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New(errors.ErrCodeParse, "invalid svg: no elements found")
	}
	if len(stack) != 0 {
		return nil, errors.New(errors.ErrCodeParse, "unclosed element <%s>", stack[len(stack)-1].Name)
	}
	if root.Name != "svg" {
		return nil, errors.New(errors.ErrCodeParse, "root element is <%s>, want <svg>", root.Name)
	}
	return &Document{Root: root}, nil
}

// ParseString is Parse for inline markup.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// Fillables returns the closed primitives in document order, skipping
// content that is only rendered by reference.
func (d *Document) Fillables() []*Node {
	return d.collect(func(n *Node) bool { return fillableNames[n.Name] })
}

// Outlined returns every primitive that carries a stroke: the fillables
// plus lines and polylines.
func (d *Document) Outlined() []*Node {
	return d.collect(func(n *Node) bool { return fillableNames[n.Name] || outlineOnlyNames[n.Name] })
}

func (d *Document) collect(match func(*Node) bool) []*Node {
	var out []*Node
	d.Root.Walk(func(n *Node, _ []*Node) bool {
		if hiddenContainers[n.Name] {
			return false
		}
		if match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// IsFillable reports whether an element name is a closed primitive.
func IsFillable(name string) bool { return fillableNames[name] }

// IsHiddenContainer reports whether children of an element with this name
// are only drawn by reference.
func IsHiddenContainer(name string) bool { return hiddenContainers[name] }

// FindByID returns the element whose id attribute equals id.
func (d *Document) FindByID(id string) *Node {
	var found *Node
	d.Root.Walk(func(n *Node, _ []*Node) bool {
		if found != nil {
			return false
		}
		if n.Get("id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Defs returns the root's <defs> element, creating it as the first child
// when the drawing has none.
func (d *Document) Defs() *Node {
	for _, c := range d.Root.Children {
		if c.Name == "defs" {
			return c
		}
	}
	defs := &Node{Name: "defs", parent: d.Root}
	d.Root.Children = append([]*Node{defs}, d.Root.Children...)
	return defs
}

// Box is a rectangle in drawing units.
type Box struct {
	MinX, MinY, Width, Height float64
}

// Empty reports whether the box has no area.
func (b Box) Empty() bool { return b.Width <= 0 || b.Height <= 0 }

// ViewBox returns the drawing's user-space viewport: the viewBox attribute
// when present, otherwise the width and height attributes.
func (d *Document) ViewBox() (Box, error) {
	if vb, ok := d.Root.Attr("viewBox"); ok {
		f := strings.FieldsFunc(vb, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '\n' })
		if len(f) != 4 {
			return Box{}, errors.New(errors.ErrCodeInvalidInput, "malformed viewBox %q", vb)
		}
		var nums [4]float64
		for i, s := range f {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return Box{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed viewBox %q", vb)
			}
			nums[i] = v
		}
		return Box{nums[0], nums[1], nums[2], nums[3]}, nil
	}
	w, werr := Length(d.Root.Get("width"))
	h, herr := Length(d.Root.Get("height"))
	if werr != nil || herr != nil {
		return Box{}, errors.New(errors.ErrCodeInvalidInput, "drawing has neither viewBox nor width/height")
	}
	return Box{Width: w, Height: h}, nil
}

// Length parses an SVG length, ignoring absolute unit suffixes.
func Length(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for _, unit := range []string{"px", "pt", "mm", "cm", "in"} {
		s = strings.TrimSuffix(s, unit)
	}
	return strconv.ParseFloat(s, 64)
}

// FitViewport makes the drawing scale to its container: fixed width and
// height are removed, the aspect ratio is preserved and centered, and the
// auto-fit class is added. A viewBox is synthesized from the removed
// dimensions when the drawing had none.
func (d *Document) FitViewport() {
	if _, ok := d.Root.Attr("viewBox"); !ok {
		if vb, err := d.ViewBox(); err == nil && !vb.Empty() {
			d.Root.SetAttr("viewBox", formatBox(vb))
		}
	}
	d.Root.RemoveAttr("width")
	d.Root.RemoveAttr("height")
	d.Root.SetAttr("preserveAspectRatio", "xMidYMid meet")
	d.Root.AddClass(AutoFitClass)
}

func formatBox(b Box) string {
	return strings.Join([]string{
		FormatNumber(b.MinX), FormatNumber(b.MinY), FormatNumber(b.Width), FormatNumber(b.Height),
	}, " ")
}

// FormatNumber renders a float without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	return &Document{Root: d.Root.Clone()}
}
