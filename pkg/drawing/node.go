package drawing

import (
	"slices"
	"strings"
)

// Attr is a single attribute. Name keeps its namespace prefix as written
// in the source ("xlink:href", "xmlns:xlink").
type Attr struct {
	Name  string
	Value string
}

// Node is an element of the drawing. Text is the character data before
// the first child; Tail is the character data that follows the element
// inside its parent, so mixed content keeps its order.
type Node struct {
	Name     string
	Attrs    []Attr
	Children []*Node
	Text     string
	Tail     string

	parent *Node
}

// NewNode returns a detached element with the given attributes given as
// name/value pairs.
func NewNode(name string, kv ...string) *Node {
	n := &Node{Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		n.SetAttr(kv[i], kv[i+1])
	}
	return n
}

// Parent returns the containing element, or nil for the root and detached nodes.
func (n *Node) Parent() *Node { return n.parent }

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Get returns the value of the named attribute or "" when absent.
func (n *Node) Get(name string) string {
	v, _ := n.Attr(name)
	return v
}

// SetAttr sets or replaces an attribute, keeping the original position.
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// RemoveAttr deletes an attribute. It reports whether it was present.
func (n *Node) RemoveAttr(name string) bool {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs = slices.Delete(n.Attrs, i, i+1)
			return true
		}
	}
	return false
}

// AppendChild attaches c as the last child of n.
func (n *Node) AppendChild(c *Node) {
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	c.parent = n
	n.Children = append(n.Children, c)
}

// RemoveChild detaches c from n. It reports whether c was a child of n.
// The text following c stays in n.
func (n *Node) RemoveChild(c *Node) bool {
	for i, ch := range n.Children {
		if ch == c {
			if i == 0 {
				n.Text += c.Tail
			} else {
				n.Children[i-1].Tail += c.Tail
			}
			n.Children = slices.Delete(n.Children, i, i+1)
			c.parent = nil
			c.Tail = ""
			return true
		}
	}
	return false
}

// Classes returns the whitespace-separated entries of the class attribute.
func (n *Node) Classes() []string {
	return strings.Fields(n.Get("class"))
}

// HasClass reports whether the class attribute contains class.
func (n *Node) HasClass(class string) bool {
	return slices.Contains(n.Classes(), class)
}

// AddClass appends class to the class attribute if missing.
func (n *Node) AddClass(class string) {
	cls := n.Classes()
	if slices.Contains(cls, class) {
		return
	}
	n.SetAttr("class", strings.Join(append(cls, class), " "))
}

// RemoveClass drops class from the class attribute, removing the
// attribute when it becomes empty.
func (n *Node) RemoveClass(class string) {
	cls := slices.DeleteFunc(n.Classes(), func(c string) bool { return c == class })
	if len(cls) == 0 {
		n.RemoveAttr("class")
		return
	}
	n.SetAttr("class", strings.Join(cls, " "))
}

// Style returns the value of a property set in the inline style attribute.
func (n *Node) Style(prop string) (string, bool) {
	for _, decl := range strings.Split(n.Get("style"), ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(k) == prop {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// Paint returns a presentation property, preferring the inline style over
// the attribute of the same name.
func (n *Node) Paint(prop string) (string, bool) {
	if v, ok := n.Style(prop); ok {
		return v, true
	}
	return n.Attr(prop)
}

// SetPaint sets a presentation attribute and drops any inline style
// declaration for the same property, which would otherwise win.
func (n *Node) SetPaint(prop, value string) {
	n.SetAttr(prop, value)
	style, ok := n.Attr("style")
	if !ok {
		return
	}
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		k, _, _ := strings.Cut(decl, ":")
		if strings.TrimSpace(decl) == "" || strings.TrimSpace(k) == prop {
			continue
		}
		kept = append(kept, strings.TrimSpace(decl))
	}
	if len(kept) == 0 {
		n.RemoveAttr("style")
		return
	}
	n.SetAttr("style", strings.Join(kept, ";"))
}

// Clone returns a deep copy of n detached from any parent.
func (n *Node) Clone() *Node {
	c := &Node{
		Name:  n.Name,
		Attrs: slices.Clone(n.Attrs),
		Text:  n.Text,
		Tail:  n.Tail,
	}
	for _, ch := range n.Children {
		cc := ch.Clone()
		cc.parent = c
		c.Children = append(c.Children, cc)
	}
	return c
}

// Walk visits n and its descendants depth-first in document order. The
// callback receives the ancestor chain (root first) and returns false to
// skip the node's children.
func (n *Node) Walk(fn func(n *Node, ancestors []*Node) bool) {
	n.walk(nil, fn)
}

func (n *Node) walk(ancestors []*Node, fn func(*Node, []*Node) bool) {
	if !fn(n, ancestors) {
		return
	}
	ancestors = append(ancestors, n)
	for _, c := range n.Children {
		c.walk(ancestors, fn)
	}
}
