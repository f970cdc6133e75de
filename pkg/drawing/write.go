package drawing

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"io"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// WriteTo serializes the current state of the drawing as SVG markup.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	bw.WriteString(xmlHeader)
	writeNode(bw, d.Root)
	bw.WriteByte('\n')
	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// Bytes returns the serialized drawing.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	d.WriteTo(&buf)
	return buf.Bytes()
}

func writeNode(w *bufio.Writer, n *Node) {
	w.WriteByte('<')
	w.WriteString(n.Name)
	for _, a := range n.Attrs {
		w.WriteByte(' ')
		w.WriteString(a.Name)
		w.WriteString(`="`)
		xml.EscapeText(w, []byte(a.Value))
		w.WriteByte('"')
	}
	if len(n.Children) == 0 && n.Text == "" {
		w.WriteString("/>")
		return
	}
	w.WriteByte('>')
	if n.Text != "" {
		xml.EscapeText(w, []byte(n.Text))
	}
	for _, c := range n.Children {
		writeNode(w, c)
		if c.Tail != "" {
			xml.EscapeText(w, []byte(c.Tail))
		}
	}
	w.WriteString("</")
	w.WriteString(n.Name)
	w.WriteByte('>')
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
