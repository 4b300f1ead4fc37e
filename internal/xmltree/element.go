// Package xmltree is a minimal ordered XML element tree. It exists because
// the ParaView plugin loader is sensitive to layout only in the sense that
// humans diff the generated files: attributes keep insertion order, empty
// elements self-close, and nesting is indented by two spaces, the same way
// lxml's pretty printer lays out a document.
package xmltree

import (
	"bytes"
	"io"
	"strings"
)

// Attr is a single name/value attribute pair.
type Attr struct {
	Name  string
	Value string
}

// Element is one XML element with ordered attributes.
type Element struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// New creates an element. kv is a flat list of attribute name/value pairs;
// a trailing unpaired name is ignored.
func New(tag string, kv ...string) *Element {
	e := &Element{Tag: tag}

	for i := 0; i+1 < len(kv); i += 2 {
		e.Set(kv[i], kv[i+1])
	}

	return e
}

// Set assigns an attribute, keeping the original position when the
// attribute already exists.
func (e *Element) Set(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}

	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})

	return e
}

// Get returns the value of the named attribute.
func (e *Element) Get(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}

	return "", false
}

// Value returns the named attribute or "" when it is absent.
func (e *Element) Value(name string) string {
	v, _ := e.Get(name)
	return v
}

// Append adds children in order and returns e.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		if c != nil {
			e.Children = append(e.Children, c)
		}
	}

	return e
}

// WithText sets the character data and returns e.
func (e *Element) WithText(text string) *Element {
	e.Text = text
	return e
}

// Find returns the first direct child with the given tag.
func (e *Element) Find(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}

	return nil
}

// FindAll returns all direct children with the given tag.
func (e *Element) FindAll(tag string) []*Element {
	var out []*Element

	for _, c := range e.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}

	return out
}

// Bytes renders the element tree, terminated by a newline.
func (e *Element) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = e.WriteTo(&buf)

	return buf.Bytes()
}

// String renders the element tree.
func (e *Element) String() string {
	return string(e.Bytes())
}

// WriteTo writes the indented document to w.
func (e *Element) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	e.write(cw, 0)

	return cw.n, cw.err
}

func (e *Element) write(w *countingWriter, depth int) {
	indent := strings.Repeat("  ", depth)

	w.writeString(indent)
	w.writeString("<")
	w.writeString(e.Tag)

	for _, a := range e.Attrs {
		w.writeString(" ")
		w.writeString(a.Name)
		w.writeString(`="`)
		w.writeString(escapeAttr(a.Value))
		w.writeString(`"`)
	}

	switch {
	case len(e.Children) == 0 && e.Text == "":
		w.writeString("/>\n")
	case len(e.Children) == 0:
		w.writeString(">")
		w.writeString(escapeText(e.Text))
		w.writeString("</" + e.Tag + ">\n")
	default:
		w.writeString(">")
		w.writeString(escapeText(e.Text))
		w.writeString("\n")

		for _, c := range e.Children {
			c.write(w, depth+1)
		}

		w.writeString(indent)
		w.writeString("</" + e.Tag + ">\n")
	}
}

var (
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#13;",
	)
)

func escapeAttr(s string) string { return attrEscaper.Replace(s) }

func escapeText(s string) string { return textEscaper.Replace(s) }

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) writeString(s string) {
	if cw.err != nil {
		return
	}

	n, err := io.WriteString(cw.w, s)
	cw.n += int64(n)
	cw.err = err
}
