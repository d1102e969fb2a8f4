// Package scene is a small retained element tree serialized as SVG.
//
// A [Node] is the element handle the view layer hands to
// [join.Join]: it satisfies [join.Container] so joins can append, reorder
// and remove children without rebuilding the tree.
package scene

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/join"
)

var _ join.Container[*Node] = (*Node)(nil)

// Node is one element of the tree.
type Node struct {
	Tag  string
	ID   string
	Text string

	classes  []string
	attrs    map[string]string
	children []*Node
	parent   *Node

	// Data carries the logical item bound to the node, if any.
	Data any
}

// New returns a detached node.
func New(tag string) *Node {
	return &Node{Tag: tag, attrs: make(map[string]string)}
}

// Parent returns the node's parent, or nil if detached.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in order.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Set sets an attribute. An empty value deletes it.
func (n *Node) Set(name, value string) *Node {
	if value == "" {
		delete(n.attrs, name)
	} else {
		n.attrs[name] = value
	}
	return n
}

// Setf sets an attribute to a formatted value.
func (n *Node) Setf(name, format string, args ...any) *Node {
	return n.Set(name, fmt.Sprintf(format, args...))
}

// Attr returns an attribute value.
func (n *Node) Attr(name string) string { return n.attrs[name] }

// Classes returns the node's class list.
func (n *Node) Classes() []string { return slices.Clone(n.classes) }

// HasClass reports whether class is in the class list.
func (n *Node) HasClass(class string) bool { return slices.Contains(n.classes, class) }

// Toggle adds class when on is true and removes it otherwise.
func (n *Node) Toggle(class string, on bool) *Node {
	i := slices.Index(n.classes, class)
	switch {
	case on && i < 0:
		n.classes = append(n.classes, class)
	case !on && i >= 0:
		n.classes = slices.Delete(n.classes, i, i+1)
	}
	return n
}

// AddClass adds classes that are not already present.
func (n *Node) AddClass(classes ...string) *Node {
	for _, c := range classes {
		n.Toggle(c, true)
	}
	return n
}

func (n *Node) detach(child *Node) {
	if child.parent == nil {
		return
	}
	p := child.parent
	if i := slices.Index(p.children, child); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	child.parent = nil
}

// Append adds child as the last child of n, moving it from its current
// parent if it has one.
func (n *Node) Append(child *Node) {
	n.detach(child)
	child.parent = n
	n.children = append(n.children, child)
}

// InsertAfter moves child directly after ref. If ref is not a child of n,
// child is appended.
func (n *Node) InsertAfter(ref, child *Node) {
	if ref == child {
		return
	}
	n.detach(child)
	child.parent = n
	i := slices.Index(n.children, ref)
	if i < 0 {
		n.children = append(n.children, child)
		return
	}
	n.children = slices.Insert(n.children, i+1, child)
}

// Remove detaches child if it belongs to n.
func (n *Node) Remove(child *Node) {
	if child.parent == n {
		n.detach(child)
	}
}

// Clear detaches every child.
func (n *Node) Clear() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}

// Find returns the first node in the subtree, n included, for which match
// returns true.
func (n *Node) Find(match func(*Node) bool) *Node {
	if match(n) {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(match); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every node in the subtree, in document order, for which
// match returns true.
func (n *Node) FindAll(match func(*Node) bool) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(m *Node) {
		if match(m) {
			out = append(out, m)
		}
		for _, c := range m.children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// ByClass matches nodes carrying class.
func ByClass(class string) func(*Node) bool {
	return func(n *Node) bool { return n.HasClass(class) }
}

// WriteSVG serializes the subtree rooted at n.
func (n *Node) WriteSVG(w io.Writer) error {
	var buf bytes.Buffer
	n.write(&buf, 0)
	_, err := w.Write(buf.Bytes())
	return err
}

// String returns the serialized subtree.
func (n *Node) String() string {
	var buf bytes.Buffer
	n.write(&buf, 0)
	return buf.String()
}

func (n *Node) write(buf *bytes.Buffer, depth int) {
	indent := strings.Repeat("  ", depth)
	buf.WriteString(indent)
	buf.WriteByte('<')
	buf.WriteString(n.Tag)
	if n.ID != "" {
		fmt.Fprintf(buf, ` id="%s"`, EscapeXML(n.ID))
	}
	if len(n.classes) > 0 {
		fmt.Fprintf(buf, ` class="%s"`, EscapeXML(strings.Join(n.classes, " ")))
	}
	for _, name := range slices.Sorted(maps.Keys(n.attrs)) {
		fmt.Fprintf(buf, ` %s="%s"`, name, EscapeXML(n.attrs[name]))
	}

	switch {
	case len(n.children) == 0 && n.Text == "":
		buf.WriteString("/>\n")
	case len(n.children) == 0:
		fmt.Fprintf(buf, ">%s</%s>\n", EscapeXML(n.Text), n.Tag)
	default:
		buf.WriteString(">\n")
		if n.Text != "" {
			fmt.Fprintf(buf, "%s  %s\n", indent, EscapeXML(n.Text))
		}
		for _, c := range n.children {
			c.write(buf, depth+1)
		}
		fmt.Fprintf(buf, "%s</%s>\n", indent, n.Tag)
	}
}

// EscapeXML escapes s for use in text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
