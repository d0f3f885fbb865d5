// Package stream is a small hierarchical document model: a tree of named
// nodes with ordered attributes and a text value, plus cursor-style Writer
// and Reader implementations over it. Documents are persisted as YAML or
// CBOR, optionally compressed and sealed in a checksummed envelope.
package stream

import (
	"strings"
)

// Attr is a single node attribute.
type Attr struct {
	Key   string `cbor:"k" yaml:"key"`
	Value string `cbor:"v" yaml:"value"`
}

// Node is one element of a document.
type Node struct {
	Name     string  `cbor:"n" yaml:"name"`
	Attrs    []Attr  `cbor:"a,omitempty" yaml:"attrs,omitempty"`
	Value    string  `cbor:"v,omitempty" yaml:"value,omitempty"`
	Children []*Node `cbor:"c,omitempty" yaml:"children,omitempty"`
}

// NewNode returns a node with the given name and value.
func NewNode(name, value string, children ...*Node) *Node {
	return &Node{Name: name, Value: value, Children: children}
}

// Attribute returns the value of the named attribute.
func (n *Node) Attribute(key string) (string, bool) {
	for _, attr := range n.Attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}

	return "", false
}

// SetAttribute adds or replaces an attribute, keeping insertion order.
func (n *Node) SetAttribute(key, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Value = value

			return
		}
	}

	n.Attrs = append(n.Attrs, Attr{Key: key, Value: value})
}

// Child returns the first direct child with the given name.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// String renders the node in a compact XML-like form, for diagnostics and tests.
func (n *Node) String() string {
	var sb strings.Builder

	n.render(&sb)

	return sb.String()
}

func (n *Node) render(sb *strings.Builder) {
	sb.WriteString("<")
	sb.WriteString(n.Name)

	for _, attr := range n.Attrs {
		sb.WriteString(" ")
		sb.WriteString(attr.Key)
		sb.WriteString("=\"")
		sb.WriteString(attr.Value)
		sb.WriteString("\"")
	}

	if len(n.Children) == 0 && n.Value == "" {
		sb.WriteString("/>")

		return
	}

	sb.WriteString(">")
	sb.WriteString(n.Value)

	for _, c := range n.Children {
		c.render(sb)
	}

	sb.WriteString("</")
	sb.WriteString(n.Name)
	sb.WriteString(">")
}
