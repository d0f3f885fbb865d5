package stream

import (
	"strconv"
	"strings"
)

// Reader walks a document. The cursor always sits on a node; MoveDown enters
// its next unvisited child and MoveUp returns to the parent, which then
// continues with the following sibling.
type Reader interface {
	HasMoreChildren() bool
	MoveDown() error
	MoveUp() error
	NodeName() string
	Value() string
	Attribute(key string) (string, bool)
	// Path locates the current node, e.g. "/sorted-set/string[2]".
	Path() string
}

type frame struct {
	node    *Node
	next    int
	seen    map[string]int
	segment string
}

// NodeReader is a Reader over an in-memory Node tree.
type NodeReader struct {
	stack []*frame
}

var _ Reader = (*NodeReader)(nil)

// NewReader returns a reader positioned on root.
func NewReader(root *Node) *NodeReader {
	return &NodeReader{
		stack: []*frame{{node: root, segment: root.Name}},
	}
}

func (r *NodeReader) top() *frame {
	return r.stack[len(r.stack)-1]
}

func (r *NodeReader) HasMoreChildren() bool {
	f := r.top()

	return f.next < len(f.node.Children)
}

func (r *NodeReader) MoveDown() error {
	parent := r.top()
	if parent.next >= len(parent.node.Children) {
		return ErrNoMoreChildren
	}

	child := parent.node.Children[parent.next]
	parent.next++

	if parent.seen == nil {
		parent.seen = make(map[string]int)
	}

	parent.seen[child.Name]++

	segment := child.Name
	if n := parent.seen[child.Name]; n > 1 {
		segment += "[" + strconv.Itoa(n) + "]"
	}

	r.stack = append(r.stack, &frame{node: child, segment: segment})

	return nil
}

func (r *NodeReader) MoveUp() error {
	if len(r.stack) == 1 {
		return ErrAtRoot
	}

	r.stack = r.stack[:len(r.stack)-1]

	return nil
}

func (r *NodeReader) NodeName() string {
	return r.top().node.Name
}

func (r *NodeReader) Value() string {
	return r.top().node.Value
}

func (r *NodeReader) Attribute(key string) (string, bool) {
	return r.top().node.Attribute(key)
}

func (r *NodeReader) Path() string {
	var sb strings.Builder

	for _, f := range r.stack {
		sb.WriteString("/")
		sb.WriteString(f.segment)
	}

	return sb.String()
}

// Depth returns how many levels below the root the cursor is.
func (r *NodeReader) Depth() int {
	return len(r.stack) - 1
}
