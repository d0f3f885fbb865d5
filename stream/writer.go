package stream

// Writer emits a document one node at a time. StartNode opens a child of the
// currently open node; EndNode closes it.
type Writer interface {
	StartNode(name string) error
	AddAttribute(key, value string) error
	SetValue(value string) error
	EndNode() error
}

// NodeWriter is a Writer that builds a Node tree in memory.
type NodeWriter struct {
	root  *Node
	stack []*Node
}

var _ Writer = (*NodeWriter)(nil)

// NewWriter returns an empty NodeWriter.
func NewWriter() *NodeWriter {
	return &NodeWriter{}
}

func (w *NodeWriter) StartNode(name string) error {
	node := &Node{Name: name}

	if len(w.stack) == 0 {
		if w.root != nil {
			return ErrMultipleRoots
		}

		w.root = node
	} else {
		parent := w.stack[len(w.stack)-1]
		parent.Children = append(parent.Children, node)
	}

	w.stack = append(w.stack, node)

	return nil
}

func (w *NodeWriter) AddAttribute(key, value string) error {
	if len(w.stack) == 0 {
		return ErrNoOpenNode
	}

	w.stack[len(w.stack)-1].SetAttribute(key, value)

	return nil
}

func (w *NodeWriter) SetValue(value string) error {
	if len(w.stack) == 0 {
		return ErrNoOpenNode
	}

	w.stack[len(w.stack)-1].Value = value

	return nil
}

func (w *NodeWriter) EndNode() error {
	if len(w.stack) == 0 {
		return ErrNoOpenNode
	}

	w.stack = w.stack[:len(w.stack)-1]

	return nil
}

// Root returns the document's top-level node, or nil if nothing was written.
func (w *NodeWriter) Root() *Node {
	return w.root
}

// Depth returns the number of currently open nodes.
func (w *NodeWriter) Depth() int {
	return len(w.stack)
}
