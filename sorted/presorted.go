package sorted

// Presorted is an append-only staging buffer that keeps items in the order
// they were appended and never consults an ordering rule. It is used to
// collect a stream of already-ordered items before bulk-loading them into a
// container with LoadSorted.
type Presorted[E any] struct {
	items []E
}

// NewPresorted creates a buffer with room for sizeHint items.
func NewPresorted[E any](sizeHint int) *Presorted[E] {
	return &Presorted[E]{items: make([]E, 0, max(sizeHint, 0))}
}

// Append adds an item after all previously appended items.
func (p *Presorted[E]) Append(item E) {
	p.items = append(p.items, item)
}

// Len returns the number of buffered items.
func (p *Presorted[E]) Len() int {
	return len(p.items)
}

// Drain returns the buffered items in append order and empties the buffer.
// The returned slice is owned by the caller.
func (p *Presorted[E]) Drain() []E {
	items := p.items
	p.items = nil

	return items
}
