package sorted

import (
	"cmp"
	"fmt"
	"iter"

	"github.com/amp-labs/amp-marshal/ordering"
)

// visitor defines an interface for traversing red-black tree nodes.
// Visit returns false to stop traversal early.
type visitor[K any, V any] interface {
	Visit(node *rbtNode[K, V]) bool
}

// color represents the color of a red-black tree node.
type color bool

// String returns a human-readable representation of the node color.
func (c color) String() string {
	switch c {
	case true:
		return "Black"
	default:
		return "Red"
	}
}

// black and red are the two node colors in a red-black tree.
// Black is represented as true so nodes built by LoadSorted default to black.
const black, red color = true, false

// rbtNode represents a single node in the red-black tree.
type rbtNode[K any, V any] struct {
	key    K
	value  V
	color  color
	left   *rbtNode[K, V]
	right  *rbtNode[K, V]
	parent *rbtNode[K, V]
}

// String returns a string representation of the node showing its key and color.
func (n *rbtNode[K, V]) String() string {
	return fmt.Sprintf("(%#v : %s)", n.key, n.color)
}

// TreeMap is a red-black tree ordered by an ordering rule. It maintains
// O(log n) insertions, deletions and lookups by enforcing:
//  1. Every node is either red or black
//  2. The root is black
//  3. All leaves (nil nodes) are black
//  4. Red nodes cannot have red children
//  5. Every path from root to leaf contains the same number of black nodes
//
// The implementation follows the algorithms from "Introduction to Algorithms" (CLRS).
type TreeMap[K any, V any] struct {
	root    *rbtNode[K, V]
	size    int
	rule    ordering.Rule[K]
	compare func(a, b K) int

	// rightmost caches the maximum node between consecutive AppendSorted
	// calls. Any other mutation clears it.
	rightmost *rbtNode[K, V]
}

// Compile-time checks that TreeMap implements the population capabilities.
var (
	_ Map[string, int]           = (*TreeMap[string, int])(nil)
	_ Loader[Entry[string, int]] = (*TreeMap[string, int])(nil)
	_ Appender[string, int]      = (*TreeMap[string, int])(nil)
)

// NewTreeMap creates an empty map in the natural order of K. Its Rule is nil.
func NewTreeMap[K cmp.Ordered, V any]() *TreeMap[K, V] {
	return &TreeMap[K, V]{compare: cmp.Compare[K]}
}

// NewTreeMapWithRule creates an empty map ordered by rule. A nil rule panics;
// use NewTreeMap or NewTreeMapWithNaturalRule for natural order.
func NewTreeMapWithRule[K any, V any](rule ordering.Rule[K]) *TreeMap[K, V] {
	if rule == nil {
		panic("sorted: nil ordering rule")
	}

	return &TreeMap[K, V]{rule: rule, compare: rule.Compare}
}

// NewTreeMapWithNaturalRule creates an empty map for a key type that is not
// cmp.Ordered. natural is used for comparisons, but the map reports a nil
// Rule, exactly like a NewTreeMap map.
func NewTreeMapWithNaturalRule[K any, V any](natural ordering.Rule[K]) *TreeMap[K, V] {
	if natural == nil {
		panic("sorted: nil natural ordering rule")
	}

	return &TreeMap[K, V]{compare: natural.Compare}
}

// Rule returns the explicit ordering rule, or nil for natural order.
func (t *TreeMap[K, V]) Rule() ordering.Rule[K] { //nolint:ireturn
	return t.rule
}

// lookup finds the node holding key, or the parent under which key would be
// inserted together with the side (negative for left, positive for right).
func (t *TreeMap[K, V]) lookup(key K) (node *rbtNode[K, V], parent *rbtNode[K, V], side int) {
	current := t.root

	for current != nil {
		c := t.compare(key, current.key)
		if c == 0 {
			return current, current.parent, 0
		}

		parent, side = current, c

		if c < 0 {
			current = current.left
		} else {
			current = current.right
		}
	}

	return nil, parent, side
}

// Get retrieves the value associated with the given key.
func (t *TreeMap[K, V]) Get(key K) (V, bool) {
	node, _, _ := t.lookup(key)
	if node == nil {
		var zero V

		return zero, false
	}

	return node.value, true
}

// Contains checks whether the map contains the given key.
func (t *TreeMap[K, V]) Contains(key K) bool {
	node, _, _ := t.lookup(key)

	return node != nil
}

// Put inserts or updates a key-value pair in the map.
// After insertion, the tree is rebalanced to maintain red-black properties.
func (t *TreeMap[K, V]) Put(key K, value V) (V, bool) {
	t.rightmost = nil

	node, parent, side := t.lookup(key)
	if node != nil {
		previous := node.value
		node.value = value

		return previous, true
	}

	t.attach(&rbtNode[K, V]{key: key, value: value, color: red}, parent, side)

	var zero V

	return zero, false
}

// attach links a fresh red node under parent and restores the red-black
// properties.
func (t *TreeMap[K, V]) attach(node *rbtNode[K, V], parent *rbtNode[K, V], side int) {
	node.parent = parent

	switch {
	case parent == nil:
		t.root = node
	case side < 0:
		parent.left = node
	default:
		parent.right = node
	}

	t.size++
	t.fixupPut(node)
}

// AppendSorted adds an entry whose key sorts after every key already in the
// map. The rule is not consulted; the caller guarantees the order. Appending
// n entries to an empty map takes amortized O(n).
func (t *TreeMap[K, V]) AppendSorted(key K, value V) {
	parent := t.rightmost
	if parent == nil {
		parent = t.maximum(t.root)
	}

	node := &rbtNode[K, V]{key: key, value: value, color: red}
	t.attach(node, parent, 1)

	// Rotations never move a node in the in-order sequence, so the new node
	// stays the rightmost one.
	t.rightmost = node
}

// LoadSorted adopts items that are already in rule order. An empty map is
// rebuilt in linear time without consulting the rule; a non-empty map falls
// back to ordinary insertion.
func (t *TreeMap[K, V]) LoadSorted(items []Entry[K, V]) {
	if t.size > 0 {
		for _, item := range items {
			t.Put(item.Key, item.Value)
		}

		return
	}

	t.rightmost = nil

	if len(items) == 0 {
		return
	}

	t.root = buildFromSorted(0, 0, len(items)-1, redLevel(len(items)), items)
	t.root.color = black
	t.size = len(items)
}

// redLevel finds the depth at which nodes must be red so that a complete
// binary tree of the given size satisfies the red-black properties: every
// level above it is full, and only the deepest (possibly partial) level is red.
func redLevel(size int) int {
	level := 0

	for m := size - 1; m >= 0; m = m/2 - 1 {
		level++
	}

	return level
}

// buildFromSorted recursively builds a balanced subtree from items[lo..hi].
func buildFromSorted[K any, V any](level, lo, hi, redAt int, items []Entry[K, V]) *rbtNode[K, V] {
	if hi < lo {
		return nil
	}

	mid := int(uint(lo+hi) >> 1) //nolint:gosec

	node := &rbtNode[K, V]{key: items[mid].Key, value: items[mid].Value, color: black}

	if level == redAt {
		node.color = red
	}

	if lo < mid {
		node.left = buildFromSorted(level+1, lo, mid-1, redAt, items)
		node.left.parent = node
	}

	if mid < hi {
		node.right = buildFromSorted(level+1, mid+1, hi, redAt, items)
		node.right.parent = node
	}

	return node
}

// Remove deletes the key-value pair with the given key from the map.
// After deletion, the tree is rebalanced to maintain red-black properties.
//
// nolint:varnamelen // Standard red-black tree variable names from CLRS
func (t *TreeMap[K, V]) Remove(key K) bool {
	z, _, _ := t.lookup(key)
	if z == nil {
		return false
	}

	t.rightmost = nil
	t.size--

	y := z
	yOriginalColor := y.color

	var x, xParent *rbtNode[K, V]

	switch {
	case z.left == nil:
		x, xParent = z.right, z.parent
		t.transplant(z, z.right)
	case z.right == nil:
		x, xParent = z.left, z.parent
		t.transplant(z, z.left)
	default:
		y = t.minimum(z.right)
		yOriginalColor = y.color
		x = y.right

		if y.parent == z {
			xParent = y
		} else {
			xParent = y.parent
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}

		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	if yOriginalColor == black {
		t.fixupDelete(x, xParent)
	}

	return true
}

// Clear removes all entries from the map, resetting it to empty.
func (t *TreeMap[K, V]) Clear() {
	t.root = nil
	t.rightmost = nil
	t.size = 0
}

// Size returns the number of key-value pairs in the map.
func (t *TreeMap[K, V]) Size() int {
	return t.size
}

// seqVisitor is a visitor implementation that yields key-value pairs in sorted order.
type seqVisitor[K any, V any] struct {
	yield func(K, V) bool
}

// Visit recursively traverses the tree in-order, yielding each key-value pair.
// Traversal stops early if yield returns false.
func (s *seqVisitor[K, V]) Visit(node *rbtNode[K, V]) bool {
	if node == nil {
		return true
	}

	if !s.Visit(node.left) {
		return false
	}

	if !s.yield(node.key, node.value) {
		return false
	}

	return s.Visit(node.right)
}

// Seq returns an iterator over the map's key-value pairs in rule order.
func (t *TreeMap[K, V]) Seq() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		t.walk(&seqVisitor[K, V]{yield: yield})
	}
}

// Keys returns an iterator over the map's keys in rule order.
func (t *TreeMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		t.walk(&seqVisitor[K, V]{yield: func(key K, _ V) bool {
			return yield(key)
		}})
	}
}

// Entries returns all entries in rule order.
func (t *TreeMap[K, V]) Entries() []Entry[K, V] {
	out := make([]Entry[K, V], 0, t.size)

	for k, v := range t.Seq() {
		out = append(out, Entry[K, V]{Key: k, Value: v})
	}

	return out
}

// First returns the entry with the smallest key.
func (t *TreeMap[K, V]) First() (Entry[K, V], bool) {
	if t.root == nil {
		return Entry[K, V]{}, false
	}

	node := t.minimum(t.root)

	return Entry[K, V]{Key: node.key, Value: node.value}, true
}

// Last returns the entry with the largest key.
func (t *TreeMap[K, V]) Last() (Entry[K, V], bool) {
	if t.root == nil {
		return Entry[K, V]{}, false
	}

	node := t.maximum(t.root)

	return Entry[K, V]{Key: node.key, Value: node.value}, true
}

// walk traverses the tree using the provided visitor.
func (t *TreeMap[K, V]) walk(v visitor[K, V]) {
	v.Visit(t.root)
}

// rotateRight performs a right rotation around node y:
//
//	    y              x
//	   / \            / \
//	  x   C   =>     A   y
//	 / \                / \
//	A   B              B   C
//
// nolint:dupword,varnamelen // ASCII art; standard RB tree variable names
func (t *TreeMap[K, V]) rotateRight(y *rbtNode[K, V]) {
	x := y.left
	y.left = x.right

	if x.right != nil {
		x.right.parent = y
	}

	x.parent = y.parent

	switch {
	case y.parent == nil:
		t.root = x
	case y == y.parent.left:
		y.parent.left = x
	default:
		y.parent.right = x
	}

	x.right = y
	y.parent = x
}

// rotateLeft performs a left rotation around node x:
//
//	  x                y
//	 / \              / \
//	A   y      =>    x   C
//	   / \          / \
//	  B   C        A   B
//
// nolint:varnamelen // Standard red-black tree variable names
func (t *TreeMap[K, V]) rotateLeft(x *rbtNode[K, V]) {
	y := x.right
	x.right = y.left

	if y.left != nil {
		y.left.parent = x
	}

	y.parent = x.parent

	switch {
	case x.parent == nil:
		t.root = y
	case x == x.parent.left:
		x.parent.left = y
	default:
		x.parent.right = y
	}

	y.left = x
	x.parent = y
}

// transplant replaces the subtree rooted at node u with the subtree rooted at node v.
func (t *TreeMap[K, V]) transplant(u *rbtNode[K, V], v *rbtNode[K, V]) {
	switch {
	case u.parent == nil:
		t.root = v
	case u == u.parent.left:
		u.parent.left = v
	default:
		u.parent.right = v
	}

	if v != nil {
		v.parent = u.parent
	}
}

// isRed returns true if the node is red; nil nodes are black.
func isRed[K any, V any](n *rbtNode[K, V]) bool {
	return n != nil && n.color == red
}

// fixupPut restores red-black tree properties after inserting a red node.
//
// nolint:varnamelen,nestif // Standard red-black tree variable names
func (t *TreeMap[K, V]) fixupPut(z *rbtNode[K, V]) {
	for isRed(z.parent) {
		grandparent := z.parent.parent

		if z.parent == grandparent.left {
			y := grandparent.right
			if isRed(y) {
				z.parent.color = black
				y.color = black
				grandparent.color = red
				z = grandparent

				continue
			}

			if z == z.parent.right {
				z = z.parent
				t.rotateLeft(z)
			}

			z.parent.color = black
			grandparent.color = red
			t.rotateRight(grandparent)
		} else {
			y := grandparent.left
			if isRed(y) {
				z.parent.color = black
				y.color = black
				grandparent.color = red
				z = grandparent

				continue
			}

			if z == z.parent.left {
				z = z.parent
				t.rotateRight(z)
			}

			z.parent.color = black
			grandparent.color = red
			t.rotateLeft(grandparent)
		}
	}

	t.root.color = black
}

// fixupDelete restores red-black tree properties after deleting a black node.
// x may be nil, so its parent is tracked separately.
//
// nolint:varnamelen,dupl,cyclop // Standard red-black tree variable names; symmetric cases
func (t *TreeMap[K, V]) fixupDelete(x *rbtNode[K, V], parent *rbtNode[K, V]) {
	for x != t.root && !isRed(x) {
		if x == parent.left {
			w := parent.right
			if isRed(w) {
				w.color = black
				parent.color = red
				t.rotateLeft(parent)
				w = parent.right
			}

			if !isRed(w.left) && !isRed(w.right) {
				w.color = red
				x = parent
				parent = x.parent

				continue
			}

			if !isRed(w.right) {
				w.left.color = black
				w.color = red
				t.rotateRight(w)
				w = parent.right
			}

			w.color = parent.color
			parent.color = black
			w.right.color = black
			t.rotateLeft(parent)
			x = t.root
		} else {
			w := parent.left
			if isRed(w) {
				w.color = black
				parent.color = red
				t.rotateRight(parent)
				w = parent.left
			}

			if !isRed(w.left) && !isRed(w.right) {
				w.color = red
				x = parent
				parent = x.parent

				continue
			}

			if !isRed(w.left) {
				w.right.color = black
				w.color = red
				t.rotateLeft(w)
				w = parent.left
			}

			w.color = parent.color
			parent.color = black
			w.left.color = black
			t.rotateRight(parent)
			x = t.root
		}
	}

	if x != nil {
		x.color = black
	}
}

// minimum returns the leftmost node of the subtree rooted at x.
func (t *TreeMap[K, V]) minimum(x *rbtNode[K, V]) *rbtNode[K, V] {
	for x != nil && x.left != nil {
		x = x.left
	}

	return x
}

// maximum returns the rightmost node of the subtree rooted at x.
func (t *TreeMap[K, V]) maximum(x *rbtNode[K, V]) *rbtNode[K, V] {
	for x != nil && x.right != nil {
		x = x.right
	}

	return x
}
