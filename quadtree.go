package maplayers

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds reports an insertion or update whose rectangle falls
// outside the root bounds of a quadtree. Out-of-bounds entries are always
// rejected rather than silently clamped: relocating an item would corrupt
// spatial query correctness.
var ErrOutOfBounds = errors.New("rectangle outside quadtree bounds")

const (
	defaultMaxItemsPerNode = 8
	defaultMaxTreeDepth    = 8
	defaultLooseness       = 1.25
)

// qtItem is one stored entry: its exact bounding rectangle plus the
// caller-supplied payload. Both must match exactly for removal or update.
type qtItem[T comparable] struct {
	rect    Rect
	payload T
}

// qtNode is one quadtree node. Child fit tests use the loosened bounds so
// items near a split line are not forced up to the parent.
type qtNode[T comparable] struct {
	bounds Rect
	loose  Rect
	depth  int
	// count is the total item count of this subtree.
	count    int
	items    []qtItem[T]
	children *[4]qtNode[T]
}

// LooseQuadtree is a mutable 2D spatial index over axis-aligned
// rectangles, generic over an equality-comparable payload type. Not safe
// for concurrent mutation; the host serializes all calls.
type LooseQuadtree[T comparable] struct {
	root            qtNode[T]
	maxItemsPerNode int
	maxDepth        int
	looseness       float64
}

// NewLooseQuadtree creates an index covering bounds. maxItemsPerNode and
// maxDepth fall back to defaults when non-positive; looseness is the
// factor (> 1) by which each child's effective test bounds are expanded
// around the geometric quadrant split.
func NewLooseQuadtree[T comparable](bounds Rect, maxItemsPerNode, maxDepth int, looseness float64) *LooseQuadtree[T] {
	if maxItemsPerNode <= 0 {
		maxItemsPerNode = defaultMaxItemsPerNode
	}
	if maxDepth <= 0 {
		maxDepth = defaultMaxTreeDepth
	}
	if !(looseness > 1.0) {
		looseness = defaultLooseness
	}
	return &LooseQuadtree[T]{
		root:            qtNode[T]{bounds: bounds, loose: loosenRect(bounds, looseness)},
		maxItemsPerNode: maxItemsPerNode,
		maxDepth:        maxDepth,
		looseness:       looseness,
	}
}

// loosenRect expands r by factor around its center.
func loosenRect(r Rect, factor float64) Rect {
	w := r.Width * factor
	h := r.Height * factor
	return Rect{
		X:      r.X - (w-r.Width)/2,
		Y:      r.Y - (h-r.Height)/2,
		Width:  w,
		Height: h,
	}
}

// Size reports the total stored item count in O(1).
func (t *LooseQuadtree[T]) Size() int { return t.root.count }

// Bounds returns the root bounds the index was constructed with.
func (t *LooseQuadtree[T]) Bounds() Rect { return t.root.bounds }

// Clear resets the index to an empty root covering the original bounds.
func (t *LooseQuadtree[T]) Clear() {
	t.root = qtNode[T]{bounds: t.root.bounds, loose: t.root.loose}
}

// Add stores a rectangle/payload entry. Rectangles outside the root
// bounds are rejected with ErrOutOfBounds.
func (t *LooseQuadtree[T]) Add(rect Rect, payload T) error {
	if !t.root.bounds.ContainsRect(rect) {
		return fmt.Errorf("maplayers: %w: %+v", ErrOutOfBounds, rect)
	}
	t.root.add(t, qtItem[T]{rect: rect, payload: payload})
	return nil
}

// Remove deletes the entry matching both the exact rectangle coordinates
// and the payload. Returns false, with no mutation, when no such exact
// entry exists.
func (t *LooseQuadtree[T]) Remove(rect Rect, payload T) bool {
	return t.root.remove(t, rect, payload)
}

// Update moves an entry from oldRect to newRect as one operation. When
// newRect falls outside the root bounds it returns ErrOutOfBounds and
// leaves the tree unchanged. The returned bool reports whether an entry
// at oldRect was found; when it was not, newRect is inserted anyway
// (remove-then-add composition).
func (t *LooseQuadtree[T]) Update(oldRect, newRect Rect, payload T) (bool, error) {
	if !t.root.bounds.ContainsRect(newRect) {
		return false, fmt.Errorf("maplayers: %w: %+v", ErrOutOfBounds, newRect)
	}
	moved := t.root.remove(t, oldRect, payload)
	t.root.add(t, qtItem[T]{rect: newRect, payload: payload})
	return moved, nil
}

// Lookup returns the payloads of every stored rectangle intersecting the
// query, inclusive of shared edges and points.
func (t *LooseQuadtree[T]) Lookup(query Rect) []T {
	return t.root.lookup(query, nil)
}

// Each visits every stored entry until fn returns VisitStop. Iteration
// order is unspecified. The tree must not be mutated during iteration.
func (t *LooseQuadtree[T]) Each(fn func(rect Rect, payload T) Visit) {
	t.root.each(fn)
}

// --- node operations ---

// childFor returns the unique child whose loosened bounds entirely contain
// rect, or nil when none does. Loose bounds of siblings overlap, so the
// first match in slot order is the canonical home; add and remove both use
// it, keeping placement deterministic.
func (n *qtNode[T]) childFor(rect Rect) *qtNode[T] {
	if n.children == nil {
		return nil
	}
	for i := range n.children {
		if n.children[i].loose.ContainsRect(rect) {
			return &n.children[i]
		}
	}
	return nil
}

func (n *qtNode[T]) add(t *LooseQuadtree[T], item qtItem[T]) {
	n.count++
	if n.children != nil {
		if c := n.childFor(item.rect); c != nil {
			c.add(t, item)
			return
		}
		n.items = append(n.items, item)
		return
	}
	n.items = append(n.items, item)
	if len(n.items) > t.maxItemsPerNode && n.depth < t.maxDepth {
		n.split(t)
	}
}

// split subdivides a leaf into four children over the quadrants of the
// geometric bounds and redistributes every item that fits a loosened
// child.
func (n *qtNode[T]) split(t *LooseQuadtree[T]) {
	halfW := n.bounds.Width / 2
	halfH := n.bounds.Height / 2
	quadrants := [4]Rect{
		{n.bounds.X, n.bounds.Y, halfW, halfH},
		{n.bounds.X + halfW, n.bounds.Y, halfW, halfH},
		{n.bounds.X, n.bounds.Y + halfH, halfW, halfH},
		{n.bounds.X + halfW, n.bounds.Y + halfH, halfW, halfH},
	}
	n.children = &[4]qtNode[T]{}
	for i := range n.children {
		n.children[i] = qtNode[T]{
			bounds: quadrants[i],
			loose:  loosenRect(quadrants[i], t.looseness),
			depth:  n.depth + 1,
		}
	}

	items := n.items
	n.items = nil
	for _, item := range items {
		if c := n.childFor(item.rect); c != nil {
			c.add(t, item)
		} else {
			n.items = append(n.items, item)
		}
	}
}

func (n *qtNode[T]) remove(t *LooseQuadtree[T], rect Rect, payload T) bool {
	if c := n.childFor(rect); c != nil {
		if !c.remove(t, rect, payload) {
			return false
		}
		n.count--
		if n.count <= t.maxItemsPerNode {
			n.merge()
		}
		return true
	}
	for i := range n.items {
		if n.items[i].rect == rect && n.items[i].payload == payload {
			n.items = append(n.items[:i], n.items[i+1:]...)
			n.count--
			if n.children != nil && n.count <= t.maxItemsPerNode {
				n.merge()
			}
			return true
		}
	}
	return false
}

// merge collapses a sparse subtree back into a leaf.
func (n *qtNode[T]) merge() {
	if n.children == nil {
		return
	}
	items := n.items
	for i := range n.children {
		items = n.children[i].collect(items)
	}
	n.items = items
	n.children = nil
}

func (n *qtNode[T]) collect(dst []qtItem[T]) []qtItem[T] {
	dst = append(dst, n.items...)
	if n.children != nil {
		for i := range n.children {
			dst = n.children[i].collect(dst)
		}
	}
	return dst
}

func (n *qtNode[T]) lookup(query Rect, out []T) []T {
	for i := range n.items {
		if n.items[i].rect.Intersects(query) {
			out = append(out, n.items[i].payload)
		}
	}
	if n.children != nil {
		for i := range n.children {
			if n.children[i].loose.Intersects(query) {
				out = n.children[i].lookup(query, out)
			}
		}
	}
	return out
}

func (n *qtNode[T]) each(fn func(Rect, T) Visit) Visit {
	for i := range n.items {
		if fn(n.items[i].rect, n.items[i].payload) == VisitStop {
			return VisitStop
		}
	}
	if n.children != nil {
		for i := range n.children {
			if n.children[i].each(fn) == VisitStop {
				return VisitStop
			}
		}
	}
	return VisitContinue
}
