package maplayers

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// hitEntry is the stored geometry for one hit-testable quad.
type hitEntry struct {
	rect Rect
	ring orb.Ring
}

// HitIndex answers "what is under this pixel" for the screen-space quads
// the placement calculator produces. A loose quadtree over the quad
// bounding boxes narrows candidates in near-constant time; exact
// containment against the quad ring settles each candidate. Rebuild or
// update entries every frame a quad moves; not safe for concurrent
// mutation.
type HitIndex[T comparable] struct {
	tree    *LooseQuadtree[T]
	entries map[T]hitEntry
}

// NewHitIndex creates a hit index over the given screen bounds, typically
// the viewport expanded by the largest expected sprite extent.
func NewHitIndex[T comparable](bounds Rect, maxItemsPerNode, maxDepth int, looseness float64) *HitIndex[T] {
	return &HitIndex[T]{
		tree:    NewLooseQuadtree[T](bounds, maxItemsPerNode, maxDepth, looseness),
		entries: make(map[T]hitEntry),
	}
}

// quadBounds returns the AABB of four corner points.
func quadBounds(corners [4]Vec2) Rect {
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// quadRing converts corner points to a closed orb ring.
func quadRing(corners [4]Vec2) orb.Ring {
	return orb.Ring{
		{corners[0].X, corners[0].Y},
		{corners[1].X, corners[1].Y},
		{corners[2].X, corners[2].Y},
		{corners[3].X, corners[3].Y},
		{corners[0].X, corners[0].Y},
	}
}

// Set inserts or replaces the quad registered under key. Corners are in
// screen pixels in drawing order. Quads whose bounding box falls outside
// the index bounds are rejected with ErrOutOfBounds and any previous entry
// for the key is kept.
func (h *HitIndex[T]) Set(key T, corners [4]Vec2) error {
	rect := quadBounds(corners)
	old, exists := h.entries[key]
	if exists {
		if _, err := h.tree.Update(old.rect, rect, key); err != nil {
			return err
		}
	} else if err := h.tree.Add(rect, key); err != nil {
		return err
	}
	h.entries[key] = hitEntry{rect: rect, ring: quadRing(corners)}
	return nil
}

// Delete removes the quad registered under key. Returns false when the
// key is not present.
func (h *HitIndex[T]) Delete(key T) bool {
	entry, ok := h.entries[key]
	if !ok {
		return false
	}
	h.tree.Remove(entry.rect, key)
	delete(h.entries, key)
	return true
}

// Len reports the number of registered quads.
func (h *HitIndex[T]) Len() int { return len(h.entries) }

// Clear removes every entry.
func (h *HitIndex[T]) Clear() {
	h.tree.Clear()
	clear(h.entries)
}

// HitTest returns the keys of every quad containing the point, candidates
// narrowed by the quadtree and settled by exact ring containment.
func (h *HitIndex[T]) HitTest(point Vec2) []T {
	candidates := h.tree.Lookup(Rect{X: point.X, Y: point.Y})
	if len(candidates) == 0 {
		return nil
	}
	p := orb.Point{point.X, point.Y}
	hits := candidates[:0]
	for _, key := range candidates {
		if planar.RingContains(h.entries[key].ring, p) {
			hits = append(hits, key)
		}
	}
	if len(hits) == 0 {
		return nil
	}
	return hits
}
