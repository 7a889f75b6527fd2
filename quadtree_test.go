package maplayers

import (
	"errors"
	"sort"
	"testing"
)

func sortedInts(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	return out
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestQuadtreeAddRemoveLookup(t *testing.T) {
	qt := NewLooseQuadtree[int](Rect{0, 0, 100, 100}, 2, 8, 1.25)

	rects := []Rect{
		{5, 5, 10, 10},
		{60, 5, 10, 10},
		{5, 60, 10, 10},
		{60, 60, 10, 10},
		{45, 45, 10, 10},
		{20, 20, 5, 5},
	}
	for i, r := range rects {
		if err := qt.Add(r, i); err != nil {
			t.Fatalf("Add(%v): %v", r, err)
		}
	}
	if qt.Size() != 6 {
		t.Fatalf("Size = %d, want 6", qt.Size())
	}

	for i := 0; i < 4; i++ {
		if !qt.Remove(rects[i], i) {
			t.Fatalf("Remove(%v) = false", rects[i])
		}
	}
	if err := qt.Add(Rect{80, 80, 5, 5}, 6); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if qt.Size() != 3 {
		t.Fatalf("Size = %d, want 3", qt.Size())
	}

	got := sortedInts(qt.Lookup(Rect{0, 0, 100, 100}))
	if !intsEqual(got, []int{4, 5, 6}) {
		t.Errorf("Lookup = %v, want [4 5 6]", got)
	}
	got = qt.Lookup(Rect{44, 44, 2, 2})
	if !intsEqual(got, []int{4}) {
		t.Errorf("Lookup = %v, want [4]", got)
	}
}

func TestQuadtreeLookupTouchingEdge(t *testing.T) {
	qt := NewLooseQuadtree[int](Rect{0, 0, 100, 100}, 0, 0, 0)
	if err := qt.Add(Rect{0, 0, 10, 10}, 1); err != nil {
		t.Fatal(err)
	}
	// Intersection is inclusive: a query sharing only the corner point still
	// matches.
	if got := qt.Lookup(Rect{10, 10, 5, 5}); !intsEqual(got, []int{1}) {
		t.Errorf("corner-touch Lookup = %v, want [1]", got)
	}
	if got := qt.Lookup(Rect{10.001, 10, 5, 5}); len(got) != 0 {
		t.Errorf("disjoint Lookup = %v, want empty", got)
	}
	// A zero-size query at an interior point matches too.
	if got := qt.Lookup(Rect{X: 5, Y: 5}); !intsEqual(got, []int{1}) {
		t.Errorf("point Lookup = %v, want [1]", got)
	}
}

func TestQuadtreeAddOutOfBounds(t *testing.T) {
	qt := NewLooseQuadtree[int](Rect{0, 0, 100, 100}, 0, 0, 0)
	err := qt.Add(Rect{95, 5, 10, 10}, 1)
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("err = %v, want ErrOutOfBounds", err)
	}
	if qt.Size() != 0 {
		t.Errorf("Size = %d after rejected add, want 0", qt.Size())
	}
}

func TestQuadtreeRemoveRequiresExactMatch(t *testing.T) {
	qt := NewLooseQuadtree[int](Rect{0, 0, 100, 100}, 0, 0, 0)
	rect := Rect{10, 10, 20, 20}
	if err := qt.Add(rect, 7); err != nil {
		t.Fatal(err)
	}
	if qt.Remove(Rect{10, 10, 20, 21}, 7) {
		t.Error("Remove with a different rect should fail")
	}
	if qt.Remove(rect, 8) {
		t.Error("Remove with a different payload should fail")
	}
	if qt.Size() != 1 {
		t.Errorf("Size = %d after failed removes, want 1", qt.Size())
	}
	if !qt.Remove(rect, 7) {
		t.Error("exact Remove should succeed")
	}
	if qt.Size() != 0 {
		t.Errorf("Size = %d, want 0", qt.Size())
	}
}

func TestQuadtreeUpdate(t *testing.T) {
	qt := NewLooseQuadtree[int](Rect{0, 0, 100, 100}, 0, 0, 0)
	oldRect := Rect{10, 10, 5, 5}
	newRect := Rect{70, 70, 5, 5}
	if err := qt.Add(oldRect, 1); err != nil {
		t.Fatal(err)
	}

	moved, err := qt.Update(oldRect, newRect, 1)
	if err != nil || !moved {
		t.Fatalf("Update = (%v, %v), want (true, nil)", moved, err)
	}
	if qt.Size() != 1 {
		t.Errorf("Size = %d after move, want 1", qt.Size())
	}
	if got := qt.Lookup(oldRect); len(got) != 0 {
		t.Errorf("old position still occupied: %v", got)
	}
	if got := qt.Lookup(newRect); !intsEqual(got, []int{1}) {
		t.Errorf("new position Lookup = %v, want [1]", got)
	}

	// Out-of-bounds destination leaves the tree untouched.
	if _, err := qt.Update(newRect, Rect{200, 200, 5, 5}, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("err = %v, want ErrOutOfBounds", err)
	}
	if got := qt.Lookup(newRect); !intsEqual(got, []int{1}) {
		t.Errorf("entry lost after rejected update: %v", got)
	}

	// Updating an entry that was never stored still inserts the new rect.
	moved, err = qt.Update(Rect{1, 1, 2, 2}, Rect{30, 30, 5, 5}, 2)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if moved {
		t.Error("moved = true for an absent old entry")
	}
	if qt.Size() != 2 {
		t.Errorf("Size = %d, want 2", qt.Size())
	}
}

func TestQuadtreeSplitAndMerge(t *testing.T) {
	qt := NewLooseQuadtree[int](Rect{0, 0, 128, 128}, 2, 6, 1.25)

	// Enough clustered items to force several splits.
	var rects []Rect
	for i := 0; i < 40; i++ {
		x := float64((i * 7) % 120)
		y := float64((i * 13) % 120)
		r := Rect{x, y, 4, 4}
		rects = append(rects, r)
		if err := qt.Add(r, i); err != nil {
			t.Fatalf("Add(%v): %v", r, err)
		}
	}
	if qt.Size() != 40 {
		t.Fatalf("Size = %d, want 40", qt.Size())
	}
	got := sortedInts(qt.Lookup(Rect{0, 0, 128, 128}))
	for i := 0; i < 40; i++ {
		if got[i] != i {
			t.Fatalf("full lookup missing item %d: %v", i, got)
		}
	}

	// Remove most items; merged leaves must still answer queries correctly.
	for i := 0; i < 38; i++ {
		if !qt.Remove(rects[i], i) {
			t.Fatalf("Remove(%v) = false", rects[i])
		}
	}
	if qt.Size() != 2 {
		t.Fatalf("Size = %d, want 2", qt.Size())
	}
	got = sortedInts(qt.Lookup(Rect{0, 0, 128, 128}))
	if !intsEqual(got, []int{38, 39}) {
		t.Errorf("Lookup after merge = %v, want [38 39]", got)
	}
}

func TestQuadtreeMatchesNaiveIndex(t *testing.T) {
	qt := NewLooseQuadtree[int](Rect{0, 0, 1000, 1000}, 4, 6, 1.25)
	type entry struct {
		rect    Rect
		payload int
	}
	var naive []entry

	// Deterministic LCG keeps the case reproducible.
	seed := uint64(0x2545F4914F6CDD1D)
	next := func() float64 {
		seed = seed*6364136223846793005 + 1442695040888963407
		return float64(seed>>11) / float64(1<<53)
	}

	for i := 0; i < 500; i++ {
		if len(naive) > 0 && next() < 0.3 {
			victim := int(next() * float64(len(naive)))
			e := naive[victim]
			if !qt.Remove(e.rect, e.payload) {
				t.Fatalf("Remove(%v, %d) = false", e.rect, e.payload)
			}
			naive = append(naive[:victim], naive[victim+1:]...)
			continue
		}
		r := Rect{
			X:      next() * 900,
			Y:      next() * 900,
			Width:  next() * 100,
			Height: next() * 100,
		}
		if err := qt.Add(r, i); err != nil {
			t.Fatalf("Add(%v): %v", r, err)
		}
		naive = append(naive, entry{rect: r, payload: i})
	}

	if qt.Size() != len(naive) {
		t.Fatalf("Size = %d, want %d", qt.Size(), len(naive))
	}

	for q := 0; q < 50; q++ {
		query := Rect{
			X:      next() * 950,
			Y:      next() * 950,
			Width:  next() * 200,
			Height: next() * 200,
		}
		var want []int
		for _, e := range naive {
			if e.rect.Intersects(query) {
				want = append(want, e.payload)
			}
		}
		got := sortedInts(qt.Lookup(query))
		if !intsEqual(got, sortedInts(want)) {
			t.Fatalf("query %v: got %v, want %v", query, got, sortedInts(want))
		}
	}
}

func TestQuadtreeEach(t *testing.T) {
	qt := NewLooseQuadtree[int](Rect{0, 0, 100, 100}, 2, 4, 1.25)
	for i := 0; i < 10; i++ {
		if err := qt.Add(Rect{float64(i * 9), float64(i * 9), 3, 3}, i); err != nil {
			t.Fatal(err)
		}
	}

	seen := make(map[int]bool)
	qt.Each(func(_ Rect, payload int) Visit {
		seen[payload] = true
		return VisitContinue
	})
	if len(seen) != 10 {
		t.Errorf("visited %d items, want 10", len(seen))
	}

	visited := 0
	qt.Each(func(Rect, int) Visit {
		visited++
		if visited == 3 {
			return VisitStop
		}
		return VisitContinue
	})
	if visited != 3 {
		t.Errorf("visited %d items after stop, want 3", visited)
	}
}

func TestQuadtreeClear(t *testing.T) {
	bounds := Rect{0, 0, 50, 50}
	qt := NewLooseQuadtree[int](bounds, 2, 4, 1.25)
	for i := 0; i < 8; i++ {
		if err := qt.Add(Rect{float64(i * 5), float64(i * 5), 2, 2}, i); err != nil {
			t.Fatal(err)
		}
	}
	qt.Clear()
	if qt.Size() != 0 {
		t.Errorf("Size = %d after Clear, want 0", qt.Size())
	}
	if qt.Bounds() != bounds {
		t.Errorf("Bounds = %v after Clear, want %v", qt.Bounds(), bounds)
	}
	if err := qt.Add(Rect{10, 10, 5, 5}, 1); err != nil {
		t.Errorf("Add after Clear: %v", err)
	}
	if got := qt.Lookup(Rect{10, 10, 5, 5}); !intsEqual(got, []int{1}) {
		t.Errorf("Lookup after Clear = %v, want [1]", got)
	}
}

func TestQuadtreeDefaults(t *testing.T) {
	qt := NewLooseQuadtree[int](Rect{0, 0, 10, 10}, 0, -1, 0.5)
	if qt.maxItemsPerNode != defaultMaxItemsPerNode {
		t.Errorf("maxItemsPerNode = %d, want %d", qt.maxItemsPerNode, defaultMaxItemsPerNode)
	}
	if qt.maxDepth != defaultMaxTreeDepth {
		t.Errorf("maxDepth = %d, want %d", qt.maxDepth, defaultMaxTreeDepth)
	}
	if qt.looseness != defaultLooseness {
		t.Errorf("looseness = %v, want %v", qt.looseness, defaultLooseness)
	}
}

func BenchmarkQuadtreeLookup(b *testing.B) {
	qt := NewLooseQuadtree[int](Rect{0, 0, 4096, 4096}, 8, 8, 1.25)
	for i := 0; i < 4096; i++ {
		r := Rect{
			X:      float64((i * 37) % 4000),
			Y:      float64((i * 101) % 4000),
			Width:  16,
			Height: 16,
		}
		if err := qt.Add(r, i); err != nil {
			b.Fatal(err)
		}
	}
	query := Rect{1000, 1000, 256, 256}
	b.ReportAllocs()
	for b.Loop() {
		_ = qt.Lookup(query)
	}
}
