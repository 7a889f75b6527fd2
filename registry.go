package maplayers

// Handle is a dense numeric handle for a registered identifier, suitable
// for direct indexing into renderer-side arrays.
type Handle uint32

// HandleTable is the authoritative mapping from stable string identifiers
// to dense numeric handles: O(1) acquire and release with handle reuse.
// Own one per renderer and pass it explicitly; it is not safe for
// concurrent use.
type HandleTable struct {
	byID map[string]Handle
	ids  []string
	free []Handle
}

// NewHandleTable creates an empty table.
func NewHandleTable() *HandleTable {
	return &HandleTable{byID: make(map[string]Handle)}
}

// Acquire returns the handle for id, allocating one when the id is new.
// Released handles are reused before the dense range grows.
func (t *HandleTable) Acquire(id string) Handle {
	if h, ok := t.byID[id]; ok {
		return h
	}
	var h Handle
	if n := len(t.free); n > 0 {
		h = t.free[n-1]
		t.free = t.free[:n-1]
		t.ids[h] = id
	} else {
		h = Handle(len(t.ids))
		t.ids = append(t.ids, id)
	}
	t.byID[id] = h
	return h
}

// Lookup returns the handle for id without allocating.
func (t *HandleTable) Lookup(id string) (Handle, bool) {
	h, ok := t.byID[id]
	return h, ok
}

// ID returns the identifier registered under h, or "" when the handle is
// unallocated or released.
func (t *HandleTable) ID(h Handle) string {
	if int(h) >= len(t.ids) {
		return ""
	}
	return t.ids[h]
}

// Release frees the handle for id so it can be reused. Returns false when
// the id is not registered.
func (t *HandleTable) Release(id string) bool {
	h, ok := t.byID[id]
	if !ok {
		return false
	}
	delete(t.byID, id)
	t.ids[h] = ""
	t.free = append(t.free, h)
	return true
}

// Len reports the number of live registrations.
func (t *HandleTable) Len() int { return len(t.byID) }

// Cap reports the dense handle range: every live handle is below it.
func (t *HandleTable) Cap() int { return len(t.ids) }

// Each visits every live registration in handle order until fn returns
// VisitStop.
func (t *HandleTable) Each(fn func(id string, h Handle) Visit) {
	for i, id := range t.ids {
		if id == "" {
			continue
		}
		if fn(id, Handle(i)) == VisitStop {
			return
		}
	}
}
