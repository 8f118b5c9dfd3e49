package graph

import "cartograph/domain/core/valueobjects"

// cacheEntry memoizes what the reference layer has learned about one entity
// id. Every field is invalidated independently: changing a node's parent must
// not throw away its property values, and removing an edge must not throw
// away unrelated children lists. Entries are shared by every reference to the
// same id; identity of id, not identity of reference object, is the key.
type cacheEntry struct {
	props map[string]string

	parent      valueobjects.EntityID
	parentKnown bool

	children      []valueobjects.EntityID
	childrenKnown bool

	edges      []valueobjects.EntityID
	edgesKnown bool

	neighbors      []valueobjects.EntityID
	neighborsKnown bool
}

// entry returns the cache entry for an id, creating it lazily. Callers must
// hold m.mu.
func (m *Map) entry(id valueobjects.EntityID) *cacheEntry {
	e, ok := m.cache[id]
	if !ok {
		e = &cacheEntry{props: make(map[string]string)}
		m.cache[id] = e
	}
	return e
}

func (m *Map) cachedProp(id valueobjects.EntityID, name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entry(id).props[name]
	return value, ok
}

func (m *Map) storeProp(id valueobjects.EntityID, name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(id).props[name] = value
}

func (m *Map) cachedParent(id valueobjects.EntityID) (valueobjects.EntityID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(id)
	return e.parent, e.parentKnown
}

func (m *Map) storeParent(id, parent valueobjects.EntityID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(id)
	e.parent = parent
	e.parentKnown = true
}

func (m *Map) cachedChildren(id valueobjects.EntityID) ([]valueobjects.EntityID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(id)
	return e.children, e.childrenKnown
}

func (m *Map) storeChildren(id valueobjects.EntityID, children []valueobjects.EntityID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(id)
	e.children = children
	e.childrenKnown = true
}

// invalidateChildren drops a node's memoized children list. Invoked when a
// child appears, disappears or is re-parented; siblings' caches stay intact.
func (m *Map) invalidateChildren(id valueobjects.EntityID) {
	if id.IsZero() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(id)
	e.children = nil
	e.childrenKnown = false
}

func (m *Map) cachedEdges(id valueobjects.EntityID) ([]valueobjects.EntityID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(id)
	return e.edges, e.edgesKnown
}

func (m *Map) storeEdges(id valueobjects.EntityID, edges []valueobjects.EntityID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(id)
	e.edges = edges
	e.edgesKnown = true
}

func (m *Map) cachedNeighbors(id valueobjects.EntityID) ([]valueobjects.EntityID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(id)
	return e.neighbors, e.neighborsKnown
}

func (m *Map) storeNeighbors(id valueobjects.EntityID, neighbors []valueobjects.EntityID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(id)
	e.neighbors = neighbors
	e.neighborsKnown = true
}

// invalidateAdjacency drops a node's memoized edge and neighbor lists
func (m *Map) invalidateAdjacency(id valueobjects.EntityID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidateAdjacencyLocked(id)
}

func (m *Map) invalidateAdjacencyLocked(id valueobjects.EntityID) {
	e := m.entry(id)
	e.edges = nil
	e.edgesKnown = false
	e.neighbors = nil
	e.neighborsKnown = false
}

// sweepNeighborCaches drops the edge and neighbor caches of the node and of
// every node transitively reachable from it through cached neighbor links.
// Only cached links are followed; the sweep never touches the backend. Used
// on node removal and restoration, where any node that cached this one as a
// neighbor holds a stale list.
func (m *Map) sweepNeighborCaches(id valueobjects.EntityID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	visited := map[valueobjects.EntityID]bool{}
	queue := []valueobjects.EntityID{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		e := m.entry(current)
		if e.neighborsKnown {
			queue = append(queue, e.neighbors...)
		}
		m.invalidateAdjacencyLocked(current)
	}
}
