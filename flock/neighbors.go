package flock

// MaxNeighbors caps every neighbor list. Once an agent's enlarged list is
// full its classification stops, so dense clusters cannot cause unbounded work.
const MaxNeighbors = 1023

// NeighborList is a bounded list of agent indices.
// The backing array grows on demand and is reused across steps.
type NeighborList struct {
	items []int32
}

// Reset empties the list, keeping its storage.
func (l *NeighborList) Reset() {
	l.items = l.items[:0]
}

// Add appends j. It returns false without modifying the list when the
// list is already at MaxNeighbors.
func (l *NeighborList) Add(j int) bool {
	if len(l.items) >= MaxNeighbors {
		return false
	}
	l.items = append(l.items, int32(j))
	return true
}

// Full reports whether the list reached MaxNeighbors.
func (l *NeighborList) Full() bool {
	return len(l.items) >= MaxNeighbors
}

// Len returns the number of stored indices.
func (l *NeighborList) Len() int {
	return len(l.items)
}

// At returns the k-th stored index.
func (l *NeighborList) At(k int) int {
	return int(l.items[k])
}

// Items exposes the stored indices. Callers must not modify the slice.
func (l *NeighborList) Items() []int32 {
	return l.items
}

// Contains reports whether j is in the list.
func (l *NeighborList) Contains(j int) bool {
	for _, v := range l.items {
		if int(v) == j {
			return true
		}
	}
	return false
}
