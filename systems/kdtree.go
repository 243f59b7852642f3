package systems

import (
	"sync"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r2"
)

// agentPoint is a tree key: the position of an agent at build time.
type agentPoint struct {
	r2.Vec
	Index int
}

// Compare returns the signed distance of p from the plane through c
// perpendicular to dimension d.
func (p agentPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(agentPoint)
	if d == 0 {
		return p.X - q.X
	}
	return p.Y - q.Y
}

// Dims returns 2.
func (p agentPoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance between p and c.
func (p agentPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(agentPoint)
	return r2.Norm2(r2.Sub(p.Vec, q.Vec))
}

// agentPoints is the kdtree.Interface over tree keys.
type agentPoints []agentPoint

func (p agentPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p agentPoints) Len() int                      { return len(p) }
func (p agentPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p agentPoints) Pivot(d kdtree.Dim) int {
	return agentPlane{Dim: d, agentPoints: p}.Pivot()
}

// agentPlane sorts keys along one dimension.
type agentPlane struct {
	kdtree.Dim
	agentPoints
}

func (p agentPlane) Less(i, j int) bool {
	if p.Dim == 0 {
		return p.agentPoints[i].X < p.agentPoints[j].X
	}
	return p.agentPoints[i].Y < p.agentPoints[j].Y
}
func (p agentPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p agentPlane) Slice(start, end int) kdtree.SortSlicer {
	return agentPlane{Dim: p.Dim, agentPoints: p.agentPoints[start:end]}
}
func (p agentPlane) Swap(i, j int) {
	p.agentPoints[i], p.agentPoints[j] = p.agentPoints[j], p.agentPoints[i]
}

// TreeIndex is a 2-d tree over a snapshot of the positions, rebuilt every
// RebuildEvery steps. Between rebuilds queries walk the stale node layout
// but read every visited node's current position, both for the split test
// and for box membership. An agent that drifted across a split of an
// ancestor can be missed until the next rebuild.
type TreeIndex struct {
	rebuildEvery int

	mu    sync.RWMutex
	keys  agentPoints
	tree  *kdtree.Tree
	built bool
}

// NewTreeIndex creates an empty tree index. A non-positive cadence uses
// DefaultRebuildEvery.
func NewTreeIndex(rebuildEvery int) *TreeIndex {
	if rebuildEvery < 1 {
		rebuildEvery = DefaultRebuildEvery
	}
	return &TreeIndex{rebuildEvery: rebuildEvery}
}

// RebuildEvery returns the rebuild cadence in steps.
func (t *TreeIndex) RebuildEvery() int { return t.rebuildEvery }

// NeedsRebuild reports whether step falls on the cadence or the tree was
// never built.
func (t *TreeIndex) NeedsRebuild(step int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !t.built || step%t.rebuildEvery == 0
}

// Rebuild constructs the tree from positions.
func (t *TreeIndex) Rebuild(positions []r2.Vec) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cap(t.keys) < len(positions) {
		t.keys = make(agentPoints, len(positions))
	}
	t.keys = t.keys[:len(positions)]
	for i, p := range positions {
		t.keys[i] = agentPoint{Vec: p, Index: i}
	}
	t.tree = kdtree.New(t.keys, false)
	t.built = true
}

// QueryRange appends the agents whose current position lies in the box
// center±halfExtent, pruning with the tree built at the last rebuild.
func (t *TreeIndex) QueryRange(dst []int, center r2.Vec, halfExtent float64, positions []r2.Vec) []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.tree == nil {
		return dst
	}
	return rangeSearch(dst, t.tree.Root, center, halfExtent, positions)
}

// rangeSearch walks the subtree at n. Agents no longer present in positions
// are skipped but their subtrees are still searched.
func rangeSearch(dst []int, n *kdtree.Node, center r2.Vec, h float64, positions []r2.Vec) []int {
	for n != nil {
		j := n.Point.(agentPoint).Index
		if j >= len(positions) {
			dst = rangeSearch(dst, n.Left, center, h, positions)
			n = n.Right
			continue
		}
		p := positions[j]
		if inBox(p, center, h) {
			dst = append(dst, j)
		}

		split, c := p.X, center.X
		if n.Plane == 1 {
			split, c = p.Y, center.Y
		}
		goLeft := c-h <= split
		goRight := c+h >= split
		switch {
		case goLeft && goRight:
			dst = rangeSearch(dst, n.Left, center, h, positions)
			n = n.Right
		case goLeft:
			n = n.Left
		default:
			n = n.Right
		}
	}
	return dst
}
