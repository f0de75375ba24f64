package geom

import (
	"github.com/dhconnelly/rtreego"
)

// minExtent is the smallest side length the R-tree will accept for a
// bounding box. Degenerate (zero-area, e.g. a single aisle waypoint)
// entries are padded to this extent, mirroring the teacher's epsilon
// padding for point features in its chart spatial index.
const minExtent = 1e-6

// Entry is one item stored in an Index: an opaque integer handle plus
// the bounding box it occupies.
type Entry struct {
	ID     int
	Bounds BBox
}

func (e *entrySpatial) Bounds() rtreego.Rect {
	b := e.entry.Bounds
	w := b.MaxX - b.MinX
	h := b.MaxY - b.MinY
	if w < minExtent {
		w = minExtent
	}
	if h < minExtent {
		h = minExtent
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, []float64{w, h})
	return rect
}

type entrySpatial struct {
	entry Entry
}

// Index is an R-tree-backed spatial candidate pruner. It never decides
// acceptance on its own: Query returns every entry whose bounding box
// might overlap the query box, and the caller still runs the exact
// geometric predicate (point-in-polygon, segment intersection, ...)
// against that candidate set. This turns an O(n) linear scan over
// zones/obstacles into an O(log n) R-tree search before the expensive
// exact check runs.
type Index struct {
	tree *rtreego.Rtree
}

// NewIndex builds an Index over entries. Mirrors the teacher's
// BuildIndex: a single R-tree built once from the full candidate list,
// then queried repeatedly.
func NewIndex(entries []Entry) *Index {
	tree := rtreego.NewTree(2, 25, 50)
	for _, e := range entries {
		tree.Insert(&entrySpatial{entry: e})
	}
	return &Index{tree: tree}
}

// Query returns the IDs of every entry whose (possibly epsilon-padded)
// bounding box intersects box.
func (idx *Index) Query(box BBox) []int {
	if idx == nil || idx.tree == nil {
		return nil
	}
	w := box.MaxX - box.MinX
	h := box.MaxY - box.MinY
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	rect, _ := rtreego.NewRect(rtreego.Point{box.MinX, box.MinY}, []float64{w + minExtent, h + minExtent})
	hits := idx.tree.SearchIntersect(rect)
	ids := make([]int, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.(*entrySpatial).entry.ID)
	}
	return ids
}
