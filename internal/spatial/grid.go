// Package spatial provides a uniform-bucket 2D index used by the fusion
// engine for nearest-neighbor lookups between OCR and accessibility
// observations. Buckets are fixed-size squares; a radius query enumerates
// every bucket within ceil(radius/bucket) cells of the query point's bucket
// and returns the union of contained indices. Results over-approximate the
// radius: callers must re-check candidates with an exact distance.
package spatial

import "math"

type cellKey struct {
	cx, cy int
}

// Grid indexes positioned records by integer index. It avoids the O(n²)
// pairwise scan once accessibility counts grow past the fusion engine's
// linear-scan threshold.
type Grid struct {
	bucket float64
	cells  map[cellKey][]int
	count  int
}

// NewGrid creates an empty grid with the given bucket edge length. A
// non-positive bucket size falls back to 50 units, the tuned default.
func NewGrid(bucketSize float64) *Grid {
	if bucketSize <= 0 {
		bucketSize = 50
	}
	return &Grid{
		bucket: bucketSize,
		cells:  make(map[cellKey][]int),
	}
}

// Insert adds a record index at the given position. A record's bucket key is
// (floor(x/bucket), floor(y/bucket)).
func (g *Grid) Insert(index int, x, y float64) {
	key := g.keyFor(x, y)
	g.cells[key] = append(g.cells[key], index)
	g.count++
}

// Len returns the number of inserted records.
func (g *Grid) Len() int { return g.count }

// Query returns the indices of all records in buckets within
// ceil(radius/bucket) cells of the query point's bucket. Candidates are not
// guaranteed to lie within the radius. The returned order is deterministic:
// cells are visited row-major around the query bucket and indices keep
// insertion order within a cell. An empty grid always returns nil.
func (g *Grid) Query(x, y, radius float64) []int {
	if g.count == 0 || radius < 0 {
		return nil
	}
	center := g.keyFor(x, y)
	reach := int(math.Ceil(radius / g.bucket))

	var candidates []int
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			key := cellKey{cx: center.cx + dx, cy: center.cy + dy}
			candidates = append(candidates, g.cells[key]...)
		}
	}
	return candidates
}

func (g *Grid) keyFor(x, y float64) cellKey {
	return cellKey{
		cx: int(math.Floor(x / g.bucket)),
		cy: int(math.Floor(y / g.bucket)),
	}
}
