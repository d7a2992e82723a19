package placement

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/atrium/pkg/scene"
	"github.com/chazu/atrium/pkg/spatial"
)

// collinearTolerance is the perpendicular distance under which a wall is
// treated as lying on a proposed edge's line.
const collinearTolerance = 0.05

// overlapTolerance is the minimum shared span length that counts as an
// overlap. Walls meeting at a corner share a single point; that is not an
// overlap.
const overlapTolerance = 1e-6

func cross(a, b v2.Vec) float64 { return a.X*b.Y - a.Y*b.X }

// segmentsCollinearOverlap reports whether segment q1-q2 is collinear with
// segment p1-p2 and their spans share more than a point.
func segmentsCollinearOverlap(p1, p2, q1, q2 v2.Vec) bool {
	d := p2.Sub(p1)
	length := d.Length()
	if length == 0 {
		return false
	}
	// Both endpoints of q must lie on p's line.
	if math.Abs(cross(d, q1.Sub(p1)))/length > collinearTolerance {
		return false
	}
	if math.Abs(cross(d, q2.Sub(p1)))/length > collinearTolerance {
		return false
	}
	// Project q's endpoints onto p's axis and intersect the 1D intervals.
	t1 := ((q1.X-p1.X)*d.X + (q1.Y-p1.Y)*d.Y) / length
	t2 := ((q2.X-p1.X)*d.X + (q2.Y-p1.Y)*d.Y) / length
	lo := math.Max(0, math.Min(t1, t2))
	hi := math.Min(length, math.Max(t1, t2))
	return hi-lo > overlapTolerance
}

// rectEdges returns the four edges of a footprint rectangle.
func rectEdges(box spatial.Box) [4][2]v2.Vec {
	a := box.Min
	b := v2.Vec{X: box.Max.X, Y: box.Min.Y}
	c := box.Max
	d := v2.Vec{X: box.Min.X, Y: box.Max.Y}
	return [4][2]v2.Vec{{a, b}, {b, c}, {c, d}, {d, a}}
}

// RoomOverlap reports whether any edge of a proposed room rectangle runs
// along an existing wall segment on the level. Candidate walls come from
// the spatial index; exact collinear-span intersection decides. Preview
// walls never block.
func RoomOverlap(st *scene.Store, idx *spatial.Index, level scene.NodeID, box spatial.Box) bool {
	candidates := idx.Query(level, box.Grow(collinearTolerance))
	edges := rectEdges(box)
	for _, id := range candidates {
		n := st.Get(id)
		if n == nil || n.Kind != scene.KindWall || n.IsPreview() {
			continue
		}
		a, b, ok := WallSegment(st, id)
		if !ok {
			continue
		}
		for _, e := range edges {
			if segmentsCollinearOverlap(e[0], e[1], a, b) {
				return true
			}
		}
	}
	return false
}
