// Package placement implements the geometry rules interactive tools consult
// on every pointer move: nearest-wall attachment for doors/windows and
// wall-overlap checks for room rectangles. Validators are read-only; they
// gate whether a gesture may commit a command, they never mutate the store.
package placement

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/atrium/pkg/scene"
)

// DefaultTolerance is how close (in grid units) a pointer must be to a wall
// for an element to attach to it.
const DefaultTolerance = 0.75

// Attachment describes a candidate wall-element placement. Rotation is the
// wall's plan angle; an accepted element inherits it so it sits flush.
type Attachment struct {
	Wall     scene.NodeID
	Offset   float64 // along-wall distance from the wall start
	Distance float64 // perpendicular pointer distance
	Rotation float64 // radians
}

// WallSegment resolves a wall's absolute endpoints, summing the
// parent-relative nesting of levels and groups.
func WallSegment(st *scene.Store, id scene.NodeID) (a, b v2.Vec, ok bool) {
	n := st.Get(id)
	if n == nil || n.Kind != scene.KindWall {
		return v2.Vec{}, v2.Vec{}, false
	}
	wd, good := n.Data.(scene.WallData)
	if !good {
		return v2.Vec{}, v2.Vec{}, false
	}
	abs, good := st.AbsolutePosition(id)
	if !good {
		return v2.Vec{}, v2.Vec{}, false
	}
	return abs.Add(wd.Start), abs.Add(wd.End), true
}

// NearestWall finds the wall whose segment lies closest to p, within
// tolerance (non-positive means DefaultTolerance). The projection is
// clamped to the segment, so offsets never fall outside [0, length].
func NearestWall(st *scene.Store, walls []scene.NodeID, p v2.Vec, tolerance float64) (Attachment, bool) {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	best := Attachment{Distance: math.Inf(1)}
	for _, id := range walls {
		a, b, ok := WallSegment(st, id)
		if !ok {
			continue
		}
		d := b.Sub(a)
		lenSq := d.X*d.X + d.Y*d.Y
		if lenSq == 0 {
			continue
		}
		t := ((p.X-a.X)*d.X + (p.Y-a.Y)*d.Y) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		closest := a.Add(d.MulScalar(t))
		dist := p.Sub(closest).Length()
		if dist < best.Distance {
			best = Attachment{
				Wall:     id,
				Offset:   t * math.Sqrt(lenSq),
				Distance: dist,
				Rotation: math.Atan2(d.Y, d.X),
			}
		}
	}
	if best.Wall.IsZero() || best.Distance > tolerance {
		return Attachment{}, false
	}
	return best, true
}

// OpeningRange converts a wall-local offset and width into the half-open
// integer grid-cell interval [start, end) the element occupies.
func OpeningRange(offset, width float64) [2]int {
	start := int(math.Floor(offset))
	end := int(math.Ceil(offset + width))
	if end <= start {
		end = start + 1
	}
	return [2]int{start, end}
}

// RangesOverlap reports whether two cell intervals share any cell.
func RangesOverlap(a, b [2]int) bool {
	return a[0] < b[1] && b[0] < a[1]
}

// OccupiedRanges returns the cell intervals of the openings on a wall,
// skipping any ids listed in ignore. Preview openings count: two previews
// of the same gesture family must not stack on one span.
func OccupiedRanges(st *scene.Store, wall scene.NodeID, ignore ...scene.NodeID) [][2]int {
	n := st.Get(wall)
	if n == nil {
		return nil
	}
	skip := make(map[scene.NodeID]bool, len(ignore))
	for _, id := range ignore {
		skip[id] = true
	}
	var ranges [][2]int
	for _, cid := range n.Children {
		c := st.Get(cid)
		if c == nil || skip[cid] {
			continue
		}
		if c.Kind != scene.KindDoor && c.Kind != scene.KindWindow {
			continue
		}
		od, ok := c.Data.(scene.OpeningData)
		if !ok {
			continue
		}
		ranges = append(ranges, OpeningRange(c.Position.X, od.Width))
	}
	return ranges
}

// CanPlaceOpening reports whether a door/window of the given width may be
// placed at the wall-local offset: the occupied interval must not share a
// cell with any existing opening, and the whole interval must lie on the
// wall. Ignored ids (typically the preview node itself) do not block.
func CanPlaceOpening(st *scene.Store, wall scene.NodeID, offset, width float64, ignore ...scene.NodeID) bool {
	a, b, ok := WallSegment(st, wall)
	if !ok {
		return false
	}
	r := OpeningRange(offset, width)
	if r[0] < 0 || float64(r[1]) > math.Ceil(b.Sub(a).Length()) {
		return false
	}
	for _, occ := range OccupiedRanges(st, wall, ignore...) {
		if RangesOverlap(r, occ) {
			return false
		}
	}
	return true
}
