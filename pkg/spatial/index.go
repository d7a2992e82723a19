package spatial

import (
	"math"
	"sort"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"go.uber.org/zap"

	"github.com/chazu/atrium/pkg/scene"
)

// DefaultCellSize is one grid unit per cell.
const DefaultCellSize = 1.0

// cellKey addresses one grid cell on a level.
type cellKey struct {
	X int
	Z int
}

// entry is the reverse-map record for an indexed node.
type entry struct {
	level scene.NodeID
	box   Box
	cells []cellKey
}

// Index buckets node bounding boxes into per-level cell grids. Broad-phase
// candidates come from the cells a query spans; the exact stored box decides
// membership, because one box can span several cells and boxes sharing a
// cell need not overlap.
type Index struct {
	cellSize float64
	log      *zap.Logger
	levels   map[scene.NodeID]map[cellKey]map[scene.NodeID]struct{}
	entries  map[scene.NodeID]*entry
}

// New creates an index. A non-positive cell size falls back to the default.
func New(cellSize float64, log *zap.Logger) *Index {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{
		cellSize: cellSize,
		log:      log,
		levels:   make(map[scene.NodeID]map[cellKey]map[scene.NodeID]struct{}),
		entries:  make(map[scene.NodeID]*entry),
	}
}

// CellSize returns the configured cell edge length.
func (x *Index) CellSize() float64 { return x.cellSize }

// Len returns the number of indexed nodes.
func (x *Index) Len() int { return len(x.entries) }

// cellsFor returns every cell key the box spans.
func (x *Index) cellsFor(b Box) []cellKey {
	x0 := int(math.Floor(b.Min.X / x.cellSize))
	x1 := int(math.Floor(b.Max.X / x.cellSize))
	z0 := int(math.Floor(b.Min.Y / x.cellSize))
	z1 := int(math.Floor(b.Max.Y / x.cellSize))
	cells := make([]cellKey, 0, (x1-x0+1)*(z1-z0+1))
	for cx := x0; cx <= x1; cx++ {
		for cz := z0; cz <= z1; cz++ {
			cells = append(cells, cellKey{X: cx, Z: cz})
		}
	}
	return cells
}

// Update registers (or re-registers) a node's absolute bounding box on a
// level. Any prior registration is removed first, so a moved node never
// lingers in stale cells.
func (x *Index) Update(id, level scene.NodeID, box Box) {
	x.Remove(id)

	grid := x.levels[level]
	if grid == nil {
		grid = make(map[cellKey]map[scene.NodeID]struct{})
		x.levels[level] = grid
	}
	cells := x.cellsFor(box)
	for _, c := range cells {
		set := grid[c]
		if set == nil {
			set = make(map[scene.NodeID]struct{})
			grid[c] = set
		}
		set[id] = struct{}{}
	}
	x.entries[id] = &entry{level: level, box: box, cells: cells}
}

// Remove evicts a node from every cell it occupied, deleting emptied cell
// sets so memory stays bounded by live geometry. Unknown ids are ignored.
func (x *Index) Remove(id scene.NodeID) {
	e := x.entries[id]
	if e == nil {
		return
	}
	if grid := x.levels[e.level]; grid != nil {
		for _, c := range e.cells {
			if set := grid[c]; set != nil {
				delete(set, id)
				if len(set) == 0 {
					delete(grid, c)
				}
			}
		}
		if len(grid) == 0 {
			delete(x.levels, e.level)
		}
	}
	delete(x.entries, id)
}

// Box returns the last-registered box for a node.
func (x *Index) Box(id scene.NodeID) (Box, bool) {
	e := x.entries[id]
	if e == nil {
		return Box{}, false
	}
	return e.box, true
}

// Query returns the ids on a level whose stored boxes intersect box, in a
// deterministic order with no duplicates. An empty or unregistered level
// yields an empty result, never an error.
func (x *Index) Query(level scene.NodeID, box Box) []scene.NodeID {
	grid := x.levels[level]
	if grid == nil {
		return nil
	}
	var out []scene.NodeID
	seen := make(map[scene.NodeID]struct{})
	for _, c := range x.cellsFor(box) {
		for id := range grid[c] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if e := x.entries[id]; e != nil && e.box.Intersects(box) {
				out = append(out, id)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// QueryPoint is the single-cell specialization of Query.
func (x *Index) QueryPoint(level scene.NodeID, p v2.Vec) []scene.NodeID {
	grid := x.levels[level]
	if grid == nil {
		return nil
	}
	c := cellKey{
		X: int(math.Floor(p.X / x.cellSize)),
		Z: int(math.Floor(p.Y / x.cellSize)),
	}
	var out []scene.NodeID
	for id := range grid[c] {
		if e := x.entries[id]; e != nil && e.box.Contains(p) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clear drops everything.
func (x *Index) Clear() {
	x.levels = make(map[scene.NodeID]map[cellKey]map[scene.NodeID]struct{})
	x.entries = make(map[scene.NodeID]*entry)
}
