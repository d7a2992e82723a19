package scene

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// LevelData describes one floor of the building.
type LevelData struct {
	Elevation float64 `json:"elevation"` // height of the floor plane
	Height    float64 `json:"height"`    // floor-to-ceiling height
}

func (LevelData) nodeData() {}

// WallData describes a straight wall segment. Start and End are relative to
// the wall's parent (a level or a group); the node's Size holds
// [length, thickness].
type WallData struct {
	Start     Vec     `json:"start"`
	End       Vec     `json:"end"`
	Thickness float64 `json:"thickness"`
	Height    float64 `json:"height,omitempty"` // 0 means full level height
}

func (WallData) nodeData() {}

// OpeningData describes a door or window attached to a wall. The owning
// node's Position.X is the offset along the wall from its start point.
type OpeningData struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Sill   float64 `json:"sill,omitempty"` // bottom edge above the floor
}

func (OpeningData) nodeData() {}

// GroupData describes a room or assembly. The group's Position/Size is the
// bounding footprint; its children's coordinates are relative to it.
type GroupData struct {
	Closed bool `json:"closed,omitempty"` // perimeter forms a closed loop
}

func (GroupData) nodeData() {}

// ZoneData is a non-owning collection: a list of referenced node ids plus a
// polygon boundary. Deleting a referenced node shrinks Members, nothing
// more.
type ZoneData struct {
	Members  []NodeID `json:"members,omitempty"` // weak references
	Boundary []Vec    `json:"boundary,omitempty"`
	Color    string   `json:"color,omitempty"`
	Level    NodeID   `json:"level,omitempty"`
}

func (ZoneData) nodeData() {}

// SlabData describes a floor slab; footprint comes from the node's
// Position/Size.
type SlabData struct {
	Thickness float64 `json:"thickness"`
}

func (SlabData) nodeData() {}

// ColumnData describes a point-placed column.
type ColumnData struct {
	Radius float64 `json:"radius"`
}

func (ColumnData) nodeData() {}

// StairData describes a straight stair run.
type StairData struct {
	Steps int     `json:"steps"`
	Rise  float64 `json:"rise,omitempty"`
}

func (StairData) nodeData() {}

// RoofData describes a roof; its children are roof segments.
type RoofData struct {
	Pitch float64 `json:"pitch"` // radians
}

func (RoofData) nodeData() {}

// RoofSegmentData describes one face of a roof.
type RoofSegmentData struct {
	Outline []Vec `json:"outline,omitempty"`
}

func (RoofSegmentData) nodeData() {}

// GuideData describes a reference guide line used for snapping.
type GuideData struct {
	Start Vec `json:"start"`
	End   Vec `json:"end"`
}

func (GuideData) nodeData() {}

// ItemData describes a free-standing furnishing or media item.
type ItemData struct {
	Asset string  `json:"asset,omitempty"` // external asset reference
	Scale float64 `json:"scale,omitempty"` // footprint multiplier, 0 = 1
}

func (ItemData) nodeData() {}
