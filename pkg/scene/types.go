package scene

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/google/uuid"
)

// Vec is a 2D plan-view vector in grid units. X runs along the grid's east
// axis, Y along its south axis. Vertical extent lives in kind-specific data.
type Vec = v2.Vec

// NodeID is an opaque, stable identifier for scene nodes. IDs are unique
// across the whole document.
type NodeID string

// RootID is the pseudo-parent of top-level nodes (levels).
const RootID NodeID = ""

// NewNodeID generates a fresh globally unique node id.
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// IsZero reports whether the id is unset.
func (id NodeID) IsZero() bool { return id == "" }

// Short returns an abbreviated form of the id for log and error messages.
func (id NodeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

func (id NodeID) String() string { return string(id) }

// NodeKind enumerates the closed set of node kinds. Kinds are fixed at
// build time; the registry dispatches over this sum rather than over
// runtime type names.
type NodeKind int

const (
	KindLevel NodeKind = iota // floor of a building, owns its elements
	KindWall
	KindDoor
	KindWindow
	KindGroup // room/assembly whose children are its perimeter walls
	KindZone  // non-owning collection of node references
	KindSlab
	KindColumn
	KindStair
	KindRoof
	KindRoofSegment
	KindGuide // reference guide line
	KindItem  // free-standing furnishing/media item
)

// KindRoot is the pseudo-kind of the document root. It is never assigned
// to a node; it only appears as the parent side of legality checks.
const KindRoot NodeKind = -1

func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindLevel:
		return "level"
	case KindWall:
		return "wall"
	case KindDoor:
		return "door"
	case KindWindow:
		return "window"
	case KindGroup:
		return "group"
	case KindZone:
		return "zone"
	case KindSlab:
		return "slab"
	case KindColumn:
		return "column"
	case KindStair:
		return "stair"
	case KindRoof:
		return "roof"
	case KindRoofSegment:
		return "roofSegment"
	case KindGuide:
		return "guide"
	case KindItem:
		return "item"
	default:
		return "unknown"
	}
}

// Kinds lists every registrable node kind, in declaration order.
var Kinds = []NodeKind{
	KindLevel, KindWall, KindDoor, KindWindow, KindGroup, KindZone,
	KindSlab, KindColumn, KindStair, KindRoof, KindRoofSegment,
	KindGuide, KindItem,
}

// KindFromString maps a serialized kind name back to its NodeKind.
func KindFromString(s string) (NodeKind, bool) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}
