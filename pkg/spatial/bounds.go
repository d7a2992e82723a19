// Package spatial provides the per-level cell-grid index that answers
// bounding-box and point queries against the scene tree. Placement tools
// query it on every pointer move, so lookups must not scan the whole
// document.
package spatial

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/atrium/pkg/scene"
)

// Box is an absolute axis-aligned bounding box in plan view.
type Box struct {
	Min v2.Vec
	Max v2.Vec
}

// NewBox returns the normalized box spanning two corners.
func NewBox(a, b v2.Vec) Box {
	return Box{
		Min: v2.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: v2.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// Intersects reports whether the two boxes share any area (touching edges
// count).
func (b Box) Intersects(o Box) bool {
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y
}

// Contains reports whether the point lies within the box (inclusive).
func (b Box) Contains(p v2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Grow expands the box by d on every side.
func (b Box) Grow(d float64) Box {
	g := v2.Vec{X: d, Y: d}
	return Box{Min: b.Min.Sub(g), Max: b.Max.Add(g)}
}

const (
	// openingDepth is the fixed depth band an attached door/window
	// occupies across its wall.
	openingDepth = 0.5

	// guideFootprint is the half-extent a guide line is grown by.
	guideFootprint = 0.1
)

// BoundsFor computes a node's absolute bounding box from its resolved
// absolute anchor position, using a per-kind rule. It returns false for
// kinds that are not spatially indexed (levels, zones, roofs).
//
// Wall geometry lives in Start/End relative to the wall's parent; wall
// nodes keep Position zero, so abs here is the parent origin.
func BoundsFor(n *scene.Node, abs scene.Vec) (Box, bool) {
	switch n.Kind {
	case scene.KindWall:
		wd, ok := n.Data.(scene.WallData)
		if !ok {
			return Box{}, false
		}
		b := NewBox(abs.Add(wd.Start), abs.Add(wd.End))
		return b.Grow(wd.Thickness / 2), true

	case scene.KindSlab, scene.KindGroup, scene.KindStair:
		return NewBox(abs, abs.Add(n.Size)), true

	case scene.KindColumn:
		cd, ok := n.Data.(scene.ColumnData)
		if !ok {
			return Box{}, false
		}
		return NewBox(abs, abs).Grow(cd.Radius), true

	case scene.KindDoor, scene.KindWindow:
		od, ok := n.Data.(scene.OpeningData)
		if !ok {
			return Box{}, false
		}
		half := v2.Vec{X: od.Width / 2, Y: openingDepth}
		return Box{Min: abs.Sub(half), Max: abs.Add(half)}, true

	case scene.KindGuide:
		gd, ok := n.Data.(scene.GuideData)
		if !ok {
			return Box{}, false
		}
		b := NewBox(abs.Add(gd.Start), abs.Add(gd.End))
		return b.Grow(guideFootprint), true

	case scene.KindItem:
		scale := 1.0
		if id, ok := n.Data.(scene.ItemData); ok && id.Scale > 0 {
			scale = id.Scale
		}
		half := n.Size.MulScalar(scale / 2)
		return Box{Min: abs.Sub(half), Max: abs.Add(half)}, true

	default:
		return Box{}, false
	}
}
