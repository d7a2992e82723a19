package scene

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Shape declares, for one node kind, how raw data is parsed and validated
// and which parent kinds may own it. A kind whose Parents list contains
// KindRoot lives at the document root.
type Shape struct {
	Parse    func(raw json.RawMessage) (NodeData, error)
	Validate func(data NodeData) error
	Parents  []NodeKind
}

// Registry holds the per-kind shape declarations. It is built explicitly at
// session start and passed into the store; after registration it is
// read-only.
type Registry struct {
	shapes map[NodeKind]Shape
	log    *zap.Logger
}

// NewRegistry returns an empty registry. A nil logger is replaced with a
// no-op logger.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		shapes: make(map[NodeKind]Shape),
		log:    log,
	}
}

// Register declares the shape for a kind. Duplicate registration is a loud
// warning, not a crash, to tolerate hot reload during development; the
// first registration wins.
func (r *Registry) Register(kind NodeKind, shape Shape) {
	if _, exists := r.shapes[kind]; exists {
		r.log.Warn("schema registry: duplicate registration ignored",
			zap.Stringer("kind", kind))
		return
	}
	r.shapes[kind] = shape
}

// Registered reports whether the kind has a shape declaration.
func (r *Registry) Registered(kind NodeKind) bool {
	_, ok := r.shapes[kind]
	return ok
}

// CanBeChildOf reports whether a node of kind child may be owned by a node
// of kind parent (KindRoot for the document root). The table is fixed and
// closed.
func (r *Registry) CanBeChildOf(child, parent NodeKind) bool {
	shape, ok := r.shapes[child]
	if !ok {
		return false
	}
	for _, p := range shape.Parents {
		if p == parent {
			return true
		}
	}
	return false
}

// Parse converts raw serialized data into the kind's typed payload.
func (r *Registry) Parse(kind NodeKind, raw json.RawMessage) (NodeData, error) {
	shape, ok := r.shapes[kind]
	if !ok {
		return nil, fmt.Errorf("%w: kind %s not registered", ErrSchema, kind)
	}
	if shape.Parse == nil {
		return nil, fmt.Errorf("%w: kind %s has no parser", ErrSchema, kind)
	}
	return shape.Parse(raw)
}

// Validate checks typed payload data against the kind's shape. A nil
// validator accepts everything.
func (r *Registry) Validate(kind NodeKind, data NodeData) error {
	shape, ok := r.shapes[kind]
	if !ok {
		return fmt.Errorf("%w: kind %s not registered", ErrSchema, kind)
	}
	if shape.Validate == nil {
		return nil
	}
	if err := shape.Validate(data); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}

// parseAs decodes raw JSON into a concrete NodeData variant.
func parseAs[T NodeData](raw json.RawMessage) (NodeData, error) {
	var d T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchema, err)
		}
	}
	return d, nil
}

// expect asserts that data is the variant a kind requires.
func expect[T NodeData](kind NodeKind) func(NodeData) error {
	return func(data NodeData) error {
		if _, ok := data.(T); !ok {
			return fmt.Errorf("kind %s: unexpected payload %T", kind, data)
		}
		return nil
	}
}

// DefaultRegistry builds the registry for the fixed set of building node
// kinds. Registration happens once at session startup.
func DefaultRegistry(log *zap.Logger) *Registry {
	r := NewRegistry(log)

	r.Register(KindLevel, Shape{
		Parse:   parseAs[LevelData],
		Parents: []NodeKind{KindRoot},
		Validate: func(data NodeData) error {
			d, ok := data.(LevelData)
			if !ok {
				return fmt.Errorf("level: unexpected payload %T", data)
			}
			if d.Height < 0 {
				return fmt.Errorf("level: negative height %.2f", d.Height)
			}
			return nil
		},
	})

	r.Register(KindWall, Shape{
		Parse:   parseAs[WallData],
		Parents: []NodeKind{KindLevel, KindGroup},
		Validate: func(data NodeData) error {
			d, ok := data.(WallData)
			if !ok {
				return fmt.Errorf("wall: unexpected payload %T", data)
			}
			if d.Thickness <= 0 {
				return fmt.Errorf("wall: thickness %.3f must be positive", d.Thickness)
			}
			if d.End.Sub(d.Start).Length() < 1e-9 {
				return fmt.Errorf("wall: zero-length segment")
			}
			return nil
		},
	})

	opening := func(kind NodeKind) Shape {
		return Shape{
			Parse:   parseAs[OpeningData],
			Parents: []NodeKind{KindWall},
			Validate: func(data NodeData) error {
				d, ok := data.(OpeningData)
				if !ok {
					return fmt.Errorf("%s: unexpected payload %T", kind, data)
				}
				if d.Width <= 0 {
					return fmt.Errorf("%s: width %.3f must be positive", kind, d.Width)
				}
				return nil
			},
		}
	}
	r.Register(KindDoor, opening(KindDoor))
	r.Register(KindWindow, opening(KindWindow))

	r.Register(KindGroup, Shape{
		Parse:    parseAs[GroupData],
		Parents:  []NodeKind{KindLevel, KindGroup},
		Validate: expect[GroupData](KindGroup),
	})

	// Zones own no nodes; their Parents entry only places the zone node
	// itself on a level. Membership is by weak reference in ZoneData.
	r.Register(KindZone, Shape{
		Parse:    parseAs[ZoneData],
		Parents:  []NodeKind{KindLevel},
		Validate: expect[ZoneData](KindZone),
	})

	r.Register(KindSlab, Shape{
		Parse:    parseAs[SlabData],
		Parents:  []NodeKind{KindLevel},
		Validate: expect[SlabData](KindSlab),
	})

	r.Register(KindColumn, Shape{
		Parse:   parseAs[ColumnData],
		Parents: []NodeKind{KindLevel},
		Validate: func(data NodeData) error {
			d, ok := data.(ColumnData)
			if !ok {
				return fmt.Errorf("column: unexpected payload %T", data)
			}
			if d.Radius <= 0 {
				return fmt.Errorf("column: radius %.3f must be positive", d.Radius)
			}
			return nil
		},
	})

	r.Register(KindStair, Shape{
		Parse:    parseAs[StairData],
		Parents:  []NodeKind{KindLevel},
		Validate: expect[StairData](KindStair),
	})

	r.Register(KindRoof, Shape{
		Parse:    parseAs[RoofData],
		Parents:  []NodeKind{KindLevel},
		Validate: expect[RoofData](KindRoof),
	})

	r.Register(KindRoofSegment, Shape{
		Parse:    parseAs[RoofSegmentData],
		Parents:  []NodeKind{KindRoof},
		Validate: expect[RoofSegmentData](KindRoofSegment),
	})

	r.Register(KindGuide, Shape{
		Parse:    parseAs[GuideData],
		Parents:  []NodeKind{KindLevel},
		Validate: expect[GuideData](KindGuide),
	})

	r.Register(KindItem, Shape{
		Parse:    parseAs[ItemData],
		Parents:  []NodeKind{KindLevel},
		Validate: expect[ItemData](KindItem),
	})

	return r
}
