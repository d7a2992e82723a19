package scene

import "errors"

var (
	// ErrNotFound is returned when an id does not resolve to a live node.
	ErrNotFound = errors.New("scene: node not found")

	// ErrIllegalChild is returned for a disallowed parent/child kind
	// combination.
	ErrIllegalChild = errors.New("scene: disallowed parent/child combination")

	// ErrRootKind is returned when a level is placed under a non-root
	// parent, or a non-level kind is placed at the document root.
	ErrRootKind = errors.New("scene: only levels may live at the document root")

	// ErrSchema is returned when node data fails schema validation.
	ErrSchema = errors.New("scene: data failed schema validation")

	// ErrCycle is returned when a move would make a node its own ancestor.
	ErrCycle = errors.New("scene: move would create a cycle")
)
