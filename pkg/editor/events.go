package editor

import "github.com/chazu/atrium/pkg/scene"

// Event names the rendering layer forwards to placement tools. The core
// never reaches into rendering state; the renderer reads the tree/index and
// reports gestures as plain events.
const (
	EventGridClick   = "grid:click"
	EventGridMove    = "grid:move"
	EventWallEnter   = "wall:enter"
	EventWallMove    = "wall:move"
	EventWallLeave   = "wall:leave"
	EventPointerDown = "pointerdown"
	EventPointerUp   = "pointerup"
)

// Event is one forwarded gesture sample.
type Event struct {
	Name   string
	Point  scene.Vec    // grid-space pointer position
	Target scene.NodeID // hovered node, if any
}
