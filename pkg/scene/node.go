package scene

// EditorMeta is transient per-node editor state for in-progress gestures.
// It is never serialized and never enters the undo log.
type EditorMeta struct {
	Preview       bool   // node is speculative, not yet committed
	CanPlace      bool   // live placement-validity feedback
	DeletePreview bool   // node is marked in a pending delete selection
	DeleteRange   [2]int // wall-cell interval marked for deletion
}

// Node is the universal scene entity. Position is relative to the immediate
// parent's local origin; a node's absolute position is only obtainable by
// summing Position along the parent chain (Store.AbsolutePosition).
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Visible  bool     `json:"visible"`
	Opacity  float64  `json:"opacity"`
	ParentID NodeID   `json:"parentId,omitempty"` // weak back-reference
	Children []NodeID `json:"children,omitempty"` // ordered, parent-owned

	Position Vec     `json:"position"`
	Rotation float64 `json:"rotation,omitempty"` // radians, plan view
	Size     Vec     `json:"size"`

	Data   NodeData    `json:"-"`
	Editor *EditorMeta `json:"-"`
}

// IsPreview reports whether the node is an uncommitted gesture preview.
func (n *Node) IsPreview() bool {
	return n.Editor != nil && n.Editor.Preview
}

// clone returns a copy of the node with its own Children slice. Data
// variants are value types, so the interface copy is already independent.
func (n *Node) clone() *Node {
	c := *n
	c.Children = append([]NodeID(nil), n.Children...)
	if n.Editor != nil {
		m := *n.Editor
		c.Editor = &m
	}
	return &c
}

// NodeSpec describes a node to be created, possibly with nested children.
// The store assigns fresh ids and wires parent links when materializing it.
type NodeSpec struct {
	Kind     NodeKind
	Name     string
	Hidden   bool
	Opacity  float64 // 0 means fully opaque
	Position Vec
	Rotation float64
	Size     Vec
	Data     NodeData
	Editor   *EditorMeta
	Children []NodeSpec
}
