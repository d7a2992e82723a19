package scene

import (
	"fmt"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

// Store owns the scene tree. Nodes live in a flat id-keyed arena with
// children stored as ordered id lists, so mutating a node never touches its
// ancestors; the arena is the single source of truth.
type Store struct {
	reg   *Registry
	log   *zap.Logger
	nodes map[NodeID]*Node
	roots []NodeID // ordered level ids
}

// NewStore creates an empty store backed by the given registry.
func NewStore(reg *Registry, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		reg:   reg,
		log:   log,
		nodes: make(map[NodeID]*Node),
	}
}

// Registry returns the schema registry the store validates against.
func (s *Store) Registry() *Registry { return s.reg }

// Get returns the node with the given id, or nil.
func (s *Store) Get(id NodeID) *Node { return s.nodes[id] }

// Len returns the total number of live nodes.
func (s *Store) Len() int { return len(s.nodes) }

// Roots returns the ordered top-level (level) ids.
func (s *Store) Roots() []NodeID {
	return append([]NodeID(nil), s.roots...)
}

// kindOf resolves the kind at the parent side of a legality check.
func (s *Store) kindOf(parent NodeID) (NodeKind, error) {
	if parent == RootID {
		return KindRoot, nil
	}
	p := s.nodes[parent]
	if p == nil {
		return 0, fmt.Errorf("%w: parent %s", ErrNotFound, parent.Short())
	}
	return p.Kind, nil
}

// checkChild maps a failed legality lookup to the right sentinel.
func (s *Store) checkChild(child, parent NodeKind) error {
	if s.reg.CanBeChildOf(child, parent) {
		return nil
	}
	if parent == KindRoot || child == KindLevel {
		return fmt.Errorf("%w: %s under %s", ErrRootKind, child, parent)
	}
	return fmt.Errorf("%w: %s under %s", ErrIllegalChild, child, parent)
}

// validateSpec checks a whole spec subtree before anything is materialized,
// so AddTree either applies completely or not at all.
func (s *Store) validateSpec(spec NodeSpec, parent NodeKind) error {
	if err := s.checkChild(spec.Kind, parent); err != nil {
		return err
	}
	if err := s.reg.Validate(spec.Kind, spec.Data); err != nil {
		return err
	}
	for _, c := range spec.Children {
		if err := s.validateSpec(c, spec.Kind); err != nil {
			return err
		}
	}
	return nil
}

// insert materializes a spec subtree depth-first, assigning fresh ids and
// wiring parent links transitively.
func (s *Store) insert(spec NodeSpec, parent NodeID) NodeID {
	n := &Node{
		ID:       NewNodeID(),
		Kind:     spec.Kind,
		Name:     spec.Name,
		Visible:  !spec.Hidden,
		Opacity:  spec.Opacity,
		ParentID: parent,
		Position: spec.Position,
		Rotation: spec.Rotation,
		Size:     spec.Size,
		Data:     spec.Data,
	}
	if n.Opacity == 0 {
		n.Opacity = 1
	}
	if spec.Editor != nil {
		m := *spec.Editor
		n.Editor = &m
	}
	s.nodes[n.ID] = n
	for _, c := range spec.Children {
		n.Children = append(n.Children, s.insert(c, n.ID))
	}
	return n.ID
}

// AddTree creates the node described by spec, including any nested
// children, under the given parent (RootID for a level) as one atomic
// operation. It returns the id of the subtree root.
func (s *Store) AddTree(spec NodeSpec, parent NodeID) (NodeID, error) {
	pk, err := s.kindOf(parent)
	if err != nil {
		return "", err
	}
	if err := s.validateSpec(spec, pk); err != nil {
		return "", err
	}
	id := s.insert(spec, parent)
	if parent == RootID {
		s.roots = append(s.roots, id)
	} else {
		p := s.nodes[parent]
		p.Children = append(p.Children, id)
	}
	return id, nil
}

// Update merges patch fields into the node and returns the inverse patch.
// A missing id is a benign no-op with a logged warning; callers holding
// such an id have stale state.
func (s *Store) Update(id NodeID, patch Patch) (Patch, error) {
	n := s.nodes[id]
	if n == nil {
		s.log.Warn("update of missing node", zap.String("id", id.Short()))
		return Patch{}, nil
	}
	if patch.Data != nil {
		if err := s.reg.Validate(n.Kind, patch.Data); err != nil {
			return Patch{}, err
		}
	}
	return n.applyPatch(patch), nil
}

// Snapshot captures a removed subtree: the copies of every node in
// depth-first order (the first entry is the subtree root), the exact
// position the root held within its parent's children, and the prior member
// lists of any zones that were pruned. It is everything needed to undo a
// delete bit-for-bit.
type Snapshot struct {
	Parent NodeID
	Index  int
	Nodes  []Node
	Zones  map[NodeID][]NodeID
}

// RootID returns the id of the removed subtree root.
func (sn *Snapshot) RootID() NodeID { return sn.Nodes[0].ID }

// IDs returns every removed node id in depth-first order.
func (sn *Snapshot) IDs() []NodeID {
	ids := make([]NodeID, len(sn.Nodes))
	for i := range sn.Nodes {
		ids[i] = sn.Nodes[i].ID
	}
	return ids
}

// snapshotNode deep-copies a node for snapshot storage.
func snapshotNode(n *Node) Node {
	var c Node
	if err := copier.CopyWithOption(&c, n, copier.Option{DeepCopy: true}); err != nil {
		// Reflection copy of a plain struct cannot fail in practice;
		// fall back to the shallow clone.
		c = *n.clone()
	}
	return c
}

// Delete removes the node and its entire subtree, returning a snapshot
// sufficient to restore it. Zones referencing removed ids have their member
// lists shrunk. A missing id is a benign logged no-op returning nil.
func (s *Store) Delete(id NodeID) (*Snapshot, error) {
	n := s.nodes[id]
	if n == nil {
		s.log.Warn("delete of missing node", zap.String("id", id.Short()))
		return nil, nil
	}

	parent, index, _ := s.Locate(id)
	snap := &Snapshot{Parent: parent, Index: index}

	removed := make(map[NodeID]bool)
	s.WalkDepthFirst(id, func(d *Node) bool {
		snap.Nodes = append(snap.Nodes, snapshotNode(d))
		removed[d.ID] = true
		return true
	})
	for rid := range removed {
		delete(s.nodes, rid)
	}

	if parent == RootID {
		s.roots = append(s.roots[:index], s.roots[index+1:]...)
	} else if p := s.nodes[parent]; p != nil {
		p.Children = append(p.Children[:index], p.Children[index+1:]...)
	}

	// Weak references never dangle: shrink zone member lists that pointed
	// into the removed subtree, remembering the prior lists for undo.
	for _, z := range s.nodes {
		zd, ok := z.Data.(ZoneData)
		if !ok {
			continue
		}
		kept := zd.Members[:0:0]
		for _, m := range zd.Members {
			if !removed[m] {
				kept = append(kept, m)
			}
		}
		if len(kept) == len(zd.Members) {
			continue
		}
		if snap.Zones == nil {
			snap.Zones = make(map[NodeID][]NodeID)
		}
		snap.Zones[z.ID] = zd.Members
		zd.Members = kept
		z.Data = zd
	}
	return snap, nil
}

// Restore reinserts a previously deleted subtree at its original position,
// including zone memberships. The snapshot's parent must still exist.
func (s *Store) Restore(snap *Snapshot) error {
	if snap == nil || len(snap.Nodes) == 0 {
		return nil
	}
	var parentChildren *[]NodeID
	if snap.Parent == RootID {
		parentChildren = &s.roots
	} else {
		p := s.nodes[snap.Parent]
		if p == nil {
			return fmt.Errorf("%w: restore parent %s", ErrNotFound, snap.Parent.Short())
		}
		parentChildren = &p.Children
	}

	for i := range snap.Nodes {
		c := snapshotNode(&snap.Nodes[i])
		s.nodes[c.ID] = &c
	}

	idx := snap.Index
	if idx > len(*parentChildren) {
		idx = len(*parentChildren)
	}
	kids := *parentChildren
	kids = append(kids, "")
	copy(kids[idx+1:], kids[idx:])
	kids[idx] = snap.RootID()
	*parentChildren = kids

	for zid, members := range snap.Zones {
		z := s.nodes[zid]
		if z == nil {
			continue
		}
		if zd, ok := z.Data.(ZoneData); ok {
			zd.Members = append([]NodeID(nil), members...)
			z.Data = zd
		}
	}
	return nil
}

// Locate returns the parent id and the node's index within the parent's
// ordered children (or within the root list for levels).
func (s *Store) Locate(id NodeID) (NodeID, int, bool) {
	n := s.nodes[id]
	if n == nil {
		return "", 0, false
	}
	siblings := s.roots
	if n.ParentID != RootID {
		p := s.nodes[n.ParentID]
		if p == nil {
			return "", 0, false
		}
		siblings = p.Children
	}
	for i, sid := range siblings {
		if sid == id {
			return n.ParentID, i, true
		}
	}
	return "", 0, false
}

// isAncestor reports whether a is an ancestor of b (or a == b).
func (s *Store) isAncestor(a, b NodeID) bool {
	for cur := b; cur != RootID; {
		if cur == a {
			return true
		}
		n := s.nodes[cur]
		if n == nil {
			return false
		}
		cur = n.ParentID
	}
	return false
}

// Move reparents a node, inserting it at the given index of the new
// parent's children (clamped). Legality is re-checked against the registry
// and moves that would make a node its own ancestor are rejected.
func (s *Store) Move(id, newParent NodeID, index int) error {
	n := s.nodes[id]
	if n == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id.Short())
	}
	pk, err := s.kindOf(newParent)
	if err != nil {
		return err
	}
	if err := s.checkChild(n.Kind, pk); err != nil {
		return err
	}
	if s.isAncestor(id, newParent) {
		return fmt.Errorf("%w: %s into %s", ErrCycle, id.Short(), newParent.Short())
	}

	oldParent, oldIndex, _ := s.Locate(id)
	if oldParent == RootID {
		s.roots = append(s.roots[:oldIndex], s.roots[oldIndex+1:]...)
	} else if p := s.nodes[oldParent]; p != nil {
		p.Children = append(p.Children[:oldIndex], p.Children[oldIndex+1:]...)
	}

	var siblings *[]NodeID
	if newParent == RootID {
		siblings = &s.roots
	} else {
		siblings = &s.nodes[newParent].Children
	}
	if index < 0 || index > len(*siblings) {
		index = len(*siblings)
	}
	kids := *siblings
	kids = append(kids, "")
	copy(kids[index+1:], kids[index:])
	kids[index] = id
	*siblings = kids

	n.ParentID = newParent
	return nil
}

// Reorder moves a node to a new index among its current siblings.
func (s *Store) Reorder(id NodeID, index int) error {
	n := s.nodes[id]
	if n == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id.Short())
	}
	return s.Move(id, n.ParentID, index)
}

// WalkDepthFirst visits the subtree rooted at from (the whole document for
// RootID) in depth-first pre-order. Returning false stops the walk.
func (s *Store) WalkDepthFirst(from NodeID, visit func(*Node) bool) {
	var walk func(id NodeID) bool
	walk = func(id NodeID) bool {
		n := s.nodes[id]
		if n == nil {
			return true
		}
		if !visit(n) {
			return false
		}
		for _, c := range n.Children {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	if from == RootID {
		for _, r := range s.roots {
			if !walk(r) {
				return
			}
		}
		return
	}
	walk(from)
}

// WalkBreadthFirst visits the subtree rooted at from level by level.
// Returning false stops the walk.
func (s *Store) WalkBreadthFirst(from NodeID, visit func(*Node) bool) {
	queue := make([]NodeID, 0)
	if from == RootID {
		queue = append(queue, s.roots...)
	} else {
		queue = append(queue, from)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := s.nodes[id]
		if n == nil {
			continue
		}
		if !visit(n) {
			return
		}
		queue = append(queue, n.Children...)
	}
}

// FindByKind returns all nodes of the given kind in document order.
func (s *Store) FindByKind(kind NodeKind) []*Node {
	var out []*Node
	s.WalkDepthFirst(RootID, func(n *Node) bool {
		if n.Kind == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}

// MapTree maps every node of the subtree rooted at from (depth-first
// pre-order) through fn.
func MapTree[T any](s *Store, from NodeID, fn func(*Node) T) []T {
	var out []T
	s.WalkDepthFirst(from, func(n *Node) bool {
		out = append(out, fn(n))
		return true
	})
	return out
}

// Subtree returns the ids of the subtree rooted at id, depth-first.
func (s *Store) Subtree(id NodeID) []NodeID {
	return MapTree(s, id, func(n *Node) NodeID { return n.ID })
}

// AbsolutePosition resolves a node's world position by summing Position
// along the parent chain to the tree root. No node caches this.
func (s *Store) AbsolutePosition(id NodeID) (Vec, bool) {
	var abs Vec
	cur := id
	for cur != RootID {
		n := s.nodes[cur]
		if n == nil {
			return Vec{}, false
		}
		abs = abs.Add(n.Position)
		cur = n.ParentID
	}
	return abs, true
}

// LevelOf returns the id of the level ancestor containing the node. A level
// is its own level.
func (s *Store) LevelOf(id NodeID) (NodeID, bool) {
	for cur := id; cur != RootID; {
		n := s.nodes[cur]
		if n == nil {
			return "", false
		}
		if n.Kind == KindLevel {
			return n.ID, true
		}
		cur = n.ParentID
	}
	return "", false
}

// SpecOf rebuilds a NodeSpec from a live subtree, stripping ids and editor
// metadata. Committing a preview uses this to re-issue the node as a real
// command.
func (s *Store) SpecOf(id NodeID) (NodeSpec, bool) {
	n := s.nodes[id]
	if n == nil {
		return NodeSpec{}, false
	}
	spec := NodeSpec{
		Kind:     n.Kind,
		Name:     n.Name,
		Hidden:   !n.Visible,
		Opacity:  n.Opacity,
		Position: n.Position,
		Rotation: n.Rotation,
		Size:     n.Size,
		Data:     n.Data,
	}
	for _, c := range n.Children {
		if cs, ok := s.SpecOf(c); ok {
			spec.Children = append(spec.Children, cs)
		}
	}
	return spec, true
}
