package spatial

import "github.com/chazu/atrium/pkg/scene"

// Sync refreshes index entries for the subtree rooted at root (the whole
// document for scene.RootID). Every store write path must call this in the
// same logical step as the mutation, or spatial queries observe stale
// geometry.
func Sync(x *Index, st *scene.Store, root scene.NodeID) {
	st.WalkDepthFirst(root, func(n *scene.Node) bool {
		level, ok := st.LevelOf(n.ID)
		if !ok {
			return true
		}
		abs, ok := st.AbsolutePosition(n.ID)
		if !ok {
			return true
		}
		if box, indexed := BoundsFor(n, abs); indexed {
			x.Update(n.ID, level, box)
		} else {
			x.Remove(n.ID)
		}
		return true
	})
}

// Drop evicts a batch of ids, typically a deleted subtree.
func Drop(x *Index, ids []scene.NodeID) {
	for _, id := range ids {
		x.Remove(id)
	}
}

// Rebuild re-derives the whole index from the store, used after loading a
// document.
func Rebuild(x *Index, st *scene.Store) {
	x.Clear()
	Sync(x, st, scene.RootID)
}
