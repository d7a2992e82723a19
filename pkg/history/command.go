// Package history wraps node-store mutations in reversible commands and
// maintains the bounded undo/redo stacks. Each command variant stores its
// own minimal inverse: an update keeps only the fields it overwrote, a
// delete keeps the removed subtree and its exact child index.
package history

import (
	"fmt"

	"github.com/chazu/atrium/pkg/scene"
	"github.com/chazu/atrium/pkg/spatial"
)

// Command is a reversible mutation of the store. Apply and Revert leave the
// spatial index consistent with the tree in the same logical step; no
// partial state is observable between the two.
type Command interface {
	Name() string
	Apply(st *scene.Store, idx *spatial.Index) error
	Revert(st *scene.Store, idx *spatial.Index) error
}

// Add creates a node (possibly with nested children) under Parent. Undo
// removes the subtree; redo restores it with the identical ids.
type Add struct {
	Spec   scene.NodeSpec
	Parent scene.NodeID

	id   scene.NodeID
	snap *scene.Snapshot
}

func (c *Add) Name() string { return "add" }

// CreatedID returns the id of the subtree root, valid after Apply.
func (c *Add) CreatedID() scene.NodeID { return c.id }

func (c *Add) Apply(st *scene.Store, idx *spatial.Index) error {
	if c.snap != nil {
		// Redo after an undo: reinsert the snapshot so ids survive.
		if err := st.Restore(c.snap); err != nil {
			return err
		}
		c.snap = nil
		spatial.Sync(idx, st, c.id)
		return nil
	}
	id, err := st.AddTree(c.Spec, c.Parent)
	if err != nil {
		return err
	}
	c.id = id
	spatial.Sync(idx, st, id)
	return nil
}

func (c *Add) Revert(st *scene.Store, idx *spatial.Index) error {
	snap, err := st.Delete(c.id)
	if err != nil {
		return err
	}
	if snap != nil {
		c.snap = snap
		spatial.Drop(idx, snap.IDs())
	}
	return nil
}

// Update applies a field-level patch. The inverse patch is captured from
// the store on first Apply and snapshots only the overwritten fields.
type Update struct {
	Target scene.NodeID
	Patch  scene.Patch

	inverse *scene.Patch
}

func (c *Update) Name() string { return "update" }

func (c *Update) Apply(st *scene.Store, idx *spatial.Index) error {
	inv, err := st.Update(c.Target, c.Patch)
	if err != nil {
		return err
	}
	if c.inverse == nil {
		c.inverse = &inv
	}
	spatial.Sync(idx, st, c.Target)
	return nil
}

func (c *Update) Revert(st *scene.Store, idx *spatial.Index) error {
	if c.inverse == nil {
		return nil
	}
	if _, err := st.Update(c.Target, *c.inverse); err != nil {
		return err
	}
	spatial.Sync(idx, st, c.Target)
	return nil
}

// Delete removes a subtree. The snapshot keeps the removed nodes, the exact
// original index within the parent's children, and any zone prunes, so undo
// reinserts everything at the same position.
type Delete struct {
	Target scene.NodeID

	snap *scene.Snapshot
}

func (c *Delete) Name() string { return "delete" }

func (c *Delete) Apply(st *scene.Store, idx *spatial.Index) error {
	snap, err := st.Delete(c.Target)
	if err != nil {
		return err
	}
	if snap != nil {
		c.snap = snap
		spatial.Drop(idx, snap.IDs())
	}
	return nil
}

func (c *Delete) Revert(st *scene.Store, idx *spatial.Index) error {
	if c.snap == nil {
		return nil
	}
	if err := st.Restore(c.snap); err != nil {
		return err
	}
	spatial.Sync(idx, st, c.Target)
	return nil
}

// Move reparents or reorders a node. The previous parent and child index
// are recorded on first Apply.
type Move struct {
	Target scene.NodeID
	Parent scene.NodeID
	Index  int

	prevParent scene.NodeID
	prevIndex  int
	located    bool
}

func (c *Move) Name() string { return "move" }

func (c *Move) Apply(st *scene.Store, idx *spatial.Index) error {
	if !c.located {
		p, i, ok := st.Locate(c.Target)
		if !ok {
			return fmt.Errorf("history: move: %w: %s", scene.ErrNotFound, c.Target.Short())
		}
		c.prevParent, c.prevIndex = p, i
		c.located = true
	}
	if err := st.Move(c.Target, c.Parent, c.Index); err != nil {
		return err
	}
	spatial.Sync(idx, st, c.Target)
	return nil
}

func (c *Move) Revert(st *scene.Store, idx *spatial.Index) error {
	if err := st.Move(c.Target, c.prevParent, c.prevIndex); err != nil {
		return err
	}
	spatial.Sync(idx, st, c.Target)
	return nil
}

// Batch groups commands into one semantic undo step, the unit a committed
// transaction becomes.
type Batch struct {
	Cmds []Command
}

func (c *Batch) Name() string { return "batch" }

func (c *Batch) Apply(st *scene.Store, idx *spatial.Index) error {
	for i, cmd := range c.Cmds {
		if err := cmd.Apply(st, idx); err != nil {
			// Unwind the members that did apply.
			for j := i - 1; j >= 0; j-- {
				_ = c.Cmds[j].Revert(st, idx)
			}
			return fmt.Errorf("history: batch member %d (%s): %w", i, cmd.Name(), err)
		}
	}
	return nil
}

func (c *Batch) Revert(st *scene.Store, idx *spatial.Index) error {
	for i := len(c.Cmds) - 1; i >= 0; i-- {
		if err := c.Cmds[i].Revert(st, idx); err != nil {
			return fmt.Errorf("history: batch member %d (%s): %w", i, c.Cmds[i].Name(), err)
		}
	}
	return nil
}
