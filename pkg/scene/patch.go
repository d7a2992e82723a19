package scene

// Patch is a field-level partial update. Nil fields are left untouched.
// Applying a patch yields an inverse patch that snapshots only the fields
// it overwrote, which is the minimal storage an undo entry needs.
type Patch struct {
	Name     *string
	Visible  *bool
	Opacity  *float64
	Position *Vec
	Rotation *float64
	Size     *Vec
	Data     NodeData // non-nil replaces the whole typed payload

	Editor      *EditorMeta // non-nil replaces the transient editor state
	ClearEditor bool        // drop the editor state entirely
}

// IsZero reports whether the patch touches nothing.
func (p Patch) IsZero() bool {
	return p.Name == nil && p.Visible == nil && p.Opacity == nil &&
		p.Position == nil && p.Rotation == nil && p.Size == nil &&
		p.Data == nil && p.Editor == nil && !p.ClearEditor
}

// applyPatch mutates the node in place and returns the inverse patch.
func (n *Node) applyPatch(p Patch) Patch {
	var inv Patch
	if p.Name != nil {
		old := n.Name
		inv.Name = &old
		n.Name = *p.Name
	}
	if p.Visible != nil {
		old := n.Visible
		inv.Visible = &old
		n.Visible = *p.Visible
	}
	if p.Opacity != nil {
		old := n.Opacity
		inv.Opacity = &old
		n.Opacity = *p.Opacity
	}
	if p.Position != nil {
		old := n.Position
		inv.Position = &old
		n.Position = *p.Position
	}
	if p.Rotation != nil {
		old := n.Rotation
		inv.Rotation = &old
		n.Rotation = *p.Rotation
	}
	if p.Size != nil {
		old := n.Size
		inv.Size = &old
		n.Size = *p.Size
	}
	if p.Data != nil {
		inv.Data = n.Data
		n.Data = p.Data
	}
	switch {
	case p.Editor != nil:
		if n.Editor != nil {
			old := *n.Editor
			inv.Editor = &old
		} else {
			inv.ClearEditor = true
		}
		m := *p.Editor
		n.Editor = &m
	case p.ClearEditor:
		if n.Editor != nil {
			old := *n.Editor
			inv.Editor = &old
		}
		n.Editor = nil
	}
	return inv
}
