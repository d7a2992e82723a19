package scene

import (
	"errors"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(DefaultRegistry(nil), nil)
}

func addLevel(t *testing.T, s *Store, name string) NodeID {
	t.Helper()
	id, err := s.AddTree(NodeSpec{
		Kind: KindLevel,
		Name: name,
		Data: LevelData{Height: 3},
	}, RootID)
	if err != nil {
		t.Fatalf("add level: %v", err)
	}
	return id
}

func wallSpec(sx, sy, ex, ey float64) NodeSpec {
	return NodeSpec{
		Kind: KindWall,
		Data: WallData{
			Start:     Vec{X: sx, Y: sy},
			End:       Vec{X: ex, Y: ey},
			Thickness: 0.2,
		},
	}
}

func TestAddTreeNestedChildren(t *testing.T) {
	s := testStore(t)
	level := addLevel(t, s, "ground")

	spec := wallSpec(0, 0, 4, 0)
	spec.Children = []NodeSpec{
		{
			Kind:     KindDoor,
			Position: Vec{X: 1},
			Data:     OpeningData{Width: 1, Height: 2},
		},
		{
			Kind:     KindWindow,
			Position: Vec{X: 3},
			Data:     OpeningData{Width: 1, Height: 1},
		},
	}
	wall, err := s.AddTree(spec, level)
	if err != nil {
		t.Fatalf("add wall: %v", err)
	}

	w := s.Get(wall)
	if w == nil {
		t.Fatal("wall not in arena")
	}
	if len(w.Children) != 2 {
		t.Fatalf("wall children = %d, want 2", len(w.Children))
	}
	seen := make(map[NodeID]bool)
	for _, cid := range w.Children {
		c := s.Get(cid)
		if c == nil {
			t.Fatalf("child %s missing from arena", cid.Short())
		}
		if c.ParentID != wall {
			t.Errorf("child parent = %s, want %s", c.ParentID.Short(), wall.Short())
		}
		if seen[cid] {
			t.Errorf("duplicate child id %s", cid.Short())
		}
		seen[cid] = true
	}
	if s.Len() != 4 {
		t.Errorf("store len = %d, want 4", s.Len())
	}
	if w.Opacity != 1 {
		t.Errorf("default opacity = %f, want 1", w.Opacity)
	}
}

func TestAddTreeRejectsIllegalPlacements(t *testing.T) {
	s := testStore(t)
	level := addLevel(t, s, "ground")
	wall, err := s.AddTree(wallSpec(0, 0, 4, 0), level)
	if err != nil {
		t.Fatalf("add wall: %v", err)
	}

	// Non-level at the document root.
	if _, err := s.AddTree(wallSpec(0, 0, 1, 0), RootID); !errors.Is(err, ErrRootKind) {
		t.Errorf("wall at root: err = %v, want ErrRootKind", err)
	}
	// Level under a non-root parent.
	if _, err := s.AddTree(NodeSpec{Kind: KindLevel, Data: LevelData{}}, level); !errors.Is(err, ErrRootKind) {
		t.Errorf("level under level: err = %v, want ErrRootKind", err)
	}
	// Walls accept only doors/windows.
	if _, err := s.AddTree(wallSpec(0, 0, 1, 0), wall); !errors.Is(err, ErrIllegalChild) {
		t.Errorf("wall under wall: err = %v, want ErrIllegalChild", err)
	}
	// Schema validation failure aborts the whole add.
	bad := wallSpec(0, 0, 4, 0)
	bad.Children = []NodeSpec{{Kind: KindDoor, Data: OpeningData{Width: -1}}}
	before := s.Len()
	if _, err := s.AddTree(bad, level); !errors.Is(err, ErrSchema) {
		t.Errorf("invalid nested door: err = %v, want ErrSchema", err)
	}
	if s.Len() != before {
		t.Errorf("failed add mutated the arena: len %d, want %d", s.Len(), before)
	}
	// Unknown parents are structural errors, not silent no-ops.
	if _, err := s.AddTree(wallSpec(0, 0, 1, 0), NodeID("nope")); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown parent: err = %v, want ErrNotFound", err)
	}
}

func TestUpdatePatchAndInverse(t *testing.T) {
	s := testStore(t)
	level := addLevel(t, s, "ground")
	wall, _ := s.AddTree(wallSpec(0, 0, 4, 0), level)

	name := "south wall"
	pos := Vec{X: 2, Y: 1}
	inv, err := s.Update(wall, Patch{Name: &name, Position: &pos})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	n := s.Get(wall)
	if n.Name != "south wall" || n.Position.X != 2 {
		t.Fatalf("patch not applied: name=%q pos=%v", n.Name, n.Position)
	}
	if inv.Name == nil || *inv.Name != "" {
		t.Errorf("inverse name snapshot wrong: %v", inv.Name)
	}
	if inv.Rotation != nil || inv.Size != nil || inv.Data != nil {
		t.Error("inverse snapshots fields the patch never touched")
	}

	// Applying the inverse restores the prior state.
	if _, err := s.Update(wall, inv); err != nil {
		t.Fatalf("inverse update: %v", err)
	}
	n = s.Get(wall)
	if n.Name != "" || n.Position.X != 0 {
		t.Errorf("inverse did not restore: name=%q pos=%v", n.Name, n.Position)
	}
}

func TestUpdateMissingIsBenign(t *testing.T) {
	s := testStore(t)
	if _, err := s.Update(NodeID("ghost"), Patch{}); err != nil {
		t.Errorf("update of missing id should be a no-op, got %v", err)
	}
	if snap, err := s.Delete(NodeID("ghost")); err != nil || snap != nil {
		t.Errorf("delete of missing id should be a no-op, got %v / %v", snap, err)
	}
}

func TestDeleteCascadesAndRestores(t *testing.T) {
	s := testStore(t)
	level := addLevel(t, s, "ground")
	spec := wallSpec(0, 0, 4, 0)
	spec.Children = []NodeSpec{{Kind: KindDoor, Position: Vec{X: 1}, Data: OpeningData{Width: 1, Height: 2}}}
	other, _ := s.AddTree(wallSpec(0, 4, 4, 4), level)
	wall, _ := s.AddTree(spec, level)
	door := s.Get(wall).Children[0]

	snap, err := s.Delete(wall)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if snap == nil || len(snap.Nodes) != 2 {
		t.Fatalf("snapshot nodes = %v, want wall+door", snap)
	}
	if snap.Index != 1 {
		t.Errorf("snapshot index = %d, want 1", snap.Index)
	}
	if s.Get(wall) != nil || s.Get(door) != nil {
		t.Error("deleted ids still resolvable")
	}
	if got := len(s.Get(level).Children); got != 1 {
		t.Errorf("level children = %d, want 1", got)
	}

	if err := s.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.Get(wall) == nil || s.Get(door) == nil {
		t.Fatal("restore did not bring ids back")
	}
	kids := s.Get(level).Children
	if len(kids) != 2 || kids[0] != other || kids[1] != wall {
		t.Errorf("restore order wrong: %v", kids)
	}
	if got := s.Get(door).ParentID; got != wall {
		t.Errorf("restored door parent = %s, want %s", got.Short(), wall.Short())
	}
}

func TestDeleteShrinksZoneMembers(t *testing.T) {
	s := testStore(t)
	level := addLevel(t, s, "ground")
	wall, _ := s.AddTree(wallSpec(0, 0, 4, 0), level)
	keep, _ := s.AddTree(wallSpec(0, 4, 4, 4), level)
	zone, err := s.AddTree(NodeSpec{
		Kind: KindZone,
		Data: ZoneData{Members: []NodeID{wall, keep}, Color: "#4A90D9", Level: level},
	}, level)
	if err != nil {
		t.Fatalf("add zone: %v", err)
	}

	snap, err := s.Delete(wall)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	zd := s.Get(zone).Data.(ZoneData)
	if len(zd.Members) != 1 || zd.Members[0] != keep {
		t.Fatalf("zone members after delete = %v, want [%s]", zd.Members, keep.Short())
	}

	if err := s.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	zd = s.Get(zone).Data.(ZoneData)
	if len(zd.Members) != 2 {
		t.Errorf("zone members after restore = %v, want both", zd.Members)
	}
}

func TestMoveAndCycleRejection(t *testing.T) {
	s := testStore(t)
	ground := addLevel(t, s, "ground")
	upper := addLevel(t, s, "upper")
	wall, _ := s.AddTree(wallSpec(0, 0, 4, 0), ground)

	if err := s.Move(wall, upper, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := s.Get(wall).ParentID; got != upper {
		t.Errorf("moved parent = %s, want %s", got.Short(), upper.Short())
	}
	if len(s.Get(ground).Children) != 0 {
		t.Error("old parent still owns the moved node")
	}

	outer, _ := s.AddTree(NodeSpec{Kind: KindGroup, Data: GroupData{}}, ground)
	inner, _ := s.AddTree(NodeSpec{Kind: KindGroup, Data: GroupData{}}, outer)
	if err := s.Move(outer, inner, 0); !errors.Is(err, ErrCycle) {
		t.Errorf("move into own descendant: err = %v, want ErrCycle", err)
	}
	if err := s.Move(wall, ground, -1); err != nil {
		t.Fatalf("move back: %v", err)
	}
}

func TestReorderWithinParent(t *testing.T) {
	s := testStore(t)
	level := addLevel(t, s, "ground")
	a, _ := s.AddTree(wallSpec(0, 0, 4, 0), level)
	b, _ := s.AddTree(wallSpec(0, 2, 4, 2), level)
	c, _ := s.AddTree(wallSpec(0, 4, 4, 4), level)

	if err := s.Reorder(c, 0); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	kids := s.Get(level).Children
	want := []NodeID{c, a, b}
	for i := range want {
		if kids[i] != want[i] {
			t.Fatalf("children after reorder = %v, want %v", kids, want)
		}
	}
	if err := s.Reorder(NodeID("ghost"), 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("reorder of missing id: err = %v, want ErrNotFound", err)
	}
}

func TestTraversalOrder(t *testing.T) {
	s := testStore(t)
	level := addLevel(t, s, "ground")
	spec := wallSpec(0, 0, 4, 0)
	spec.Children = []NodeSpec{{Kind: KindDoor, Data: OpeningData{Width: 1}}}
	wall, _ := s.AddTree(spec, level)
	slab, _ := s.AddTree(NodeSpec{Kind: KindSlab, Data: SlabData{Thickness: 0.3}}, level)

	door := s.Get(wall).Children[0]
	wantDepth := []NodeID{level, wall, door, slab}
	gotDepth := MapTree(s, RootID, func(n *Node) NodeID { return n.ID })
	if len(gotDepth) != len(wantDepth) {
		t.Fatalf("depth-first visited %d nodes, want %d", len(gotDepth), len(wantDepth))
	}
	for i := range wantDepth {
		if gotDepth[i] != wantDepth[i] {
			t.Errorf("depth-first[%d] = %s, want %s", i, gotDepth[i].Short(), wantDepth[i].Short())
		}
	}

	var gotBreadth []NodeID
	s.WalkBreadthFirst(RootID, func(n *Node) bool {
		gotBreadth = append(gotBreadth, n.ID)
		return true
	})
	wantBreadth := []NodeID{level, wall, slab, door}
	for i := range wantBreadth {
		if gotBreadth[i] != wantBreadth[i] {
			t.Errorf("breadth-first[%d] = %s, want %s", i, gotBreadth[i].Short(), wantBreadth[i].Short())
		}
	}

	if walls := s.FindByKind(KindWall); len(walls) != 1 || walls[0].ID != wall {
		t.Errorf("FindByKind(wall) = %v", walls)
	}
}

func TestAbsolutePositionSumsParentChain(t *testing.T) {
	s := testStore(t)
	level := addLevel(t, s, "ground")
	group, _ := s.AddTree(NodeSpec{
		Kind:     KindGroup,
		Position: Vec{X: 10, Y: 5},
		Size:     Vec{X: 4, Y: 3},
		Data:     GroupData{},
	}, level)
	spec := wallSpec(0, 0, 4, 0)
	spec.Position = Vec{X: 1, Y: 1}
	wall, _ := s.AddTree(spec, group)

	abs, ok := s.AbsolutePosition(wall)
	if !ok {
		t.Fatal("absolute position failed")
	}
	if abs.X != 11 || abs.Y != 6 {
		t.Errorf("absolute = %v, want (11,6)", abs)
	}

	if lvl, ok := s.LevelOf(wall); !ok || lvl != level {
		t.Errorf("LevelOf = %v, want %s", lvl.Short(), level.Short())
	}
}
