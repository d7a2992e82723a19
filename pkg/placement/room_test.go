package placement

import (
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/atrium/pkg/scene"
	"github.com/chazu/atrium/pkg/spatial"
)

func TestSegmentsCollinearOverlap(t *testing.T) {
	p1, p2 := v2.Vec{X: 0, Y: 0}, v2.Vec{X: 4, Y: 0}

	cases := []struct {
		name   string
		q1, q2 v2.Vec
		want   bool
	}{
		{"contained span", v2.Vec{X: 1, Y: 0}, v2.Vec{X: 3, Y: 0}, true},
		{"partial span", v2.Vec{X: 3, Y: 0}, v2.Vec{X: 6, Y: 0}, true},
		{"reversed direction", v2.Vec{X: 3, Y: 0}, v2.Vec{X: 1, Y: 0}, true},
		{"corner touch only", v2.Vec{X: 4, Y: 0}, v2.Vec{X: 8, Y: 0}, false},
		{"disjoint collinear", v2.Vec{X: 5, Y: 0}, v2.Vec{X: 9, Y: 0}, false},
		{"parallel offset", v2.Vec{X: 1, Y: 1}, v2.Vec{X: 3, Y: 1}, false},
		{"perpendicular", v2.Vec{X: 2, Y: -1}, v2.Vec{X: 2, Y: 1}, false},
		{"within tolerance band", v2.Vec{X: 1, Y: 0.03}, v2.Vec{X: 3, Y: 0.03}, true},
	}
	for _, tc := range cases {
		if got := segmentsCollinearOverlap(p1, p2, tc.q1, tc.q2); got != tc.want {
			t.Errorf("%s: overlap = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func roomFixture(t *testing.T) (*scene.Store, *spatial.Index, scene.NodeID) {
	t.Helper()
	st := scene.NewStore(scene.DefaultRegistry(nil), nil)
	level, err := st.AddTree(scene.NodeSpec{Kind: scene.KindLevel, Data: scene.LevelData{Height: 3}}, scene.RootID)
	if err != nil {
		t.Fatalf("add level: %v", err)
	}
	if _, err := st.AddTree(scene.NodeSpec{Kind: scene.KindWall, Data: scene.WallData{
		Start: v2.Vec{X: 0, Y: 0}, End: v2.Vec{X: 4, Y: 0}, Thickness: 0.2,
	}}, level); err != nil {
		t.Fatalf("add wall: %v", err)
	}
	idx := spatial.New(1, nil)
	spatial.Rebuild(idx, st)
	return st, idx, level
}

func TestRoomOverlap(t *testing.T) {
	st, idx, level := roomFixture(t)

	// Bottom edge runs along the existing wall.
	if !RoomOverlap(st, idx, level, spatial.NewBox(v2.Vec{X: 1, Y: 0}, v2.Vec{X: 3, Y: 3})) {
		t.Error("room sharing a wall span not flagged")
	}
	// Same footprint shifted away from the wall.
	if RoomOverlap(st, idx, level, spatial.NewBox(v2.Vec{X: 1, Y: 1}, v2.Vec{X: 3, Y: 3})) {
		t.Error("clear room flagged")
	}
	// Touching the wall line at a single corner is not an overlap.
	if RoomOverlap(st, idx, level, spatial.NewBox(v2.Vec{X: 4, Y: 0}, v2.Vec{X: 7, Y: 3})) {
		t.Error("corner contact flagged as overlap")
	}
	// Far away entirely.
	if RoomOverlap(st, idx, level, spatial.NewBox(v2.Vec{X: 10, Y: 10}, v2.Vec{X: 14, Y: 13})) {
		t.Error("distant room flagged")
	}
}

func TestRoomOverlapIgnoresPreviews(t *testing.T) {
	st, idx, level := roomFixture(t)
	ghost, err := st.AddTree(scene.NodeSpec{
		Kind: scene.KindWall,
		Data: scene.WallData{Start: v2.Vec{X: 0, Y: 2}, End: v2.Vec{X: 4, Y: 2}, Thickness: 0.2},
		Editor: &scene.EditorMeta{Preview: true},
	}, level)
	if err != nil {
		t.Fatalf("add preview wall: %v", err)
	}
	spatial.Sync(idx, st, ghost)

	if RoomOverlap(st, idx, level, spatial.NewBox(v2.Vec{X: 1, Y: 2}, v2.Vec{X: 3, Y: 5})) {
		t.Error("preview wall blocked a room")
	}
}
