package scene

import (
	"encoding/json"
	"testing"
)

// legalPairs is the full parent/child table. Everything not listed here
// must be rejected.
var legalPairs = map[NodeKind][]NodeKind{
	KindLevel:       {KindRoot},
	KindWall:        {KindLevel, KindGroup},
	KindDoor:        {KindWall},
	KindWindow:      {KindWall},
	KindGroup:       {KindLevel, KindGroup},
	KindZone:        {KindLevel},
	KindSlab:        {KindLevel},
	KindColumn:      {KindLevel},
	KindStair:       {KindLevel},
	KindRoof:        {KindLevel},
	KindRoofSegment: {KindRoof},
	KindGuide:       {KindLevel},
	KindItem:        {KindLevel},
}

func TestLegalityTableIsTotal(t *testing.T) {
	r := DefaultRegistry(nil)
	parents := append([]NodeKind{KindRoot}, Kinds...)
	for _, child := range Kinds {
		if !r.Registered(child) {
			t.Fatalf("kind %s has no shape declaration", child)
		}
		for _, parent := range parents {
			want := false
			for _, p := range legalPairs[child] {
				if p == parent {
					want = true
				}
			}
			if got := r.CanBeChildOf(child, parent); got != want {
				t.Errorf("CanBeChildOf(%s, %s) = %v, want %v", child, parent, got, want)
			}
		}
	}
}

func TestDuplicateRegistrationFirstWins(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(KindWall, Shape{Parents: []NodeKind{KindLevel}})
	r.Register(KindWall, Shape{Parents: []NodeKind{KindRoot}})
	if !r.CanBeChildOf(KindWall, KindLevel) {
		t.Error("first registration was discarded")
	}
	if r.CanBeChildOf(KindWall, KindRoot) {
		t.Error("duplicate registration replaced the original shape")
	}
}

func TestParseAndValidate(t *testing.T) {
	r := DefaultRegistry(nil)

	raw := json.RawMessage(`{"start":{"X":0,"Y":0},"end":{"X":4,"Y":0},"thickness":0.2}`)
	data, err := r.Parse(KindWall, raw)
	if err != nil {
		t.Fatalf("parse wall: %v", err)
	}
	wd, ok := data.(WallData)
	if !ok {
		t.Fatalf("parsed payload is %T, want WallData", data)
	}
	if wd.End.X != 4 || wd.Thickness != 0.2 {
		t.Errorf("parsed wall = %+v", wd)
	}
	if err := r.Validate(KindWall, wd); err != nil {
		t.Errorf("valid wall rejected: %v", err)
	}

	// Empty raw data parses to the zero variant.
	data, err = r.Parse(KindGroup, nil)
	if err != nil {
		t.Fatalf("parse empty group: %v", err)
	}
	if _, ok := data.(GroupData); !ok {
		t.Errorf("empty payload is %T, want GroupData", data)
	}
}

func TestValidateRejectsBadPayloads(t *testing.T) {
	r := DefaultRegistry(nil)
	cases := []struct {
		name string
		kind NodeKind
		data NodeData
	}{
		{"zero-length wall", KindWall, WallData{Start: Vec{X: 1, Y: 1}, End: Vec{X: 1, Y: 1}, Thickness: 0.2}},
		{"zero-thickness wall", KindWall, WallData{End: Vec{X: 4}, Thickness: 0}},
		{"zero-width door", KindDoor, OpeningData{Width: 0, Height: 2}},
		{"negative window width", KindWindow, OpeningData{Width: -0.5}},
		{"negative level height", KindLevel, LevelData{Height: -3}},
		{"zero-radius column", KindColumn, ColumnData{Radius: 0}},
		{"mismatched payload", KindWall, OpeningData{Width: 1}},
	}
	for _, tc := range cases {
		if err := r.Validate(tc.kind, tc.data); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestUnregisteredKind(t *testing.T) {
	r := NewRegistry(nil)
	if r.CanBeChildOf(KindWall, KindLevel) {
		t.Error("empty registry accepted a child pairing")
	}
	if _, err := r.Parse(KindWall, nil); err == nil {
		t.Error("parse of unregistered kind succeeded")
	}
	if err := r.Validate(KindWall, WallData{}); err == nil {
		t.Error("validate of unregistered kind succeeded")
	}
}
