package scene

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// DocumentVersion is the current save-file format version.
const DocumentVersion = 1

// GridSettings holds the document-wide grid step.
type GridSettings struct {
	Size float64 `json:"size"`
}

// Record is the serialized form of one node. Data is the kind-specific
// payload; the registry parses it back into the typed variant on load.
type Record struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Name     string          `json:"name,omitempty"`
	Visible  bool            `json:"visible"`
	Opacity  float64         `json:"opacity"`
	Position Vec             `json:"position"`
	Rotation float64         `json:"rotation,omitempty"`
	Size     Vec             `json:"size"`
	Data     json.RawMessage `json:"data,omitempty"`
	Children []*Record       `json:"children,omitempty"`
}

// Document is the whole-document wire shape used for save/load and remote
// sync.
type Document struct {
	Version int          `json:"version"`
	Grid    GridSettings `json:"grid"`
	Levels  []*Record    `json:"levels"`
}

// Export serializes the live tree into a Document. Preview nodes are
// mid-gesture state and are skipped.
func (s *Store) Export(grid GridSettings) (*Document, error) {
	doc := &Document{Version: DocumentVersion, Grid: grid}
	for _, rid := range s.roots {
		rec, err := s.exportRecord(s.nodes[rid])
		if err != nil {
			return nil, err
		}
		if rec != nil {
			doc.Levels = append(doc.Levels, rec)
		}
	}
	return doc, nil
}

func (s *Store) exportRecord(n *Node) (*Record, error) {
	if n == nil || n.IsPreview() {
		return nil, nil
	}
	raw, err := json.Marshal(n.Data)
	if err != nil {
		return nil, fmt.Errorf("serialize node %s: %w", n.ID.Short(), err)
	}
	rec := &Record{
		ID:       string(n.ID),
		Kind:     n.Kind.String(),
		Name:     n.Name,
		Visible:  n.Visible,
		Opacity:  n.Opacity,
		Position: n.Position,
		Rotation: n.Rotation,
		Size:     n.Size,
		Data:     raw,
	}
	for _, c := range n.Children {
		cr, err := s.exportRecord(s.nodes[c])
		if err != nil {
			return nil, err
		}
		if cr != nil {
			rec.Children = append(rec.Children, cr)
		}
	}
	return rec, nil
}

// ImportDocument rebuilds a store from a Document. The result is
// isomorphic to the exported tree: same ids, kinds, parent/child structure
// and field values.
func ImportDocument(doc *Document, reg *Registry, log *zap.Logger) (*Store, error) {
	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("scene: document version %d is newer than supported %d",
			doc.Version, DocumentVersion)
	}
	s := NewStore(reg, log)
	for _, rec := range doc.Levels {
		id, err := s.importRecord(rec, RootID, KindRoot)
		if err != nil {
			return nil, err
		}
		s.roots = append(s.roots, id)
	}
	return s, nil
}

func (s *Store) importRecord(rec *Record, parent NodeID, parentKind NodeKind) (NodeID, error) {
	kind, ok := KindFromString(rec.Kind)
	if !ok {
		return "", fmt.Errorf("%w: unknown kind %q", ErrSchema, rec.Kind)
	}
	if err := s.checkChild(kind, parentKind); err != nil {
		return "", err
	}
	id := NodeID(rec.ID)
	if id.IsZero() {
		id = NewNodeID()
	}
	if s.nodes[id] != nil {
		return "", fmt.Errorf("%w: duplicate id %s", ErrSchema, id.Short())
	}
	data, err := s.reg.Parse(kind, rec.Data)
	if err != nil {
		return "", fmt.Errorf("node %s: %w", id.Short(), err)
	}
	if err := s.reg.Validate(kind, data); err != nil {
		return "", fmt.Errorf("node %s: %w", id.Short(), err)
	}
	n := &Node{
		ID:       id,
		Kind:     kind,
		Name:     rec.Name,
		Visible:  rec.Visible,
		Opacity:  rec.Opacity,
		ParentID: parent,
		Position: rec.Position,
		Rotation: rec.Rotation,
		Size:     rec.Size,
		Data:     data,
	}
	s.nodes[id] = n
	for _, cr := range rec.Children {
		cid, err := s.importRecord(cr, id, kind)
		if err != nil {
			return "", err
		}
		n.Children = append(n.Children, cid)
	}
	return id, nil
}

// MarshalDocument encodes a document as indented JSON.
func MarshalDocument(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalDocument decodes a document from JSON.
func UnmarshalDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("scene: decode document: %w", err)
	}
	return &doc, nil
}
