// Package editor wires one registry, node store, spatial index and command
// log into a single-owner editing session. Tools and the UI talk to the
// Session; external renderers only read through it.
package editor

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/chazu/atrium/pkg/history"
	"github.com/chazu/atrium/pkg/scene"
	"github.com/chazu/atrium/pkg/spatial"
)

// Session owns the whole document state of one editor. All mutation is
// synchronous and single-threaded: a command runs to completion, tree and
// index both consistent, before control returns.
type Session struct {
	cfg   Config
	log   *zap.Logger
	reg   *scene.Registry
	store *scene.Store
	index *spatial.Index
	hist  *history.Manager

	previews []scene.NodeID // uncommitted gesture nodes, creation order
}

// NewSession builds a session with an explicitly constructed registry; no
// module-level shared state is involved.
func NewSession(cfg Config, log *zap.Logger) *Session {
	cfg.applyDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	reg := scene.DefaultRegistry(log)
	store := scene.NewStore(reg, log)
	index := spatial.New(cfg.Spatial.CellSize, log)
	return &Session{
		cfg:   cfg,
		log:   log,
		reg:   reg,
		store: store,
		index: index,
		hist:  history.NewManager(store, index, log, cfg.History.Limit),
	}
}

// Store exposes the node store for read access.
func (s *Session) Store() *scene.Store { return s.store }

// Index exposes the spatial index for read access.
func (s *Session) Index() *spatial.Index { return s.index }

// History exposes the command manager.
func (s *Session) History() *history.Manager { return s.hist }

// Registry exposes the schema registry.
func (s *Session) Registry() *scene.Registry { return s.reg }

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }

// AddNode creates a node (with any nested children) as an undoable command
// and returns the new subtree root id.
func (s *Session) AddNode(spec scene.NodeSpec, parent scene.NodeID) (scene.NodeID, error) {
	cmd := &history.Add{Spec: spec, Parent: parent}
	if err := s.hist.Execute(cmd); err != nil {
		return "", err
	}
	return cmd.CreatedID(), nil
}

// UpdateNode applies a partial patch. With skipUndo the write bypasses the
// command log entirely: live drag feedback is last-write-wins and must not
// accumulate history. The spatial index is refreshed either way.
func (s *Session) UpdateNode(id scene.NodeID, patch scene.Patch, skipUndo bool) error {
	if skipUndo {
		if _, err := s.store.Update(id, patch); err != nil {
			return err
		}
		spatial.Sync(s.index, s.store, id)
		return nil
	}
	return s.hist.Execute(&history.Update{Target: id, Patch: patch})
}

// DeleteNode removes a node and its subtree as an undoable command.
func (s *Session) DeleteNode(id scene.NodeID) error {
	return s.hist.Execute(&history.Delete{Target: id})
}

// MoveNode reparents or reorders a node as an undoable command.
func (s *Session) MoveNode(id, parent scene.NodeID, index int) error {
	return s.hist.Execute(&history.Move{Target: id, Parent: parent, Index: index})
}

// Undo reverts the latest command. Empty history is a logged no-op.
func (s *Session) Undo() bool { return s.hist.Undo() }

// Redo re-applies the latest undone command.
func (s *Session) Redo() bool { return s.hist.Redo() }

// BeginTransaction groups subsequent commands into one undo step.
func (s *Session) BeginTransaction() error { return s.hist.Begin() }

// CommitTransaction closes the group.
func (s *Session) CommitTransaction() { s.hist.Commit() }

// CancelTransaction rolls the group back as if it never ran.
func (s *Session) CancelTransaction() { s.hist.Cancel() }

// Query returns the node ids on a level whose boxes intersect box.
func (s *Session) Query(level scene.NodeID, box spatial.Box) []scene.NodeID {
	return s.index.Query(level, box)
}

// QueryPoint returns the node ids on a level whose boxes contain p.
func (s *Session) QueryPoint(level scene.NodeID, p scene.Vec) []scene.NodeID {
	return s.index.QueryPoint(level, p)
}

// AddPreview creates a speculative node for an in-progress gesture. It goes
// straight into the store and index for live feedback but never enters the
// undo log.
func (s *Session) AddPreview(spec scene.NodeSpec, parent scene.NodeID) (scene.NodeID, error) {
	if spec.Editor == nil {
		spec.Editor = &scene.EditorMeta{}
	}
	spec.Editor.Preview = true
	id, err := s.store.AddTree(spec, parent)
	if err != nil {
		return "", err
	}
	spatial.Sync(s.index, s.store, id)
	s.previews = append(s.previews, id)
	return id, nil
}

// CommitPreview promotes a preview node into a real committed command: the
// speculative node is dropped and re-issued as an Add, which becomes the
// single undo entry for the gesture. The returned id is the committed
// node's.
func (s *Session) CommitPreview(id scene.NodeID) (scene.NodeID, error) {
	n := s.store.Get(id)
	if n == nil {
		return "", fmt.Errorf("editor: commit preview: %w", scene.ErrNotFound)
	}
	if !n.IsPreview() {
		return "", fmt.Errorf("editor: node %s is not a preview", id.Short())
	}
	spec, _ := s.store.SpecOf(id)
	parent := n.ParentID

	s.dropPreview(id)
	return s.AddNode(spec, parent)
}

// CancelPreview deletes one preview node. Releasing a tool mid-gesture must
// clean up its orphaned previews; this is a data-cleanup contract, not an
// error path.
func (s *Session) CancelPreview(id scene.NodeID) {
	s.dropPreview(id)
}

// CancelPreviews deletes every outstanding preview node.
func (s *Session) CancelPreviews() {
	for i := len(s.previews) - 1; i >= 0; i-- {
		s.dropPreview(s.previews[i])
	}
}

// dropPreview removes a preview from store, index and tracking, without
// touching the command log.
func (s *Session) dropPreview(id scene.NodeID) {
	if s.store.Get(id) != nil {
		if snap, _ := s.store.Delete(id); snap != nil {
			spatial.Drop(s.index, snap.IDs())
		}
	}
	for i, pid := range s.previews {
		if pid == id {
			s.previews = append(s.previews[:i], s.previews[i+1:]...)
			break
		}
	}
}

// Previews returns the outstanding preview ids in creation order.
func (s *Session) Previews() []scene.NodeID {
	return append([]scene.NodeID(nil), s.previews...)
}

// Save serializes the document (preview nodes excluded) as JSON.
func (s *Session) Save(w io.Writer) error {
	doc, err := s.store.Export(scene.GridSettings{Size: s.cfg.Grid.Size})
	if err != nil {
		return err
	}
	data, err := scene.MarshalDocument(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Load replaces the session document from serialized JSON. History and
// previews are discarded and the spatial index is rebuilt, so a loaded
// document answers queries immediately.
func (s *Session) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("editor: load: %w", err)
	}
	doc, err := scene.UnmarshalDocument(data)
	if err != nil {
		return err
	}
	store, err := scene.ImportDocument(doc, s.reg, s.log)
	if err != nil {
		return err
	}
	s.store = store
	if doc.Grid.Size > 0 {
		s.cfg.Grid.Size = doc.Grid.Size
	}
	spatial.Rebuild(s.index, s.store)
	s.hist = history.NewManager(s.store, s.index, s.log, s.cfg.History.Limit)
	s.previews = nil
	return nil
}
