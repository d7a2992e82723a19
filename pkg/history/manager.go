package history

import (
	"errors"

	"go.uber.org/zap"

	"github.com/chazu/atrium/pkg/scene"
	"github.com/chazu/atrium/pkg/spatial"
)

// DefaultLimit is the default undo stack depth.
const DefaultLimit = 50

// ErrTransactionOpen is returned by Begin when a transaction is already
// open; transactions do not nest.
var ErrTransactionOpen = errors.New("history: transaction already open")

// Manager owns the undo and redo stacks of one editor session. The undo
// stack is bounded: exceeding the cap silently evicts the oldest entry.
// Linear history: any new commit after an undo discards the redo branch.
type Manager struct {
	st  *scene.Store
	idx *spatial.Index
	log *zap.Logger

	limit int
	undo  []Command
	redo  []Command

	inTxn bool
	txn   []Command
}

// NewManager creates a manager over one store/index pair. A non-positive
// limit falls back to DefaultLimit.
func NewManager(st *scene.Store, idx *spatial.Index, log *zap.Logger, limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{st: st, idx: idx, log: log, limit: limit}
}

// Execute runs the command to completion, records it for undo, and clears
// the redo stack. Inside a transaction the command joins the pending group
// instead.
func (m *Manager) Execute(cmd Command) error {
	if err := cmd.Apply(m.st, m.idx); err != nil {
		return err
	}
	if m.inTxn {
		m.txn = append(m.txn, cmd)
		return nil
	}
	m.push(cmd)
	m.redo = m.redo[:0]
	return nil
}

func (m *Manager) push(cmd Command) {
	if len(m.undo) >= m.limit {
		m.log.Debug("undo stack full, evicting oldest entry",
			zap.String("cmd", m.undo[0].Name()))
		m.undo = m.undo[1:]
	}
	m.undo = append(m.undo, cmd)
}

// Undo reverts the most recent command and moves it to the redo stack.
// An empty history is a logged no-op.
func (m *Manager) Undo() bool {
	if m.inTxn {
		m.log.Warn("undo ignored inside open transaction")
		return false
	}
	if len(m.undo) == 0 {
		m.log.Warn("undo with empty history")
		return false
	}
	cmd := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	if err := cmd.Revert(m.st, m.idx); err != nil {
		m.log.Error("undo failed", zap.String("cmd", cmd.Name()), zap.Error(err))
		return false
	}
	m.redo = append(m.redo, cmd)
	return true
}

// Redo re-applies the most recently undone command.
func (m *Manager) Redo() bool {
	if m.inTxn {
		m.log.Warn("redo ignored inside open transaction")
		return false
	}
	if len(m.redo) == 0 {
		m.log.Warn("redo with empty history")
		return false
	}
	cmd := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	if err := cmd.Apply(m.st, m.idx); err != nil {
		m.log.Error("redo failed", zap.String("cmd", cmd.Name()), zap.Error(err))
		return false
	}
	m.undo = append(m.undo, cmd)
	return true
}

// CanUndo reports whether the undo stack is non-empty.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// UndoDepth returns the current undo stack depth.
func (m *Manager) UndoDepth() int { return len(m.undo) }

// RedoDepth returns the current redo stack depth.
func (m *Manager) RedoDepth() int { return len(m.redo) }

// Begin opens a transaction. Commands executed until Commit or Cancel form
// one semantic undo step.
func (m *Manager) Begin() error {
	if m.inTxn {
		return ErrTransactionOpen
	}
	m.inTxn = true
	m.txn = nil
	return nil
}

// InTransaction reports whether a transaction is open.
func (m *Manager) InTransaction() bool { return m.inTxn }

// Commit closes the open transaction, pushing the group as a single undo
// entry. An empty transaction leaves history untouched.
func (m *Manager) Commit() {
	if !m.inTxn {
		m.log.Warn("commit without open transaction")
		return
	}
	m.inTxn = false
	if len(m.txn) == 0 {
		m.txn = nil
		return
	}
	m.push(&Batch{Cmds: m.txn})
	m.redo = m.redo[:0]
	m.txn = nil
}

// Cancel aborts the open transaction, reverting every member in reverse
// order and discarding the group. The enclosing gesture is treated as if it
// never happened.
func (m *Manager) Cancel() {
	if !m.inTxn {
		m.log.Warn("cancel without open transaction")
		return
	}
	m.inTxn = false
	for i := len(m.txn) - 1; i >= 0; i-- {
		if err := m.txn[i].Revert(m.st, m.idx); err != nil {
			m.log.Error("transaction rollback failed",
				zap.String("cmd", m.txn[i].Name()), zap.Error(err))
		}
	}
	m.txn = nil
}
