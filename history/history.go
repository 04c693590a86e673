// Package history keeps a bounded, linear undo/redo log of whole-document
// snapshots.
//
// Snapshots are stored serialized, so they never alias a live document, and
// every restore hands out a freshly decoded copy.
package history

import (
	"encoding/json"
	"fmt"

	"github.com/lvillar/layoutpdf/design"
)

// DefaultCapacity is the number of snapshots kept when none is configured.
const DefaultCapacity = 50

type snapshot struct {
	data  []byte
	label string
}

// Manager is the undo/redo log. It is not safe for concurrent use; the
// editing session serializes access.
type Manager struct {
	capacity  int
	snaps     []snapshot
	cursor    int
	restoring bool
}

// New returns an empty log holding at most capacity snapshots. A
// non-positive capacity selects DefaultCapacity.
func New(capacity int) *Manager {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Manager{capacity: capacity, cursor: -1}
}

// Record captures doc as the newest snapshot. Any redo future beyond the
// cursor is discarded and the oldest snapshots are dropped once the log is
// over capacity. Record is a no-op while Undo or Redo is applying a snapshot.
func (m *Manager) Record(doc *design.Document, label string) error {
	if m.restoring {
		return nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("history: recording %q: %w", label, err)
	}
	m.snaps = append(m.snaps[:m.cursor+1], snapshot{data: data, label: label})
	m.cursor++
	if over := len(m.snaps) - m.capacity; over > 0 {
		m.snaps = append(m.snaps[:0], m.snaps[over:]...)
		m.cursor -= over
	}
	return nil
}

// Rewrite passes a decoded copy of every snapshot to edit and stores back
// the ones edit reports as changed, without adding an undo step. It is used
// when an asynchronous update settles that belongs to the step which
// created an element, and so to every later step that still holds it.
func (m *Manager) Rewrite(edit func(*design.Document) bool) error {
	if m.restoring {
		return nil
	}
	for i := range m.snaps {
		var doc design.Document
		if err := json.Unmarshal(m.snaps[i].data, &doc); err != nil {
			return fmt.Errorf("history: rewriting %q: %w", m.snaps[i].label, err)
		}
		if !edit(&doc) {
			continue
		}
		data, err := json.Marshal(&doc)
		if err != nil {
			return fmt.Errorf("history: rewriting %q: %w", m.snaps[i].label, err)
		}
		m.snaps[i].data = data
	}
	return nil
}

// Reset discards the log and starts a new one with doc as its only snapshot.
func (m *Manager) Reset(doc *design.Document) error {
	m.snaps = m.snaps[:0]
	m.cursor = -1
	m.restoring = false
	return m.Record(doc, "reset")
}

// Undo steps back one snapshot and passes a decoded copy of it to apply.
// It reports false, without calling apply, at the start of the log.
func (m *Manager) Undo(apply func(*design.Document)) bool {
	if !m.CanUndo() {
		return false
	}
	return m.restore(m.cursor-1, apply)
}

// Redo steps forward one snapshot and passes a decoded copy of it to apply.
// It reports false, without calling apply, at the end of the log.
func (m *Manager) Redo(apply func(*design.Document)) bool {
	if !m.CanRedo() {
		return false
	}
	return m.restore(m.cursor+1, apply)
}

// restore moves the cursor to i and runs apply with the guard held, so a
// Record triggered by apply is ignored.
func (m *Manager) restore(i int, apply func(*design.Document)) bool {
	if m.restoring {
		return false
	}
	var doc design.Document
	if err := json.Unmarshal(m.snaps[i].data, &doc); err != nil {
		return false
	}
	m.cursor = i
	m.restoring = true
	defer func() { m.restoring = false }()
	if apply != nil {
		apply(&doc)
	}
	return true
}

func (m *Manager) CanUndo() bool { return !m.restoring && m.cursor > 0 }
func (m *Manager) CanRedo() bool { return !m.restoring && m.cursor < len(m.snaps)-1 }

// Len is the number of reachable snapshots.
func (m *Manager) Len() int { return len(m.snaps) }

// Cursor is the index of the snapshot matching the live document, or -1
// when nothing has been recorded.
func (m *Manager) Cursor() int { return m.cursor }

// Restoring reports whether a snapshot is being applied.
func (m *Manager) Restoring() bool { return m.restoring }

// Labels returns the snapshot labels, oldest first.
func (m *Manager) Labels() []string {
	out := make([]string, len(m.snaps))
	for i, s := range m.snaps {
		out[i] = s.label
	}
	return out
}
