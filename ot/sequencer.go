package ot

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dannyswat/vctree/model"
)

var (
	// ErrVersionMismatch is returned when an operation's base version is not
	// the document version.
	ErrVersionMismatch = errors.New("operation base version does not match document version")
	// ErrBatchNotUndoable is returned by Undo for batches that are not
	// undoable.
	ErrBatchNotUndoable = errors.New("batch is not undoable")
)

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Sequencer) { s.log = log }
}

// WithMetrics sets the metrics the sequencer updates.
func WithMetrics(m *Metrics) Option {
	return func(s *Sequencer) { s.metrics = m }
}

// WithHistory makes the sequencer record into h. The document version
// continues after the last operation in h.
func WithHistory(h *History) Option {
	return func(s *Sequencer) { s.history = h }
}

type listener struct {
	id int
	fn func(Operation)
}

// Sequencer is the single entry point that mutates a document. It checks
// base versions, applies operations, records them in the history, keeps
// markers in place and notifies listeners.
//
// A Sequencer is not safe for concurrent use.
type Sequencer struct {
	doc     *model.Document
	version int
	history *History
	log     logrus.FieldLogger
	metrics *Metrics

	listeners      []listener
	nextListenerID int
}

// NewSequencer returns a sequencer for doc at version 0.
func NewSequencer(doc *model.Document, opts ...Option) *Sequencer {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Sequencer{
		doc:     doc,
		history: NewHistory(),
		log:     discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	if ops := s.history.Operations(0); len(ops) > 0 {
		s.version = nextBaseVersion(ops)
	}
	return s
}

// Document returns the document. It must only be changed through the
// sequencer.
func (s *Sequencer) Document() *model.Document { return s.doc }

// Version is the number of operations applied to the document.
func (s *Sequencer) Version() int { return s.version }

// History returns the applied operations.
func (s *Sequencer) History() *History { return s.history }

// OnChange registers fn to be called after every applied operation. The
// returned func removes it.
func (s *Sequencer) OnChange(fn func(op Operation)) (unsubscribe func()) {
	id := s.nextListenerID
	s.nextListenerID++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Apply validates and applies a single operation. Operations with a
// Detached base version skip the version check and are not recorded.
func (s *Sequencer) Apply(op Operation) error {
	if err := s.check(s.doc, op, s.version); err != nil {
		s.log.WithFields(logrus.Fields{
			"kind":        op.Kind().String(),
			"baseVersion": op.BaseVersion(),
			"version":     s.version,
		}).Warnf("rejected operation: %v", err)
		s.metrics.observeRejected(op)
		return err
	}
	s.apply(op)
	return nil
}

func (s *Sequencer) check(doc *model.Document, op Operation, version int) error {
	if op.BaseVersion() != Detached && op.BaseVersion() != version {
		return fmt.Errorf("%w: operation at %d, document at %d", ErrVersionMismatch, op.BaseVersion(), version)
	}
	if err := op.wellFormed(); err != nil {
		return invalid(op, model.ErrPositionInvalid, "%v", err)
	}
	return op.Validate(doc)
}

func (s *Sequencer) apply(op Operation) {
	applyTo(s.doc, op)
	if op.BaseVersion() != Detached {
		s.history.AddOperation(op)
		s.version++
	}
	s.metrics.observeApplied(op, s.version)
	s.log.WithFields(logrus.Fields{
		"kind":        op.Kind().String(),
		"baseVersion": op.BaseVersion(),
		"version":     s.version,
	}).Debug("applied operation")

	for _, l := range append([]listener(nil), s.listeners...) {
		l.fn(op)
	}
}

// ApplyBatch applies all operations of batch or none of them.
func (s *Sequencer) ApplyBatch(batch *Batch) error {
	if err := s.dryRun(batch.Operations); err != nil {
		if len(batch.Operations) > 0 {
			s.log.WithField("batch", batch.ID.String()).Warnf("rejected batch: %v", err)
		}
		return err
	}
	for _, op := range batch.Operations {
		s.apply(op)
	}
	return nil
}

// dryRun checks ops against a copy of the document.
func (s *Sequencer) dryRun(ops []Operation) error {
	doc := s.doc.Clone()
	version := s.version
	for i, op := range ops {
		if err := s.check(doc, op, version); err != nil {
			s.metrics.observeRejected(op)
			return fmt.Errorf("failed to apply op %d (%s): %w", i, op.Kind(), err)
		}
		applyTo(doc, op)
		if op.BaseVersion() != Detached {
			version++
		}
	}
	return nil
}

// Commit assigns consecutive base versions starting at the current version
// to ops and applies them as one undoable batch.
func (s *Sequencer) Commit(ops ...Operation) (*Batch, error) {
	for i, op := range ops {
		op.setBaseVersion(s.version + i)
	}
	batch := NewBatch(ops...)
	if err := s.ApplyBatch(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// Undo reverts batch. Every operation, newest first, is reversed and
// transformed by everything applied after it. The reversed operations are
// applied all together or not at all. The returned batch holds them.
func (s *Sequencer) Undo(batch *Batch) (*Batch, error) {
	if !batch.Undoable {
		return nil, ErrBatchNotUndoable
	}
	undoing := &Batch{ID: uuid.New(), IsUndo: true, Undoable: true}

	type undonePair struct{ undone, undoing Operation }
	var marked []undonePair
	for i := len(batch.Operations) - 1; i >= 0; i-- {
		op := batch.Operations[i]
		if op.BaseVersion() == Detached {
			continue
		}
		// Reversed operations computed so far act as if already applied.
		applied := append(s.history.Operations(op.BaseVersion()+1), undoing.Operations...)
		result := TransformSets(
			[]Operation{op.Reversed()},
			applied,
			TransformSetsOptions{UseRelations: true, History: s.history, Metrics: s.metrics},
		)
		for _, reversed := range result.OperationsA {
			s.history.SetOperationAsUndone(op, reversed)
			marked = append(marked, undonePair{op, reversed})
			undoing.Operations = append(undoing.Operations, reversed)
		}
	}

	if err := s.dryRun(undoing.Operations); err != nil {
		for _, m := range marked {
			s.history.forget(m.undone, m.undoing)
		}
		s.log.WithField("batch", batch.ID.String()).Warnf("rejected undo: %v", err)
		return nil, fmt.Errorf("undo batch %s: %w", batch.ID, err)
	}
	for _, op := range undoing.Operations {
		s.apply(op)
	}

	s.log.WithFields(logrus.Fields{
		"batch":      batch.ID.String(),
		"operations": len(undoing.Operations),
		"version":    s.version,
	}).Info("undid batch")
	return undoing, nil
}

// ApplyRemote applies a batch generated at an older version. Its operations
// are transformed by everything applied since that version, which wins
// identical-target conflicts. The returned batch holds the operations that
// were applied and is not undoable.
func (s *Sequencer) ApplyRemote(batch *Batch) (*Batch, error) {
	ops := batch.Operations
	if bv := batch.BaseVersion(); bv != Detached {
		if bv > s.version {
			return nil, fmt.Errorf("%w: remote batch at %d, document at %d", ErrVersionMismatch, bv, s.version)
		}
		ops = TransformSets(s.history.Operations(bv), ops, TransformSetsOptions{
			History: s.history,
			Metrics: s.metrics,
		}).OperationsB
	}

	applied := &Batch{ID: batch.ID, Operations: ops}
	if err := s.ApplyBatch(applied); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"batch":       batch.ID.String(),
		"baseVersion": batch.BaseVersion(),
		"operations":  len(ops),
		"version":     s.version,
	}).Info("integrated remote batch")
	return applied, nil
}
