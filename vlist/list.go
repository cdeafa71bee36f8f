package vlist

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/kevinxiao27/vlist/ol"
	"github.com/kevinxiao27/vlist/ot"
	"github.com/kevinxiao27/vlist/util"
)

// List is the authoritative copy of a replicated list. Submissions are
// serialized; reads go through an atomically published State and never block
// on a commit in progress.
type List[T any] struct {
	mu      sync.Mutex // serializes ProcessOperation and guards history
	state   atomic.Pointer[State[T]]
	history ol.OpLog[T]
	hooks   []func(ol.Entry[T])
}

type Option[T any] func(*List[T])

// WithItems seeds the list at version 0.
func WithItems[T any](items []T) Option[T] {
	return func(l *List[T]) {
		l.state.Store(&State[T]{items: slices.Clone(items)})
	}
}

// WithCommitHook registers fn to run after every commit, Noop placeholders
// included. Hooks run in version order while the list is still locked, so
// they must not submit to the same list.
func WithCommitHook[T any](fn func(ol.Entry[T])) Option[T] {
	return func(l *List[T]) {
		l.hooks = append(l.hooks, fn)
	}
}

func New[T any](opts ...Option[T]) *List[T] {
	l := &List[T]{history: ol.NewOpLog[T]()}
	l.state.Store(&State[T]{items: []T{}})
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *List[T]) Snapshot() State[T] {
	return *l.state.Load()
}

func (l *List[T]) Version() int {
	return l.state.Load().version
}

func (l *List[T]) MinValidVersion() int {
	return l.state.Load().minValidVersion
}

func (l *List[T]) Items() []T {
	return l.state.Load().Items()
}

func (l *List[T]) Len() int {
	return l.state.Load().Len()
}

func windowOutcome(err error) Outcome {
	if errors.Is(err, ol.ErrAhead) {
		return InvalidVersion
	}
	return OutOfOperationalRange
}

// Receipt describes what a submission did. Op is nil unless Outcome is
// Successful or DiscardOperation; Version is the version Op was committed at,
// or the current version when nothing was committed.
type Receipt[T any] struct {
	Op      *ot.Op[T]
	Outcome Outcome
	Version int
}

// ProcessOperation reconciles op, computed against baseVersion, with
// everything committed since and commits the result. The returned operation
// is what was committed: op with adjusted indices, or the Noop sentinel when
// concurrent history voided it. It is nil when nothing was committed.
func (l *List[T]) ProcessOperation(op ot.Op[T], baseVersion int) (*ot.Op[T], Outcome) {
	r := l.Reconcile(op, baseVersion)
	return r.Op, r.Outcome
}

// Reconcile is ProcessOperation reporting the version it committed at.
func (l *List[T]) Reconcile(op ot.Op[T], baseVersion int) Receipt[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.state.Load()
	rejected := func(o Outcome) Receipt[T] {
		return Receipt[T]{Outcome: o, Version: cur.version}
	}
	switch {
	case baseVersion > cur.version:
		return rejected(InvalidVersion)
	case baseVersion < cur.minValidVersion:
		return rejected(OutOfOperationalRange)
	}

	missed, err := l.history.Since(baseVersion)
	if err != nil {
		return rejected(windowOutcome(err))
	}

	// A voided op stays Noop through the remaining entries.
	working := util.Reduce(missed, func(e ol.Entry[T], acc ot.Op[T]) ot.Op[T] {
		next, _ := acc.TransformAgainst(e.Op)
		return next
	}, op)

	if working.IsNoop() {
		e := l.commit(cur, working, cur.items)
		return Receipt[T]{Op: &e.Op, Outcome: DiscardOperation, Version: e.Version}
	}

	items, err := working.Apply(cur.items)
	if err != nil {
		return rejected(BadOperation)
	}
	e := l.commit(cur, working, items)
	return Receipt[T]{Op: &e.Op, Outcome: Successful, Version: e.Version}
}

func (l *List[T]) commit(cur *State[T], op ot.Op[T], items []T) ol.Entry[T] {
	e := l.history.Append(op)
	if op.Kind() == ot.Clear {
		// Nothing before an emptied list can be rebased onto it.
		l.history.Prune(cur.version)
	}

	// The oldest acceptable base is exactly what history can still fold from.
	next := &State[T]{
		items:           items,
		version:         e.Version,
		minValidVersion: l.history.Floor(),
	}
	l.state.Store(next)

	for _, hook := range l.hooks {
		hook(e)
	}
	return e
}

// Entry returns the operation committed at version, if history still holds it.
func (l *List[T]) Entry(version int) (ol.Entry[T], bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.history.At(version)
}

// Since returns the entries committed after baseVersion so a replica can fold
// its own pending operations through them. The window rules are the same as
// for ProcessOperation; Successful means the entries are complete.
func (l *List[T]) Since(baseVersion int) ([]ol.Entry[T], Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.history.Since(baseVersion)
	if err != nil {
		return nil, windowOutcome(err)
	}
	return slices.Clone(entries), Successful
}
