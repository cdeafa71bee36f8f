package vlist

import (
	"fmt"
	"slices"
)

// Outcome is the result code of submitting an operation.
type Outcome int

const (
	Successful            Outcome = iota // committed, possibly with adjusted indices
	DiscardOperation                     // voided by concurrent history; a Noop was committed
	BadOperation                         // out of bounds after transform; nothing changed
	InvalidVersion                       // base version is ahead of the list
	OutOfOperationalRange                // base version predates retained history
)

var outcomeNames = [...]string{
	Successful:            "Successful",
	DiscardOperation:      "DiscardOperation",
	BadOperation:          "BadOperation",
	InvalidVersion:        "InvalidVersion",
	OutOfOperationalRange: "OutOfOperationalRange",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// Committed reports whether the submission advanced the version.
func (o Outcome) Committed() bool {
	return o == Successful || o == DiscardOperation
}

func (o Outcome) MarshalText() ([]byte, error) {
	if o < 0 || int(o) >= len(outcomeNames) {
		return nil, fmt.Errorf("vlist: unknown outcome %d", int(o))
	}
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	i := slices.Index(outcomeNames[:], string(b))
	if i < 0 {
		return fmt.Errorf("vlist: unknown outcome %q", b)
	}
	*o = Outcome(i)
	return nil
}

// State is an immutable snapshot of a list. A new State is published for
// every commit; existing ones are never modified.
type State[T any] struct {
	items           []T
	version         int
	minValidVersion int
}

func (s State[T]) Version() int {
	return s.version
}

func (s State[T]) MinValidVersion() int {
	return s.minValidVersion
}

func (s State[T]) Len() int {
	return len(s.items)
}

// Items returns a copy of the snapshot's items.
func (s State[T]) Items() []T {
	return append([]T{}, s.items...)
}

func (s State[T]) At(i int) (T, bool) {
	if i < 0 || i >= len(s.items) {
		var zero T
		return zero, false
	}
	return s.items[i], true
}
