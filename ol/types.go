package ol

import (
	"errors"

	"github.com/kevinxiao27/vlist/ot"
)

var (
	ErrPruned = errors.New("ol: version predates retained history")
	ErrAhead  = errors.New("ol: version is ahead of history")
)

// Entry is an operation as it was committed.
type Entry[T any] struct {
	Version int // version the list reached by committing Op
	Op      ot.Op[T]
}

// OpLog is the append-only history of committed operations. It retains
// exactly the entries with versions in (floor, head].
type OpLog[T any] struct {
	entries []Entry[T]
	floor   int
}
