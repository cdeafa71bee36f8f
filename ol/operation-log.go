package ol

import (
	"fmt"
	"slices"

	"github.com/kevinxiao27/vlist/ot"
	"github.com/kevinxiao27/vlist/util"
)

func NewOpLog[T any]() OpLog[T] {
	return OpLog[T]{
		entries: []Entry[T]{},
	}
}

// Head is the version of the most recent entry, or the floor if nothing is
// retained.
func (oplog *OpLog[T]) Head() int {
	return oplog.floor + len(oplog.entries)
}

func (oplog *OpLog[T]) Floor() int {
	return oplog.floor
}

// Append commits op at the next version and returns the new entry.
func (oplog *OpLog[T]) Append(op ot.Op[T]) Entry[T] {
	e := Entry[T]{Version: oplog.Head() + 1, Op: op}
	oplog.entries = append(oplog.entries, e)
	return e
}

// Since returns the entries committed after base, oldest first. The result
// aliases the log and must not be modified.
func (oplog *OpLog[T]) Since(base int) ([]Entry[T], error) {
	if base < oplog.floor {
		return nil, fmt.Errorf("%w: %d < %d", ErrPruned, base, oplog.floor)
	}
	if base > oplog.Head() {
		return nil, fmt.Errorf("%w: %d > %d", ErrAhead, base, oplog.Head())
	}
	return oplog.entries[base-oplog.floor:], nil
}

func (oplog *OpLog[T]) At(version int) (Entry[T], bool) {
	if version <= oplog.floor || version > oplog.Head() {
		return Entry[T]{}, false
	}
	return oplog.entries[version-oplog.floor-1], true
}

// Ops strips versions from entries.
func Ops[T any](entries []Entry[T]) []ot.Op[T] {
	return util.Map(entries, func(e Entry[T]) ot.Op[T] { return e.Op })
}

// Prune forgets every entry at or below floor. The floor never moves
// backwards and never passes the head.
func (oplog *OpLog[T]) Prune(floor int) {
	if floor <= oplog.floor {
		return
	}
	floor = min(floor, oplog.Head())

	// Copy the tail so the pruned prefix can be collected.
	oplog.entries = slices.Clone(oplog.entries[floor-oplog.floor:])
	oplog.floor = floor
}
