package ot

import (
	"fmt"
	"slices"

	"github.com/kevinxiao27/vlist/util"
)

// Valid reports whether op addresses positions that exist in a list of count
// items. Insert points at a gap and may equal count; Remove, Modify and the
// Move source must name an existing element. The Move destination is a gap in
// the list after the source was taken out, so it is bounded by count-1.
func (op Op[T]) Valid(count int) bool {
	switch op.Kind() {
	case Insert, Remove, Modify:
		return inRange(op.index, util.Choose(op.kind == Insert, count+1, count))
	case Move:
		return inRange(op.index, count) && inRange(op.to, count)
	default:
		return true
	}
}

func inRange(idx, limit int) bool {
	return idx >= 0 && idx < limit
}

// Apply returns the result of running op over items. items is never
// modified; the returned slice is always freshly allocated.
func (op Op[T]) Apply(items []T) ([]T, error) {
	if !op.Valid(len(items)) {
		return nil, fmt.Errorf("%w: %s on %d items", ErrOutOfBounds, op, len(items))
	}

	switch op.Kind() {
	case Insert:
		out := make([]T, 0, len(items)+1)
		out = append(out, items[:op.index]...)
		out = append(out, op.value)
		return append(out, items[op.index:]...), nil
	case Remove:
		return slices.Delete(slices.Clone(items), op.index, op.index+1), nil
	case Modify:
		out := slices.Clone(items)
		out[op.index] = op.value
		return out, nil
	case Move:
		moved := items[op.index]
		out := slices.Delete(slices.Clone(items), op.index, op.index+1)
		return slices.Insert(out, op.to, moved), nil
	case Clear:
		return []T{}, nil
	default:
		return append([]T{}, items...), nil
	}
}
