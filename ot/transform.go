package ot

type indexKind int

const (
	gapIndex     indexKind = iota // a position between elements, up to and including Count
	elementIndex                  // a position of an existing element
)

// transformIndex moves idx, owned by a pending operation, past the committed
// operation h. It returns false when the element idx referred to no longer
// exists.
func transformIndex[T any](idx int, kind indexKind, h Op[T]) (int, bool) {
	switch h.Kind() {
	case Insert:
		// History wins ties: its slot lands before ours.
		if h.index <= idx {
			return idx + 1, true
		}
	case Remove:
		if h.index == idx && kind == elementIndex {
			return 0, false
		}
		if h.index < idx {
			return idx - 1, true
		}
	case Move:
		from, to := h.index, h.to
		switch {
		case idx == from:
			// Follow the element to where it was put.
			return to, true
		case from < to && from < idx && idx <= to:
			return idx - 1, true
		case from > to && to <= idx && idx < from:
			return idx + 1, true
		}
	case Clear:
		if kind == elementIndex {
			return 0, false
		}
		return 0, true
	}
	return idx, true
}

// TransformAgainst rebases op so that it can run after the committed
// operation h. It returns the rebased copy and true, or the Noop sentinel and
// false when h made op meaningless. Neither op nor h is modified.
func (op Op[T]) TransformAgainst(h Op[T]) (Op[T], bool) {
	var ok bool
	next := op

	switch op.Kind() {
	case Insert:
		next.index, ok = transformIndex(op.index, gapIndex, h)
	case Remove, Modify:
		next.index, ok = transformIndex(op.index, elementIndex, h)
	case Move:
		if next.index, ok = transformIndex(op.index, elementIndex, h); ok {
			next.to, ok = transformIndex(op.to, gapIndex, h)
		}
	default:
		return op, true
	}

	if !ok {
		return NoopOp[T](), false
	}
	return next, true
}

// TransformAll folds op through hist, oldest first, stopping at the first
// operation that voids it.
func (op Op[T]) TransformAll(hist []Op[T]) (Op[T], bool) {
	for _, h := range hist {
		var ok bool
		if op, ok = op.TransformAgainst(h); !ok {
			return op, false
		}
	}
	return op, true
}
