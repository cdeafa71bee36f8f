package ot

import (
	"errors"
	"fmt"
)

type OpType string

const (
	Insert OpType = "ins"
	Remove OpType = "rem"
	Modify OpType = "mod"
	Move   OpType = "mov"
	Clear  OpType = "clr"
	Noop   OpType = "nop"
)

var (
	ErrNegativeIndex = errors.New("ot: negative index")
	ErrOutOfBounds   = errors.New("ot: index out of bounds")
)

// Op is a single list mutation. The zero value is the Noop sentinel, so a
// discarded operation carries no payload and never needs allocating.
type Op[T any] struct {
	kind  OpType
	index int // Insert/Remove/Modify position, Move source
	to    int // Move destination, counted after the source is removed
	value T   // Only meaningful for Insert/Modify
}

func NoopOp[T any]() Op[T] {
	return Op[T]{}
}

func NewInsert[T any](index int, value T) (Op[T], error) {
	if index < 0 {
		return Op[T]{}, fmt.Errorf("%w: insert at %d", ErrNegativeIndex, index)
	}
	return Op[T]{kind: Insert, index: index, value: value}, nil
}

func NewRemove[T any](index int) (Op[T], error) {
	if index < 0 {
		return Op[T]{}, fmt.Errorf("%w: remove at %d", ErrNegativeIndex, index)
	}
	return Op[T]{kind: Remove, index: index}, nil
}

func NewModify[T any](index int, value T) (Op[T], error) {
	if index < 0 {
		return Op[T]{}, fmt.Errorf("%w: modify at %d", ErrNegativeIndex, index)
	}
	return Op[T]{kind: Modify, index: index, value: value}, nil
}

func NewMove[T any](from, to int) (Op[T], error) {
	if from < 0 || to < 0 {
		return Op[T]{}, fmt.Errorf("%w: move %d -> %d", ErrNegativeIndex, from, to)
	}
	return Op[T]{kind: Move, index: from, to: to}, nil
}

func NewClear[T any]() Op[T] {
	return Op[T]{kind: Clear}
}

// Must panics if err is non-nil. Intended for literals in tests and demos.
func Must[T any](op Op[T], err error) Op[T] {
	if err != nil {
		panic(err)
	}
	return op
}

func (op Op[T]) Kind() OpType {
	if op.kind == "" {
		return Noop
	}
	return op.kind
}

func (op Op[T]) IsNoop() bool {
	return op.Kind() == Noop
}

// Index is the position of Insert, Remove and Modify, and the source of Move.
func (op Op[T]) Index() int {
	return op.index
}

// To is the destination of a Move.
func (op Op[T]) To() int {
	return op.to
}

func (op Op[T]) Value() T {
	return op.value
}

// Clone returns an independent copy. Values are copied shallowly.
func (op Op[T]) Clone() Op[T] {
	return op
}

func (op Op[T]) String() string {
	switch op.Kind() {
	case Insert, Modify:
		return fmt.Sprintf("%s(%d,%v)", op.kind, op.index, op.value)
	case Remove:
		return fmt.Sprintf("%s(%d)", op.kind, op.index)
	case Move:
		return fmt.Sprintf("%s(%d,%d)", op.kind, op.index, op.to)
	default:
		return string(op.Kind()) + "()"
	}
}
