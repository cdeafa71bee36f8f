package ot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	cases := []struct {
		op    Op[string]
		count int
		want  bool
	}{
		{Must(NewInsert(0, "a")), 0, true},
		{Must(NewInsert(2, "a")), 2, true},
		{Must(NewInsert(3, "a")), 2, false},
		{Must(NewRemove[string](0)), 0, false},
		{Must(NewRemove[string](1)), 2, true},
		{Must(NewRemove[string](2)), 2, false},
		{Must(NewModify(1, "a")), 2, true},
		{Must(NewModify(2, "a")), 2, false},
		{Must(NewMove[string](0, 1)), 2, true},
		{Must(NewMove[string](0, 2)), 2, false},
		{Must(NewMove[string](2, 0)), 2, false},
		{Must(NewMove[string](0, 0)), 1, true},
		{NewClear[string](), 0, true},
		{NoopOp[string](), 0, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.op.Valid(c.count), "%s on %d items", c.op, c.count)
	}
}

func TestApply(t *testing.T) {
	items := []string{"a", "b", "c"}
	run := func(op Op[string], want ...string) {
		t.Helper()
		got, err := op.Apply(items)
		require.NoError(t, err)
		assert.Equal(t, want, got, op.String())
	}

	run(Must(NewInsert(0, "x")), "x", "a", "b", "c")
	run(Must(NewInsert(3, "x")), "a", "b", "c", "x")
	run(Must(NewRemove[string](1)), "a", "c")
	run(Must(NewModify(2, "x")), "a", "b", "x")
	run(Must(NewMove[string](0, 2)), "b", "c", "a")
	run(Must(NewMove[string](2, 0)), "c", "a", "b")
	run(Must(NewMove[string](0, 1)), "b", "a", "c")
	run(NoopOp[string](), "a", "b", "c")

	assert.Equal(t, []string{"a", "b", "c"}, items)
}

func TestApplyClearReturnsEmptyNotNil(t *testing.T) {
	got, err := NewClear[int]().Apply([]int{1})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApplyOutOfBounds(t *testing.T) {
	_, err := Must(NewRemove[string](0)).Apply(nil)
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = Must(NewInsert(2, "x")).Apply([]string{"a"})
	require.ErrorIs(t, err, ErrOutOfBounds)
}
