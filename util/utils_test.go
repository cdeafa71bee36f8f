package util

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, Map([]int{1, 2}, strconv.Itoa))
	assert.Empty(t, Map([]int{}, strconv.Itoa))
}

func TestReduceChoose(t *testing.T) {
	sum := Reduce([]int{1, 2, 3}, func(v int, acc int) int { return acc + v }, 10)
	assert.Equal(t, 16, sum)

	assert.Equal(t, "a", Choose(true, "a", "b"))
	assert.Equal(t, "b", Choose(false, "a", "b"))
}
