package parallel

import (
	"github.com/exascience/parclust"
	"github.com/exascience/parclust/internal"
)

// A rangeTask is one node of a task tree over the half-open range from low to
// high. Ranges of at most chunk elements are computed directly by leaf;
// larger ones are split in half, and the results of both halves are merged
// by combine.
type rangeTask[T any] struct {
	low, high int
	chunk     int
	leaf      func(low, high int) T
	combine   func(x, y T) T
	exec      parclust.Executor
}

func (t rangeTask[T]) compute() T {
	if internal.IsLeaf(t.low, t.high, t.chunk) {
		return t.leaf(t.low, t.high)
	}
	mid := internal.Split(t.low, t.high)
	lt, rt := t, t
	lt.high = mid
	rt.low = mid
	var left, right T
	t.exec.Fork(
		func() { left = lt.compute() },
		func() { right = rt.compute() },
	)
	return t.combine(left, right)
}
