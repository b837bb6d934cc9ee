// Package sequential provides an executor that runs the task trees of package
// parallel on the calling goroutine. This is useful for testing and
// debugging: the trees have the same shape and combine their results in the
// same order as with a parallel executor, but leaves run one after the other
// from left to right.
//
// It is not recommended to use this package for any other purpose. For
// ordinary serial execution, disable parallelism in the parclust.Config
// instead, which avoids building the task tree altogether.
package sequential

import (
	"fmt"

	"github.com/exascience/parclust"
	"github.com/exascience/parclust/internal"
)

// Executor runs task trees on the calling goroutine. The zero Executor is
// ready to use, and it never rejects work.
type Executor struct{}

var _ parclust.Executor = Executor{}

// Submit runs root.
func (Executor) Submit(root func()) error {
	root()
	return nil
}

// Fork runs left, then right.
func (Executor) Fork(left, right func()) {
	left()
	right()
}

// ReduceRange builds the task tree over the half-open range from low to high
// with the given chunk size, invokes reduce for each leaf from left to right,
// and combines the results with pair in tree order.
//
// ReduceRange panics if high < low, or if chunk < 1.
func ReduceRange[T any](
	low, high, chunk int,
	reduce func(low, high int) T,
	pair func(x, y T) T,
) T {
	internal.CheckRange(low, high, chunk)
	var recur func(int, int) T
	recur = func(low, high int) T {
		if internal.IsLeaf(low, high, chunk) {
			return reduce(low, high)
		}
		mid := internal.Split(low, high)
		left := recur(low, mid)
		right := recur(mid, high)
		return pair(left, right)
	}
	return recur(low, high)
}

// Reduce reduces xs with r over a task tree with the given chunk size.
// Unlike parallel.Reduce, it ignores any parclust.Config, which makes it
// suitable as a reference result for tests.
//
// Reduce panics if xs is empty and r.Empty is nil.
func Reduce[E, T any](xs []E, chunk int, r parclust.Reducer[E, T]) T {
	if len(xs) == 0 {
		if r.Empty == nil {
			panic(fmt.Sprintf("%v: empty input", r.Name))
		}
		return r.Empty()
	}
	return ReduceRange(0, len(xs), chunk,
		func(low, high int) T { return r.Leaf(xs, low, high) },
		r.Combine,
	)
}
