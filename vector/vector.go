// Package vector provides the vector reductions used by the clustering
// algorithms, built on package parallel. Each function chooses serial or
// parallel execution with the given parclust.Config, which may be nil.
//
// Floating-point sums are not exactly associative, so Sum, Dot, and
// SquaredEuclidean may differ in the last bits between the serial and the
// parallel path. The boolean reductions and Max and Min are exact; Max and
// Min skip NaNs on both paths.
package vector

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/exascience/parclust"
	"github.com/exascience/parclust/parallel"
)

func or(x, y bool) bool        { return x || y }
func and(x, y bool) bool       { return x && y }
func add(x, y float64) float64 { return x + y }
func zero() float64            { return 0 }

// maxNum and minNum return the other operand if one is NaN, matching the
// way floats.Max and floats.Min skip NaNs inside a leaf.
func maxNum(x, y float64) float64 {
	switch {
	case math.IsNaN(x):
		return y
	case math.IsNaN(y):
		return x
	}
	return math.Max(x, y)
}

func minNum(x, y float64) float64 {
	switch {
	case math.IsNaN(x):
		return y
	case math.IsNaN(y):
		return x
	}
	return math.Min(x, y)
}

var (
	anyNaN = parclust.Reducer[float64, bool]{
		Name: "AnyNaN",
		Leaf: func(xs []float64, low, high int) bool {
			return floats.HasNaN(xs[low:high])
		},
		Combine: or,
	}

	anyNonFinite = parclust.Reducer[float64, bool]{
		Name: "AnyNonFinite",
		Leaf: func(xs []float64, low, high int) bool {
			for _, x := range xs[low:high] {
				if math.IsNaN(x) || math.IsInf(x, 0) {
					return true
				}
			}
			return false
		},
		Combine: or,
	}

	sum = parclust.Reducer[float64, float64]{
		Name: "Sum",
		Leaf: func(xs []float64, low, high int) float64 {
			return floats.Sum(xs[low:high])
		},
		Combine: add,
		Empty:   zero,
	}

	maximum = parclust.Reducer[float64, float64]{
		Name: "Max",
		Leaf: func(xs []float64, low, high int) float64 {
			return floats.Max(xs[low:high])
		},
		Combine: maxNum,
	}

	minimum = parclust.Reducer[float64, float64]{
		Name: "Min",
		Leaf: func(xs []float64, low, high int) float64 {
			return floats.Min(xs[low:high])
		},
		Combine: minNum,
	}

	dot = parclust.DualReducer[float64, float64]{
		Name: "Dot",
		Leaf: func(xs, ys []float64, low, high int) float64 {
			return floats.Dot(xs[low:high], ys[low:high])
		},
		Combine: add,
		Empty:   zero,
	}

	squaredEuclidean = parclust.DualReducer[float64, float64]{
		Name: "SquaredEuclidean",
		Leaf: func(xs, ys []float64, low, high int) (sum float64) {
			for i := low; i < high; i++ {
				d := xs[i] - ys[i]
				sum += d * d
			}
			return
		},
		Combine: add,
		Empty:   zero,
	}
)

// AnyNaN reports whether xs contains a NaN. xs must not be empty.
func AnyNaN(cfg *parclust.Config, xs []float64) (bool, error) {
	return parallel.Reduce(cfg, xs, anyNaN)
}

// AnyNonFinite reports whether xs contains a NaN or an infinity. xs must not
// be empty.
func AnyNonFinite(cfg *parclust.Config, xs []float64) (bool, error) {
	return parallel.Reduce(cfg, xs, anyNonFinite)
}

// Sum returns the sum of the elements of xs, or 0 if xs is empty.
func Sum(cfg *parclust.Config, xs []float64) (float64, error) {
	return parallel.Reduce(cfg, xs, sum)
}

// Max returns the largest element of xs. xs must not be empty.
// NaN elements are ignored; the result is NaN only if every element is NaN.
func Max(cfg *parclust.Config, xs []float64) (float64, error) {
	return parallel.Reduce(cfg, xs, maximum)
}

// Min returns the smallest element of xs. xs must not be empty.
// NaN elements are ignored; the result is NaN only if every element is NaN.
func Min(cfg *parclust.Config, xs []float64) (float64, error) {
	return parallel.Reduce(cfg, xs, minimum)
}

// Dot returns the inner product of xs and ys, which must have equal lengths.
func Dot(cfg *parclust.Config, xs, ys []float64) (float64, error) {
	return parallel.DualReduce(cfg, xs, ys, dot)
}

// SquaredEuclidean returns the squared Euclidean distance between xs and ys,
// which must have equal lengths.
func SquaredEuclidean(cfg *parclust.Config, xs, ys []float64) (float64, error) {
	return parallel.DualReduce(cfg, xs, ys, squaredEuclidean)
}

// EqualWithinTolerance reports whether every pair of elements of xs and ys
// at the same offset is equal within tol, either absolutely or relatively.
// xs and ys must have equal lengths; two empty arrays are equal.
func EqualWithinTolerance(cfg *parclust.Config, xs, ys []float64, tol float64) (bool, error) {
	return parallel.DualReduce(cfg, xs, ys, parclust.DualReducer[float64, bool]{
		Name: "EqualWithinTolerance",
		Leaf: func(xs, ys []float64, low, high int) bool {
			for i := low; i < high; i++ {
				if !scalar.EqualWithinAbsOrRel(xs[i], ys[i], tol, tol) {
					return false
				}
			}
			return true
		},
		Combine: and,
		Empty:   func() bool { return true },
	})
}
