package parclust

type (
	// An Executor runs fork/join task trees.
	//
	// Submit runs root and blocks until the whole tree spawned by it has
	// terminated. It returns an error wrapping ErrSchedulingRejected if the
	// executor no longer accepts work.
	//
	// Fork runs left and right, possibly in parallel, and returns only when
	// both have terminated. Panics in either function are propagated to the
	// caller of Fork.
	Executor interface {
		Submit(root func()) error
		Fork(left, right func())
	}

	// A Reducer reduces a single array to a value of type T.
	//
	// Leaf computes the partial result for the half-open range from low to
	// high, with 0 <= low < high <= len(xs). It must not modify xs.
	//
	// Combine merges the partial results of two adjacent ranges, the left one
	// first. It must be associative.
	//
	// Empty, if non-nil, yields the result for a zero-length array. If it is
	// nil, zero-length arrays are rejected with a DimensionError.
	Reducer[E, T any] struct {
		Name    string
		Leaf    func(xs []E, low, high int) T
		Combine func(x, y T) T
		Empty   func() T
	}

	// A DualReducer reduces two arrays of equal length to a value of type T.
	// Leaf reads both arrays at identical offsets. Otherwise the same rules as
	// for Reducer apply.
	DualReducer[E, T any] struct {
		Name    string
		Leaf    func(xs, ys []E, low, high int) T
		Combine func(x, y T) T
		Empty   func() T
	}
)
